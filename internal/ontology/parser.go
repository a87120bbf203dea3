package ontology

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"
)

const (
	rdfTypeIRI        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsSubClassOfIRI = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	owlClassIRI       = "http://www.w3.org/2002/07/owl#Class"
)

// Facts is the raw material the graph builder consumes: the ontology reduced
// to class identifiers and subclass relations.
type Facts struct {
	Classes    []string
	SubclassOf [][2]string // [subclass, superclass]
	Source     string
}

// Parser turns an ontology file into Facts. Implementations own the file
// format; callers treat parsing as opaque.
type Parser interface {
	Parse(path string) (*Facts, error)
}

// RDFParser reads OWL ontologies serialized as RDF/XML, Turtle or N-Triples.
// Format is picked by file extension, defaulting to RDF/XML which is what
// most published OWL files use.
type RDFParser struct{}

func NewRDFParser() *RDFParser {
	return &RDFParser{}
}

func formatFor(path string) rdf.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return rdf.Turtle
	case ".nt":
		return rdf.NTriples
	default:
		return rdf.RDFXML
	}
}

func (p *RDFParser) Parse(path string) (*Facts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ontology file '%s': %w", path, err)
	}
	defer f.Close()

	dec := rdf.NewTripleDecoder(f, formatFor(path))
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode ontology '%s': %w", path, err)
	}

	facts := &Facts{Source: path}
	seen := make(map[string]bool)
	addClass := func(iri string) {
		if !seen[iri] {
			seen[iri] = true
			facts.Classes = append(facts.Classes, iri)
		}
	}

	for _, t := range triples {
		// Restriction bnodes and literal objects carry no class identity.
		if t.Subj.Type() != rdf.TermIRI {
			continue
		}
		subj := t.Subj.String()

		switch t.Pred.String() {
		case rdfTypeIRI:
			if t.Obj.Type() == rdf.TermIRI && t.Obj.String() == owlClassIRI {
				addClass(subj)
			}
		case rdfsSubClassOfIRI:
			if t.Obj.Type() != rdf.TermIRI {
				continue
			}
			obj := t.Obj.String()
			addClass(subj)
			addClass(obj)
			facts.SubclassOf = append(facts.SubclassOf, [2]string{subj, obj})
		}
	}

	return facts, nil
}
