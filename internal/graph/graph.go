package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agenthands/ontovec/internal/ontology"
)

var (
	// ErrEmptyOntology is returned when the parsed ontology contains no classes.
	ErrEmptyOntology = errors.New("ontology contains no classes")

	// ErrMalformedInput is returned when a subclass pair references an
	// identifier that is not in the class set.
	ErrMalformedInput = errors.New("malformed ontology input")
)

// Graph is an immutable index-addressable view of an ontology hierarchy.
// Nodes holds canonical class IRIs in vocabulary order; Edges holds
// (subclass-index, superclass-index) pairs. Symmetrization happens when the
// adjacency structure is materialized, not here, so training and inference
// always share one convention.
type Graph struct {
	Nodes []string
	Edges [][2]int
	Index map[string]int
}

// Build assigns every distinct class identifier a 0-based index and resolves
// subclass pairs to index pairs. Identifiers are sorted lexicographically
// before indexing so the vocabulary does not depend on parser emission order.
func Build(facts *ontology.Facts) (*Graph, error) {
	if facts == nil || len(facts.Classes) == 0 {
		return nil, fmt.Errorf("building graph from '%s': %w", sourceOf(facts), ErrEmptyOntology)
	}

	uniq := make(map[string]bool, len(facts.Classes))
	for _, id := range facts.Classes {
		uniq[id] = true
	}

	nodes := make([]string, 0, len(uniq))
	for id := range uniq {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	edges := make([][2]int, 0, len(facts.SubclassOf))
	dedup := make(map[[2]int]bool, len(facts.SubclassOf))
	for _, pair := range facts.SubclassOf {
		sub, ok := index[pair[0]]
		if !ok {
			return nil, fmt.Errorf("subclass pair references unknown identifier '%s': %w", pair[0], ErrMalformedInput)
		}
		sup, ok := index[pair[1]]
		if !ok {
			return nil, fmt.Errorf("subclass pair references unknown identifier '%s': %w", pair[1], ErrMalformedInput)
		}
		e := [2]int{sub, sup}
		if dedup[e] {
			continue
		}
		dedup[e] = true
		edges = append(edges, e)
	}

	return &Graph{Nodes: nodes, Edges: edges, Index: index}, nil
}

func sourceOf(facts *ontology.Facts) string {
	if facts == nil {
		return "<nil>"
	}
	return facts.Source
}

// NumNodes returns the vocabulary size.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// HasEdge reports whether (i, j) is a subclass edge in either direction.
func (g *Graph) HasEdge(i, j int) bool {
	for _, e := range g.Edges {
		if (e[0] == i && e[1] == j) || (e[0] == j && e[1] == i) {
			return true
		}
	}
	return false
}
