package ontology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turtleFixture = `
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/> .

ex:Animal rdf:type owl:Class .
ex:Dog rdf:type owl:Class .
ex:Dog rdfs:subClassOf ex:Animal .
ex:Puppy rdfs:subClassOf ex:Dog .
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_Turtle(t *testing.T) {
	path := writeFixture(t, "animals.ttl", turtleFixture)

	facts, err := NewRDFParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, path, facts.Source)
	// Puppy never has an owl:Class declaration but appears in a subclass
	// triple, so it still counts as a class.
	assert.ElementsMatch(t, []string{
		"http://example.org/Animal",
		"http://example.org/Dog",
		"http://example.org/Puppy",
	}, facts.Classes)
	assert.ElementsMatch(t, [][2]string{
		{"http://example.org/Dog", "http://example.org/Animal"},
		{"http://example.org/Puppy", "http://example.org/Dog"},
	}, facts.SubclassOf)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := NewRDFParser().Parse("/nonexistent/onto.owl")
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	path := writeFixture(t, "broken.ttl", "this is not turtle {{{")
	_, err := NewRDFParser().Parse(path)
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.NotEqual(t, formatFor("x.ttl"), formatFor("x.owl"))
	assert.Equal(t, formatFor("x.owl"), formatFor("x.rdf"))
}
