// Package export pushes an ontology graph and its embedding table into a
// Bolt-speaking graph database so the hierarchy can be inspected next to the
// learned vectors.
package export

import (
	"context"
	"fmt"

	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/table"
)

const (
	mergeClassQuery = `MERGE (c:Class {iri: $iri})`

	mergeSubclassQuery = `
		MATCH (sub:Class {iri: $sub})
		MATCH (sup:Class {iri: $sup})
		MERGE (sub)-[:SUBCLASS_OF]->(sup)`

	setVectorQuery = `
		MATCH (c:Class {iri: $iri})
		SET c.vector = $vector`
)

// Exporter writes classes, subclass edges and vectors through a Driver.
type Exporter struct {
	Driver Driver
}

func NewExporter(d Driver) *Exporter {
	return &Exporter{Driver: d}
}

// ExportGraph merges every class and subclass relation. Idempotent: MERGE on
// the canonical IRI.
func (e *Exporter) ExportGraph(ctx context.Context, g *graph.Graph) error {
	for _, iri := range g.Nodes {
		if _, err := e.Driver.ExecuteQuery(ctx, mergeClassQuery, map[string]interface{}{"iri": iri}); err != nil {
			return fmt.Errorf("failed to merge class '%s': %w", iri, err)
		}
	}
	for _, edge := range g.Edges {
		params := map[string]interface{}{
			"sub": g.Nodes[edge[0]],
			"sup": g.Nodes[edge[1]],
		}
		if _, err := e.Driver.ExecuteQuery(ctx, mergeSubclassQuery, params); err != nil {
			return fmt.Errorf("failed to merge subclass edge %s -> %s: %w", g.Nodes[edge[0]], g.Nodes[edge[1]], err)
		}
	}
	return nil
}

// ExportEmbeddings sets the vector property on every class present in the
// table. Classes missing from the database are created first.
func (e *Exporter) ExportEmbeddings(ctx context.Context, t *table.Table) error {
	for _, row := range t.Rows() {
		if _, err := e.Driver.ExecuteQuery(ctx, mergeClassQuery, map[string]interface{}{"iri": row.ID}); err != nil {
			return fmt.Errorf("failed to merge class '%s': %w", row.ID, err)
		}
		params := map[string]interface{}{
			"iri":    row.ID,
			"vector": row.Vector,
		}
		if _, err := e.Driver.ExecuteQuery(ctx, setVectorQuery, params); err != nil {
			return fmt.Errorf("failed to set vector on '%s': %w", row.ID, err)
		}
	}
	return nil
}
