package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontovec/internal/embed"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/ontology"
	"github.com/agenthands/ontovec/internal/table"
)

// recordingDriver captures queries instead of talking to a database.
type recordingDriver struct {
	queries []string
	params  []map[string]interface{}
}

func (d *recordingDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	d.queries = append(d.queries, query)
	d.params = append(d.params, params)
	return neo4j.EagerResult{}, nil
}

func (d *recordingDriver) BuildIndices(ctx context.Context) error { return nil }
func (d *recordingDriver) Close(ctx context.Context) error        { return nil }

func TestExportGraph(t *testing.T) {
	g, err := graph.Build(&ontology.Facts{
		Classes: []string{"http://example.org/Animal", "http://example.org/Dog"},
		SubclassOf: [][2]string{
			{"http://example.org/Dog", "http://example.org/Animal"},
		},
	})
	require.NoError(t, err)

	d := &recordingDriver{}
	require.NoError(t, NewExporter(d).ExportGraph(context.Background(), g))

	// One MERGE per class, one per edge.
	require.Len(t, d.queries, 3)
	assert.Equal(t, "http://example.org/Animal", d.params[0]["iri"])
	assert.Equal(t, "http://example.org/Dog", d.params[1]["iri"])
	assert.Equal(t, "http://example.org/Dog", d.params[2]["sub"])
	assert.Equal(t, "http://example.org/Animal", d.params[2]["sup"])
}

func TestExportEmbeddings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emb.parquet")
	records := []embed.Record{
		{ID: "http://example.org/Dog", Vector: []float64{0.1, 0.2}},
	}
	require.NoError(t, table.Write(path, records, embed.Meta{OutputDim: 2}))
	tbl, err := table.Open(path)
	require.NoError(t, err)

	d := &recordingDriver{}
	require.NoError(t, NewExporter(d).ExportEmbeddings(context.Background(), tbl))

	// MERGE then SET per row.
	require.Len(t, d.queries, 2)
	assert.Equal(t, "http://example.org/Dog", d.params[1]["iri"])
	assert.Equal(t, []float64{0.1, 0.2}, d.params[1]["vector"])
}
