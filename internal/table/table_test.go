package table

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontovec/internal/embed"
)

func testRecords() []embed.Record {
	return []embed.Record{
		{ID: "http://example.org/A", Vector: []float64{1, 0, 0}},
		{ID: "http://example.org/B", Vector: []float64{0.9, 0.1, 0}},
		{ID: "http://example.org/C", Vector: []float64{-1, 0, 0}},
	}
}

func testMeta() embed.Meta {
	return embed.Meta{
		SourceOntology: "animals.owl",
		Arch:           "gcn",
		Loss:           "contrastive",
		Scheme:         "hashed",
		OutputDim:      3,
		CheckpointRun:  "run-42",
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func writeTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emb.parquet")
	require.NoError(t, Write(path, testRecords(), testMeta()))
	tbl, err := Open(path)
	require.NoError(t, err)
	return tbl
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	tbl := writeTestTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{
		"http://example.org/A",
		"http://example.org/B",
		"http://example.org/C",
	}, tbl.Identifiers())

	vec, ok := tbl.Get("http://example.org/B")
	require.True(t, ok)
	assert.Equal(t, []float64{0.9, 0.1, 0}, vec)

	_, ok = tbl.Get("http://example.org/Missing")
	assert.False(t, ok)

	m := tbl.Meta()
	assert.Equal(t, "animals.owl", m.SourceOntology)
	assert.Equal(t, "gcn", m.Arch)
	assert.Equal(t, "contrastive", m.Loss)
	assert.Equal(t, "hashed", m.Scheme)
	assert.Equal(t, 3, m.OutputDim)
	assert.Equal(t, "run-42", m.CheckpointRun)
	assert.True(t, m.GeneratedAt.Equal(testMeta().GeneratedAt))
}

func TestWrite_RefusesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emb.parquet")
	assert.Error(t, Write(path, nil, testMeta()))
}

func TestWrite_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emb.parquet")
	require.NoError(t, Write(path, testRecords(), testMeta()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}

func TestAddSub_Laws(t *testing.T) {
	v1 := []float64{1, 2, 3}
	v2 := []float64{0.5, -1, 4}

	sum, err := Add(v1, v2)
	require.NoError(t, err)
	back, err := Sub(sum, v2)
	require.NoError(t, err)
	for i := range v1 {
		assert.InDelta(t, v1[i], back[i], 1e-12, "add then sub recovers the original")
	}

	ba, err := Add(v2, v1)
	require.NoError(t, err)
	assert.Equal(t, sum, ba, "addition commutes")

	ab, err := Sub(v1, v2)
	require.NoError(t, err)
	baSub, err := Sub(v2, v1)
	require.NoError(t, err)
	assert.NotEqual(t, ab, baSub, "subtraction does not commute")
}

func TestAddSub_LengthMismatch(t *testing.T) {
	_, err := Add([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = Sub([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = Cosine([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	assert.InDelta(t, 1.0, Norm(v), 1e-12)

	zero := Normalize([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, zero)
}

func TestCosine(t *testing.T) {
	c, err := Cosine([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c, 1e-12)

	c, err = Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c, 1e-12)

	c, err = Cosine([]float64{1, 0}, []float64{0, 0})
	require.NoError(t, err)
	assert.Zero(t, c, "zero vector cosine is defined as zero")
}

func TestNearest(t *testing.T) {
	tbl := writeTestTable(t)

	hits := tbl.Nearest([]float64{1, 0, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "http://example.org/A", hits[0].ID)
	assert.Equal(t, "http://example.org/B", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestNearest_KLargerThanTable(t *testing.T) {
	tbl := writeTestTable(t)
	hits := tbl.Nearest([]float64{1, 0, 0}, 100)
	assert.Len(t, hits, 3)
}
