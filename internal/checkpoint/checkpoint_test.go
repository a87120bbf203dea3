package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/loss"
	"github.com/agenthands/ontovec/internal/model"
)

func testCheckpoint() *Checkpoint {
	return &Checkpoint{
		Version: Version,
		Config: model.Config{
			Arch:      model.ArchGCN,
			InputDim:  8,
			HiddenDim: 6,
			OutputDim: 4,
			Layers:    2,
			Loss:      loss.VariantTriplet,
			Scheme:    graph.SchemeHashed,
			Seed:      7,
		},
		Vocabulary: []string{"http://example.org/A", "http://example.org/B"},
		Weights: []model.Tensor{
			{Name: "layer0.weight", Rows: 2, Cols: 2, Data: []float64{1, 2, 3, 4}},
			{Name: "layer0.bias", Rows: 1, Cols: 2, Data: []float64{0.5, -0.5}},
		},
		Provenance: Provenance{
			RunID:          "run-1",
			SourceOntology: "animals.owl",
			NodeCount:      2,
			EdgeCount:      1,
			Epochs:         10,
			FinalLoss:      0.123,
			TrainedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	src := testCheckpoint()
	require.NoError(t, Save(path, src))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestSave_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ckpt.json")
	require.NoError(t, Save(path, testCheckpoint()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_UnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	c := testCheckpoint()
	c.Version = "ontovec.v0"
	require.NoError(t, Save(path, c))
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	c := testCheckpoint()
	c.Config.Arch = "perceptron"
	require.NoError(t, Save(path, c))
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestLoad_EmptyVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	c := testCheckpoint()
	c.Vocabulary = nil
	require.NoError(t, Save(path, c))
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestLoad_OneHotDimensionContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	c := testCheckpoint()
	c.Config.Scheme = graph.SchemeOneHot
	c.Config.InputDim = 5 // vocabulary holds 2
	require.NoError(t, Save(path, c))
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrConfig)
}
