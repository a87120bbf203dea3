package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontovec/internal/model"
)

const testTOML = `
[model]
arch = "gat"
hidden_dim = 48
output_dim = 24
loss = "triplet"
seed = 7

[training]
epochs = 250
learning_rate = 0.005

[graphdb]
uri = "bolt://db.example.com:7687"
user = "ontovec"

[server]
port = 9090
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	tc, err := cfg.TrainConfig("test.owl")
	require.NoError(t, err)
	assert.Equal(t, model.ArchGCN, tc.Model.Arch)
	assert.Equal(t, "test.owl", tc.Source)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testTOML))
	require.NoError(t, err)

	assert.Equal(t, "gat", cfg.Model.Arch)
	assert.Equal(t, 48, cfg.Model.HiddenDim)
	assert.Equal(t, 24, cfg.Model.OutputDim)
	assert.Equal(t, "triplet", cfg.Model.Loss)
	assert.Equal(t, int64(7), cfg.Model.Seed)
	assert.Equal(t, 250, cfg.Training.Epochs)
	assert.Equal(t, 0.005, cfg.Training.LearningRate)
	assert.Equal(t, "bolt://db.example.com:7687", cfg.GraphDB.URI)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, Default().Model.InputDim, cfg.Model.InputDim)
	assert.Equal(t, Default().Training.Margin, cfg.Training.Margin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_BadTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[model\narch ="))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ONTOVEC_GRAPHDB_URI", "bolt://env:7687")
	t.Setenv("ONTOVEC_GRAPHDB_USER", "envuser")
	t.Setenv("ONTOVEC_SERVER_PORT", "1234")
	t.Setenv("ONTOVEC_SEED", "99")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "bolt://env:7687", cfg.GraphDB.URI)
	assert.Equal(t, "envuser", cfg.GraphDB.User)
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, int64(99), cfg.Model.Seed)
}

func TestTrainConfig_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Model.Arch = "lstm"
	_, err := cfg.TrainConfig("test.owl")
	assert.ErrorIs(t, err, model.ErrConfig)
}
