// Package checkpoint persists and restores the trained-model bundle: weights,
// configuration, the training vocabulary and provenance. The checkpoint is
// the single source of truth for reconstructing a compatible input encoding
// at inference time; it is written once per training run and read-only after.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/model"
)

// Version tags the on-disk encoding. Loaders reject anything else.
const Version = "ontovec.v1"

// Provenance records where the weights came from.
type Provenance struct {
	RunID          string    `json:"run_id"`
	SourceOntology string    `json:"source_ontology"`
	NodeCount      int       `json:"node_count"`
	EdgeCount      int       `json:"edge_count"`
	Epochs         int       `json:"epochs"`
	FinalLoss      float64   `json:"final_loss"`
	TrainedAt      time.Time `json:"trained_at"`
}

type Checkpoint struct {
	Version    string         `json:"version"`
	Config     model.Config   `json:"config"`
	Vocabulary []string       `json:"vocabulary"`
	Weights    []model.Tensor `json:"weights"`
	Provenance Provenance     `json:"provenance"`
}

// Save writes the checkpoint atomically: a temp file in the destination
// directory, then rename, so a killed run never leaves a partial artifact.
func Save(path string, c *Checkpoint) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ontovec-ckpt-*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move checkpoint into place: %w", err)
	}
	return nil
}

// Load reads and validates a checkpoint. Validation covers the version tag,
// the config enums, and the vocabulary/input-dimension contract for the
// positional feature scheme.
func Load(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint '%s': %w", path, err)
	}
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint '%s': %w", path, err)
	}
	if c.Version != Version {
		return nil, fmt.Errorf("checkpoint version '%s' is not supported (want %s): %w", c.Version, Version, model.ErrConfig)
	}
	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint config is invalid: %w", err)
	}
	if len(c.Vocabulary) == 0 {
		return nil, fmt.Errorf("checkpoint has an empty training vocabulary: %w", model.ErrConfig)
	}
	if c.Config.Scheme == graph.SchemeOneHot && c.Config.InputDim != len(c.Vocabulary) {
		return nil, fmt.Errorf("checkpoint input dimensionality %d does not match vocabulary size %d under the onehot scheme: %w",
			c.Config.InputDim, len(c.Vocabulary), model.ErrConfig)
	}
	return &c, nil
}
