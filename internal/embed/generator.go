// Package embed applies a frozen checkpoint to a target ontology graph. The
// target vocabulary may differ from the training vocabulary in size, order
// and content; only the feature-encoding convention is tied to training, the
// edge structure is always the target's own.
package embed

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/checkpoint"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/model"
)

// Record is one embedded class: identifier plus its output vector.
type Record struct {
	ID     string
	Vector []float64
}

// Meta describes a finished embedding run; it travels with the records into
// the persisted table.
type Meta struct {
	SourceOntology string
	Arch           string
	Loss           string
	Scheme         string
	OutputDim      int
	CheckpointRun  string
	GeneratedAt    time.Time
}

// Generator runs inference with a loaded checkpoint.
type Generator struct {
	Logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Logger: logger}
}

// Generate aligns the target graph against the checkpoint's training
// vocabulary, runs the frozen forward pass, and returns one record per
// target node.
//
// Alignment rules: identifiers present in the training vocabulary reuse
// their training-time encoding (position under onehot, derivation under
// hashed); unseen identifiers use the identical identifier-only derivation
// under hashed, and are a hard incompatibility under onehot. A training
// position is never reused for a different identifier, and vectors are never
// zero-filled on failure.
func (g *Generator) Generate(ckpt *checkpoint.Checkpoint, target *graph.Graph) ([]Record, Meta, error) {
	if target == nil || target.NumNodes() == 0 {
		return nil, Meta{}, graph.ErrEmptyOntology
	}

	trainIndex := make(map[string]int, len(ckpt.Vocabulary))
	for i, id := range ckpt.Vocabulary {
		trainIndex[id] = i
	}

	x, err := graph.Features(ckpt.Config.Scheme, target.Nodes, trainIndex, ckpt.Config.InputDim, ckpt.Config.Seed)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("aligning target ontology against training vocabulary: %w", err)
	}

	enc, err := model.New(ckpt.Config)
	if err != nil {
		return nil, Meta{}, err
	}
	if err := enc.Import(ckpt.Weights); err != nil {
		return nil, Meta{}, err
	}

	z, err := enc.Forward(x, target.Edges)
	if err != nil {
		return nil, Meta{}, err
	}

	shared := 0
	for _, id := range target.Nodes {
		if _, ok := trainIndex[id]; ok {
			shared++
		}
	}
	g.Logger.Info("embeddings generated",
		zap.Int("nodes", target.NumNodes()),
		zap.Int("shared_with_training", shared),
		zap.Int("output_dim", ckpt.Config.OutputDim))

	records := make([]Record, target.NumNodes())
	for i, id := range target.Nodes {
		vec := make([]float64, ckpt.Config.OutputDim)
		copy(vec, z.RawRowView(i))
		records[i] = Record{ID: id, Vector: vec}
	}

	meta := Meta{
		Arch:          string(ckpt.Config.Arch),
		Loss:          string(ckpt.Config.Loss),
		Scheme:        string(ckpt.Config.Scheme),
		OutputDim:     ckpt.Config.OutputDim,
		CheckpointRun: ckpt.Provenance.RunID,
		GeneratedAt:   time.Now().UTC(),
	}
	return records, meta, nil
}
