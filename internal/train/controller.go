// Package train drives the epoch loop: forward, loss, backward, parameter
// update, and writes exactly one checkpoint at completion. Each epoch is one
// full pass over the whole graph; ontology graphs are small enough that no
// mini-batching is needed.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/checkpoint"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/loss"
	"github.com/agenthands/ontovec/internal/model"
)

// ErrNumeric is returned when training hits a non-finite loss. The run
// aborts before any checkpoint bytes are written; a corrupt checkpoint is
// worse than no checkpoint.
var ErrNumeric = errors.New("numerical instability during training")

// Config holds the training hyperparameters around the model config.
type Config struct {
	Model         model.Config
	Epochs        int
	LearningRate  float64
	Margin        float64
	NegativeRatio int

	// Source names the ontology the graph came from; recorded as provenance.
	Source string
}

// Validate fails fast before any computation.
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epoch count must be at least 1, got %d: %w", c.Epochs, model.ErrConfig)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g: %w", c.LearningRate, model.ErrConfig)
	}
	if c.NegativeRatio < 1 {
		return fmt.Errorf("negative ratio must be at least 1, got %d: %w", c.NegativeRatio, model.ErrConfig)
	}
	return nil
}

// Controller owns one training run. Strategy is injectable for tests; when
// nil it is built from the config's loss variant.
type Controller struct {
	Logger   *zap.Logger
	Strategy loss.Strategy
}

func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{Logger: logger}
}

// Train runs the full epoch loop over g and returns the finished checkpoint.
// The returned checkpoint is not yet persisted; callers decide where it goes.
func (c *Controller) Train(ctx context.Context, g *graph.Graph, cfg Config) (*checkpoint.Checkpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g.NumNodes() == 0 {
		return nil, graph.ErrEmptyOntology
	}

	// The onehot scheme is positional, so the effective input width is the
	// vocabulary size regardless of what the config asked for.
	mcfg := cfg.Model
	mcfg.InputDim = graph.FeatureWidth(mcfg.Scheme, g.NumNodes(), mcfg.InputDim)

	enc, err := model.New(mcfg)
	if err != nil {
		return nil, err
	}
	strategy := c.Strategy
	if strategy == nil {
		strategy, err = loss.New(mcfg.Loss, cfg.Margin)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, model.ErrConfig)
		}
	}

	x, err := graph.Features(mcfg.Scheme, g.Nodes, g.Index, mcfg.InputDim, mcfg.Seed)
	if err != nil {
		return nil, err
	}

	sampler := loss.NewSampler(g.Edges, g.NumNodes(), mcfg.Seed)
	c.Logger.Info("training started",
		zap.String("arch", string(mcfg.Arch)),
		zap.String("loss", string(mcfg.Loss)),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", len(g.Edges)),
		zap.Int("epochs", cfg.Epochs))

	final := math.NaN()
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		z, err := enc.Forward(x, g.Edges)
		if err != nil {
			return nil, err
		}

		negs, err := sampler.Negatives(len(g.Edges) * cfg.NegativeRatio)
		if err != nil {
			return nil, fmt.Errorf("negative sampling failed: %v: %w", err, ErrNumeric)
		}

		lv, dz := strategy.Score(z, g.Edges, negs)
		if math.IsNaN(lv) || math.IsInf(lv, 0) {
			return nil, fmt.Errorf("loss became non-finite at epoch %d: %w", epoch, ErrNumeric)
		}

		for _, p := range enc.Params() {
			p.Grad.Zero()
		}
		enc.Backward(dz)
		sgdStep(enc.Params(), cfg.LearningRate)

		final = lv
		c.Logger.Debug("epoch complete", zap.Int("epoch", epoch), zap.Float64("loss", lv))
	}

	c.Logger.Info("training finished", zap.Float64("final_loss", final))

	return &checkpoint.Checkpoint{
		Version:    checkpoint.Version,
		Config:     mcfg,
		Vocabulary: append([]string(nil), g.Nodes...),
		Weights:    enc.Export(),
		Provenance: checkpoint.Provenance{
			RunID:          uuid.New().String(),
			SourceOntology: cfg.Source,
			NodeCount:      g.NumNodes(),
			EdgeCount:      len(g.Edges),
			Epochs:         cfg.Epochs,
			FinalLoss:      final,
			TrainedAt:      time.Now().UTC(),
		},
	}, nil
}

func sgdStep(params []*model.Param, lr float64) {
	for _, p := range params {
		w := p.W.RawMatrix().Data
		g := p.Grad.RawMatrix().Data
		for i := range w {
			w[i] -= lr * g[i]
		}
	}
}
