package model

import (
	"errors"
	"fmt"

	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/loss"
)

// ErrConfig is returned for unrecognized variants or impossible dimensions.
// Configuration problems fail before any computation starts.
var ErrConfig = errors.New("invalid model configuration")

// Arch selects the encoder variant. Closed enumeration: unknown tags are
// rejected at validation time, not at dispatch time.
type Arch string

const (
	ArchGCN Arch = "gcn"
	ArchGAT Arch = "gat"
)

// ParseArch validates an architecture tag.
func ParseArch(s string) (Arch, error) {
	switch Arch(s) {
	case ArchGCN, ArchGAT:
		return Arch(s), nil
	default:
		return "", fmt.Errorf("unknown architecture '%s': %w", s, ErrConfig)
	}
}

// Config is the full model configuration. It is threaded explicitly through
// training and inference and persisted in the checkpoint; there is no ambient
// device/seed state anywhere.
type Config struct {
	Arch      Arch         `json:"arch" toml:"arch"`
	InputDim  int          `json:"input_dim" toml:"input_dim"`
	HiddenDim int          `json:"hidden_dim" toml:"hidden_dim"`
	OutputDim int          `json:"output_dim" toml:"output_dim"`
	Layers    int          `json:"layers" toml:"layers"`
	Loss      loss.Variant `json:"loss" toml:"loss"`
	Scheme    graph.Scheme `json:"scheme" toml:"scheme"`
	Seed      int64        `json:"seed" toml:"seed"`
}

// Validate fails fast on anything the enums or dimensions rule out.
func (c Config) Validate() error {
	if _, err := ParseArch(string(c.Arch)); err != nil {
		return err
	}
	if _, err := loss.ParseVariant(string(c.Loss)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrConfig)
	}
	if _, err := graph.ParseScheme(string(c.Scheme)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrConfig)
	}
	if c.InputDim <= 0 || c.HiddenDim <= 0 || c.OutputDim <= 0 {
		return fmt.Errorf("dimensions must be positive (input=%d hidden=%d output=%d): %w",
			c.InputDim, c.HiddenDim, c.OutputDim, ErrConfig)
	}
	if c.Layers < 1 {
		return fmt.Errorf("layer count must be at least 1, got %d: %w", c.Layers, ErrConfig)
	}
	return nil
}

// layerDims returns the (in, out) widths for each propagation layer.
func (c Config) layerDims() [][2]int {
	dims := make([][2]int, c.Layers)
	for i := 0; i < c.Layers; i++ {
		in := c.HiddenDim
		out := c.HiddenDim
		if i == 0 {
			in = c.InputDim
		}
		if i == c.Layers-1 {
			out = c.OutputDim
		}
		dims[i] = [2]int{in, out}
	}
	return dims
}
