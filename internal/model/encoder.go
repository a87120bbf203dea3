package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Param is one named trainable matrix with its accumulated gradient.
type Param struct {
	Name string
	W    *mat.Dense
	Grad *mat.Dense
}

func newParam(name string, rows, cols int, rng *rand.Rand) *Param {
	// Glorot-style init keeps early propagation in range for either variant.
	scale := math.Sqrt(2.0 / float64(rows+cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return &Param{
		Name: name,
		W:    mat.NewDense(rows, cols, data),
		Grad: mat.NewDense(rows, cols, nil),
	}
}

// Tensor is the serialized form of one parameter, the shape the checkpoint
// stores (named variable + dims + flat values).
type Tensor struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// Encoder is a pure function of (parameters, features, edges): Forward maps a
// node-feature matrix plus the edge set to one output vector per node,
// Backward accumulates parameter gradients for the last forward pass.
type Encoder interface {
	Forward(x *mat.Dense, edges [][2]int) (*mat.Dense, error)
	Backward(dOut *mat.Dense)
	Params() []*Param
	Export() []Tensor
	Import(ts []Tensor) error
}

// New builds the encoder for a validated config. Dispatch is over the closed
// Arch enumeration; Validate has already rejected anything else.
func New(cfg Config) (Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	switch cfg.Arch {
	case ArchGCN:
		return newGCN(cfg, rng), nil
	case ArchGAT:
		return newGAT(cfg, rng), nil
	default:
		return nil, fmt.Errorf("unknown architecture '%s': %w", cfg.Arch, ErrConfig)
	}
}

func layerName(i int, part string) string {
	return fmt.Sprintf("layer%d.%s", i, part)
}

func checkWidth(x *mat.Dense, want int) error {
	if _, c := x.Dims(); c != want {
		return fmt.Errorf("feature width %d does not match declared input dimensionality %d: %w", c, want, ErrConfig)
	}
	return nil
}

func exportParams(ps []*Param) []Tensor {
	out := make([]Tensor, len(ps))
	for i, p := range ps {
		r, c := p.W.Dims()
		data := make([]float64, r*c)
		copy(data, p.W.RawMatrix().Data)
		out[i] = Tensor{Name: p.Name, Rows: r, Cols: c, Data: data}
	}
	return out
}

func importParams(ps []*Param, ts []Tensor) error {
	byName := make(map[string]Tensor, len(ts))
	for _, t := range ts {
		byName[t.Name] = t
	}
	for _, p := range ps {
		t, ok := byName[p.Name]
		if !ok {
			return fmt.Errorf("checkpoint is missing parameter '%s': %w", p.Name, ErrConfig)
		}
		r, c := p.W.Dims()
		if t.Rows != r || t.Cols != c || len(t.Data) != r*c {
			return fmt.Errorf("parameter '%s' has shape %dx%d, checkpoint holds %dx%d: %w",
				p.Name, r, c, t.Rows, t.Cols, ErrConfig)
		}
		copy(p.W.RawMatrix().Data, t.Data)
	}
	return nil
}
