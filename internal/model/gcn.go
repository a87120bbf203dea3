package model

import (
	"math/rand"

	"github.com/agenthands/ontovec/internal/graph"
	"gonum.org/v1/gonum/mat"
)

// GCN is a stack of convolutional propagation layers. Each layer recomputes
// every node as a normalized sum over itself and its neighbors:
// H' = act(Â H W + b) with Â the symmetric-normalized adjacency. The final
// layer is linear.
type GCN struct {
	cfg    Config
	layers []*gcnLayer
}

type gcnLayer struct {
	w, b *Param
	act  bool

	// forward caches for backward
	adj *mat.Dense // Â, symmetric
	ah  *mat.Dense // Â H
	pre *mat.Dense // Â H W + b
}

func newGCN(cfg Config, rng *rand.Rand) *GCN {
	dims := cfg.layerDims()
	g := &GCN{cfg: cfg, layers: make([]*gcnLayer, cfg.Layers)}
	for i, d := range dims {
		g.layers[i] = &gcnLayer{
			w:   newParam(layerName(i, "weight"), d[0], d[1], rng),
			b:   newParam(layerName(i, "bias"), 1, d[1], rng),
			act: i < cfg.Layers-1,
		}
	}
	return g
}

func (g *GCN) Forward(x *mat.Dense, edges [][2]int) (*mat.Dense, error) {
	if err := checkWidth(x, g.cfg.InputDim); err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	adj := graph.Adjacency(edges, n)

	h := x
	for _, l := range g.layers {
		h = l.forward(adj, h)
	}
	return h, nil
}

func (l *gcnLayer) forward(adj, h *mat.Dense) *mat.Dense {
	n, _ := h.Dims()
	_, out := l.w.W.Dims()

	ah := &mat.Dense{}
	ah.Mul(adj, h)

	pre := mat.NewDense(n, out, nil)
	pre.Mul(ah, l.w.W)
	for i := 0; i < n; i++ {
		for j := 0; j < out; j++ {
			pre.Set(i, j, pre.At(i, j)+l.b.W.At(0, j))
		}
	}

	l.adj, l.ah, l.pre = adj, ah, pre
	if !l.act {
		return pre
	}
	act := mat.NewDense(n, out, nil)
	act.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, pre)
	return act
}

// Backward propagates dOut through the stack, accumulating into each
// parameter's Grad. Â is symmetric, so its transpose is itself.
func (g *GCN) Backward(dOut *mat.Dense) {
	grad := dOut
	for i := len(g.layers) - 1; i >= 0; i-- {
		grad = g.layers[i].backward(grad)
	}
}

func (l *gcnLayer) backward(dOut *mat.Dense) *mat.Dense {
	n, out := dOut.Dims()

	d := dOut
	if l.act {
		masked := mat.NewDense(n, out, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < out; j++ {
				if l.pre.At(i, j) > 0 {
					masked.Set(i, j, dOut.At(i, j))
				}
			}
		}
		d = masked
	}

	var dw mat.Dense
	dw.Mul(l.ah.T(), d)
	l.w.Grad.Add(l.w.Grad, &dw)

	for j := 0; j < out; j++ {
		var s float64
		for i := 0; i < n; i++ {
			s += d.At(i, j)
		}
		l.b.Grad.Set(0, j, l.b.Grad.At(0, j)+s)
	}

	var dwT mat.Dense
	dwT.Mul(d, l.w.W.T())
	var dh mat.Dense
	dh.Mul(l.adj, &dwT)
	return &dh
}

func (g *GCN) Params() []*Param {
	out := make([]*Param, 0, 2*len(g.layers))
	for _, l := range g.layers {
		out = append(out, l.w, l.b)
	}
	return out
}

func (g *GCN) Export() []Tensor { return exportParams(g.Params()) }

func (g *GCN) Import(ts []Tensor) error { return importParams(g.Params(), ts) }
