package model

import (
	"math"
	"math/rand"

	"github.com/agenthands/ontovec/internal/graph"
	"gonum.org/v1/gonum/mat"
)

// leakySlope is the negative-side slope of the attention nonlinearity.
const leakySlope = 0.2

// GAT is a stack of attention layers. Each layer projects nodes with W, then
// aggregates each node's neighborhood (self-loop included) with per-edge
// weights softmaxed over e_ij = LeakyReLU(aSrc·Wh_i + aDst·Wh_j). Hidden
// layers apply ReLU; the final layer is linear.
type GAT struct {
	cfg    Config
	layers []*gatLayer
}

type gatLayer struct {
	w, aSrc, aDst, b *Param
	act              bool

	// forward caches
	in    *mat.Dense  // H
	z     *mat.Dense  // H W
	nbrs  [][]int     // per-node neighborhood, self first
	alpha [][]float64 // softmax weights, parallel to nbrs
	eRaw  [][]float64 // s_i + t_j before LeakyReLU, parallel to nbrs
	pre   *mat.Dense  // aggregated + bias, before activation
}

func newGAT(cfg Config, rng *rand.Rand) *GAT {
	dims := cfg.layerDims()
	g := &GAT{cfg: cfg, layers: make([]*gatLayer, cfg.Layers)}
	for i, d := range dims {
		g.layers[i] = &gatLayer{
			w:    newParam(layerName(i, "weight"), d[0], d[1], rng),
			aSrc: newParam(layerName(i, "att_src"), 1, d[1], rng),
			aDst: newParam(layerName(i, "att_dst"), 1, d[1], rng),
			b:    newParam(layerName(i, "bias"), 1, d[1], rng),
			act:  i < cfg.Layers-1,
		}
	}
	return g
}

func (g *GAT) Forward(x *mat.Dense, edges [][2]int) (*mat.Dense, error) {
	if err := checkWidth(x, g.cfg.InputDim); err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	nbrs := graph.Neighbors(edges, n)

	h := x
	for _, l := range g.layers {
		h = l.forward(h, nbrs)
	}
	return h, nil
}

func leaky(v float64) float64 {
	if v > 0 {
		return v
	}
	return leakySlope * v
}

func leakyGrad(v float64) float64 {
	if v > 0 {
		return 1
	}
	return leakySlope
}

func (l *gatLayer) forward(h *mat.Dense, nbrs [][]int) *mat.Dense {
	n, _ := h.Dims()
	_, out := l.w.W.Dims()

	z := &mat.Dense{}
	z.Mul(h, l.w.W)

	// per-node attention logits: s_i = aSrc·z_i, t_j = aDst·z_j
	s := make([]float64, n)
	t := make([]float64, n)
	for i := 0; i < n; i++ {
		zi := z.RawRowView(i)
		for k := 0; k < out; k++ {
			s[i] += l.aSrc.W.At(0, k) * zi[k]
			t[i] += l.aDst.W.At(0, k) * zi[k]
		}
	}

	alpha := make([][]float64, n)
	eRaw := make([][]float64, n)
	pre := mat.NewDense(n, out, nil)
	for i := 0; i < n; i++ {
		ns := nbrs[i]
		raw := make([]float64, len(ns))
		act := make([]float64, len(ns))
		maxE := math.Inf(-1)
		for k, j := range ns {
			raw[k] = s[i] + t[j]
			act[k] = leaky(raw[k])
			if act[k] > maxE {
				maxE = act[k]
			}
		}
		var sum float64
		a := make([]float64, len(ns))
		for k := range ns {
			a[k] = math.Exp(act[k] - maxE)
			sum += a[k]
		}
		for k := range ns {
			a[k] /= sum
		}
		alpha[i] = a
		eRaw[i] = raw

		acc := pre.RawRowView(i)
		for k, j := range ns {
			zj := z.RawRowView(j)
			for c := 0; c < out; c++ {
				acc[c] += a[k] * zj[c]
			}
		}
		for c := 0; c < out; c++ {
			acc[c] += l.b.W.At(0, c)
		}
	}

	l.in, l.z, l.nbrs, l.alpha, l.eRaw, l.pre = h, z, nbrs, alpha, eRaw, pre
	if !l.act {
		return pre
	}
	actOut := mat.NewDense(n, out, nil)
	actOut.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, pre)
	return actOut
}

func (g *GAT) Backward(dOut *mat.Dense) {
	grad := dOut
	for i := len(g.layers) - 1; i >= 0; i-- {
		grad = g.layers[i].backward(grad)
	}
}

func (l *gatLayer) backward(dOut *mat.Dense) *mat.Dense {
	n, out := dOut.Dims()

	dp := dOut
	if l.act {
		masked := mat.NewDense(n, out, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < out; j++ {
				if l.pre.At(i, j) > 0 {
					masked.Set(i, j, dOut.At(i, j))
				}
			}
		}
		dp = masked
	}

	// bias gradient
	for j := 0; j < out; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += dp.At(i, j)
		}
		l.b.Grad.Set(0, j, l.b.Grad.At(0, j)+sum)
	}

	dz := mat.NewDense(n, out, nil)
	ds := make([]float64, n) // grad wrt s_i
	dt := make([]float64, n) // grad wrt t_j

	for i := 0; i < n; i++ {
		ns := l.nbrs[i]
		a := l.alpha[i]
		gi := dp.RawRowView(i)

		// dAlpha_ij = dP_i · z_j ; z_j also receives alpha_ij * dP_i
		dAlpha := make([]float64, len(ns))
		for k, j := range ns {
			zj := l.z.RawRowView(j)
			var v float64
			for c := 0; c < out; c++ {
				v += gi[c] * zj[c]
				dz.Set(j, c, dz.At(j, c)+a[k]*gi[c])
			}
			dAlpha[k] = v
		}

		// softmax backward: dE_ij = a_ij (dAlpha_ij - sum_k a_ik dAlpha_ik)
		var inner float64
		for k := range ns {
			inner += a[k] * dAlpha[k]
		}
		for k, j := range ns {
			de := a[k] * (dAlpha[k] - inner)
			dpre := de * leakyGrad(l.eRaw[i][k])
			ds[i] += dpre
			dt[j] += dpre
		}
	}

	// s_i = aSrc·z_i, t_j = aDst·z_j
	for i := 0; i < n; i++ {
		zi := l.z.RawRowView(i)
		for c := 0; c < out; c++ {
			l.aSrc.Grad.Set(0, c, l.aSrc.Grad.At(0, c)+ds[i]*zi[c])
			l.aDst.Grad.Set(0, c, l.aDst.Grad.At(0, c)+dt[i]*zi[c])
			dz.Set(i, c, dz.At(i, c)+ds[i]*l.aSrc.W.At(0, c)+dt[i]*l.aDst.W.At(0, c))
		}
	}

	var dw mat.Dense
	dw.Mul(l.in.T(), dz)
	l.w.Grad.Add(l.w.Grad, &dw)

	var dh mat.Dense
	dh.Mul(dz, l.w.W.T())
	return &dh
}

func (g *GAT) Params() []*Param {
	out := make([]*Param, 0, 4*len(g.layers))
	for _, l := range g.layers {
		out = append(out, l.w, l.aSrc, l.aDst, l.b)
	}
	return out
}

func (g *GAT) Export() []Tensor { return exportParams(g.Params()) }

func (g *GAT) Import(ts []Tensor) error { return importParams(g.Params(), ts) }
