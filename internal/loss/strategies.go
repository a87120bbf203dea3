package loss

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// normFloor guards cosine normalization against zero-length vectors.
const normFloor = 1e-8

// Triplet is a margin ranking loss over squared distances. The k-th positive
// pair supplies the anchor and positive; the k-th negative pair supplies the
// negative node.
type Triplet struct {
	Margin float64
}

func (t *Triplet) Score(z *mat.Dense, pos, neg [][2]int) (float64, *mat.Dense) {
	r, c := z.Dims()
	grad := mat.NewDense(r, c, nil)
	count := len(pos)
	if len(neg) < count {
		count = len(neg)
	}
	if count == 0 {
		return 0, grad
	}

	var total float64
	inv := 1 / float64(count)
	for k := 0; k < count; k++ {
		a, p, n := pos[k][0], pos[k][1], neg[k][1]
		za, zp, zn := row(z, a), row(z, p), row(z, n)
		l := sqDist(za, zp) - sqDist(za, zn) + t.Margin
		if l <= 0 {
			continue
		}
		total += l
		// d/dza = 2(zn - zp), d/dzp = -2(za - zp), d/dzn = 2(za - zn)
		for i := 0; i < c; i++ {
			grad.Set(a, i, grad.At(a, i)+inv*2*(zn[i]-zp[i]))
			grad.Set(p, i, grad.At(p, i)-inv*2*(za[i]-zp[i]))
			grad.Set(n, i, grad.At(n, i)+inv*2*(za[i]-zn[i]))
		}
	}
	return total * inv, grad
}

// Contrastive pulls connected pairs together by squared distance and pushes
// sampled pairs apart up to the margin.
type Contrastive struct {
	Margin float64
}

func (s *Contrastive) Score(z *mat.Dense, pos, neg [][2]int) (float64, *mat.Dense) {
	r, c := z.Dims()
	grad := mat.NewDense(r, c, nil)
	total := 0.0
	n := len(pos) + len(neg)
	if n == 0 {
		return 0, grad
	}
	inv := 1 / float64(n)

	for _, p := range pos {
		za, zb := row(z, p[0]), row(z, p[1])
		total += sqDist(za, zb)
		for i := 0; i < c; i++ {
			g := inv * 2 * (za[i] - zb[i])
			grad.Set(p[0], i, grad.At(p[0], i)+g)
			grad.Set(p[1], i, grad.At(p[1], i)-g)
		}
	}
	for _, q := range neg {
		za, zb := row(z, q[0]), row(z, q[1])
		d := math.Sqrt(sqDist(za, zb))
		if d >= s.Margin {
			continue
		}
		total += (s.Margin - d) * (s.Margin - d)
		scale := -inv * 2 * (s.Margin - d) / math.Max(d, normFloor)
		for i := 0; i < c; i++ {
			g := scale * (za[i] - zb[i])
			grad.Set(q[0], i, grad.At(q[0], i)+g)
			grad.Set(q[1], i, grad.At(q[1], i)-g)
		}
	}
	return total * inv, grad
}

// Cosine scores positives by 1-cos and penalizes non-negative cosine on
// sampled pairs. Norms are floored before division.
type Cosine struct{}

func (s *Cosine) Score(z *mat.Dense, pos, neg [][2]int) (float64, *mat.Dense) {
	r, c := z.Dims()
	grad := mat.NewDense(r, c, nil)
	n := len(pos) + len(neg)
	if n == 0 {
		return 0, grad
	}
	inv := 1 / float64(n)
	total := 0.0

	accum := func(a, b int, sign float64) float64 {
		za, zb := row(z, a), row(z, b)
		na := math.Max(math.Sqrt(dot(za, za)), normFloor)
		nb := math.Max(math.Sqrt(dot(zb, zb)), normFloor)
		cos := dot(za, zb) / (na * nb)
		// dcos/dza = zb/(na*nb) - cos*za/na^2, symmetric in b.
		for i := 0; i < c; i++ {
			ga := sign * inv * (zb[i]/(na*nb) - cos*za[i]/(na*na))
			gb := sign * inv * (za[i]/(na*nb) - cos*zb[i]/(nb*nb))
			grad.Set(a, i, grad.At(a, i)+ga)
			grad.Set(b, i, grad.At(b, i)+gb)
		}
		return cos
	}

	for _, p := range pos {
		cos := accum(p[0], p[1], -1)
		total += 1 - cos
	}
	for _, q := range neg {
		za, zb := row(z, q[0]), row(z, q[1])
		na := math.Max(math.Sqrt(dot(za, za)), normFloor)
		nb := math.Max(math.Sqrt(dot(zb, zb)), normFloor)
		if dot(za, zb)/(na*nb) <= 0 {
			continue
		}
		total += accum(q[0], q[1], 1)
	}
	return total * inv, grad
}

// BCE treats edge prediction as binary classification over pair dot products.
type BCE struct{}

// logitClamp keeps exp() finite for badly scaled embeddings.
const logitClamp = 30.0

func (s *BCE) Score(z *mat.Dense, pos, neg [][2]int) (float64, *mat.Dense) {
	r, c := z.Dims()
	grad := mat.NewDense(r, c, nil)
	n := len(pos) + len(neg)
	if n == 0 {
		return 0, grad
	}
	inv := 1 / float64(n)
	total := 0.0

	score := func(a, b int, label float64) {
		za, zb := row(z, a), row(z, b)
		x := dot(za, zb)
		if x > logitClamp {
			x = logitClamp
		} else if x < -logitClamp {
			x = -logitClamp
		}
		p := 1 / (1 + math.Exp(-x))
		if label == 1 {
			total += -math.Log(p + 1e-12)
		} else {
			total += -math.Log(1 - p + 1e-12)
		}
		dx := inv * (p - label)
		addScaled(grad, a, dx, zb)
		addScaled(grad, b, dx, za)
	}

	for _, p := range pos {
		score(p[0], p[1], 1)
	}
	for _, q := range neg {
		score(q[0], q[1], 0)
	}
	return total * inv, grad
}
