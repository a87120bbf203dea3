package loss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Variant selects the training signal. Closed enumeration.
type Variant string

const (
	VariantTriplet     Variant = "triplet"
	VariantContrastive Variant = "contrastive"
	VariantCosine      Variant = "cosine"
	VariantBCE         Variant = "bce"
)

// ParseVariant validates a loss tag.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantTriplet, VariantContrastive, VariantCosine, VariantBCE:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown loss variant '%s'", s)
	}
}

// Strategy scores a batch of node vectors against positive (connected) and
// negative (sampled) pairs. It returns the mean loss and its gradient with
// respect to the vectors, same shape as z.
type Strategy interface {
	Score(z *mat.Dense, pos, neg [][2]int) (float64, *mat.Dense)
}

// New builds the strategy for a validated variant. margin only applies to the
// triplet and contrastive variants.
func New(v Variant, margin float64) (Strategy, error) {
	if _, err := ParseVariant(string(v)); err != nil {
		return nil, err
	}
	switch v {
	case VariantTriplet:
		return &Triplet{Margin: margin}, nil
	case VariantContrastive:
		return &Contrastive{Margin: margin}, nil
	case VariantCosine:
		return &Cosine{}, nil
	default:
		return &BCE{}, nil
	}
}

func row(z *mat.Dense, i int) []float64 {
	return z.RawRowView(i)
}

func addScaled(dst *mat.Dense, i int, scale float64, v []float64) {
	r := dst.RawRowView(i)
	for k := range r {
		r[k] += scale * v[k]
	}
}

func sqDist(a, b []float64) float64 {
	var s float64
	for k := range a {
		d := a[k] - b[k]
		s += d * d
	}
	return s
}

func dot(a, b []float64) float64 {
	var s float64
	for k := range a {
		s += a[k] * b[k]
	}
	return s
}
