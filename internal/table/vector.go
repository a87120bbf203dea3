package table

import (
	"fmt"
	"math"
	"sort"
)

// Vector arithmetic over embedding rows. All operations are length-checked
// and allocate fresh slices; table contents are never mutated.

func checkLen(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	return nil
}

func Add(a, b []float64) ([]float64, error) {
	if err := checkLen(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

func Sub(a, b []float64) ([]float64, error) {
	if err := checkLen(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

func Scale(a []float64, s float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

func Norm(a []float64) float64 {
	var s float64
	for _, v := range a {
		s += v * v
	}
	return math.Sqrt(s)
}

// Normalize returns the unit vector, or the zero vector unchanged.
func Normalize(a []float64) []float64 {
	n := Norm(a)
	if n == 0 {
		return append([]float64(nil), a...)
	}
	return Scale(a, 1/n)
}

func Cosine(a, b []float64) (float64, error) {
	if err := checkLen(a, b); err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb), nil
}

// Neighbor is one nearest-neighbor hit.
type Neighbor struct {
	ID    string
	Score float64
}

// Nearest ranks all table rows by cosine similarity to query and returns the
// top k. Rows with mismatched length are skipped.
func (t *Table) Nearest(query []float64, k int) []Neighbor {
	hits := make([]Neighbor, 0, len(t.rows))
	for _, r := range t.rows {
		score, err := Cosine(query, r.Vector)
		if err != nil {
			continue
		}
		hits = append(hits, Neighbor{ID: r.ID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
