package loss

import (
	"errors"
	"math/rand"
)

// ErrNoNegatives is returned when the graph is too dense to sample pairs that
// are not edges.
var ErrNoNegatives = errors.New("no negative candidates available")

// Sampler draws node pairs assumed unrelated: uniform index pairs rejected
// against the edge set in both directions. Deterministic given the seed.
type Sampler struct {
	n     int
	edges map[[2]int]bool
	rng   *rand.Rand
}

func NewSampler(edges [][2]int, n int, seed int64) *Sampler {
	set := make(map[[2]int]bool, 2*len(edges))
	for _, e := range edges {
		set[e] = true
		set[[2]int{e[1], e[0]}] = true
	}
	return &Sampler{n: n, edges: set, rng: rand.New(rand.NewSource(seed))}
}

// Negatives draws count non-edge, non-self pairs. Rejection is bounded; a
// graph so dense that nothing can be sampled returns ErrNoNegatives.
func (s *Sampler) Negatives(count int) ([][2]int, error) {
	if s.n < 2 {
		return nil, ErrNoNegatives
	}
	out := make([][2]int, 0, count)
	misses := 0
	limit := 100 * (count + 1)
	for len(out) < count && misses < limit {
		a := s.rng.Intn(s.n)
		b := s.rng.Intn(s.n)
		if a == b || s.edges[[2]int{a, b}] {
			misses++
			continue
		}
		out = append(out, [2]int{a, b})
	}
	if len(out) == 0 {
		return nil, ErrNoNegatives
	}
	return out, nil
}
