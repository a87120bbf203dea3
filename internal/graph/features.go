package graph

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrIncompatibleScheme is returned when a feature scheme cannot produce a
// valid input row for an identifier, e.g. a positional scheme asked to
// featurize an identifier outside the training vocabulary.
var ErrIncompatibleScheme = errors.New("feature scheme cannot featurize identifier")

// Scheme selects how node feature vectors are derived. The scheme used at
// training time is recorded in the checkpoint and must be re-applied verbatim
// when embedding a target ontology.
type Scheme string

const (
	// SchemeOneHot gives each vocabulary position an identity row. Width is
	// the vocabulary size, so it is inherently positional: identifiers
	// outside the vocabulary have no valid row.
	SchemeOneHot Scheme = "onehot"

	// SchemeHashed draws each row from a PRNG seeded by the identifier hash,
	// so any identifier, seen or unseen, derives the same row everywhere.
	SchemeHashed Scheme = "hashed"
)

// ParseScheme validates a scheme tag.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeOneHot, SchemeHashed:
		return Scheme(s), nil
	default:
		return "", fmt.Errorf("unknown feature scheme '%s'", s)
	}
}

// FeatureWidth is the input dimensionality the scheme produces for a given
// vocabulary size and configured dimension.
func FeatureWidth(scheme Scheme, vocabSize, configuredDim int) int {
	if scheme == SchemeOneHot {
		return vocabSize
	}
	return configuredDim
}

// Features builds the node-feature matrix for ids, one row per identifier in
// order. vocab is the vocabulary the encoding is tied to: at training time it
// is the graph's own index, at inference time it is the checkpoint's training
// vocabulary. width must match FeatureWidth for the scheme.
func Features(scheme Scheme, ids []string, vocab map[string]int, width int, seed int64) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("featurizing empty node set: %w", ErrEmptyOntology)
	}
	if width <= 0 {
		return nil, fmt.Errorf("feature width must be positive, got %d", width)
	}

	x := mat.NewDense(len(ids), width, nil)
	switch scheme {
	case SchemeOneHot:
		for row, id := range ids {
			pos, ok := vocab[id]
			if !ok {
				return nil, fmt.Errorf("identifier '%s' is outside the training vocabulary and the onehot scheme is positional: %w", id, ErrIncompatibleScheme)
			}
			if pos < 0 || pos >= width {
				return nil, fmt.Errorf("identifier '%s' has vocabulary position %d outside feature width %d: %w", id, pos, width, ErrIncompatibleScheme)
			}
			x.Set(row, pos, 1)
		}
	case SchemeHashed:
		for row, id := range ids {
			for col, v := range hashedRow(id, width, seed) {
				x.Set(row, col, v)
			}
		}
	default:
		return nil, fmt.Errorf("unknown feature scheme '%s'", scheme)
	}
	return x, nil
}

// hashedRow derives a fixed pseudo-random feature row from the identifier
// alone. The derivation is pure: same identifier, width and seed always give
// the same row, which is what lets a trained model accept identifiers it
// never saw.
func hashedRow(id string, width int, seed int64) []float64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ seed))
	row := make([]float64, width)
	for i := range row {
		row[i] = rng.NormFloat64()
	}
	return row
}
