// Package rand defines the bounded-integer-draw contract the corpus
// layer uses for random selection.
//
// The corpus does not implement a PRNG. Callers hand it a Source;
// StdSource adapts the standard library generator for production use,
// and tests substitute a deterministic source.
package rand

import mrand "math/rand/v2"

// Source draws uniformly distributed integers.
type Source interface {
	// Below returns a uniform value in [0, n). n must be > 0.
	Below(n uint64) uint64
}

// StdSource is a seeded Source backed by math/rand/v2.
// Not safe for concurrent use; the corpus model is single-owner.
type StdSource struct {
	r *mrand.Rand
}

// NewStdSource returns a source seeded deterministically from seed.
// The same seed reproduces the same draw sequence, which is what a
// fuzzing campaign wants for replayability.
func NewStdSource(seed uint64) *StdSource {
	return &StdSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Below returns a uniform value in [0, n). Panics if n == 0, matching
// the contract that callers validate emptiness first.
func (s *StdSource) Below(n uint64) uint64 {
	return s.r.Uint64N(n)
}
