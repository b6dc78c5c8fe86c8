package models

import "math/rand"

// Source supplies the randomness used by the flood generator. *rand.Rand
// satisfies it, so tests can pass rand.New(rand.NewSource(seed)) or a fixed
// sequence.
type Source interface {
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int

	// Float64 returns a value in [0, 1).
	Float64() float64
}

type globalSource struct{}

func (globalSource) Intn(n int) int   { return rand.Intn(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// GlobalSource returns a Source backed by the process-wide math/rand
// generator, which is safe for concurrent use.
func GlobalSource() Source { return globalSource{} }
