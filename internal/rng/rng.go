// Package rng wraps a PCG generator so scene jitter, camera shake and
// terrain noise are reproducible from a seed.
package rng

import (
	"hash/fnv"
	"math"

	"github.com/MichaelTJones/pcg"
)

const stream = 0xda3e39cb94b95bdb

// Rand is a seeded PCG32 generator. It is not safe for concurrent use.
type Rand struct {
	r *pcg.PCG32
}

// New returns a generator seeded with seed.
func New(seed uint64) *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.r.Seed(seed, stream)
	return r
}

// Derive returns a generator whose seed mixes seed with label, so that
// independent consumers get independent but reproducible sequences.
func Derive(seed uint64, label string) *Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return New(seed ^ h.Sum64())
}

// Float64 returns a number in [0, 1].
func (r *Rand) Float64() float64 {
	return float64(r.r.Random()) / (1<<32 - 1)
}

// Signed returns a number in [-0.5, 0.5].
func (r *Rand) Signed() float64 {
	return r.Float64() - 0.5
}

// Intn returns a number in [0, n). It returns 0 when n <= 0; n is capped at
// the 32-bit range of the generator.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := uint64(n)
	if bound > math.MaxUint32 {
		bound = math.MaxUint32
	}
	return int(r.r.Bounded(uint32(bound)))
}
