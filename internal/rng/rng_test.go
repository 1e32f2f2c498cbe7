package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRand_Deterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRand_Ranges(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)

		s := r.Signed()
		assert.GreaterOrEqual(t, s, -0.5)
		assert.LessOrEqual(t, s, 0.5)

		n := r.Intn(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
}

func TestDerive(t *testing.T) {
	assert.Equal(t, Derive(1, "ba-dinh").Float64(), Derive(1, "ba-dinh").Float64())
	assert.NotEqual(t, Derive(1, "ba-dinh").Float64(), Derive(1, "saigon-1975").Float64())
}

func TestRand_IntnNonPositive(t *testing.T) {
	r := New(3)
	assert.NotPanics(t, func() {
		assert.Zero(t, r.Intn(0))
		assert.Zero(t, r.Intn(-4))
	})
	assert.Zero(t, r.Intn(1))
}
