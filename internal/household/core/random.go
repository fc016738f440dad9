package core

import (
	"math/rand/v2"
	"time"
)

// Generator is the entropy source for job attributes and moods.
// *rand.Rand satisfies it. Implementations need not be safe for concurrent use.
type Generator interface {
	IntN(n int) int
}

const seedMix = 0x9e3779b97f4a7c15

// NewGenerator returns a PCG-backed generator. A zero seed is replaced with the current time.
func NewGenerator(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// DeriveGenerator seeds an independent generator from parent, so each worker
// owns its entropy and never shares a source across goroutines.
func DeriveGenerator(parent Generator) *rand.Rand {
	hi := uint64(parent.IntN(1 << 31))
	lo := uint64(parent.IntN(1 << 31))
	return NewGenerator(hi<<32 | lo | 1)
}

func roll(gen Generator) int {
	return gen.IntN(maxAttribute-minAttribute+1) + minAttribute
}
