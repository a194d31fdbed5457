package rng

import (
	"math/rand"
)

// Adapter implements ports.RNGPort with math/rand sources whose seed mixes
// the stream name into the base seed, so that independent named streams
// never share a sequence.
type Adapter struct{}

// NewAdapter creates a seeded RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(name string, seed int64) *rand.Rand {
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}
