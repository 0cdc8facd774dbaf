// Package random derives a deterministic pseudo-random stream from audio
// content. The seed is a hash of the samples themselves, so the same
// track always produces the same draw sequence, on every platform. No
// other source of randomness exists anywhere in the pipeline.
package random

import "math"

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619

	// seedPrefixSamples bounds how many mono samples feed the hash.
	// 16384 samples is ~0.37 s at 44.1 kHz, enough to tell tracks apart
	// while keeping seeding O(1) in track length.
	seedPrefixSamples = 16384

	// fixedPointScale quantizes samples to Q15 integers before hashing,
	// making the hash independent of float formatting concerns.
	fixedPointScale = 32768
)

// Seed hashes a fixed-length prefix of the mono samples with an FNV-1a
// variant folding one quantized sample per round. An empty buffer hashes
// to the plain offset basis.
func Seed(samples []float64) uint32 {
	hash := fnvOffsetBasis

	n := min(len(samples), seedPrefixSamples)
	for _, s := range samples[:n] {
		q := uint32(int32(math.Round(s * fixedPointScale)))
		hash ^= q
		hash *= fnvPrime
	}

	return hash
}

// A Source is a Mulberry32 generator: 32-bit state advanced by a fixed
// additive constant, mixed through multiply/xor/shift. Not cryptographic.
type Source struct {
	state uint32
}

// New returns a Source seeded with the given value.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Next returns the next value in [0, 1). Identical seeds and call order
// yield identical sequences across runs and machines.
func (s *Source) Next() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)

	return float64(t^(t>>14)) / 4294967296
}

// IntN returns a uniform draw from [0, n). It panics when n <= 0, which
// is a programming error.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		panic("random: IntN called with n <= 0")
	}

	return int(s.Next() * float64(n))
}
