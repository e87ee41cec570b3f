package generator

import "math/bits"

// Default xoroshiro128+ state words used when no seed is given.
const (
	DefaultXoroshiroS0 = 123
	DefaultXoroshiroS1 = 4567
)

// Xoroshiro128Plus is the xoroshiro128+ generator. As an IntGenerator it
// splits each 64-bit output into two 32-bit values, low half first.
type Xoroshiro128Plus struct {
	s0, s1  uint64
	pending uint32
	hasHigh bool
}

// NewXoroshiro128Plus returns a generator with the given state. An all-zero
// state is replaced by the default one, since it would only ever yield zero.
func NewXoroshiro128Plus(s0, s1 uint64) *Xoroshiro128Plus {
	if s0 == 0 && s1 == 0 {
		s0, s1 = DefaultXoroshiroS0, DefaultXoroshiroS1
	}
	return &Xoroshiro128Plus{s0: s0, s1: s1}
}

// Uint64 returns the next 64-bit output.
func (x *Xoroshiro128Plus) Uint64() uint64 {
	s0, s1 := x.s0, x.s1
	out := s0 + s1
	s1 ^= s0
	x.s0 = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	x.s1 = bits.RotateLeft64(s1, 37)
	return out
}

// Next returns the next 32-bit value.
func (x *Xoroshiro128Plus) Next() uint32 {
	if x.hasHigh {
		x.hasHigh = false
		return x.pending
	}
	v := x.Uint64()
	x.pending = uint32(v >> 32)
	x.hasHigh = true
	return uint32(v)
}

// splitMix64 expands a single seed into well-mixed state words.
func splitMix64(seed uint64) (uint64, uint64) {
	next := func() uint64 {
		seed += 0x9e3779b97f4a7c15
		z := seed
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	return next(), next()
}
