// Package rng provides the seeded pseudo-random stream behind every mosaic.
//
// The generator is mulberry32: a single 32-bit state advanced by a Weyl
// increment and finished with two xorshift-multiply rounds. All arithmetic
// wraps modulo 2^32, so the sequence for a seed is the same on every
// platform and in every reimplementation that follows the algorithm below:
//
//	state += 0x6D2B79F5
//	t = state
//	t = (t ^ t>>15) * (t | 1)
//	t ^= t + (t ^ t>>7) * (t | 61)
//	next = (t ^ t>>14) / 2^32
//
// An RNG is a plain value owned by exactly one generation. There is no
// package-level instance; concurrent generations must each create their own.
package rng

// weyl is the per-step state increment.
const weyl uint32 = 0x6D2B79F5

// scale maps a uint32 onto [0, 1).
const scale = 1.0 / 4294967296.0

// RNG is a deterministic mulberry32 stream.
type RNG struct {
	state uint32
}

// New returns a stream positioned at the start of seed's sequence.
func New(seed uint32) *RNG {
	return &RNG{state: seed}
}

// Reseed resets the stream to the start of seed's sequence.
func (r *RNG) Reseed(seed uint32) {
	r.state = seed
}

// State returns the raw internal state.
func (r *RNG) State() uint32 {
	return r.state
}

// Next returns the next float in [0, 1).
func (r *RNG) Next() float64 {
	r.state += weyl
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) * scale
}

// Range returns a + (b-a)*Next().
//
// The product is rounded to float64 before the addition so the compiler
// cannot fuse it into an FMA on architectures that have one.
func (r *RNG) Range(a, b float64) float64 {
	return a + float64((b-a)*r.Next())
}

// Intn returns floor(Range(0, n)) clamped to [0, n-1]. It consumes exactly one draw.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		r.Next()
		return 0
	}
	i := int(r.Range(0, float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// NormalizeSeed folds any integer seed into the 32-bit seed space
// using two's-complement wraparound. Out-of-range seeds are never rejected.
func NormalizeSeed(seed int64) uint32 {
	return uint32(seed)
}
