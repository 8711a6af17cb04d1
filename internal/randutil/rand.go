// Package randutil centralises how the shoe's random source is built so that a
// single int64 seed reproduces an entire session.
package randutil

import (
	rand "math/rand/v2"

	"github.com/coder/quartz"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// rand/v2's PCG needs two 64-bit seeds; both are derived from seed here so that
// every caller gets the same sequence for the same value.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed when it is non-zero. A zero seed means "not configured" and
// is replaced by the clock's current time in nanoseconds.
func Seed(seed int64, clock quartz.Clock) int64 {
	if seed != 0 {
		return seed
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return clock.Now().UnixNano()
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
