// SPDX-License-Identifier: MIT

package ubfit

import "math/rand"

// Source is the randomness FitOrientation and the indexing driver consume.
// *rand.Rand satisfies it. A Source is not shared between goroutines.
type Source interface {
	Float64() float64
	Int63() int64
}

// defaultSeed replaces a zero seed so that the zero value stays reproducible.
const defaultSeed int64 = 1

// NewSource returns a deterministic *rand.Rand. seed==0 uses defaultSeed.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}

	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream id (SplitMix64 finalizer).
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// DeriveSource returns an independent stream for one attempt or worker.
// base.Int63 is consumed once, so repeated calls with the same stream id
// still yield different children. A nil base uses defaultSeed as the parent.
func DeriveSource(base Source, stream uint64) *rand.Rand {
	parent := defaultSeed
	if base != nil {
		parent = base.Int63()
	}

	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}
