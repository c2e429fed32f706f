// Package refdata holds reference peak sets used by tests, benchmarks and
// the runnable examples.
package refdata

import "github.com/katalvlaran/ubindex/geometry"

// Natrolite returns the twelve Q-vectors (|Q| = 1/d) of the natrolite
// reference measurement.
// Cell: a=6.6 b=9.7 c=9.9 Å, α=84 β=71 γ=70 degrees (reduced setting).
func Natrolite() []geometry.Vec3 {
	return []geometry.Vec3{
		{-0.57582, -0.35322, -0.19974},
		{-1.41754, -0.78704, -0.75974},
		{-1.12030, -0.53578, -0.27559},
		{-0.68911, -0.59397, -0.12716},
		{-1.06863, -0.43255, 0.01688},
		{-1.82007, -0.49671, -0.06266},
		{-1.10465, -0.73708, -0.01939},
		{-0.12747, -0.32380, 0.00821},
		{-0.84210, -0.37038, 0.15403},
		{-0.54099, -0.46900, 0.11535},
		{-0.90478, -0.50667, 0.51072},
		{-0.50387, -0.58561, 0.43502},
	}
}

// NatroliteHKL are the Miller indices the natrolite set takes under the
// reference cell returned by NatroliteUB, in the order of Natrolite.
func NatroliteHKL() []geometry.Vec3 {
	return []geometry.Vec3{
		{1, 9, -9}, {4, 20, -24}, {2, 18, -14}, {0, 12, -12},
		{1, 19, -9}, {3, 31, -13}, {0, 20, -14}, {-1, 3, -5},
		{0, 16, -6}, {-1, 11, -7}, {-2, 20, -4}, {-3, 13, -5},
	}
}

// NatroliteUB is a UB matrix that indexes the full natrolite set at 0.1.
func NatroliteUB() geometry.Mat3 {
	return geometry.Mat3{
		{-0.059660400, -0.049648200, 0.0077539105},
		{0.093009956, -0.007510495, 0.0419835400},
		{-0.104643770, 0.021613428, 0.0322586300},
	}
}

// NatroliteLattice returns the reference cell parameters a, b, c, α, β, γ.
func NatroliteLattice() (a, b, c, alpha, beta, gamma float64) {
	return 6.6, 9.7, 9.9, 84, 71, 70
}
