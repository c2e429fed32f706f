// SPDX-License-Identifier: MIT

// Package ubindex determines the orientation matrix UB of a single crystal
// from a list of measured diffraction peaks and classifies the resulting
// cell against the 44 reduced forms.
//
// A UB matrix maps integer Miller indices to reciprocal-space vectors,
// Q = UB·hkl, with |Q| = 1/d. The rows of UB⁻¹ are the real-space cell edges.
//
// The root package is a thin front end over the subpackages:
//
//	geometry/     Vec3, Mat3, rotations and lattice parameters
//	indexing/     peaks, Miller-index classification and the shared errors
//	ubfit/        least-squares UB fits and the multi-start orientation fit
//	direction/    real-space edge searches over a hemisphere, direct and FFT
//	finder/       one-shot UB searches, with or without a known cell
//	niggli/       reduction of a UB to its Niggli cell
//	driver/       the iterative Seed, Grow, Refine and Standardize run
//	reducedcell/  the reduced-form table and conventional-cell selection
//	config/       YAML configuration of all of the above
//	peakio/       peak list and matrix file formats
//
// Quick start:
//
//	peaks, _ := peakio.ReadPeaksFile("peaks.txt")
//	ub, fitErr, err := ubindex.FindUB(ctx, peaks, ubindex.Params{MinD: 3, MaxD: 18})
//	cell, err := ubindex.ClassifyCell(ub, "", "")
//
// Errors are matched with errors.Is against the sentinels of package
// indexing (ErrInsufficientData, ErrNoMatch, ...).
package ubindex
