// SPDX-License-Identifier: MIT

// Package peakio reads and writes the plain-text files around an indexing
// run.
//
// A peak list has one peak per line, whitespace separated:
//
//	qx qy qz intensity [h k l]
//
// Q is in Å⁻¹ without the 2π factor. Text after '#' is ignored, as are blank
// lines. A line with hkl yields an indexed peak.
//
// A matrix file is the five-line ISAW layout: three lines holding the rows of
// UBᵀ, one line a b c α β γ V of the real cell, and one line of the standard
// deviations of those seven values.
package peakio
