// Package finder computes an orientation matrix UB from a list of Q-vectors.
//
// Three searches are provided:
//
//   - FindUBWithLattice: the cell parameters are known. ScanForUB tries
//     every orientation of the cell on a grid and keeps the one indexing the
//     most low-|Q| peaks; the UB is then refit while more peaks are brought in.
//   - FindUBAuto: only a range of edge lengths is known. Candidate edges come
//     from direction.ScanForDirections; each plausible triple is grown with
//     ExpandSetOfIndexedPeaks and the one with the smallest average error wins.
//   - FindUBFFT: as FindUBAuto, but the edges come from
//     direction.FFTScanForDirections and the triple indexing the most peaks is
//     used directly.
//
// All three return a Result whose FitError is the sum of squared distances of
// the fractional Miller indices from integers over the indexed peaks.
// FindUBAuto and FindUBFFT finish with niggli.MakeNiggliUB unless
// Options.SkipNiggli is set.
//
// Q-vectors follow the |Q| = 1/d convention, without 2π.
package finder
