// Package driver runs the iterative peak-indexing procedure end to end.
//
// IndexPeaksWithLattice works from known cell parameters and moves through
// four phases:
//
//   - Seed: orient the cell on the strongest low-|Q| peak and a second peak
//     drawn at random from the weaker half of the strong set, with
//     ubfit.FitOrientation. The seed is accepted once enough of the peaks
//     surrounding the pair index at the working tolerance; otherwise a new
//     pair is drawn, within a fixed attempt budget.
//   - Grow: refit UB by linear least squares on the indexed peaks while the
//     working set grows by about ten percent per round.
//   - Refine: refit against every peak for a fixed number of rounds. A
//     failed round ends the run with a PartialResult holding the last good UB.
//   - Standardize: convert to the |Q| = 1/d convention, reduce to the Niggli
//     cell and assign Miller indices to every peak.
//
// IndexPeaksAuto replaces the Seed phase with finder.FindUBFFT (falling back
// to finder.FindUBAuto) on the lowest-|Q| peaks, raising the tolerance by a
// factor 1.2 per round until enough of them index.
//
// Between Seed and Standardize the driver keeps UB⁻¹ in the 2π convention,
// hkl = UB⁻¹·(2π·Q), which is also how Result.UBInverse is reported.
// Result.UB maps hkl to Q with |Q| = 1/d.
//
// A failed phase is returned as a *PartialResult carrying the last good UB;
// errors.Is on it matches the cause (indexing.ErrConvergence,
// indexing.ErrRankDeficient, ...).
package driver
