// Package direction searches for real-space cell edge vectors directly from
// Q-vectors, without knowing the crystal orientation.
//
// A real-space vector d is a candidate cell edge when d·Q is close to an
// integer for many peaks. The package samples directions over a hemisphere
// (MakeHemisphereDirections) or a cone about an axis (MakeCircleDirections),
// scores them by brute force (ScanForDirections, SelectDirection) or by the
// periodicity of the projected Q-vectors (FFTScanForDirections, using
// gonum's real FFT), refines survivors with ubfit.OptimizeDirection3D and
// assembles three of them into a UB matrix (FormUBFromABCVectors,
// FormUBFromBestTriple).
//
// Direction lists are deterministic: the same inputs give the same vectors in
// the same order, whatever ScanOptions.Workers is.
package direction
