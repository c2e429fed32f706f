// SPDX-License-Identifier: MIT

package direction

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/internal/workers"
	"github.com/katalvlaran/ubindex/ubfit"
)

// dcEnd is the first FFT bin that can hold a lattice period; lower bins carry
// the DC term and its leakage.
const dcEnd = 5

// qHeadroom widens the projection range past the largest |Q|.
const qHeadroom = 1.1

// FFTScanForDirections is ScanForDirections driven by the periodicity of
// projections instead of a length scan.
//
// For each hemisphere direction the Q-vectors are projected onto it and
// histogrammed into opts.FFTBins bins; a family of lattice planes normal to
// the direction shows up as a peak in the magnitude of the histogram's FFT,
// and the position of the first such peak gives the plane spacing, hence the
// edge length. Directions whose strongest peak lies near the top of the
// ranking are turned into edge vectors, filtered by length and by how many
// Q-vectors they index, refined opts.FFTRefineRounds times and passed through
// DiscardDuplicates. The returned list is sorted by increasing length; the
// count is the most Q-vectors a refined edge indexes.
func FFTScanForDirections(ctx context.Context, qs []geometry.Vec3, minD, maxD, tol, degreesPerStep float64, opts ScanOptions) ([]geometry.Vec3, int, error) {
	const op = "FFTScanForDirections"
	if err := checkScanArgs(op, qs, minD, maxD, tol, degreesPerStep); err != nil {
		return nil, 0, err
	}
	n := opts.FFTBins
	if n < 4*dcEnd || n&(n-1) != 0 || opts.FFTCandidates < 1 || opts.FFTRefineRounds < 0 {
		return nil, 0, fmt.Errorf("%s: bins=%d candidates=%d rounds=%d: %w",
			op, n, opts.FFTCandidates, opts.FFTRefineRounds, indexing.ErrBadParameter)
	}

	hemisphere, err := MakeHemisphereDirections(int(geometry.RoundHalfUp(90 / degreesPerStep)))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var maxQ float64
	for _, q := range qs {
		if m := q.Norm(); m > maxQ {
			maxQ = m
		}
	}
	if maxQ == 0 {
		return nil, 0, fmt.Errorf("%s: all Q-vectors are zero: %w", op, indexing.ErrInsufficientData)
	}
	maxQ *= qHeadroom

	// Stage 1: strongest non-DC magnitude per direction.
	peakMag := make([]float64, len(hemisphere))
	err = workers.ForChunks(ctx, len(hemisphere), opts.Workers, func(ctx context.Context, _, lo, hi int) {
		s := newSpectrum(n, maxQ)
		for i := lo; i < hi; i++ {
			if (i-lo)%workers.CheckEvery == 0 && ctx.Err() != nil {
				return
			}
			peakMag[i] = s.peak(hemisphere[i], qs)
		}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	// Stage 2: threshold from the ranking, then edge vectors from the first peak.
	threshold, ok := fftThreshold(peakMag, opts.FFTCandidates)
	if !ok {
		return nil, 0, fmt.Errorf("%s: flat spectrum over %d directions: %w", op, len(hemisphere), indexing.ErrInsufficientData)
	}
	s := newSpectrum(n, maxQ)
	var edges []geometry.Vec3
	for i, dir := range hemisphere {
		if peakMag[i] < threshold {
			continue
		}
		s.peak(dir, qs)
		position := firstMaxIndex(s.mag, threshold)
		if position <= 0 {
			continue
		}
		d := position / maxQ
		if d >= 0.8*minD && d <= 1.2*maxD {
			edges = append(edges, dir.Scale(d))
		}
	}

	// Stage 3: keep edges indexing at least half as many as the best one.
	var best int
	for _, e := range edges {
		if c := indexing.NumberIndexed1D(e, qs, tol); c > best {
			best = c
		}
	}
	var kept []geometry.Vec3
	for _, e := range edges {
		if float64(indexing.NumberIndexed1D(e, qs, tol)) >= 0.5*float64(best) {
			kept = append(kept, e)
		}
	}

	// Stage 4: refine.
	maxIndexed := 0
	for i, e := range kept {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		indices, indexedQs, _ := indexing.GetIndexedPeaks1D(e, qs, tol)
		for round := 0; round < opts.FFTRefineRounds; round++ {
			refined, _, err := ubfit.OptimizeDirection3D(indices, indexedQs)
			if err != nil {
				break
			}
			e = refined
			indices, indexedQs, _ = indexing.GetIndexedPeaks1D(e, qs, tol)
			if len(indices) > maxIndexed {
				maxIndexed = len(indices)
			}
		}
		kept[i] = e
	}

	// Stage 5: length range, indexed fraction, duplicates.
	var final []geometry.Vec3
	for _, e := range kept {
		if l := e.Norm(); l < minD || l > maxD {
			continue
		}
		if float64(indexing.NumberIndexed1D(e, qs, tol)) > 0.75*float64(maxIndexed) {
			final = append(final, e)
		}
	}
	final = SortByLength(final)

	return DiscardDuplicates(final, qs, tol, opts.LengthTolerance, opts.AngleTolerance), maxIndexed, nil
}

// SortByLength returns a copy of dirs in order of increasing length.
// Equal lengths keep their input order.
func SortByLength(dirs []geometry.Vec3) []geometry.Vec3 {
	out := make([]geometry.Vec3, len(dirs))
	copy(out, dirs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Norm2() < out[j].Norm2() })

	return out
}

// spectrum holds the reusable buffers of one FFT worker. gonum's FFT keeps
// internal work space, so each goroutine owns its own.
type spectrum struct {
	fft    *fourier.FFT
	hist   []float64
	coeffs []complex128
	mag    []float64
	factor float64
}

func newSpectrum(n int, maxQ float64) *spectrum {
	return &spectrum{
		fft:    fourier.NewFFT(n),
		hist:   make([]float64, n),
		coeffs: make([]complex128, n/2+1),
		mag:    make([]float64, n/2),
		factor: float64(n) / maxQ,
	}
}

// peak fills s.mag with the FFT magnitude of the projection histogram of qs
// on dir and returns its largest value beyond the DC bins.
func (s *spectrum) peak(dir geometry.Vec3, qs []geometry.Vec3) float64 {
	n := len(s.hist)
	for i := range s.hist {
		s.hist[i] = 0
	}
	for _, q := range qs {
		bin := int(math.Abs(s.factor * dir.Dot(q)))
		if bin >= n {
			bin = n - 1
		}
		s.hist[bin]++
	}
	s.coeffs = s.fft.Coefficients(s.coeffs, s.hist)
	for i := range s.mag {
		s.mag[i] = cmplx.Abs(s.coeffs[i])
	}

	return floats.Max(s.mag[dcEnd:])
}

// fftThreshold walks down the sorted peak magnitudes from the top, at most
// candidates places, stopping at the first value below half the maximum.
// It reports false when every direction is within half of the maximum, a
// spectrum with no direction standing out.
func fftThreshold(peakMag []float64, candidates int) (float64, bool) {
	if len(peakMag) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(peakMag))
	copy(sorted, peakMag)
	sort.Float64s(sorted)

	index := len(sorted) - 1
	top := sorted[index]
	threshold := top
	floor := max(0, len(sorted)-candidates)
	for index > floor && threshold >= top/2 {
		index--
		threshold = sorted[index]
	}
	if floor == 0 && sorted[0] >= top/2 {
		return threshold, false
	}

	return threshold, true
}

// firstMaxIndex returns the centroid position of the first local maximum of
// mag at or above threshold that follows a local minimum below it, or −1.
// The centroid uses two bins either side, one at the upper edge.
func firstMaxIndex(mag []float64, threshold float64) float64 {
	n := len(mag)
	i := 2

	foundMin := false
	for i < n-1 && !foundMin {
		v := mag[i]
		if v < threshold && v <= mag[i-1] && v <= mag[i+1] {
			foundMin = true
		}
		i++
	}
	if !foundMin {
		return -1
	}

	foundMax := false
	for i < n-1 {
		v := mag[i]
		if v >= threshold && v >= mag[i-1] && v >= mag[i+1] {
			foundMax = true
			break
		}
		i++
	}
	if !foundMax {
		return -1
	}

	offset := 2
	if i == n-2 {
		offset = 1
	}
	var sum, weight float64
	for j := i - offset; j <= i+offset; j++ {
		sum += float64(j) * mag[j]
		weight += mag[j]
	}

	return sum / weight
}
