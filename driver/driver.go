// SPDX-License-Identifier: MIT

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/niggli"
	"github.com/katalvlaran/ubindex/ubfit"
)

// MinPeaks is the smallest peak list a run accepts.
const MinPeaks = 4

const twoPi = 2 * math.Pi

// run carries the state of one indexing run between phases.
type run struct {
	id    uuid.UUID
	opts  Options
	log   *slog.Logger
	peaks []*indexing.Peak

	// strong are the most intense peaks, in the order Grow adds them.
	strong []*indexing.Peak

	// inv is UB⁻¹ in the 2π convention; tol the working tolerance.
	inv geometry.Mat3
	tol float64
}

func newRun(peaks []*indexing.Peak, opts Options) *run {
	id := uuid.New()

	return &run{
		id:    id,
		opts:  opts,
		log:   opts.logger.With("run", id.String()),
		peaks: peaks,
		tol:   opts.tolerance,
	}
}

// strongest returns up to n peaks of highest intensity, sorted by |Q|.
func strongest(peaks []*indexing.Peak, n int) []*indexing.Peak {
	sorted := append([]*indexing.Peak(nil), peaks...)
	indexing.SortByIntensity(sorted)
	strong := sorted[:min(n, len(sorted))]
	indexing.SortByQ(strong, true)

	return strong
}

// IndexPeaksWithLattice indexes peaks of a crystal with known cell
// parameters and assigns every peak its Miller indices (0,0,0 when it does
// not index). Peak order is left unchanged.
//
// The Seed phase is randomized through WithRand or WithSeed; everything
// after it is deterministic. ctx is checked between fits.
func IndexPeaksWithLattice(ctx context.Context, peaks []*indexing.Peak, lattice geometry.Lattice, opts ...Option) (*Result, error) {
	const op = "IndexPeaksWithLattice"
	if len(peaks) < MinPeaks {
		return nil, fmt.Errorf("%s: need %d peaks, have %d: %w", op, MinPeaks, len(peaks), indexing.ErrInsufficientData)
	}
	if err := lattice.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrBadParameter)
	}
	r := newRun(peaks, gatherOptions(opts...))
	r.log.Info("indexing started", "op", op, "peaks", len(peaks), "lattice", lattice.String())

	indexing.ClearHKL(peaks)
	r.strong = strongest(peaks, r.opts.strongPeaks)
	if err := r.seed(ctx, lattice); err != nil {
		return nil, err
	}

	return r.finish(ctx)
}

// finish runs Grow, Refine and Standardize from the seeded state.
func (r *run) finish(ctx context.Context) (*Result, error) {
	if err := r.grow(ctx); err != nil {
		return nil, err
	}
	if err := r.refine(ctx); err != nil {
		return nil, err
	}

	return r.standardize()
}

// seed finds the first orientation from a random peak pair.
func (r *run) seed(ctx context.Context, lattice geometry.Lattice) error {
	o := r.opts
	numNeighbors := min(o.neighbors, len(r.strong))
	required := o.requiredFraction * float64(numNeighbors)

	fitOpts := ubfit.DefaultOrientationOptions()
	fitOpts.Starts = o.starts
	fitOpts.Workers = o.workers

	var (
		best      geometry.Mat3
		bestCount = -1
		attempts  int
	)
	for attempts < o.maxAttempts {
		// Stage 1: the pair and its neighbourhood.
		indexing.SortByQ(r.strong, true)
		first := r.strong[0]
		second := r.strong[1+int(float64(len(r.strong)/2)*o.rng.Float64())]
		indexing.SortByDistanceToPair(r.strong, first, second)
		neighbors := r.strong[2:numNeighbors]
		pair := []geometry.Vec3{first.Q, second.Q}

		// Stage 2: orientation fits on the pair.
		for retry := 0; retry < o.retriesPerSeed && attempts < o.maxAttempts; retry++ {
			if err := ctx.Err(); err != nil {
				return r.fail(PhaseSeed, best, err)
			}
			fitOpts.Rand = ubfit.DeriveSource(o.rng, uint64(attempts))
			attempts++
			fit, err := ubfit.FitOrientation(ctx, lattice, pair, fitOpts)
			if err != nil {
				r.log.Debug("orientation fit failed", "attempt", attempts, "err", err)
				continue
			}
			inv, err := fit.UB.Inverse()
			if err != nil {
				continue
			}
			n := indexing.NumIndexed(neighbors, inv, r.tol)
			r.log.Debug("seed attempt", "attempt", attempts, "indexed", n, "of", len(neighbors), "chi2", fit.ChiSquare)
			if n > bestCount {
				best, bestCount = fit.UB, n
			}
			if float64(n) >= required {
				r.log.Info("seed accepted", "attempt", attempts, "indexed", n)
				return r.setUB(PhaseSeed, fit.UB)
			}
		}
	}

	return r.fail(PhaseSeed, best, fmt.Errorf("%d attempts, best %d indexed: %w", attempts, bestCount, indexing.ErrConvergence))
}

// grow refits on the indexed part of a working set that takes the first
// neighbourhood-sized batch of strong peaks and then about ten percent more
// per round.
func (r *run) grow(ctx context.Context) error {
	var (
		working []*indexing.Peak
		next    int
		toAdd   = r.opts.neighbors
	)
	for next < len(r.strong) {
		if err := ctx.Err(); err != nil {
			return r.fail(PhaseGrow, r.ub(), err)
		}
		end := min(next+toAdd, len(r.strong))
		working = append(working, r.strong[next:end]...)
		next = end
		toAdd = max(int(DefaultGrowthFraction*float64(len(working))), 1)

		inv, n, err := optimizeInverse(working, r.inv, r.tol)
		if err != nil {
			return r.fail(PhaseGrow, r.ub(), err)
		}
		r.inv = inv
		r.log.Debug("grown", "peaks", len(working), "indexed", n)
	}

	return nil
}

// refine refits against every peak. A failed round ends the run with the
// UB of the last successful round.
func (r *run) refine(ctx context.Context) error {
	for i := 0; i < r.opts.refineRounds; i++ {
		if err := ctx.Err(); err != nil {
			return r.fail(PhaseRefine, r.ub(), err)
		}
		inv, n, err := optimizeInverse(r.peaks, r.inv, r.tol)
		if err != nil {
			return r.fail(PhaseRefine, r.ub(), fmt.Errorf("round %d: %w", i, err))
		}
		r.inv = inv
		r.log.Debug("refined", "round", i, "indexed", n)
	}

	return nil
}

// standardize converts to the 1/d convention, reduces the cell and indexes
// every peak with the result.
func (r *run) standardize() (*Result, error) {
	ub := r.ub()
	if r.opts.niggli {
		reduced, changed, err := niggli.MakeNiggliUB(ub)
		if err != nil {
			return nil, r.fail(PhaseStandardize, ub, err)
		}
		r.log.Debug("niggli reduction", "changed", changed)
		ub = reduced
	}
	inv, err := ub.Inverse()
	if err != nil {
		return nil, r.fail(PhaseStandardize, ub, fmt.Errorf("%v: %w", err, indexing.ErrInvalidUB))
	}
	indexing.Index(r.peaks, inv, r.tol)
	set := indexing.IndexedFromPeaks(r.peaks, r.tol)
	n := set.Count()

	res := &Result{
		UB:         ub,
		UBInverse:  inv.Scale(1 / twoPi),
		FitError:   ubfit.FitError(ub, set.HKLs, set.Qs),
		NumIndexed: n,
		Tolerance:  r.tol,
		Phase:      PhaseStandardize,
		RunID:      r.id,
	}
	r.log.Info("indexing finished", "indexed", n, "of", len(r.peaks), "fit", res.FitError)

	return res, nil
}

// ub returns the current UB in the 1/d convention, zero if unset.
func (r *run) ub() geometry.Mat3 {
	m, err := r.inv.Inverse()
	if err != nil {
		return geometry.Mat3{}
	}

	return m.Scale(1 / twoPi)
}

// setUB stores ub (1/d convention) as the 2π-convention inverse.
func (r *run) setUB(phase Phase, ub geometry.Mat3) error {
	inv, err := ub.Scale(twoPi).Inverse()
	if err != nil {
		return r.fail(phase, ub, fmt.Errorf("%v: %w", err, indexing.ErrInvalidUB))
	}
	r.inv = inv

	return nil
}

func (r *run) fail(phase Phase, ub geometry.Mat3, err error) error {
	r.log.Warn("indexing failed", "phase", phase.String(), "err", err)

	return &PartialResult{Phase: phase, UB: ub, RunID: r.id, Err: err}
}

// optimizeInverse indexes peaks with the 2π-convention inverse inv, fits
// UB·hkl ≈ 2π·Q on those within tol and returns the new inverse with the
// number of peaks used. Peaks rounding to (0,0,0) take part in the fit.
func optimizeInverse(peaks []*indexing.Peak, inv geometry.Mat3, tol float64) (geometry.Mat3, int, error) {
	var hkls, qs []geometry.Vec3
	for _, p := range peaks {
		q := p.Q.Scale(twoPi)
		hkl := inv.MulVec(q)
		if indexing.DistanceToInts(hkl) < tol {
			hkls = append(hkls, hkl.Round())
			qs = append(qs, q)
		}
	}
	ub, _, err := ubfit.OptimizeUB3D(hkls, qs)
	if err != nil {
		return geometry.Mat3{}, 0, err
	}
	next, err := ub.Inverse()
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("%v: %w", err, indexing.ErrRankDeficient)
	}

	return next, len(hkls), nil
}
