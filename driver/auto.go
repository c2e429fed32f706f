// SPDX-License-Identifier: MIT

package driver

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ubindex/finder"
	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// IndexPeaksAuto indexes peaks when only the range [minD, maxD] of cell
// edge lengths is known.
//
// The search runs on the WithInitialNumber lowest-|Q| strong peaks:
// finder.FindUBFFT first, finder.FindUBAuto when it fails. While fewer than
// the required fraction of those peaks index, the tolerance is raised by a
// factor 1.2 and the search repeated; past WithMaxTolerance the run fails
// with ErrConvergence. Grow, Refine and Standardize then proceed as in
// IndexPeaksWithLattice at the tolerance reached.
func IndexPeaksAuto(ctx context.Context, peaks []*indexing.Peak, minD, maxD float64, opts ...Option) (*Result, error) {
	const op = "IndexPeaksAuto"
	if len(peaks) < MinPeaks {
		return nil, fmt.Errorf("%s: need %d peaks, have %d: %w", op, MinPeaks, len(peaks), indexing.ErrInsufficientData)
	}
	if !(minD > 0) || !(maxD > minD) {
		return nil, fmt.Errorf("%s: need 0 < minD < maxD, have %g, %g: %w", op, minD, maxD, indexing.ErrBadParameter)
	}
	r := newRun(peaks, gatherOptions(opts...))
	r.log.Info("indexing started", "op", op, "peaks", len(peaks), "min_d", minD, "max_d", maxD)

	indexing.ClearHKL(peaks)
	r.strong = strongest(peaks, r.opts.strongPeaks)
	if err := r.search(ctx, minD, maxD); err != nil {
		return nil, err
	}

	return r.finish(ctx)
}

// search is the Seed phase of the auto path.
func (r *run) search(ctx context.Context, minD, maxD float64) error {
	initial := indexing.Qs(r.strong[:min(r.opts.initialNumber, len(r.strong))])
	required := r.opts.requiredFraction * float64(len(initial))

	fopts := r.opts.finder
	fopts.Logger = r.log

	var (
		best      geometry.Mat3
		bestCount = -1
	)
	for tol := r.opts.tolerance; tol <= r.opts.maxTolerance; tol *= DefaultToleranceGrowth {
		fopts.Tolerance = tol
		res, err := finder.FindUB(ctx, initial, minD, maxD, fopts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return r.fail(PhaseSeed, best, ctxErr)
			}
			r.log.Debug("search failed", "tolerance", tol, "err", err)
			continue
		}
		r.log.Debug("search", "tolerance", tol, "indexed", res.NumIndexed, "of", len(initial))
		if res.NumIndexed > bestCount {
			best, bestCount = res.UB, res.NumIndexed
		}
		if float64(res.NumIndexed) >= required {
			r.tol = tol
			r.log.Info("seed accepted", "tolerance", tol, "indexed", res.NumIndexed)
			return r.setUB(PhaseSeed, res.UB)
		}
	}

	return r.fail(PhaseSeed, best, fmt.Errorf("tolerance above %g, best %d indexed: %w",
		r.opts.maxTolerance, bestCount, indexing.ErrConvergence))
}
