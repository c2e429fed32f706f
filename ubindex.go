// SPDX-License-Identifier: MIT

package ubindex

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ubindex/driver"
	"github.com/katalvlaran/ubindex/finder"
	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/reducedcell"
)

// Params selects and configures a UB search.
type Params struct {
	// Lattice, when set, is the known cell and the search only orients it.
	Lattice *geometry.Lattice

	// MinD and MaxD bound the cell edge lengths (Å) when Lattice is nil.
	MinD, MaxD float64

	// Finder tunes the search. The zero value means finder.DefaultOptions().
	Finder finder.Options
}

func (p Params) finderOptions() finder.Options {
	if p.Finder.Tolerance == 0 && p.Finder.DegreesPerStep == 0 && p.Finder.NumInitial == 0 {
		return finder.DefaultOptions()
	}

	return p.Finder
}

// FindUB returns a UB for the peaks and its fit error. With p.Lattice it
// orients the known cell (finder.FindUBWithLattice); otherwise it searches
// edges in [p.MinD, p.MaxD] (finder.FindUB). Peaks are not modified.
func FindUB(ctx context.Context, peaks []*indexing.Peak, p Params) (geometry.Mat3, float64, error) {
	qs := indexing.Qs(peaks)
	opts := p.finderOptions()

	var (
		res finder.Result
		err error
	)
	if p.Lattice != nil {
		res, err = finder.FindUBWithLattice(ctx, qs, *p.Lattice, opts)
	} else {
		res, err = finder.FindUB(ctx, qs, p.MinD, p.MaxD, opts)
	}
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("FindUB: %w", err)
	}

	return res.UB, res.FitError, nil
}

// IndexPeaks sets the hkl of every peak from ubInverse (indexing.Index) and
// returns how many were indexed.
func IndexPeaks(peaks []*indexing.Peak, ubInverse geometry.Mat3, tol float64) int {
	return indexing.Index(peaks, ubInverse, tol)
}

// Run performs a full iterative indexing run: driver.IndexPeaksWithLattice
// when p.Lattice is set, driver.IndexPeaksAuto otherwise. p.Finder configures
// the searches of the auto path unless opts overrides it.
func Run(ctx context.Context, peaks []*indexing.Peak, p Params, opts ...driver.Option) (*driver.Result, error) {
	if p.Lattice != nil {
		return driver.IndexPeaksWithLattice(ctx, peaks, *p.Lattice, opts...)
	}
	all := append([]driver.Option{driver.WithFinder(p.finderOptions())}, opts...)

	return driver.IndexPeaksAuto(ctx, peaks, p.MinD, p.MaxD, all...)
}

// ClassifyCell returns the conventional cell of lowest error among the forms
// matching the filters (empty accepts any; see reducedcell.BestMatch), or
// indexing.ErrNoMatch.
func ClassifyCell(ub geometry.Mat3, cellType, centering string, opts ...reducedcell.Option) (reducedcell.ConventionalCellInfo, error) {
	const op = "ClassifyCell"
	cells, err := reducedcell.GetCells(ub, cellType, centering, opts...)
	if err != nil {
		return reducedcell.ConventionalCellInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	best, ok := reducedcell.CellBestError(cells, true)
	if !ok {
		return reducedcell.ConventionalCellInfo{}, fmt.Errorf("%s: type %q centering %q: %w",
			op, cellType, centering, indexing.ErrNoMatch)
	}

	return best, nil
}
