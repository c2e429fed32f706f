// SPDX-License-Identifier: MIT
// Package indexing: error taxonomy shared by the finders, optimizers, driver
// and cell matcher. Match with errors.Is; wrap with fmt.Errorf("Op: %w", ErrX).

package indexing

import "errors"

var (
	// ErrInsufficientData: fewer peaks, pairs or directions than the operation needs.
	ErrInsufficientData = errors.New("indexing: insufficient data")

	// ErrRankDeficient: a least-squares solve had no numerically stable solution.
	ErrRankDeficient = errors.New("indexing: rank deficient system")

	// ErrConvergence: an attempt or retry budget ran out before the indexed
	// fraction was reached.
	ErrConvergence = errors.New("indexing: convergence failure")

	// ErrNoMatch: no reduced-cell form satisfied the requested filters.
	ErrNoMatch = errors.New("indexing: no matching cell")

	// ErrInvalidUB: a matrix failed CheckUB (non-finite or implausible determinant).
	ErrInvalidUB = errors.New("indexing: invalid UB matrix")

	// ErrBadParameter: a numeric argument is outside its documented range.
	ErrBadParameter = errors.New("indexing: bad parameter")
)
