// SPDX-License-Identifier: MIT

// Package driver: functional configuration of the indexing runs.
//
// Option setters validate their argument and panic on nonsensical values
// (programmer error); gatherOptions applies them over the documented
// defaults in order, last writer wins.
package driver

import (
	"io"
	"log/slog"

	"github.com/katalvlaran/ubindex/finder"
	"github.com/katalvlaran/ubindex/ubfit"
)

// ---------- Defaults ----------

// Seed phase.
const (
	// DefaultTolerance is the starting Miller-index tolerance.
	DefaultTolerance = 0.12

	// DefaultRequiredFraction of the neighbourhood (lattice path) or of the
	// initial peaks (auto path) must index for a seed to be accepted.
	DefaultRequiredFraction = 0.4

	// DefaultMaxAttempts bounds the orientation fits of the Seed phase.
	DefaultMaxAttempts = 25

	// DefaultRetriesPerSeed is the number of fits tried on one peak pair.
	DefaultRetriesPerSeed = 3

	// DefaultStrongPeaks is the number of most intense peaks the Seed and
	// Grow phases work on.
	DefaultStrongPeaks = 40

	// DefaultNeighbors is the size of the neighbourhood that judges a seed,
	// and of the first Grow batch.
	DefaultNeighbors = 20

	// DefaultStarts is the number of random starts of one orientation fit.
	DefaultStarts = ubfit.DefaultStarts

	// DefaultWorkers runs the orientation fit serially.
	DefaultWorkers = 1
)

// Later phases and the auto path.
const (
	// DefaultRefineRounds is the number of whole-list refits.
	DefaultRefineRounds = 5

	// DefaultNiggli reduces the final UB to its Niggli cell.
	DefaultNiggli = true

	// DefaultInitialNumber is the number of lowest-|Q| strong peaks the auto
	// path searches on.
	DefaultInitialNumber = 20

	// DefaultMaxTolerance ends the tolerance escalation of the auto path.
	DefaultMaxTolerance = 0.4

	// DefaultToleranceGrowth multiplies the tolerance after a failed round.
	DefaultToleranceGrowth = 1.2

	// DefaultGrowthFraction is the fraction of the working set added per
	// Grow round after the first batch.
	DefaultGrowthFraction = 0.1
)

// ---------- Panic messages ----------

const (
	panicToleranceInvalid = "driver: WithTolerance: tolerance must be in (0, 0.5)"
	panicFractionInvalid  = "driver: WithRequiredFraction: fraction must be in (0, 1]"
	panicAttemptsInvalid  = "driver: WithMaxAttempts: attempts must be ≥ 1"
	panicRetriesInvalid   = "driver: WithRetriesPerSeed: retries must be ≥ 1"
	panicStrongInvalid    = "driver: WithStrongPeaks: count must be ≥ 4"
	panicNeighborsInvalid = "driver: WithNeighbors: count must be ≥ 3"
	panicRoundsInvalid    = "driver: WithRefineRounds: rounds must be ≥ 0"
	panicStartsInvalid    = "driver: WithStarts: starts must be ≥ 1"
	panicWorkersInvalid   = "driver: WithWorkers: workers must be ≥ 1"
	panicInitialInvalid   = "driver: WithInitialNumber: count must be ≥ 4"
	panicMaxTolInvalid    = "driver: WithMaxTolerance: tolerance must be in (0, 0.5]"
	panicNilRand          = "driver: WithRand: source must not be nil"
	panicNilLogger        = "driver: WithLogger: logger must not be nil"
)

// ---------- Option type ----------

// Option mutates Options. Constructors panic only on nonsensical values.
type Option func(*Options)

// Options is the effective configuration of a run. Fields are unexported;
// entry points take ...Option and resolve them with gatherOptions.
type Options struct {
	// seed phase
	tolerance        float64
	requiredFraction float64
	maxAttempts      int
	retriesPerSeed   int
	strongPeaks      int
	neighbors        int
	starts           int
	workers          int
	rng              ubfit.Source

	// grow/refine/standardize
	refineRounds int
	niggli       bool

	// auto path
	initialNumber int
	maxTolerance  float64
	finder        finder.Options

	logger *slog.Logger
}

// ---------- Constructors ----------

// WithTolerance sets the starting Miller-index tolerance.
// Panics unless 0 < tol < 0.5.
func WithTolerance(tol float64) Option {
	if !(tol > 0 && tol < 0.5) {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tolerance = tol }
}

// WithRequiredFraction sets the fraction of peaks a seed must index.
// Implementation:
//   - Stage 1: validate 0 < f ≤ 1.
//   - Stage 2: return a setter writing f.
//
// Notes:
//   - Too low a fraction lets a wrong orientation through the Seed phase;
//     Grow then refits on mis-indexed peaks.
func WithRequiredFraction(f float64) Option {
	if !(f > 0 && f <= 1) {
		panic(panicFractionInvalid)
	}

	return func(o *Options) { o.requiredFraction = f }
}

// WithMaxAttempts bounds the number of orientation fits in the Seed phase.
func WithMaxAttempts(n int) Option {
	if n < 1 {
		panic(panicAttemptsInvalid)
	}

	return func(o *Options) { o.maxAttempts = n }
}

// WithRetriesPerSeed sets how many fits are tried on one peak pair before a
// new second peak is drawn.
func WithRetriesPerSeed(n int) Option {
	if n < 1 {
		panic(panicRetriesInvalid)
	}

	return func(o *Options) { o.retriesPerSeed = n }
}

// WithStrongPeaks sets how many of the most intense peaks the Seed and
// Grow phases use.
func WithStrongPeaks(n int) Option {
	if n < 4 {
		panic(panicStrongInvalid)
	}

	return func(o *Options) { o.strongPeaks = n }
}

// WithNeighbors sets the neighbourhood size that judges a seed.
func WithNeighbors(n int) Option {
	if n < 3 {
		panic(panicNeighborsInvalid)
	}

	return func(o *Options) { o.neighbors = n }
}

// WithRefineRounds sets the number of whole-list refits. Zero skips Refine.
func WithRefineRounds(n int) Option {
	if n < 0 {
		panic(panicRoundsInvalid)
	}

	return func(o *Options) { o.refineRounds = n }
}

// WithStarts sets the random starts of each orientation fit.
func WithStarts(n int) Option {
	if n < 1 {
		panic(panicStartsInvalid)
	}

	return func(o *Options) { o.starts = n }
}

// WithWorkers lets the orientation fit, and the direction scans of the
// auto path, use n goroutines. Results do not depend on n.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) {
		o.workers = n
		o.finder.Scan.Workers = n
	}
}

// WithNiggli toggles the Niggli reduction of the Standardize phase.
func WithNiggli(on bool) Option {
	return func(o *Options) { o.niggli = on }
}

// WithInitialNumber sets how many lowest-|Q| strong peaks the auto path
// searches on.
func WithInitialNumber(n int) Option {
	if n < 4 {
		panic(panicInitialInvalid)
	}

	return func(o *Options) { o.initialNumber = n }
}

// WithMaxTolerance sets where the auto path stops raising the tolerance.
func WithMaxTolerance(tol float64) Option {
	if !(tol > 0 && tol <= 0.5) {
		panic(panicMaxTolInvalid)
	}

	return func(o *Options) { o.maxTolerance = tol }
}

// WithFinder replaces the search settings of the auto path. Its Tolerance
// is overridden on every round and its Logger by the run logger.
func WithFinder(opts finder.Options) Option {
	return func(o *Options) { o.finder = opts }
}

// WithRand injects the randomness of the Seed phase.
func WithRand(src ubfit.Source) Option {
	if src == nil {
		panic(panicNilRand)
	}

	return func(o *Options) { o.rng = src }
}

// WithSeed is WithRand(ubfit.NewSource(seed)).
func WithSeed(seed int64) Option {
	return func(o *Options) { o.rng = ubfit.NewSource(seed) }
}

// WithLogger sends progress records to l.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *Options) { o.logger = l }
}

// gatherOptions applies user setters over the defaults.
func gatherOptions(user ...Option) Options {
	o := Options{
		tolerance:        DefaultTolerance,
		requiredFraction: DefaultRequiredFraction,
		maxAttempts:      DefaultMaxAttempts,
		retriesPerSeed:   DefaultRetriesPerSeed,
		strongPeaks:      DefaultStrongPeaks,
		neighbors:        DefaultNeighbors,
		starts:           DefaultStarts,
		workers:          DefaultWorkers,
		refineRounds:     DefaultRefineRounds,
		niggli:           DefaultNiggli,
		initialNumber:    DefaultInitialNumber,
		maxTolerance:     DefaultMaxTolerance,
		finder:           finder.DefaultOptions(),
	}
	o.finder.Scan.Workers = DefaultWorkers
	for _, set := range user {
		set(&o)
	}
	if o.rng == nil {
		o.rng = ubfit.NewSource(0)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o
}
