package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ubindex/direction"
	"github.com/katalvlaran/ubindex/driver"
	"github.com/katalvlaran/ubindex/finder"
	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/reducedcell"
)

// Config is the whole settings file.
type Config struct {
	Finder   FinderConfig   `yaml:"finder"`
	Driver   DriverConfig   `yaml:"driver"`
	Classify ClassifyConfig `yaml:"classify"`

	// Lattice is the known cell, if any. Without it the searches use
	// Finder.MinD and Finder.MaxD.
	Lattice *LatticeConfig `yaml:"lattice,omitempty"`
}

// FinderConfig mirrors finder.Options.
type FinderConfig struct {
	Tolerance      float64 `yaml:"tolerance"`
	BaseIndex      int     `yaml:"base_index"`
	NumInitial     int     `yaml:"num_initial"`
	DegreesPerStep float64 `yaml:"degrees_per_step"`
	FitShift       bool    `yaml:"fit_shift"`
	SkipNiggli     bool    `yaml:"skip_niggli"`
	MinD           float64 `yaml:"min_d"`
	MaxD           float64 `yaml:"max_d"`
	LengthStep     float64 `yaml:"length_step"`
	FFTBins        int     `yaml:"fft_bins"`
	Workers        int     `yaml:"workers"`
}

// DriverConfig mirrors the options of package driver.
type DriverConfig struct {
	Tolerance        float64 `yaml:"tolerance"`
	RequiredFraction float64 `yaml:"required_fraction"`
	MaxAttempts      int     `yaml:"max_attempts"`
	RetriesPerSeed   int     `yaml:"retries_per_seed"`
	StrongPeaks      int     `yaml:"strong_peaks"`
	Neighbors        int     `yaml:"neighbors"`
	RefineRounds     int     `yaml:"refine_rounds"`
	Starts           int     `yaml:"starts"`
	Workers          int     `yaml:"workers"`
	Niggli           bool    `yaml:"niggli"`
	InitialNumber    int     `yaml:"initial_number"`
	MaxTolerance     float64 `yaml:"max_tolerance"`

	// Seed fixes the random stream of the Seed phase. Zero keeps the
	// driver's default source.
	Seed int64 `yaml:"seed"`
}

// ClassifyConfig selects the conventional cell.
type ClassifyConfig struct {
	CellType       string  `yaml:"cell_type"`
	Centering      string  `yaml:"centering"`
	AngleTolerance float64 `yaml:"angle_tolerance"`
}

// LatticeConfig is a cell in Å and degrees.
type LatticeConfig struct {
	A     float64 `yaml:"a"`
	B     float64 `yaml:"b"`
	C     float64 `yaml:"c"`
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
}

// Default returns the settings every package uses when given none.
func Default() Config {
	fo := finder.DefaultOptions()

	return Config{
		Finder: FinderConfig{
			Tolerance:      fo.Tolerance,
			BaseIndex:      fo.BaseIndex,
			NumInitial:     fo.NumInitial,
			DegreesPerStep: fo.DegreesPerStep,
			MinD:           3,
			MaxD:           20,
			LengthStep:     direction.DefaultLengthStep,
			FFTBins:        direction.DefaultFFTBins,
			Workers:        1,
		},
		Driver: DriverConfig{
			Tolerance:        driver.DefaultTolerance,
			RequiredFraction: driver.DefaultRequiredFraction,
			MaxAttempts:      driver.DefaultMaxAttempts,
			RetriesPerSeed:   driver.DefaultRetriesPerSeed,
			StrongPeaks:      driver.DefaultStrongPeaks,
			Neighbors:        driver.DefaultNeighbors,
			RefineRounds:     driver.DefaultRefineRounds,
			Starts:           driver.DefaultStarts,
			Workers:          driver.DefaultWorkers,
			Niggli:           driver.DefaultNiggli,
			InitialNumber:    driver.DefaultInitialNumber,
			MaxTolerance:     driver.DefaultMaxTolerance,
		},
		Classify: ClassifyConfig{
			AngleTolerance: reducedcell.DefaultAngleTolerance,
		},
	}
}

// LoadConfig reads path over Default and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate reports the first value out of range.
func (c *Config) Validate() error {
	f := c.Finder
	switch {
	case !(f.Tolerance > 0 && f.Tolerance < 0.5):
		return invalid("finder.tolerance", f.Tolerance, "(0, 0.5)")
	case f.NumInitial < 3:
		return invalid("finder.num_initial", f.NumInitial, ">= 3")
	case !(f.DegreesPerStep > 0 && f.DegreesPerStep <= 90):
		return invalid("finder.degrees_per_step", f.DegreesPerStep, "(0, 90]")
	case !(f.MinD > 0 && f.MinD < f.MaxD):
		return invalid("finder.min_d", f.MinD, "(0, max_d)")
	case !(f.LengthStep > 0):
		return invalid("finder.length_step", f.LengthStep, "> 0")
	case f.FFTBins < 16:
		return invalid("finder.fft_bins", f.FFTBins, ">= 16")
	case f.Workers < 1:
		return invalid("finder.workers", f.Workers, ">= 1")
	}

	d := c.Driver
	switch {
	case !(d.Tolerance > 0 && d.Tolerance < 0.5):
		return invalid("driver.tolerance", d.Tolerance, "(0, 0.5)")
	case !(d.RequiredFraction > 0 && d.RequiredFraction <= 1):
		return invalid("driver.required_fraction", d.RequiredFraction, "(0, 1]")
	case d.MaxAttempts < 1:
		return invalid("driver.max_attempts", d.MaxAttempts, ">= 1")
	case d.RetriesPerSeed < 1:
		return invalid("driver.retries_per_seed", d.RetriesPerSeed, ">= 1")
	case d.StrongPeaks < 4:
		return invalid("driver.strong_peaks", d.StrongPeaks, ">= 4")
	case d.Neighbors < 3:
		return invalid("driver.neighbors", d.Neighbors, ">= 3")
	case d.RefineRounds < 0:
		return invalid("driver.refine_rounds", d.RefineRounds, ">= 0")
	case d.Starts < 1:
		return invalid("driver.starts", d.Starts, ">= 1")
	case d.Workers < 1:
		return invalid("driver.workers", d.Workers, ">= 1")
	case d.InitialNumber < 4:
		return invalid("driver.initial_number", d.InitialNumber, ">= 4")
	case !(d.MaxTolerance > 0 && d.MaxTolerance <= 0.5):
		return invalid("driver.max_tolerance", d.MaxTolerance, "(0, 0.5]")
	}

	if t := c.Classify.AngleTolerance; !(t >= 0 && t < 90) {
		return invalid("classify.angle_tolerance", t, "[0, 90)")
	}
	if c.Lattice != nil {
		if _, err := c.Lattice.Lattice(); err != nil {
			return fmt.Errorf("lattice: %v: %w", err, ErrInvalidConfig)
		}
	}

	return nil
}

func invalid(key string, v any, want string) error {
	return fmt.Errorf("%s = %v, want %s: %w", key, v, want, ErrInvalidConfig)
}

// Options converts the section to finder.Options. Logger stays nil.
func (f FinderConfig) Options() finder.Options {
	o := finder.DefaultOptions()
	o.Tolerance = f.Tolerance
	o.BaseIndex = f.BaseIndex
	o.NumInitial = f.NumInitial
	o.DegreesPerStep = f.DegreesPerStep
	o.FitShift = f.FitShift
	o.SkipNiggli = f.SkipNiggli
	o.Scan.LengthStep = f.LengthStep
	o.Scan.FFTBins = f.FFTBins
	o.Scan.Workers = f.Workers

	return o
}

// Options converts the section to driver options. It panics on values
// Validate rejects.
func (d DriverConfig) Options() []driver.Option {
	opts := []driver.Option{
		driver.WithTolerance(d.Tolerance),
		driver.WithRequiredFraction(d.RequiredFraction),
		driver.WithMaxAttempts(d.MaxAttempts),
		driver.WithRetriesPerSeed(d.RetriesPerSeed),
		driver.WithStrongPeaks(d.StrongPeaks),
		driver.WithNeighbors(d.Neighbors),
		driver.WithRefineRounds(d.RefineRounds),
		driver.WithStarts(d.Starts),
		driver.WithWorkers(d.Workers),
		driver.WithNiggli(d.Niggli),
		driver.WithInitialNumber(d.InitialNumber),
		driver.WithMaxTolerance(d.MaxTolerance),
	}
	if d.Seed != 0 {
		opts = append(opts, driver.WithSeed(d.Seed))
	}

	return opts
}

// Options converts the section to reducedcell options.
func (c ClassifyConfig) Options() []reducedcell.Option {
	return []reducedcell.Option{reducedcell.WithAngleTolerance(c.AngleTolerance)}
}

// Lattice validates the cell and computes its volume.
func (l LatticeConfig) Lattice() (geometry.Lattice, error) {
	return geometry.NewLattice(l.A, l.B, l.C, l.Alpha, l.Beta, l.Gamma)
}

// DriverOptions returns the driver section followed by WithFinder for the
// finder section, which the auto path searches with.
func (c *Config) DriverOptions() []driver.Option {
	return append(c.Driver.Options(), driver.WithFinder(c.Finder.Options()))
}
