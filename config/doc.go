// Package config reads and writes the YAML settings of an indexing run.
//
// A file has up to four sections; missing keys keep their defaults:
//
//	finder:
//	  tolerance: 0.12
//	  num_initial: 35
//	  degrees_per_step: 1.5
//	  workers: 4
//	driver:
//	  tolerance: 0.12
//	  required_fraction: 0.4
//	  seed: 7
//	classify:
//	  cell_type: orthorhombic
//	  centering: F
//	  angle_tolerance: 2
//	lattice:
//	  a: 6.6
//	  b: 9.7
//	  c: 9.9
//	  alpha: 84
//	  beta: 71
//	  gamma: 70
//
// LoadConfig validates every range the option constructors of package driver
// and reducedcell would panic on, so the conversions never panic on a loaded
// Config.
package config
