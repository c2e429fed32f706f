// SPDX-License-Identifier: MIT

package reducedcell

import (
	"math"

	"github.com/katalvlaran/ubindex/geometry"
)

// NumForms is the number of reduced forms; table rows are numbered 1..NumForms.
const NumForms = 44

// CellType is the lattice system of a reduced form.
type CellType string

// Lattice systems, from highest to lowest symmetry.
const (
	Cubic        CellType = "Cubic"
	Hexagonal    CellType = "Hexagonal"
	Rhombohedral CellType = "Rhombohedral"
	Tetragonal   CellType = "Tetragonal"
	Orthorhombic CellType = "Orthorhombic"
	Monoclinic   CellType = "Monoclinic"
	Triclinic    CellType = "Triclinic"

	// NoType marks row 0, the observed cell.
	NoType CellType = "None"
)

// Centering is the lattice centering letter of a conventional cell.
type Centering string

// Centerings.
const (
	FCentered Centering = "F"
	ICentered Centering = "I"
	CCentered Centering = "C"
	PCentered Centering = "P"
	RCentered Centering = "R"

	// NoCentering marks row 0, the observed cell.
	NoCentering Centering = "None"
)

// String returns "F Centered", "I Centered", ... or "None".
func (c Centering) String() string {
	if c == NoCentering {
		return string(NoCentering)
	}

	return string(c) + " Centered"
}

// symmetryOrder lists the lattice systems from highest symmetry down.
var symmetryOrder = [...]CellType{Cubic, Hexagonal, Rhombohedral, Tetragonal, Orthorhombic, Monoclinic, Triclinic}

// bravais lists the 14 Bravais lattices; the triclinic one is last.
var bravais = [...]struct {
	cellType  CellType
	centering Centering
}{
	{Cubic, FCentered},
	{Cubic, ICentered},
	{Cubic, PCentered},
	{Hexagonal, PCentered},
	{Rhombohedral, RCentered},
	{Tetragonal, ICentered},
	{Tetragonal, PCentered},
	{Orthorhombic, FCentered},
	{Orthorhombic, ICentered},
	{Orthorhombic, CCentered},
	{Orthorhombic, PCentered},
	{Monoclinic, CCentered},
	{Monoclinic, ICentered},
	{Monoclinic, PCentered},
	{Triclinic, PCentered},
}

// scalars holds the squared lengths and the pairwise dot products of the
// cell edges. For rows 1..44 the dot products are taken in absolute value.
type scalars struct {
	aa, bb, cc float64
	bc, ac, ab float64
}

// footnote is a conditional correction of a form: when it applies, the
// transform is premultiplied by one of the modifiers and the centering
// changes.
type footnote uint8

const (
	noFootnote footnote = iota
	footnoteB           // a·a < 4|a·c|
	footnoteC           // b·b < 4|b·c|
	footnoteD           // c·c < 4|b·c|
	footnoteE           // 3a·a < c·c + 2|a·c|
	footnoteF           // 3b·b < c·c + 2|b·c|
)

// modifiers premultiply the transform of a form whose footnote applies.
var modifiers = [2]geometry.Mat3{
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 1}},
	{{-1, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

// apply reports whether the footnote holds for s and, if so, the modifier
// and the centering it imposes.
func (f footnote) apply(s scalars) (geometry.Mat3, Centering, bool) {
	switch f {
	case footnoteB:
		if s.aa < 4*math.Abs(s.ac) {
			return modifiers[0], ICentered, true
		}
	case footnoteC:
		if s.bb < 4*math.Abs(s.bc) {
			return modifiers[0], ICentered, true
		}
	case footnoteD:
		if s.cc < 4*math.Abs(s.bc) {
			return modifiers[0], ICentered, true
		}
	case footnoteE:
		if 3*s.aa < s.cc+2*math.Abs(s.ac) {
			return modifiers[1], CCentered, true
		}
	case footnoteF:
		if 3*s.bb < s.cc+2*math.Abs(s.bc) {
			return modifiers[1], CCentered, true
		}
	}

	return geometry.Mat3{}, "", false
}

// form is one row of the reduced-form table.
type form struct {
	transform geometry.Mat3
	cellType  CellType
	centering Centering
	footnote  footnote

	// products returns the template values of b·c, a·c and a·b.
	products func(s scalars) [3]float64
}

var (
	identity = geometry.Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	t2       = geometry.Mat3{{1, -1, 0}, {-1, 0, 1}, {-1, -1, -1}}
	t5       = geometry.Mat3{{1, 0, 1}, {1, 1, 0}, {0, 1, 1}}
	t13      = geometry.Mat3{{1, 1, 0}, {-1, 1, 0}, {0, 0, 1}}
	t21      = geometry.Mat3{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}
	t23      = geometry.Mat3{{0, 1, 1}, {0, -1, 1}, {1, 0, 0}}
)

func same(v float64) [3]float64 { return [3]float64{v, v, v} }

// forms is the reduced-form table. Row 0 describes the observed cell.
var forms = [NumForms + 1]form{
	{identity, NoType, NoCentering, noFootnote, func(s scalars) [3]float64 { return [3]float64{s.bc, s.ac, s.ab} }},

	// a = b = c
	{geometry.Mat3{{1, -1, 1}, {1, 1, -1}, {-1, 1, 1}}, Cubic, FCentered, noFootnote,
		func(s scalars) [3]float64 { return same(s.aa / 2) }},
	{t2, Rhombohedral, RCentered, noFootnote,
		func(s scalars) [3]float64 { return same(s.bc) }},
	{identity, Cubic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return same(0) }},
	{t2, Rhombohedral, RCentered, noFootnote,
		func(s scalars) [3]float64 { return same(-math.Abs(s.bc)) }},
	{t5, Cubic, ICentered, noFootnote,
		func(s scalars) [3]float64 { return same(-s.aa / 3) }},
	{geometry.Mat3{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}}, Tetragonal, ICentered, noFootnote,
		func(s scalars) [3]float64 {
			v := (-s.aa + math.Abs(s.ab)) / 2
			return [3]float64{v, v, -math.Abs(s.ab)}
		}},
	{t5, Tetragonal, ICentered, noFootnote,
		func(s scalars) [3]float64 {
			v := (-s.aa + math.Abs(s.bc)) / 2
			return [3]float64{-math.Abs(s.bc), v, v}
		}},
	{geometry.Mat3{{-1, -1, 0}, {-1, 0, -1}, {0, -1, -1}}, Orthorhombic, ICentered, noFootnote,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.ac), -(math.Abs(s.aa) - math.Abs(s.bc) - math.Abs(s.ac))}
		}},

	// a = b
	{geometry.Mat3{{1, 0, 0}, {-1, 1, 0}, {-1, -1, 3}}, Rhombohedral, RCentered, noFootnote,
		func(s scalars) [3]float64 { return same(s.aa / 2) }},
	{geometry.Mat3{{1, 1, 0}, {1, -1, 0}, {0, 0, -1}}, Monoclinic, CCentered, footnoteD,
		func(s scalars) [3]float64 { return [3]float64{s.bc, s.bc, s.ab} }},
	{identity, Tetragonal, PCentered, noFootnote,
		func(s scalars) [3]float64 { return same(0) }},
	{identity, Hexagonal, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, 0, -s.aa / 2} }},
	{t13, Orthorhombic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, 0, -math.Abs(s.ab)} }},
	{t13, Monoclinic, CCentered, footnoteD,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.bc), -math.Abs(s.ab)}
		}},
	{geometry.Mat3{{1, 0, 0}, {0, 1, 0}, {1, 1, 2}}, Tetragonal, ICentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-s.aa / 2, -s.aa / 2, 0} }},
	{geometry.Mat3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 2}}, Orthorhombic, FCentered, noFootnote,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.bc), -(s.aa - 2*math.Abs(s.bc))}
		}},
	{geometry.Mat3{{-1, 0, -1}, {-1, -1, 0}, {0, 1, 1}}, Monoclinic, ICentered, footnoteE,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.ac), -(s.aa - math.Abs(s.bc) - math.Abs(s.ac))}
		}},

	// b = c
	{geometry.Mat3{{0, -1, 1}, {1, -1, -1}, {1, 0, 0}}, Tetragonal, ICentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.aa / 4, s.aa / 2, s.aa / 2} }},
	{geometry.Mat3{{-1, 0, 0}, {0, -1, 1}, {-1, 1, 1}}, Orthorhombic, ICentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.bc, s.aa / 2, s.aa / 2} }},
	{geometry.Mat3{{0, 1, 1}, {0, 1, -1}, {-1, 0, 0}}, Monoclinic, CCentered, footnoteB,
		func(s scalars) [3]float64 { return [3]float64{s.bc, s.ac, s.ac} }},
	{t21, Tetragonal, PCentered, noFootnote,
		func(s scalars) [3]float64 { return same(0) }},
	{t21, Hexagonal, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-s.bb / 2, 0, 0} }},
	{t23, Orthorhombic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-math.Abs(s.bc), 0, 0} }},
	{geometry.Mat3{{1, 2, 1}, {0, -1, 1}, {1, 0, 0}}, Rhombohedral, RCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-(s.bb - s.aa/3) / 2, -s.aa / 3, -s.aa / 3} }},
	{t23, Monoclinic, CCentered, footnoteB,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.ac), -math.Abs(s.ac)}
		}},

	// no equal edges
	{geometry.Mat3{{1, 0, 0}, {-1, 2, 0}, {-1, 0, 2}}, Orthorhombic, FCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.aa / 4, s.aa / 2, s.aa / 2} }},
	{geometry.Mat3{{0, -1, 1}, {-1, 0, 0}, {1, -1, -1}}, Monoclinic, ICentered, footnoteF,
		func(s scalars) [3]float64 { return [3]float64{s.bc, s.aa / 2, s.aa / 2} }},
	{geometry.Mat3{{-1, 0, 0}, {-1, 0, 2}, {0, 1, 0}}, Monoclinic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.ab / 2, s.aa / 2, s.ab} }},
	{geometry.Mat3{{1, 0, 0}, {1, -2, 0}, {0, 0, -1}}, Monoclinic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.ac / 2, s.ac, s.aa / 2} }},
	{geometry.Mat3{{0, 1, 0}, {0, 1, -2}, {-1, 0, 0}}, Monoclinic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.bb / 2, s.ab / 2, s.ab} }},
	{identity, Triclinic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{s.bc, s.ac, s.ab} }},
	{identity, Orthorhombic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return same(0) }},
	{identity, Monoclinic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, -math.Abs(s.ac), 0} }},
	{geometry.Mat3{{-1, 0, 0}, {0, 0, -1}, {0, -1, 0}}, Monoclinic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, 0, -math.Abs(s.ab)} }},
	{geometry.Mat3{{0, -1, 0}, {-1, 0, 0}, {0, 0, -1}}, Monoclinic, PCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-math.Abs(s.bc), 0, 0} }},
	{geometry.Mat3{{1, 0, 0}, {-1, 0, -2}, {0, 1, 0}}, Orthorhombic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, -s.aa / 2, 0} }},
	{geometry.Mat3{{1, 0, 2}, {1, 0, 0}, {0, 1, 0}}, Monoclinic, CCentered, footnoteC,
		func(s scalars) [3]float64 { return [3]float64{-math.Abs(s.bc), -s.aa / 2, 0} }},
	{geometry.Mat3{{-1, 0, 0}, {1, 2, 0}, {0, 0, -1}}, Orthorhombic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{0, 0, -s.aa / 2} }},
	{geometry.Mat3{{-1, -2, 0}, {-1, 0, 0}, {0, 0, -1}}, Monoclinic, CCentered, footnoteD,
		func(s scalars) [3]float64 { return [3]float64{-math.Abs(s.bc), 0, -s.aa / 2} }},
	{geometry.Mat3{{0, -1, 0}, {0, 1, 2}, {-1, 0, 0}}, Orthorhombic, CCentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-s.bb / 2, 0, 0} }},
	{geometry.Mat3{{0, -1, -2}, {0, -1, 0}, {-1, 0, 0}}, Monoclinic, CCentered, footnoteB,
		func(s scalars) [3]float64 { return [3]float64{-s.bb / 2, -math.Abs(s.ac), 0} }},
	{geometry.Mat3{{-1, 0, 0}, {0, -1, 0}, {1, 1, 2}}, Orthorhombic, ICentered, noFootnote,
		func(s scalars) [3]float64 { return [3]float64{-s.bb / 2, -s.aa / 2, 0} }},
	{geometry.Mat3{{-1, 0, 0}, {-1, -1, -2}, {0, -1, 0}}, Monoclinic, ICentered, noFootnote,
		func(s scalars) [3]float64 {
			return [3]float64{-(s.bb - math.Abs(s.ab)) / 2, -(s.aa - math.Abs(s.ab)) / 2, -math.Abs(s.ab)}
		}},
	{identity, Triclinic, PCentered, noFootnote,
		func(s scalars) [3]float64 {
			return [3]float64{-math.Abs(s.bc), -math.Abs(s.ac), -math.Abs(s.ab)}
		}},
}

// templateLengths returns the squared edge lengths a row prescribes.
func templateLengths(n int, s scalars) [3]float64 {
	switch {
	case n == 0:
		return [3]float64{s.aa, s.bb, s.cc}
	case n <= 8:
		return same(s.aa)
	case n <= 17:
		return [3]float64{s.aa, s.aa, s.cc}
	case n <= 25:
		return [3]float64{s.aa, s.bb, s.bb}
	default:
		return [3]float64{s.aa, s.bb, s.cc}
	}
}
