// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"
	"math"
)

// Lattice holds the six cell parameters (lengths in Å, angles in degrees)
// and the signed cell volume (a×b)·c.
type Lattice struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
	Volume             float64
}

// NewLattice validates and returns a lattice; the volume is computed from the
// six parameters.
func NewLattice(a, b, c, alpha, beta, gamma float64) (Lattice, error) {
	l := Lattice{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}
	if err := l.Validate(); err != nil {
		return Lattice{}, err
	}
	l.Volume = l.volume()

	return l, nil
}

// Validate checks that lengths are positive and angles lie in (0,180).
func (l Lattice) Validate() error {
	if !(l.A > 0 && l.B > 0 && l.C > 0) {
		return fmt.Errorf("Validate: lengths %g %g %g: %w", l.A, l.B, l.C, ErrBadLattice)
	}
	for _, ang := range [3]float64{l.Alpha, l.Beta, l.Gamma} {
		if !(ang > 0 && ang < 180) {
			return fmt.Errorf("Validate: angle %g: %w", ang, ErrBadLattice)
		}
	}

	return nil
}

func (l Lattice) volume() float64 {
	ca, cb, cg := cosd(l.Alpha), cosd(l.Beta), cosd(l.Gamma)
	return l.A * l.B * l.C * math.Sqrt(math.Max(0, 1-ca*ca-cb*cb-cg*cg+2*ca*cb*cg))
}

// Slice returns [a b c alpha beta gamma volume].
func (l Lattice) Slice() []float64 {
	return []float64{l.A, l.B, l.C, l.Alpha, l.Beta, l.Gamma, l.Volume}
}

// String formats the parameters the way indexing logs print them.
func (l Lattice) String() string {
	return fmt.Sprintf("%8.4f %8.4f %8.4f  %8.4f %8.4f %8.4f  %8.4f",
		l.A, l.B, l.C, l.Alpha, l.Beta, l.Gamma, l.Volume)
}

// Metric returns the Gram matrix G with G[i][j] = eᵢ·eⱼ for the cell edges.
func (l Lattice) Metric() Mat3 {
	ab := l.A * l.B * cosd(l.Gamma)
	ac := l.A * l.C * cosd(l.Beta)
	bc := l.B * l.C * cosd(l.Alpha)

	return Mat3{
		{l.A * l.A, ab, ac},
		{ab, l.B * l.B, bc},
		{ac, bc, l.C * l.C},
	}
}

// LatticeFromMetric recovers the cell parameters from a Gram matrix.
func LatticeFromMetric(g Mat3) (Lattice, error) {
	if g[0][0] <= 0 || g[1][1] <= 0 || g[2][2] <= 0 {
		return Lattice{}, fmt.Errorf("LatticeFromMetric: non-positive diagonal: %w", ErrBadLattice)
	}
	a := math.Sqrt(g[0][0])
	b := math.Sqrt(g[1][1])
	c := math.Sqrt(g[2][2])
	l := Lattice{
		A: a, B: b, C: c,
		Alpha: acosd(g[1][2] / (b * c)),
		Beta:  acosd(g[0][2] / (a * c)),
		Gamma: acosd(g[0][1] / (a * b)),
	}
	det := g.Det()
	if det > 0 {
		l.Volume = math.Sqrt(det)
	}

	return l, nil
}

// Vectors returns cell edges for l in a standard frame: a along x and b in
// the xy-plane, c completing a right-handed cell.
func (l Lattice) Vectors() (a, b, c Vec3) {
	a = Vec3{l.A, 0, 0}
	b = Vec3{l.B * cosd(l.Gamma), l.B * sind(l.Gamma), 0}
	c = CellEdgeC(a, b, l.C, l.Alpha, l.Beta, l.Gamma)

	return a, b, c
}

// BMatrix returns the UB matrix of l in the standard frame of Vectors.
// With twoPi set the result is scaled by 2π (Q = 2π/d convention).
func (l Lattice) BMatrix(twoPi bool) (Mat3, error) {
	a, b, c := l.Vectors()
	ub, err := UBFromABC(a, b, c)
	if err != nil {
		return Mat3{}, err
	}
	if twoPi {
		ub = ub.Scale(2 * math.Pi)
	}

	return ub, nil
}

// CellEdgeC returns the edge of length c making angle alpha with b and beta
// with a, on the side of the a,b plane given by a×b. gamma must be the angle
// between a and b.
func CellEdgeC(aDir, bDir Vec3, c, alpha, beta, gamma float64) Vec3 {
	var (
		cosAlpha = cosd(alpha)
		cosBeta  = cosd(beta)
		cosGamma = cosd(gamma)
		sinGamma = sind(gamma)
	)
	c1 := c * cosBeta
	c2 := c * (cosAlpha - cosGamma*cosBeta) / sinGamma
	v := math.Sqrt(1 - cosAlpha*cosAlpha - cosBeta*cosBeta - cosGamma*cosGamma +
		2*cosAlpha*cosBeta*cosGamma)
	c3 := c * v / sinGamma

	basis1 := aDir.Normalize()
	basis3 := aDir.Cross(bDir).Normalize()
	basis2 := basis3.Cross(basis1).Normalize()

	return basis1.Scale(c1).Add(basis2.Scale(c2)).Add(basis3.Scale(c3))
}

// UBFromABC returns the UB matrix whose inverse has rows a, b, c.
func UBFromABC(a, b, c Vec3) (Mat3, error) {
	return FromRows(a, b, c).Inverse()
}

// ABCFromUB returns the real-space cell edges: the rows of UB⁻¹.
func ABCFromUB(ub Mat3) (a, b, c Vec3, err error) {
	inv, err := ub.Inverse()
	if err != nil {
		return Vec3{}, Vec3{}, Vec3{}, err
	}

	return inv.Row(0), inv.Row(1), inv.Row(2), nil
}

// LatticeFromVectors returns the parameters of the cell with edges a, b, c.
// Volume is the signed triple product (a×b)·c.
func LatticeFromVectors(a, b, c Vec3) Lattice {
	return Lattice{
		A: a.Norm(), B: b.Norm(), C: c.Norm(),
		Alpha:  Angle(b, c),
		Beta:   Angle(c, a),
		Gamma:  Angle(a, b),
		Volume: a.Cross(b).Dot(c),
	}
}

// LatticeFromUB returns the cell parameters of the real-space cell of ub.
func LatticeFromUB(ub Mat3) (Lattice, error) {
	a, b, c, err := ABCFromUB(ub)
	if err != nil {
		return Lattice{}, err
	}

	return LatticeFromVectors(a, b, c), nil
}

// IsRightHanded reports whether the real-space cell of ub satisfies (a×b)·c > 0.
func IsRightHanded(ub Mat3) bool {
	a, b, c, err := ABCFromUB(ub)
	if err != nil {
		return false
	}

	return a.Cross(b).Dot(c) > 0
}

func cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }

func acosd(x float64) float64 {
	if x > 1 {
		x = 1
	}
	if x < -1 {
		x = -1
	}

	return math.Acos(x) * 180 / math.Pi
}
