package geometry_test

import (
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
)

// ExampleLatticeFromUB rotates the B matrix of an orthorhombic cell and
// reads the cell back from the resulting UB.
func ExampleLatticeFromUB() {
	l, err := geometry.NewLattice(5, 10, 8, 90, 90, 90)
	if err != nil {
		fmt.Println(err)
		return
	}
	b, err := l.BMatrix(false)
	if err != nil {
		fmt.Println(err)
		return
	}
	ub := geometry.EulerRotation(30, 60, 90).Mul(b)

	back, err := geometry.LatticeFromUB(ub)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.3f %.3f %.3f %.1f %.1f %.1f %.1f\n",
		back.A, back.B, back.C, back.Alpha, back.Beta, back.Gamma, back.Volume)
	// Output: 5.000 10.000 8.000 90.0 90.0 90.0 400.0
}
