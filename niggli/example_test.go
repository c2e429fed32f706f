package niggli_test

import (
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/niggli"
)

// ExampleMakeNiggliUB reduces a sheared basis of a 4 Å cubic lattice.
func ExampleMakeNiggliUB() {
	a, b, c := geometry.V(4, 0, 0), geometry.V(0, 4, 0), geometry.V(0, 0, 4)
	sheared, err := geometry.UBFromABC(a, b.Add(a), c.Add(a).Add(b))
	if err != nil {
		fmt.Println(err)
		return
	}

	ub, changed, err := niggli.MakeNiggliUB(sheared)
	if err != nil {
		fmt.Println(err)
		return
	}
	l, _ := geometry.LatticeFromUB(ub)
	fmt.Printf("%v %.2f %.2f %.2f %.1f %.1f %.1f\n", changed, l.A, l.B, l.C, l.Alpha, l.Beta, l.Gamma)
	// Output:
	// true 4.00 4.00 4.00 90.0 90.0 90.0
}
