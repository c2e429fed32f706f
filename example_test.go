package ubindex_test

import (
	"fmt"

	"github.com/katalvlaran/ubindex"
	"github.com/katalvlaran/ubindex/geometry"
)

// ExampleClassifyCell recovers the cube from the primitive cell of a
// face-centred cubic lattice.
func ExampleClassifyCell() {
	ub, err := geometry.UBFromABC(geometry.V(0, 2.5, 2.5), geometry.V(2.5, 0, 2.5), geometry.V(2.5, 2.5, 0))
	if err != nil {
		fmt.Println(err)
		return
	}
	cell, err := ubindex.ClassifyCell(ub, "Cubic", "F")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("form %d %s %s a=%.3f\n", cell.Form, cell.CellType, cell.Centering, cell.Lattice.A)
	// Output: form 1 Cubic F Centered a=5.000
}
