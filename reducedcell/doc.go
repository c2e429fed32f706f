// SPDX-License-Identifier: MIT

// Package reducedcell matches a Niggli-reduced cell against the 44 reduced
// forms of the International Tables (Vol. A, Table 9.2.5.1) and derives the
// conventional cell, Bravais type and centering of the best form.
//
// What:
//
//   - Cell is one row of the table evaluated for a concrete lattice. Row 0
//     holds the six scalars of the cell itself (a², b², c², b·c, a·c, a·b);
//     rows 1–44 hold the values the same cell would have if it were exactly
//     of that form.
//   - WeightedDistance compares rows on a common length scale (Å): edge
//     lengths directly, dot products through the law of cosines as the
//     length of the corresponding face diagonal.
//   - BestMatch picks the closest row, optionally restricted by lattice type
//     and centering.
//   - ConventionalCellInfo applies a form's transform to a UB and reports the
//     conventional UB, its lattice parameters and the match error.
//   - GetCells, GetCellsAll and the Cell* selectors choose among the
//     candidates, trying sign-flipped bases when an angle is close to 90°.
//
// Transforms act on real-space edges: the rows of T·UB⁻¹ are the conventional
// edges, so the conventional UB is UB·T⁻¹ and G' = T·G·Tᵀ for metric tensors.
//
// The table is static data; every function here is pure and safe for
// concurrent use.
package reducedcell
