// Package niggli replaces a UB by an equivalent one whose real-space cell is
// a Niggli-type reduced cell.
//
// MakeNiggliUB forms short lattice vectors i·a + j·b + k·c (|i|,|j|,|k| ≤ 5),
// builds every right-handed cell from the shortest of them whose three angles
// are all acute or all obtuse (HasNiggliAngles), keeps those whose edge sum is
// within 0.1% of the smallest, and returns the one with angles furthest from
// 90°. The lattice itself, and so the indexed peaks, do not change; only the
// choice of basis does.
package niggli
