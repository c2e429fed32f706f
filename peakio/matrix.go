// SPDX-License-Identifier: MIT

package peakio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/ubindex/geometry"
)

// Sigmas are the standard deviations of a, b, c, α, β, γ, V.
type Sigmas [7]float64

// WriteMatrix writes ub in the ISAW layout. The lattice line is computed from
// ub; sigmas may be the zero value.
func WriteMatrix(w io.Writer, ub geometry.Mat3, sigmas Sigmas) error {
	l, err := geometry.LatticeFromUB(ub)
	if err != nil {
		return fmt.Errorf("WriteMatrix: %w", err)
	}

	bw := bufio.NewWriter(w)
	t := ub.Transpose()
	for _, row := range t {
		fmt.Fprintf(bw, "%10.6f%10.6f%10.6f\n", row[0], row[1], row[2])
	}
	for _, v := range l.Slice() {
		fmt.Fprintf(bw, "%10.3f", v)
	}
	bw.WriteByte('\n')
	for _, v := range sigmas {
		fmt.Fprintf(bw, "%10.3f", v)
	}
	bw.WriteByte('\n')

	return bw.Flush()
}

// ReadMatrix reads the UB of an ISAW matrix file. The lattice lines are
// checked for shape only; the sigmas are returned as written.
func ReadMatrix(r io.Reader) (geometry.Mat3, Sigmas, error) {
	const op = "ReadMatrix"
	var (
		t      geometry.Mat3
		sigmas Sigmas
		row    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() && row < 5 {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		want := 3
		if row >= 3 {
			want = 7
		}
		if len(fields) < want {
			return geometry.Mat3{}, Sigmas{}, fmt.Errorf("%s: line %d: %d fields, want %d: %w",
				op, row+1, len(fields), want, ErrFormat)
		}
		vals, err := parseFloats(fields[:want])
		if err != nil {
			return geometry.Mat3{}, Sigmas{}, fmt.Errorf("%s: line %d: %w", op, row+1, err)
		}
		switch {
		case row < 3:
			copy(t[row][:], vals)
		case row == 4:
			copy(sigmas[:], vals)
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return geometry.Mat3{}, Sigmas{}, fmt.Errorf("%s: %w", op, err)
	}
	if row < 3 {
		return geometry.Mat3{}, Sigmas{}, fmt.Errorf("%s: %d matrix rows: %w", op, row, ErrFormat)
	}

	return t.Transpose(), sigmas, nil
}
