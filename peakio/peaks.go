// SPDX-License-Identifier: MIT

package peakio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// ReadPeaks parses a peak list. Errors name the offending line.
func ReadPeaks(r io.Reader) ([]*indexing.Peak, error) {
	var (
		peaks []*indexing.Peak
		line  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 && len(fields) != 7 {
			return nil, fmt.Errorf("ReadPeaks: line %d: %d fields, want 4 or 7: %w", line, len(fields), ErrFormat)
		}
		vals, err := parseFloats(fields)
		if err != nil {
			return nil, fmt.Errorf("ReadPeaks: line %d: %w", line, err)
		}

		p := indexing.NewPeak(geometry.V(vals[0], vals[1], vals[2]), vals[3])
		if len(vals) == 7 {
			p.HKL = geometry.V(vals[4], vals[5], vals[6])
		}
		peaks = append(peaks, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadPeaks: %w", err)
	}

	return peaks, nil
}

// ReadPeaksFile opens path and calls ReadPeaks.
func ReadPeaksFile(path string) ([]*indexing.Peak, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadPeaks(f)
}

// WritePeaks writes peaks in the format ReadPeaks reads. Indexed peaks get
// their hkl columns.
func WritePeaks(w io.Writer, peaks []*indexing.Peak) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# qx qy qz intensity [h k l]")
	for _, p := range peaks {
		fmt.Fprintf(bw, "%12.6f %12.6f %12.6f %12.3f", p.Q[0], p.Q[1], p.Q[2], p.Intensity)
		if p.Indexed() {
			fmt.Fprintf(bw, " %4.0f %4.0f %4.0f", p.HKL[0], p.HKL[1], p.HKL[2])
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d %q: %w", i+1, f, ErrFormat)
		}
		out[i] = v
	}

	return out, nil
}
