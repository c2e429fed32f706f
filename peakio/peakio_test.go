package peakio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/internal/refdata"
	"github.com/katalvlaran/ubindex/peakio"
)

const peakList = `# natrolite, two peaks
-0.1 0.2 0.3 150.5

0.4 -0.5 0.6 80   1 -2 3   # indexed
`

func TestReadPeaks(t *testing.T) {
	peaks, err := peakio.ReadPeaks(strings.NewReader(peakList))
	require.NoError(t, err)
	require.Len(t, peaks, 2)

	assert.Equal(t, geometry.V(-0.1, 0.2, 0.3), peaks[0].Q)
	assert.Equal(t, 150.5, peaks[0].Intensity)
	assert.False(t, peaks[0].Indexed())

	assert.Equal(t, geometry.V(1, -2, 3), peaks[1].HKL)
	assert.True(t, peaks[1].Indexed())
}

func TestReadPeaks_Errors(t *testing.T) {
	_, err := peakio.ReadPeaks(strings.NewReader("1 2 3 4\n1 2 3\n"))
	require.ErrorIs(t, err, peakio.ErrFormat)
	assert.Contains(t, err.Error(), "line 2")

	_, err = peakio.ReadPeaks(strings.NewReader("1 2 x 4\n"))
	require.ErrorIs(t, err, peakio.ErrFormat)
	assert.Contains(t, err.Error(), `"x"`)

	peaks, err := peakio.ReadPeaks(strings.NewReader("# nothing\n\n"))
	require.NoError(t, err)
	assert.Empty(t, peaks)
}

func TestWritePeaks_ReadBack(t *testing.T) {
	hkls := refdata.NatroliteHKL()
	var peaks []*indexing.Peak
	for i, q := range refdata.Natrolite() {
		p := indexing.NewPeak(q, float64(10*i))
		if i%2 == 0 {
			p.HKL = hkls[i]
		}
		peaks = append(peaks, p)
	}

	var buf bytes.Buffer
	require.NoError(t, peakio.WritePeaks(&buf, peaks))
	got, err := peakio.ReadPeaks(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(peaks))
	for i := range peaks {
		assert.True(t, peaks[i].Q.ApproxEqual(got[i].Q, 1e-6), "peak %d", i)
		assert.Equal(t, peaks[i].HKL, got[i].HKL, "peak %d", i)
	}
}

func TestReadPeaksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.txt")
	require.NoError(t, os.WriteFile(path, []byte(peakList), 0644))

	peaks, err := peakio.ReadPeaksFile(path)
	require.NoError(t, err)
	assert.Len(t, peaks, 2)

	_, err = peakio.ReadPeaksFile(filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteMatrix_Layout(t *testing.T) {
	ub := refdata.NatroliteUB()
	sig := peakio.Sigmas{0.001, 0.002, 0.003, 0.01, 0.02, 0.03, 0.5}

	var buf bytes.Buffer
	require.NoError(t, peakio.WriteMatrix(&buf, ub, sig))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Len(t, lines[0], 30)
	assert.Len(t, lines[3], 70)
	assert.Len(t, strings.Fields(lines[4]), 7)

	got, gotSig, err := peakio.ReadMatrix(&buf)
	require.NoError(t, err)
	assert.True(t, ub.ApproxEqual(got, 1e-6))
	assert.Equal(t, sig, gotSig)
}

func TestWriteMatrix_Singular(t *testing.T) {
	var buf bytes.Buffer
	err := peakio.WriteMatrix(&buf, geometry.Mat3{}, peakio.Sigmas{})
	assert.Error(t, err)
}

func TestReadMatrix_Errors(t *testing.T) {
	_, _, err := peakio.ReadMatrix(strings.NewReader("1 0 0\n0 1\n"))
	require.ErrorIs(t, err, peakio.ErrFormat)
	assert.Contains(t, err.Error(), "line 2")

	_, _, err = peakio.ReadMatrix(strings.NewReader("1 0 0\n0 1 0\n"))
	assert.ErrorIs(t, err, peakio.ErrFormat)

	ub, _, err := peakio.ReadMatrix(strings.NewReader("0.1 0 0\n0 0.2 0\n0 0 0.25\n"))
	require.NoError(t, err)
	assert.Equal(t, geometry.Mat3{{0.1, 0, 0}, {0, 0.2, 0}, {0, 0, 0.25}}, ub)
}
