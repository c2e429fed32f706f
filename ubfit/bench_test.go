package ubfit_test

import (
	"testing"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/internal/refdata"
	"github.com/katalvlaran/ubindex/ubfit"
)

func BenchmarkOptimizeUB3D(b *testing.B) {
	hkls, qs := refdata.NatroliteHKL(), refdata.Natrolite()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := ubfit.OptimizeUB3D(hkls, qs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOrientationChiSquare(b *testing.B) {
	l, err := geometry.NewLattice(refdata.NatroliteLattice())
	if err != nil {
		b.Fatal(err)
	}
	bm, err := l.BMatrix(false)
	if err != nil {
		b.Fatal(err)
	}
	bInv, err := bm.Inverse()
	if err != nil {
		b.Fatal(err)
	}
	qs := refdata.Natrolite()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ubfit.OrientationChiSquare([3]float64{10, 20, 30}, bInv, qs)
	}
}
