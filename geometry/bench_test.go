package geometry_test

import (
	"testing"

	"github.com/katalvlaran/ubindex/geometry"
)

func BenchmarkMat3Inverse(b *testing.B) {
	m := geometry.EulerRotation(10, 20, 30).Scale(0.1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Inverse(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLatticeFromUB(b *testing.B) {
	l, err := geometry.NewLattice(6.6, 9.7, 9.9, 84, 71, 70)
	if err != nil {
		b.Fatal(err)
	}
	bm, err := l.BMatrix(false)
	if err != nil {
		b.Fatal(err)
	}
	ub := geometry.EulerRotation(10, 20, 30).Mul(bm)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := geometry.LatticeFromUB(ub); err != nil {
			b.Fatal(err)
		}
	}
}
