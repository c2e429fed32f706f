package reducedcell_test

import (
	"testing"

	"github.com/katalvlaran/ubindex/reducedcell"
)

func BenchmarkTable(b *testing.B) {
	l := natrolite(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table, _ := reducedcell.Table(l)
		_, _ = reducedcell.BestMatch(table, "", "")
	}
}

func BenchmarkGetCellsAll(b *testing.B) {
	ub := cubicUB(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reducedcell.GetCellsAll(ub, true, true)
	}
}
