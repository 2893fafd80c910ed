package services

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// minCorrelationColumns is the number of qualifying columns needed
// before a matrix is produced.
const minCorrelationColumns = 2

// correlate computes pairwise Pearson coefficients between the numeric
// columns of t with at least two values. Every such column has a 1 on
// the diagonal. Pairs use only rows where both cells are present;
// undefined coefficients, such as those against a constant column, are
// omitted in both directions. Returns nil when fewer than two columns
// qualify.
func correlate(t *domain.Table) domain.CorrelationMatrix {
	var cols []int
	for i := range t.Columns {
		if t.ColumnKind(i) != domain.ColumnNumeric {
			continue
		}
		if len(numbers(t.Column(i))) < 2 {
			continue
		}
		cols = append(cols, i)
	}
	if len(cols) < minCorrelationColumns {
		return nil
	}

	matrix := make(domain.CorrelationMatrix, len(cols))
	for _, i := range cols {
		matrix[t.Columns[i]] = map[string]float64{t.Columns[i]: 1}
	}

	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			r, ok := pearson(t, cols[a], cols[b])
			if !ok {
				continue
			}
			x, y := t.Columns[cols[a]], t.Columns[cols[b]]
			matrix[x][y] = r
			matrix[y][x] = r
		}
	}
	return matrix
}

// pearson correlates columns i and j over rows where both are numeric.
func pearson(t *domain.Table, i, j int) (float64, bool) {
	var xs, ys []float64
	for _, row := range t.Rows {
		if row[i].Kind != domain.KindNumber || row[j].Kind != domain.KindNumber {
			continue
		}
		xs = append(xs, row[i].Num)
		ys = append(ys, row[j].Num)
	}
	if len(xs) < 2 {
		return 0, false
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}
