package services

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// numbers returns the numeric cells of a column, skipping nulls and text.
func numbers(col []domain.Value) []float64 {
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if v.Kind == domain.KindNumber {
			out = append(out, v.Num)
		}
	}
	return out
}

// describe computes descriptive statistics for values.
// Std is the sample standard deviation and is zero for fewer than two values.
func describe(values []float64) (domain.DescriptiveStats, bool) {
	if len(values) == 0 {
		return domain.DescriptiveStats{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	ds := domain.DescriptiveStats{
		Mean:   stat.Mean(sorted, nil),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Count:  len(sorted),
	}
	if len(sorted) > 1 {
		ds.Std = stat.StdDev(sorted, nil)
	}
	return ds, true
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// summarize builds the shape and per-column statistics of a table.
func summarize(t *domain.Table) domain.TableSummary {
	s := domain.TableSummary{
		RowCount:     t.NumRows(),
		ColumnCount:  t.NumCols(),
		ColumnKinds:  make(map[string]domain.ColumnKind, t.NumCols()),
		NullRatios:   make(map[string]float64, t.NumCols()),
		NumericStats: make(map[string]domain.DescriptiveStats),
	}

	for i, name := range t.Columns {
		kind := t.ColumnKind(i)
		s.ColumnKinds[name] = kind

		col := t.Column(i)
		nulls := 0
		for _, v := range col {
			if v.IsNull() {
				nulls++
			}
		}
		if len(col) > 0 {
			s.NullRatios[name] = float64(nulls) / float64(len(col))
		}

		if kind != domain.ColumnNumeric {
			continue
		}
		if ds, ok := describe(numbers(col)); ok {
			s.NumericStats[name] = ds
		}
	}
	return s
}

// checkShape verifies every row has one cell per column.
func checkShape(t *domain.Table) error {
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells for %d columns",
				domain.ErrStatistic, r, len(row), len(t.Columns))
		}
	}
	for _, row := range t.Rows {
		for _, c := range row {
			if c.Kind == domain.KindNumber && (math.IsNaN(c.Num) || math.IsInf(c.Num, 0)) {
				return fmt.Errorf("%w: non-finite value", domain.ErrStatistic)
			}
		}
	}
	return nil
}
