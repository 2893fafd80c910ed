package services

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// minTrendPoints is the fewest dated observations a trend is fitted on.
const minTrendPoints = 3

type point struct {
	at time.Time
	y  float64
}

// findTrends fits a line through every numeric column against every
// datetime column of t. The slope is per observation in date order.
func findTrends(t *domain.Table, epsilon float64) []domain.TrendRecord {
	var dates, values []int
	for i := range t.Columns {
		switch t.ColumnKind(i) {
		case domain.ColumnDatetime:
			dates = append(dates, i)
		case domain.ColumnNumeric:
			values = append(values, i)
		}
	}

	var trends []domain.TrendRecord
	for _, d := range dates {
		for _, v := range values {
			if rec, ok := fitTrend(t, d, v, epsilon); ok {
				trends = append(trends, rec)
			}
		}
	}
	return trends
}

func fitTrend(t *domain.Table, dateCol, valueCol int, epsilon float64) (domain.TrendRecord, bool) {
	var pts []point
	for _, row := range t.Rows {
		if row[dateCol].Kind != domain.KindTime || row[valueCol].Kind != domain.KindNumber {
			continue
		}
		pts = append(pts, point{at: row[dateCol].Time, y: row[valueCol].Num})
	}
	if len(pts) < minTrendPoints {
		return domain.TrendRecord{}, false
	}

	slices.SortStableFunc(pts, func(a, b point) int { return a.at.Compare(b.at) })

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = float64(i)
		ys[i] = p.y
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)

	return domain.TrendRecord{
		Column:     t.Columns[valueCol],
		DateColumn: t.Columns[dateCol],
		Direction:  direction(slope, epsilon),
		Slope:      slope,
		Period: domain.Period{
			Start:  pts[0].at,
			End:    pts[len(pts)-1].at,
			Points: len(pts),
		},
	}, true
}

// direction classifies slope; magnitudes within epsilon are stable.
func direction(slope, epsilon float64) domain.TrendDirection {
	switch {
	case slope > epsilon:
		return domain.TrendIncreasing
	case slope < -epsilon:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}
