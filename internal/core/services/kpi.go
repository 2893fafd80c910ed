package services

import "github.com/custodia-labs/reportlens/internal/core/domain"

// identifyKPIs classifies every column of t by name.
// Numeric columns carry descriptive statistics; others have nil Stats.
func identifyKPIs(t *domain.Table) map[string]domain.KPIMetric {
	metrics := make(map[string]domain.KPIMetric)
	for i, name := range t.Columns {
		category, ok := domain.Classify(name)
		if !ok {
			continue
		}

		metric := domain.KPIMetric{Column: name, Category: category}
		if t.ColumnKind(i) == domain.ColumnNumeric {
			if ds, ok := describe(numbers(t.Column(i))); ok {
				metric.Stats = &ds
			}
		}
		metrics[name] = metric
	}
	return metrics
}
