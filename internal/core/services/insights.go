package services

import (
	"fmt"
	"math"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// KPI thresholds on the percentage scale. Columns whose maximum is at
// most 1 are treated as fractions and the thresholds scale down.
const (
	completionLow     = 70.0
	completionHigh    = 90.0
	engagementLow     = 50.0
	performanceLow    = 60.0
	performanceHigh   = 85.0
	variabilityFactor = 0.5
)

// TableAnalysis is everything derived from one table, in the form the
// insight rules consume.
type TableAnalysis struct {
	Table        string
	Columns      []string
	Summary      domain.TableSummary
	KPIMetrics   map[string]domain.KPIMetric
	Correlations domain.CorrelationMatrix
	Trends       []domain.TrendRecord
}

// InsightGenerator turns table analyses into human-readable findings.
type InsightGenerator struct {
	correlationThreshold float64
}

// NewInsightGenerator creates a generator reporting correlations with
// |r| at or above threshold.
func NewInsightGenerator(threshold float64) *InsightGenerator {
	return &InsightGenerator{correlationThreshold: threshold}
}

// Generate returns KPI insights, then correlation insights, then trend
// insights. Within each family columns follow table order.
func (g *InsightGenerator) Generate(ta TableAnalysis) []domain.Insight {
	insights := []domain.Insight{}
	insights = append(insights, g.kpiInsights(ta)...)
	insights = append(insights, g.correlationInsights(ta)...)
	insights = append(insights, g.trendInsights(ta)...)
	return insights
}

func (g *InsightGenerator) kpiInsights(ta TableAnalysis) []domain.Insight {
	var out []domain.Insight
	for _, col := range ta.Columns {
		metric, ok := ta.KPIMetrics[col]
		if !ok || metric.Stats == nil {
			continue
		}
		if in, ok := kpiInsight(ta.Table, metric); ok {
			out = append(out, in)
		}
	}
	return out
}

func kpiInsight(table string, m domain.KPIMetric) (domain.Insight, bool) {
	s := m.Stats
	scale := 1.0
	if s.Max <= 1 {
		scale = 0.01
	}

	in := domain.Insight{
		Category:   domain.InsightKPI,
		Table:      table,
		MetricRefs: []string{metricRef("kpi_metrics", table, m.Column)},
	}

	switch m.Category {
	case domain.CategoryLearningCompletion:
		switch {
		case s.Mean < completionLow*scale:
			in.Severity = domain.SeverityWarning
			in.Description = fmt.Sprintf("Low completion in %s: mean %s is below %s",
				m.Column, num(s.Mean), num(completionLow*scale))
		case s.Mean >= completionHigh*scale:
			in.Severity = domain.SeverityPositive
			in.Description = fmt.Sprintf("High completion in %s: mean %s", m.Column, num(s.Mean))
		default:
			return domain.Insight{}, false
		}

	case domain.CategoryLearningEngagement:
		if s.Mean >= engagementLow*scale {
			return domain.Insight{}, false
		}
		in.Severity = domain.SeverityWarning
		in.Description = fmt.Sprintf("Low engagement in %s: mean %s is below %s",
			m.Column, num(s.Mean), num(engagementLow*scale))

	case domain.CategoryLearningPerformance:
		switch {
		case s.Mean < performanceLow*scale:
			in.Severity = domain.SeverityWarning
			in.Description = fmt.Sprintf("Low performance in %s: mean %s is below %s",
				m.Column, num(s.Mean), num(performanceLow*scale))
		case s.Mean >= performanceHigh*scale:
			in.Severity = domain.SeverityPositive
			in.Description = fmt.Sprintf("Strong performance in %s: mean %s", m.Column, num(s.Mean))
		default:
			return domain.Insight{}, false
		}

	case domain.CategoryOperationalEfficiency, domain.CategoryTrainingCost:
		spread := s.Max - s.Min
		if s.Count > 1 && spread > variabilityFactor*math.Abs(s.Mean) {
			in.Severity = domain.SeverityWarning
			in.Description = fmt.Sprintf("High variability in %s (%s): range %s to %s around a mean of %s",
				m.Column, m.Category.Description(), num(s.Min), num(s.Max), num(s.Mean))
		} else {
			in.Severity = domain.SeverityInfo
			in.Description = fmt.Sprintf("%s in %s ranges from %s to %s (mean %s)",
				m.Category.Description(), m.Column, num(s.Min), num(s.Max), num(s.Mean))
		}

	default:
		return domain.Insight{}, false
	}
	return in, true
}

func (g *InsightGenerator) correlationInsights(ta TableAnalysis) []domain.Insight {
	if ta.Correlations == nil {
		return nil
	}

	var cols []string
	for _, col := range ta.Columns {
		if _, ok := ta.Correlations[col]; ok {
			cols = append(cols, col)
		}
	}

	var out []domain.Insight
	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			r, ok := ta.Correlations[cols[a]][cols[b]]
			if !ok || math.Abs(r) < g.correlationThreshold {
				continue
			}
			strength := "positive"
			if r < 0 {
				strength = "negative"
			}
			out = append(out, domain.Insight{
				Description: fmt.Sprintf("Strong %s correlation (%.2f) between %s and %s",
					strength, r, cols[a], cols[b]),
				Severity: domain.SeverityInfo,
				Category: domain.InsightCorrelation,
				Table:    ta.Table,
				MetricRefs: []string{
					metricRef("correlations", ta.Table, cols[a]),
					metricRef("correlations", ta.Table, cols[b]),
				},
			})
		}
	}
	return out
}

func (g *InsightGenerator) trendInsights(ta TableAnalysis) []domain.Insight {
	var out []domain.Insight
	for _, tr := range ta.Trends {
		if tr.Direction == domain.TrendStable {
			continue
		}
		out = append(out, domain.Insight{
			Description: fmt.Sprintf("%s is %s over %s (slope %s per period, %d points)",
				tr.Column, tr.Direction, tr.DateColumn, num(tr.Slope), tr.Period.Points),
			Severity:   trendSeverity(tr, ta.KPIMetrics),
			Category:   domain.InsightTrend,
			Table:      ta.Table,
			MetricRefs: []string{metricRef("trends", ta.Table, tr.Column)},
		})
	}
	return out
}

// trendSeverity grades a trend by what its column measures: rising
// learning metrics are good, rising costs are not.
func trendSeverity(tr domain.TrendRecord, kpis map[string]domain.KPIMetric) domain.Severity {
	m, ok := kpis[tr.Column]
	if !ok {
		return domain.SeverityInfo
	}

	up := tr.Direction == domain.TrendIncreasing
	switch m.Category {
	case domain.CategoryLearningCompletion, domain.CategoryLearningEngagement, domain.CategoryLearningPerformance:
		if up {
			return domain.SeverityPositive
		}
		return domain.SeverityWarning
	case domain.CategoryTrainingCost:
		if up {
			return domain.SeverityWarning
		}
		return domain.SeverityPositive
	default:
		return domain.SeverityInfo
	}
}

func metricRef(section, table, column string) string {
	return section + "." + table + "." + column
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
