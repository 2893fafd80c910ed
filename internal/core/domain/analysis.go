package domain

import "time"

// DescriptiveStats summarises the non-null values of a numeric column.
type DescriptiveStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// TableSummary describes the shape and column statistics of one table.
type TableSummary struct {
	RowCount     int                         `json:"row_count"`
	ColumnCount  int                         `json:"column_count"`
	ColumnKinds  map[string]ColumnKind       `json:"column_kinds"`
	NullRatios   map[string]float64          `json:"null_ratios"`
	NumericStats map[string]DescriptiveStats `json:"numeric_stats"`
}

// KPIMetric is a column classified into a KPI category.
// Stats is nil for non-numeric columns.
type KPIMetric struct {
	Column   string            `json:"column_name"`
	Category Category          `json:"category"`
	Stats    *DescriptiveStats `json:"descriptive_stats,omitempty"`
}

// CorrelationMatrix maps column → column → Pearson coefficient.
// It is symmetric with a diagonal of 1.0.
type CorrelationMatrix map[string]map[string]float64

// TrendDirection classifies the sign of a fitted slope.
type TrendDirection string

// Trend directions.
const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Period is the time span covered by a trend.
type Period struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Points int       `json:"points"`
}

// TrendRecord is the fitted direction of a numeric column over a date column.
type TrendRecord struct {
	Column     string         `json:"column_name"`
	DateColumn string         `json:"date_column"`
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"`
	Period     Period         `json:"period_covered"`
}

// Severity grades an insight.
type Severity string

// Insight severities.
const (
	SeverityInfo     Severity = "info"
	SeverityPositive Severity = "positive"
	SeverityWarning  Severity = "warning"
)

// InsightCategory names the rule family that produced an insight.
type InsightCategory string

// Insight rule families.
const (
	InsightKPI         InsightCategory = "kpi"
	InsightCorrelation InsightCategory = "correlation"
	InsightTrend       InsightCategory = "trend"
)

// Insight is a rule-derived, human-readable finding.
type Insight struct {
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Category    InsightCategory `json:"category"`
	Table       string          `json:"table"`
	MetricRefs  []string        `json:"supporting_metric_refs"`
}

// AnalysisResult is the canonical output for one report file.
// It is immutable once returned; collaborators work on a Clone.
type AnalysisResult struct {
	FileName     string                          `json:"file_name"`
	SourcePath   string                          `json:"source_path,omitempty"`
	FileType     FileType                        `json:"file_type"`
	Summary      map[string]TableSummary         `json:"summary"`
	KPIMetrics   map[string]map[string]KPIMetric `json:"kpi_metrics"`
	Correlations map[string]CorrelationMatrix    `json:"correlations"`
	Trends       map[string][]TrendRecord        `json:"trends"`
	Insights     []Insight                       `json:"insights"`
	KeyTerms     map[Category]map[string]int     `json:"key_terms,omitempty"`
}

// NewAnalysisResult creates an empty result with initialised maps.
func NewAnalysisResult(fileName string, fileType FileType) *AnalysisResult {
	return &AnalysisResult{
		FileName:     fileName,
		FileType:     fileType,
		Summary:      make(map[string]TableSummary),
		KPIMetrics:   make(map[string]map[string]KPIMetric),
		Correlations: make(map[string]CorrelationMatrix),
		Trends:       make(map[string][]TrendRecord),
		Insights:     []Insight{},
	}
}

// Clone returns a deep copy of the result.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := NewAnalysisResult(r.FileName, r.FileType)
	out.SourcePath = r.SourcePath

	for table, s := range r.Summary {
		out.Summary[table] = TableSummary{
			RowCount:     s.RowCount,
			ColumnCount:  s.ColumnCount,
			ColumnKinds:  copyMap(s.ColumnKinds),
			NullRatios:   copyMap(s.NullRatios),
			NumericStats: copyMap(s.NumericStats),
		}
	}

	for table, metrics := range r.KPIMetrics {
		m := make(map[string]KPIMetric, len(metrics))
		for col, metric := range metrics {
			if metric.Stats != nil {
				stats := *metric.Stats
				metric.Stats = &stats
			}
			m[col] = metric
		}
		out.KPIMetrics[table] = m
	}

	for table, matrix := range r.Correlations {
		m := make(CorrelationMatrix, len(matrix))
		for col, row := range matrix {
			m[col] = copyMap(row)
		}
		out.Correlations[table] = m
	}

	for table, trends := range r.Trends {
		out.Trends[table] = append([]TrendRecord(nil), trends...)
	}

	for _, in := range r.Insights {
		in.MetricRefs = append([]string(nil), in.MetricRefs...)
		out.Insights = append(out.Insights, in)
	}

	if r.KeyTerms != nil {
		out.KeyTerms = make(map[Category]map[string]int, len(r.KeyTerms))
		for cat, terms := range r.KeyTerms {
			out.KeyTerms[cat] = copyMap(terms)
		}
	}

	return out
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	if src == nil {
		return nil
	}
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// VisualizationManifest is the per-file chart manifest written by the
// external visualization generator.
type VisualizationManifest struct {
	FileName string  `json:"file_name"`
	FileType string  `json:"file_type"`
	Charts   []Chart `json:"charts"`
}

// Chart is one rendered chart listed in a manifest.
type Chart struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Source   string `json:"source"`
	File     string `json:"file"`
	Path     string `json:"path"`
}
