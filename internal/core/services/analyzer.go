package services

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// Analyzer computes summaries, KPI metrics, correlations, trends and
// insights for every table of a dataset.
type Analyzer struct {
	insights *InsightGenerator
	epsilon  float64
	log      *log.Logger
}

// NewAnalyzer creates an analyzer using the thresholds in cfg.
// logger may be nil.
func NewAnalyzer(cfg domain.AnalysisSettings, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Analyzer{
		insights: NewInsightGenerator(cfg.CorrelationThreshold),
		epsilon:  cfg.TrendEpsilon,
		log:      logger,
	}
}

// Analyze processes the dataset's tables sequentially in extraction order.
// PDF text contributes key-term counts. A table that cannot be analysed is
// logged and left out of the result.
func (a *Analyzer) Analyze(ctx context.Context, ds *domain.ExtractedDataset) (*domain.AnalysisResult, error) {
	if !ds.HasData() {
		name := ""
		if ds != nil {
			name = ds.Metadata.FileName
		}
		return nil, domain.NewAnalysisError(name, "", domain.ErrNoData)
	}

	result := domain.NewAnalysisResult(ds.Metadata.FileName, ds.Metadata.FileType)
	if ds.Metadata.FileType == domain.FileTypePDF {
		result.KeyTerms = ExtractKeyTerms(ds.Text)
	}

	for _, t := range ds.Tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analyse %s: %w", ds.Metadata.FileName, err)
		}
		if t.IsEmpty() {
			a.log.Debug("skipping empty table", "file", ds.Metadata.FileName, "table", t.Name)
			continue
		}

		ta, err := a.analyzeTable(t)
		if err != nil {
			a.log.Warn("table analysis failed",
				"file", ds.Metadata.FileName,
				"error", domain.NewAnalysisError(ds.Metadata.FileName, t.Name, err))
			continue
		}

		result.Summary[t.Name] = ta.Summary
		if len(ta.KPIMetrics) > 0 {
			result.KPIMetrics[t.Name] = ta.KPIMetrics
		}
		if ta.Correlations != nil {
			result.Correlations[t.Name] = ta.Correlations
		}
		if len(ta.Trends) > 0 {
			result.Trends[t.Name] = ta.Trends
		}
		result.Insights = append(result.Insights, a.insights.Generate(ta)...)
	}

	a.log.Debug("analysis complete",
		"file", result.FileName,
		"tables", len(result.Summary),
		"insights", len(result.Insights))
	return result, nil
}

// analyzeTable derives everything for one table. Panics from the
// statistics code are turned into errors.
func (a *Analyzer) analyzeTable(t *domain.Table) (ta TableAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrStatistic, r)
		}
	}()

	if err = checkShape(t); err != nil {
		return TableAnalysis{}, err
	}

	return TableAnalysis{
		Table:        t.Name,
		Columns:      t.Columns,
		Summary:      summarize(t),
		KPIMetrics:   identifyKPIs(t),
		Correlations: correlate(t),
		Trends:       findTrends(t, a.epsilon),
	}, nil
}
