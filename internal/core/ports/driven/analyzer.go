package driven

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// Analyzer derives summary statistics, KPI metrics, correlations,
// trends and insights from an extracted dataset.
type Analyzer interface {
	// Analyze processes every table of the dataset in order.
	// Fails with *domain.AnalysisError wrapping domain.ErrNoData when the
	// dataset holds nothing to analyse. A failing table is omitted from the
	// result rather than failing the call.
	Analyze(ctx context.Context, dataset *domain.ExtractedDataset) (*domain.AnalysisResult, error)
}
