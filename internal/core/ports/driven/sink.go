package driven

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// ResultSink receives finished analysis results.
type ResultSink interface {
	// Write stores the result. Implementations must not modify it.
	Write(ctx context.Context, result *domain.AnalysisResult) error
}

// Enhancer augments a result, typically with model-written insights.
// It is handed a copy and returns a new value; the original is never
// modified in place.
type Enhancer interface {
	Enhance(ctx context.Context, result *domain.AnalysisResult) (*domain.AnalysisResult, error)
}
