package driven

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// Extractor reads one report file type into cleaned tables.
type Extractor interface {
	// FileType returns the report type this extractor handles.
	FileType() domain.FileType

	// Extract reads the file at path.
	// Unreadable or corrupt files fail with *domain.ExtractionError.
	Extract(ctx context.Context, path string) (*domain.ExtractedDataset, error)
}

// ExtractorRegistry dispatches a file to the extractor for its type.
type ExtractorRegistry interface {
	// Register adds an extractor, replacing any for the same type.
	Register(extractor Extractor)

	// Extract reads path with the extractor registered for fileType.
	// Returns domain.ErrUnsupportedType if none is registered.
	Extract(ctx context.Context, path string, fileType domain.FileType) (*domain.ExtractedDataset, error)

	// SupportedTypes returns the registered file types.
	SupportedTypes() []domain.FileType
}
