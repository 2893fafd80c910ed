package extractors

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps report file types to their extractors.
// It is safe for concurrent use by processor workers.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.FileType]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		extractors: make(map[domain.FileType]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor, replacing any for the same file type.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[extractor.FileType()] = extractor
}

// Extract reads path with the extractor registered for fileType.
func (r *Registry) Extract(ctx context.Context, path string, fileType domain.FileType) (*domain.ExtractedDataset, error) {
	r.mu.RLock()
	extractor, ok := r.extractors[fileType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, fileType)
	}
	return extractor.Extract(ctx, path)
}

// SupportedTypes returns the registered file types in sorted order.
func (r *Registry) SupportedTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FileType, 0, len(r.extractors))
	for ft := range r.extractors {
		types = append(types, ft)
	}
	slices.Sort(types)
	return types
}
