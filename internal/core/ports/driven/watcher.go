package driven

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// Watcher streams filesystem changes under a directory.
// Implementations may use native OS notifications or periodic rescans;
// consumers must not assume either.
type Watcher interface {
	// Watch begins observing root. When recursive is true, directories
	// created later are observed as well.
	// The returned channel is closed once ctx is cancelled and the
	// watcher has released its resources.
	Watch(ctx context.Context, root string, recursive bool) (<-chan domain.FileEvent, error)
}
