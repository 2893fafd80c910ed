package services

import (
	"time"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure noopMetrics implements the interface.
var _ driven.Metrics = noopMetrics{}

// noopMetrics is used when no metrics backend is configured.
type noopMetrics struct{}

func (noopMetrics) EventReceived(domain.EventKind, domain.FileType)      {}
func (noopMetrics) EventSuppressed()                                     {}
func (noopMetrics) FileProcessed(domain.FileType, string, time.Duration) {}
func (noopMetrics) QueueDepth(int)                                       {}
