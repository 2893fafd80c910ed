package domain

import "time"

const unknownDescription = "Unknown"

// WatchBackend selects how filesystem changes are detected.
type WatchBackend string

// Available watch backends.
const (
	// WatchBackendFSNotify uses native OS notifications.
	WatchBackendFSNotify WatchBackend = "fsnotify"

	// WatchBackendPolling rescans the directory on an interval.
	WatchBackendPolling WatchBackend = "polling"
)

// IsValid returns true if the backend is recognised.
func (b WatchBackend) IsValid() bool {
	switch b {
	case WatchBackendFSNotify, WatchBackendPolling:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b WatchBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b WatchBackend) Description() string {
	switch b {
	case WatchBackendFSNotify:
		return "Native notifications (fsnotify)"
	case WatchBackendPolling:
		return "Polling (periodic rescan)"
	default:
		return unknownDescription
	}
}

// AllWatchBackends returns all available watch backends.
func AllWatchBackends() []WatchBackend {
	return []WatchBackend{WatchBackendFSNotify, WatchBackendPolling}
}

// WatchSettings configures the folder monitor.
type WatchSettings struct {
	// Directory is the folder to watch recursively.
	Directory string

	// Backend selects the notification mechanism.
	Backend WatchBackend `validate:"oneof=fsnotify polling"`

	// PollInterval is used by the polling backend only.
	PollInterval time.Duration `split_words:"true" validate:"min=100ms"`
}

// OutputSettings configures where analysis results are written.
type OutputSettings struct {
	// Directory receives one sub-directory per processed file.
	// Empty disables writing results to disk.
	Directory string
}

// ProcessingSettings configures the extraction/analysis worker pool.
type ProcessingSettings struct {
	// Workers is the number of files processed concurrently.
	Workers int `validate:"min=1,max=64"`

	// QueueSize is how many files are buffered for the workers. Files
	// beyond it wait in a backlog rather than being dropped.
	QueueSize int `split_words:"true" validate:"min=1"`
}

// AnalysisSettings tunes the analyzer thresholds.
type AnalysisSettings struct {
	// TrendEpsilon is the slope magnitude below which a trend is stable.
	TrendEpsilon float64 `split_words:"true" validate:"gte=0"`

	// CorrelationThreshold is the |r| at which a relationship is reported.
	CorrelationThreshold float64 `split_words:"true" validate:"gt=0,lte=1"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	// Address to serve /metrics on. Empty disables the endpoint.
	Address string `validate:"omitempty,hostname_port"`
}

// Settings holds all user-configurable settings.
type Settings struct {
	Watch      WatchSettings
	Output     OutputSettings
	Processing ProcessingSettings
	Analysis   AnalysisSettings
	Metrics    MetricsSettings
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Watch: WatchSettings{
			Backend:      WatchBackendFSNotify,
			PollInterval: 2 * time.Second,
		},
		Processing: ProcessingSettings{
			Workers:   2,
			QueueSize: 256,
		},
		Analysis: AnalysisSettings{
			TrendEpsilon:         0.01,
			CorrelationThreshold: 0.7,
		},
	}
}
