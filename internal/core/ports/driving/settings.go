package driving

import "github.com/custodia-labs/reportlens/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, then the config file,
	// then REPORTLENS_* environment overrides.
	Get() (*domain.Settings, error)

	// Save validates and persists settings.
	Save(settings *domain.Settings) error

	// Set updates a single dotted key (e.g. "watch.directory") from its
	// string form and persists it.
	Set(key, value string) error

	// Validate checks settings against their constraints.
	Validate(settings *domain.Settings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// Keys returns the settable keys in display order.
	Keys() []string

	// Value returns the display form of key in settings.
	Value(settings *domain.Settings, key string) (string, error)
}
