package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix is the prefix for environment overrides,
// e.g. REPORTLENS_WATCH_DIRECTORY or REPORTLENS_PROCESSING_WORKERS.
const EnvPrefix = "REPORTLENS"

// Config keys for settings storage.
const (
	keyWatchDirectory       = "watch.directory"
	keyWatchBackend         = "watch.backend"
	keyWatchPollInterval    = "watch.poll_interval"
	keyOutputDirectory      = "output.directory"
	keyProcessingWorkers    = "processing.workers"
	keyProcessingQueueSize  = "processing.queue_size"
	keyAnalysisTrendEpsilon = "analysis.trend_epsilon"
	keyAnalysisCorrelation  = "analysis.correlation_threshold"
	keyMetricsAddress       = "metrics.address"
)

// settingField binds a config key to a field of domain.Settings.
// field returns a pointer to the bound field.
type settingField struct {
	key       string
	namespace string
	field     func(s *domain.Settings) any
}

// settingFields lists the settable keys in display order.
var settingFields = []settingField{
	{keyWatchDirectory, "Watch.Directory", func(s *domain.Settings) any { return &s.Watch.Directory }},
	{keyWatchBackend, "Watch.Backend", func(s *domain.Settings) any { return &s.Watch.Backend }},
	{keyWatchPollInterval, "Watch.PollInterval", func(s *domain.Settings) any { return &s.Watch.PollInterval }},
	{keyOutputDirectory, "Output.Directory", func(s *domain.Settings) any { return &s.Output.Directory }},
	{keyProcessingWorkers, "Processing.Workers", func(s *domain.Settings) any { return &s.Processing.Workers }},
	{keyProcessingQueueSize, "Processing.QueueSize", func(s *domain.Settings) any { return &s.Processing.QueueSize }},
	{keyAnalysisTrendEpsilon, "Analysis.TrendEpsilon", func(s *domain.Settings) any {
		return &s.Analysis.TrendEpsilon
	}},
	{keyAnalysisCorrelation, "Analysis.CorrelationThreshold", func(s *domain.Settings) any {
		return &s.Analysis.CorrelationThreshold
	}},
	{keyMetricsAddress, "Metrics.Address", func(s *domain.Settings) any { return &s.Metrics.Address }},
}

// SettingsService manages application settings.
// Values are layered: defaults, then the config store, then environment.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service that applies
// REPORTLENS_* environment overrides on Get.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
	}
}

// Get retrieves current settings. Stored values that cannot be parsed
// fall back to their defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	for _, f := range settingFields {
		if _, ok := s.configStore.Get(f.key); !ok {
			continue
		}
		s.load(f.field(&settings), f.key)
	}

	if err := envconfig.Process(EnvPrefix, &settings); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}
	for _, f := range settingFields {
		if err := s.configStore.Set(f.key, storedValue(f.field(settings))); err != nil {
			return fmt.Errorf("save %s: %w", f.key, err)
		}
	}
	return nil
}

// Set parses value for a single key, validates the resulting settings
// and persists the key.
func (s *SettingsService) Set(key, value string) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	ptr := f.field(settings)
	if err := assign(ptr, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := s.Validate(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(key, storedValue(ptr)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks settings against their constraints.
func (s *SettingsService) Validate(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)",
			keyForNamespace(fe.StructNamespace()), constraint(fe), fe.Value()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingFields))
	for i, f := range settingFields {
		keys[i] = f.key
	}
	return keys
}

// Value returns the display form of key in settings.
func (s *SettingsService) Value(settings *domain.Settings, key string) (string, error) {
	f, ok := lookupField(key)
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return format(f.field(settings)), nil
}

// load reads key from the store into the field behind ptr.
func (s *SettingsService) load(ptr any, key string) {
	switch p := ptr.(type) {
	case *string:
		*p = s.configStore.GetString(key)
	case *domain.WatchBackend:
		if b := domain.WatchBackend(s.configStore.GetString(key)); b.IsValid() {
			*p = b
		}
	case *int:
		if v := s.configStore.GetInt(key); v != 0 {
			*p = v
		}
	case *float64:
		if _, ok := s.configStore.Get(key); ok {
			*p = s.configStore.GetFloat(key)
		}
	case *time.Duration:
		if d, err := time.ParseDuration(s.configStore.GetString(key)); err == nil {
			*p = d
		}
	}
}

func lookupField(key string) (settingField, bool) {
	for _, f := range settingFields {
		if f.key == key {
			return f, true
		}
	}
	return settingField{}, false
}

func keyForNamespace(ns string) string {
	ns = strings.TrimPrefix(ns, "Settings.")
	for _, f := range settingFields {
		if f.namespace == ns {
			return f.key
		}
	}
	return ns
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// assign parses raw into the field behind ptr.
func assign(ptr any, raw string) error {
	switch p := ptr.(type) {
	case *string:
		*p = raw
	case *domain.WatchBackend:
		*p = domain.WatchBackend(raw)
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("not an integer: %q", raw)
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", raw)
		}
		*p = v
	case *time.Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("not a duration: %q", raw)
		}
		*p = v
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return nil
}

// storedValue converts the field behind ptr into a TOML-friendly value.
func storedValue(ptr any) any {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *domain.WatchBackend:
		return p.String()
	case *int:
		return *p
	case *float64:
		return *p
	case *time.Duration:
		return p.String()
	default:
		return nil
	}
}

func format(ptr any) string {
	switch p := ptr.(type) {
	case *float64:
		return strconv.FormatFloat(*p, 'g', -1, 64)
	default:
		return fmt.Sprint(storedValue(ptr))
	}
}
