// Package cli implements the reportlens command line on cobra.
// Dependencies are injected by main through SetServices; commands fail
// with a "not configured" error when theirs is missing.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose    bool
	configPath string
)

var (
	settingsService driving.SettingsService
	openSettings    func(path string) (driving.SettingsService, error)
	newEngine       EngineFactory
)

// Engine is the assembled report pipeline.
type Engine interface {
	// Run watches the configured folder until ctx is cancelled.
	Run(ctx context.Context) error

	// Process analyses a single file.
	Process(ctx context.Context, path string) (*domain.AnalysisResult, error)

	// Stored loads the result written earlier for a file, and its chart
	// manifest when one exists.
	Stored(path string) (*domain.AnalysisResult, *domain.VisualizationManifest, error)

	// CheckTools reports missing external tools with install instructions.
	CheckTools() error
}

// EngineFactory builds an engine from resolved settings.
type EngineFactory func(settings domain.Settings, logger *log.Logger) (Engine, error)

// Services holds the dependencies the commands need.
type Services struct {
	// Settings is the default settings service.
	Settings driving.SettingsService

	// OpenSettings opens an alternative config file given by --config.
	OpenSettings func(path string) (driving.SettingsService, error)

	// NewEngine builds the pipeline for watch and analyze.
	NewEngine EngineFactory
}

var rootCmd = &cobra.Command{
	Use:   "reportlens",
	Short: "Analyse report files as they land in a folder",
	Long: `reportlens watches a folder for CSV, Excel and PDF reports, extracts
their tables, and writes KPI, correlation and trend analysis with
plain-language insights for each file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.reportlens/config.toml)")
}

// SetServices wires the commands to the core.
func SetServices(s Services) {
	settingsService = s.Settings
	openSettings = s.OpenSettings
	newEngine = s.NewEngine
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if configPath == "" {
		return nil
	}
	if openSettings == nil {
		return errors.New("config loader not configured")
	}
	s, err := openSettings(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	settingsService = s
	return nil
}

// loadSettings returns current settings or an error if no settings
// service has been configured.
func loadSettings() (*domain.Settings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func buildEngine(settings *domain.Settings) (Engine, error) {
	if newEngine == nil {
		return nil, errors.New("engine not configured")
	}
	engine, err := newEngine(*settings, logger.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return engine, nil
}

// warnMissingTools prints a warning when an extractor's external tool is
// missing. The command still runs; only the affected file types fail.
func warnMissingTools(cmd *cobra.Command, engine Engine) {
	if err := engine.CheckTools(); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
}
