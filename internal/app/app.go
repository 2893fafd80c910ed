// Package app assembles the report pipeline from settings: watcher
// backend, extractors, analyzer, result sink and metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reportlens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reportlens/internal/adapters/driven/metrics"
	"github.com/custodia-labs/reportlens/internal/adapters/driven/results/jsonfile"
	"github.com/custodia-labs/reportlens/internal/adapters/driven/watcher/fsnotify"
	"github.com/custodia-labs/reportlens/internal/adapters/driven/watcher/polling"
	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/core/services"
	"github.com/custodia-labs/reportlens/internal/extractors"
	"github.com/custodia-labs/reportlens/internal/extractors/csv"
	"github.com/custodia-labs/reportlens/internal/extractors/excel"
	"github.com/custodia-labs/reportlens/internal/extractors/pdf"
)

// readyPoll is how often Run checks that the worker pool accepts jobs
// before the monitor replays existing files.
const readyPoll = 5 * time.Millisecond

// Engine is a fully wired pipeline.
type Engine struct {
	Settings  domain.Settings
	Monitor   *services.FolderMonitor
	Processor *services.ReportProcessor
	Registry  *extractors.Registry

	// Metrics is nil unless a metrics address is configured.
	Metrics *metrics.Prometheus

	// Results is nil unless an output directory is configured.
	Results *jsonfile.Sink

	log *log.Logger
}

// NewSettingsService opens the TOML config at path, or the default
// ~/.reportlens/config.toml when path is empty.
func NewSettingsService(path string) (*services.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if path == "" {
		store, err = file.NewConfigStore("")
	} else {
		store, err = file.NewConfigStoreAt(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// NewRegistry returns a registry with every built-in extractor.
func NewRegistry(logger *log.Logger) *extractors.Registry {
	return extractors.NewRegistry(
		csv.New(),
		excel.New(logger),
		pdf.New(logger),
	)
}

// NewWatcher returns the watcher backend selected in settings.
func NewWatcher(settings domain.WatchSettings, logger *log.Logger) (driven.Watcher, error) {
	switch settings.Backend {
	case domain.WatchBackendFSNotify, "":
		return fsnotify.New(logger), nil
	case domain.WatchBackendPolling:
		return polling.New(settings.PollInterval, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown watch backend %q", domain.ErrConfiguration, settings.Backend)
	}
}

// BuildEngine wires a pipeline for settings. The monitor's callback
// queues files on the processor, and the processor releases each path
// on the monitor once its job ends.
func BuildEngine(settings domain.Settings, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	watcher, err := NewWatcher(settings.Watch, logger.WithPrefix("watcher"))
	if err != nil {
		return nil, err
	}

	var (
		prom *metrics.Prometheus
		m    driven.Metrics
	)
	if settings.Metrics.Address != "" {
		prom = metrics.New()
		m = prom
	}

	var (
		results *jsonfile.Sink
		sink    driven.ResultSink
	)
	if settings.Output.Directory != "" {
		results = jsonfile.NewSink(settings.Output.Directory, settings.Watch.Directory)
		sink = results
	}

	registry := NewRegistry(logger.WithPrefix("extract"))
	analyzer := services.NewAnalyzer(settings.Analysis, logger.WithPrefix("analyzer"))
	processor := services.NewReportProcessor(
		registry,
		analyzer,
		sink,
		nil,
		m,
		logger.WithPrefix("processor"),
		settings.Processing,
	)

	monitor := services.NewFolderMonitor(watcher, m, logger)
	monitor.Configure(settings.Watch.Directory)
	monitor.RegisterCallback(func(f domain.WatchedFile, kind domain.EventKind) {
		processor.Submit(f, kind)
	})
	processor.OnDone(monitor.Release)

	return &Engine{
		Settings:  settings,
		Monitor:   monitor,
		Processor: processor,
		Registry:  registry,
		Metrics:   prom,
		Results:   results,
		log:       logger,
	}, nil
}

// Process analyses one file without starting the watcher.
func (e *Engine) Process(ctx context.Context, path string) (*domain.AnalysisResult, error) {
	fileType, ok := domain.FileTypeForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}
	return e.Processor.Process(ctx, path, fileType)
}

// Stored loads the result and chart manifest previously written for the
// report at path. The manifest is nil when no charts were rendered.
func (e *Engine) Stored(path string) (*domain.AnalysisResult, *domain.VisualizationManifest, error) {
	if e.Results == nil {
		return nil, nil, fmt.Errorf("%w: no output directory configured", domain.ErrConfiguration)
	}
	result, err := e.Results.Result(path)
	if err != nil {
		return nil, nil, err
	}
	manifest, err := e.Results.Manifest(path)
	if err != nil {
		return nil, nil, err
	}
	return result, manifest, nil
}

// CheckTools reports missing external tools the registered extractors
// depend on. The error carries install instructions.
func (e *Engine) CheckTools() error {
	if !slices.Contains(e.Registry.SupportedTypes(), domain.FileTypePDF) {
		return nil
	}
	if err := pdf.CheckAvailable(); err != nil {
		return fmt.Errorf("%w\n%s", err, pdf.InstallInstructions())
	}
	return nil
}

// Run starts the worker pool, the metrics endpoint when configured and
// the folder monitor, then blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.Processor.Run(gctx)
	})
	if e.Metrics != nil {
		addr := e.Settings.Metrics.Address
		g.Go(func() error {
			e.log.Info("serving metrics", "addr", addr)
			return e.Metrics.Serve(gctx, addr)
		})
	}

	if err := waitRunning(gctx, e.Processor); err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}

	if err := e.Monitor.Start(gctx); err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}

	g.Go(func() error {
		<-gctx.Done()
		e.Monitor.Stop()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// waitRunning blocks until the processor accepts jobs so the monitor's
// replay of existing files is not dropped.
func waitRunning(ctx context.Context, p *services.ReportProcessor) error {
	ticker := time.NewTicker(readyPoll)
	defer ticker.Stop()
	for !p.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
