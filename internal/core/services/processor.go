package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
)

// Ensure ReportProcessor implements the interface.
var _ driving.ReportProcessor = (*ReportProcessor)(nil)

// Processing outcomes reported to metrics.
const (
	OutcomeOK              = "ok"
	OutcomeExtractionError = "extraction_error"
	OutcomeAnalysisError   = "analysis_error"
	OutcomeSinkError       = "sink_error"
	OutcomeError           = "error"
)

// errSink marks failures writing a finished result.
var errSink = errors.New("result sink")

// ErrProcessorRunning is returned when Run is called twice.
var ErrProcessorRunning = errors.New("processor already running")

// Job is one queued report file.
type Job struct {
	ID       string
	File     domain.WatchedFile
	Kind     domain.EventKind
	QueuedAt time.Time
}

// ReportProcessor extracts and analyses report files on a bounded
// worker pool. Each file's tables are processed sequentially by one worker.
type ReportProcessor struct {
	extractors driven.ExtractorRegistry
	analyzer   driven.Analyzer
	sink       driven.ResultSink
	enhancer   driven.Enhancer
	metrics    driven.Metrics
	log        *log.Logger
	workers    int
	queueSize  int

	mu      sync.Mutex
	jobs    chan Job
	backlog []Job
	running bool
	onDone  func(file domain.WatchedFile)
}

// NewReportProcessor creates a processor.
// sink, enhancer, metrics and logger are optional and may be nil.
func NewReportProcessor(
	extractors driven.ExtractorRegistry,
	analyzer driven.Analyzer,
	sink driven.ResultSink,
	enhancer driven.Enhancer,
	metrics driven.Metrics,
	logger *log.Logger,
	cfg domain.ProcessingSettings,
) *ReportProcessor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &ReportProcessor{
		extractors: extractors,
		analyzer:   analyzer,
		sink:       sink,
		enhancer:   enhancer,
		metrics:    metrics,
		log:        logger.WithPrefix("processor"),
		workers:    cfg.Workers,
		queueSize:  cfg.QueueSize,
	}
}

// OnDone registers a function called with each file once its job has
// finished, failed or been dropped. The folder monitor's Release is
// wired here.
func (p *ReportProcessor) OnDone(fn func(file domain.WatchedFile)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDone = fn
}

// Running reports whether the worker pool accepts jobs.
func (p *ReportProcessor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Process extracts, analyses and stores one file synchronously.
// When an enhancer is configured it receives a copy of the result; an
// enhancement failure is logged and the plain result is kept.
func (p *ReportProcessor) Process(
	ctx context.Context,
	path string,
	fileType domain.FileType,
) (*domain.AnalysisResult, error) {
	dataset, err := p.extractors.Extract(ctx, path, fileType)
	if err != nil {
		return nil, err
	}

	result, err := p.analyzer.Analyze(ctx, dataset)
	if err != nil {
		return nil, err
	}
	result.SourcePath = path

	if p.enhancer != nil {
		enhanced, err := p.enhancer.Enhance(ctx, result.Clone())
		switch {
		case err != nil:
			p.log.Warn("enhance failed", "file", result.FileName, "err", err)
		case enhanced != nil:
			result = enhanced
		}
	}

	if p.sink != nil {
		if err := p.sink.Write(ctx, result); err != nil {
			return nil, fmt.Errorf("%w: %w", errSink, err)
		}
	}

	return result, nil
}

// Submit queues a file for a worker. Files arriving while the queue is
// full wait in a backlog that workers drain in arrival order, so nothing
// submitted to a running processor is lost. If the processor is not
// running the file is released immediately and false is returned.
func (p *ReportProcessor) Submit(file domain.WatchedFile, kind domain.EventKind) bool {
	job := Job{
		ID:       uuid.NewString(),
		File:     file,
		Kind:     kind,
		QueuedAt: time.Now(),
	}

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.log.Warn("dropped", "path", file.Path, "kind", kind)
		p.done(file)
		return false
	}
	if len(p.backlog) > 0 {
		p.backlog = append(p.backlog, job)
	} else {
		select {
		case p.jobs <- job:
		default:
			p.backlog = append(p.backlog, job)
		}
	}
	depth := len(p.jobs) + len(p.backlog)
	p.mu.Unlock()

	p.metrics.QueueDepth(depth)
	p.log.Debug("queued", "job", job.ID, "path", file.Path, "kind", kind)
	return true
}

// refill moves backlogged jobs into the queue while it has room.
func (p *ReportProcessor) refill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	for len(p.backlog) > 0 {
		select {
		case p.jobs <- p.backlog[0]:
			p.backlog = p.backlog[1:]
		default:
			return
		}
	}
}

// Run starts the worker pool and blocks until ctx is cancelled. Jobs
// already being processed run to completion; queued and backlogged jobs
// that have not started are released without processing.
func (p *ReportProcessor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrProcessorRunning
	}
	jobs := make(chan Job, p.queueSize)
	p.jobs = jobs
	p.backlog = nil
	p.running = true
	p.mu.Unlock()

	p.log.Debug("started", "workers", p.workers)

	var g errgroup.Group
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for job := range jobs {
				if ctx.Err() != nil {
					p.log.Debug("released", "job", job.ID, "path", job.File.Path)
					p.done(job.File)
					continue
				}
				p.refill()
				p.handle(context.WithoutCancel(ctx), job)
			}
			return nil
		})
	}

	<-ctx.Done()

	p.mu.Lock()
	p.running = false
	backlog := p.backlog
	p.backlog = nil
	close(jobs)
	p.mu.Unlock()

	for _, job := range backlog {
		p.log.Debug("released", "job", job.ID, "path", job.File.Path)
		p.done(job.File)
	}

	return g.Wait()
}

// handle processes a job and always releases its path.
func (p *ReportProcessor) handle(ctx context.Context, job Job) {
	start := time.Now()
	outcome := OutcomeError
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic", "job", job.ID, "path", job.File.Path, "panic", r)
		}
		p.metrics.FileProcessed(job.File.Type, outcome, time.Since(start))
		p.done(job.File)
	}()

	result, err := p.Process(ctx, job.File.Path, job.File.Type)
	outcome = classifyOutcome(err)
	if err != nil {
		p.log.Error("failed", "job", job.ID, "path", job.File.Path, "kind", job.Kind, "err", err)
		return
	}

	p.log.Info("processed",
		"file", result.FileName,
		"kind", job.Kind,
		"tables", len(result.Summary),
		"insights", len(result.Insights),
		"took", time.Since(start).Round(time.Millisecond),
	)
}

func (p *ReportProcessor) done(file domain.WatchedFile) {
	p.mu.Lock()
	fn := p.onDone
	p.mu.Unlock()
	if fn != nil {
		fn(file)
	}
}

// classifyOutcome maps a processing error to a metrics outcome label.
func classifyOutcome(err error) string {
	var extractErr *domain.ExtractionError
	var analysisErr *domain.AnalysisError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &extractErr):
		return OutcomeExtractionError
	case errors.As(err, &analysisErr):
		return OutcomeAnalysisError
	case errors.Is(err, errSink):
		return OutcomeSinkError
	default:
		return OutcomeError
	}
}
