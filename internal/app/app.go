package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parupload/internal/config"
	"parupload/internal/journal"
	"parupload/internal/metrics"
	"parupload/internal/progress"
	"parupload/internal/scan"
	"parupload/internal/transport"
	"parupload/internal/worker"

	"go.uber.org/zap"
)

// Report summarizes one upload run
type Report struct {
	Attempted int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
	DryRun    bool
}

// Uploader represents the main upload application
type Uploader struct {
	cfg     *config.Config
	logger  *zap.Logger
	scanner *scan.Scanner
	workers *worker.Pool
	tracker *progress.Tracker
	metrics *metrics.Collector
	journal journal.Store
}

// New creates a new uploader instance
func New(cfg *config.Config, logger *zap.Logger) (*Uploader, error) {
	urls, err := transport.NewPARBuilder(cfg.Upload.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload URLs: %w", err)
	}

	client := transport.NewHTTPClient(0)
	tracker := progress.NewTracker()
	metricsCollector := metrics.New()

	var journalStore journal.Store
	if cfg.Upload.Journal != "" {
		journalStore, err = journal.NewSQLiteStore(cfg.Upload.Journal)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}

	workerPool := worker.NewPool(cfg.Upload.Concurrency, worker.Config{
		ChunkSize: cfg.Upload.ChunkSize,
		DryRun:    cfg.Upload.DryRun,
	}, client, urls, tracker, metricsCollector, logger)

	return &Uploader{
		cfg:     cfg,
		logger:  logger,
		scanner: scan.NewScanner(logger),
		workers: workerPool,
		tracker: tracker,
		metrics: metricsCollector,
		journal: journalStore,
	}, nil
}

// Run executes the upload process and returns the aggregate report.
// Every dispatched task is accounted for exactly once in the report.
func (u *Uploader) Run(ctx context.Context) (*Report, error) {
	u.logger.Info("Starting upload",
		zap.String("directory", u.cfg.Upload.Directory),
		zap.String("prefix", u.cfg.Upload.Prefix),
		zap.Bool("dry_run", u.cfg.Upload.DryRun),
		zap.Bool("recursive", u.cfg.Upload.Recursive),
		zap.Int("concurrency", u.cfg.Upload.Concurrency),
		zap.Int64("chunk_size", u.cfg.Upload.ChunkSize),
	)

	report := &Report{DryRun: u.cfg.Upload.DryRun}

	tasks, totalBytes := u.scanner.Scan(u.cfg.Upload.Directory, u.cfg.Upload.Prefix, u.cfg.Upload.Recursive)
	if len(tasks) == 0 {
		u.logger.Warn("No files found to upload")
		return report, nil
	}

	u.logger.Info("Total upload size",
		zap.Int("files", len(tasks)),
		zap.String("size", progress.FormatBytes(totalBytes)),
	)
	u.tracker.SetTotal(int64(len(tasks)), totalBytes)

	if u.cfg.Upload.MetricsAddr != "" {
		go func() {
			if err := u.metrics.StartServer(u.cfg.Upload.MetricsAddr); err != nil {
				u.logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	var display *progress.Display
	if u.cfg.Upload.ShowProgress && !u.cfg.Upload.DryRun && progress.IsTerminalSupported() {
		display = progress.NewDisplay(u.tracker, 2*time.Second)
		display.Start()
	}

	startTime := time.Now()

	taskCh := make(chan worker.Task, u.cfg.Upload.Concurrency*2)
	results := make(chan worker.Result, len(tasks))

	var wg sync.WaitGroup
	u.workers.Start(ctx, taskCh, results, &wg)

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		report.Attempted++
		if result.Succeeded {
			report.Succeeded++
			u.logger.Debug("Uploaded object", zap.String("key", result.Task.Key))
		} else {
			report.Failed++
			u.logger.Error("Failed to upload object",
				zap.String("path", result.Task.LocalPath),
				zap.String("key", result.Task.Key),
				zap.String("detail", result.Detail),
			)
		}
		u.recordOutcome(result)
	}

	report.Elapsed = time.Since(startTime)

	if display != nil {
		display.Stop()
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	u.logger.Info("Upload completed")
	return report, nil
}

// Close cleans up resources
func (u *Uploader) Close() error {
	if u.journal != nil {
		return u.journal.Close()
	}
	return nil
}

func (u *Uploader) recordOutcome(result worker.Result) {
	if u.journal == nil {
		return
	}

	status := journal.StatusSucceeded
	if !result.Succeeded {
		status = journal.StatusFailed
	}

	record := &journal.Record{
		Key:       result.Task.Key,
		LocalPath: result.Task.LocalPath,
		Size:      result.Task.Size,
		Status:    status,
		Detail:    result.Detail,
	}

	if err := u.journal.SaveRecord(record); err != nil {
		u.logger.Error("Failed to save journal record",
			zap.String("key", result.Task.Key),
			zap.Error(err),
		)
	}
}
