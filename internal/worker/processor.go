package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"path/filepath"
	"time"

	"parupload/internal/metrics"
	"parupload/internal/progress"
	"parupload/internal/transport"

	"go.uber.org/zap"
)

const octetStream = "application/octet-stream"

// Processor handles individual upload tasks
type Processor struct {
	config  Config
	client  transport.Client
	urls    transport.URLBuilder
	tracker *progress.Tracker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// Process uploads a single file and returns its outcome. Files at or
// below the chunk size go up in one PUT; larger files are split into
// sequential parts.
func (p *Processor) Process(ctx context.Context, task Task) Result {
	startTime := time.Now()

	if p.config.DryRun {
		p.logger.Info("Would upload file",
			zap.String("path", task.LocalPath),
			zap.String("key", task.Key),
			zap.String("size", progress.FormatBytes(task.Size)),
		)
		p.tracker.AddSuccess()
		p.metrics.IncSuccess()
		return Result{Task: task, Succeeded: true}
	}

	p.logger.Info("Uploading file",
		zap.String("path", task.LocalPath),
		zap.String("key", task.Key),
		zap.String("size", progress.FormatBytes(task.Size)),
	)

	var err error
	if task.Size <= p.config.ChunkSize {
		err = p.uploadSingle(ctx, task)
	} else {
		err = p.uploadChunked(ctx, task)
	}

	if err != nil {
		p.tracker.AddFailed()
		p.metrics.IncFailed()
		p.logger.Error("Upload failed",
			zap.String("path", task.LocalPath),
			zap.String("key", task.Key),
			zap.Error(err),
		)
		return Result{Task: task, Detail: err.Error()}
	}

	p.tracker.AddSuccess()
	p.metrics.IncSuccess()
	p.metrics.ObserveDuration(time.Since(startTime))
	p.logger.Debug("Upload completed",
		zap.String("key", task.Key),
		zap.Int64("size", task.Size),
		zap.Duration("duration", time.Since(startTime)),
	)
	return Result{Task: task, Succeeded: true}
}

func (p *Processor) uploadSingle(ctx context.Context, task Task) error {
	f, err := os.Open(task.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	result, err := p.client.Put(ctx, p.urls.UploadURL(task.Key), f, task.Size, contentTypeFor(task.LocalPath))
	if err != nil {
		return fmt.Errorf("put failed: %w", err)
	}
	if !result.OK() {
		return fmt.Errorf("put returned status %d: %s", result.StatusCode, result.Body)
	}

	p.tracker.AddBytes(task.Size)
	p.metrics.AddBytes(task.Size)
	return nil
}

func (p *Processor) uploadChunked(ctx context.Context, task Task) error {
	f, err := os.Open(task.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Parts are sent strictly in order; the first failure aborts the
	// remaining parts.
	partCount := int(math.Ceil(float64(task.Size) / float64(p.config.ChunkSize)))
	buf := make([]byte, p.config.ChunkSize)

	var sent int64
	for partNum := 1; partNum <= partCount; partNum++ {
		partSize := p.config.ChunkSize
		if remaining := task.Size - sent; remaining < partSize {
			partSize = remaining
		}

		if _, err := io.ReadFull(f, buf[:partSize]); err != nil {
			return fmt.Errorf("failed to read part %d: %w", partNum, err)
		}

		result, err := p.client.Put(ctx, p.urls.PartURL(task.Key, partNum),
			bytes.NewReader(buf[:partSize]), partSize, octetStream)
		if err != nil {
			return fmt.Errorf("failed to upload part %d: %w", partNum, err)
		}
		if !result.OK() {
			return fmt.Errorf("part %d returned status %d: %s", partNum, result.StatusCode, result.Body)
		}

		sent += partSize
		p.tracker.AddBytes(partSize)
		p.metrics.AddBytes(partSize)
		p.logger.Debug("Uploaded part",
			zap.String("key", task.Key),
			zap.Int("part", partNum),
			zap.Int("part_count", partCount),
			zap.String("sent", progress.FormatBytes(sent)),
		)
	}

	return nil
}

// contentTypeFor guesses a content type from the file extension
func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return octetStream
}
