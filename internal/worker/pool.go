package worker

import (
	"context"
	"fmt"
	"sync"

	"parupload/internal/metrics"
	"parupload/internal/progress"
	"parupload/internal/transport"

	"go.uber.org/zap"
)

// Pool manages a pool of upload workers
type Pool struct {
	size    int
	config  Config
	client  transport.Client
	urls    transport.URLBuilder
	tracker *progress.Tracker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewPool creates a new worker pool
func NewPool(
	size int,
	config Config,
	client transport.Client,
	urls transport.URLBuilder,
	tracker *progress.Tracker,
	metricsCollector *metrics.Collector,
	logger *zap.Logger,
) *Pool {
	return &Pool{
		size:    size,
		config:  config,
		client:  client,
		urls:    urls,
		tracker: tracker,
		metrics: metricsCollector,
		logger:  logger,
	}
}

// Start starts the worker pool. Workers consume tasks until the task
// channel closes or the context is cancelled, reporting one result per
// consumed task.
func (p *Pool) Start(ctx context.Context, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go p.worker(ctx, i, tasks, results, wg)
	}
}

func (p *Pool) worker(ctx context.Context, id int, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	processor := &Processor{
		config:  p.config,
		client:  p.client,
		urls:    p.urls,
		tracker: p.tracker,
		metrics: p.metrics,
		logger:  logger,
	}

	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				logger.Debug("Worker finished - no more tasks")
				return
			}

			p.metrics.IncInflight()
			result := p.runTask(ctx, processor, task)
			p.metrics.DecInflight()

			results <- result

		case <-ctx.Done():
			logger.Debug("Worker stopped - context cancelled")
			return
		}
	}
}

// runTask converts any fault escaping the processor into a failed result
// so a single file can never take down the pool.
func (p *Pool) runTask(ctx context.Context, processor *Processor, task Task) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker fault",
				zap.String("key", task.Key),
				zap.Any("fault", r),
			)
			p.tracker.AddFailed()
			p.metrics.IncFailed()
			result = Result{Task: task, Detail: fmt.Sprintf("worker fault: %v", r)}
		}
	}()

	return processor.Process(ctx, task)
}
