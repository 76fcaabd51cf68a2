package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkerPool fans jobs out to a fixed number of workers and hands every result to a sink.
type WorkerPool struct {
	handle  Handler
	sink    func(Result)
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// base parents every job context; Shutdown cancels it when interrupted.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	sinkMu sync.Mutex
}

type Option func(*WorkerPool)

func WithWorkers(n int) Option {
	return func(p *WorkerPool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *WorkerPool) {
		if n > 0 {
			p.ch = make(chan Job, n)
		}
	}
}

// WithJobTimeout bounds each job; zero keeps the default.
func WithJobTimeout(d time.Duration) Option {
	return func(p *WorkerPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewWorkerPool starts the workers. sink is called serially, once per job.
func NewWorkerPool(handle Handler, sink func(Result), logger *slog.Logger, opts ...Option) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &WorkerPool{
		handle:  handle,
		sink:    sink,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(p)
	}
	p.base, p.cancel = context.WithCancel(context.Background())
	p.start()
	return p
}

func (p *WorkerPool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				p.logger.Debug("batch.worker.start", "worker_id", workerID)

				for job := range p.ch {
					p.run(workerID, job)
				}

				p.logger.Debug("batch.worker.stop", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (p *WorkerPool) run(workerID int, job Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(p.base, p.timeout)
	res := p.handle(ctx, job)
	cancel()

	p.logger.Info("batch.job.done",
		"worker_id", workerID,
		"trace_id", job.TraceID,
		"provider", job.Provider,
		"transaction_id", job.Request.TransactionID,
		"status", res.Status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if p.sink != nil {
		p.sinkMu.Lock()
		p.sink(Result{Job: job, Result: res})
		p.sinkMu.Unlock()
	}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (p *WorkerPool) Enqueue(ctx context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("batch.enqueue.closed", "transaction_id", job.Request.TransactionID)
		return ErrQueueClosed
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case p.ch <- job:
		return nil
	default:
	}
	p.logger.Debug("batch.enqueue.backpressure", "transaction_id", job.Request.TransactionID)
	select {
	case p.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. If ctx ends
// first, running jobs are cancelled and ctx's error is returned.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.logger.Warn("batch.shutdown.interrupted")
		p.cancel()
		return ctx.Err()
	case <-done:
		p.logger.Info("batch.shutdown.drained")
		p.cancel()
		return nil
	}
}
