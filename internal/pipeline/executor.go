package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clipper/internal/config"
	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/logging"
	"clipper/internal/stage"
)

// submissionQueueSize bounds how many jobs may wait for a worker before
// Submit starts rejecting.
const submissionQueueSize = 256

type submission struct {
	jobID  string
	source string
}

// Adapters bundles the stage implementations the executor drives.
type Adapters struct {
	Downloader  stage.Downloader
	Transcriber stage.Transcriber
	Analyzer    stage.Analyzer
	Prober      stage.Prober
	Cropper     stage.Cropper
	Renderer    stage.Renderer
}

// Executor coordinates job processing across a fixed pool of workers.
type Executor struct {
	cfg      *config.Config
	store    *jobs.Store
	catalog  *library.Catalog
	logger   *slog.Logger
	adapters Adapters
	sleep    func(ctx context.Context, d time.Duration) error

	queue chan submission

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started time.Time
}

// Option configures optional Executor behavior.
type Option func(*Executor)

// WithSleeper overrides the retry backoff sleep, letting tests run
// without real delays.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// New constructs an Executor. All adapters must be non-nil except
// Cropper, which falls back to a centered crop when absent.
func New(cfg *config.Config, store *jobs.Store, catalog *library.Catalog, adapters Adapters, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Executor{
		cfg:      cfg,
		store:    store,
		catalog:  catalog,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		adapters: adapters,
		sleep:    sleepContext,
		queue:    make(chan submission, submissionQueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the worker pool and the janitor. It returns immediately;
// processing continues until Stop or context cancellation.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return errors.New("executor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.started = time.Now().UTC()

	workers := e.cfg.Workflow.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	e.wg.Add(workers + 1)
	for i := 0; i < workers; i++ {
		go e.runWorker(runCtx, i)
	}
	go e.runJanitor(runCtx)

	e.logger.Info("executor started", logging.Int("workers", workers))
	return nil
}

// Stop halts processing and waits for in-flight jobs to finish or abort.
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	e.running = false
	e.cancel = nil
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	e.logger.Info("executor stopped")
}

// Submit registers a new job for the given source, which is either a
// remote video URL or a path to a file on the server. The job is queued
// for the next free worker.
func (e *Executor) Submit(source string) (jobs.Job, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return jobs.Job{}, errors.New("empty source")
	}

	const fullMsg = "processing queue is full"
	if len(e.queue) == cap(e.queue) {
		return jobs.Job{}, errors.New(fullMsg)
	}

	job := e.store.Create("", source)
	select {
	case e.queue <- submission{jobID: job.ID, source: source}:
	default:
		// Lost the race for the last slot. The failed record stays
		// visible to pollers under the ID we hand back.
		if err := e.store.Fail(job.ID, fullMsg); err != nil {
			e.logger.Warn("failed to mark overflow job", logging.Error(err))
		}
		job, _ = e.store.Get(job.ID)
		return job, errors.New(fullMsg)
	}

	e.logger.Info("job submitted",
		logging.String("job_id", job.ID),
		logging.String("source", source))
	return job, nil
}

func (e *Executor) runWorker(ctx context.Context, id int) {
	defer e.wg.Done()
	logger := e.logger.With(logging.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-e.queue:
			e.process(ctx, sub, logger)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
