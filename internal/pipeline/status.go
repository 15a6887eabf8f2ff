package pipeline

import (
	"context"
	"time"

	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/logging"
	"clipper/internal/stage"
)

// StatusSummary represents lightweight executor diagnostics.
type StatusSummary struct {
	Running     bool
	Workers     int
	QueueDepth  int
	Started     time.Time
	Jobs        jobs.Stats
	Library     library.Stats
	StageHealth map[string]stage.Health
}

// Status returns the latest executor information for the status
// endpoint.
func (e *Executor) Status(ctx context.Context) StatusSummary {
	e.mu.Lock()
	running := e.running
	started := e.started
	e.mu.Unlock()

	libraryStats, err := e.catalog.Stats(ctx)
	if err != nil {
		e.logger.Warn("failed to read catalog stats", logging.Error(err))
	}

	return StatusSummary{
		Running:     running,
		Workers:     e.cfg.Workflow.MaxWorkers,
		QueueDepth:  len(e.queue),
		Started:     started,
		Jobs:        e.store.Stats(),
		Library:     libraryStats,
		StageHealth: e.StageHealth(ctx),
	}
}

// StageHealth collects readiness from every configured stage adapter.
func (e *Executor) StageHealth(ctx context.Context) map[string]stage.Health {
	health := make(map[string]stage.Health, 4)
	if e.adapters.Downloader != nil {
		record := e.adapters.Downloader.HealthCheck(ctx)
		health[record.Name] = record
	}
	if e.adapters.Transcriber != nil {
		record := e.adapters.Transcriber.HealthCheck(ctx)
		health[record.Name] = record
	}
	if e.adapters.Analyzer != nil {
		record := e.adapters.Analyzer.HealthCheck(ctx)
		health[record.Name] = record
	}
	if e.adapters.Renderer != nil {
		record := e.adapters.Renderer.HealthCheck(ctx)
		health[record.Name] = record
	}
	return health
}
