package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"clipper/internal/fileutil"
	"clipper/internal/logging"
)

func (e *Executor) runJanitor(ctx context.Context) {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.Workflow.JanitorIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

// sweep applies the retention policy: terminal jobs past their TTL are
// evicted from the store, and unregistered files lingering in the upload
// directory are deleted. Registered uploads and their cached transcripts
// are never removed here.
func (e *Executor) sweep(ctx context.Context) {
	if hours := e.cfg.Workflow.JobRetentionHours; hours > 0 {
		cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		if evicted := e.store.EvictTerminalBefore(cutoff); evicted > 0 {
			e.logger.Info("evicted finished jobs", logging.Int("count", evicted))
		}
	}

	if e.cfg.Workflow.UploadRetentionHours > 0 {
		e.sweepUploadDir(ctx)
	}
}

func (e *Executor) sweepUploadDir(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(e.cfg.Workflow.UploadRetentionHours) * time.Hour)
	dir := e.cfg.UploadDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		e.logger.Warn("upload sweep failed", logging.Error(err))
		return
	}

	uploads, err := e.catalog.ListUploads(ctx)
	if err != nil {
		e.logger.Warn("upload sweep failed", logging.Error(err))
		return
	}
	keep := make(map[string]struct{}, 2*len(uploads))
	for _, upload := range uploads {
		keep[filepath.Clean(upload.Path)] = struct{}{}
		if upload.HasTranscript() {
			keep[filepath.Clean(upload.TranscriptPath)] = struct{}{}
		}
	}

	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if _, registered := keep[filepath.Clean(path)]; registered {
			continue
		}
		if err := fileutil.RemoveQuietly(path); err != nil {
			e.logger.Warn("failed to remove orphaned upload",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		e.logger.Info("swept orphaned uploads", logging.Int("count", removed))
	}
}
