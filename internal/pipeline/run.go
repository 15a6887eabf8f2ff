package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"clipper/internal/fileutil"
	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/services/whisper"
	"clipper/internal/services/ytdl"
	"clipper/internal/stage"
	"clipper/internal/textutil"
)

func (e *Executor) process(ctx context.Context, sub submission, workerLogger *slog.Logger) {
	ctx = services.WithJobID(ctx, sub.jobID)
	logger := logging.WithContext(ctx, workerLogger).With(
		logging.String("source", sub.source),
	)
	logger.Info("job started")

	upload, media, err := e.acquire(ctx, sub, logger)
	if err != nil {
		e.failJob(sub.jobID, err, logger)
		return
	}
	ctx = services.WithUploadID(ctx, upload.ID)
	logger = logger.With(logging.String("upload_id", upload.ID))

	transcript, err := e.transcribe(ctx, sub.jobID, upload, media, logger)
	if err != nil {
		e.failJob(sub.jobID, err, logger)
		return
	}

	highlights, err := e.analyze(ctx, sub.jobID, media, transcript)
	if err != nil {
		e.failJob(sub.jobID, err, logger)
		return
	}

	clips, err := e.render(ctx, sub.jobID, upload, media, highlights, logger)
	if err != nil {
		e.failJob(sub.jobID, err, logger)
		return
	}

	if err := e.catalog.ReplaceClips(ctx, upload.ID, clips); err != nil {
		e.failJob(sub.jobID, services.Wrap(services.ErrRender, "render", "record clips", "", err), logger)
		return
	}

	if err := e.store.Complete(sub.jobID, e.jobClips(clips)); err != nil {
		logger.Error("failed to mark job done", logging.Error(err))
		return
	}
	logger.Info("job complete", logging.Int("clips", len(clips)))
}

// jobClips converts rendered catalog clips into the terminal result a
// poller sees, with paths relative to the static file mount.
func (e *Executor) jobClips(clips []library.Clip) []jobs.Clip {
	out := make([]jobs.Clip, 0, len(clips))
	for _, clip := range clips {
		path := clip.Path
		if rel, err := filepath.Rel(e.cfg.OutputDir(), clip.Path); err == nil {
			path = rel
		}
		out = append(out, jobs.Clip{
			Path:         path,
			Title:        clip.Title,
			Excerpt:      clip.Excerpt,
			Score:        clip.Score,
			StartSeconds: clip.StartSeconds,
			EndSeconds:   clip.EndSeconds,
		})
	}
	return out
}

// acquire resolves the job source into a registered catalog upload with
// local media. Sources already in the catalog skip the network entirely.
func (e *Executor) acquire(ctx context.Context, sub submission, logger *slog.Logger) (*library.Upload, stage.Media, error) {
	ctx = services.WithStage(ctx, "acquire")
	remote := ytdl.IsRemote(sub.source)

	if !remote {
		cleaned := filepath.Clean(sub.source)
		if existing, err := e.catalog.FindByPath(ctx, cleaned); err == nil {
			if _, statErr := os.Stat(existing.Path); statErr == nil {
				if err := e.store.AttachUpload(sub.jobID, existing.ID); err != nil {
					return nil, stage.Media{}, err
				}
				logger.Info("source already registered, skipping acquisition",
					logging.String("upload_id", existing.ID))
				media := stage.Media{
					Path:            existing.Path,
					Title:           existing.Title,
					DurationSeconds: existing.DurationSeconds,
					SizeBytes:       existing.SizeBytes,
				}
				return existing, media, nil
			}
		} else if !errors.Is(err, library.ErrUploadNotFound) {
			return nil, stage.Media{}, services.Wrap(services.ErrAcquisition, "acquire", "lookup catalog", "", err)
		}
	}

	if err := e.checkUploadDir(); err != nil {
		return nil, stage.Media{}, err
	}

	status := jobs.StatusUploading
	if remote {
		status = jobs.StatusDownloading
	}
	if err := e.store.Transition(sub.jobID, status); err != nil {
		return nil, stage.Media{}, err
	}
	progress := e.percentReporter(sub.jobID, status)

	var media stage.Media
	err := e.withRetry(ctx, logger, "acquire", func() error {
		var acquireErr error
		media, acquireErr = e.adapters.Downloader.Acquire(ctx, sub.source, e.cfg.UploadDir(), progress)
		return acquireErr
	})
	if err != nil {
		return nil, stage.Media{}, err
	}

	if media.DurationSeconds <= 0 {
		probed, probeErr := e.adapters.Prober.Probe(ctx, media.Path)
		if probeErr != nil {
			return nil, stage.Media{}, probeErr
		}
		media.DurationSeconds = probed.DurationSeconds
		if media.SizeBytes <= 0 {
			media.SizeBytes = probed.SizeBytes
		}
	}

	upload, err := e.registerUpload(ctx, sub.source, remote, media)
	if err != nil {
		return nil, stage.Media{}, err
	}
	if err := e.store.AttachUpload(sub.jobID, upload.ID); err != nil {
		return nil, stage.Media{}, err
	}

	e.generateThumbnail(ctx, upload, media, logger)
	return upload, media, nil
}

func (e *Executor) registerUpload(ctx context.Context, source string, remote bool, media stage.Media) (*library.Upload, error) {
	originalName := filepath.Base(source)
	if remote {
		originalName = filepath.Base(media.Path)
	}

	upload := library.NewUpload(originalName, media.Path, media.SizeBytes)
	if media.Title != "" {
		upload.Title = media.Title
	}
	upload.DurationSeconds = media.DurationSeconds

	registered, err := e.catalog.Register(ctx, upload)
	if err != nil {
		return nil, services.Wrap(services.ErrAcquisition, "acquire", "register upload", "", err)
	}
	return registered, nil
}

// generateThumbnail grabs a poster frame for the uploads listing. A
// failure here never fails the job.
func (e *Executor) generateThumbnail(ctx context.Context, upload *library.Upload, media stage.Media, logger *slog.Logger) {
	thumbPath := filepath.Join(e.cfg.OutputDir(), upload.ID+"_thumb.jpg")
	if err := e.adapters.Renderer.Thumbnail(ctx, media, thumbPath); err != nil {
		logger.Warn("thumbnail generation failed", logging.Error(err))
		return
	}
	if err := e.catalog.AttachThumbnail(ctx, upload.ID, thumbPath); err != nil {
		logger.Warn("failed to record thumbnail", logging.Error(err))
	}
}

// transcribe returns the transcript for the media, reusing the cached
// sidecar file when one exists so repeat runs never pay for speech
// recognition twice.
func (e *Executor) transcribe(ctx context.Context, jobID string, upload *library.Upload, media stage.Media, logger *slog.Logger) (stage.Transcript, error) {
	ctx = services.WithStage(ctx, "transcribe")
	cachePath := whisper.TranscriptPathFor(media.Path)
	if upload.HasTranscript() {
		cachePath = upload.TranscriptPath
	}
	if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
		logger.Info("using cached transcript", logging.String("path", cachePath))
		if !upload.HasTranscript() {
			if err := e.catalog.AttachTranscript(ctx, upload.ID, cachePath); err != nil {
				logger.Warn("failed to record transcript", logging.Error(err))
			}
		}
		return stage.Transcript{Path: cachePath, Text: string(data)}, nil
	}

	if err := e.store.Transition(jobID, jobs.StatusTranscribing); err != nil {
		return stage.Transcript{}, err
	}
	progress := e.percentReporter(jobID, jobs.StatusTranscribing)

	var transcript stage.Transcript
	err := e.withRetry(ctx, logger, "transcribe", func() error {
		var transcribeErr error
		transcript, transcribeErr = e.adapters.Transcriber.Transcribe(ctx, media, progress)
		return transcribeErr
	})
	if err != nil {
		return stage.Transcript{}, err
	}

	if err := e.catalog.AttachTranscript(ctx, upload.ID, transcript.Path); err != nil {
		logger.Warn("failed to record transcript", logging.Error(err))
	}
	return transcript, nil
}

// analyze runs highlight selection. Analysis failures surface
// immediately with the model's error detail and are never retried.
func (e *Executor) analyze(ctx context.Context, jobID string, media stage.Media, transcript stage.Transcript) ([]stage.Highlight, error) {
	ctx = services.WithStage(ctx, "analyze")
	if err := e.store.Transition(jobID, jobs.StatusAnalyzing); err != nil {
		return nil, err
	}
	return e.adapters.Analyzer.Analyze(ctx, media, transcript)
}

// render cuts each highlight into a clip. Individual segment failures
// are logged and skipped; the job fails only when nothing rendered.
func (e *Executor) render(ctx context.Context, jobID string, upload *library.Upload, media stage.Media, highlights []stage.Highlight, logger *slog.Logger) ([]library.Clip, error) {
	ctx = services.WithStage(ctx, "render")
	if err := e.store.Transition(jobID, jobs.StatusRendering); err != nil {
		return nil, err
	}
	total := len(highlights)
	if err := e.store.SetProgress(jobID, jobs.Fraction(jobs.StatusRendering, 0, total)); err != nil {
		logger.Warn("failed to record progress", logging.Error(err))
	}

	clips := make([]library.Clip, 0, total)
	var lastErr error
	for i, highlight := range highlights {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrRender, "render", "cancelled", "", err)
		}

		center := 0.5
		if e.adapters.Cropper != nil {
			detected, err := e.adapters.Cropper.CropCenter(ctx, media, highlight)
			if err != nil {
				logger.Warn("crop detection failed, using frame center",
					logging.Int("segment", i+1),
					logging.Error(err))
			} else {
				center = detected
			}
		}

		outPath := filepath.Join(e.cfg.OutputDir(), clipFileName(upload.ID, i+1, highlight.Title))
		if err := e.adapters.Renderer.Render(ctx, media, highlight, center, outPath); err != nil {
			lastErr = err
			logger.Warn("segment render failed",
				logging.Int("segment", i+1),
				logging.Error(err))
		} else {
			clips = append(clips, library.Clip{
				UploadID:     upload.ID,
				Position:     len(clips),
				Title:        highlight.Title,
				Excerpt:      highlight.Excerpt,
				Score:        highlight.Score,
				StartSeconds: highlight.StartSeconds,
				EndSeconds:   highlight.EndSeconds,
				Path:         outPath,
			})
		}

		if err := e.store.SetProgress(jobID, jobs.Fraction(jobs.StatusRendering, i+1, total)); err != nil {
			logger.Warn("failed to record progress", logging.Error(err))
		}
	}

	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrRender, "render", "encode clips",
			fmt.Sprintf("All %d segments failed to render", total), lastErr)
	}
	return clips, nil
}

func (e *Executor) failJob(jobID string, cause error, logger *slog.Logger) {
	message := services.UserMessage(cause)
	logger.Error("job failed", logging.Error(cause))
	if err := e.store.Fail(jobID, message); err != nil {
		logger.Error("failed to mark job failed", logging.Error(err))
	}
}

// percentReporter adapts a stage percentage callback into a store
// progress write. Store-side monotonicity drops regressions, so retried
// stages never rewind what pollers see.
func (e *Executor) percentReporter(jobID string, status jobs.Status) stage.ProgressFunc {
	return func(percent int) {
		if err := e.store.SetProgress(jobID, jobs.Percentage(status, percent)); err != nil {
			e.logger.Debug("progress dropped",
				logging.String("job_id", jobID),
				logging.Error(err))
		}
	}
}

// withRetry runs fn up to the configured attempt count, backing off
// exponentially between tries. Only transient and timeout failures
// retry.
func (e *Executor) withRetry(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	attempts := e.cfg.Workflow.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	baseDelay := time.Duration(e.cfg.Workflow.RetryBaseDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !services.Retryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := baseDelay * time.Duration(1<<(attempt-1))
		logger.Warn("stage attempt failed, retrying",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Error(lastErr))
		if err := e.sleep(ctx, delay); err != nil {
			return lastErr
		}
	}
	return lastErr
}

// checkUploadDir verifies the upload directory can actually take new
// media before any bytes move.
func (e *Executor) checkUploadDir() error {
	if err := fileutil.CheckWritableDir(e.cfg.UploadDir()); err != nil {
		return services.Wrap(services.ErrConfiguration, "acquire", "check upload directory",
			"Upload directory is not writable", err)
	}

	minFree := uint64(e.cfg.Workflow.MinFreeSpaceGiB) * fileutil.GiB
	if minFree == 0 {
		return nil
	}
	free, err := fileutil.FreeSpace(e.cfg.UploadDir())
	if err != nil {
		return nil
	}
	if free < minFree {
		return services.Wrap(services.ErrConfiguration, "acquire", "check disk space",
			fmt.Sprintf("Less than %d GiB free in upload directory", e.cfg.Workflow.MinFreeSpaceGiB), nil)
	}
	return nil
}

func clipFileName(uploadID string, position int, title string) string {
	return fmt.Sprintf("%s_%02d_%s.mp4", uploadID, position, textutil.SanitizeToken(title))
}
