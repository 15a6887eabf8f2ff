package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/services/ffmpeg"
	"clipper/internal/stage"
)

type extractFunc func(ctx context.Context, ffmpegBinary, source string, startSec, durationSec float64, dest string) error

// Transcriber produces timed transcripts by slicing media audio into
// fixed-length chunks and transcribing each through the API. Progress
// is reported as the percentage of audio duration processed.
type Transcriber struct {
	client       *Client
	logger       *slog.Logger
	ffmpegBinary string
	chunkSeconds int
	extract      extractFunc
}

// NewTranscriber builds the transcription stage from configuration.
func NewTranscriber(cfg *config.Config, logger *slog.Logger, opts ...Option) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		client: NewClient(Config{
			APIKey:         cfg.Transcriber.APIKey,
			BaseURL:        cfg.Transcriber.BaseURL,
			Model:          cfg.Transcriber.Model,
			TimeoutSeconds: cfg.Transcriber.TimeoutSeconds,
		}, opts...),
		logger:       logging.NewComponentLogger(logger, "transcriber"),
		ffmpegBinary: cfg.Render.FFmpegBinary,
		chunkSeconds: cfg.Transcriber.ChunkSeconds,
		extract:      ffmpeg.ExtractAudioSegment,
	}
}

// TranscriptPathFor returns the cache location of a media file's
// transcript, next to the media itself so repeated runs find it.
func TranscriptPathFor(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".transcript.txt"
}

// Transcribe runs chunked transcription over the media's audio track
// and writes the assembled transcript to its cache path.
func (t *Transcriber) Transcribe(ctx context.Context, media stage.Media, progress stage.ProgressFunc) (stage.Transcript, error) {
	if media.DurationSeconds <= 0 {
		return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "probe media", "Media duration unknown; cannot chunk audio", nil)
	}

	chunk := float64(t.chunkSeconds)
	chunks := int(math.Ceil(media.DurationSeconds / chunk))
	if chunks < 1 {
		chunks = 1
	}

	workDir, err := os.MkdirTemp("", "clipper-transcribe-*")
	if err != nil {
		return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "create workdir", "", err)
	}
	defer os.RemoveAll(workDir)

	if progress != nil {
		progress(0)
	}

	var builder strings.Builder
	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "cancelled", "", err)
		}

		start := float64(i) * chunk
		end := start + chunk
		if end > media.DurationSeconds {
			end = media.DurationSeconds
		}

		audioPath := filepath.Join(workDir, fmt.Sprintf("chunk_%03d.wav", i))
		if err := t.extract(ctx, t.ffmpegBinary, media.Path, start, end-start, audioPath); err != nil {
			return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "extract audio", "", err)
		}

		text, err := t.client.TranscribeFile(ctx, audioPath)
		if err != nil {
			return stage.Transcript{}, err
		}
		_ = os.Remove(audioPath)

		if text != "" {
			fmt.Fprintf(&builder, "[%s-%s] %s\n", stage.FormatTimecode(start), stage.FormatTimecode(end), text)
		}

		if progress != nil {
			progress((i + 1) * 100 / chunks)
		}
		t.logger.Debug("chunk transcribed",
			logging.String("file", filepath.Base(media.Path)),
			logging.Int("chunk", i+1),
			logging.Int("chunks", chunks))
	}

	transcript := stage.Transcript{
		Path: TranscriptPathFor(media.Path),
		Text: builder.String(),
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "assemble transcript", "No speech detected in media", nil)
	}
	if err := os.WriteFile(transcript.Path, []byte(transcript.Text), 0o644); err != nil {
		return stage.Transcript{}, services.Wrap(services.ErrTranscription, "transcribe", "cache transcript", "", err)
	}
	return transcript, nil
}

// HealthCheck reports transcriber readiness.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if t.client.cfg.APIKey == "" {
		return stage.Unhealthy(name, "API key missing")
	}
	return stage.Healthy(name)
}
