// Package ffmpeg renders highlight clips and extracts media artifacts by
// shelling out to ffmpeg and ffprobe.
package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
	"clipper/internal/stage"
)

// Renderer probes media, determines crop centers, and renders vertical
// clips. It implements both stage.Cropper and stage.Renderer.
type Renderer struct {
	ffmpegBinary   string
	ffprobeBinary  string
	sampleInterval int
	thumbOffset    int
	logger         *slog.Logger
}

// NewRenderer builds a Renderer from configuration.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		ffmpegBinary:   cfg.Render.FFmpegBinary,
		ffprobeBinary:  cfg.Render.FFprobeBinary,
		sampleInterval: cfg.Render.CropSampleInterval,
		thumbOffset:    cfg.Render.ThumbnailOffset,
		logger:         logging.NewComponentLogger(logger, "renderer"),
	}
}

// Probe inspects a local file and fills in the media attributes the
// pipeline needs.
func (r *Renderer) Probe(ctx context.Context, path string) (stage.Media, error) {
	result, err := ffprobe.Inspect(ctx, r.ffprobeBinary, path)
	if err != nil {
		return stage.Media{}, services.Wrap(services.ErrRender, "probe", "inspect media", "Could not read media file", err)
	}
	if _, ok := result.PrimaryVideo(); !ok {
		return stage.Media{}, services.Wrap(services.ErrRender, "probe", "inspect media", "File has no video stream", nil)
	}
	return stage.Media{
		Path:            path,
		DurationSeconds: result.DurationSeconds(),
		SizeBytes:       result.SizeBytes(),
	}, nil
}

// CropCenter estimates the normalized horizontal center of interest for
// a highlight by sampling ffmpeg cropdetect over the segment and taking
// the median detected center. When detection yields nothing usable the
// frame midpoint 0.5 is returned.
func (r *Renderer) CropCenter(ctx context.Context, media stage.Media, highlight stage.Highlight) (float64, error) {
	result, err := ffprobe.Inspect(ctx, r.ffprobeBinary, media.Path)
	if err != nil {
		return 0.5, services.Wrap(services.ErrCropping, "crop", "inspect media", "Could not read media file", err)
	}
	video, ok := result.PrimaryVideo()
	if !ok || video.Width <= 0 {
		return 0.5, nil
	}

	duration := highlight.EndSeconds - highlight.StartSeconds
	interval := r.sampleInterval
	if interval <= 0 {
		interval = 2
	}
	args := []string{
		"-hide_banner",
		"-ss", formatSeconds(highlight.StartSeconds),
		"-t", formatSeconds(duration),
		"-i", media.Path,
		"-vf", fmt.Sprintf("fps=1/%d,cropdetect=24:2:0", interval),
		"-f", "null", "-",
	}
	cmd := exec.CommandContext(ctx, r.ffmpegBinary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		// Detection is best effort; a cropdetect failure never fails
		// the stage.
		r.logger.Warn("cropdetect failed, using frame center",
			logging.String("file", filepath.Base(media.Path)),
			logging.Error(err))
		return 0.5, nil
	}

	centers := parseCropCenters(string(output), video.Width)
	center := medianCenter(centers)
	r.logger.Debug("crop center determined",
		logging.String("file", filepath.Base(media.Path)),
		logging.Int("samples", len(centers)),
		logging.Float64("center", center))
	return center, nil
}

// Render cuts one highlight into a 9:16 vertical clip at outPath,
// cropping around the given normalized center and scaling to 1080x1920.
func (r *Renderer) Render(ctx context.Context, media stage.Media, highlight stage.Highlight, cropCenter float64, outPath string) error {
	if highlight.EndSeconds <= highlight.StartSeconds {
		return services.Wrap(services.ErrRender, "render", "validate segment",
			fmt.Sprintf("Segment %s-%s is empty", stage.FormatTimecode(highlight.StartSeconds), stage.FormatTimecode(highlight.EndSeconds)), nil)
	}
	if cropCenter < 0 || cropCenter > 1 {
		cropCenter = 0.5
	}

	cmd := exec.CommandContext(ctx, r.ffmpegBinary, renderArgs(media.Path, highlight, cropCenter, outPath)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrRender, "render", "encode clip",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Thumbnail grabs a single frame near the start of the media.
func (r *Renderer) Thumbnail(ctx context.Context, media stage.Media, outPath string) error {
	offset := float64(r.thumbOffset)
	if media.DurationSeconds > 0 && offset >= media.DurationSeconds {
		offset = media.DurationSeconds / 2
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(offset),
		"-i", media.Path,
		"-vframes", "1",
		"-vf", "scale=480:-2",
		outPath,
	}
	cmd := exec.CommandContext(ctx, r.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrRender, "thumbnail", "extract frame",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

// HealthCheck verifies both binaries are on PATH.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "renderer"
	if _, err := exec.LookPath(r.ffmpegBinary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found", r.ffmpegBinary))
	}
	if _, err := exec.LookPath(r.ffprobeBinary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found", r.ffprobeBinary))
	}
	return stage.Healthy(name)
}

// renderArgs builds the ffmpeg invocation for one vertical clip. The
// crop width is ih*9/16 capped at the input width; the x offset places
// the requested center mid-crop, clamped to the frame.
func renderArgs(sourcePath string, highlight stage.Highlight, cropCenter float64, outPath string) []string {
	filter := fmt.Sprintf(
		"crop='min(floor(ih*9/16/2)*2,iw)':ih:'max(0,min(%.4f*iw-ow/2,iw-ow))':0,scale=1080:1920",
		cropCenter,
	)
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(highlight.StartSeconds),
		"-to", formatSeconds(highlight.EndSeconds),
		"-i", sourcePath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "21",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		outPath,
	}
}

func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%.3f", seconds)
}
