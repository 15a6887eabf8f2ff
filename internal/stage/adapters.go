// Package stage defines the contracts between the pipeline executor and
// the external tools it drives. Each adapter wraps one collaborator
// (downloader, speech-to-text, highlight analyzer, cropper, renderer)
// behind a narrow interface so the executor can be tested with stubs.
package stage

import "context"

// Media describes a local source video ready for processing.
type Media struct {
	Path            string
	Title           string
	DurationSeconds float64
	SizeBytes       int64
}

// Transcript is the timed text produced by the transcription stage.
// Text holds "[MM:SS-MM:SS] ..." blocks, one segment per line.
type Transcript struct {
	Path string
	Text string
}

// Highlight is one analyzer-selected segment worth clipping.
type Highlight struct {
	StartSeconds float64
	EndSeconds   float64
	Title        string
	Excerpt      string
	Score        int
}

// ProgressFunc receives stage-local completion percentages in [0, 100].
// Implementations may call it from goroutines; receivers must be safe
// for concurrent use.
type ProgressFunc func(percent int)

// Downloader acquires source media into destDir, either by fetching a
// remote URL or by copying a server-side file.
type Downloader interface {
	Acquire(ctx context.Context, source, destDir string, progress ProgressFunc) (Media, error)
	HealthCheck(ctx context.Context) Health
}

// Transcriber produces a transcript for local media, reporting progress
// as a percentage of audio duration processed.
type Transcriber interface {
	Transcribe(ctx context.Context, media Media, progress ProgressFunc) (Transcript, error)
	HealthCheck(ctx context.Context) Health
}

// Prober inspects a local file and fills in duration and size. Sources
// acquired by copy arrive without metadata and are probed before
// transcription.
type Prober interface {
	Probe(ctx context.Context, path string) (Media, error)
}

// Analyzer selects highlight segments from a transcript. It returns a
// single batch result, so the stage reports no sub-progress.
type Analyzer interface {
	Analyze(ctx context.Context, media Media, transcript Transcript) ([]Highlight, error)
	HealthCheck(ctx context.Context) Health
}

// Cropper determines the horizontal crop center for a highlight as a
// normalized [0, 1] x position. Implementations fall back to 0.5 when
// no subject can be detected.
type Cropper interface {
	CropCenter(ctx context.Context, media Media, highlight Highlight) (float64, error)
}

// Renderer cuts and reframes one highlight into a vertical clip at
// outPath, and extracts still thumbnails from media.
type Renderer interface {
	Render(ctx context.Context, media Media, highlight Highlight, cropCenter float64, outPath string) error
	Thumbnail(ctx context.Context, media Media, outPath string) error
	HealthCheck(ctx context.Context) Health
}
