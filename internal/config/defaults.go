package config

import "os"

const (
	defaultDataDir               = "~/.local/share/clipper"
	defaultLogDir                = "~/.local/share/clipper/logs"
	defaultBind                  = "127.0.0.1:8077"
	defaultAnalyzerBaseURL       = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultAnalyzerModel         = "gemini-3-flash-preview"
	defaultAnalyzerTimeout       = 120
	defaultAnalyzerMaxClips      = 25
	defaultTranscriberBaseURL    = "https://api.openai.com/v1"
	defaultTranscriberModel      = "whisper-1"
	defaultTranscriberChunk      = 120
	defaultTranscriberTimeout    = 300
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultCropSampleInterval    = 2
	defaultThumbnailOffset       = 3
	defaultMaxWorkers            = 2
	defaultRetryAttempts         = 3
	defaultRetryBaseDelaySeconds = 2
	defaultJobRetentionHours     = 24
	defaultUploadRetentionHours  = 0 // disabled: uploads are kept until removed manually
	defaultJanitorIntervalMins   = 15
	defaultMinFreeSpaceGiB       = 2
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			Bind:    defaultBind,
		},
		Analyzer: Analyzer{
			BaseURL:        defaultAnalyzerBaseURL,
			Model:          defaultAnalyzerModel,
			TimeoutSeconds: defaultAnalyzerTimeout,
			MaxClips:       defaultAnalyzerMaxClips,
		},
		Transcriber: Transcriber{
			BaseURL:        defaultTranscriberBaseURL,
			Model:          defaultTranscriberModel,
			ChunkSeconds:   defaultTranscriberChunk,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Render: Render{
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			CropSampleInterval: defaultCropSampleInterval,
			ThumbnailOffset:    defaultThumbnailOffset,
		},
		Workflow: Workflow{
			MaxWorkers:            defaultMaxWorkers,
			RetryAttempts:         defaultRetryAttempts,
			RetryBaseDelaySeconds: defaultRetryBaseDelaySeconds,
			JobRetentionHours:     defaultJobRetentionHours,
			UploadRetentionHours:  defaultUploadRetentionHours,
			JanitorIntervalMins:   defaultJanitorIntervalMins,
			MinFreeSpaceGiB:       defaultMinFreeSpaceGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// CreateSample writes the annotated starter configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(SampleConfig), 0o644)
}

// SampleConfig is the annotated starter configuration written by
// "clipper config init".
const SampleConfig = `# clipper configuration
#
# Values shown are the defaults. API keys may also come from the
# GEMINI_API_KEY and OPENAI_API_KEY environment variables (or a .env file
# in the working directory).

[paths]
data_dir = "~/.local/share/clipper"
log_dir = "~/.local/share/clipper/logs"
bind = "127.0.0.1:8077"

[analyzer]
# api_key = ""
model = "gemini-3-flash-preview"
max_clips = 25

[transcriber]
# api_key = ""
model = "whisper-1"
chunk_seconds = 120

[render]
ffmpeg_binary = "ffmpeg"
ffprobe_binary = "ffprobe"

[workflow]
max_workers = 2
retry_attempts = 3
job_retention_hours = 24

[logging]
format = "console"
level = "info"
`
