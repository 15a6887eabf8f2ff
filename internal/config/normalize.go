package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.Paths.DataDir = strings.TrimSpace(c.Paths.DataDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	c.Paths.Bind = strings.TrimSpace(c.Paths.Bind)
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.Bind == "" {
		c.Paths.Bind = defaultBind
	}
	dataDir, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return err
	}
	c.Paths.DataDir = dataDir
	logDir, err := expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	c.Analyzer.APIKey = strings.TrimSpace(c.Analyzer.APIKey)
	if c.Analyzer.APIKey == "" {
		c.Analyzer.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	c.Analyzer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Analyzer.BaseURL), "/")
	if c.Analyzer.BaseURL == "" {
		c.Analyzer.BaseURL = defaultAnalyzerBaseURL
	}
	c.Analyzer.Model = strings.TrimSpace(c.Analyzer.Model)
	if c.Analyzer.Model == "" {
		c.Analyzer.Model = defaultAnalyzerModel
	}
	if c.Analyzer.TimeoutSeconds <= 0 {
		c.Analyzer.TimeoutSeconds = defaultAnalyzerTimeout
	}
	if c.Analyzer.MaxClips <= 0 {
		c.Analyzer.MaxClips = defaultAnalyzerMaxClips
	}

	c.Transcriber.APIKey = strings.TrimSpace(c.Transcriber.APIKey)
	if c.Transcriber.APIKey == "" {
		c.Transcriber.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")
	if c.Transcriber.BaseURL == "" {
		c.Transcriber.BaseURL = defaultTranscriberBaseURL
	}
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	if c.Transcriber.ChunkSeconds <= 0 {
		c.Transcriber.ChunkSeconds = defaultTranscriberChunk
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}

	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Render.CropSampleInterval <= 0 {
		c.Render.CropSampleInterval = defaultCropSampleInterval
	}
	if c.Render.ThumbnailOffset < 0 {
		c.Render.ThumbnailOffset = defaultThumbnailOffset
	}

	if c.Workflow.MaxWorkers <= 0 {
		c.Workflow.MaxWorkers = defaultMaxWorkers
	}
	if c.Workflow.RetryAttempts < 0 {
		c.Workflow.RetryAttempts = defaultRetryAttempts
	}
	if c.Workflow.RetryBaseDelaySeconds <= 0 {
		c.Workflow.RetryBaseDelaySeconds = defaultRetryBaseDelaySeconds
	}
	if c.Workflow.JobRetentionHours <= 0 {
		c.Workflow.JobRetentionHours = defaultJobRetentionHours
	}
	if c.Workflow.UploadRetentionHours < 0 {
		c.Workflow.UploadRetentionHours = defaultUploadRetentionHours
	}
	if c.Workflow.JanitorIntervalMins <= 0 {
		c.Workflow.JanitorIntervalMins = defaultJanitorIntervalMins
	}
	if c.Workflow.MinFreeSpaceGiB < 0 {
		c.Workflow.MinFreeSpaceGiB = defaultMinFreeSpaceGiB
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
