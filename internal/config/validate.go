package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalyzer(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.Bind); err != nil {
		return fmt.Errorf("paths.bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateAnalyzer() error {
	if c.Analyzer.BaseURL == "" {
		return errors.New("analyzer.base_url must be set")
	}
	if c.Analyzer.Model == "" {
		return errors.New("analyzer.model must be set")
	}
	if c.Analyzer.MaxClips < 1 {
		return errors.New("analyzer.max_clips must be at least 1")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if c.Transcriber.BaseURL == "" {
		return errors.New("transcriber.base_url must be set")
	}
	if c.Transcriber.Model == "" {
		return errors.New("transcriber.model must be set")
	}
	if c.Transcriber.ChunkSeconds < 10 {
		return errors.New("transcriber.chunk_seconds must be at least 10")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.FFmpegBinary == "" {
		return errors.New("render.ffmpeg_binary must be set")
	}
	if c.Render.FFprobeBinary == "" {
		return errors.New("render.ffprobe_binary must be set")
	}
	if c.Render.CropSampleInterval < 1 {
		return errors.New("render.crop_sample_interval must be at least 1 second")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxWorkers < 1 {
		return errors.New("workflow.max_workers must be at least 1")
	}
	if c.Workflow.MaxWorkers > 32 {
		return errors.New("workflow.max_workers must be 32 or fewer")
	}
	if c.Workflow.JobRetentionHours < 1 {
		return errors.New("workflow.job_retention_hours must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
