package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	Bind    string `toml:"bind"`
}

// Analyzer contains configuration for the highlight analysis model.
type Analyzer struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxClips       int    `toml:"max_clips"`
	// Mock makes the analyzer return a fixed single highlight without
	// calling the API. Used for offline smoke testing.
	Mock bool `toml:"mock"`
}

// Transcriber contains configuration for the speech-to-text API.
type Transcriber struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	ChunkSeconds   int    `toml:"chunk_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains configuration for clip composition.
type Render struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// CropSampleInterval is the spacing in seconds between frames sampled
	// for crop detection within a segment.
	CropSampleInterval int `toml:"crop_sample_interval"`
	ThumbnailOffset    int `toml:"thumbnail_offset"`
}

// Workflow contains executor sizing, retry, and retention settings.
type Workflow struct {
	MaxWorkers            int `toml:"max_workers"`
	RetryAttempts         int `toml:"retry_attempts"`
	RetryBaseDelaySeconds int `toml:"retry_base_delay_seconds"`
	JobRetentionHours     int `toml:"job_retention_hours"`
	UploadRetentionHours  int `toml:"upload_retention_hours"`
	JanitorIntervalMins   int `toml:"janitor_interval_minutes"`
	MinFreeSpaceGiB       int `toml:"min_free_space_gib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the clipper daemon.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and the HTTP bind address
//   - Analyzer: highlight selection model connection settings
//   - Transcriber: speech-to-text API settings
//   - Render: ffmpeg/ffprobe invocation settings
//   - Workflow: worker pool size, retries, job/upload retention
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Analyzer    Analyzer    `toml:"analyzer"`
	Transcriber Transcriber `toml:"transcriber"`
	Render      Render      `toml:"render"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. API keys missing from
// the file fall back to GEMINI_API_KEY and OPENAI_API_KEY.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// UploadDir returns the directory holding source media files.
func (c *Config) UploadDir() string {
	return filepath.Join(c.Paths.DataDir, "uploads")
}

// OutputDir returns the directory holding rendered clips and thumbnails.
func (c *Config) OutputDir() string {
	return filepath.Join(c.Paths.DataDir, "output")
}

// EnsureDirectories creates the directories required for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.UploadDir(), c.OutputDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
