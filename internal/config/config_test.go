package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipper/internal/config"
)

func TestLoadDefaultsUseEnvKeysAndExpandPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "clipper")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.Bind != "127.0.0.1:8077" {
		t.Fatalf("unexpected bind: %q", cfg.Paths.Bind)
	}
	if cfg.Analyzer.APIKey != "gem-key" {
		t.Fatalf("expected analyzer key from env, got %q", cfg.Analyzer.APIKey)
	}
	if cfg.Transcriber.APIKey != "oai-key" {
		t.Fatalf("expected transcriber key from env, got %q", cfg.Transcriber.APIKey)
	}
	if cfg.Transcriber.ChunkSeconds != 120 {
		t.Fatalf("unexpected chunk seconds: %d", cfg.Transcriber.ChunkSeconds)
	}
	if cfg.Workflow.MaxWorkers != 2 {
		t.Fatalf("unexpected max workers: %d", cfg.Workflow.MaxWorkers)
	}
	if got, want := cfg.UploadDir(), filepath.Join(wantData, "uploads"); got != want {
		t.Fatalf("unexpected upload dir: got %q want %q", got, want)
	}
}

func TestLoadReadsTOMLFileAndNormalizes(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + dir + `/data"
bind = "0.0.0.0:9000"

[analyzer]
api_key = "  inline-key  "
base_url = "https://example.test/v1/"
max_clips = 5

[transcriber]
api_key = "whisper-key"

[workflow]
max_workers = 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Analyzer.APIKey != "inline-key" {
		t.Fatalf("expected trimmed inline key, got %q", cfg.Analyzer.APIKey)
	}
	if cfg.Analyzer.BaseURL != "https://example.test/v1" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Analyzer.BaseURL)
	}
	if cfg.Analyzer.MaxClips != 5 {
		t.Fatalf("unexpected max clips: %d", cfg.Analyzer.MaxClips)
	}
	if cfg.Workflow.MaxWorkers != 4 {
		t.Fatalf("unexpected max workers: %d", cfg.Workflow.MaxWorkers)
	}
	if cfg.Transcriber.Model != "whisper-1" {
		t.Fatalf("expected default transcriber model, got %q", cfg.Transcriber.Model)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "bad bind",
			mutate: func(c *config.Config) { c.Paths.Bind = "no-port" },
			want:   "paths.bind",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "yaml" },
			want:   "logging.format",
		},
		{
			name:   "too many workers",
			mutate: func(c *config.Config) { c.Workflow.MaxWorkers = 64 },
			want:   "workflow.max_workers",
		},
		{
			name:   "tiny chunks",
			mutate: func(c *config.Config) { c.Transcriber.ChunkSeconds = 1 },
			want:   "transcriber.chunk_seconds",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig), &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Workflow.MaxWorkers != 2 {
		t.Fatalf("unexpected sample max workers: %d", cfg.Workflow.MaxWorkers)
	}
}
