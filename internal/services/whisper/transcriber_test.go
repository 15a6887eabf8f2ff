package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"clipper/internal/services"
	"clipper/internal/stage"
	"clipper/internal/testsupport"
)

func fakeExtract(t *testing.T) extractFunc {
	t.Helper()
	return func(ctx context.Context, ffmpegBinary, source string, startSec, durationSec float64, dest string) error {
		return os.WriteFile(dest, []byte("RIFFfake"), 0o644)
	}
}

func TestTranscribeChunksAndAssembles(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Fatalf("unexpected model %q", got)
		}
		calls++
		_ = json.NewEncoder(w).Encode(map[string]string{"text": fmt.Sprintf("chunk %d words", calls)})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTranscriberBaseURL(server.URL))
	transcriber := NewTranscriber(cfg, nil)
	transcriber.extract = fakeExtract(t)

	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	testsupport.WriteFile(t, mediaPath, 64)

	// 300 seconds at 120-second chunks yields three chunks.
	media := stage.Media{Path: mediaPath, DurationSeconds: 300}

	var mu sync.Mutex
	var percents []int
	transcript, err := transcriber.Transcribe(context.Background(), media, func(p int) {
		mu.Lock()
		percents = append(percents, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 chunk uploads, got %d", calls)
	}

	want := "[00:00-02:00] chunk 1 words\n[02:00-04:00] chunk 2 words\n[04:00-05:00] chunk 3 words\n"
	if transcript.Text != want {
		t.Fatalf("unexpected transcript:\n%q\nwant:\n%q", transcript.Text, want)
	}

	if transcript.Path != filepath.Join(dir, "video.transcript.txt") {
		t.Fatalf("unexpected transcript path: %q", transcript.Path)
	}
	cached, err := os.ReadFile(transcript.Path)
	if err != nil {
		t.Fatalf("read cached transcript: %v", err)
	}
	if string(cached) != want {
		t.Fatal("cached transcript does not match returned text")
	}

	if len(percents) == 0 || percents[0] != 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("expected progress from 0 to 100, got %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress regressed: %v", percents)
		}
	}
}

func TestTranscribeServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTranscriberBaseURL(server.URL))
	transcriber := NewTranscriber(cfg, nil)
	transcriber.extract = fakeExtract(t)

	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	testsupport.WriteFile(t, mediaPath, 64)

	_, err := transcriber.Transcribe(context.Background(), stage.Media{Path: mediaPath, DurationSeconds: 60}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !services.Retryable(err) {
		t.Fatalf("server errors should be retryable, got %v", err)
	}
}

func TestTranscribeClientErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unsupported audio"}}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTranscriberBaseURL(server.URL))
	transcriber := NewTranscriber(cfg, nil)
	transcriber.extract = fakeExtract(t)

	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	testsupport.WriteFile(t, mediaPath, 64)

	_, err := transcriber.Transcribe(context.Background(), stage.Media{Path: mediaPath, DurationSeconds: 60}, nil)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatalf("client errors must not be retryable: %v", err)
	}
}

func TestTranscribeSilentMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "   "})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTranscriberBaseURL(server.URL))
	transcriber := NewTranscriber(cfg, nil)
	transcriber.extract = fakeExtract(t)

	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "silent.mp4")
	testsupport.WriteFile(t, mediaPath, 64)

	_, err := transcriber.Transcribe(context.Background(), stage.Media{Path: mediaPath, DurationSeconds: 30}, nil)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription for silent media, got %v", err)
	}
	if !strings.Contains(err.Error(), "No speech detected") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestTranscribeMissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcriber.APIKey = ""
	transcriber := NewTranscriber(cfg, nil)
	transcriber.extract = fakeExtract(t)

	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")
	testsupport.WriteFile(t, mediaPath, 64)

	_, err := transcriber.Transcribe(context.Background(), stage.Media{Path: mediaPath, DurationSeconds: 30}, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	health := transcriber.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("expected unhealthy without API key")
	}
}

func TestTranscriptPathFor(t *testing.T) {
	if got := TranscriptPathFor("/data/uploads/abc.mp4"); got != "/data/uploads/abc.transcript.txt" {
		t.Fatalf("unexpected path: %q", got)
	}
	if got := TranscriptPathFor("/data/uploads/noext"); got != "/data/uploads/noext.transcript.txt" {
		t.Fatalf("unexpected path: %q", got)
	}
}
