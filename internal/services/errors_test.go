package services_test

import (
	"errors"
	"testing"

	"clipper/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("socket closed")
	err := services.Wrap(services.ErrTranscription, "transcribe", "chunk upload", "api rejected chunk", cause)

	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected error to match ErrTranscription, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be preserved, got %v", err)
	}
	want := "transcription error: transcribe: chunk upload: api rejected chunk: socket closed"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "download", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", services.Wrap(services.ErrTransient, "download", "fetch", "connection reset", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "transcribe", "chunk", "deadline", nil), true},
		{"analysis", services.Wrap(services.ErrAnalysis, "analyze", "completion", "quota exceeded", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "analyze", "", "api key missing", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserMessagePreservesDetail(t *testing.T) {
	err := services.Wrap(services.ErrAnalysis, "analyze", "completion", "quota exceeded for model", nil)
	got := services.UserMessage(err)
	if got != "analysis error: analyze: completion: quota exceeded for model" {
		t.Fatalf("unexpected user message: %q", got)
	}
	if services.UserMessage(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}
