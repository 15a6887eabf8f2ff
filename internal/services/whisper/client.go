package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Config captures the settings for the speech-to-text API. BaseURL is
// the OpenAI-compatible API root; the audio transcription path is
// appended to it.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client calls an OpenAI-compatible audio transcription endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a transcription API client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// TranscribeFile uploads one audio chunk and returns its transcript
// text. Server-side and network failures come back tagged transient so
// the pipeline may retry the stage; client errors are terminal.
func (c *Client) TranscribeFile(ctx context.Context, audioPath string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "check credentials", "Transcription API key missing", nil)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "open chunk", "", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "read chunk", "", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}

	endpoint := c.cfg.BaseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "build request", "", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "transcribe", "upload chunk", "Transcription API timed out", err)
		}
		return "", services.Wrap(services.ErrTransient, "transcribe", "upload chunk", "Transcription API unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transcribe", "read response", "", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return "", services.Wrap(services.ErrTransient, "transcribe", "upload chunk",
			fmt.Sprintf("Transcription API returned http %d", resp.StatusCode), errors.New(strings.TrimSpace(string(payload))))
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "upload chunk",
			fmt.Sprintf("Transcription API rejected chunk with http %d", resp.StatusCode), errors.New(strings.TrimSpace(string(payload))))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "decode response", "", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
