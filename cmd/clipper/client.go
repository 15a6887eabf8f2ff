package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/api"
)

const clientTimeout = 30 * time.Second

// client is a thin wrapper over the daemon HTTP API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(addr string) *client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &client{
		baseURL: base,
		http:    &http.Client{Timeout: clientTimeout},
	}
}

func (c *client) status(ctx context.Context) (api.DaemonStatus, error) {
	var out api.DaemonStatus
	err := c.getJSON(ctx, "/api/status", &out)
	return out, err
}

func (c *client) jobs(ctx context.Context) (api.JobListResponse, error) {
	var out api.JobListResponse
	err := c.getJSON(ctx, "/api/jobs", &out)
	return out, err
}

func (c *client) job(ctx context.Context, id string) (api.JobResponse, error) {
	var out api.JobResponse
	err := c.getJSON(ctx, "/api/jobs/"+id, &out)
	return out, err
}

func (c *client) uploads(ctx context.Context) (api.UploadListResponse, error) {
	var out api.UploadListResponse
	err := c.getJSON(ctx, "/api/uploads", &out)
	return out, err
}

func (c *client) process(ctx context.Context, req api.ProcessRequest) (api.ProcessResponse, error) {
	var out api.ProcessResponse
	err := c.postJSON(ctx, "/api/process", req, &out)
	return out, err
}

func (c *client) upload(ctx context.Context, filePath string) (api.UploadResponse, error) {
	var out api.UploadResponse

	file, err := os.Open(filePath)
	if err != nil {
		return out, err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return out, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return out, err
	}
	if err := writer.Close(); err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	err = c.do(req, &out)
	return out, err
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running at %s? %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
