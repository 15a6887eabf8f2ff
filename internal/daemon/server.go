package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/textutil"
	"clipper/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the HTTP API over an echo engine.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *jobs.Store
	catalog  *library.Catalog
	executor *pipeline.Executor
	echo     *echo.Echo
}

// NewServer wires the HTTP routes against the given dependencies.
func NewServer(cfg *config.Config, store *jobs.Store, catalog *library.Catalog, executor *pipeline.Executor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "http"),
		store:    store,
		catalog:  catalog,
		executor: executor,
		echo:     e,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.POST("/api/upload", s.handleUpload)
	s.echo.POST("/api/process", s.handleProcess)
	s.echo.GET("/api/jobs", s.handleListJobs)
	s.echo.GET("/api/jobs/:id", s.handleGetJob)
	s.echo.GET("/api/uploads", s.handleListUploads)
	s.echo.GET("/api/status", s.handleStatus)
	s.echo.GET("/health", s.handleHealth)
	s.echo.Static("/static", s.cfg.OutputDir())
}

// Start binds the configured address and begins serving in the
// background. Bind failures surface immediately.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Paths.Bind)
	if err != nil {
		return err
	}
	s.echo.Listener = listener

	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", logging.Error(err))
		}
	}()

	s.logger.Info("http server listening", logging.String("addr", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown incomplete", logging.Error(err))
	}
}

// Addr reports the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.echo.Listener == nil {
		return ""
	}
	return s.echo.Listener.Addr().String()
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "missing file field"})
	}

	original := textutil.SanitizeFileName(filepath.Base(header.Filename))
	if original == "" || original == "." {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid file name"})
	}

	// Stored names are random so one client's upload can never guess
	// or clobber another's.
	ext := filepath.Ext(original)
	if ext == "" {
		ext = ".mp4"
	}
	name := uuid.NewString() + ext

	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unreadable upload"})
	}
	defer src.Close()

	destPath := filepath.Join(s.cfg.UploadDir(), name)
	dst, err := os.Create(destPath)
	if err != nil {
		s.logger.Error("failed to store upload", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not store upload"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		s.logger.Error("failed to store upload", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not store upload"})
	}

	s.logger.Info("upload stored",
		logging.String("file", name),
		logging.String("original", original),
		logging.Int64("bytes", header.Size))
	return c.JSON(http.StatusOK, api.UploadResponse{
		Filename:     name,
		Path:         destPath,
		OriginalName: header.Filename,
	})
}

func (s *Server) handleProcess(c echo.Context) error {
	var req api.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
	}
	// The original frontend sends these as query parameters, not a
	// JSON body; accept both.
	req.Path = firstNonEmpty(req.Path, c.QueryParam("path"))
	req.GeminiAPIKey = firstNonEmpty(req.GeminiAPIKey, c.QueryParam("gemini_api_key"))
	req.OpenAIAPIKey = firstNonEmpty(req.OpenAIAPIKey, c.QueryParam("openai_api_key"))

	if strings.TrimSpace(req.Path) == "" {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "path is required"})
	}

	geminiKey := firstNonEmpty(req.GeminiAPIKey, s.cfg.Analyzer.APIKey)
	if geminiKey == "" && !s.cfg.Analyzer.Mock {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Gemini API Key is required"})
	}
	if firstNonEmpty(req.OpenAIAPIKey, s.cfg.Transcriber.APIKey) == "" {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "OpenAI API Key is required"})
	}

	job, err := s.executor.Submit(req.Path)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, api.ProcessResponse{JobID: job.ID})
}

func (s *Server) handleListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, api.FromJobs(s.store.List()))
}

func (s *Server) handleGetJob(c echo.Context) error {
	job, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, api.FromJob(job))
}

func (s *Server) handleListUploads(c echo.Context) error {
	ctx := c.Request().Context()
	uploads, err := s.catalog.ListUploads(ctx)
	if err != nil {
		s.logger.Error("failed to list uploads", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not list uploads"})
	}

	out := api.UploadListResponse{Uploads: make([]api.UploadView, 0, len(uploads))}
	for _, upload := range uploads {
		count, err := s.catalog.ClipCount(ctx, upload.ID)
		if err != nil {
			s.logger.Warn("failed to count clips",
				logging.String("upload_id", upload.ID),
				logging.Error(err))
		}
		out.Uploads = append(out.Uploads, api.FromUpload(upload, count))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleStatus(c echo.Context) error {
	summary := s.executor.Status(c.Request().Context())
	return c.JSON(http.StatusOK, api.FromStatus(os.Getpid(), summary))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
