package main

import (
	"log/slog"

	"clipper/internal/config"
	"clipper/internal/daemon"
	"clipper/internal/jobs"
	"clipper/internal/library"
	"clipper/internal/pipeline"
	"clipper/internal/services/ffmpeg"
	"clipper/internal/services/gemini"
	"clipper/internal/services/whisper"
	"clipper/internal/services/ytdl"
)

// buildDaemon assembles the full daemon: catalog, job store, stage
// adapters, executor, and HTTP server.
func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	catalog, err := library.Open(cfg)
	if err != nil {
		return nil, err
	}

	store := jobs.NewStore()
	executor := pipeline.New(cfg, store, catalog, buildAdapters(cfg, logger), logger)
	server := daemon.NewServer(cfg, store, catalog, executor, logger)

	d, err := daemon.New(cfg, catalog, executor, server, logger)
	if err != nil {
		catalog.Close()
		return nil, err
	}
	return d, nil
}

func buildAdapters(cfg *config.Config, logger *slog.Logger) pipeline.Adapters {
	renderer := ffmpeg.NewRenderer(cfg, logger)
	return pipeline.Adapters{
		Downloader:  ytdl.NewDownloader(logger),
		Transcriber: whisper.NewTranscriber(cfg, logger),
		Analyzer:    gemini.NewAnalyzer(cfg, logger),
		Prober:      renderer,
		Cropper:     renderer,
		Renderer:    renderer,
	}
}
