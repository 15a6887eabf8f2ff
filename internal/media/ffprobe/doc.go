// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// It carries no clipper-specific dependencies and exposes only what the
// pipeline needs: container duration and size, audio stream presence,
// and the primary video stream's dimensions for crop math.
package ffprobe
