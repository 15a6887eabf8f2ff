// Package version exposes the daemon build version.
package version

// Version is the release identifier, overridden at build time via
// -ldflags "-X clipper/internal/version.Version=...".
var Version = "dev"
