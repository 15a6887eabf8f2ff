// Package logging wraps log/slog with the handlers and helpers used across
// the daemon: a compact console handler, a JSON handler for machine
// consumption, typed attribute constructors, standardized field keys, and
// context-derived loggers that carry job/upload/stage identifiers.
package logging
