// Package pipeline runs highlight jobs end to end: acquire the source,
// transcribe it, pick highlight segments, and render vertical clips.
// The Executor owns a bounded worker pool; each worker drives one job
// through the stage adapters, publishing status and progress through the
// job store and recording artifacts in the library catalog. A background
// janitor evicts finished jobs and sweeps orphaned upload files.
package pipeline
