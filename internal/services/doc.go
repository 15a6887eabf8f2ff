// Package services holds the cross-cutting helpers shared by the stage
// adapter implementations: the sentinel error taxonomy used to classify
// stage failures, Wrap for attaching stage/operation context to errors, and
// context annotations that carry job, upload, and stage identifiers into
// adapter calls and their logs.
//
// Stage adapters tag every returned error with one of the sentinels so the
// pipeline executor can decide between retrying (transient, timeout) and
// failing the job with the raw detail preserved for clients.
package services
