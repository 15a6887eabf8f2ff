// Package jobs tracks in-flight processing jobs and their lifecycle.
//
// Jobs are process local: a restart drops them, while the uploads and
// clips they produced survive in the library catalog. Status moves
// forward only (skipping stages is legal, revisiting them is not) and
// terminal jobs are immutable until the janitor evicts them.
package jobs
