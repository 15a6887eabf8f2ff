// Package library persists uploaded videos and their rendered clips in
// SQLite.
//
// The Catalog is the durable half of the system: uploads survive daemon
// restarts along with their transcripts, thumbnails, and clip rows, while
// in-flight job state stays process local. Clip rows are replaced
// wholesale inside a transaction so readers never observe a partial
// highlight set.
package library
