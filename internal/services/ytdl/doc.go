// Package ytdl acquires source media for processing. Remote YouTube URLs
// are fetched with the kkdai/youtube client; plain paths are treated as
// server-side files and copied into the upload directory. Either way the
// result is a local file the rest of the pipeline can probe and cut.
package ytdl
