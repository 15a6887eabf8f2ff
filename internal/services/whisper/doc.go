// Package whisper turns media audio into timed transcripts via an
// OpenAI-compatible transcription endpoint.
//
// Audio is extracted with ffmpeg in fixed-length mono chunks, each
// chunk is uploaded separately, and the results are assembled into
// "[MM:SS-MM:SS] text" lines. The finished transcript is cached next to
// the media file so later runs skip this stage entirely.
package whisper
