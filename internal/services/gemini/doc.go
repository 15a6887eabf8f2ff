// Package gemini selects highlight segments from transcripts using an
// OpenAI-compatible chat completion endpoint.
//
// The client retries transient HTTP failures with exponential backoff
// and honours Retry-After hints. Model output is tolerant-parsed: code
// fences, surrounding prose, streaming-schema responses, and tool-call
// argument payloads are all accepted. A mock mode produces
// deterministic highlights so the pipeline can run without credentials.
package gemini
