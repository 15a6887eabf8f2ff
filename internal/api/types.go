package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// UploadResponse acknowledges a stored upload.
type UploadResponse struct {
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
}

// ProcessRequest starts highlight processing for a source. The source is
// either a server-side path (typically from a prior upload) or a video
// URL. API keys may ride along for clients that do not configure the
// daemon; absent keys fall back to the daemon configuration.
type ProcessRequest struct {
	Path         string `json:"path"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`
}

// ProcessResponse carries the identifier used to poll job state.
type ProcessResponse struct {
	JobID string `json:"job_id"`
}

// JobResponse reports job state to pollers. Status carries the wire
// progress string while the job is in flight ("transcribing: 40%",
// "rendering: 3/10", "analyzing") and the plain status name otherwise.
type JobResponse struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Source    string     `json:"source,omitempty"`
	UploadID  string     `json:"upload_id,omitempty"`
	Clips     []ClipView `json:"clips,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// ClipView is one rendered clip in a done job's result. Path is
// relative to the output directory so clients fetch the file through
// the static mount; times are MM:SS strings.
type ClipView struct {
	Path           string `json:"path"`
	Filename       string `json:"filename"`
	Title          string `json:"title"`
	Score          int    `json:"score"`
	TranscriptText string `json:"transcript_text,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
}

// JobListResponse wraps the tracked jobs, newest first.
type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// UploadView describes a catalog upload for listings.
type UploadView struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	OriginalName    string  `json:"original_name"`
	Path            string  `json:"path"`
	SizeBytes       int64   `json:"size_bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	HasTranscript   bool    `json:"has_transcript"`
	ClipCount       int     `json:"clip_count"`
	Thumbnail       string  `json:"thumbnail,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// UploadListResponse wraps the registered uploads.
type UploadListResponse struct {
	Uploads []UploadView `json:"uploads"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// JobStats aggregates job counts by lifecycle phase.
type JobStats struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

// LibraryStats aggregates catalog counts.
type LibraryStats struct {
	Uploads     int `json:"uploads"`
	Clips       int `json:"clips"`
	Transcribed int `json:"transcribed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running     bool          `json:"running"`
	PID         int           `json:"pid"`
	Workers     int           `json:"workers"`
	QueueDepth  int           `json:"queue_depth"`
	Started     string        `json:"started,omitempty"`
	Jobs        JobStats      `json:"jobs"`
	Library     LibraryStats  `json:"library"`
	StageHealth []StageHealth `json:"stage_health"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
