package jobs

import "strings"

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusDownloading  Status = "downloading"
	StatusUploading    Status = "uploading"
	StatusTranscribing Status = "transcribing"
	StatusAnalyzing    Status = "analyzing"
	StatusRendering    Status = "rendering"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusUploading,
	StatusTranscribing,
	StatusAnalyzing,
	StatusRendering,
	StatusDone,
	StatusFailed,
}

// statusRank orders statuses along the pipeline. Acquisition statuses
// share a rank since a job acquires its media exactly one way.
var statusRank = map[Status]int{
	StatusQueued:       0,
	StatusDownloading:  1,
	StatusUploading:    1,
	StatusTranscribing: 2,
	StatusAnalyzing:    3,
	StatusRendering:    4,
	StatusDone:         5,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether a status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	switch s {
	case StatusDownloading, StatusUploading, StatusTranscribing, StatusAnalyzing, StatusRendering:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a job may move from one status to
// another. Any non-terminal status may fail; otherwise moves must go
// strictly forward, which permits skipping stages (a cached transcript
// jumps straight to analyzing) but never revisiting one.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
