package jobs

import "time"

// Job represents one pipeline execution turning an upload into clips.
type Job struct {
	ID        string
	UploadID  string
	Source    string
	Status    Status
	Progress  Progress
	Error     string
	Clips     []Clip
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clip is one rendered segment carried as a job's terminal result.
// Path is relative to the output directory so pollers can resolve it
// against the static file mount.
type Clip struct {
	Path         string
	Title        string
	Excerpt      string
	Score        int
	StartSeconds float64
	EndSeconds   float64
}

// IsTerminal reports whether the job has finished, successfully or not.
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

func (j Job) clone() Job {
	cp := j
	if j.Clips != nil {
		cp.Clips = make([]Clip, len(j.Clips))
		copy(cp.Clips, j.Clips)
	}
	return cp
}
