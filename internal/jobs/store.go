package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a job lookup misses. Evicted jobs
	// are indistinguishable from jobs that never existed.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition is returned when a status move would go
	// backward or revisit a stage.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTerminal is returned when mutating a finished job.
	ErrTerminal = errors.New("job already terminal")
)

// Store tracks jobs in memory. All reads return copies so callers never
// share mutable state with the executor.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore returns an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Create registers a new queued job for an upload. Source records what
// the client submitted (a URL or a server-side path) for display.
func (s *Store) Create(uploadID, source string) Job {
	now := time.Now().UTC()
	job := &Job{
		ID:        "job_" + uuid.NewString(),
		UploadID:  uploadID,
		Source:    source,
		Status:    StatusQueued,
		Progress:  Indeterminate(StatusQueued),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return job.clone()
}

// Get returns a copy of the job, or ErrNotFound.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job.clone(), nil
}

// List returns copies of all tracked jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.clone())
	}
	sortJobsNewestFirst(out)
	return out
}

// Transition moves a job to a new status and resets its progress to the
// stage's indeterminate marker. Moves must go strictly forward.
func (s *Store) Transition(id string, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
	}
	if !CanTransition(job.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	job.Status = to
	job.Progress = Indeterminate(to)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// SetProgress records a progress snapshot for the job's current stage.
// Within a stage progress is monotonic: a snapshot behind the recorded
// one is dropped rather than overwriting newer state, which keeps
// concurrent stage callbacks from rewinding what pollers see.
func (s *Store) SetProgress(id string, progress Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
	}
	if progress.Stage != job.Status {
		return fmt.Errorf("%w: progress for %s while job is %s", ErrInvalidTransition, progress.Stage, job.Status)
	}
	if progress.behind(job.Progress) {
		return nil
	}
	job.Progress = progress
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachUpload links a job to its catalog upload. Jobs submitted with a
// URL get their upload record only after acquisition finishes.
func (s *Store) AttachUpload(id, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
	}
	job.UploadID = uploadID
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete marks the job done and records the rendered clips with
// their metadata.
func (s *Store) Complete(id string, clips []Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !CanTransition(job.Status, StatusDone) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, StatusDone)
	}
	job.Status = StatusDone
	job.Progress = Indeterminate(StatusDone)
	job.Clips = append([]Clip(nil), clips...)
	job.Error = ""
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the job failed with a user-facing message.
func (s *Store) Fail(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, job.Status)
	}
	job.Status = StatusFailed
	job.Progress = Indeterminate(StatusFailed)
	job.Error = message
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Stats summarizes job counts for the status endpoint.
type Stats struct {
	Total      int
	Queued     int
	Processing int
	Done       int
	Failed     int
}

// Stats returns aggregate counts across all tracked jobs.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	stats.Total = len(s.jobs)
	for _, job := range s.jobs {
		switch {
		case job.Status == StatusQueued:
			stats.Queued++
		case job.Status == StatusDone:
			stats.Done++
		case job.Status == StatusFailed:
			stats.Failed++
		case job.Status.IsProcessing():
			stats.Processing++
		}
	}
	return stats
}

// EvictTerminalBefore removes terminal jobs last updated before the
// cutoff and reports how many were dropped.
func (s *Store) EvictTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, job := range s.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

func sortJobsNewestFirst(jobs []Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}
