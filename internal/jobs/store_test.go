package jobs_test

import (
	"errors"
	"testing"
	"time"

	"clipper/internal/jobs"
)

func TestCreateStartsQueued(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("upload-1", "/data/uploads/abc.mp4")

	if job.ID == "" {
		t.Fatal("expected generated job id")
	}
	if job.Status != jobs.StatusQueued {
		t.Fatalf("unexpected status: %s", job.Status)
	}
	if got := job.Progress.String(); got != "queued" {
		t.Fatalf("unexpected progress string: %q", got)
	}

	fetched, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.UploadID != "upload-1" {
		t.Fatalf("unexpected upload id: %q", fetched.UploadID)
	}
}

func TestGetMissing(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Get("job_nope"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionForwardOnly(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("u", "src")

	if err := store.Transition(job.ID, jobs.StatusUploading); err != nil {
		t.Fatalf("queued -> uploading: %v", err)
	}
	if err := store.Transition(job.ID, jobs.StatusTranscribing); err != nil {
		t.Fatalf("uploading -> transcribing: %v", err)
	}

	// Going back to an earlier stage is rejected.
	err := store.Transition(job.ID, jobs.StatusUploading)
	if !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Sibling acquisition statuses share a rank and cannot follow each other.
	other := store.Create("u2", "src2")
	if err := store.Transition(other.ID, jobs.StatusDownloading); err != nil {
		t.Fatalf("queued -> downloading: %v", err)
	}
	if err := store.Transition(other.ID, jobs.StatusUploading); !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for downloading -> uploading, got %v", err)
	}
}

func TestTransitionSkipsStages(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("u", "src")

	// Cached media plus cached transcript jumps straight to analysis.
	if err := store.Transition(job.ID, jobs.StatusAnalyzing); err != nil {
		t.Fatalf("queued -> analyzing: %v", err)
	}
	if err := store.Transition(job.ID, jobs.StatusRendering); err != nil {
		t.Fatalf("analyzing -> rendering: %v", err)
	}
}

func TestTerminalJobsAreImmutable(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("u", "src")

	clip := jobs.Clip{Path: "clip_1.mp4", Title: "Big Moment", Score: 88, StartSeconds: 10, EndSeconds: 40}
	if err := store.Complete(job.ID, []jobs.Clip{clip}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if err := store.Transition(job.ID, jobs.StatusRendering); err == nil {
		t.Fatal("expected error transitioning a done job")
	}
	if err := store.Fail(job.ID, "boom"); !errors.Is(err, jobs.ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
	if err := store.SetProgress(job.ID, jobs.Percentage(jobs.StatusDone, 50)); !errors.Is(err, jobs.ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != jobs.StatusDone {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if len(got.Clips) != 1 || got.Clips[0] != clip {
		t.Fatalf("unexpected clips: %v", got.Clips)
	}
}

func TestFailFromAnyNonTerminalStatus(t *testing.T) {
	store := jobs.NewStore()
	for _, status := range []jobs.Status{jobs.StatusQueued, jobs.StatusTranscribing, jobs.StatusRendering} {
		job := store.Create("u", "src")
		if status != jobs.StatusQueued {
			if err := store.Transition(job.ID, status); err != nil {
				t.Fatalf("Transition to %s: %v", status, err)
			}
		}
		if err := store.Fail(job.ID, "analyzer rejected transcript"); err != nil {
			t.Fatalf("Fail from %s: %v", status, err)
		}
		got, err := store.Get(job.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != jobs.StatusFailed {
			t.Fatalf("unexpected status: %s", got.Status)
		}
		if got.Error != "analyzer rejected transcript" {
			t.Fatalf("unexpected error message: %q", got.Error)
		}
	}
}

func TestProgressMonotonicWithinStage(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("u", "src")

	if err := store.Transition(job.ID, jobs.StatusTranscribing); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := store.SetProgress(job.ID, jobs.Percentage(jobs.StatusTranscribing, 60)); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	// A late-arriving older snapshot is dropped silently.
	if err := store.SetProgress(job.ID, jobs.Percentage(jobs.StatusTranscribing, 40)); err != nil {
		t.Fatalf("SetProgress stale: %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s := got.Progress.String(); s != "transcribing: 60%" {
		t.Fatalf("unexpected progress: %q", s)
	}
}

func TestProgressStageMustMatchStatus(t *testing.T) {
	store := jobs.NewStore()
	job := store.Create("u", "src")

	if err := store.Transition(job.ID, jobs.StatusAnalyzing); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	err := store.SetProgress(job.ID, jobs.Percentage(jobs.StatusTranscribing, 10))
	if !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestProgressWireFormat(t *testing.T) {
	cases := []struct {
		progress jobs.Progress
		want     string
	}{
		{jobs.Percentage(jobs.StatusUploading, 42), "uploading: 42%"},
		{jobs.Percentage(jobs.StatusDownloading, 0), "downloading: 0%"},
		{jobs.Percentage(jobs.StatusTranscribing, 100), "transcribing: 100%"},
		{jobs.Fraction(jobs.StatusRendering, 3, 10), "rendering: 3/10"},
		{jobs.Fraction(jobs.StatusRendering, 0, 7), "rendering: 0/7"},
		{jobs.Indeterminate(jobs.StatusAnalyzing), "analyzing"},
		{jobs.Indeterminate(jobs.StatusQueued), "queued"},
		{jobs.Percentage(jobs.StatusUploading, 150), "uploading: 100%"},
		{jobs.Percentage(jobs.StatusUploading, -3), "uploading: 0%"},
	}
	for _, tc := range cases {
		if got := tc.progress.String(); got != tc.want {
			t.Fatalf("Progress.String() = %q, want %q", got, tc.want)
		}
	}
}

func TestStatsAndEviction(t *testing.T) {
	store := jobs.NewStore()

	done := store.Create("u1", "a")
	if err := store.Complete(done.ID, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	failed := store.Create("u2", "b")
	if err := store.Fail(failed.ID, "x"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	running := store.Create("u3", "c")
	if err := store.Transition(running.ID, jobs.StatusRendering); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	store.Create("u4", "d")

	stats := store.Stats()
	if stats.Total != 4 || stats.Queued != 1 || stats.Processing != 1 || stats.Done != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Only terminal jobs older than the cutoff go away.
	evicted := store.EvictTerminalBefore(time.Now().UTC().Add(time.Minute))
	if evicted != 2 {
		t.Fatalf("expected 2 evicted, got %d", evicted)
	}
	if _, err := store.Get(done.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected done job evicted, got %v", err)
	}
	if _, err := store.Get(running.ID); err != nil {
		t.Fatalf("running job should survive eviction: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := jobs.NewStore()
	store.Create("u1", "a")
	store.Create("u2", "b")

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected newest job first")
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := jobs.ParseStatus(" Rendering "); !ok || s != jobs.StatusRendering {
		t.Fatalf("ParseStatus rendering: %v %v", s, ok)
	}
	if _, ok := jobs.ParseStatus("exploded"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
