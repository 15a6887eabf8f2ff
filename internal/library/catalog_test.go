package library_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"clipper/internal/library"
	"clipper/internal/testsupport"
)

func TestRegisterAndGetUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.UploadDir(), "abc123.mp4")
	upload, err := catalog.Register(ctx, library.NewUpload("my cool video.mp4", path, 2048))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if upload.ID == "" {
		t.Fatal("expected generated upload id")
	}
	if upload.Title != "My Cool Video" {
		t.Fatalf("unexpected title: %q", upload.Title)
	}
	if upload.SizeBytes != 2048 {
		t.Fatalf("unexpected size: %d", upload.SizeBytes)
	}
	if upload.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	got, err := catalog.GetUpload(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetUpload: %v", err)
	}
	if got.Path != path {
		t.Fatalf("unexpected path: %q", got.Path)
	}
	if got.HasTranscript() {
		t.Fatal("fresh upload should not have a transcript")
	}
}

func TestRegisterIsIdempotentPerPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.UploadDir(), "dup.mp4")
	first, err := catalog.Register(ctx, library.NewUpload("dup.mp4", path, 10))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	second, err := catalog.Register(ctx, library.NewUpload("dup.mp4", path, 10))
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing upload %s, got %s", first.ID, second.ID)
	}
}

func TestGetUploadMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)

	_, err := catalog.GetUpload(context.Background(), "nope")
	if !errors.Is(err, library.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
}

func TestFindByPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.UploadDir(), "clip-source.mov")
	registered := testsupport.RegisterUpload(t, catalog, "clip-source.mov", path)

	found, err := catalog.FindByPath(ctx, path)
	if err != nil {
		t.Fatalf("FindByPath: %v", err)
	}
	if found.ID != registered.ID {
		t.Fatalf("expected id %q, got %q", registered.ID, found.ID)
	}

	if _, err := catalog.FindByPath(ctx, "/tmp/unknown.mp4"); !errors.Is(err, library.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
}

func TestAttachTranscriptAndThumbnail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	upload := testsupport.RegisterUpload(t, catalog, "talk.mp4", filepath.Join(cfg.UploadDir(), "talk.mp4"))

	transcript := filepath.Join(cfg.UploadDir(), "talk.transcript.txt")
	if err := catalog.AttachTranscript(ctx, upload.ID, transcript); err != nil {
		t.Fatalf("AttachTranscript: %v", err)
	}
	if err := catalog.AttachThumbnail(ctx, upload.ID, filepath.Join(cfg.OutputDir(), "talk.jpg")); err != nil {
		t.Fatalf("AttachThumbnail: %v", err)
	}
	if err := catalog.SetDuration(ctx, upload.ID, 542.5); err != nil {
		t.Fatalf("SetDuration: %v", err)
	}

	got, err := catalog.GetUpload(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetUpload: %v", err)
	}
	if got.TranscriptPath != transcript {
		t.Fatalf("unexpected transcript path: %q", got.TranscriptPath)
	}
	if !got.HasTranscript() {
		t.Fatal("expected HasTranscript after attach")
	}
	if got.DurationSeconds != 542.5 {
		t.Fatalf("unexpected duration: %v", got.DurationSeconds)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatal("expected updated_at to advance")
	}

	if err := catalog.AttachTranscript(ctx, "missing", transcript); !errors.Is(err, library.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
}

func TestReplaceClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	upload := testsupport.RegisterUpload(t, catalog, "stream.mp4", filepath.Join(cfg.UploadDir(), "stream.mp4"))

	first := []library.Clip{
		{Title: "Opening rant", Score: 91, StartSeconds: 10, EndSeconds: 42, Path: "/out/clip_1.mp4", Excerpt: "you won't believe"},
		{Title: "Big reveal", Score: 88, StartSeconds: 300, EndSeconds: 355, Path: "/out/clip_2.mp4"},
	}
	if err := catalog.ReplaceClips(ctx, upload.ID, first); err != nil {
		t.Fatalf("ReplaceClips: %v", err)
	}

	clips, err := catalog.ClipsFor(ctx, upload.ID)
	if err != nil {
		t.Fatalf("ClipsFor: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	if clips[0].Position != 0 || clips[1].Position != 1 {
		t.Fatalf("unexpected positions: %d %d", clips[0].Position, clips[1].Position)
	}
	if clips[0].Title != "Opening rant" {
		t.Fatalf("unexpected order, first clip %q", clips[0].Title)
	}

	// Replacement swaps the whole set rather than appending.
	second := []library.Clip{
		{Title: "Only keeper", Score: 75, StartSeconds: 5, EndSeconds: 20, Path: "/out/clip_1.mp4"},
	}
	if err := catalog.ReplaceClips(ctx, upload.ID, second); err != nil {
		t.Fatalf("ReplaceClips again: %v", err)
	}
	clips, err = catalog.ClipsFor(ctx, upload.ID)
	if err != nil {
		t.Fatalf("ClipsFor: %v", err)
	}
	if len(clips) != 1 || clips[0].Title != "Only keeper" {
		t.Fatalf("unexpected clips after replacement: %+v", clips)
	}

	count, err := catalog.ClipCount(ctx, upload.ID)
	if err != nil {
		t.Fatalf("ClipCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("unexpected clip count: %d", count)
	}

	if err := catalog.ReplaceClips(ctx, "missing", second); !errors.Is(err, library.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
}

func TestReplaceClipsConcurrentLastWriterWins(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	upload := testsupport.RegisterUpload(t, catalog, "busy.mp4", filepath.Join(cfg.UploadDir(), "busy.mp4"))

	setA := []library.Clip{
		{Title: "A1", Score: 80, StartSeconds: 0, EndSeconds: 30, Path: "/out/a1.mp4"},
		{Title: "A2", Score: 70, StartSeconds: 40, EndSeconds: 70, Path: "/out/a2.mp4"},
	}
	setB := []library.Clip{
		{Title: "B1", Score: 95, StartSeconds: 5, EndSeconds: 25, Path: "/out/b1.mp4"},
		{Title: "B2", Score: 88, StartSeconds: 100, EndSeconds: 130, Path: "/out/b2.mp4"},
		{Title: "B3", Score: 61, StartSeconds: 200, EndSeconds: 230, Path: "/out/b3.mp4"},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = catalog.ReplaceClips(ctx, upload.ID, setA)
	}()
	go func() {
		defer wg.Done()
		errs[1] = catalog.ReplaceClips(ctx, upload.ID, setB)
	}()
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("ReplaceClips %d: %v", i, err)
		}
	}

	clips, err := catalog.ClipsFor(ctx, upload.ID)
	if err != nil {
		t.Fatalf("ClipsFor: %v", err)
	}
	switch len(clips) {
	case len(setA):
		if clips[0].Title != "A1" || clips[1].Title != "A2" {
			t.Fatalf("interleaved clip list: %+v", clips)
		}
	case len(setB):
		if clips[0].Title != "B1" || clips[1].Title != "B2" || clips[2].Title != "B3" {
			t.Fatalf("interleaved clip list: %+v", clips)
		}
	default:
		t.Fatalf("clip list is neither writer's set: %+v", clips)
	}
}

func TestDeleteUploadCascadesClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	upload := testsupport.RegisterUpload(t, catalog, "old.mp4", filepath.Join(cfg.UploadDir(), "old.mp4"))
	clips := []library.Clip{{Title: "Clip", StartSeconds: 0, EndSeconds: 10, Path: "/out/c.mp4"}}
	if err := catalog.ReplaceClips(ctx, upload.ID, clips); err != nil {
		t.Fatalf("ReplaceClips: %v", err)
	}

	if err := catalog.DeleteUpload(ctx, upload.ID); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
	if _, err := catalog.GetUpload(ctx, upload.ID); !errors.Is(err, library.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	remaining, err := catalog.ClipsFor(ctx, upload.ID)
	if err != nil {
		t.Fatalf("ClipsFor: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected clips removed with upload, got %d", len(remaining))
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	a := testsupport.RegisterUpload(t, catalog, "a.mp4", filepath.Join(cfg.UploadDir(), "a.mp4"))
	testsupport.RegisterUpload(t, catalog, "b.mp4", filepath.Join(cfg.UploadDir(), "b.mp4"))

	if err := catalog.AttachTranscript(ctx, a.ID, "/tmp/a.transcript.txt"); err != nil {
		t.Fatalf("AttachTranscript: %v", err)
	}
	if err := catalog.ReplaceClips(ctx, a.ID, []library.Clip{
		{Title: "One", StartSeconds: 0, EndSeconds: 5, Path: "/out/1.mp4"},
		{Title: "Two", StartSeconds: 6, EndSeconds: 11, Path: "/out/2.mp4"},
	}); err != nil {
		t.Fatalf("ReplaceClips: %v", err)
	}

	stats, err := catalog.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Uploads != 2 || stats.Clips != 2 || stats.Transcribed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestListUploadsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)

	testsupport.RegisterUpload(t, catalog, "first.mp4", filepath.Join(cfg.UploadDir(), "first.mp4"))
	second := testsupport.RegisterUpload(t, catalog, "second.mp4", filepath.Join(cfg.UploadDir(), "second.mp4"))

	uploads, err := catalog.ListUploads(context.Background())
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	if uploads[0].ID != second.ID {
		t.Fatalf("expected newest first, got %q", uploads[0].OriginalName)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my_stream-vod.2024.mp4", "My Stream Vod 2024"},
		{"podcast episode 12.mov", "Podcast Episode 12"},
		{"...", "Untitled Video"},
		{"", "Untitled Video"},
	}
	for _, tc := range cases {
		if got := library.DeriveTitle(tc.in); got != tc.want {
			t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
