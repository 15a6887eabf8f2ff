package ytdl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	youtube "github.com/kkdai/youtube/v2"

	"clipper/internal/services"
	"clipper/internal/testsupport"
)

func TestIsRemote(t *testing.T) {
	cases := []struct {
		source string
		want   bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"http://youtu.be/abc123", true},
		{"  https://example.com/v.mp4  ", true},
		{"/data/uploads/video.mp4", false},
		{"video.mp4", false},
		{"ftp://example.com/v.mp4", false},
		{"https://", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRemote(tc.source); got != tc.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tc.source, got, tc.want)
		}
	}
}

func TestAcquireCopiesLocalFile(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	source := filepath.Join(srcDir, "my_epic stream.mp4")
	testsupport.WriteFile(t, source, 200*1024)

	var percents []int
	d := NewDownloader(nil)
	media, err := d.Acquire(context.Background(), source, destDir, func(pct int) {
		percents = append(percents, pct)
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if filepath.Dir(media.Path) != destDir {
		t.Fatalf("media not placed in destDir: %s", media.Path)
	}
	if filepath.Ext(media.Path) != ".mp4" {
		t.Fatalf("extension not preserved: %s", media.Path)
	}
	if media.Title != "My Epic Stream" {
		t.Fatalf("unexpected title %q", media.Title)
	}
	if media.SizeBytes != 200*1024 {
		t.Fatalf("unexpected size %d", media.SizeBytes)
	}

	srcData, err := os.ReadFile(source)
	if err != nil {
		t.Fatal(err)
	}
	dstData, err := os.ReadFile(media.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(srcData, dstData) {
		t.Fatal("copied content differs from source")
	}

	if len(percents) == 0 || percents[0] != 0 {
		t.Fatalf("expected initial progress of 0, got %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Fatalf("progress regressed: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("expected final progress of 100, got %v", percents)
	}
}

func TestAcquireUsesFileAlreadyInDestDir(t *testing.T) {
	destDir := t.TempDir()
	source := filepath.Join(destDir, "uploaded.mp4")
	testsupport.WriteFile(t, source, 4096)

	var percents []int
	d := NewDownloader(nil)
	media, err := d.Acquire(context.Background(), source, destDir, func(pct int) {
		percents = append(percents, pct)
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if media.Path != source {
		t.Fatalf("expected in-place path %s, got %s", source, media.Path)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no duplicate copy, found %d entries", len(entries))
	}
	if len(percents) != 1 || percents[0] != 100 {
		t.Fatalf("expected single 100%% report, got %v", percents)
	}
}

func TestAcquireMissingLocalFile(t *testing.T) {
	d := NewDownloader(nil)
	_, err := d.Acquire(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), t.TempDir(), nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("missing file must not be retryable")
	}
}

func TestCopyWithProgressCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := bytes.NewReader(make([]byte, 1024))
	_, err := copyWithProgress(ctx, &bytes.Buffer{}, src, 1024, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPickFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 1, MimeType: "video/webm; codecs=\"vp9\"", Bitrate: 900_000, AudioChannels: 2},
		{ItagNo: 2, MimeType: "video/mp4; codecs=\"avc1\"", Bitrate: 500_000, AudioChannels: 2},
		{ItagNo: 3, MimeType: "video/mp4; codecs=\"avc1\"", Bitrate: 700_000, AudioChannels: 2},
		{ItagNo: 4, MimeType: "video/mp4; codecs=\"avc1\"", Bitrate: 2_000_000, AudioChannels: 0},
	}

	got, err := pickFormat(formats)
	if err != nil {
		t.Fatalf("pickFormat: %v", err)
	}
	if got.ItagNo != 3 {
		t.Fatalf("expected itag 3 (best muxed mp4), got %d", got.ItagNo)
	}
}

func TestPickFormatNoMuxed(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 4, MimeType: "video/mp4", Bitrate: 2_000_000, AudioChannels: 0},
	}
	if _, err := pickFormat(formats); err == nil {
		t.Fatal("expected error when no format carries audio")
	}
}
