package ffmpeg

import (
	"strings"
	"testing"

	"clipper/internal/stage"
)

func TestParseCropCenters(t *testing.T) {
	output := `
[Parsed_cropdetect_0 @ 0x1] x1:0 x2:1919 y1:0 y2:1079 w:1920 h:1072 x:0 y:4 pts:1 t:0.04 crop=960:1072:480:4
[Parsed_cropdetect_0 @ 0x1] crop=960:1072:960:4
[Parsed_cropdetect_0 @ 0x1] crop=0:1072:480:4
[Parsed_cropdetect_0 @ 0x1] crop=1920:1072:480:4
frame=  100 fps=0.0
`
	centers := parseCropCenters(output, 1920)
	// The zero-width line and the line exceeding the frame are dropped.
	if len(centers) != 2 {
		t.Fatalf("expected 2 centers, got %d: %v", len(centers), centers)
	}
	if centers[0] != 0.5 {
		t.Fatalf("unexpected first center: %v", centers[0])
	}
	if centers[1] != 0.75 {
		t.Fatalf("unexpected second center: %v", centers[1])
	}
}

func TestParseCropCentersNoFrameWidth(t *testing.T) {
	if centers := parseCropCenters("crop=100:100:0:0", 0); centers != nil {
		t.Fatalf("expected nil centers, got %v", centers)
	}
}

func TestMedianCenter(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{nil, 0.5},
		{[]float64{0.3}, 0.3},
		{[]float64{0.2, 0.8, 0.4}, 0.4},
		{[]float64{0.2, 0.4}, 0.3},
	}
	for _, tc := range cases {
		if got := medianCenter(tc.in); got != tc.want {
			t.Fatalf("medianCenter(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRenderArgs(t *testing.T) {
	highlight := stage.Highlight{StartSeconds: 30, EndSeconds: 75.5}
	args := renderArgs("/in/src.mp4", highlight, 0.25, "/out/clip_1.mp4")

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 30.000") {
		t.Fatalf("missing start offset in %q", joined)
	}
	if !strings.Contains(joined, "-to 75.500") {
		t.Fatalf("missing end offset in %q", joined)
	}
	if !strings.Contains(joined, "0.2500*iw") {
		t.Fatalf("crop center not applied in %q", joined)
	}
	if !strings.Contains(joined, "scale=1080:1920") {
		t.Fatalf("vertical scale missing in %q", joined)
	}
	if args[len(args)-1] != "/out/clip_1.mp4" {
		t.Fatalf("output path must be last arg, got %q", args[len(args)-1])
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(-1); got != "0.000" {
		t.Fatalf("negative seconds should clamp, got %q", got)
	}
	if got := formatSeconds(12.3456); got != "12.346" {
		t.Fatalf("unexpected rounding: %q", got)
	}
}
