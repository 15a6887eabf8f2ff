package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my clip: take 2.mp4", "my clip- take 2.mp4"},
		{`a/b\c*d.mp4`, "a-b-c-d.mp4"},
		{`what?.mp4`, "what.mp4"},
		{"  padded.mp4  ", "padded.mp4"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Big Win! #1", "big_win___1"},
		{"already-safe_token", "already-safe_token"},
		{"___", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
