package textutil

import "testing"

func TestSourceAttribution(t *testing.T) {
	cases := []struct {
		path string
		want string
		ok   bool
	}{
		{"/videos/dance_clip_source_Weibo.mp4", "Weibo", true},
		{"/videos/clip_source_Red_Note.mp4", "Red Note", true},
		{"clip_source_Douyin.mov", "Douyin", true},
		{"/videos/plain_clip.mp4", "", false},
		{"/videos/clip_source_.mp4", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := SourceAttribution(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("SourceAttribution(%q) = %q, %v; want %q, %v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/videos/dance_clip_source_Weibo.mp4", "dance clip"},
		{"/videos/morning_routine.mp4", "morning routine"},
		{"clip.mp4", "clip"},
		{"", "Untitled"},
		{"_source_Weibo.mp4", "Untitled"},
	}
	for _, tc := range cases {
		if got := DisplayTitle(tc.path); got != tc.want {
			t.Fatalf("DisplayTitle(%q) = %q; want %q", tc.path, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`a/b\c:d*e?f"g<h>i|j`); got != "a-b-c-d-efghij" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := SanitizeFileName("  plain  "); got != "plain" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	if got := SanitizeFileName("?<>|"); got != "" {
		t.Fatalf("expected empty result for all-dropped input, got %q", got)
	}
}
