package subtitles

import (
	"strings"
	"testing"
)

func TestWrapForDisplayShortTextUntouched(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,000\nShort line"
	wrapped, count := WrapForDisplay(text, 20)
	if wrapped != text {
		t.Fatalf("expected text unchanged, got %q", wrapped)
	}
	if count != 0 {
		t.Fatalf("expected 0 wrapped cues, got %d", count)
	}
}

func TestWrapForDisplayWrapsLongLine(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,000\nthis is a rather long subtitle line"
	wrapped, count := WrapForDisplay(text, 20)
	if count != 1 {
		t.Fatalf("expected 1 wrapped cue, got %d", count)
	}
	lines := strings.Split(wrapped, "\n")
	for _, line := range lines[2:] {
		if len(line) > 26 { // wide fallback threshold for two-line fit
			t.Fatalf("line %q exceeds wrap width", line)
		}
	}
}

func TestWrapForDisplayLimitsToTwoLines(t *testing.T) {
	long := strings.Repeat("word ", 30)
	text := "1\n00:00:01,000 --> 00:00:02,000\n" + strings.TrimSpace(long)
	wrapped, _ := WrapForDisplay(text, 10)
	lines := strings.Split(wrapped, "\n")
	if got := len(lines) - 2; got > 2 {
		t.Fatalf("expected at most 2 text lines, got %d", got)
	}
}

func TestWrapForDisplayKeepsMalformedBlocks(t *testing.T) {
	text := "just two\nlines"
	wrapped, count := WrapForDisplay(text, 10)
	if wrapped != text || count != 0 {
		t.Fatalf("expected malformed block untouched, got %q (%d)", wrapped, count)
	}
}

func TestWrapForDisplayDisabled(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,000\nwhatever length this line has"
	wrapped, count := WrapForDisplay(text, 0)
	if wrapped != text || count != 0 {
		t.Fatalf("expected no-op when width is 0, got %q (%d)", wrapped, count)
	}
}
