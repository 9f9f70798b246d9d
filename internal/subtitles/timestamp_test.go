package subtitles

import "testing"

func TestRepairTokenShapes(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{"canonical passes through", "00:01:02,500", "00:01:02,500"},
		{"three digit hour", "012:34:56,789", "12:34:56,789"},
		{"leading zeros everywhere", "0:1:2,5", "00:01:02,500"},
		{"short millis padded right", "00:01:05,80", "00:01:05,800"},
		{"single digit millis", "00:01:02,5", "00:01:02,500"},
		{"overlong millis truncated", "00:00:01,8000", "00:00:01,800"},
		{"truncation never rounds", "00:00:05,12345", "00:00:05,123"},
		{"dot separator", "00:01:02.500", "00:01:02,500"},
		{"empty millis after comma", "00:01:02,", "00:01:02,000"},
		{"frame annotated", "00:00:01:05,200", "00:00:01,400"},
		{"frame annotated no extra", "00:00:03:10,000", "00:00:03,400"},
		{"bare frame time", "00:01:02", "00:00:01,080"},
		{"frame carry into minutes", "00:00:59:25,990", "00:01:00,990"},
		{"missing hour with comma", "01:02,500", "00:01:02,500"},
		{"compact millis third field", "00:03:500", "00:00:03,500"},
		{"compact millis with real minutes", "12:34:500", "00:12:34,500"},
		{"colon instead of millis comma", "00:01:02:500", "00:01:02,500"},
		{"two field millis", "03:500", "00:00:03,500"},
		{"two fields plain", "03:50", "00:03:50,000"},
		{"out of range clamped", "30:75:61,999", "23:59:59,999"},
		{"whitespace tolerated", "  00:00:01,000 ", "00:00:01,000"},
		{"garbage falls back to zero", "not a time", "00:00:00,000"},
		{"empty falls back to zero", "", "00:00:00,000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := repairToken(tc.token).String()
			if got != tc.want {
				t.Fatalf("repairToken(%q) = %q, want %q", tc.token, got, tc.want)
			}
		})
	}
}

func TestRepairTokenIdempotent(t *testing.T) {
	tokens := []string{
		"00:03:500", "0:1:2,5", "00:00:01:05,200", "012:34:56,789",
		"00:01:02.500", "garbage", "03:500", "00:01:02,",
	}
	for _, token := range tokens {
		once := repairToken(token).String()
		twice := repairToken(once).String()
		if once != twice {
			t.Fatalf("repairToken not idempotent for %q: %q then %q", token, once, twice)
		}
	}
}

func TestRepairTimingLine(t *testing.T) {
	got := repairTimingLine("0:1:2,5   -->  0:1:5,80")
	want := "00:01:02,500 --> 00:01:05,800"
	if got != want {
		t.Fatalf("repairTimingLine = %q, want %q", got, want)
	}
}

func TestRepairTimingLineWithoutArrow(t *testing.T) {
	line := "no arrow here"
	if got := repairTimingLine(line); got != line {
		t.Fatalf("expected line without arrow unchanged, got %q", got)
	}
}

func TestTimestampClamped(t *testing.T) {
	clamped := Timestamp{Hours: 30, Minutes: 75, Seconds: 61, Millis: 4000}.clamped()
	want := Timestamp{Hours: 23, Minutes: 59, Seconds: 59, Millis: 999}
	if clamped != want {
		t.Fatalf("clamped = %+v, want %+v", clamped, want)
	}
}
