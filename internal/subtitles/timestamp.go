package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Timestamp is one side of an SRT timing line with millisecond resolution.
// The zero value renders as 00:00:00,000.
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
	Millis  int
}

// String renders the canonical SRT form: two-digit hours, minutes and
// seconds, comma, three-digit milliseconds.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", t.Hours, t.Minutes, t.Seconds, t.Millis)
}

// millis returns the total offset in milliseconds.
func (t Timestamp) millis() int {
	return ((t.Hours*60+t.Minutes)*60+t.Seconds)*1000 + t.Millis
}

// clamped forces every component into its valid range. Out-of-range input is
// repaired by clamping rather than rejected; the lossy cut is deliberate so a
// malformed cue still renders at a defensible time.
func (t Timestamp) clamped() Timestamp {
	return Timestamp{
		Hours:   clampInt(t.Hours, 0, 23),
		Minutes: clampInt(t.Minutes, 0, 59),
		Seconds: clampInt(t.Seconds, 0, 59),
		Millis:  clampInt(t.Millis, 0, 999),
	}
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// framesPerSecond is assumed for frame-annotated timestamps (HH:MM:SS:FF).
// The source material carries no frame rate, so 25 fps is a fixed
// approximation; each frame contributes 40 ms.
const framesPerSecond = 25

// Token shapes recognized by repairToken, tried in order. Earlier patterns
// claim the more specific shapes so the general clock pattern never sees
// frame-annotated or colon-millisecond tokens.
var (
	// HH:MM:SS:FF,mmm - frame number between seconds and milliseconds.
	frameTokenPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2}):(\d{1,2})[,.](\d+)$`)
	// HH:MM:SS:mmm - colon where the millisecond comma belongs.
	colonMillisPattern = regexp.MustCompile(`^(\d{1,3}):(\d{1,2}):(\d{1,2}):(\d{3,})$`)
	// H:M:S,ms with any field width, comma or dot separator, 0+ ms digits.
	clockTokenPattern = regexp.MustCompile(`^(\d{1,3}):(\d{1,3}):(\d{1,3})[,.](\d*)$`)
	// MM:SS:mmm - the trailing three-digit field is milliseconds that lost
	// their comma; the hour field is absent.
	compactMillisPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{3})$`)
	// MM:SS:FF - bare frame-annotated time without milliseconds.
	bareFramePattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})$`)
	// MM:SS,ms - two time fields with a millisecond separator.
	shortClockPattern = regexp.MustCompile(`^(\d{1,3}):(\d{1,3})[,.](\d*)$`)
	// MM:SSS - two fields where the second is comma-less milliseconds.
	twoFieldMillisPattern = regexp.MustCompile(`^(\d{1,2}):(\d{3})$`)
	// MM:SS - two plain fields; milliseconds missing entirely.
	twoFieldPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)
)

// repairToken canonicalizes a single timestamp token. It never fails:
// tokens matching none of the tolerated shapes collapse to 00:00:00,000.
func repairToken(token string) Timestamp {
	token = strings.TrimSpace(token)

	if m := frameTokenPattern.FindStringSubmatch(token); m != nil {
		return frameTimestamp(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), repairMillis(m[5]))
	}
	if m := colonMillisPattern.FindStringSubmatch(token); m != nil {
		return clockTimestamp(m[1], m[2], m[3], m[4])
	}
	if m := clockTokenPattern.FindStringSubmatch(token); m != nil {
		return clockTimestamp(m[1], m[2], m[3], m[4])
	}
	if m := compactMillisPattern.FindStringSubmatch(token); m != nil {
		// No hour field: the two leading fields are minutes and seconds.
		return clockTimestamp("0", m[1], m[2], m[3])
	}
	if m := bareFramePattern.FindStringSubmatch(token); m != nil {
		return frameTimestamp(0, atoi(m[1]), atoi(m[2]), atoi(m[3]), 0)
	}
	if m := shortClockPattern.FindStringSubmatch(token); m != nil {
		return clockTimestamp("0", m[1], m[2], m[3])
	}
	if m := twoFieldMillisPattern.FindStringSubmatch(token); m != nil {
		return clockTimestamp("0", "0", m[1], m[2])
	}
	if m := twoFieldPattern.FindStringSubmatch(token); m != nil {
		return clockTimestamp("0", m[1], m[2], "")
	}
	return Timestamp{}
}

// clockTimestamp assembles an hours/minutes/seconds/milliseconds reading.
// Integer parsing absorbs leading zeros (a three-digit hour such as 012
// reads as 12) and clamping repairs components that remain out of range.
func clockTimestamp(hours, minutes, seconds, millis string) Timestamp {
	t := Timestamp{
		Hours:   atoi(hours),
		Minutes: atoi(minutes),
		Seconds: atoi(seconds),
		Millis:  repairMillis(millis),
	}
	return t.clamped()
}

// frameTimestamp folds a frame count into the clock fields. Frame arithmetic
// carries upward through seconds, minutes and hours; only the final hour
// value is clamped.
func frameTimestamp(hours, minutes, seconds, frames, millis int) Timestamp {
	totalMillis := millis + frames*(1000/framesPerSecond)
	seconds += totalMillis / 1000
	totalMillis %= 1000
	minutes += seconds / 60
	seconds %= 60
	hours += minutes / 60
	minutes %= 60
	return Timestamp{Hours: hours, Minutes: minutes, Seconds: seconds, Millis: totalMillis}.clamped()
}

// repairMillis normalizes a raw millisecond field to exactly three digits.
// Empty input means the comma was present with nothing after it; short input
// is right-padded (",5" is half a second, not five milliseconds); overlong
// input is truncated, never rounded, so cue timing never shifts forward.
func repairMillis(raw string) int {
	switch {
	case raw == "":
		return 0
	case len(raw) < 3:
		raw += strings.Repeat("0", 3-len(raw))
	case len(raw) > 3:
		raw = raw[:3]
	}
	return atoi(raw)
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// arrowSeparator is the canonical SRT range separator.
const arrowSeparator = " --> "

// repairTimingLine rewrites both sides of a start --> end line into
// canonical form. Lines without an arrow are returned unchanged.
func repairTimingLine(line string) string {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return line
	}
	start := repairToken(parts[0])
	end := repairToken(parts[1])
	return start.String() + arrowSeparator + end.String()
}
