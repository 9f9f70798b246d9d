package subtitles

import "strings"

// Cue is one parsed subtitle block from canonical SRT text.
type Cue struct {
	Sequence int
	Start    Timestamp
	End      Timestamp
	Lines    []string
}

// StartSeconds returns the cue start offset in seconds.
func (c Cue) StartSeconds() float64 {
	return float64(c.Start.millis()) / 1000
}

// EndSeconds returns the cue end offset in seconds.
func (c Cue) EndSeconds() float64 {
	return float64(c.End.millis()) / 1000
}

// Text joins the cue's text lines with single spaces.
func (c Cue) Text() string {
	return strings.Join(c.Lines, " ")
}

// ParseCues extracts well-formed cues from SRT text. Blocks that do not
// carry a number line, a canonical timing line and at least one text line
// are skipped; callers that need defect detail run Normalize first and read
// the report.
func ParseCues(content string) []Cue {
	var cues []Cue
	for _, block := range splitBlocks(content) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		seq, ok := sequenceValue(lines[0])
		if !ok {
			continue
		}
		start, end, ok := parseTimingLine(strings.TrimSpace(lines[1]))
		if !ok {
			continue
		}
		text := make([]string, 0, len(lines)-2)
		for _, line := range lines[2:] {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				text = append(text, trimmed)
			}
		}
		if len(text) == 0 {
			continue
		}
		cues = append(cues, Cue{Sequence: seq, Start: start, End: end, Lines: text})
	}
	return cues
}
