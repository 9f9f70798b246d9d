package subtitles

import (
	"regexp"
	"strconv"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

// splitBlocks divides caption text into blank-line-delimited blocks.
func splitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n\n")
}

// segment prepares raw caption text for blank-line-delimited splitting:
// it strips a surrounding markup fence, synthesizes the blank separators
// that glued-together blocks are missing, and collapses runs of blank
// lines. Content is otherwise preserved verbatim; lines that do not match
// the sequence-number heuristic stay part of the surrounding block.
func segment(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	lines = stripFence(lines)
	lines = insertSeparators(lines)
	joined := strings.Join(lines, "\n")
	joined = blankRunPattern.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}

// stripFence removes a markdown code fence when it wraps the whole payload.
// Caption services frequently return the SRT body inside a ```-delimited
// block; only the very first and very last non-trivial lines are considered.
func stripFence(lines []string) []string {
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// insertSeparators walks the lines looking for digit-only lines that
// continue the running cue sequence (1, 2, 3, ...). When such a line
// directly follows non-blank content, a blank line is synthesized before it
// so blank-line splitting sees two blocks instead of one.
func insertSeparators(lines []string) []string {
	out := make([]string, 0, len(lines)+4)
	previousSeq := 0
	for _, line := range lines {
		value, ok := sequenceValue(line)
		if ok && value == previousSeq+1 {
			if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) != "" {
				out = append(out, "")
			}
			previousSeq = value
		}
		out = append(out, line)
	}
	return out
}

// sequenceValue reports whether the line consists solely of digits and, if
// so, its integer value.
func sequenceValue(line string) (int, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return value, true
}

// isNumeric reports whether the trimmed line parses as an integer.
func isNumeric(value string) bool {
	_, ok := sequenceValue(value)
	return ok
}
