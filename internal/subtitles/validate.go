package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// timingLinePattern is the strict canonical form every repaired timing line
// must match.
var timingLinePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)

// BlockError describes one structural defect in the final caption text.
// Block numbering is 1-based to match SRT cue numbering.
type BlockError struct {
	Block   int
	Message string
}

func (e BlockError) String() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Message)
}

// Report summarizes a Normalize run. A non-empty BlockErrors slice never
// blocks output; the caller decides whether residual defects matter.
type Report struct {
	BlockErrors []BlockError
	Iterations  int
	Converged   bool
}

// OK reports whether the text converged with no residual defects.
func (r Report) OK() bool {
	return r.Converged && len(r.BlockErrors) == 0
}

// Summary renders the report for logging.
func (r Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d iteration(s)", r.Iterations)
	if !r.Converged {
		sb.WriteString(", iteration cap reached")
	}
	if len(r.BlockErrors) == 0 {
		sb.WriteString(", no defects")
		return sb.String()
	}
	fmt.Fprintf(&sb, ", %d defect(s):", len(r.BlockErrors))
	for _, blockErr := range r.BlockErrors {
		sb.WriteString(" ")
		sb.WriteString(blockErr.String())
		sb.WriteString(";")
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// validate re-parses the final text and checks structural invariants. It is
// a read-only pass: sequence numbers are flagged when they disagree with
// block position but never rewritten.
func validate(text string) []BlockError {
	var errs []BlockError
	for i, block := range splitBlocks(text) {
		position := i + 1
		lines := strings.Split(block, "\n")

		nonEmpty := 0
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				nonEmpty++
			}
		}
		if nonEmpty < 3 {
			errs = append(errs, BlockError{position, fmt.Sprintf("%d non-empty line(s), need number, timing and text", nonEmpty)})
			continue
		}

		seq, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			errs = append(errs, BlockError{position, fmt.Sprintf("first line %q is not a sequence number", lines[0])})
		} else if seq != position {
			errs = append(errs, BlockError{position, fmt.Sprintf("sequence number %d does not match position %d", seq, position)})
		}

		timing := lines[1]
		if !timingLinePattern.MatchString(timing) {
			errs = append(errs, BlockError{position, fmt.Sprintf("malformed timing line %q", timing)})
		} else if start, end, ok := parseTimingLine(timing); ok && start.millis() > end.millis() {
			errs = append(errs, BlockError{position, fmt.Sprintf("start %s is after end %s", start, end)})
		}

		for _, line := range lines[2:] {
			if strings.TrimSpace(line) == "" {
				errs = append(errs, BlockError{position, "empty text line inside block"})
				break
			}
		}
	}
	return errs
}

// parseTimingLine splits a canonical timing line into its two timestamps.
func parseTimingLine(line string) (Timestamp, Timestamp, bool) {
	parts := strings.Split(line, arrowSeparator)
	if len(parts) != 2 {
		return Timestamp{}, Timestamp{}, false
	}
	start, okStart := parseCanonical(parts[0])
	end, okEnd := parseCanonical(parts[1])
	return start, end, okStart && okEnd
}

func parseCanonical(token string) (Timestamp, bool) {
	var t Timestamp
	if _, err := fmt.Sscanf(token, "%02d:%02d:%02d,%03d", &t.Hours, &t.Minutes, &t.Seconds, &t.Millis); err != nil {
		return Timestamp{}, false
	}
	return t, true
}
