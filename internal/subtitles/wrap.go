package subtitles

import "strings"

// WrapForDisplay re-wraps every cue's text so no rendered line exceeds
// maxChars, keeping cues inside the safe area of a narrow vertical frame.
// Cue text is flattened to a single line first, then greedily word-wrapped;
// cues that would need more than two lines are re-wrapped at a wider
// threshold and cut to two lines for readability. Blocks without the usual
// number/timing/text shape pass through untouched. Returns the rewritten
// text and the number of cues whose text changed.
func WrapForDisplay(content string, maxChars int) (string, int) {
	if maxChars <= 0 {
		return content, 0
	}
	blocks := splitBlocks(content)
	wrapped := 0
	for i, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		original := strings.Join(lines[2:], " ")
		text := wrapText(original, maxChars)
		if text != collapseSpaces(original) || len(lines) > 3 {
			wrapped++
		}
		blocks[i] = lines[0] + "\n" + lines[1] + "\n" + text
	}
	return strings.Join(blocks, "\n\n"), wrapped
}

func wrapText(text string, maxChars int) string {
	text = collapseSpaces(text)
	if len(text) <= maxChars {
		return text
	}
	lines := wrapWords(text, maxChars)
	if len(lines) > 2 {
		// Favor fewer, longer lines over a tall stack of short ones.
		lines = wrapWords(text, maxChars*13/10)
		if len(lines) > 2 {
			lines = lines[:2]
		}
	}
	return strings.Join(lines, "\n")
}

// wrapWords greedily packs words into lines of at most width characters.
// Words longer than the width are kept whole on their own line.
func wrapWords(text string, width int) []string {
	words := strings.Fields(text)
	var lines []string
	var current string
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
