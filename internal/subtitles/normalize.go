package subtitles

import "strings"

// maxIterations bounds the repair loop. Convergence normally takes two or
// three passes; the cap only matters for pathological input that keeps
// oscillating, in which case the best effort so far is returned and the
// report notes the loop never settled.
const maxIterations = 15

// Normalize repairs raw caption text into canonical SRT. It re-applies
// segmentation and timestamp repair until a pass produces zero changes (or
// the iteration cap is reached), then validates the final structure. The
// repaired text is always returned; residual defects are reported as data,
// never as an error. Running Normalize on its own output is a no-op.
func Normalize(raw string) (string, Report) {
	if strings.TrimSpace(raw) == "" {
		return raw, Report{Converged: true}
	}

	current := raw
	report := Report{}
	for iteration := 1; iteration <= maxIterations; iteration++ {
		report.Iterations = iteration
		next := repairPass(current)
		if next == current {
			report.Converged = true
			break
		}
		current = next
	}
	report.BlockErrors = validate(current)
	return current, report
}

// repairPass performs one full segmentation + timestamp repair sweep. Each
// pass rescans from scratch; the text itself is the only state carried
// between iterations.
func repairPass(text string) string {
	segmented := segment(text)
	blocks := splitBlocks(segmented)
	for i, block := range blocks {
		blocks[i] = repairBlock(block)
	}
	return strings.Join(blocks, "\n\n")
}

// repairBlock canonicalizes the timing line of a block that carries the
// expected number-then-timing shape. Blocks that do not are passed through
// untouched; the validator reports them instead.
func repairBlock(block string) string {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return block
	}
	if !isNumeric(lines[0]) {
		return block
	}
	if !strings.Contains(lines[1], "-->") {
		return block
	}
	lines[1] = repairTimingLine(lines[1])
	return strings.Join(lines, "\n")
}
