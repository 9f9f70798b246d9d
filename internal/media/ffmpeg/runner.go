package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// outputTailLimit bounds how much ffmpeg stderr is kept in error messages.
// ffmpeg prints the failure reason last, so the tail is what matters.
const outputTailLimit = 2000

// Runner executes ffmpeg with a configurable binary path.
type Runner struct {
	binary string
}

// NewRunner constructs a runner for the given ffmpeg binary. An empty binary
// falls back to "ffmpeg" on PATH.
func NewRunner(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{binary: binary}
}

// Binary returns the configured ffmpeg binary path.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with the supplied arguments, returning the combined
// output tail on failure.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return errors.New("ffmpeg run: no arguments")
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg run: %w: %s", err, outputTail(output))
	}
	return nil
}

func outputTail(output []byte) string {
	text := strings.TrimSpace(string(output))
	if len(text) <= outputTailLimit {
		return text
	}
	return "..." + text[len(text)-outputTailLimit:]
}
