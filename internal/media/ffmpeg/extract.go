package ffmpeg

import (
	"context"
	"errors"
	"strings"
)

// ExtractAudio writes the input's audio track as a 16 kHz mono MP3, the
// format the captioning API accepts for upload.
func (r *Runner) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	inputPath = strings.TrimSpace(inputPath)
	outputPath = strings.TrimSpace(outputPath)
	if inputPath == "" {
		return errors.New("ffmpeg extract: input path required")
	}
	if outputPath == "" {
		return errors.New("ffmpeg extract: output path required")
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	}
	return r.Run(ctx, args...)
}
