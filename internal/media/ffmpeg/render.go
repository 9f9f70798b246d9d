package ffmpeg

import (
	"context"
	"errors"
	"strings"
)

// RenderSpec describes one burn-in render: the input video, the filters to
// apply, and where the result lands.
type RenderSpec struct {
	InputPath  string
	OutputPath string
	Subtitles  *SubtitleBurn
	Banner     *BannerOverlay
	SourceText *SourceText
}

// BuildRenderArgs assembles the full ffmpeg argument list for the spec. The
// banner overlay requires a second input and therefore a filter_complex
// graph; without it a plain -vf chain suffices.
func BuildRenderArgs(spec RenderSpec) ([]string, error) {
	if strings.TrimSpace(spec.InputPath) == "" {
		return nil, errors.New("ffmpeg render: input path required")
	}
	if strings.TrimSpace(spec.OutputPath) == "" {
		return nil, errors.New("ffmpeg render: output path required")
	}

	var chain []string
	if spec.Subtitles != nil {
		chain = append(chain, spec.Subtitles.Filter())
	}
	if spec.SourceText != nil {
		chain = append(chain, spec.SourceText.Filter())
	}
	if spec.Banner == nil && len(chain) == 0 {
		return nil, errors.New("ffmpeg render: no filters configured")
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", spec.InputPath}

	if spec.Banner != nil {
		args = append(args, spec.Banner.InputArgs()...)
		graph := spec.Banner.FilterChain("0:v", "1:v", "vbanner")
		outLabel := "vbanner"
		if len(chain) > 0 {
			graph += ";[vbanner]" + strings.Join(chain, ",") + "[vout]"
			outLabel = "vout"
		}
		args = append(args,
			"-filter_complex", graph,
			"-map", "["+outLabel+"]",
			"-map", "0:a?",
		)
	} else {
		args = append(args, "-vf", strings.Join(chain, ","))
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-c:a", "copy",
		"-movflags", "+faststart",
		spec.OutputPath,
	)
	return args, nil
}

// Render executes the assembled render command.
func (r *Runner) Render(ctx context.Context, spec RenderSpec) error {
	args, err := BuildRenderArgs(spec)
	if err != nil {
		return err
	}
	return r.Run(ctx, args...)
}
