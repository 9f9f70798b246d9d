package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelpress/internal/config"
	"reelpress/internal/fileutil"
	"reelpress/internal/logging"
	"reelpress/internal/media/ffmpeg"
	"reelpress/internal/queue"
	"reelpress/internal/services"
	"reelpress/internal/textutil"
)

// RenderStage burns subtitles into the source video and applies the optional
// banner and source-text overlays, then moves the result to the output
// directory.
type RenderStage struct {
	cfg    *config.Config
	media  MediaRunner
	logger *slog.Logger
}

// NewRenderStage constructs the render stage.
func NewRenderStage(cfg *config.Config, media MediaRunner, logger *slog.Logger) *RenderStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RenderStage{cfg: cfg, media: media, logger: logger}
}

// Execute runs the render stage for one item.
func (s *RenderStage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	if strings.TrimSpace(item.SubtitleFile) == "" {
		return services.Wrap(services.ErrValidation, "render", "check subtitles", "item has no subtitle file", nil)
	}
	if _, err := os.Stat(item.SubtitleFile); err != nil {
		return services.Wrap(services.ErrValidation, "render", "check subtitles", "subtitle file unavailable", err)
	}

	workOutput := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("%d_final.mp4", item.ID))
	spec := ffmpeg.RenderSpec{
		InputPath:  item.SourcePath,
		OutputPath: workOutput,
		Subtitles: &ffmpeg.SubtitleBurn{
			SubtitlePath:   item.SubtitleFile,
			FontName:       s.cfg.Subtitles.FontName,
			FontSize:       s.cfg.Subtitles.FontSize,
			MarginVertical: s.cfg.Subtitles.MarginVertical,
			PrimaryColor:   s.cfg.Subtitles.PrimaryColor,
			OutlineColor:   s.cfg.Subtitles.OutlineColor,
		},
		Banner:     s.bannerOverlay(),
		SourceText: s.sourceText(item),
	}

	item.SetProgress("Rendering", "burning subtitles", 30)
	if err := s.media.Render(ctx, spec); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "burn subtitles", "ffmpeg render failed", err)
	}

	finalPath, err := s.finalDestination(item)
	if err != nil {
		return err
	}
	if err := fileutil.MoveFile(workOutput, finalPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "publish output", "move to output directory failed", err)
	}
	item.FinalFile = finalPath

	logger.Info("render published", logging.String("final_file", finalPath))
	item.SetProgressComplete("Completed", "render complete")
	return nil
}

func (s *RenderStage) bannerOverlay() *ffmpeg.BannerOverlay {
	banner := s.cfg.Banner
	if !banner.Enabled {
		return nil
	}
	return &ffmpeg.BannerOverlay{
		ClipPath:     banner.ClipPath,
		Width:        banner.Width,
		X:            banner.X,
		Y:            banner.Y,
		ChromaColor:  banner.ChromaColor,
		Similarity:   banner.Similarity,
		Blend:        banner.Blend,
		StartSeconds: banner.StartSeconds,
		EndSeconds:   banner.EndSeconds,
		Loop:         banner.Loop,
	}
}

func (s *RenderStage) sourceText(item *queue.Item) *ffmpeg.SourceText {
	st := s.cfg.SourceText
	var text string
	switch st.Mode {
	case config.SourceTextModeFilename:
		attribution := strings.TrimSpace(item.SourceAttribution)
		if attribution == "" {
			return nil
		}
		text = "Source: " + attribution
	case config.SourceTextModeCustom:
		text = strings.TrimSpace(st.Text)
		if text == "" {
			return nil
		}
	default:
		return nil
	}
	return &ffmpeg.SourceText{
		Text:     text,
		FontFile: st.FontFile,
		FontSize: st.FontSize,
		Color:    st.Color,
		Opacity:  st.Opacity,
		X:        st.X,
		Y:        st.Y,
	}
}

func (s *RenderStage) finalDestination(item *queue.Item) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "publish output", "output directory unavailable", err)
	}
	name := textutil.SanitizeFileName(item.Title)
	if name == "" {
		name = fmt.Sprintf("item_%d", item.ID)
	}
	candidate := filepath.Join(s.cfg.Paths.OutputDir, name+".mp4")
	if _, err := os.Stat(candidate); err == nil {
		candidate = filepath.Join(s.cfg.Paths.OutputDir, fmt.Sprintf("%s_%d.mp4", name, item.ID))
	}
	return candidate, nil
}
