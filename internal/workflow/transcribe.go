package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelpress/internal/captioner"
	"reelpress/internal/config"
	"reelpress/internal/logging"
	"reelpress/internal/queue"
	"reelpress/internal/services"
	"reelpress/internal/subtitles"
)

// TranscribeStage turns a source video into a normalized subtitle file:
// audio extraction, caption generation, timestamp repair, and display-width
// wrapping.
type TranscribeStage struct {
	cfg    *config.Config
	client CaptionClient
	media  MediaRunner
	probe  ProbeFunc
	logger *slog.Logger
}

// NewTranscribeStage constructs the transcription stage.
func NewTranscribeStage(cfg *config.Config, client CaptionClient, media MediaRunner, probe ProbeFunc, logger *slog.Logger) *TranscribeStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TranscribeStage{cfg: cfg, client: client, media: media, probe: probe, logger: logger}
}

type repairReport struct {
	Iterations  int      `json:"iterations"`
	Converged   bool     `json:"converged"`
	BlockErrors []string `json:"block_errors,omitempty"`
}

// Execute runs the transcription stage for one item. The repair report is
// recorded on the item but residual subtitle defects never abort the stage.
func (s *TranscribeStage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, "transcribe", "stat source", "source file unavailable", err)
	}

	probe, err := s.probe(ctx, s.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "inspect source", "ffprobe failed", err)
	}
	if !probe.HasAudio() {
		return services.Wrap(services.ErrValidation, "transcribe", "inspect source", "source has no audio stream", nil)
	}

	item.SetProgress("Transcribing", "extracting audio", 10)
	audioPath := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("%d_audio.mp3", item.ID))
	if err := s.media.ExtractAudio(ctx, item.SourcePath, audioPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "extract audio", "audio extraction failed", err)
	}
	item.AudioFile = audioPath

	item.SetProgress("Transcribing", "generating captions", 40)
	raw, err := s.client.GenerateSubtitles(ctx, audioPath)
	if err != nil {
		if errors.Is(err, captioner.ErrKeysExhausted) {
			return services.Wrap(services.ErrConfiguration, "transcribe", "generate captions", "all api keys rejected", err)
		}
		return services.Wrap(services.ErrTransient, "transcribe", "generate captions", "caption generation failed", err)
	}

	normalized, report := subtitles.Normalize(raw)
	if report.OK() {
		logger.Info("subtitle repair converged", logging.String("report", report.Summary()))
	} else {
		logger.Warn("subtitle repair left residual defects", logging.String("report", report.Summary()))
	}

	reportJSON, err := json.Marshal(buildRepairReport(report))
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "encode repair report", "report serialization failed", err)
	}
	item.RepairReportJSON = string(reportJSON)

	wrapped, rewrappedBlocks := subtitles.WrapForDisplay(normalized, s.cfg.Subtitles.MaxLineChars)
	if rewrappedBlocks > 0 {
		logger.Debug("wrapped long subtitle lines", logging.Int("blocks", rewrappedBlocks))
	}

	// The repair engine never hard-fails, so a response with no caption
	// content still comes back as text. Re-parse the final output and park
	// the item rather than render a subtitle-free video.
	cues := subtitles.ParseCues(wrapped)
	if len(cues) == 0 {
		return services.Wrap(services.ErrValidation, "transcribe", "parse captions", "caption service returned no usable cues", nil)
	}
	logger.Info(
		"captions ready",
		logging.Int("cues", len(cues)),
		logging.Float64("first_cue_seconds", cues[0].StartSeconds()),
		logging.Float64("duration_seconds", cues[len(cues)-1].EndSeconds()),
		logging.String("first_cue", cuePreview(cues[0])),
	)

	srtPath := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("%d_subtitles.srt", item.ID))
	if err := os.WriteFile(srtPath, []byte(wrapped), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "write subtitles", "subtitle write failed", err)
	}
	item.SubtitleFile = srtPath

	item.SetProgressComplete("Transcribed", "subtitles ready")
	return nil
}

// cuePreview truncates the first cue's text for log output.
func cuePreview(cue subtitles.Cue) string {
	text := cue.Text()
	if len(text) > 60 {
		text = text[:60] + "…"
	}
	return text
}

func buildRepairReport(report subtitles.Report) repairReport {
	out := repairReport{
		Iterations: report.Iterations,
		Converged:  report.Converged,
	}
	for _, blockErr := range report.BlockErrors {
		out.BlockErrors = append(out.BlockErrors, blockErr.String())
	}
	return out
}
