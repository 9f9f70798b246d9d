package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelpress/internal/config"
	"reelpress/internal/fileutil"
	"reelpress/internal/logging"
	"reelpress/internal/media/ffmpeg"
	"reelpress/internal/media/ffprobe"
	"reelpress/internal/notifications"
	"reelpress/internal/queue"
	"reelpress/internal/services"
	"reelpress/internal/textutil"
)

// CaptionClient generates translated subtitles from an extracted audio file.
type CaptionClient interface {
	GenerateSubtitles(ctx context.Context, audioPath string) (string, error)
}

// MediaRunner covers the ffmpeg operations the stages invoke.
type MediaRunner interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	Render(ctx context.Context, spec ffmpeg.RenderSpec) error
}

// ProbeFunc inspects a media file. It matches ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Options wires the runner's collaborators. Config, Store, and Captioner are
// required; the rest default to production implementations.
type Options struct {
	Config    *config.Config
	Store     *queue.Store
	Captioner CaptionClient
	Notifier  notifications.Service
	Logger    *slog.Logger
	Media     MediaRunner
	Probe     ProbeFunc
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Total     int
	Processed int
	Failed    int
	Review    int
	Duration  time.Duration
}

// Runner processes queue items sequentially through the pipeline stages.
type Runner struct {
	cfg         *config.Config
	store       *queue.Store
	notifier    notifications.Service
	logger      *slog.Logger
	transcribe  *TranscribeStage
	render      *RenderStage
	lock        *flock.Flock
	maxAttempts int
}

type stageBinding struct {
	name       string
	label      string
	processing queue.Status
	done       queue.Status
	execute    func(ctx context.Context, item *queue.Item) error
}

// NewRunner builds a batch runner from the supplied options.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("workflow: config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("workflow: queue store is required")
	}
	if opts.Captioner == nil {
		return nil, errors.New("workflow: caption client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}
	media := opts.Media
	if media == nil {
		media = ffmpeg.NewRunner(opts.Config.FFmpegBinary())
	}
	probe := opts.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}

	maxAttempts := opts.Config.Workflow.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &Runner{
		cfg:         opts.Config,
		store:       opts.Store,
		notifier:    notifier,
		logger:      logger,
		transcribe:  NewTranscribeStage(opts.Config, opts.Captioner, media, probe, logger),
		render:      NewRenderStage(opts.Config, media, logger),
		lock:        flock.New(filepath.Join(opts.Config.Paths.WorkDir, "reelpress.lock")),
		maxAttempts: maxAttempts,
	}, nil
}

// RunBatch processes every queued item once and returns a summary. Items that
// were stuck in a processing status from an interrupted run are reset before
// the batch starts.
func (r *Runner) RunBatch(ctx context.Context) (Summary, error) {
	start := time.Now()

	locked, err := r.lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "lock", "another batch run is active", nil)
	}
	defer func() {
		_ = r.lock.Unlock()
	}()

	if _, err := r.store.ResetStuckProcessing(ctx); err != nil {
		return Summary{}, fmt.Errorf("reset stuck items: %w", err)
	}

	items, err := r.store.List(ctx, queue.StatusPending, queue.StatusTranscribed)
	if err != nil {
		return Summary{}, fmt.Errorf("list queue items: %w", err)
	}

	summary := Summary{Total: len(items)}
	if len(items) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	if err := r.notifier.NotifyBatchStarted(ctx, len(items)); err != nil {
		r.logger.Debug("batch start notification failed", logging.Error(err))
	}

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if err := r.processItem(ctx, item); err != nil {
			if item.Status == queue.StatusReview {
				summary.Review++
			} else {
				summary.Failed++
			}
			continue
		}
		summary.Processed++
	}

	summary.Duration = time.Since(start)
	if err := r.notifier.NotifyBatchCompleted(ctx, summary.Processed, summary.Failed+summary.Review, summary.Duration); err != nil {
		r.logger.Debug("batch complete notification failed", logging.Error(err))
	}

	return summary, ctx.Err()
}

func (r *Runner) processItem(ctx context.Context, item *queue.Item) error {
	itemCtx := services.WithItemID(ctx, item.ID)
	itemCtx = services.WithRequestID(itemCtx, uuid.NewString())

	for {
		binding, ok := r.stageForStatus(item.Status)
		if !ok {
			return nil
		}
		if err := r.runStage(itemCtx, binding, item); err != nil {
			return err
		}
	}
}

func (r *Runner) stageForStatus(status queue.Status) (stageBinding, bool) {
	switch status {
	case queue.StatusPending:
		return stageBinding{
			name:       "transcribe",
			label:      "Transcribing",
			processing: queue.StatusTranscribing,
			done:       queue.StatusTranscribed,
			execute:    r.transcribe.Execute,
		}, true
	case queue.StatusTranscribed:
		return stageBinding{
			name:       "render",
			label:      "Rendering",
			processing: queue.StatusRendering,
			done:       queue.StatusCompleted,
			execute:    r.render.Execute,
		}, true
	default:
		return stageBinding{}, false
	}
}

func (r *Runner) runStage(ctx context.Context, binding stageBinding, item *queue.Item) error {
	stageCtx := services.WithStage(ctx, binding.name)
	stageLogger := logging.WithContext(stageCtx, r.logger)

	item.Status = binding.processing
	item.SetProgress(binding.label, binding.label+" started", 0)
	item.ErrorMessage = ""
	if err := r.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	stageLogger.Info(
		"stage started",
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
		logging.String("title", strings.TrimSpace(item.Title)),
	)

	if err := binding.execute(stageCtx, item); err != nil {
		return r.failStage(stageCtx, stageLogger, binding, item, err)
	}

	item.Status = binding.done
	if err := r.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String("next_status", string(item.Status)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
	)

	if item.Status == queue.StatusCompleted {
		if err := r.notifier.NotifyItemCompleted(stageCtx, item.Title, item.FinalFile); err != nil {
			stageLogger.Debug("item completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (r *Runner) failStage(ctx context.Context, logger *slog.Logger, binding stageBinding, item *queue.Item, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	item.Attempts++

	status := services.FailureStatus(stageErr)
	switch {
	case status == queue.StatusReview:
		item.SetReview(message)
	case item.Attempts >= r.maxAttempts:
		item.SetReview(fmt.Sprintf("failed after %d attempts: %s", item.Attempts, message))
	default:
		item.SetFailed(message)
	}

	logger.Error(
		"stage failed",
		logging.String("resolved_status", string(item.Status)),
		logging.Int("attempts", item.Attempts),
		logging.Error(stageErr),
	)
	if err := r.store.Update(ctx, item); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if item.Status == queue.StatusReview {
		r.stageReviewArtifacts(logger, item)
		if err := r.notifier.NotifyItemNeedsReview(ctx, item.Title, item.ReviewReason); err != nil {
			logger.Debug("review notification failed", logging.Error(err))
		}
	} else {
		contextLabel := fmt.Sprintf("%s (item #%d)", binding.name, item.ID)
		if err := r.notifier.NotifyError(ctx, stageErr, contextLabel); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}

	return stageErr
}

// stageReviewArtifacts copies the generated subtitle file into the review
// directory so the operator can fix it without digging through the work dir.
func (r *Runner) stageReviewArtifacts(logger *slog.Logger, item *queue.Item) {
	if item.SubtitleFile == "" || r.cfg.Paths.ReviewDir == "" {
		return
	}
	if _, err := os.Stat(item.SubtitleFile); err != nil {
		return
	}
	if err := os.MkdirAll(r.cfg.Paths.ReviewDir, 0o755); err != nil {
		logger.Debug("create review directory failed", logging.Error(err))
		return
	}
	name := fmt.Sprintf("item_%d_%s.srt", item.ID, textutil.SanitizeFileName(item.Title))
	target := filepath.Join(r.cfg.Paths.ReviewDir, name)
	if err := fileutil.CopyFile(item.SubtitleFile, target); err != nil {
		logger.Debug("stage review subtitle failed", logging.Error(err))
		return
	}
	logger.Info("review subtitle staged", logging.String("path", target))
}
