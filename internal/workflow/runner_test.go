package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reelpress/internal/media/ffmpeg"
	"reelpress/internal/media/ffprobe"
	"reelpress/internal/queue"
	"reelpress/internal/testsupport"
	"reelpress/internal/workflow"
)

type fakeCaptioner struct {
	raw   string
	err   error
	calls int
}

func (f *fakeCaptioner) GenerateSubtitles(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

type fakeMedia struct {
	mu         sync.Mutex
	extractErr error
	renderErr  error
	extracted  []string
	specs      []ffmpeg.RenderSpec
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	f.extracted = append(f.extracted, outputPath)
	return os.WriteFile(outputPath, []byte("audio"), 0o644)
}

func (f *fakeMedia) Render(ctx context.Context, spec ffmpeg.RenderSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renderErr != nil {
		return f.renderErr
	}
	f.specs = append(f.specs, spec)
	return os.WriteFile(spec.OutputPath, []byte("rendered"), 0o644)
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []int
	completed [][2]int
	reviews   []string
	errors    []string
	items     []string
}

func (n *recordingNotifier) NotifyBatchStarted(ctx context.Context, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, count)
	return nil
}

func (n *recordingNotifier) NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, [2]int{processed, failed})
	return nil
}

func (n *recordingNotifier) NotifyItemCompleted(ctx context.Context, title, finalFile string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, title)
	return nil
}

func (n *recordingNotifier) NotifyItemNeedsReview(ctx context.Context, title, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviews = append(n.reviews, reason)
	return nil
}

func (n *recordingNotifier) NotifyError(ctx context.Context, err error, context string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, context)
	return nil
}

func (n *recordingNotifier) TestNotification(ctx context.Context) error { return nil }

func audioProbe(ctx context.Context, binary, path string) (ffprobe.Result, error) {
	return ffprobe.Result{Streams: []ffprobe.Stream{
		{CodecType: "video", Width: 1080, Height: 1920},
		{CodecType: "audio"},
	}}, nil
}

func writeSourceVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, 2048)
	return path
}

func TestRunnerProcessesItemEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "dance_clip_source_Weibo.mp4")
	item := testsupport.NewFile(t, store, source)

	media := &fakeMedia{}
	notifier := &recordingNotifier{}
	runner, err := workflow.NewRunner(workflow.Options{
		Config: cfg,
		Store:  store,
		Captioner: &fakeCaptioner{
			raw: "```srt\n1\n00:00:01.000 --> 00:00:02.500\nHello there\n2\n0:00:03,000 --> 0:00:04,000\nSecond line\n```",
		},
		Notifier: notifier,
		Media:    media,
		Probe:    audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	summary, err := runner.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if summary.Total != 1 || summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusCompleted {
		t.Fatalf("expected completed status, got %s", updated.Status)
	}
	if updated.RepairReportJSON == "" || !strings.Contains(updated.RepairReportJSON, "iterations") {
		t.Fatalf("expected repair report, got %q", updated.RepairReportJSON)
	}

	subtitleText, err := os.ReadFile(updated.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle file: %v", err)
	}
	if !strings.Contains(string(subtitleText), "00:00:01,000 --> 00:00:02,500") {
		t.Fatalf("expected normalized timestamps, got %q", subtitleText)
	}
	if strings.Contains(string(subtitleText), "```") {
		t.Fatalf("expected code fences stripped, got %q", subtitleText)
	}

	if _, err := os.Stat(updated.FinalFile); err != nil {
		t.Fatalf("expected final file to exist: %v", err)
	}
	if filepath.Dir(updated.FinalFile) != cfg.Paths.OutputDir {
		t.Fatalf("expected final file under output dir, got %s", updated.FinalFile)
	}

	if len(media.specs) != 1 {
		t.Fatalf("expected one render, got %d", len(media.specs))
	}
	spec := media.specs[0]
	if spec.SourceText == nil || spec.SourceText.Text != "Source: Weibo" {
		t.Fatalf("expected filename attribution overlay, got %+v", spec.SourceText)
	}
	if spec.Subtitles == nil || spec.Subtitles.SubtitlePath != updated.SubtitleFile {
		t.Fatalf("expected subtitle burn spec, got %+v", spec.Subtitles)
	}
	if spec.Banner != nil {
		t.Fatalf("expected no banner by default, got %+v", spec.Banner)
	}

	if len(notifier.started) != 1 || notifier.started[0] != 1 {
		t.Fatalf("expected batch start notification, got %v", notifier.started)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != [2]int{1, 0} {
		t.Fatalf("expected batch complete notification, got %v", notifier.completed)
	}
	if len(notifier.items) != 1 {
		t.Fatalf("expected item completion notification, got %v", notifier.items)
	}
}

func TestRunnerRendersBannerWhenEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Banner.Enabled = true
	cfg.Banner.ClipPath = filepath.Join(testsupport.BaseDir(cfg), "banner.mp4")
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "clip.mp4")
	testsupport.NewFile(t, store, source)

	media := &fakeMedia{}
	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "1\n00:00:00,000 --> 00:00:01,000\nHi\n"},
		Notifier:  &recordingNotifier{},
		Media:     media,
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := runner.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if len(media.specs) != 1 || media.specs[0].Banner == nil {
		t.Fatalf("expected banner overlay in render spec, got %+v", media.specs)
	}
	if media.specs[0].Banner.ClipPath != cfg.Banner.ClipPath {
		t.Fatalf("unexpected banner clip %q", media.specs[0].Banner.ClipPath)
	}
}

func TestRunnerParksValidationFailuresForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "silent.mp4")
	item := testsupport.NewFile(t, store, source)

	notifier := &recordingNotifier{}
	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "unused"},
		Notifier:  notifier,
		Media:     &fakeMedia{},
		Probe: func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	summary, err := runner.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if summary.Review != 1 || summary.Processed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusReview || !updated.NeedsReview {
		t.Fatalf("expected review status, got %+v", updated)
	}
	if !strings.Contains(updated.ReviewReason, "no audio stream") {
		t.Fatalf("unexpected review reason %q", updated.ReviewReason)
	}
	if len(notifier.reviews) != 1 {
		t.Fatalf("expected review notification, got %v", notifier.reviews)
	}
}

func TestRunnerParksCuelessCaptionsForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "clip.mp4")
	item := testsupport.NewFile(t, store, source)

	media := &fakeMedia{}
	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "I could not make out any speech in this recording."},
		Notifier:  &recordingNotifier{},
		Media:     media,
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	if _, err := runner.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusReview || !updated.NeedsReview {
		t.Fatalf("expected cueless captions to need review, got %+v", updated)
	}
	if !strings.Contains(updated.ReviewReason, "no usable cues") {
		t.Fatalf("unexpected review reason %q", updated.ReviewReason)
	}
	if len(media.specs) != 0 {
		t.Fatalf("expected no render for cueless captions, got %d", len(media.specs))
	}
}

func TestRunnerRetriesTransientFailuresUntilBudget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.MaxAttempts = 2
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "clip.mp4")
	item := testsupport.NewFile(t, store, source)

	captionClient := &fakeCaptioner{err: errors.New("upstream hiccup")}
	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: captionClient,
		Notifier:  &recordingNotifier{},
		Media:     &fakeMedia{},
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	if _, err := runner.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusFailed || updated.Attempts != 1 {
		t.Fatalf("expected first failure to stay retryable, got %+v", updated)
	}

	if _, err := store.RetryFailed(context.Background()); err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if _, err := runner.RunBatch(context.Background()); err != nil {
		t.Fatalf("second RunBatch failed: %v", err)
	}
	updated, err = store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusReview {
		t.Fatalf("expected review after attempt budget, got %s", updated.Status)
	}
	if !strings.Contains(updated.ReviewReason, "failed after 2 attempts") {
		t.Fatalf("unexpected review reason %q", updated.ReviewReason)
	}
	if captionClient.calls != 2 {
		t.Fatalf("expected 2 caption attempts, got %d", captionClient.calls)
	}
}

func TestRunnerStagesSubtitlesForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.MaxAttempts = 1
	store := testsupport.MustOpenStore(t, cfg)

	source := writeSourceVideo(t, cfg.Paths.InputDir, "clip.mp4")
	item := testsupport.NewFile(t, store, source)

	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "1\n00:00:01,000 --> 00:00:02,000\nHello\n"},
		Notifier:  &recordingNotifier{},
		Media:     &fakeMedia{renderErr: errors.New("render exploded")},
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	if _, err := runner.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusReview {
		t.Fatalf("expected review, got %s", updated.Status)
	}

	entries, err := os.ReadDir(cfg.Paths.ReviewDir)
	if err != nil {
		t.Fatalf("read review dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 staged subtitle, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), ".srt") {
		t.Fatalf("expected .srt artifact, got %s", entries[0].Name())
	}
}

func TestRunBatchRefusesWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	other := flock.New(filepath.Join(cfg.Paths.WorkDir, "reelpress.lock"))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to take lock: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = other.Unlock()
	}()

	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "unused"},
		Notifier:  &recordingNotifier{},
		Media:     &fakeMedia{},
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := runner.RunBatch(context.Background()); err == nil {
		t.Fatal("expected error while lock is held")
	}
}

func TestRunBatchWithEmptyQueueDoesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	notifier := &recordingNotifier{}
	runner, err := workflow.NewRunner(workflow.Options{
		Config:    cfg,
		Store:     store,
		Captioner: &fakeCaptioner{raw: "unused"},
		Notifier:  notifier,
		Media:     &fakeMedia{},
		Probe:     audioProbe,
	})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	summary, err := runner.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if summary.Total != 0 || summary.Processed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(notifier.started) != 0 || len(notifier.completed) != 0 {
		t.Fatal("expected no notifications for empty queue")
	}
}
