package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelpress/internal/captioner"
	"reelpress/internal/config"
	"reelpress/internal/deps"
	"reelpress/internal/logging"
	"reelpress/internal/notifications"
	"reelpress/internal/queue"
	"reelpress/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipScan bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the queue through transcription and rendering",
		Long:  "Scan the input directory for new videos, enqueue them, and process every pending item through audio extraction, caption generation, repair, and rendering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if missing := deps.MissingRequired(deps.CheckBinaries(deps.Defaults())); len(missing) > 0 {
				for _, status := range missing {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", status.Name, status.Detail)
				}
				return fmt.Errorf("%d required tool(s) missing; see `reelpress deps`", len(missing))
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
				logging.RetentionTarget{
					Dir:     cfg.Paths.LogDir,
					Pattern: "reelpress*.log",
					Exclude: []string{filepath.Join(cfg.Paths.LogDir, "reelpress.log")},
				},
			)

			client, err := buildCaptionClient(cfg)
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				if !skipScan {
					queued, err := scanInputDir(signalCtx, cfg, store)
					if err != nil {
						return err
					}
					if queued > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "Queued %d new file(s) from %s\n", queued, cfg.Paths.InputDir)
					}
				}

				runner, err := workflow.NewRunner(workflow.Options{
					Config:    cfg,
					Store:     store,
					Captioner: client,
					Notifier:  notifications.NewService(cfg),
					Logger:    logger,
				})
				if err != nil {
					return err
				}

				summary, err := runner.RunBatch(signalCtx)
				if err != nil {
					return err
				}
				printBatchSummary(cmd, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipScan, "no-scan", false, "Skip scanning the input directory for new files")
	return cmd
}

func buildCaptionClient(cfg *config.Config) (*captioner.Client, error) {
	keys := append([]string(nil), cfg.Captioner.APIKeys...)
	if keyFile := strings.TrimSpace(cfg.Captioner.KeyFile); keyFile != "" {
		fileKeys, err := captioner.LoadKeyFile(keyFile)
		switch {
		case err == nil:
			keys = append(keys, fileKeys...)
		case errors.Is(err, os.ErrNotExist) && len(keys) > 0:
			// The default key file path may not exist; inline keys suffice.
		default:
			return nil, fmt.Errorf("load key file: %w", err)
		}
	}
	pool, err := captioner.NewKeyPool(keys)
	if err != nil {
		return nil, fmt.Errorf("captioner keys: %w", err)
	}
	return captioner.NewClient(captioner.Config{
		BaseURL:        cfg.Captioner.BaseURL,
		Model:          cfg.Captioner.Model,
		SourceLanguage: cfg.Captioner.SourceLanguage,
		TargetLanguage: cfg.Captioner.TargetLanguage,
		TimeoutSeconds: cfg.Captioner.TimeoutSeconds,
		MaxRetries:     cfg.Captioner.MaxRetries,
	}, pool)
}

// scanInputDir enqueues every supported video file in the input directory
// that is not already queued. Files are added in name order so batch runs
// are deterministic.
func scanInputDir(ctx context.Context, cfg *config.Config, store *queue.Store) (int, error) {
	entries, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("scan input directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := videoFileExtensions[ext]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	queued := 0
	for _, name := range names {
		path := filepath.Join(cfg.Paths.InputDir, name)
		existing, err := store.FindBySourcePath(ctx, path)
		if err != nil {
			return queued, err
		}
		if existing != nil {
			continue
		}
		if _, err := store.NewFile(ctx, path); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

const summaryDurationUnit = 100 * time.Millisecond

func printBatchSummary(cmd *cobra.Command, summary workflow.Summary) {
	out := cmd.OutOrStdout()
	if summary.Total == 0 {
		fmt.Fprintln(out, "Queue is empty; nothing to process")
		return
	}
	fmt.Fprintf(out, "Processed %d of %d item(s) in %s\n", summary.Processed, summary.Total, summary.Duration.Round(summaryDurationUnit))
	if summary.Failed > 0 {
		fmt.Fprintf(out, "Failed: %d\n", summary.Failed)
	}
	if summary.Review > 0 {
		fmt.Fprintf(out, "Needs review: %d\n", summary.Review)
	}
}
