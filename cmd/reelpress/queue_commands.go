package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"reelpress/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the work queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(stats))
				total := 0
				for _, status := range queue.AllStatuses() {
					count, ok := stats[status]
					if !ok || count == 0 {
						continue
					}
					total += count
					rows = append(rows, []string{string(status), strconv.Itoa(count)})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})

				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *queue.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						statusCell(item.Status, colorize),
						formatItemDetail(item),
						item.CreatedAt.Local().Format(time.DateTime),
					})
				}

				table := renderTable(
					[]string{"ID", "Title", "Status", "Detail", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Only show items with these statuses")
	return cmd
}

func statusCell(status queue.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	var color text.Color
	switch status {
	case queue.StatusCompleted:
		color = text.FgGreen
	case queue.StatusFailed:
		color = text.FgRed
	case queue.StatusReview:
		color = text.FgYellow
	case queue.StatusTranscribing, queue.StatusRendering:
		color = text.FgCyan
	default:
		return string(status)
	}
	return color.Sprint(string(status))
}

func formatItemDetail(item *queue.Item) string {
	switch {
	case item.NeedsReview && item.ReviewReason != "":
		return item.ReviewReason
	case item.Status == queue.StatusFailed && item.ErrorMessage != "":
		return item.ErrorMessage
	case item.Status == queue.StatusCompleted && item.FinalFile != "":
		return item.FinalFile
	case item.IsProcessing():
		return fmt.Sprintf("%s (%.0f%%)", item.ProgressMessage, item.ProgressPercent)
	default:
		return item.ProgressMessage
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove items from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := 0
			for _, flag := range []bool{clearCompleted, clearFailed, clearAll} {
				if flag {
					selected++
				}
			}
			if selected != 1 {
				return fmt.Errorf("specify exactly one of --completed, --failed, or --all")
			}

			return ctx.withStore(func(store *queue.Store) error {
				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed items")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every item")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id ...]",
		Short: "Requeue failed or review items",
		Long:  "Requeue failed or review items for another attempt. With no arguments every failed and review item is requeued; otherwise only the listed item IDs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				updated, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				if updated == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items to retry")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d item(s)\n", updated)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id ...>",
		Short: "Remove specific items from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				removed := 0
				for _, id := range ids {
					ok, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintf(cmd.OutOrStdout(), "Item #%d not found\n", id)
						continue
					}
					removed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
				return nil
			})
		},
	}
}

func parseItemIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
