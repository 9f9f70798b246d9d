package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelpress/internal/subtitles"
)

func newNormalizeCommand() *cobra.Command {
	var outputPath string
	var wrapWidth int
	var quiet bool

	cmd := &cobra.Command{
		Use:         "normalize <file|->",
		Short:       "Repair caption text into canonical SRT",
		Long:        "Repair malformed caption text into canonical SRT. Reads from the given file, or from stdin when the argument is \"-\". The repaired text goes to --output (or stdout) and the repair report to stderr.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readNormalizeInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			repaired, report := subtitles.Normalize(raw)
			if wrapWidth > 0 {
				var rewrapped int
				repaired, rewrapped = subtitles.WrapForDisplay(repaired, wrapWidth)
				if rewrapped > 0 && !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "rewrapped %d cue(s) to %d chars\n", rewrapped, wrapWidth)
				}
			}

			if strings.TrimSpace(outputPath) != "" {
				if err := os.WriteFile(outputPath, []byte(repaired), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), repaired)
				if !strings.HasSuffix(repaired, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}

			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr(), report.Summary())
			}
			if !report.OK() {
				return fmt.Errorf("caption text has residual defects")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write repaired SRT to this file instead of stdout")
	cmd.Flags().IntVar(&wrapWidth, "wrap", 0, "Rewrap cue lines to at most this many characters (0 disables)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the repair report")
	return cmd
}

func readNormalizeInput(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
