package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelpress/internal/deps"
)

func newDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "deps",
		Short:       "Check external tool availability",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := deps.CheckBinaries(deps.Defaults())

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state})
			}
			table := renderTable([]string{"Tool", "Command", "Status"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required tool(s) missing", len(missing))
			}
			return nil
		},
	}
}
