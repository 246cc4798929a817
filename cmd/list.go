package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List affected files and operations without the diff",
		Long:  "Scan with the configured ruleset and show only the summary table of affected files.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			changes, err := buildPlan(ctx, args)
			if err != nil {
				return err
			}

			return ui.DisplaySummary(ctx, changes)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
