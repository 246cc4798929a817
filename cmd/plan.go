package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// planCmd represents the plan command.
var planCmd = newPlanCmd()

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Preview the migration as a diff without writing anything",
		Long:  planLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			changes, err := buildPlan(ctx, args)
			if err != nil {
				return err
			}

			if err := ui.DisplayPreview(ctx, changes); err != nil {
				return err
			}

			return ui.DisplaySummary(ctx, changes)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(planCmd)
}
