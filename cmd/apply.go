package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"refit.dev/pkg/refit/internal/adapter"
)

var applyParallelFlag int

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [path]",
		Short: "Apply the migration to disk",
		Long:  applyLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			changes, err := buildPlan(ctx, args)
			if err != nil {
				return err
			}

			if err := ui.DisplaySummary(ctx, changes); err != nil {
				return err
			}

			applied, applyErr := writer.Apply(ctx, parseRoot(args), changes)

			// Journal whatever was performed, even on a partial run.
			store := adapter.NewJournalStore(viper.GetString(journalConfigKey))
			if err := store.Record(applied); err != nil {
				return err
			}

			if applyErr != nil {
				return applyErr
			}

			return ui.DisplayAppliedOps(ctx, applied)
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&applyParallelFlag, parallelFlagName, "p", defaultParallel, "number of parallel workers for planning")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
}
