package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"refit.dev/pkg/refit/internal/adapter"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View the operations applied by the last run",
		Long:  "View the journaled operations of the most recent 'refit apply' run.",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			store := adapter.NewJournalStore(viper.GetString(journalConfigKey))

			ops, err := store.LastRun()
			if err != nil {
				return err
			}

			return ui.DisplayAppliedOps(context.Background(), ops)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
