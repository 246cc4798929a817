package cmd

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	m "refit.dev/pkg/refit/internal/model"
)

func TestRootCmd_HelpListsCommands(t *testing.T) {
	var buf bytes.Buffer

	cmd := newRootCmd()
	cmd.AddCommand(newPlanCmd(), newApplyCmd(), newListCmd(), newViewCmd(), newInitCmd(), newVersionCmd())
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	for _, want := range []string{"plan", "apply", "list", "view", "init", "version"} {
		require.Contains(t, out, want)
	}
}

func TestFlagDefaultsMatchConfigDefaults(t *testing.T) {
	cmd := newRootCmd()

	require.Equal(t, defaultRulesFile, cmd.PersistentFlags().Lookup(rulesFlagName).DefValue)
	require.Equal(t, defaultJournal, cmd.PersistentFlags().Lookup(journalFlagName).DefValue)

	apply := newApplyCmd()
	require.Equal(t, strconv.Itoa(defaultParallel), apply.Flags().Lookup(parallelFlagName).DefValue)
}

func TestParseRoot(t *testing.T) {
	require.Equal(t, m.Path("."), parseRoot(nil))
	require.Equal(t, m.Path("./legacy"), parseRoot([]string{"./legacy"}))
}
