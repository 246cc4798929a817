package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	var buf bytes.Buffer

	cmd := newInitCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	require.NoError(t, cmd.Execute())

	_, err := os.Stat(configFileName)
	require.NoError(t, err)
}

func TestInitCmd_FailsWhenConfigExists(t *testing.T) {
	chdir(t, t.TempDir())

	require.NoError(t, os.WriteFile(configFileName, []byte("version: 1\n"), 0o644))

	cmd := newInitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.Execute())
}
