package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	m "refit.dev/pkg/refit/internal/model"
)

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func str(s string) *string {
	return &s
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func TestDiskWriter_Apply(t *testing.T) {
	root := t.TempDir()

	writeTestFile(t, filepath.Join(root, "modified.php"), "old body")
	writeTestFile(t, filepath.Join(root, "deleted.php"), "obsolete")
	writeTestFile(t, filepath.Join(root, "renamed.php"), "moved body")
	writeTestFile(t, filepath.Join(root, "warned.php"), "untouched")

	changes := m.NewChangeSet()
	require.NoError(t, changes.AddFileChange("modified.php", str("new body"), str("old body")))
	require.NoError(t, changes.Remove("deleted.php"))
	require.NoError(t, changes.Move("renamed.php", "renamed.php.new"))
	require.NoError(t, changes.AddFileChange("sub/created.php", str("fresh"), nil))
	changes.AddWarning("warned.php", 1, "manual review")

	writer := NewDiskWriter(NewLocalSourceFSAdapter())

	applied, err := writer.Apply(context.Background(), m.Path(root), changes)
	require.NoError(t, err)
	require.Len(t, applied, 4)

	got, err := os.ReadFile(filepath.Join(root, "modified.php"))
	require.NoError(t, err)
	require.Equal(t, "new body", string(got))

	_, err = os.Stat(filepath.Join(root, "deleted.php"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(root, "renamed.php"))
	require.True(t, os.IsNotExist(err))

	got, err = os.ReadFile(filepath.Join(root, "renamed.php.new"))
	require.NoError(t, err)
	require.Equal(t, "moved body", string(got))

	got, err = os.ReadFile(filepath.Join(root, "sub", "created.php"))
	require.NoError(t, err)
	require.Equal(t, "fresh", string(got))

	// Warning-only paths leave the disk alone.
	got, err = os.ReadFile(filepath.Join(root, "warned.php"))
	require.NoError(t, err)
	require.Equal(t, "untouched", string(got))
}

func TestDiskWriter_ResolvesAgainstRootNotCwd(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "index.php"), "ereg($a);")

	// Run from a different working directory than the scanned root.
	chdir(t, t.TempDir())

	changes := m.NewChangeSet()
	require.NoError(t, changes.AddFileChange("index.php", str("preg_match($a);"), str("ereg($a);")))

	writer := NewDiskWriter(NewLocalSourceFSAdapter())

	applied, err := writer.Apply(context.Background(), m.Path(root), changes)
	require.NoError(t, err)
	require.Equal(t, []AppliedOp{{Path: "index.php", Op: m.OpModified}}, applied)

	got, err := os.ReadFile(filepath.Join(root, "index.php"))
	require.NoError(t, err)
	require.Equal(t, "preg_match($a);", string(got))

	// Nothing lands in the working directory.
	_, err = os.Stat("index.php")
	require.True(t, os.IsNotExist(err))
}

func TestDiskWriter_RenameWithNewContentWritesTarget(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.php"), "old body")

	changes := m.NewChangeSet()
	require.NoError(t, changes.AddFileChange("a.php", str("new body"), str("old body"), "moved/b.php"))

	writer := NewDiskWriter(NewLocalSourceFSAdapter())

	applied, err := writer.Apply(context.Background(), m.Path(root), changes)
	require.NoError(t, err)
	require.Equal(t, []AppliedOp{{Path: "a.php", Target: "moved/b.php", Op: m.OpRenamed}}, applied)

	got, err := os.ReadFile(filepath.Join(root, "moved", "b.php"))
	require.NoError(t, err)
	require.Equal(t, "new body", string(got))

	_, err = os.Stat(filepath.Join(root, "a.php"))
	require.True(t, os.IsNotExist(err))
}

func TestDiskWriter_CancelledContextStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.php"), "body")

	changes := m.NewChangeSet()
	require.NoError(t, changes.Remove("a.php"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := NewDiskWriter(NewLocalSourceFSAdapter())

	applied, err := writer.Apply(ctx, m.Path(root), changes)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, applied)

	_, err = os.Stat(filepath.Join(root, "a.php"))
	require.NoError(t, err)
}
