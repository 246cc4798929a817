package domain

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"refit.dev/pkg/refit/internal/adapter"
	m "refit.dev/pkg/refit/internal/model"
)

// fakeFS serves an in-memory file tree so Plan can be exercised without
// touching the disk.
type fakeFS struct {
	order []string
	files map[string]string
}

func newFakeFS(entries ...[2]string) *fakeFS {
	f := &fakeFS{files: make(map[string]string)}

	for _, entry := range entries {
		f.order = append(f.order, entry[0])
		f.files[entry[0]] = entry[1]
	}

	return f
}

type fakeFileInfo struct {
	name string
	size int64
}

func (i fakeFileInfo) Name() string       { return i.name }
func (i fakeFileInfo) Size() int64        { return i.size }
func (i fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (i fakeFileInfo) IsDir() bool        { return false }
func (i fakeFileInfo) Sys() any           { return nil }

func (f *fakeFS) Walk(_ m.Path, fn adapter.FilepathWalkFunc) error {
	for _, path := range f.order {
		info := fakeFileInfo{name: filepath.Base(path), size: int64(len(f.files[path]))}
		if err := fn(path, info, nil); err != nil {
			return err
		}
	}

	return nil
}

func (f *fakeFS) ReadFile(path m.Path) ([]byte, error) {
	content, ok := f.files[string(path)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return []byte(content), nil
}

func (f *fakeFS) WriteFile(_ m.Path, _ []byte, _ os.FileMode) error { return nil }
func (f *fakeFS) Rename(_, _ m.Path) error                          { return nil }
func (f *fakeFS) Remove(_ m.Path) error                             { return nil }

func (f *fakeFS) FileInfo(path m.Path) (os.FileInfo, error) {
	content, ok := f.files[string(path)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return fakeFileInfo{name: filepath.Base(string(path)), size: int64(len(content))}, nil
}

func (f *fakeFS) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

func testRules(t *testing.T) []Rule {
	t.Helper()

	rules, err := CompileRules([]adapter.RuleSpec{
		{
			Name:    "ereg-to-preg",
			Kind:    adapter.RuleKindRewrite,
			Match:   `\.php$`,
			Replace: []adapter.ReplaceSpec{{From: `ereg\(`, To: "preg_match("}},
			Caution: []adapter.CautionSpec{{Pattern: "mysql_query", Message: "manual migration needed"}},
		},
		{
			Name:  "drop-cache",
			Kind:  adapter.RuleKindDelete,
			Match: `^cache/`,
		},
		{
			Name:  "mysite-to-app",
			Kind:  adapter.RuleKindRename,
			Match: `^mysite/(.*)$`,
			To:    "app/$1",
		},
	})
	require.NoError(t, err)

	return rules
}

func TestUpgrader_PlanBuildsAggregate(t *testing.T) {
	fakeFS := newFakeFS(
		[2]string{"index.php", "ereg($a, $b);"},
		[2]string{"cache/stale.php", "old"},
		[2]string{"db.php", "mysql_query($q);"},
		[2]string{"mysite/page.php", "plain"},
		[2]string{"readme.md", "docs"},
	)

	upgrader := NewUpgrader(fakeFS)

	changes, err := upgrader.Plan(context.Background(), PlanArgs{
		Root:  ".",
		Rules: testRules(t),
	})
	require.NoError(t, err)

	require.Equal(t, m.OpModified, changes.Operation("index.php"))
	require.Equal(t, m.OpDeleted, changes.Operation("cache/stale.php"))
	require.Equal(t, m.OpRenamed, changes.Operation("mysite/page.php"))
	require.Equal(t, m.OpNone, changes.Operation("readme.md"))

	require.True(t, changes.HasWarnings("db.php"))
	require.False(t, changes.HasNewContents("db.php"))

	// Aggregate order follows walk order of the affected files.
	require.Equal(t, []m.Path{"index.php", "cache/stale.php", "db.php", "mysite/page.php"}, changes.AffectedFiles())
}

func TestUpgrader_PlanParallelKeepsWalkOrder(t *testing.T) {
	entries := make([][2]string, 0, 20)
	want := make([]m.Path, 0, 20)

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		path := "src/" + name + ".php"
		entries = append(entries, [2]string{path, "ereg(x);"})
		want = append(want, m.Path(path))
	}

	upgrader := NewUpgrader(newFakeFS(entries...))

	changes, err := upgrader.Plan(context.Background(), PlanArgs{
		Root:     ".",
		Rules:    testRules(t),
		Parallel: 4,
	})
	require.NoError(t, err)
	require.Equal(t, want, changes.AffectedFiles())
}

func TestUpgrader_PlanExcludesFiles(t *testing.T) {
	fakeFS := newFakeFS(
		[2]string{"index.php", "ereg($a);"},
		[2]string{"thirdparty/lib.php", "ereg($b);"},
	)

	upgrader := NewUpgrader(fakeFS)

	changes, err := upgrader.Plan(context.Background(), PlanArgs{
		Root:    ".",
		Rules:   testRules(t),
		Exclude: []string{`^thirdparty/`},
	})
	require.NoError(t, err)
	require.Equal(t, []m.Path{"index.php"}, changes.AffectedFiles())
}

func TestUpgrader_PlanInvalidExcludePattern(t *testing.T) {
	upgrader := NewUpgrader(newFakeFS())

	_, err := upgrader.Plan(context.Background(), PlanArgs{
		Root:    ".",
		Exclude: []string{"("},
	})
	require.Error(t, err)
}

func TestUpgrader_ConflictingRulesSurfaceDuplicateChange(t *testing.T) {
	rules, err := CompileRules([]adapter.RuleSpec{
		{Name: "drop-all", Kind: adapter.RuleKindDelete, Match: `\.php$`},
		{Name: "move-all", Kind: adapter.RuleKindRename, Match: `^(.*)\.php$`, To: "$1.inc"},
	})
	require.NoError(t, err)

	upgrader := NewUpgrader(newFakeFS([2]string{"a.php", "body"}))

	_, err = upgrader.Plan(context.Background(), PlanArgs{Root: ".", Rules: rules})
	require.Error(t, err)

	var dup *m.DuplicateChangeError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, m.Path("a.php"), dup.Path)
}

func TestFoldInto_MergesChangesAndWarnings(t *testing.T) {
	aggregate := m.NewChangeSet()
	aggregate.AddWarning("shared.php", 1, "from earlier pass")

	pass := m.NewChangeSet()
	content := "new"
	old := "old"
	require.NoError(t, pass.AddFileChange("changed.php", &content, &old))
	pass.AddWarning("shared.php", 2, "from later pass")

	require.NoError(t, foldInto(aggregate, pass))

	require.Equal(t, m.OpModified, aggregate.Operation("changed.php"))

	warnings, err := aggregate.WarningsForPath("shared.php")
	require.NoError(t, err)
	require.Equal(t, "from earlier pass", warnings[0].Message)
	require.Equal(t, "from later pass", warnings[1].Message)
}

func TestFoldInto_ConflictingChangeRejected(t *testing.T) {
	aggregate := m.NewChangeSet()
	require.NoError(t, aggregate.Remove("owned.php"))

	pass := m.NewChangeSet()
	require.NoError(t, pass.Move("owned.php", "elsewhere.php"))

	err := foldInto(aggregate, pass)

	var dup *m.DuplicateChangeError
	require.ErrorAs(t, err, &dup)
}
