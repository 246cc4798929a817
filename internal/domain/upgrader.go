package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"
	"refit.dev/pkg/refit/internal/adapter"
	m "refit.dev/pkg/refit/internal/model"
)

// PlanArgs holds the inputs for planning one migration run.
type PlanArgs struct {
	Root     m.Path
	Rules    []Rule
	Exclude  []string
	Parallel int
}

// Upgrader runs the upgrade rules over a source tree and produces the
// aggregate change set that the renderer and writer consume.
type Upgrader interface {
	Plan(ctx context.Context, args PlanArgs) (*m.ChangeSet, error)
}

type upgrader struct {
	fs adapter.SourceFSAdapter
}

// NewUpgrader constructs an Upgrader backed by the provided filesystem
// adapter.
func NewUpgrader(fs adapter.SourceFSAdapter) Upgrader {
	return &upgrader{fs: fs}
}

// Plan walks the tree under args.Root, runs every rule over each file into
// an independent per-file change set, and folds the per-file sets into one
// aggregate in walk order. Each file's set is built by exactly one worker;
// only the coordinating goroutine mutates the aggregate.
func (u *upgrader) Plan(ctx context.Context, args PlanArgs) (*m.ChangeSet, error) {
	files, err := u.collectFiles(args.Root, args.Exclude)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	slog.Debug("planning migration", "root", args.Root, "files", len(files), "rules", len(args.Rules))

	threads := args.Parallel
	if threads < 1 {
		threads = 1
	}

	perFile := make([]*m.ChangeSet, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, file := range files {
		i, file := i, file

		group.Go(func() error {
			changes, err := u.planFile(groupCtx, args.Root, file, args.Rules)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			perFile[i] = changes

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	aggregate := m.NewChangeSet()

	for _, changes := range perFile {
		if err := foldInto(aggregate, changes); err != nil {
			return nil, err
		}
	}

	return aggregate, nil
}

func (u *upgrader) planFile(ctx context.Context, root, file m.Path, rules []Rule) (*m.ChangeSet, error) {
	raw, err := u.fs.ReadFile(joinPath(root, file))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	contents := string(raw)
	changes := m.NewChangeSet()

	for _, rule := range rules {
		if err := rule.Apply(ctx, file, contents, changes); err != nil {
			slog.Error("rule failed", "rule", rule.Name(), "file", file, "error", err)
			return nil, fmt.Errorf("rule %q: %w", rule.Name(), err)
		}
	}

	return changes, nil
}

// foldInto replays the changes of one per-file set onto the aggregate and
// merges its warnings. Replaying through the aggregate's own mutators
// keeps the duplicate-change guard as the conflict policy between passes.
func foldInto(aggregate, changes *m.ChangeSet) error {
	for _, path := range changes.AffectedFiles() {
		target, err := changes.NewPath(path)
		if err != nil {
			// Warning-only path; MergeWarnings picks it up below.
			continue
		}

		if target == nil {
			if err := aggregate.Remove(path); err != nil {
				return err
			}

			continue
		}

		newContent, err := changes.NewContents(path)
		if err != nil {
			return err
		}

		oldContent, err := changes.OldContents(path)
		if err != nil {
			return err
		}

		if err := aggregate.AddFileChange(path, newContent, oldContent, *target); err != nil {
			return err
		}
	}

	aggregate.MergeWarnings(changes)

	return nil
}

// collectFiles returns the regular files under root in walk order, as
// root-relative paths, minus excluded ones.
func (u *upgrader) collectFiles(root m.Path, exclude []string) ([]m.Path, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, raw := range exclude {
		pattern, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
		}

		patterns = append(patterns, pattern)
	}

	var files []m.Path

	err := u.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := u.fs.RelPath(root, m.Path(path))
		if err != nil {
			return err
		}

		for _, pattern := range patterns {
			if pattern.MatchString(string(rel)) {
				slog.Debug("excluded file", "path", rel)
				return nil
			}
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func joinPath(root, rel m.Path) m.Path {
	return m.Path(filepath.Join(string(root), string(rel)))
}
