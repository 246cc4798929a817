package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	m "refit.dev/pkg/refit/internal/model"
)

// AppliedOp records one filesystem operation performed while applying a
// change set. Target is empty for deletions and in-place rewrites.
type AppliedOp struct {
	Path   m.Path
	Target m.Path
	Op     m.Op
}

// ChangeSetWriter applies a change set to the filesystem.
type ChangeSetWriter interface {
	// Apply walks the change set in affected-file order and performs each
	// recorded operation. The ledger holds root-relative paths; every
	// filesystem call resolves them against root. It returns the
	// operations actually performed, including those completed before an
	// error stopped the run, with their root-relative paths.
	Apply(ctx context.Context, root m.Path, changes *m.ChangeSet) ([]AppliedOp, error)
}

type diskWriter struct {
	fs SourceFSAdapter
}

// NewDiskWriter constructs a ChangeSetWriter backed by the provided
// filesystem adapter.
func NewDiskWriter(fs SourceFSAdapter) ChangeSetWriter {
	return &diskWriter{fs: fs}
}

const writeFileMode = 0o644

// joinRoot resolves a root-relative ledger path against the scanned root.
func joinRoot(root, rel m.Path) m.Path {
	return m.Path(filepath.Join(string(root), string(rel)))
}

func (w *diskWriter) Apply(ctx context.Context, root m.Path, changes *m.ChangeSet) ([]AppliedOp, error) {
	var applied []AppliedOp

	for _, path := range changes.AffectedFiles() {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		op := changes.Operation(path)
		if op == m.OpNone {
			// Warning-only paths and no-op rewrites leave the disk alone.
			continue
		}

		performed, err := w.applyOne(changes, root, path, op)
		if err != nil {
			slog.Error("failed to apply change", "path", path, "op", op, "error", err)
			return applied, fmt.Errorf("apply %s to %s: %w", op, path, err)
		}

		slog.Debug("applied change", "path", path, "op", op, "target", performed.Target)
		applied = append(applied, performed)
	}

	return applied, nil
}

func (w *diskWriter) applyOne(changes *m.ChangeSet, root, path m.Path, op m.Op) (AppliedOp, error) {
	switch op {
	case m.OpDeleted:
		return AppliedOp{Path: path, Op: op}, w.fs.Remove(joinRoot(root, path))

	case m.OpRenamed:
		target, err := changes.NewPath(path)
		if err != nil {
			return AppliedOp{}, err
		}

		return AppliedOp{Path: path, Target: *target, Op: op}, w.move(changes, root, path, *target)

	case m.OpModified, m.OpNewFile:
		content, err := changes.NewContents(path)
		if err != nil {
			return AppliedOp{}, err
		}

		return AppliedOp{Path: path, Op: op}, w.fs.WriteFile(joinRoot(root, path), []byte(*content), writeFileMode)

	default:
		return AppliedOp{}, fmt.Errorf("unsupported operation %q", op)
	}
}

// move relocates path to target, both root-relative. When the change also
// carries rewritten content, the new content is written at the target and
// the original is removed instead of a plain rename.
func (w *diskWriter) move(changes *m.ChangeSet, root, path, target m.Path) error {
	if !changes.HasNewContents(path) {
		return w.fs.Rename(joinRoot(root, path), joinRoot(root, target))
	}

	content, err := changes.NewContents(path)
	if err != nil {
		return err
	}

	if err := w.fs.WriteFile(joinRoot(root, target), []byte(*content), writeFileMode); err != nil {
		return err
	}

	return w.fs.Remove(joinRoot(root, path))
}
