// Package model defines the data structures for the refit upgrade pipeline.
package model

import (
	"fmt"
	"maps"
	"slices"
)

// Op classifies what applying a FileChange does to the original file.
type Op string

// Available Op values.
const (
	// OpModified means the file keeps its path and gets new content.
	OpModified Op = "modified"
	// OpNewFile means content is written for a file that had none before.
	OpNewFile Op = "new file"
	// OpRenamed means the file moves to a different path. A move that also
	// carries new content is still reported as renamed.
	OpRenamed Op = "renamed"
	// OpDeleted means the file is removed.
	OpDeleted Op = "deleted"
	// OpNone means no operation is recorded for the path.
	OpNone Op = ""
)

// FileChange records what should happen to one original path.
//
// Target nil marks a deletion; Target equal to the original path marks an
// in-place content change; any other value marks a move. NewContent and
// OldContent are stored as a pair, and only when they actually differ, so
// their presence always means an effective content change.
type FileChange struct {
	Target     *Path
	NewContent *string
	OldContent *string
}

// Warning points a human at a line the automated rules could not resolve.
type Warning struct {
	Path    Path
	Line    int
	Message string
}

// DuplicateChangeError is returned when a second change is recorded for a
// path that already has one. It signals a logic bug in the calling rules:
// two rules attempted to own the same file.
type DuplicateChangeError struct {
	Path Path
}

func (e *DuplicateChangeError) Error() string {
	return fmt.Sprintf("change already recorded for %q", e.Path)
}

// UnknownPathError is returned by accessors queried for a path that has no
// recorded change (or, for warnings, no recorded warnings). Callers are
// expected to guard accessor calls with Operation or the Has* predicates.
type UnknownPathError struct {
	Path Path
}

func (e *UnknownPathError) Error() string {
	return fmt.Sprintf("nothing recorded for %q", e.Path)
}

// ChangeSet is the ledger of file changes and warnings produced by one or
// more upgrade rule passes. It records at most one change per original
// path, per-path warning sequences in call order, and the first-occurrence
// order of every path any mutation ever touched.
//
// A ChangeSet has a single writer; aggregation across passes is explicit
// and sequential.
type ChangeSet struct {
	changes  map[Path]FileChange
	warnings map[Path][]Warning
	affected []Path
	seen     map[Path]struct{}
}

// NewChangeSet creates an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{
		changes:  make(map[Path]FileChange),
		warnings: make(map[Path][]Warning),
		seen:     make(map[Path]struct{}),
	}
}

// touch registers path in the affected-file list, once, in call order.
func (c *ChangeSet) touch(path Path) {
	if _, ok := c.seen[path]; ok {
		return
	}

	c.seen[path] = struct{}{}
	c.affected = append(c.affected, path)
}

// record stores the change for path, guarding the one-change-per-path rule.
func (c *ChangeSet) record(path Path, change FileChange) error {
	if _, ok := c.changes[path]; ok {
		return &DuplicateChangeError{Path: path}
	}

	c.changes[path] = change
	c.touch(path)

	return nil
}

func equalContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// AddFileChange records a content change for path. The optional target
// names where the file ends up; it defaults to path (content change in
// place). Content is kept only when newContent and oldContent differ, so a
// rewrite that produced identical text leaves no effective content change.
//
// Returns a DuplicateChangeError if path already has a recorded change.
func (c *ChangeSet) AddFileChange(path Path, newContent, oldContent *string, target ...Path) error {
	dst := path
	if len(target) > 0 {
		dst = target[0]
	}

	change := FileChange{Target: &dst}
	if !equalContent(newContent, oldContent) {
		change.NewContent = newContent
		change.OldContent = oldContent
	}

	return c.record(path, change)
}

// Move records that path ends up at target with its content untouched.
func (c *ChangeSet) Move(path, target Path) error {
	return c.AddFileChange(path, nil, nil, target)
}

// Remove records that path is deleted.
func (c *ChangeSet) Remove(path Path) error {
	return c.record(path, FileChange{})
}

// AddWarning appends an advisory warning for the given line of path.
// Multiple warnings per path are expected; they are never deduplicated.
func (c *ChangeSet) AddWarning(path Path, line int, message string) {
	c.warnings[path] = append(c.warnings[path], Warning{Path: path, Line: line, Message: message})
	c.touch(path)
}

// AddWarnings appends a batch of warnings for path, in slice order. Only
// the Line and Message of each entry are used; the entries are keyed to
// path.
func (c *ChangeSet) AddWarnings(path Path, warnings []Warning) {
	for _, warning := range warnings {
		c.AddWarning(path, warning.Line, warning.Message)
	}
}

// HasNewContents reports whether path has an effective content change.
// Unknown paths report false. A change whose old and new content were
// equal also reports false.
func (c *ChangeSet) HasNewContents(path Path) bool {
	change, ok := c.changes[path]

	return ok && change.NewContent != nil
}

// HasWarnings reports whether path has at least one recorded warning.
func (c *ChangeSet) HasWarnings(path Path) bool {
	return len(c.warnings[path]) > 0
}

// NewContents returns the recorded new content for path, or nil when the
// change carries none. Returns an UnknownPathError when no change was ever
// recorded for path.
func (c *ChangeSet) NewContents(path Path) (*string, error) {
	change, ok := c.changes[path]
	if !ok {
		return nil, &UnknownPathError{Path: path}
	}

	return change.NewContent, nil
}

// OldContents returns the recorded old content for path, or nil when the
// change carries none. Returns an UnknownPathError when no change was ever
// recorded for path.
func (c *ChangeSet) OldContents(path Path) (*string, error) {
	change, ok := c.changes[path]
	if !ok {
		return nil, &UnknownPathError{Path: path}
	}

	return change.OldContent, nil
}

// NewPath returns the recorded target for path. A nil target signals
// deletion. Returns an UnknownPathError when no change was ever recorded
// for path.
func (c *ChangeSet) NewPath(path Path) (*Path, error) {
	change, ok := c.changes[path]
	if !ok {
		return nil, &UnknownPathError{Path: path}
	}

	return change.Target, nil
}

// Operation classifies the recorded change for path. Deletion wins over
// rename, rename wins over content classification. Paths with no recorded
// change, or with no effective content change and an unchanged target,
// classify as OpNone.
func (c *ChangeSet) Operation(path Path) Op {
	change, ok := c.changes[path]

	switch {
	case !ok:
		return OpNone
	case change.Target == nil:
		return OpDeleted
	case *change.Target != path:
		return OpRenamed
	case change.NewContent != nil:
		if change.OldContent != nil {
			return OpModified
		}

		return OpNewFile
	default:
		return OpNone
	}
}

// WarningsForPath returns the warnings recorded for path, in insertion
// order. Returns an UnknownPathError when path has no warnings.
func (c *ChangeSet) WarningsForPath(path Path) ([]Warning, error) {
	warnings, ok := c.warnings[path]
	if !ok || len(warnings) == 0 {
		return nil, &UnknownPathError{Path: path}
	}

	return slices.Clone(warnings), nil
}

// MergeWarnings copies every warning from other into c, keeping other's
// per-path order and appending after any warnings c already holds for the
// same path. Paths are visited in other's affected-file order and
// registered in c's affected-file list. Changes are not merged.
//
// Merging is not idempotent: merging the same source twice duplicates its
// warnings. other is not mutated.
func (c *ChangeSet) MergeWarnings(other *ChangeSet) {
	for _, path := range other.affected {
		warnings := other.warnings[path]
		if len(warnings) == 0 {
			continue
		}

		c.warnings[path] = append(c.warnings[path], warnings...)
		c.touch(path)
	}
}

// AllChanges returns a copy of the full change ledger keyed by original
// path.
func (c *ChangeSet) AllChanges() map[Path]FileChange {
	return maps.Clone(c.changes)
}

// AffectedFiles returns every path ever touched by a mutation call, in
// first-occurrence order, without duplicates.
func (c *ChangeSet) AffectedFiles() []Path {
	return slices.Clone(c.affected)
}
