// Package controller provides output controllers for presenting migration
// previews and results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"refit.dev/pkg/refit/internal/adapter"
	m "refit.dev/pkg/refit/internal/model"
)

// UI defines the interface for displaying migration output.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// DisplayPreview renders the per-file diffs and warnings of a change
	// set.
	DisplayPreview(ctx context.Context, changes *m.ChangeSet) error
	// DisplaySummary renders the summary table of a change set.
	DisplaySummary(ctx context.Context, changes *m.ChangeSet) error
	// DisplayAppliedOps renders the operations performed by a run.
	DisplayAppliedOps(ctx context.Context, ops []adapter.AppliedOp) error
}

// IsTTY reports whether the given file is attached to a terminal.
func IsTTY(output *os.File) bool {
	return term.IsTerminal(int(output.Fd()))
}

// NewUI selects the UI implementation: interactive TUI on a terminal,
// plain output otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}
