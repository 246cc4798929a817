package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"refit.dev/pkg/refit/internal/adapter"
	m "refit.dev/pkg/refit/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayPreview prints the per-file diffs and warnings of a change set.
func (s *SimpleUI) DisplayPreview(ctx context.Context, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	preview, err := renderPreview(changes)
	if err != nil {
		return err
	}

	s.cmd.Print(preview)

	return nil
}

// DisplaySummary prints the summary table of a change set.
func (s *SimpleUI) DisplaySummary(ctx context.Context, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.cmd.Printf("\n%s", renderSummaryTable(changes))

	return nil
}

// DisplayAppliedOps prints the operations performed by a run.
func (s *SimpleUI) DisplayAppliedOps(ctx context.Context, ops []adapter.AppliedOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(ops) == 0 {
		s.cmd.Println("No operations applied.")
		return nil
	}

	for _, op := range ops {
		if op.Target != "" {
			s.cmd.Printf("%-8s %s -> %s\n", op.Op, op.Path, op.Target)
			continue
		}

		s.cmd.Printf("%-8s %s\n", op.Op, op.Path)
	}

	s.cmd.Println(fmt.Sprintf("\n%d operation(s) applied.", len(ops)))

	return nil
}
