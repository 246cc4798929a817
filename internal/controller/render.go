package controller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	m "refit.dev/pkg/refit/internal/model"
)

const diffContextLines = 3

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// renderPreview renders the human-readable preview of a change set: one
// block per affected file with the operation kind, a unified diff when the
// content changes, and any warnings. Accessors are only called behind the
// corresponding predicates.
func renderPreview(changes *m.ChangeSet) (string, error) {
	var b strings.Builder

	for _, path := range changes.AffectedFiles() {
		op := changes.Operation(path)
		if op == m.OpNone && !changes.HasWarnings(path) {
			continue
		}

		if err := renderFile(&b, changes, path, op); err != nil {
			return "", err
		}
	}

	if b.Len() == 0 {
		return "No changes.\n", nil
	}

	return b.String(), nil
}

func renderFile(b *strings.Builder, changes *m.ChangeSet, path m.Path, op m.Op) error {
	b.WriteString(headerStyle.Render(fileHeading(changes, path, op)))
	b.WriteString("\n")

	if changes.HasNewContents(path) {
		if err := renderDiff(b, changes, path); err != nil {
			return err
		}
	}

	if changes.HasWarnings(path) {
		warnings, err := changes.WarningsForPath(path)
		if err != nil {
			return err
		}

		for _, warning := range warnings {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  warning line %d: %s", warning.Line, warning.Message)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	return nil
}

func fileHeading(changes *m.ChangeSet, path m.Path, op m.Op) string {
	if op == m.OpRenamed {
		// Operation already guarantees a non-nil target here.
		target, err := changes.NewPath(path)
		if err == nil && target != nil {
			return fmt.Sprintf("%-8s %s -> %s", op, path, *target)
		}
	}

	if op == m.OpNone {
		return string(path)
	}

	return fmt.Sprintf("%-8s %s", op, path)
}

func renderDiff(b *strings.Builder, changes *m.ChangeSet, path m.Path) error {
	newContent, err := changes.NewContents(path)
	if err != nil {
		return err
	}

	oldContent, err := changes.OldContents(path)
	if err != nil {
		return err
	}

	oldText := ""
	if oldContent != nil {
		oldText = *oldContent
	}

	toFile := path
	if target, err := changes.NewPath(path); err == nil && target != nil {
		toFile = *target
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(*newContent),
		FromFile: string(path),
		ToFile:   string(toFile),
		Context:  diffContextLines,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", path, err)
	}

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		b.WriteString(styleDiffLine(line))
		b.WriteString("\n")
	}

	return nil
}

func styleDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return headerStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return delStyle.Render(line)
	default:
		return line
	}
}

// renderSummaryTable renders the per-file summary of a change set.
func renderSummaryTable(changes *m.ChangeSet) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Operation", "Warnings"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	changeCount := 0
	warningCount := 0

	for _, path := range changes.AffectedFiles() {
		op := changes.Operation(path)

		warnings := 0
		if changes.HasWarnings(path) {
			if list, err := changes.WarningsForPath(path); err == nil {
				warnings = len(list)
			}
		}

		if op == m.OpNone && warnings == 0 {
			continue
		}

		if op != m.OpNone {
			changeCount++
		}

		warningCount += warnings

		table.Append([]string{string(path), string(op), fmt.Sprintf("%d", warnings)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(changes.AffectedFiles())),
		fmt.Sprintf("%d changes", changeCount),
		fmt.Sprintf("%d", warningCount),
	})

	table.Render()

	return tableBuffer.String()
}
