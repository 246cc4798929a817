package controller

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	m "refit.dev/pkg/refit/internal/model"
)

// pagerThreshold is the preview line count above which the TUI switches
// from plain printing to the scrollable pager.
const pagerThreshold = 40

// TUI implements UI using Bubble Tea for interactive display. Short output
// is printed directly; long previews open in a scrollable pager.
type TUI struct {
	*SimpleUI
	cmd *cobra.Command
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd), cmd: cmd}
}

// DisplayPreview shows the change set preview, paginating when it does not
// fit on one screen.
func (t *TUI) DisplayPreview(ctx context.Context, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	preview, err := renderPreview(changes)
	if err != nil {
		return err
	}

	if strings.Count(preview, "\n") <= pagerThreshold {
		t.cmd.Print(preview)
		return nil
	}

	program := tea.NewProgram(
		newPagerModel(preview),
		tea.WithOutput(t.cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// pagerModel is the Bubble Tea model wrapping the preview in a viewport.
type pagerModel struct {
	viewport viewport.Model
	content  string
	ready    bool
}

func newPagerModel(content string) pagerModel {
	return pagerModel{content: content}
}

func (p pagerModel) Init() tea.Cmd {
	return nil
}

func (p pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 1

		if !p.ready {
			p.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			p.viewport.SetContent(p.content)
			p.ready = true
		} else {
			p.viewport.Width = msg.Width
			p.viewport.Height = msg.Height - footerHeight
		}

		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)

	return p, cmd
}

func (p pagerModel) View() string {
	if !p.ready {
		return "loading preview..."
	}

	return p.viewport.View() + "\n" + pagerFooter()
}

func pagerFooter() string {
	return hunkStyle.Render("↑/k: up | ↓/j: down | q: quit")
}
