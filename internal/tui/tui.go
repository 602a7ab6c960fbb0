// Package tui renders scan findings in an interactive terminal browser.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

type browser struct {
	findings []model.Finding
	cursor   int
}

func (b browser) Init() tea.Cmd { return nil }

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return b, tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.findings)-1 {
			b.cursor++
		}
	}
	return b, nil
}

func (b browser) View() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rustdefend: %d finding(s)  (j/k move, q quit)\n\n", len(b.findings))
	for i, f := range b.findings {
		marker := "  "
		if i == b.cursor {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%-8s [%s] %s:%d %s\n", marker, f.DetectorID, f.Severity, f.File, f.Line, f.Name)
	}
	if len(b.findings) > 0 {
		f := b.findings[b.cursor]
		fmt.Fprintf(&sb, "\n%s\n", f.Message)
		if f.Snippet != "" {
			fmt.Fprintf(&sb, "    %s\n", strings.TrimSpace(f.Snippet))
		}
		if f.Recommendation != "" {
			fmt.Fprintf(&sb, "fix: %s\n", f.Recommendation)
		}
	}
	return sb.String()
}

// Run launches the findings browser and blocks until the user quits.
func Run(findings []model.Finding) error {
	p := tea.NewProgram(browser{findings: findings})
	_, err := p.Run()
	return err
}
