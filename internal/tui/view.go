package tui

import (
	"fmt"

	"github.com/IceWhaleTech/forgeterm"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // Green

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // Red

	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")) // Cyan

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func promptFor(s *forgeterm.Session) string {
	return fmt.Sprintf("user@forge:%s$", s.DisplayCwd())
}

func (m AppModel) prompt() string {
	return m.Prompt
}

func (m AppModel) View() string {
	if !m.Ready {
		return "\n  Starting terminal...\n"
	}

	footer := "↑/↓ history • pgup/pgdown scroll • ctrl+c quit"
	if m.Running {
		footer = "running... • ctrl+c quit"
	}

	return fmt.Sprintf("%s\n%s %s\n%s",
		m.Viewport.View(),
		promptStyle.Render(m.prompt()),
		m.Input.View(),
		footerStyle.Render(footer),
	)
}
