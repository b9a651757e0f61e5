package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderLoading()
	}

	if m.err != nil {
		return m.renderError()
	}

	var content string
	switch m.currentScene {
	case SceneHousehold:
		content = m.householdModel.View()
	case SceneResults:
		content = m.resultsModel.View()
	case SceneRanking:
		content = m.rankingModel.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar, status bar, and main container
func (m Model) renderApp(content string) string {
	titleBar := m.renderTitleBar()
	statusBar := m.renderStatusBar()

	contentHeight := m.height - 4 // title (2) + status (1) + padding (1)
	if contentHeight < 0 {
		contentHeight = 0
	}

	contentContainer := lipgloss.NewStyle().
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleBar,
		contentContainer,
		statusBar,
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("Cantonal Tax Calculator")
	breadcrumb := SubtitleStyle.Render(m.currentScene.String())
	if r := m.resultsModel.Result(); r != nil && m.currentScene == SceneResults {
		breadcrumb = SubtitleStyle.Render(fmt.Sprintf("%s / %s %d", m.currentScene, r.Canton, r.TaxYear))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, breadcrumb)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	var shortcuts []string
	if m.currentScene == SceneHousehold {
		shortcuts = []string{
			formatShortcut("enter", "calculate"),
			formatShortcut("ctrl+r", "rank"),
			formatShortcut("f1", "help"),
			formatShortcut("ctrl+c", "quit"),
		}
	} else {
		shortcuts = []string{
			formatShortcut("f", "household"),
			formatShortcut("r", "results"),
			formatShortcut("c", "ranking"),
			formatShortcut("?", "help"),
			formatShortcut("q", "quit"),
		}
	}

	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

// renderLoading renders a loading message
func (m Model) renderLoading() string {
	message := m.loadingMessage
	if message == "" {
		message = "Loading..."
	}

	content := BorderStyle.Render(fmt.Sprintf("⠋ %s", message))
	return m.renderApp(content)
}

// renderError renders an error message
func (m Model) renderError() string {
	content := ErrorStyle.Render(
		fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err.Error()),
	)
	return m.renderApp(content)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	rows := [][2]string{
		{"Tab / ↓", "Next form field"},
		{"Shift+Tab / ↑", "Previous form field"},
		{"Enter", "Calculate the household"},
		{"Ctrl+R", "Rank all cantons for the household"},
		{"f", "Household form"},
		{"r", "Last result"},
		{"c", "Canton ranking"},
		{"? / F1", "This help"},
		{"ESC", "Go back"},
		{"q / Ctrl+C", "Quit"},
	}

	var sb strings.Builder
	sb.WriteString("KEYBOARD SHORTCUTS\n\n")
	for _, row := range rows {
		sb.WriteString(HelpKeyStyle.Width(16).Render(row[0]) + HelpDescStyle.Render(row[1]) + "\n")
	}
	sb.WriteString("\nValais needs the commune's coefficient and indexation in the form.\n")
	sb.WriteString("Amounts accept Swiss grouping, e.g. 120'000.")

	return BorderStyle.Render(sb.String())
}
