package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/cantontax/internal/tui/tuimsg"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.householdModel.SetSize(msg.Width, msg.Height)
		m.resultsModel.SetSize(msg.Width, msg.Height)
		m.rankingModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case tuimsg.ErrorMsg:
		m.err = msg.Err
		return m, nil

	case tuimsg.CalculateRequestedMsg:
		m.loading = true
		m.loadingMessage = "Calculating..."
		return m, calculateCmd(m.calcEngine, msg.Entity, msg.Request)

	case tuimsg.RankRequestedMsg:
		m.loading = true
		m.loadingMessage = "Ranking cantons..."
		return m, rankCmd(m.compareEngine, msg.Entity, msg.Request)

	case tuimsg.CalculationCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.resultsModel.SetResult(msg.Result)
		return m.navigate(SceneResults)

	case tuimsg.RankingCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.rankingModel.SetRanking(msg.Ranking)
		return m.navigate(SceneRanking)
	}

	return m.updateCurrentScene(msg)
}

func (m Model) navigate(scene Scene) (tea.Model, tea.Cmd) {
	return m, func() tea.Msg {
		return NavigateMsg{Scene: scene}
	}
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// any key dismisses an error
	if m.err != nil {
		m.err = nil
		return m, nil
	}

	if msg.String() == "esc" {
		if m.currentScene != SceneHousehold {
			target := m.previousScene
			if target == m.currentScene {
				target = SceneHousehold
			}
			return m.navigate(target)
		}
		return m, nil
	}

	if msg.String() == "f1" {
		return m.navigate(SceneHelp)
	}

	// single-letter shortcuts would swallow typing in the form
	if m.currentScene == SceneHousehold {
		return m.updateCurrentScene(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		return m.navigate(SceneHelp)
	case "f":
		return m.navigate(SceneHousehold)
	case "r":
		return m.navigate(SceneResults)
	case "c":
		return m.navigate(SceneRanking)
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneHousehold:
		m.householdModel, cmd = m.householdModel.Update(msg)
	case SceneResults:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	case SceneRanking:
		m.rankingModel, cmd = m.rankingModel.Update(msg)
	}
	return m, cmd
}
