package tui

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHousehold Scene = iota
	SceneResults
	SceneRanking
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHousehold:
		return "Household"
	case SceneResults:
		return "Results"
	case SceneRanking:
		return "Ranking"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
