package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/scenes"
	"github.com/rgehrsitz/cantontax/internal/tui/tuimsg"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Engines
	calcEngine    *calculation.Engine
	compareEngine *compare.CompareEngine

	// Scene models
	householdModel *scenes.HouseholdModel
	resultsModel   *scenes.ResultsModel
	rankingModel   *scenes.RankingModel

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// NewModel creates a new application model
func NewModel(calcEngine *calculation.Engine, compareEngine *compare.CompareEngine, taxYear int) Model {
	return Model{
		currentScene:   SceneHousehold,
		calcEngine:     calcEngine,
		compareEngine:  compareEngine,
		householdModel: scenes.NewHouseholdModel(taxYear),
		resultsModel:   scenes.NewResultsModel(),
		rankingModel:   scenes.NewRankingModel(),
		width:          80,
		height:         24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return nil
}

// CurrentScene returns the active scene
func (m Model) CurrentScene() Scene {
	return m.currentScene
}

// Err returns the error being displayed, if any
func (m Model) Err() error {
	return m.err
}

// calculateCmd runs one calculation off the update loop
func calculateCmd(engine *calculation.Engine, entity domain.Entity, req calculation.Request) tea.Cmd {
	return func() tea.Msg {
		var (
			result domain.CalculationResult
			err    error
		)
		if entity == domain.EntityWealth {
			result, err = engine.CalculateWealth(req)
		} else {
			result, err = engine.CalculateIncome(req)
		}
		return tuimsg.CalculationCompleteMsg{Result: result, Err: err}
	}
}

// rankCmd ranks every canton for the request
func rankCmd(engine *compare.CompareEngine, entity domain.Entity, req calculation.Request) tea.Cmd {
	return func() tea.Msg {
		set, err := engine.RankCantons(context.Background(), compare.RankOptions{
			Entity:  entity,
			Request: req,
		})
		return tuimsg.RankingCompleteMsg{Ranking: set, Err: err}
	}
}
