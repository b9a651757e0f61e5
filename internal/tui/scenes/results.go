package scenes

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/components"
	"github.com/rgehrsitz/cantontax/internal/tui/tuistyles"
)

// ResultsModel represents the results display scene
type ResultsModel struct {
	result   *domain.CalculationResult
	previous *domain.CalculationResult
	width    int
	height   int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// SetResult shows a new result and keeps the prior one for the trend
func (m *ResultsModel) SetResult(result domain.CalculationResult) {
	m.previous = m.result
	m.result = &result
}

// Result returns the displayed result, if any
func (m *ResultsModel) Result() *domain.CalculationResult {
	return m.result
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	// read-only
	return m, nil
}

// View renders the results scene
func (m *ResultsModel) View() string {
	if m.result == nil {
		return renderNoResultsState()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderResultsHeader(*m.result),
		"",
		renderKeyMetrics(*m.result, m.previous, m.columns()),
		"",
		renderResultsHelp(),
	)
}

func (m *ResultsModel) columns() int {
	if m.width > 0 && m.width < 80 {
		return 2
	}
	return 3
}

func renderNoResultsState() string {
	return `No results to display.

Fill in the household form and press Enter to calculate.

Press ESC to go back.`
}

func renderResultsHeader(r domain.CalculationResult) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tuistyles.ColorPrimary)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Italic(true)

	title := titleStyle.Render(fmt.Sprintf("%s %s tax %d", r.Canton, r.Entity, r.TaxYear))
	subtitle := subtitleStyle.Render(fmt.Sprintf("%s, %d children, %s", r.MaritalStatus, r.Children, domain.FormatCHF(r.Amount)))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

func renderKeyMetrics(r domain.CalculationResult, previous *domain.CalculationResult, columns int) string {
	total := components.NewMoneyCard("Total Tax", r.TotalTax)
	if previous != nil {
		total.WithTaxDelta(r.TotalTax.Sub(previous.TotalTax)).
			WithDescription(fmt.Sprintf("vs. %s %d", previous.Canton, previous.TaxYear))
	}

	cards := []*components.MetricCard{
		total,
		components.NewMetricCard("Effective Rate", domain.FormatPercent(r.EffectiveRatePercent)),
		components.NewMoneyCard("Simple Tax", r.SimpleTax),
		components.NewMoneyCard("Cantonal Tax", r.CantonalTax),
		components.NewMoneyCard("Municipal Tax", r.MunicipalTax),
		components.NewMoneyCard("Taxable Amount", r.TaxableAmount),
	}
	return components.MetricGrid(cards, columns)
}

func renderResultsHelp() string {
	return tuistyles.HelpDescStyle.Render("f edit household • c ranking • esc back")
}
