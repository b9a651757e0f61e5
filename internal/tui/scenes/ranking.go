package scenes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/components"
	"github.com/rgehrsitz/cantontax/internal/tui/tuistyles"
)

// RankingModel shows cantons ordered by total tax
type RankingModel struct {
	ranking  *compare.ComparisonSet
	selected int
	width    int
	height   int
}

// NewRankingModel creates an empty ranking scene
func NewRankingModel() *RankingModel {
	return &RankingModel{}
}

// SetRanking replaces the displayed ranking and moves the cursor to the base canton
func (m *RankingModel) SetRanking(set *compare.ComparisonSet) {
	m.ranking = set
	m.selected = 0
	if set == nil {
		return
	}
	if _, idx, ok := lo.FindIndexOf(set.Results, func(r compare.ComparisonResult) bool {
		return r.Label == set.BaseLabel
	}); ok {
		m.selected = idx
	}
}

// Selected returns the highlighted row, if any
func (m *RankingModel) Selected() (compare.ComparisonResult, bool) {
	if m.ranking == nil || m.selected < 0 || m.selected >= len(m.ranking.Results) {
		return compare.ComparisonResult{}, false
	}
	return m.ranking.Results[m.selected], true
}

// SetSize updates the scene dimensions
func (m *RankingModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles cursor movement
func (m *RankingModel) Update(msg tea.Msg) (*RankingModel, tea.Cmd) {
	if m.ranking == nil {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.selected < len(m.ranking.Results)-1 {
				m.selected++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("g"))):
			m.selected = 0
		case key.Matches(msg, key.NewBinding(key.WithKeys("G"))):
			m.selected = lo.Max([]int{len(m.ranking.Results) - 1, 0})
		}
	}
	return m, nil
}

// View renders the ranking
func (m *RankingModel) View() string {
	if m.ranking == nil {
		return "No ranking yet.\n\nPress Ctrl+R in the household form to rank all cantons."
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary)
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.ranking.Title) + "\n\n")

	chart := components.NewBarChart("").
		WithWidth(m.barWidth()).
		WithHighlight(m.ranking.BaseLabel).
		WithSelected(m.selected)
	for _, r := range m.ranking.Results {
		chart.Add(r.Label, r.Result.TotalTax)
	}
	content.WriteString(chart.Render() + "\n")

	if r, ok := m.Selected(); ok {
		content.WriteString("\n" + m.renderDetail(r) + "\n")
	}

	if len(m.ranking.Skipped) > 0 {
		codes := lo.Keys(m.ranking.Skipped)
		sort.Strings(codes)
		content.WriteString("\n" + tuistyles.SubtitleStyle.Render("Skipped: "+strings.Join(codes, ", ")+" (municipal factors required)") + "\n")
	}

	content.WriteString("\n" + tuistyles.HelpDescStyle.Render("↑/↓ select • g/G top/bottom • f edit household • esc back"))
	return content.String()
}

func (m *RankingModel) renderDetail(r compare.ComparisonResult) string {
	card := components.NewMoneyCard(fmt.Sprintf("#%d %s %s", r.Rank, r.Label, r.Description), r.Result.TotalTax).
		WithWidth(40).
		WithDescription(fmt.Sprintf("effective %s • marginal %s",
			domain.FormatPercent(r.Result.EffectiveRatePercent),
			domain.FormatPercent(r.MarginalRatePercent)))
	if m.ranking.BaseResult != nil && r.Label != m.ranking.BaseLabel {
		card.WithTaxDelta(r.TaxDiffFromBase)
	}
	return card.Render()
}

func (m *RankingModel) barWidth() int {
	if m.width <= 0 {
		return 30
	}
	return lo.Clamp(m.width-30, 10, 60)
}
