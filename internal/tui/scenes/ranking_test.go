package scenes

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/domain"
)

func rankingRow(rank int, code, total string) compare.ComparisonResult {
	return compare.ComparisonResult{
		Label:       code,
		Description: code + " canton",
		Rank:        rank,
		Result: domain.CalculationResult{
			Canton:   code,
			TotalTax: decimal.RequireFromString(total),
		},
	}
}

func sampleSet() *compare.ComparisonSet {
	base := rankingRow(2, "ZH", "3385.20")
	return &compare.ComparisonSet{
		Title:      "Income tax by canton, 2024",
		BaseLabel:  "ZH",
		BaseResult: &base,
		Results: []compare.ComparisonResult{
			rankingRow(1, "ZG", "1500.00"),
			base,
			rankingRow(3, "GE", "5000.00"),
		},
		Skipped: map[string]string{"VS": "missing coefficient"},
	}
}

func TestRankingModel_Empty(t *testing.T) {
	m := NewRankingModel()
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No ranking yet")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, cmd)
	assert.NotNil(t, m)
}

func TestRankingModel_SelectsBase(t *testing.T) {
	m := NewRankingModel()
	m.SetRanking(sampleSet())

	r, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "ZH", r.Label)
}

func TestRankingModel_Navigation(t *testing.T) {
	m := NewRankingModel()
	m.SetRanking(sampleSet())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, _ := m.Selected()
	assert.Equal(t, "GE", r.Label)

	// stays at the bottom
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, _ = m.Selected()
	assert.Equal(t, "GE", r.Label)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	r, _ = m.Selected()
	assert.Equal(t, "ZG", r.Label)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	r, _ = m.Selected()
	assert.Equal(t, "ZG", r.Label)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	r, _ = m.Selected()
	assert.Equal(t, "GE", r.Label)
}

func TestRankingModel_View(t *testing.T) {
	m := NewRankingModel()
	m.SetSize(100, 40)
	m.SetRanking(sampleSet())

	view := m.View()
	assert.Contains(t, view, "Income tax by canton, 2024")
	assert.Contains(t, view, "CHF 1'500.00")
	assert.Contains(t, view, "CHF 5'000.00")
	assert.Contains(t, view, "#2 ZH ZH canton")
	assert.Contains(t, view, "Skipped: VS")
}

func TestResultsModel(t *testing.T) {
	m := NewResultsModel()
	assert.Nil(t, m.Result())
	assert.Contains(t, m.View(), "No results to display")

	first := domain.CalculationResult{Canton: "ZH", TaxYear: 2024, Entity: domain.EntityIncome, MaritalStatus: domain.Single,
		TotalTax: decimal.RequireFromString("3385.20"), EffectiveRatePercent: decimal.RequireFromString("6.77")}
	m.SetResult(first)
	view := m.View()
	assert.Contains(t, view, "ZH income tax 2024")
	assert.Contains(t, view, "CHF 3'385.20")
	assert.Contains(t, view, "6.77%")

	second := first
	second.TaxYear = 2025
	second.TotalTax = decimal.RequireFromString("3338.40")
	m.SetResult(second)
	view = m.View()
	assert.Equal(t, 2025, m.Result().TaxYear)
	assert.Contains(t, view, "-CHF 46.80")
	assert.Contains(t, view, "vs. ZH 2024")
}
