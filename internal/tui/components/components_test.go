package components

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricCard_TaxDelta(t *testing.T) {
	tests := []struct {
		name     string
		delta    string
		trend    bool
		positive bool
		change   string
	}{
		{"decrease is favourable", "-46.80", true, true, "-CHF 46.80"},
		{"increase is unfavourable", "1200", true, false, "+CHF 1'200.00"},
		{"no change has no trend", "0", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewMoneyCard("Total", decimal.NewFromInt(100)).WithTaxDelta(decimal.RequireFromString(tt.delta))
			if !tt.trend {
				assert.Nil(t, card.Trend)
				return
			}
			if assert.NotNil(t, card.Trend) {
				assert.Equal(t, tt.positive, card.Trend.IsPositive)
				assert.Equal(t, tt.change, card.Trend.Change)
			}
		})
	}
}

func TestMetricCard_Render(t *testing.T) {
	card := NewMoneyCard("Total Tax", decimal.RequireFromString("3385.2")).
		WithDescription("ZH 2024").
		WithWidth(30)

	out := card.Render()
	assert.Contains(t, out, "Total Tax")
	assert.Contains(t, out, "CHF 3'385.20")
	assert.Contains(t, out, "ZH 2024")

	compact := card.WithTaxDelta(decimal.NewFromInt(-10)).RenderCompact()
	assert.Contains(t, compact, "Total Tax: CHF 3'385.20")
	assert.Contains(t, compact, "▼ -CHF 10.00")
}

func TestMetricGrid(t *testing.T) {
	assert.Equal(t, "", MetricGrid(nil, 3))

	cards := []*MetricCard{
		NewMetricCard("A", "1"),
		NewMetricCard("B", "2"),
		NewMetricCard("C", "3"),
	}
	grid := MetricGrid(cards, 2)
	for _, label := range []string{"A", "B", "C"} {
		assert.Contains(t, grid, label)
	}
	assert.NotEmpty(t, MetricGrid(cards, 0))
}

func TestBarChart_BarLength(t *testing.T) {
	chart := NewBarChart("").WithWidth(20).
		Add("ZG", decimal.NewFromInt(1000)).
		Add("GE", decimal.NewFromInt(4000)).
		Add("XX", decimal.NewFromInt(1))

	assert.Equal(t, 20, chart.BarLength(decimal.NewFromInt(4000)))
	assert.Equal(t, 5, chart.BarLength(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, chart.BarLength(decimal.NewFromInt(1)), "tiny values still get a cell")
	assert.Equal(t, 0, chart.BarLength(decimal.Zero))
}

func TestBarChart_Render(t *testing.T) {
	assert.Contains(t, NewBarChart("").Render(), "No data")

	chart := NewBarChart("Totals").WithWidth(8).WithSelected(1).WithHighlight("GE").
		Add("ZG", decimal.NewFromInt(1000)).
		Add("GE", decimal.NewFromInt(4000))

	out := chart.Render()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Totals")
	assert.Contains(t, lines[1], "ZG")
	assert.Contains(t, lines[1], "██ ")
	assert.Contains(t, lines[2], "> GE")
	assert.Contains(t, lines[2], "████████")
	assert.Contains(t, lines[2], "CHF 4'000.00")
}
