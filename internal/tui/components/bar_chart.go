package components

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/tuistyles"
)

// Bar is one labelled value in a BarChart
type Bar struct {
	Label string
	Value decimal.Decimal
}

// BarChart draws horizontal bars scaled to the largest value
type BarChart struct {
	Title     string
	Bars      []Bar
	Width     int // width of the longest bar in cells
	Highlight string
	Selected  int
}

// NewBarChart creates a chart with a default bar width
func NewBarChart(title string) *BarChart {
	return &BarChart{
		Title:    title,
		Width:    30,
		Selected: -1,
	}
}

// Add appends a bar
func (c *BarChart) Add(label string, value decimal.Decimal) *BarChart {
	c.Bars = append(c.Bars, Bar{Label: label, Value: value})
	return c
}

// WithWidth sets the maximum bar width
func (c *BarChart) WithWidth(width int) *BarChart {
	c.Width = width
	return c
}

// WithHighlight marks the bar with the given label
func (c *BarChart) WithHighlight(label string) *BarChart {
	c.Highlight = label
	return c
}

// WithSelected marks the cursor row
func (c *BarChart) WithSelected(index int) *BarChart {
	c.Selected = index
	return c
}

// BarLength returns the number of cells for value, at least one for any positive value
func (c *BarChart) BarLength(value decimal.Decimal) int {
	maxVal := decimal.Zero
	for _, b := range c.Bars {
		if b.Value.GreaterThan(maxVal) {
			maxVal = b.Value
		}
	}
	if !maxVal.IsPositive() || !value.IsPositive() || c.Width <= 0 {
		return 0
	}
	cells := int(value.Div(maxVal).Mul(decimal.NewFromInt(int64(c.Width))).Round(0).IntPart())
	if cells < 1 {
		cells = 1
	}
	return cells
}

// Render returns the chart
func (c *BarChart) Render() string {
	if len(c.Bars) == 0 {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var sb strings.Builder
	if c.Title != "" {
		sb.WriteString(tuistyles.TableHeaderStyle.Render(c.Title) + "\n")
	}

	for i, b := range c.Bars {
		n := c.BarLength(b.Value)
		pad := c.Width - n
		if pad < 0 {
			pad = 0
		}
		bar := strings.Repeat("█", n) + strings.Repeat(" ", pad)
		style := tuistyles.BarStyle
		if b.Label == c.Highlight {
			style = tuistyles.BaseBarStyle
		}
		cursor := "  "
		if i == c.Selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-4s %s %s", cursor, b.Label, style.Render(bar), domain.FormatCHF(b.Value))
		if i == c.Selected {
			line = tuistyles.SelectedItemStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
