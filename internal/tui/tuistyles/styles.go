package tuistyles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/cantontax/internal/domain"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("#D52B1E") // Swiss red
	ColorSecondary = lipgloss.Color("#5A6C7D")
	ColorAccent    = lipgloss.Color("#F2A900")
	ColorSuccess   = lipgloss.Color("#2E9E5B")
	ColorDanger    = lipgloss.Color("#C0392B")
	ColorInfo      = lipgloss.Color("#2D7DD2")

	ColorBackground = lipgloss.Color("#1E1E1E")
	ColorForeground = lipgloss.Color("#EDEDED")
	ColorMuted      = lipgloss.Color("#8A8A8A")
	ColorBorder     = lipgloss.Color("#4A4A4A")
)

// Base styles
var (
	AppStyle = lipgloss.NewStyle().Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorForeground).
			Background(ColorPrimary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(ColorBorder).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	ActiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(1, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	UnselectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorForeground)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorForeground)

	MetricPositiveStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	MetricNegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	ParameterLabelStyle = lipgloss.NewStyle().
				Width(22).
				Foreground(ColorSecondary)

	HelpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	InfoStyle = lipgloss.NewStyle().Foreground(ColorInfo)

	TableHeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	TableCellStyle      = lipgloss.NewStyle().Foreground(ColorForeground)
	TableHighlightStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	BarStyle     = lipgloss.NewStyle().Foreground(ColorPrimary)
	BaseBarStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// MetricTrendStyle colours a change. Lower tax is good news.
func MetricTrendStyle(isPositive bool) lipgloss.Style {
	if isPositive {
		return MetricPositiveStyle
	}
	return MetricNegativeStyle
}

// TrendIndicator returns an arrow for a favourable or unfavourable change
func TrendIndicator(isPositive bool) string {
	if isPositive {
		return "▼"
	}
	return "▲"
}

// FormatCurrency renders an amount in francs
func FormatCurrency(amount decimal.Decimal) string {
	return domain.FormatCHF(amount)
}
