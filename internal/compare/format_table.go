package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table of the comparison
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(strings.ToUpper(compSet.Title) + "\n")
	sb.WriteString(strings.Repeat("=", 100) + "\n")
	if compSet.BaseResult != nil {
		sb.WriteString(fmt.Sprintf("Base: %s (%s)\n", compSet.BaseLabel, compSet.BaseResult.Description))
	}
	sb.WriteString("\n")

	labelWidth := 28
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%4s  %-*s %*s %*s %*s %8s %8s %*s\n",
		"#",
		labelWidth, "Scenario",
		numWidth, "Cantonal",
		numWidth, "Municipal",
		numWidth, "Total",
		"Eff.", "Marg.",
		numWidth, "vs. Base"))
	sb.WriteString(strings.Repeat("-", 100) + "\n")

	if compSet.BaseResult != nil && compSet.BaseResult.Rank == 0 {
		sb.WriteString(tf.formatRow(compSet.BaseResult, labelWidth, numWidth, true))
		sb.WriteString(strings.Repeat("-", 100) + "\n")
	}
	for i := range compSet.Results {
		isBase := compSet.BaseResult != nil && compSet.BaseResult.Rank > 0 && compSet.Results[i].Label == compSet.BaseLabel
		sb.WriteString(tf.formatRow(&compSet.Results[i], labelWidth, numWidth, isBase))
	}
	sb.WriteString(strings.Repeat("=", 100) + "\n")

	if len(compSet.Skipped) > 0 {
		sb.WriteString("\nSKIPPED\n")
		skipped := lo.Keys(compSet.Skipped)
		sort.Strings(skipped)
		for _, code := range skipped {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", code, compSet.Skipped[code]))
		}
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nSUMMARY\n")
		sb.WriteString(strings.Repeat("-", 100) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
	}

	return sb.String()
}

// formatRow formats a single result row
func (tf *TableFormatter) formatRow(result *ComparisonResult, labelWidth, numWidth int, isBase bool) string {
	label := result.Label
	if result.Description != "" && result.Rank > 0 {
		label += " " + result.Description
	}
	if isBase {
		label += " (base)"
	}

	rank := ""
	if result.Rank > 0 {
		rank = fmt.Sprintf("%d", result.Rank)
	}

	delta := ""
	if !isBase {
		delta = tf.formatDelta(result.TaxDiffFromBase)
	}

	return fmt.Sprintf("%4s  %-*s %*s %*s %*s %8s %8s %*s\n",
		rank,
		labelWidth, tf.truncate(label, labelWidth),
		numWidth, domain.FormatCHF(result.Result.CantonalTax),
		numWidth, domain.FormatCHF(result.Result.MunicipalTax),
		numWidth, domain.FormatCHF(result.Result.TotalTax),
		domain.FormatPercent(result.Result.EffectiveRatePercent),
		domain.FormatPercent(result.MarginalRatePercent),
		numWidth, delta)
}

// formatDelta renders a signed CHF difference
func (tf *TableFormatter) formatDelta(d decimal.Decimal) string {
	if d.IsZero() {
		return "="
	}
	if d.IsPositive() {
		return "+" + domain.FormatCHF(d)
	}
	return domain.FormatCHF(d)
}

// truncate truncates a string to maxLen runes
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatCompact creates a compact single-line summary of the comparison
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	if compSet.BaseResult != nil {
		sb.WriteString(fmt.Sprintf("Base %s: %s | ", compSet.BaseLabel, domain.FormatCHF(compSet.BaseResult.Result.TotalTax)))
	}

	for i, r := range compSet.Results {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", r.Label, domain.FormatCHF(r.Result.TotalTax)))
	}

	return sb.String()
}
