package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter prints one line per result
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	if report.Title != "" {
		fmt.Fprintln(&buf, strings.ToUpper(report.Title))
		fmt.Fprintln(&buf, strings.Repeat("=", 72))
	}
	if len(report.Results) == 0 {
		fmt.Fprintln(&buf, "No results.")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "%-6s %-6s %-8s %16s %16s %16s %8s\n", "Canton", "Year", "Entity", "Cantonal", "Municipal", "Total", "Eff.")
	fmt.Fprintln(&buf, strings.Repeat("-", 72))
	for _, r := range report.Results {
		fmt.Fprintf(&buf, "%-6s %-6d %-8s %16s %16s %16s %8s\n",
			r.Canton, r.TaxYear, r.Entity,
			domain.FormatCHF(r.CantonalTax),
			domain.FormatCHF(r.MunicipalTax),
			domain.FormatCHF(r.TotalTax),
			domain.FormatPercent(r.EffectiveRatePercent))
	}
	if len(report.Results) > 1 {
		fmt.Fprintln(&buf, strings.Repeat("-", 72))
		fmt.Fprintf(&buf, "%-22s %50s\n", "TOTAL", domain.FormatCHF(report.TotalTax()))
	}
	return buf.Bytes(), nil
}

// ConsoleVerboseFormatter renders the full breakdown of each result
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "verbose" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "=================================================================================")
	if report.Title != "" {
		fmt.Fprintln(&buf, strings.ToUpper(report.Title))
	} else {
		fmt.Fprintln(&buf, "CANTONAL TAX CALCULATION")
	}
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for i, r := range report.Results {
		fmt.Fprintf(&buf, "RESULT %d: %s %s TAX %d\n", i+1, r.Canton, strings.ToUpper(string(r.Entity)), r.TaxYear)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		fmt.Fprintln(&buf, "HOUSEHOLD:")
		fmt.Fprintf(&buf, "  Marital Status:         %s\n", r.MaritalStatus)
		fmt.Fprintf(&buf, "  Children:               %d\n", r.Children)
		fmt.Fprintf(&buf, "  Amount:                 %s\n", domain.FormatCHF(r.Amount))
		if !r.TaxableAmount.Equal(r.Amount) {
			fmt.Fprintf(&buf, "  Taxable Amount:         %s\n", domain.FormatCHF(r.TaxableAmount))
		}
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, "TAX BREAKDOWN:")
		fmt.Fprintf(&buf, "  Simple Tax:             %s\n", domain.FormatCHF(r.SimpleTax))
		fmt.Fprintf(&buf, "  Cantonal Tax:           %s%s\n", domain.FormatCHF(r.CantonalTax), shareOf(r.CantonalTax, r.TotalTax))
		fmt.Fprintf(&buf, "  Municipal Tax:          %s%s\n", domain.FormatCHF(r.MunicipalTax), shareOf(r.MunicipalTax, r.TotalTax))
		fmt.Fprintf(&buf, "  TOTAL TAX:              %s\n", domain.FormatCHF(r.TotalTax))
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, "RATES:")
		fmt.Fprintf(&buf, "  Effective Rate:         %s\n", domain.FormatPercent(r.EffectiveRatePercent))
		if r.SimpleTax.IsPositive() {
			fmt.Fprintf(&buf, "  Combined Multiplier:    %s\n", r.TotalTax.Div(r.SimpleTax).StringFixed(4))
		}
		fmt.Fprintf(&buf, "  Monthly Equivalent:     %s\n", domain.FormatCHF(r.TotalTax.Div(decimal.NewFromInt(12))))
		fmt.Fprintln(&buf)
	}

	if len(report.Results) > 1 {
		fmt.Fprintln(&buf, "GRAND TOTAL:")
		fmt.Fprintln(&buf, "------------")
		fmt.Fprintf(&buf, "  All Results:            %s\n", domain.FormatCHF(report.TotalTax()))
	}

	return buf.Bytes(), nil
}

// shareOf renders part as a percentage of total, or nothing for a zero total
func shareOf(part, total decimal.Decimal) string {
	if total.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (%s)", domain.FormatPercent(part.Div(total).Mul(domain.Hundred)))
}
