package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Rank",
		"Scenario",
		"Type",
		"Description",
		"Canton",
		"Tax Year",
		"Status",
		"Children",
		"Taxable Amount",
		"Simple Tax",
		"Cantonal Tax",
		"Municipal Tax",
		"Total Tax",
		"Effective Rate %",
		"Marginal Rate %",
		"Tax Diff from Base",
		"Tax % Change",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil && compSet.BaseResult.Rank == 0 {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for _, r := range compSet.Results {
		kind := "alternative"
		if compSet.BaseResult != nil && compSet.BaseResult.Rank > 0 && r.Label == compSet.BaseLabel {
			kind = "base"
		}
		if err := writer.Write(cf.formatRow(&r, kind)); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, rowType string) []string {
	res := result.Result
	return []string{
		formatInt(result.Rank),
		result.Label,
		rowType,
		result.Description,
		res.Canton,
		formatInt(res.TaxYear),
		string(res.MaritalStatus),
		formatInt(res.Children),
		res.TaxableAmount.StringFixed(2),
		res.SimpleTax.StringFixed(2),
		res.CantonalTax.StringFixed(2),
		res.MunicipalTax.StringFixed(2),
		res.TotalTax.StringFixed(2),
		res.EffectiveRatePercent.StringFixed(2),
		result.MarginalRatePercent.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
		result.TaxPctFromBase.StringFixed(2),
	}
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
