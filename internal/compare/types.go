package compare

import (
	"fmt"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult is one row of a comparison: a canton or a what-if variant of the
// base request, with its deltas against the base.
type ComparisonResult struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank,omitempty"`

	Result domain.CalculationResult `json:"result"`
	// MarginalRatePercent is the simple-tax rate on the next franc, before multipliers
	MarginalRatePercent decimal.Decimal `json:"marginal_rate_percent"`

	TaxDiffFromBase decimal.Decimal `json:"tax_diff_from_base"`
	TaxPctFromBase  decimal.Decimal `json:"tax_pct_from_base"`
}

// ComparisonSet represents a collection of comparisons against one base
type ComparisonSet struct {
	Title           string             `json:"title"`
	Entity          domain.Entity      `json:"entity"`
	BaseLabel       string             `json:"base_label"`
	BaseResult      *ComparisonResult  `json:"base_result,omitempty"`
	Results         []ComparisonResult `json:"results"`
	Skipped         map[string]string  `json:"skipped,omitempty"`
	Recommendations []string           `json:"recommendations"`
}

// MetricsCalculator derives comparison metrics
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateComparison computes the deltas of result against base
func (mc *MetricsCalculator) CalculateComparison(result, base ComparisonResult) ComparisonResult {
	result.TaxDiffFromBase = result.Result.TotalTax.Sub(base.Result.TotalTax)
	if !base.Result.TotalTax.IsZero() {
		result.TaxPctFromBase = result.TaxDiffFromBase.
			Div(base.Result.TotalTax).
			Mul(domain.Hundred).
			Round(2)
	}
	return result
}

// GenerateRecommendations summarises the cheapest and most expensive alternatives
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	if len(compSet.Results) == 0 {
		return recommendations
	}

	lowest := compSet.Results[0]
	highest := compSet.Results[0]
	for _, r := range compSet.Results[1:] {
		if r.Result.TotalTax.LessThan(lowest.Result.TotalTax) {
			lowest = r
		}
		if r.Result.TotalTax.GreaterThan(highest.Result.TotalTax) {
			highest = r
		}
	}

	recommendations = append(recommendations,
		fmt.Sprintf("Lowest Tax: %s at %s (%s effective)", lowest.Label,
			domain.FormatCHF(lowest.Result.TotalTax), domain.FormatPercent(lowest.Result.EffectiveRatePercent)))

	if highest.Label != lowest.Label {
		spread := highest.Result.TotalTax.Sub(lowest.Result.TotalTax)
		recommendations = append(recommendations,
			fmt.Sprintf("Highest Tax: %s at %s, %s more than %s", highest.Label,
				domain.FormatCHF(highest.Result.TotalTax), domain.FormatCHF(spread), lowest.Label))
	}

	if compSet.BaseResult != nil && lowest.Result.TotalTax.LessThan(compSet.BaseResult.Result.TotalTax) {
		savings := compSet.BaseResult.Result.TotalTax.Sub(lowest.Result.TotalTax)
		recommendations = append(recommendations,
			fmt.Sprintf("Savings: %s saves %s compared to %s", lowest.Label,
				domain.FormatCHF(savings), compSet.BaseLabel))
	}

	return recommendations
}
