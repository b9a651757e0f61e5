package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/cantons"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompareEngine() *CompareEngine {
	registry := cantons.Default()
	return NewCompareEngine(calculation.NewEngine(registry), registry)
}

func zurichSingle() calculation.Request {
	return calculation.Request{
		Canton:        "ZH",
		TaxYear:       2024,
		MaritalStatus: domain.Single,
		Amount:        d("50000"),
	}
}

func TestNewCompareEngine(t *testing.T) {
	ce := newTestCompareEngine()

	assert.NotNil(t, ce.CalcEngine)
	assert.NotNil(t, ce.Cantons)
	assert.NotNil(t, ce.MetricsCalculator)
	assert.NotEmpty(t, ce.TemplateRegistry.List())
	assert.NotEmpty(t, ce.TransformRegistry.List())
}

func TestRankCantons_AllCantons(t *testing.T) {
	ce := newTestCompareEngine()

	set, err := ce.RankCantons(context.Background(), RankOptions{Request: zurichSingle()})
	require.NoError(t, err)

	assert.Equal(t, "Income tax by canton, 2024", set.Title)
	assert.Equal(t, domain.EntityIncome, set.Entity)

	// Valais needs the commune's coefficient and indexation
	require.Contains(t, set.Skipped, "VS")
	assert.Len(t, set.Skipped, 1)
	assert.Len(t, set.Results, 25)

	for i, r := range set.Results {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEmpty(t, r.Description, "canton %s should carry its name", r.Label)
		if i > 0 {
			prev := set.Results[i-1].Result.TotalTax
			assert.True(t, prev.LessThanOrEqual(r.Result.TotalTax), "ranking out of order at %s", r.Label)
		}
	}

	require.NotNil(t, set.BaseResult)
	assert.Equal(t, "ZH", set.BaseLabel)
	assert.Equal(t, "Zürich", set.BaseResult.Description)
	assert.Equal(t, "3385.20", set.BaseResult.Result.TotalTax.StringFixed(2))
	assert.Equal(t, "5.00", set.BaseResult.MarginalRatePercent.StringFixed(2))

	for _, r := range set.Results {
		want := r.Result.TotalTax.Sub(set.BaseResult.Result.TotalTax)
		assert.True(t, want.Equal(r.TaxDiffFromBase), "delta for %s", r.Label)
	}

	require.NotEmpty(t, set.Recommendations)
	assert.Contains(t, set.Recommendations[0], set.Results[0].Label)
}

func TestRankCantons_Subset(t *testing.T) {
	ce := newTestCompareEngine()

	req := zurichSingle()
	req.MunicipalMultiplier = dp("1.5")
	set, err := ce.RankCantons(context.Background(), RankOptions{
		Request: req,
		Cantons: []string{" zh ", "AI", "ZH"},
	})
	require.NoError(t, err)
	require.Len(t, set.Results, 2)
	assert.Nil(t, set.Skipped)

	labels := []string{set.Results[0].Label, set.Results[1].Label}
	assert.ElementsMatch(t, []string{"ZH", "AI"}, labels)

	// the override only applies to the base canton: 1560 × 1.5
	zh := set.BaseResult
	require.NotNil(t, zh)
	assert.Equal(t, "2340.00", zh.Result.MunicipalTax.StringFixed(2))
}

func TestRankCantons_ValaisWithFactors(t *testing.T) {
	ce := newTestCompareEngine()

	req := calculation.Request{
		Canton:              "VS",
		TaxYear:             2024,
		MaritalStatus:       domain.Single,
		Amount:              d("100000"),
		MunicipalMultiplier: dp("1.2"),
		MunicipalIndexation: dp("1.1"),
	}
	set, err := ce.RankCantons(context.Background(), RankOptions{Request: req, Cantons: []string{"VS"}})
	require.NoError(t, err)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "18328.00", set.Results[0].Result.TotalTax.StringFixed(2))
	assert.Equal(t, "VS", set.BaseLabel)
}

func TestRankCantons_Wealth(t *testing.T) {
	ce := newTestCompareEngine()

	req := zurichSingle()
	req.Amount = d("1000000")
	set, err := ce.RankCantons(context.Background(), RankOptions{
		Entity:  "WEALTH",
		Request: req,
		Cantons: []string{"ZH"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EntityWealth, set.Entity)
	assert.Equal(t, "Wealth tax by canton, 2024", set.Title)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "2132.03", set.Results[0].Result.TotalTax.StringFixed(2))
}

func TestRankCantons_PaddedBaseCanton(t *testing.T) {
	ce := newTestCompareEngine()

	req := zurichSingle()
	req.Canton = " zh "
	req.MunicipalMultiplier = dp("1.5")
	set, err := ce.RankCantons(context.Background(), RankOptions{Request: req, Cantons: []string{"ZH", "ZG"}})
	require.NoError(t, err)

	assert.Equal(t, "ZH", set.BaseLabel)
	require.NotNil(t, set.BaseResult)
	assert.Equal(t, "2340.00", set.BaseResult.Result.MunicipalTax.StringFixed(2))
	assert.Equal(t, "3868.80", set.BaseResult.Result.TotalTax.StringFixed(2))

	for _, r := range set.Results {
		assert.True(t, r.TaxDiffFromBase.Equal(r.Result.TotalTax.Sub(d("3868.80"))), "delta for %s", r.Label)
		if r.Label == "ZG" {
			assert.False(t, r.Result.MunicipalTax.Equal(d("2340")), "Zurich override must not reach Zug")
		}
	}
}

func TestRankCantons_MarginalRateFollowsSplitting(t *testing.T) {
	ce := newTestCompareEngine()

	married := calculation.Request{Canton: "GE", TaxYear: 2024, MaritalStatus: domain.Married, Amount: d("100000")}
	set, err := ce.RankCantons(context.Background(), RankOptions{Request: married, Cantons: []string{"GE", "NW"}})
	require.NoError(t, err)

	rates := map[string]string{}
	for _, r := range set.Results {
		rates[r.Label] = r.MarginalRatePercent.StringFixed(2)
	}
	// Geneva halves 100,000 into the 16% bracket; Nidwalden divides by 1.9 and doubles
	assert.Equal(t, "16.00", rates["GE"])
	assert.Equal(t, "2.11", rates["NW"])

	single := married
	single.MaritalStatus = domain.Single
	set, err = ce.RankCantons(context.Background(), RankOptions{Request: single, Cantons: []string{"GE"}})
	require.NoError(t, err)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "20.00", set.Results[0].MarginalRatePercent.StringFixed(2))
}

func TestRankCantons_Errors(t *testing.T) {
	ce := newTestCompareEngine()

	t.Run("unknown canton", func(t *testing.T) {
		_, err := ce.RankCantons(context.Background(), RankOptions{Request: zurichSingle(), Cantons: []string{"XX"}})
		var unknown *domain.UnknownCantonError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "XX", unknown.Code)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := ce.RankCantons(context.Background(), RankOptions{Entity: "property", Request: zurichSingle()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown entity")
	})

	t.Run("unsupported year", func(t *testing.T) {
		req := zurichSingle()
		req.TaxYear = 1999
		_, err := ce.RankCantons(context.Background(), RankOptions{Request: req, Cantons: []string{"ZH"}})
		var unsupported *domain.UnsupportedTaxYearError
		assert.True(t, errors.As(err, &unsupported))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ce.RankCantons(ctx, RankOptions{Request: zurichSingle()})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no calculation engine", func(t *testing.T) {
		empty := &CompareEngine{Cantons: cantons.Default()}
		_, err := empty.RankCantons(context.Background(), RankOptions{Request: zurichSingle()})
		assert.Error(t, err)
	})
}

func TestCompareScenarios(t *testing.T) {
	ce := newTestCompareEngine()

	set, err := ce.CompareScenarios(context.Background(), ScenarioOptions{
		Base:      zurichSingle(),
		Templates: []string{"next_year", "MARRY"},
		Specs:     []string{"adjust_amount:percent=0"},
	})
	require.NoError(t, err)

	require.NotNil(t, set.BaseResult)
	assert.Equal(t, "base", set.BaseLabel)
	assert.Equal(t, "ZH 2024, single, CHF 50'000.00", set.BaseResult.Description)
	assert.Equal(t, "What-if comparison for ZH 2024, single, CHF 50'000.00", set.Title)
	require.Len(t, set.Results, 3)

	nextYear := set.Results[0]
	assert.Equal(t, "next_year", nextYear.Label)
	assert.Equal(t, 2025, nextYear.Result.TaxYear)
	assert.Equal(t, "3338.40", nextYear.Result.TotalTax.StringFixed(2))
	assert.Equal(t, "-46.80", nextYear.TaxDiffFromBase.StringFixed(2))
	assert.Equal(t, "-1.38", nextYear.TaxPctFromBase.StringFixed(2))

	marry := set.Results[1]
	assert.Equal(t, domain.Married, marry.Result.MaritalStatus)
	assert.True(t, marry.Result.TotalTax.LessThan(set.BaseResult.Result.TotalTax))

	unchanged := set.Results[2]
	assert.Equal(t, "adjust_amount:percent=0", unchanged.Label)
	assert.True(t, unchanged.TaxDiffFromBase.IsZero())

	assert.Contains(t, set.Recommendations[len(set.Recommendations)-1], "Savings: marry")
}

func TestCompareScenarios_Errors(t *testing.T) {
	ce := newTestCompareEngine()

	tests := []struct {
		name    string
		options ScenarioOptions
		want    string
	}{
		{"unknown template", ScenarioOptions{Base: zurichSingle(), Templates: []string{"emigrate"}}, "template emigrate not found"},
		{"bad spec", ScenarioOptions{Base: zurichSingle(), Specs: []string{"move_canton"}}, "invalid transform"},
		{"unknown transform", ScenarioOptions{Base: zurichSingle(), Specs: []string{"teleport:to=moon"}}, "unknown transform"},
		{"bad base", ScenarioOptions{Base: calculation.Request{Canton: "XX", TaxYear: 2024, MaritalStatus: domain.Single, Amount: d("1")}}, "base scenario"},
		{"scenario fails", ScenarioOptions{Base: zurichSingle(), Specs: []string{"move_canton:canton=VS"}}, "failed to calculate scenario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ce.CompareScenarios(context.Background(), tt.options)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
