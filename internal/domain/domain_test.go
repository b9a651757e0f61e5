package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1560", "1560.00"},
		{"8.875", "8.88"},
		{"19.998", "20.00"},
		{"0.004", "0.00"},
		{"0.005", "0.01"},
		{"16000.0008", "16000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundMoney(dec(tt.in)).StringFixed(2))
		})
	}
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, int64(156000), ToCents(dec("1560")))
	assert.Equal(t, int64(338520), ToCents(dec("3385.2")))
	assert.Equal(t, int64(1), ToCents(dec("0.005")))
	assert.True(t, FromCents(338520).Equal(dec("3385.20")))
}

func TestFormatCHF(t *testing.T) {
	assert.Equal(t, "CHF 0.00", FormatCHF(decimal.Zero))
	assert.Equal(t, "CHF 900.00", FormatCHF(dec("900")))
	assert.Equal(t, "CHF 1'560.00", FormatCHF(dec("1560")))
	assert.Equal(t, "CHF 1'234'567.89", FormatCHF(dec("1234567.891")))
	assert.Equal(t, "-CHF 20.50", FormatCHF(dec("-20.5")))
	assert.Equal(t, "6.77%", FormatPercent(dec("6.7704").Round(2)))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100000", "100000.00", false},
		{"120'000.50", "120000.50", false},
		{"1’250’000", "1250000.00", false},
		{" CHF 75 000 ", "75000.00", false},
		{"1_000", "1000.00", false},
		{"", "", true},
		{"CHF", "", true},
		{"lots", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParseMaritalStatus(t *testing.T) {
	status, err := ParseMaritalStatus("Married")
	require.NoError(t, err)
	assert.Equal(t, Married, status)

	status, err = ParseMaritalStatus(" single ")
	require.NoError(t, err)
	assert.Equal(t, Single, status)

	_, err = ParseMaritalStatus("divorced")
	var statusErr *InvalidMaritalStatusError
	require.True(t, errors.As(err, &statusErr), "unknown status must be rejected")
	assert.Equal(t, "divorced", statusErr.Value)
}

func TestTariffPair_NoSilentFallback(t *testing.T) {
	pair := TariffPair{
		Single:  Tariff{Schedule: Proportional{RatePerMille: dec("10")}},
		Married: Tariff{Schedule: Proportional{RatePerMille: dec("5")}},
	}

	_, err := pair.For(MaritalStatus("widowed"))
	assert.Error(t, err)

	tariff, err := pair.For(Married)
	require.NoError(t, err)
	assert.Equal(t, dec("5").String(), tariff.Schedule.(Proportional).RatePerMille.String())

	_, err = StatusAmounts{}.For(MaritalStatus(""))
	assert.Error(t, err)
}

func TestQuotientTable_Resolve(t *testing.T) {
	table := QuotientTable{
		Single:       dec("1.0"),
		Married:      dec("1.8"),
		SingleParent: dec("1.3"),
		PerChild:     dec("0.5"),
	}

	tests := []struct {
		name     string
		status   MaritalStatus
		children int
		expected string
	}{
		{"single", Single, 0, "1"},
		{"married", Married, 0, "1.8"},
		{"married two children", Married, 2, "2.8"},
		{"single parent one child", Single, 1, "1.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := table.Resolve(tt.status, tt.children)
			require.NoError(t, err)
			assert.True(t, q.Equal(dec(tt.expected)), "expected %s, got %s", tt.expected, q)
		})
	}

	capped := table
	capped.MaxChildren = 3
	q, err := capped.Resolve(Married, 6)
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("3.3")))

	_, err = table.Resolve(Married, -1)
	assert.Error(t, err)
}

func TestScheduleValidation(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  string
	}{
		{
			name: "valid marginal",
			schedule: MarginalBrackets{Brackets: []Bracket{
				{Upper: decPtr("10000"), Rate: dec("0")},
				{Rate: dec("0.05")},
			}},
		},
		{
			name: "decreasing upper bounds",
			schedule: MarginalBrackets{Brackets: []Bracket{
				{Upper: decPtr("10000"), Rate: dec("0.01")},
				{Upper: decPtr("5000"), Rate: dec("0.02")},
				{Rate: dec("0.05")},
			}},
			wantErr: "must exceed previous",
		},
		{
			name: "unbounded in the middle",
			schedule: MarginalBrackets{Brackets: []Bracket{
				{Rate: dec("0.01")},
				{Upper: decPtr("5000"), Rate: dec("0.02")},
			}},
			wantErr: "only the last bracket",
		},
		{
			name: "bounded top bracket",
			schedule: MarginalBrackets{Brackets: []Bracket{
				{Upper: decPtr("5000"), Rate: dec("0.02")},
			}},
			wantErr: "last bracket must be unbounded",
		},
		{
			name: "cumulative gap",
			schedule: CumulativeBrackets{Brackets: []Bracket{
				{Lower: dec("0"), Upper: decPtr("10000"), Rate: dec("0")},
				{Lower: dec("12000"), Rate: dec("0.05")},
			}},
			wantErr: "does not continue",
		},
		{
			name: "cumulative not starting at zero",
			schedule: CumulativeBrackets{Brackets: []Bracket{
				{Lower: dec("100"), Upper: decPtr("10000"), Rate: dec("0")},
				{Lower: dec("10000"), Rate: dec("0.05")},
			}},
			wantErr: "lower bound must be 0",
		},
		{
			name:     "negative proportional rate",
			schedule: Proportional{RatePerMille: dec("-1")},
			wantErr:  "cannot be negative",
		},
		{
			name:     "logarithmic without minimum",
			schedule: LogarithmicFormula{Segments: []LogSegment{{B: dec("0.1")}}},
			wantErr:  "min amount",
		},
		{
			name: "nested dual tariff",
			schedule: DualTariff{
				Canton:    Proportional{RatePerMille: dec("1")},
				Municipal: DualTariff{},
			},
			wantErr: "cannot be dual_tariff",
		},
		{
			name:     "family quotient without base",
			schedule: FamilyQuotient{},
			wantErr:  "requires a base schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Tariff{Schedule: tt.schedule}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplittingRuleValidation(t *testing.T) {
	assert.NoError(t, SplittingRule{Kind: SplitNone}.Validate())
	assert.NoError(t, SplittingRule{Kind: SplitDivideAndDouble, Divisor: dec("1.9")}.Validate())
	assert.Error(t, SplittingRule{Kind: SplitDivideAndDouble}.Validate())
	assert.Error(t, SplittingRule{Kind: SplitIncomeCoefficient, Coefficient: dec("1.5")}.Validate())
	assert.NoError(t, SplittingRule{Kind: SplitIncomeCoefficient, Coefficient: dec("0.52")}.Validate())
	assert.Error(t, SplittingRule{}.Validate())
	assert.Error(t, SplittingRule{Kind: "quarter"}.Validate())
}

func TestCantonTaxConfigValidation(t *testing.T) {
	flat := Tariff{Schedule: Proportional{RatePerMille: dec("10")}}
	valid := CantonTaxConfig{
		Code:             "UR",
		TaxYear:          2024,
		Income:           TariffPair{Single: flat, Married: flat},
		Wealth:           TariffPair{Single: flat, Married: flat},
		MultiplierKind:   MultiplierPercentage,
		CantonMultiplier: dec("1"),
		Splitting:        SplittingRule{Kind: SplitNone},
		WealthSplitting:  SplittingRule{Kind: SplitNone},
	}
	assert.NoError(t, valid.Validate())

	badCode := valid
	badCode.Code = "uri"
	assert.Error(t, badCode.Validate())

	mismatchedDual := valid
	mismatchedDual.MultiplierKind = MultiplierDualTariff
	assert.Error(t, mismatchedDual.Validate())

	quotientWithoutSchedule := valid
	quotientWithoutSchedule.Splitting = SplittingRule{Kind: SplitFamilyQuotient}
	assert.Error(t, quotientWithoutSchedule.Validate())
}

func TestResultCents(t *testing.T) {
	r := CalculationResult{
		SimpleTax:    dec("1560"),
		CantonalTax:  dec("1528.8"),
		MunicipalTax: dec("1856.4"),
		TotalTax:     dec("3385.2"),
	}
	assert.Equal(t, ResultCents{SimpleTax: 156000, CantonalTax: 152880, MunicipalTax: 185640, TotalTax: 338520}, r.Cents())
	assert.False(t, r.IsZero())
	assert.True(t, CalculationResult{}.IsZero())
}

func TestCloneSchedule(t *testing.T) {
	upper := decimal.NewFromInt(10000)
	original := Tariff{
		Schedule: DualTariff{
			Canton: MarginalBrackets{Brackets: []Bracket{{Upper: &upper, Rate: decimal.RequireFromString("0.02")}, {Rate: decimal.RequireFromString("0.05")}}},
			Municipal: FamilyQuotient{
				Base:      CumulativeBrackets{Brackets: []Bracket{{Rate: decimal.RequireFromString("0.01")}}},
				Quotients: QuotientTable{Single: decimal.NewFromInt(1), Married: decimal.RequireFromString("1.8"), SingleParent: decimal.RequireFromString("1.3")},
			},
		},
		FlatRate: &FlatRateOverride{Threshold: decimal.NewFromInt(200000), Rate: decimal.RequireFromString("0.08")},
	}

	clone := original.Clone()
	assert.Equal(t, original, clone)

	dual := clone.Schedule.(DualTariff)
	dual.Canton.(MarginalBrackets).Brackets[0].Rate = decimal.NewFromInt(1)
	*dual.Canton.(MarginalBrackets).Brackets[0].Upper = decimal.NewFromInt(1)
	dual.Municipal.(FamilyQuotient).Base.(CumulativeBrackets).Brackets[0].Rate = decimal.NewFromInt(1)
	clone.FlatRate.Rate = decimal.NewFromInt(1)

	canton := original.Schedule.(DualTariff).Canton.(MarginalBrackets)
	assert.Equal(t, "0.02", canton.Brackets[0].Rate.String())
	assert.Equal(t, "10000", canton.Brackets[0].Upper.String())
	municipal := original.Schedule.(DualTariff).Municipal.(FamilyQuotient).Base.(CumulativeBrackets)
	assert.Equal(t, "0.01", municipal.Brackets[0].Rate.String())
	assert.Equal(t, "0.08", original.FlatRate.Rate.String())

	assert.Nil(t, CloneSchedule(nil))
	assert.Equal(t, Proportional{RatePerMille: decimal.NewFromInt(3)}, CloneSchedule(Proportional{RatePerMille: decimal.NewFromInt(3)}))
}
