package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTariff = `
code: ur
name: Uri
tax_years: [2024, 2025]
multiplier:
  kind: percentage
  canton: 1.00
  municipality: Altdorf
  municipal: 0.95
splitting:
  kind: divide_by_n_and_double
  divisor: 1.9
income:
  single:
    kind: marginal
    brackets:
      - {upper: 10000, rate: 0}
      - {upper: 50000, rate: 0.04}
      - {rate: 0.06}
    flat_rate: {threshold: 500000, rate: 0.06}
  married:
    kind: proportional
    rate_per_mille: 70
    round_down_to: 100
wealth:
  thresholds: {single: 100000, married: 200000}
  single:
    kind: marginal
    brackets:
      - {upper: 500000, per_mille: 1.5}
      - {per_mille: 2}
`

func TestTariffParser_Parse(t *testing.T) {
	parser := NewTariffParser()
	configs, err := parser.Parse([]byte(validTariff), "ur.yaml")
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, 2024, configs[0].TaxYear)
	assert.Equal(t, 2025, configs[1].TaxYear)

	cfg := configs[0]
	assert.Equal(t, "UR", cfg.Code, "code should be normalised to upper case")
	assert.Equal(t, "Uri", cfg.Name)
	assert.Equal(t, domain.MultiplierPercentage, cfg.MultiplierKind)
	assert.Equal(t, "1.00", cfg.CantonMultiplier.StringFixed(2))
	assert.Equal(t, "0.95", cfg.DefaultMunicipalMultiplier.StringFixed(2))
	assert.Equal(t, "Altdorf", cfg.DefaultMunicipality)
	assert.Equal(t, domain.SplitDivideAndDouble, cfg.Splitting.Kind)
	assert.Equal(t, "1.9", cfg.Splitting.Divisor.String())
	assert.Equal(t, domain.SplitNone, cfg.WealthSplitting.Kind, "wealth splitting defaults to none")

	single, ok := cfg.Income.Single.Schedule.(domain.MarginalBrackets)
	require.True(t, ok)
	require.Len(t, single.Brackets, 3)
	assert.Nil(t, single.Brackets[2].Upper)
	require.NotNil(t, cfg.Income.Single.FlatRate)
	assert.Equal(t, "500000", cfg.Income.Single.FlatRate.Threshold.String())

	married, ok := cfg.Income.Married.Schedule.(domain.Proportional)
	require.True(t, ok)
	assert.Equal(t, "70", married.RatePerMille.String())
	assert.Equal(t, "100", cfg.Income.Married.RoundDownTo.String())

	wealth, ok := cfg.Wealth.Married.Schedule.(domain.MarginalBrackets)
	require.True(t, ok, "married wealth schedule defaults to the single one")
	assert.True(t, wealth.Brackets[0].Rate.Equal(decimal.RequireFromString("0.0015")), "per_mille is converted to a fraction")
	assert.Equal(t, "200000", cfg.WealthThresholds.Married.String())
}

func TestTariffParser_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "code: [unclosed",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing code",
			yaml:    "tax_years: [2024]",
			wantErr: "canton code is required",
		},
		{
			name:    "missing tax years",
			yaml:    "code: UR",
			wantErr: "at least one tax year",
		},
		{
			name: "missing splitting",
			yaml: `
code: UR
tax_years: [2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
income:
  single: {kind: proportional, rate_per_mille: 10}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "splitting rule is required",
		},
		{
			name: "decreasing upper bounds",
			yaml: `
code: UR
tax_years: [2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single:
    kind: marginal
    brackets:
      - {upper: 20000, rate: 0.01}
      - {upper: 10000, rate: 0.02}
      - {rate: 0.03}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "must exceed previous",
		},
		{
			name: "non-contiguous cumulative table",
			yaml: `
code: ZH
tax_years: [2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single:
    kind: cumulative
    brackets:
      - {lower: 0, upper: 7000, rate: 0, base: 0}
      - {lower: 8000, rate: 0.02, base: 0}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "does not continue",
		},
		{
			name: "rate and per mille",
			yaml: `
code: UR
tax_years: [2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single:
    kind: marginal
    brackets:
      - {rate: 0.01, per_mille: 10}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "unknown schedule kind",
			yaml: `
code: UR
tax_years: [2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single: {kind: progressive}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "unknown schedule kind",
		},
		{
			name: "unknown multiplier kind",
			yaml: `
code: UR
tax_years: [2024]
multiplier: {kind: steuerfuss, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single: {kind: proportional, rate_per_mille: 10}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "unknown multiplier kind",
		},
		{
			name: "duplicate tax year",
			yaml: `
code: UR
tax_years: [2024, 2024]
multiplier: {kind: percentage, canton: 1, municipal: 1}
splitting: {kind: none}
income:
  single: {kind: proportional, rate_per_mille: 10}
wealth:
  single: {kind: proportional, rate_per_mille: 1}
`,
			wantErr: "listed twice",
		},
	}

	parser := NewTariffParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml), "test.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var tariffErr *domain.InvalidTariffError
			require.True(t, errors.As(err, &tariffErr), "errors should carry the tariff source")
			assert.Equal(t, "test.yaml", tariffErr.Source)
		})
	}
}

func TestTariffParser_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ur.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validTariff), 0o644))

	configs, err := NewTariffParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, configs, 2)

	_, err = NewTariffParser().LoadFromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}
