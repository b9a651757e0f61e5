package domain

import (
	"github.com/shopspring/decimal"
)

// CalculationResult is the outcome of one income or wealth tax calculation.
// All monetary fields are rounded to two decimals.
type CalculationResult struct {
	Canton        string        `json:"canton" yaml:"canton"`
	TaxYear       int           `json:"tax_year" yaml:"tax_year"`
	Entity        Entity        `json:"entity" yaml:"entity"`
	MaritalStatus MaritalStatus `json:"marital_status" yaml:"marital_status"`
	Children      int           `json:"children" yaml:"children"`

	// Amount is the caller's amount; TaxableAmount is what the tariff was applied to
	// (net wealth minus the threshold for wealth tax).
	Amount        decimal.Decimal `json:"amount" yaml:"amount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount" yaml:"taxable_amount"`

	SimpleTax            decimal.Decimal `json:"simple_tax" yaml:"simple_tax"`
	CantonalTax          decimal.Decimal `json:"cantonal_tax" yaml:"cantonal_tax"`
	MunicipalTax         decimal.Decimal `json:"municipal_tax" yaml:"municipal_tax"`
	TotalTax             decimal.Decimal `json:"total_tax" yaml:"total_tax"`
	EffectiveRatePercent decimal.Decimal `json:"effective_rate_percent" yaml:"effective_rate_percent"`
}

// IsZero reports whether no tax is owed
func (r CalculationResult) IsZero() bool {
	return r.TotalTax.IsZero() && r.SimpleTax.IsZero()
}

// ResultCents is the integer-cent form stored by persistence layers
type ResultCents struct {
	SimpleTax    int64 `json:"simple_tax_cents"`
	CantonalTax  int64 `json:"cantonal_tax_cents"`
	MunicipalTax int64 `json:"municipal_tax_cents"`
	TotalTax     int64 `json:"total_tax_cents"`
}

// Cents converts the monetary fields to integer cents
func (r CalculationResult) Cents() ResultCents {
	return ResultCents{
		SimpleTax:    ToCents(r.SimpleTax),
		CantonalTax:  ToCents(r.CantonalTax),
		MunicipalTax: ToCents(r.MunicipalTax),
		TotalTax:     ToCents(r.TotalTax),
	}
}
