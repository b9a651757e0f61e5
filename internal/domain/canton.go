package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaritalStatus selects the tariff and splitting treatment of a household
type MaritalStatus string

const (
	Single  MaritalStatus = "single"
	Married MaritalStatus = "married"
)

// ParseMaritalStatus accepts "single" or "married" (case-insensitive) and rejects
// everything else.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch MaritalStatus(strings.ToLower(strings.TrimSpace(s))) {
	case Single:
		return Single, nil
	case Married:
		return Married, nil
	}
	return "", &InvalidMaritalStatusError{Value: s}
}

// Valid reports whether the status is one of the known values
func (m MaritalStatus) Valid() bool {
	return m == Single || m == Married
}

// Entity is the taxed object
type Entity string

const (
	EntityIncome Entity = "income"
	EntityWealth Entity = "wealth"
)

// MultiplierKind is the way a canton turns simple tax into canton and municipal tax
type MultiplierKind string

const (
	MultiplierPercentage MultiplierKind = "percentage"
	MultiplierUnits      MultiplierKind = "units"
	MultiplierCentimes   MultiplierKind = "centimes_additionnels"
	MultiplierDualIndex  MultiplierKind = "dual_indexation"
	MultiplierNone       MultiplierKind = "none"
	MultiplierDualTariff MultiplierKind = "dual_tariff"
)

// Valid reports whether the kind is known
func (k MultiplierKind) Valid() bool {
	switch k {
	case MultiplierPercentage, MultiplierUnits, MultiplierCentimes, MultiplierDualIndex, MultiplierNone, MultiplierDualTariff:
		return true
	}
	return false
}

// SplittingKind is the married-couple / family treatment applied around the evaluator
type SplittingKind string

const (
	SplitNone              SplittingKind = "none"
	SplitHalveAndDouble    SplittingKind = "divide_by_2_and_double"
	SplitDivideAndDouble   SplittingKind = "divide_by_n_and_double"
	SplitDivideNoDoubling  SplittingKind = "divide_by_n_no_doubling"
	SplitIncomeCoefficient SplittingKind = "income_coefficient"
	SplitFamilyQuotient    SplittingKind = "family_quotient"
)

// SplittingRule carries the splitting kind and its constant
type SplittingRule struct {
	Kind        SplittingKind   `json:"kind"`
	Divisor     decimal.Decimal `json:"divisor,omitempty"`
	Coefficient decimal.Decimal `json:"coefficient,omitempty"`
}

// Validate checks that the rule has the constant its kind needs
func (r SplittingRule) Validate() error {
	switch r.Kind {
	case SplitNone, SplitHalveAndDouble, SplitFamilyQuotient:
		return nil
	case SplitDivideAndDouble, SplitDivideNoDoubling:
		if !r.Divisor.IsPositive() {
			return fmt.Errorf("splitting %s requires a positive divisor", r.Kind)
		}
		return nil
	case SplitIncomeCoefficient:
		if !r.Coefficient.IsPositive() || r.Coefficient.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("splitting %s requires a coefficient in (0, 1]", r.Kind)
		}
		return nil
	case "":
		return errors.New("splitting kind is required")
	}
	return fmt.Errorf("unknown splitting kind %q", r.Kind)
}

// TariffPair holds the tariffs for single and married households
type TariffPair struct {
	Single  Tariff `json:"single"`
	Married Tariff `json:"married"`
}

// For returns the tariff for a marital status
func (p TariffPair) For(status MaritalStatus) (Tariff, error) {
	switch status {
	case Single:
		return p.Single, nil
	case Married:
		return p.Married, nil
	}
	return Tariff{}, &InvalidMaritalStatusError{Value: string(status)}
}

// StatusAmounts holds one amount per marital status
type StatusAmounts struct {
	Single  decimal.Decimal `json:"single"`
	Married decimal.Decimal `json:"married"`
}

// For returns the amount for a marital status
func (s StatusAmounts) For(status MaritalStatus) (decimal.Decimal, error) {
	switch status {
	case Single:
		return s.Single, nil
	case Married:
		return s.Married, nil
	}
	return decimal.Zero, &InvalidMaritalStatusError{Value: string(status)}
}

// CantonTaxConfig is the complete tax law of one canton for one tax year.
// Values are built once by the registry and never mutated afterwards.
type CantonTaxConfig struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	TaxYear int    `json:"tax_year"`

	Income TariffPair `json:"income"`
	Wealth TariffPair `json:"wealth"`

	MultiplierKind MultiplierKind `json:"multiplier_kind"`
	// CantonMultiplier is the Steuerfuss, number of units, canton centimes or the
	// canton indexation depending on MultiplierKind
	CantonMultiplier           decimal.Decimal `json:"canton_multiplier"`
	DefaultMunicipality        string          `json:"default_municipality,omitempty"`
	DefaultMunicipalMultiplier decimal.Decimal `json:"default_municipal_multiplier"`

	WealthThresholds StatusAmounts `json:"wealth_thresholds"`
	Splitting        SplittingRule `json:"splitting"`
	WealthSplitting  SplittingRule `json:"wealth_splitting"`
}

// Validate checks the configuration invariants that the engine relies on
func (c CantonTaxConfig) Validate() error {
	if len(c.Code) != 2 || strings.ToUpper(c.Code) != c.Code {
		return fmt.Errorf("canton code %q must be two upper-case letters", c.Code)
	}
	if c.TaxYear <= 0 {
		return fmt.Errorf("tax year must be positive, got %d", c.TaxYear)
	}
	if !c.MultiplierKind.Valid() {
		return fmt.Errorf("unknown multiplier kind %q", c.MultiplierKind)
	}
	if c.CantonMultiplier.IsNegative() || c.DefaultMunicipalMultiplier.IsNegative() {
		return errors.New("multipliers cannot be negative")
	}
	if c.WealthThresholds.Single.IsNegative() || c.WealthThresholds.Married.IsNegative() {
		return errors.New("wealth thresholds cannot be negative")
	}
	if err := c.Splitting.Validate(); err != nil {
		return fmt.Errorf("income splitting: %w", err)
	}
	if err := c.WealthSplitting.Validate(); err != nil {
		return fmt.Errorf("wealth splitting: %w", err)
	}

	tariffs := []struct {
		name      string
		tariff    Tariff
		splitting SplittingRule
	}{
		{"income.single", c.Income.Single, c.Splitting},
		{"income.married", c.Income.Married, c.Splitting},
		{"wealth.single", c.Wealth.Single, c.WealthSplitting},
		{"wealth.married", c.Wealth.Married, c.WealthSplitting},
	}
	for _, t := range tariffs {
		if err := t.tariff.Validate(); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		if t.tariff.IsDual() != (c.MultiplierKind == MultiplierDualTariff) {
			return fmt.Errorf("%s: dual tariff schedules and the dual_tariff multiplier kind must be used together", t.name)
		}
		_, isQuotient := t.tariff.Schedule.(FamilyQuotient)
		if isQuotient != (t.splitting.Kind == SplitFamilyQuotient) {
			return fmt.Errorf("%s: family quotient schedules and the family_quotient splitting rule must be used together", t.name)
		}
	}
	return nil
}
