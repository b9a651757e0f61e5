package transform

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// SetStatus changes the marital status
type SetStatus struct {
	Status domain.MaritalStatus
}

func (s *SetStatus) Name() string {
	return "set_status"
}

func (s *SetStatus) Description() string {
	return fmt.Sprintf("File as %s", s.Status)
}

func (s *SetStatus) Validate(base calculation.Request) error {
	if !s.Status.Valid() {
		return NewTransformError(s.Name(), "validate", "unknown marital status",
			&domain.InvalidMaritalStatusError{Value: string(s.Status)})
	}
	return nil
}

func (s *SetStatus) Apply(base calculation.Request) (calculation.Request, error) {
	base.MaritalStatus = s.Status
	return base, nil
}

// SetChildren sets the number of dependent children
type SetChildren struct {
	Count int
}

func (sc *SetChildren) Name() string {
	return "set_children"
}

func (sc *SetChildren) Description() string {
	return fmt.Sprintf("Household with %d children", sc.Count)
}

func (sc *SetChildren) Validate(base calculation.Request) error {
	if sc.Count < 0 {
		return NewTransformError(sc.Name(), "validate", fmt.Sprintf("count must be non-negative, got %d", sc.Count), nil)
	}
	return nil
}

func (sc *SetChildren) Apply(base calculation.Request) (calculation.Request, error) {
	base.Children = sc.Count
	return base, nil
}

// AdjustAmount changes the taxable amount by a fixed delta or by a percentage
type AdjustAmount struct {
	Delta   decimal.Decimal
	Percent decimal.Decimal
}

func (aa *AdjustAmount) Name() string {
	return "adjust_amount"
}

func (aa *AdjustAmount) Description() string {
	if !aa.Percent.IsZero() {
		return fmt.Sprintf("Change amount by %s%%", aa.Percent.String())
	}
	sign := "+"
	if aa.Delta.IsNegative() {
		sign = ""
	}
	return fmt.Sprintf("Change amount by %s%s", sign, domain.FormatCHF(aa.Delta))
}

func (aa *AdjustAmount) Validate(base calculation.Request) error {
	if !aa.Delta.IsZero() && !aa.Percent.IsZero() {
		return NewTransformError(aa.Name(), "validate", "delta and percent are mutually exclusive", nil)
	}
	if aa.Percent.LessThan(decimal.NewFromInt(-100)) {
		return NewTransformError(aa.Name(), "validate", "percent cannot be below -100", nil)
	}
	return nil
}

func (aa *AdjustAmount) Apply(base calculation.Request) (calculation.Request, error) {
	if !aa.Percent.IsZero() {
		factor := decimal.NewFromInt(1).Add(aa.Percent.Div(domain.Hundred))
		base.Amount = domain.RoundMoney(base.Amount.Mul(factor))
		return base, nil
	}
	base.Amount = base.Amount.Add(aa.Delta)
	return base, nil
}

// MoveCanton relocates the household to another canton. Municipal overrides are
// cleared because they belong to the old municipality.
type MoveCanton struct {
	Canton string
}

func (mc *MoveCanton) Name() string {
	return "move_canton"
}

func (mc *MoveCanton) Description() string {
	return fmt.Sprintf("Move to canton %s", strings.ToUpper(mc.Canton))
}

func (mc *MoveCanton) Validate(base calculation.Request) error {
	if len(strings.TrimSpace(mc.Canton)) != 2 {
		return NewTransformError(mc.Name(), "validate", fmt.Sprintf("invalid canton code %q", mc.Canton), nil)
	}
	return nil
}

func (mc *MoveCanton) Apply(base calculation.Request) (calculation.Request, error) {
	base.Canton = strings.ToUpper(strings.TrimSpace(mc.Canton))
	base.CantonMultiplier = nil
	base.MunicipalMultiplier = nil
	base.MunicipalIndexation = nil
	return base, nil
}

// SetMultiplier overrides the canton or municipal multiplier
type SetMultiplier struct {
	Level string // "canton" or "municipal"
	Value decimal.Decimal
}

func (sm *SetMultiplier) Name() string {
	return "set_multiplier"
}

func (sm *SetMultiplier) Description() string {
	return fmt.Sprintf("Set %s multiplier to %s", sm.Level, sm.Value.String())
}

func (sm *SetMultiplier) Validate(base calculation.Request) error {
	if sm.Level != "canton" && sm.Level != "municipal" {
		return NewTransformError(sm.Name(), "validate", fmt.Sprintf("level must be canton or municipal, got %q", sm.Level), nil)
	}
	if sm.Value.IsNegative() {
		return NewTransformError(sm.Name(), "validate", "multiplier cannot be negative", nil)
	}
	return nil
}

func (sm *SetMultiplier) Apply(base calculation.Request) (calculation.Request, error) {
	value := sm.Value
	if sm.Level == "canton" {
		base.CantonMultiplier = &value
	} else {
		base.MunicipalMultiplier = &value
	}
	return base, nil
}

// SetTaxYear switches the tariff year
type SetTaxYear struct {
	Year int
}

func (sy *SetTaxYear) Name() string {
	return "set_tax_year"
}

func (sy *SetTaxYear) Description() string {
	return fmt.Sprintf("Use the %d tariff", sy.Year)
}

func (sy *SetTaxYear) Validate(base calculation.Request) error {
	if sy.Year <= 0 {
		return NewTransformError(sy.Name(), "validate", fmt.Sprintf("year must be positive, got %d", sy.Year), nil)
	}
	return nil
}

func (sy *SetTaxYear) Apply(base calculation.Request) (calculation.Request, error) {
	base.TaxYear = sy.Year
	return base, nil
}
