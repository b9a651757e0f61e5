package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// ConfigSource resolves the tax law of a canton for a tax year.
// *cantons.Registry satisfies it.
type ConfigSource interface {
	Lookup(code string, year int) (domain.CantonTaxConfig, error)
}

// Request is the input to an income or wealth calculation.
// Nil multipliers fall back to the canton's defaults.
type Request struct {
	Canton        string               `json:"canton"`
	TaxYear       int                  `json:"tax_year"`
	MaritalStatus domain.MaritalStatus `json:"marital_status"`
	Children      int                  `json:"children"`
	SingleParent  bool                 `json:"single_parent,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`

	CantonMultiplier    *decimal.Decimal `json:"canton_multiplier,omitempty"`
	MunicipalMultiplier *decimal.Decimal `json:"municipal_multiplier,omitempty"`
	MunicipalIndexation *decimal.Decimal `json:"municipal_indexation,omitempty"`
}

// Engine computes cantonal and municipal income and wealth tax. It holds no mutable
// state besides its logger and is safe for concurrent use.
type Engine struct {
	Source ConfigSource
	Logger Logger
}

// NewEngine creates an engine reading tariffs from source
func NewEngine(source ConfigSource) *Engine {
	return &Engine{
		Source: source,
		Logger: NopLogger{},
	}
}

// SetLogger sets the engine logger; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// CalculateIncome computes income tax for the request
func (e *Engine) CalculateIncome(req Request) (domain.CalculationResult, error) {
	return e.calculate(domain.EntityIncome, req)
}

// CalculateWealth computes wealth tax for the request. The status-dependent
// tax-free threshold is deducted before the tariff is applied.
func (e *Engine) CalculateWealth(req Request) (domain.CalculationResult, error) {
	return e.calculate(domain.EntityWealth, req)
}

func (e *Engine) calculate(entity domain.Entity, req Request) (domain.CalculationResult, error) {
	if e.Source == nil {
		return domain.CalculationResult{}, fmt.Errorf("engine has no tariff source")
	}
	cfg, err := e.Source.Lookup(req.Canton, req.TaxYear)
	if err != nil {
		return domain.CalculationResult{}, err
	}
	if !req.MaritalStatus.Valid() {
		return domain.CalculationResult{}, &domain.InvalidMaritalStatusError{Value: string(req.MaritalStatus)}
	}
	if req.Children < 0 {
		return domain.CalculationResult{}, fmt.Errorf("number of children cannot be negative: %d", req.Children)
	}

	factors, cantonMultiplier, err := resolveMultipliers(cfg, req)
	if err != nil {
		return domain.CalculationResult{}, err
	}

	result := domain.CalculationResult{
		Canton:        cfg.Code,
		TaxYear:       cfg.TaxYear,
		Entity:        entity,
		MaritalStatus: req.MaritalStatus,
		Children:      req.Children,
		Amount:        domain.RoundMoney(req.Amount),
	}

	pair, rule := cfg.Income, cfg.Splitting
	taxable := req.Amount
	if entity == domain.EntityWealth {
		pair, rule = cfg.Wealth, cfg.WealthSplitting
		threshold, err := cfg.WealthThresholds.For(req.MaritalStatus)
		if err != nil {
			return domain.CalculationResult{}, err
		}
		taxable = taxable.Sub(threshold)
	}

	if !taxable.IsPositive() {
		e.Logger.Debugf("%s %s %d: taxable amount %s is not positive, no tax due", cfg.Code, entity, cfg.TaxYear, taxable.StringFixed(2))
		return result, nil
	}
	result.TaxableAmount = domain.RoundMoney(taxable)

	tariff, err := pair.For(req.MaritalStatus)
	if err != nil {
		return domain.CalculationResult{}, err
	}
	household := Household{Status: req.MaritalStatus, Children: req.Children, SingleParent: req.SingleParent}
	share, shares, err := splitShare(tariff, rule, taxable, household)
	if err != nil {
		return domain.CalculationResult{}, fmt.Errorf("%s %s splitting: %w", cfg.Code, entity, err)
	}

	comp, err := Compose(cfg.MultiplierKind, share, cantonMultiplier, factors)
	if err != nil {
		return domain.CalculationResult{}, fmt.Errorf("%s composition: %w", cfg.Code, err)
	}
	comp = comp.scale(shares)

	result.SimpleTax = comp.SimpleTax
	result.CantonalTax = comp.CantonalTax
	result.MunicipalTax = comp.MunicipalTax
	result.TotalTax = comp.TotalTax
	if req.Amount.IsPositive() {
		result.EffectiveRatePercent = comp.TotalTax.Div(req.Amount).Mul(domain.Hundred).Round(2)
	}

	e.Logger.Debugf("%s %s %d %s: amount=%s simple=%s canton=%s municipal=%s total=%s",
		cfg.Code, entity, cfg.TaxYear, req.MaritalStatus, req.Amount.StringFixed(2),
		result.SimpleTax.StringFixed(2), result.CantonalTax.StringFixed(2),
		result.MunicipalTax.StringFixed(2), result.TotalTax.StringFixed(2))

	return result, nil
}

// resolveMultipliers merges request overrides with the canton defaults
func resolveMultipliers(cfg domain.CantonTaxConfig, req Request) (MunicipalFactors, decimal.Decimal, error) {
	cantonMultiplier := cfg.CantonMultiplier
	if req.CantonMultiplier != nil {
		if req.CantonMultiplier.IsNegative() {
			return MunicipalFactors{}, decimal.Zero, fmt.Errorf("canton multiplier cannot be negative")
		}
		cantonMultiplier = *req.CantonMultiplier
	}

	factors := MunicipalFactors{Multiplier: cfg.DefaultMunicipalMultiplier}
	if req.MunicipalMultiplier != nil {
		if req.MunicipalMultiplier.IsNegative() {
			return MunicipalFactors{}, decimal.Zero, fmt.Errorf("municipal multiplier cannot be negative")
		}
		factors.Multiplier = *req.MunicipalMultiplier
	}

	if cfg.MultiplierKind == domain.MultiplierDualIndex {
		if req.MunicipalMultiplier == nil {
			return MunicipalFactors{}, decimal.Zero, &domain.MissingMunicipalFactorError{Code: cfg.Code, Factor: "coefficient"}
		}
		if req.MunicipalIndexation == nil {
			return MunicipalFactors{}, decimal.Zero, &domain.MissingMunicipalFactorError{Code: cfg.Code, Factor: "indexation"}
		}
		if req.MunicipalIndexation.IsNegative() {
			return MunicipalFactors{}, decimal.Zero, fmt.Errorf("municipal indexation cannot be negative")
		}
		factors.Indexation = *req.MunicipalIndexation
	}

	return factors, cantonMultiplier, nil
}
