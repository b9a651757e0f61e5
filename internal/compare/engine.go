package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/transform"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CantonSource lists and resolves cantons. *cantons.Registry satisfies it.
type CantonSource interface {
	calculation.ConfigSource
	Codes() []string
	Name(code string) string
}

// CompareEngine orchestrates canton rankings and what-if comparisons
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	Cantons           CantonSource
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine, cantons CantonSource) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		Cantons:           cantons,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
		TransformRegistry: transform.NewTransformRegistry(),
	}
}

// RankOptions configures a cross-canton ranking
type RankOptions struct {
	Entity domain.Entity
	// Request supplies amount, year and household; its Canton is the base for deltas
	// and may be empty.
	Request calculation.Request
	// Cantons restricts the ranking; empty means all cantons
	Cantons []string
}

// RankCantons computes the same household in every canton and orders the cantons
// from lowest to highest total tax. Cantons that need caller-supplied municipal
// factors the request does not carry are skipped and reported.
func (ce *CompareEngine) RankCantons(ctx context.Context, options RankOptions) (*ComparisonSet, error) {
	entity := normalizeEntity(options.Entity)
	calc, err := ce.calculator(entity)
	if err != nil {
		return nil, err
	}
	baseCode := strings.ToUpper(strings.TrimSpace(options.Request.Canton))

	codes := ce.Cantons.Codes()
	if len(options.Cantons) > 0 {
		wanted := lo.Map(options.Cantons, func(c string, _ int) string {
			return strings.ToUpper(strings.TrimSpace(c))
		})
		for _, code := range wanted {
			if !lo.Contains(codes, code) {
				return nil, &domain.UnknownCantonError{Code: code}
			}
		}
		codes = lo.Uniq(wanted)
	}

	compSet := &ComparisonSet{
		Title:   fmt.Sprintf("%s tax by canton, %d", entityTitle(entity), options.Request.TaxYear),
		Entity:  entity,
		Skipped: map[string]string{},
	}

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := options.Request
		req.Canton = code
		if code != baseCode {
			// municipal overrides only belong to the base municipality
			req.MunicipalMultiplier = nil
			req.MunicipalIndexation = nil
			req.CantonMultiplier = nil
		}

		result, err := calc(req)
		if err != nil {
			var missing *domain.MissingMunicipalFactorError
			if errors.As(err, &missing) {
				compSet.Skipped[code] = err.Error()
				continue
			}
			return nil, fmt.Errorf("failed to calculate canton %s: %w", code, err)
		}

		compSet.Results = append(compSet.Results, ComparisonResult{
			Label:               code,
			Description:         ce.Cantons.Name(code),
			Result:              result,
			MarginalRatePercent: ce.marginalRate(entity, req),
		})
	}

	sort.SliceStable(compSet.Results, func(i, j int) bool {
		a, b := compSet.Results[i].Result.TotalTax, compSet.Results[j].Result.TotalTax
		if a.Equal(b) {
			return compSet.Results[i].Label < compSet.Results[j].Label
		}
		return a.LessThan(b)
	})
	for i := range compSet.Results {
		compSet.Results[i].Rank = i + 1
	}

	if base, ok := lo.Find(compSet.Results, func(r ComparisonResult) bool {
		return r.Label == baseCode
	}); ok {
		compSet.BaseLabel = base.Label
		compSet.BaseResult = &base
		for i := range compSet.Results {
			compSet.Results[i] = ce.MetricsCalculator.CalculateComparison(compSet.Results[i], base)
		}
	}

	if len(compSet.Skipped) == 0 {
		compSet.Skipped = nil
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

// ScenarioOptions configures a what-if comparison
type ScenarioOptions struct {
	Entity    domain.Entity
	Base      calculation.Request
	Templates []string // built-in template names
	Specs     []string // transform specs, e.g. "move_canton:canton=ZG"
}

// CompareScenarios calculates the base request and every template or transform
// spec applied to it.
func (ce *CompareEngine) CompareScenarios(ctx context.Context, options ScenarioOptions) (*ComparisonSet, error) {
	options.Entity = normalizeEntity(options.Entity)
	calc, err := ce.calculator(options.Entity)
	if err != nil {
		return nil, err
	}

	baseResult, err := calc(options.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	base := ComparisonResult{
		Label:               "base",
		Description:         describeRequest(options.Base),
		Result:              baseResult,
		MarginalRatePercent: ce.marginalRate(options.Entity, options.Base),
	}

	compSet := &ComparisonSet{
		Title:      fmt.Sprintf("What-if comparison for %s", describeRequest(options.Base)),
		Entity:     options.Entity,
		BaseLabel:  base.Label,
		BaseResult: &base,
	}

	type variant struct {
		label       string
		description string
		transforms  []transform.RequestTransform
	}
	variants := make([]variant, 0, len(options.Templates)+len(options.Specs))
	for _, name := range options.Templates {
		tmpl, ok := ce.TemplateRegistry.Get(name)
		if !ok {
			return nil, fmt.Errorf("template %s not found", name)
		}
		variants = append(variants, variant{label: tmpl.Name, description: tmpl.Description, transforms: tmpl.Transforms})
	}
	for _, spec := range options.Specs {
		t, err := ce.TransformRegistry.ParseTransformSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid transform %q: %w", spec, err)
		}
		variants = append(variants, variant{label: spec, description: t.Description(), transforms: []transform.RequestTransform{t}})
	}

	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := transform.ApplyTransforms(options.Base, v.transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", v.label, err)
		}
		result, err := calc(req)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", v.label, err)
		}

		alt := ComparisonResult{
			Label:               v.label,
			Description:         v.description,
			Result:              result,
			MarginalRatePercent: ce.marginalRate(options.Entity, req),
		}
		compSet.Results = append(compSet.Results, ce.MetricsCalculator.CalculateComparison(alt, base))
	}

	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

func (ce *CompareEngine) calculator(entity domain.Entity) (func(calculation.Request) (domain.CalculationResult, error), error) {
	if ce.CalcEngine == nil {
		return nil, fmt.Errorf("compare engine has no calculation engine")
	}
	switch entity {
	case domain.EntityIncome:
		return ce.CalcEngine.CalculateIncome, nil
	case domain.EntityWealth:
		return ce.CalcEngine.CalculateWealth, nil
	}
	return nil, fmt.Errorf("unknown entity %q: must be income or wealth", entity)
}

// marginalRate reports the simple-tax marginal rate in percent for the request's
// household, after the canton's splitting rule. Errors yield zero since the result itself already succeeded.
func (ce *CompareEngine) marginalRate(entity domain.Entity, req calculation.Request) decimal.Decimal {
	cfg, err := ce.Cantons.Lookup(req.Canton, req.TaxYear)
	if err != nil {
		return decimal.Zero
	}
	pair, rule := cfg.Income, cfg.Splitting
	amount := req.Amount
	if entity == domain.EntityWealth {
		pair, rule = cfg.Wealth, cfg.WealthSplitting
		threshold, _ := cfg.WealthThresholds.For(req.MaritalStatus)
		amount = amount.Sub(threshold)
	}
	tariff, err := pair.For(req.MaritalStatus)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero
	}
	household := calculation.Household{Status: req.MaritalStatus, Children: req.Children, SingleParent: req.SingleParent}
	rate, err := calculation.SplitMarginalRate(tariff, rule, amount, household)
	if err != nil {
		return decimal.Zero
	}
	return rate.Mul(domain.Hundred).Round(2)
}

func describeRequest(req calculation.Request) string {
	desc := fmt.Sprintf("%s %d, %s, %s", strings.ToUpper(req.Canton), req.TaxYear, req.MaritalStatus, domain.FormatCHF(req.Amount))
	if req.Children > 0 {
		desc += fmt.Sprintf(", %d children", req.Children)
	}
	return desc
}

func normalizeEntity(entity domain.Entity) domain.Entity {
	if entity == "" {
		return domain.EntityIncome
	}
	return domain.Entity(strings.ToLower(string(entity)))
}

func entityTitle(entity domain.Entity) string {
	if entity == domain.EntityWealth {
		return "Wealth"
	}
	return "Income"
}
