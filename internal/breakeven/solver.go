package breakeven

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Solver finds the taxable amount at which a household reaches a target tax
type Solver struct {
	CalcEngine *calculation.Engine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.Engine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve binary-searches the constraints for an amount whose result reaches req.Value.
// The search keeps the invariant that the lower bound misses the target and the
// upper bound reaches it, and stops once the bounds are one tolerance apart.
//
// Total tax never falls as the amount grows, so a TargetTotalTax result is the
// smallest amount that reaches the target. The effective rate is not monotone:
// tariffs that floor the amount (Obwalden rounds down to CHF 100) make it a sawtooth
// that dips after every step. A TargetEffectiveRate result is therefore a crossing,
// an amount that reaches the rate while the amount one tolerance below misses it.
// Smaller amounts may reach the rate too.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if s.CalcEngine == nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "solver has no calculation engine"}
	}
	if err := req.Constraints.Validate(); err != nil {
		return nil, err
	}
	if req.Value.IsNegative() {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("target value cannot be negative, got %s", req.Value),
		}
	}

	// Apply defaults
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if !req.Tolerance.IsPositive() {
		req.Tolerance = s.Options.Tolerance
	}
	defaults := DefaultConstraints()
	if req.Constraints.MinAmount == nil {
		req.Constraints.MinAmount = defaults.MinAmount
	}
	if req.Constraints.MaxAmount == nil {
		req.Constraints.MaxAmount = defaults.MaxAmount
	}
	if req.Entity == "" {
		req.Entity = domain.EntityIncome
	}
	req.Entity = domain.Entity(strings.ToLower(string(req.Entity)))

	metric, err := metricFor(req.Target)
	if err != nil {
		return nil, err
	}
	calc, err := s.calculator(req.Entity)
	if err != nil {
		return nil, err
	}

	evaluate := func(amount decimal.Decimal) (domain.CalculationResult, decimal.Decimal, error) {
		trial := req.Base
		trial.Amount = amount
		result, err := calc(trial)
		if err != nil {
			return domain.CalculationResult{}, decimal.Zero, &BreakEvenError{
				Operation: "solve",
				Message:   fmt.Sprintf("failed to calculate amount %s", amount.StringFixed(2)),
				Cause:     err,
			}
		}
		return result, metric(result), nil
	}

	lo, hi := *req.Constraints.MinAmount, *req.Constraints.MaxAmount
	iterations := 1

	loResult, loValue, err := evaluate(lo)
	if err != nil {
		return nil, err
	}
	if loValue.GreaterThanOrEqual(req.Value) {
		return s.finish(req, lo, loResult, loValue, iterations, true, "Target reached at the minimum amount"), nil
	}

	iterations++
	hiResult, hiValue, err := evaluate(hi)
	if err != nil {
		return nil, err
	}
	if hiValue.LessThan(req.Value) {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("target %s %s not reachable below %s (reaches %s)",
				req.Target, req.Value, domain.FormatCHF(hi), hiValue),
		}
	}

	for hi.Sub(lo).GreaterThan(req.Tolerance) {
		if iterations >= req.MaxIterations {
			return s.finish(req, hi, hiResult, hiValue, iterations, false,
				fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)), nil
		}
		iterations++

		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid := lo.Add(hi).Div(two).Floor()
		if !mid.GreaterThan(lo) {
			break
		}
		midResult, midValue, err := evaluate(mid)
		if err != nil {
			return nil, err
		}

		// Adjust bounds
		if midValue.LessThan(req.Value) {
			lo = mid
		} else {
			hi, hiResult, hiValue = mid, midResult, midValue
		}
	}

	return s.finish(req, hi, hiResult, hiValue, iterations, true,
		fmt.Sprintf("Binary search converged to %s", domain.FormatCHF(req.Tolerance))), nil
}

func (s *Solver) finish(req SolveRequest, amount decimal.Decimal, result domain.CalculationResult,
	achieved decimal.Decimal, iterations int, success bool, info string) *SolveResult {
	return &SolveResult{
		Request:         req,
		Success:         success,
		Iterations:      iterations,
		ConvergenceInfo: info,
		Amount:          amount,
		Result:          result,
		Achieved:        achieved,
		Difference:      achieved.Sub(req.Value),
	}
}

func (s *Solver) calculator(entity domain.Entity) (func(calculation.Request) (domain.CalculationResult, error), error) {
	switch entity {
	case domain.EntityIncome:
		return s.CalcEngine.CalculateIncome, nil
	case domain.EntityWealth:
		return s.CalcEngine.CalculateWealth, nil
	}
	return nil, &BreakEvenError{
		Operation: "solve",
		Message:   fmt.Sprintf("unknown entity %q: must be income or wealth", entity),
	}
}

func metricFor(target Target) (func(domain.CalculationResult) decimal.Decimal, error) {
	switch target {
	case TargetTotalTax:
		return func(r domain.CalculationResult) decimal.Decimal { return r.TotalTax }, nil
	case TargetEffectiveRate:
		return func(r domain.CalculationResult) decimal.Decimal { return r.EffectiveRatePercent }, nil
	}
	return nil, &BreakEvenError{
		Operation: "solve",
		Message:   fmt.Sprintf("unsupported target: %s", target),
	}
}
