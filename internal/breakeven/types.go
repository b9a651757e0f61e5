package breakeven

import (
	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// Target defines which result value the solver matches
type Target string

const (
	TargetTotalTax      Target = "total_tax"      // total tax in CHF
	TargetEffectiveRate Target = "effective_rate" // effective rate in percent
)

// Constraints bound the searched amount
type Constraints struct {
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
}

// DefaultConstraints searches between zero and CHF 100 million
func DefaultConstraints() Constraints {
	minAmount := decimal.Zero
	maxAmount := decimal.NewFromInt(100_000_000)
	return Constraints{
		MinAmount: &minAmount,
		MaxAmount: &maxAmount,
	}
}

// SolveRequest asks for the smallest amount at which the base household reaches Value
type SolveRequest struct {
	Entity domain.Entity       `json:"entity"`
	Base   calculation.Request `json:"base"`
	Target Target              `json:"target"`
	Value  decimal.Decimal     `json:"value"`

	Constraints   Constraints     `json:"constraints"`
	MaxIterations int             `json:"-"`
	Tolerance     decimal.Decimal `json:"-"` // width of the final amount interval in CHF
}

// SolveResult is the outcome of a solver run
type SolveResult struct {
	Request         SolveRequest `json:"request"`
	Success         bool         `json:"success"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergence_info"`

	Amount   decimal.Decimal          `json:"amount"`
	Result   domain.CalculationResult `json:"result"`
	Achieved decimal.Decimal          `json:"achieved"`
	// Difference is Achieved minus the requested value; never negative on success
	Difference decimal.Decimal `json:"difference"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Convergence tolerance in CHF
	MaxIterations int             // Maximum iterations
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1), // whole francs
		MaxIterations: 100,
	}
}

// Validate checks if constraints are internally consistent
func (c *Constraints) Validate() error {
	if c.MinAmount != nil && c.MinAmount.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_amount cannot be negative",
		}
	}
	if c.MinAmount != nil && c.MaxAmount != nil && c.MinAmount.GreaterThan(*c.MaxAmount) {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_amount cannot be greater than max_amount",
		}
	}
	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
