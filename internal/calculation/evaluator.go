package calculation

import (
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxParts is the result of evaluating a tariff that may carry separate canton and
// municipal tables. For single-table tariffs Municipal is zero and Canton holds the
// simple tax.
type TaxParts struct {
	Canton    decimal.Decimal
	Municipal decimal.Decimal
}

// Total returns Canton + Municipal
func (p TaxParts) Total() decimal.Decimal {
	return p.Canton.Add(p.Municipal)
}

func (p TaxParts) scale(factor decimal.Decimal) TaxParts {
	return TaxParts{
		Canton:    domain.RoundMoney(p.Canton.Mul(factor)),
		Municipal: domain.RoundMoney(p.Municipal.Mul(factor)),
	}
}

// Evaluate returns the simple tax for amount under tariff t, rounded to two decimals.
// A dual tariff evaluated on its own yields the canton part; a family quotient tariff
// evaluated on its own uses a quotient of 1.
func Evaluate(t domain.Tariff, amount decimal.Decimal) decimal.Decimal {
	return EvaluateParts(t, amount).Canton
}

// EvaluateParts evaluates tariff t and returns canton and municipal parts separately
func EvaluateParts(t domain.Tariff, amount decimal.Decimal) TaxParts {
	if !amount.IsPositive() || t.Schedule == nil {
		return TaxParts{}
	}

	if t.RoundDownTo.IsPositive() {
		amount = amount.Div(t.RoundDownTo).Floor().Mul(t.RoundDownTo)
		if !amount.IsPositive() {
			return TaxParts{}
		}
	}

	if t.FlatRate != nil && amount.GreaterThan(t.FlatRate.Threshold) {
		return TaxParts{Canton: domain.RoundMoney(amount.Mul(t.FlatRate.Rate))}
	}

	switch s := t.Schedule.(type) {
	case domain.DualTariff:
		return TaxParts{
			Canton:    domain.RoundMoney(evaluateSchedule(s.Canton, amount)),
			Municipal: domain.RoundMoney(evaluateSchedule(s.Municipal, amount)),
		}
	default:
		return TaxParts{Canton: domain.RoundMoney(evaluateSchedule(s, amount))}
	}
}

// evaluateSchedule dispatches on the schedule variant. The result is unrounded.
func evaluateSchedule(s domain.Schedule, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	switch s := s.(type) {
	case domain.MarginalBrackets:
		return evaluateMarginal(s.Brackets, amount)
	case domain.CumulativeBrackets:
		return evaluateCumulative(s.Brackets, amount)
	case domain.Proportional:
		return amount.Mul(s.RatePerMille).Div(domain.Thousand)
	case domain.LogarithmicFormula:
		return evaluateLogarithmic(s, amount)
	case domain.FamilyQuotient:
		return evaluateSchedule(s.Base, amount)
	case domain.DualTariff:
		return evaluateSchedule(s.Canton, amount)
	}
	return decimal.Zero
}

func evaluateMarginal(brackets []domain.Bracket, amount decimal.Decimal) decimal.Decimal {
	var tax decimal.Decimal
	lower := decimal.Zero
	for _, bracket := range brackets {
		if amount.LessThanOrEqual(lower) {
			break
		}
		top := amount
		if !bracket.Unbounded() {
			top = decimal.Min(amount, *bracket.Upper)
		}
		if portion := top.Sub(lower); portion.IsPositive() {
			tax = tax.Add(portion.Mul(bracket.Rate))
		}
		if bracket.Unbounded() {
			break
		}
		lower = *bracket.Upper
	}
	return tax
}

func evaluateCumulative(brackets []domain.Bracket, amount decimal.Decimal) decimal.Decimal {
	for _, bracket := range brackets {
		if bracket.Contains(amount) {
			return bracket.Base.Add(bracket.Rate.Mul(amount.Sub(bracket.Lower)))
		}
	}
	// validated tables always end unbounded; amounts below the first lower bound owe nothing
	return decimal.Zero
}

// lnPrecision is the number of decimal places kept for ln(x)
const lnPrecision = 12

// evaluateLogarithmic computes b*x + c*x*(ln(x) - 1) + d
func evaluateLogarithmic(s domain.LogarithmicFormula, amount decimal.Decimal) decimal.Decimal {
	if amount.LessThan(s.MinAmount) || !amount.IsPositive() {
		return decimal.Zero
	}
	var seg *domain.LogSegment
	for i := range s.Segments {
		if s.Segments[i].Upper == nil || amount.LessThan(*s.Segments[i].Upper) {
			seg = &s.Segments[i]
			break
		}
	}
	if seg == nil {
		return decimal.Zero
	}

	ln, err := amount.Ln(lnPrecision)
	if err != nil {
		return decimal.Zero
	}
	tax := seg.B.Mul(amount).
		Add(seg.C.Mul(amount).Mul(ln.Sub(decimal.NewFromInt(1)))).
		Add(seg.D)
	if !tax.IsPositive() {
		return decimal.Zero
	}
	return tax
}

// MarginalRate returns the rate applied to the next franc above amount, expressed as a
// fraction (0.05 = 5%). Formula tariffs are approximated by a one-franc difference.
func MarginalRate(t domain.Tariff, amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() || t.Schedule == nil {
		return decimal.Zero
	}
	if t.FlatRate != nil && amount.GreaterThanOrEqual(t.FlatRate.Threshold) {
		return t.FlatRate.Rate
	}

	schedule := t.Schedule
	if dual, ok := schedule.(domain.DualTariff); ok {
		schedule = dual.Canton
	}
	if fq, ok := schedule.(domain.FamilyQuotient); ok {
		schedule = fq.Base
	}

	switch s := schedule.(type) {
	case domain.MarginalBrackets:
		return bracketRate(s.Brackets, amount)
	case domain.CumulativeBrackets:
		return bracketRate(s.Brackets, amount)
	case domain.Proportional:
		return s.RatePerMille.Div(domain.Thousand)
	}

	one := decimal.NewFromInt(1)
	return evaluateSchedule(schedule, amount.Add(one)).Sub(evaluateSchedule(schedule, amount)).Round(6)
}

func bracketRate(brackets []domain.Bracket, amount decimal.Decimal) decimal.Decimal {
	for _, b := range brackets {
		if b.Unbounded() || amount.LessThan(*b.Upper) {
			return b.Rate
		}
	}
	return decimal.Zero
}
