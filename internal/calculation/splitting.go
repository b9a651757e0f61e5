package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// Household describes who the amount belongs to
type Household struct {
	Status   domain.MaritalStatus
	Children int
	// SingleParent marks an unmarried taxpayer living with dependants even when
	// Children is zero (e.g. dependants that are not the taxpayer's children)
	SingleParent bool
}

// ApplySplitting evaluates tariff t for amount after applying the splitting rule.
// Rules other than family_quotient only change the result for married households.
func ApplySplitting(t domain.Tariff, rule domain.SplittingRule, amount decimal.Decimal, h Household) (TaxParts, error) {
	share, shares, err := splitShare(t, rule, amount, h)
	if err != nil {
		return TaxParts{}, err
	}
	return share.scale(shares), nil
}

// splitShare evaluates the tariff on one share of the split amount and reports how
// many shares the household owes. Composition runs on the share so that each rounded
// part is multiplied afterwards, keeping a married total at exactly twice the single
// total under halving rules.
func splitShare(t domain.Tariff, rule domain.SplittingRule, amount decimal.Decimal, h Household) (TaxParts, decimal.Decimal, error) {
	point, shares, err := splitPoint(t, rule, amount, h)
	if err != nil || !point.IsPositive() {
		return TaxParts{}, shares, err
	}
	return EvaluateParts(t, point), shares, nil
}

// SplitMarginalRate returns the simple-tax rate on the household's next franc as a
// fraction. The share's bracket rate is scaled by the number of shares and by the
// slope of the split itself, so a married Geneva household at 100,000 pays the 16%
// rate of 50,000 rather than the 20% rate of 100,000.
func SplitMarginalRate(t domain.Tariff, rule domain.SplittingRule, amount decimal.Decimal, h Household) (decimal.Decimal, error) {
	point, shares, err := splitPoint(t, rule, amount, h)
	if err != nil || !point.IsPositive() {
		return decimal.Zero, err
	}
	slope := point.Div(amount)
	return MarginalRate(t, point).Mul(shares).Mul(slope).Round(6), nil
}

// splitPoint maps the household amount to the amount the tariff is evaluated at and
// the number of shares owed at that point
func splitPoint(t domain.Tariff, rule domain.SplittingRule, amount decimal.Decimal, h Household) (decimal.Decimal, decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	if !h.Status.Valid() {
		return decimal.Zero, one, &domain.InvalidMaritalStatusError{Value: string(h.Status)}
	}
	if h.Children < 0 {
		return decimal.Zero, one, fmt.Errorf("number of children cannot be negative: %d", h.Children)
	}
	if !amount.IsPositive() {
		return decimal.Zero, one, nil
	}

	two := decimal.NewFromInt(2)
	married := h.Status == domain.Married

	switch rule.Kind {
	case domain.SplitNone:
		return amount, one, nil

	case domain.SplitHalveAndDouble:
		if !married {
			return amount, one, nil
		}
		return amount.Div(two), two, nil

	case domain.SplitDivideAndDouble:
		if !married {
			return amount, one, nil
		}
		return amount.Div(rule.Divisor), two, nil

	case domain.SplitDivideNoDoubling:
		if !married {
			return amount, one, nil
		}
		return amount.Div(rule.Divisor), one, nil

	case domain.SplitIncomeCoefficient:
		if !married {
			return amount, one, nil
		}
		return amount.Mul(rule.Coefficient), one, nil

	case domain.SplitFamilyQuotient:
		fq, ok := t.Schedule.(domain.FamilyQuotient)
		if !ok {
			return decimal.Zero, one, fmt.Errorf("splitting %s requires a family quotient schedule, got %s", rule.Kind, t.Schedule.Kind())
		}
		q, err := quotientFor(fq.Quotients, h)
		if err != nil {
			return decimal.Zero, one, err
		}
		return amount.Div(q), q, nil
	}

	return decimal.Zero, one, fmt.Errorf("unknown splitting kind %q", rule.Kind)
}

func quotientFor(table domain.QuotientTable, h Household) (decimal.Decimal, error) {
	if h.SingleParent && h.Status == domain.Single && h.Children == 0 {
		return table.SingleParent, nil
	}
	return table.Resolve(h.Status, h.Children)
}
