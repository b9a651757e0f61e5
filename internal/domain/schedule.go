package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ScheduleKind identifies the structural form of a canton's rate law
type ScheduleKind string

const (
	KindMarginal       ScheduleKind = "marginal"
	KindCumulative     ScheduleKind = "cumulative"
	KindProportional   ScheduleKind = "proportional"
	KindLogarithmic    ScheduleKind = "logarithmic"
	KindFamilyQuotient ScheduleKind = "family_quotient"
	KindDualTariff     ScheduleKind = "dual_tariff"
)

// Schedule is one variant of a rate law. The concrete types below are the only
// implementations; evaluation switches on the concrete type.
type Schedule interface {
	Kind() ScheduleKind
	Validate() error
}

// Bracket is one row of a bracket table. Upper is nil for the open-ended top bracket.
// Marginal tables only use Upper and Rate; cumulative tables use all four fields.
type Bracket struct {
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper,omitempty"`
	Rate  decimal.Decimal  `json:"rate"`
	Base  decimal.Decimal  `json:"base"`
}

// Unbounded reports whether the bracket has no upper limit
func (b Bracket) Unbounded() bool {
	return b.Upper == nil
}

// Contains reports whether amount lies in [Lower, Upper)
func (b Bracket) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(b.Lower) {
		return false
	}
	return b.Unbounded() || amount.LessThan(*b.Upper)
}

// MarginalBrackets accumulates tax bracket by bracket from zero
type MarginalBrackets struct {
	Brackets []Bracket `json:"brackets"`
}

func (MarginalBrackets) Kind() ScheduleKind { return KindMarginal }

func (s MarginalBrackets) Validate() error {
	if err := validateUppers(s.Brackets); err != nil {
		return err
	}
	for i, b := range s.Brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("bracket %d: rate cannot be negative", i)
		}
	}
	return nil
}

// CumulativeBrackets reproduces a published tariff table: each bracket carries the
// tax due at its lower bound, so the tax is Base + Rate * (amount - Lower).
type CumulativeBrackets struct {
	Brackets []Bracket `json:"brackets"`
}

func (CumulativeBrackets) Kind() ScheduleKind { return KindCumulative }

func (s CumulativeBrackets) Validate() error {
	if err := validateUppers(s.Brackets); err != nil {
		return err
	}
	if !s.Brackets[0].Lower.IsZero() {
		return fmt.Errorf("bracket 0: lower bound must be 0, got %s", s.Brackets[0].Lower)
	}
	for i, b := range s.Brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("bracket %d: rate cannot be negative", i)
		}
		if b.Base.IsNegative() {
			return fmt.Errorf("bracket %d: base amount cannot be negative", i)
		}
		if i > 0 && !b.Lower.Equal(*s.Brackets[i-1].Upper) {
			return fmt.Errorf("bracket %d: lower bound %s does not continue previous upper bound %s",
				i, b.Lower, *s.Brackets[i-1].Upper)
		}
		if b.Upper != nil && !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("bracket %d: upper bound %s must exceed lower bound %s", i, *b.Upper, b.Lower)
		}
	}
	return nil
}

// Proportional is a flat rate expressed per mille
type Proportional struct {
	RatePerMille decimal.Decimal `json:"rate_per_mille"`
}

func (Proportional) Kind() ScheduleKind { return KindProportional }

func (s Proportional) Validate() error {
	if s.RatePerMille.IsNegative() {
		return errors.New("rate per mille cannot be negative")
	}
	return nil
}

// LogSegment holds the coefficients of b*x + c*x*(ln(x) - 1) + d for amounts below Upper
type LogSegment struct {
	Upper *decimal.Decimal `json:"upper,omitempty"`
	B     decimal.Decimal  `json:"b"`
	C     decimal.Decimal  `json:"c"`
	D     decimal.Decimal  `json:"d"`
}

// LogarithmicFormula is a statutory formula tariff. Amounts below MinAmount owe no tax
// and never reach the logarithm.
type LogarithmicFormula struct {
	MinAmount decimal.Decimal `json:"min_amount"`
	Segments  []LogSegment    `json:"segments"`
}

func (LogarithmicFormula) Kind() ScheduleKind { return KindLogarithmic }

func (s LogarithmicFormula) Validate() error {
	if !s.MinAmount.IsPositive() {
		return errors.New("min amount must be positive for a logarithmic formula")
	}
	if len(s.Segments) == 0 {
		return errors.New("at least one segment is required")
	}
	prev := s.MinAmount
	for i, seg := range s.Segments {
		if seg.Upper == nil {
			if i != len(s.Segments)-1 {
				return fmt.Errorf("segment %d: only the last segment may be unbounded", i)
			}
			continue
		}
		if !seg.Upper.GreaterThan(prev) {
			return fmt.Errorf("segment %d: upper bound %s must exceed %s", i, *seg.Upper, prev)
		}
		prev = *seg.Upper
	}
	if s.Segments[len(s.Segments)-1].Upper != nil {
		return errors.New("last segment must be unbounded")
	}
	return nil
}

// QuotientTable resolves the family quotient from household composition
type QuotientTable struct {
	Single       decimal.Decimal `json:"single"`
	Married      decimal.Decimal `json:"married"`
	SingleParent decimal.Decimal `json:"single_parent"`
	PerChild     decimal.Decimal `json:"per_child"`
	MaxChildren  int             `json:"max_children,omitempty"`
}

// Resolve returns the quotient for a household. A single person with children is
// treated as a single-parent household.
func (q QuotientTable) Resolve(status MaritalStatus, children int) (decimal.Decimal, error) {
	if children < 0 {
		return decimal.Zero, fmt.Errorf("number of children cannot be negative: %d", children)
	}
	if q.MaxChildren > 0 && children > q.MaxChildren {
		children = q.MaxChildren
	}
	var base decimal.Decimal
	switch status {
	case Married:
		base = q.Married
	case Single:
		base = q.Single
		if children > 0 {
			base = q.SingleParent
		}
	default:
		return decimal.Zero, &InvalidMaritalStatusError{Value: string(status)}
	}
	return base.Add(q.PerChild.Mul(decimal.NewFromInt(int64(children)))), nil
}

func (q QuotientTable) validate() error {
	if !q.Single.IsPositive() || !q.Married.IsPositive() || !q.SingleParent.IsPositive() {
		return errors.New("quotients must be positive")
	}
	if q.PerChild.IsNegative() {
		return errors.New("per-child quotient cannot be negative")
	}
	if q.MaxChildren < 0 {
		return errors.New("max children cannot be negative")
	}
	return nil
}

// FamilyQuotient divides the amount by a household quotient before the base schedule
// is applied and multiplies the tax back afterwards.
type FamilyQuotient struct {
	Base      Schedule      `json:"base"`
	Quotients QuotientTable `json:"quotients"`
}

func (FamilyQuotient) Kind() ScheduleKind { return KindFamilyQuotient }

func (s FamilyQuotient) Validate() error {
	if s.Base == nil {
		return errors.New("family quotient requires a base schedule")
	}
	switch s.Base.(type) {
	case FamilyQuotient, DualTariff:
		return fmt.Errorf("family quotient base cannot be %s", s.Base.Kind())
	}
	if err := s.Base.Validate(); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	return s.Quotients.validate()
}

// DualTariff evaluates canton and municipal tax from two independent tables
type DualTariff struct {
	Canton    Schedule `json:"canton"`
	Municipal Schedule `json:"municipal"`
}

func (DualTariff) Kind() ScheduleKind { return KindDualTariff }

func (s DualTariff) Validate() error {
	if s.Canton == nil || s.Municipal == nil {
		return errors.New("dual tariff requires both canton and municipal schedules")
	}
	for name, sub := range map[string]Schedule{"canton": s.Canton, "municipal": s.Municipal} {
		switch sub.(type) {
		case FamilyQuotient, DualTariff:
			return fmt.Errorf("%s schedule cannot be %s", name, sub.Kind())
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// FlatRateOverride taxes the entire amount at Rate once it exceeds Threshold
type FlatRateOverride struct {
	Threshold decimal.Decimal `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"`
}

// Tariff wraps a schedule with the rules that apply before it is evaluated
type Tariff struct {
	Schedule Schedule          `json:"schedule"`
	FlatRate *FlatRateOverride `json:"flat_rate,omitempty"`
	// RoundDownTo floors the amount to a multiple of this step (0 = off)
	RoundDownTo decimal.Decimal `json:"round_down_to"`
}

// Validate checks the tariff and its schedule
func (t Tariff) Validate() error {
	if t.Schedule == nil {
		return errors.New("schedule is required")
	}
	if err := t.Schedule.Validate(); err != nil {
		return err
	}
	if t.FlatRate != nil {
		if !t.FlatRate.Threshold.IsPositive() {
			return errors.New("flat rate threshold must be positive")
		}
		if t.FlatRate.Rate.IsNegative() {
			return errors.New("flat rate cannot be negative")
		}
	}
	if t.RoundDownTo.IsNegative() {
		return errors.New("round down step cannot be negative")
	}
	return nil
}

// IsDual reports whether the tariff is a dual canton/municipal tariff
func (t Tariff) IsDual() bool {
	_, ok := t.Schedule.(DualTariff)
	return ok
}

// validateUppers checks bracket ordering shared by both bracket representations
func validateUppers(brackets []Bracket) error {
	if len(brackets) == 0 {
		return errors.New("at least one bracket is required")
	}
	var prev *decimal.Decimal
	for i, b := range brackets {
		if b.Upper == nil {
			if i != len(brackets)-1 {
				return fmt.Errorf("bracket %d: only the last bracket may be unbounded", i)
			}
			continue
		}
		if !b.Upper.IsPositive() {
			return fmt.Errorf("bracket %d: upper bound must be positive", i)
		}
		if prev != nil && !b.Upper.GreaterThan(*prev) {
			return fmt.Errorf("bracket %d: upper bound %s must exceed previous %s", i, *b.Upper, *prev)
		}
		prev = b.Upper
	}
	if !brackets[len(brackets)-1].Unbounded() {
		return errors.New("last bracket must be unbounded")
	}
	return nil
}
