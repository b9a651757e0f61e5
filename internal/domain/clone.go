package domain

import "github.com/shopspring/decimal"

// Clone returns a copy of the configuration that shares no slices or pointers with c.
// decimal.Decimal values are immutable and are copied by value.
func (c CantonTaxConfig) Clone() CantonTaxConfig {
	c.Income = c.Income.Clone()
	c.Wealth = c.Wealth.Clone()
	return c
}

// Clone deep-copies both tariffs
func (p TariffPair) Clone() TariffPair {
	return TariffPair{Single: p.Single.Clone(), Married: p.Married.Clone()}
}

// Clone deep-copies the schedule and the flat-rate override
func (t Tariff) Clone() Tariff {
	t.Schedule = CloneSchedule(t.Schedule)
	if t.FlatRate != nil {
		flat := *t.FlatRate
		t.FlatRate = &flat
	}
	return t
}

// CloneSchedule deep-copies any schedule variant. Nil stays nil.
func CloneSchedule(s Schedule) Schedule {
	switch v := s.(type) {
	case MarginalBrackets:
		return MarginalBrackets{Brackets: cloneBrackets(v.Brackets)}
	case CumulativeBrackets:
		return CumulativeBrackets{Brackets: cloneBrackets(v.Brackets)}
	case Proportional:
		return v
	case LogarithmicFormula:
		segments := make([]LogSegment, len(v.Segments))
		for i, seg := range v.Segments {
			seg.Upper = clonePtr(seg.Upper)
			segments[i] = seg
		}
		return LogarithmicFormula{MinAmount: v.MinAmount, Segments: segments}
	case FamilyQuotient:
		return FamilyQuotient{Base: CloneSchedule(v.Base), Quotients: v.Quotients}
	case DualTariff:
		return DualTariff{Canton: CloneSchedule(v.Canton), Municipal: CloneSchedule(v.Municipal)}
	}
	return s
}

func cloneBrackets(brackets []Bracket) []Bracket {
	if brackets == nil {
		return nil
	}
	out := make([]Bracket, len(brackets))
	for i, b := range brackets {
		b.Upper = clonePtr(b.Upper)
		out[i] = b
	}
	return out
}

func clonePtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
