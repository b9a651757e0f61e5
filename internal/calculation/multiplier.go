package calculation

import (
	"fmt"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// MunicipalFactors are the municipality-specific inputs to composition. Indexation is
// only used by dual_indexation cantons.
type MunicipalFactors struct {
	Multiplier decimal.Decimal
	Indexation decimal.Decimal
}

// Composition splits a simple tax into the amounts owed to canton and municipality
type Composition struct {
	SimpleTax    decimal.Decimal
	CantonalTax  decimal.Decimal
	MunicipalTax decimal.Decimal
	TotalTax     decimal.Decimal
}

// Compose applies the canton's multiplier scheme. The municipal multiplier is always
// applied to the simple tax, never to the cantonal tax. Each part is rounded before the
// total is summed.
func Compose(kind domain.MultiplierKind, parts TaxParts, cantonMultiplier decimal.Decimal, municipal MunicipalFactors) (Composition, error) {
	simple := parts.Canton
	var canton, commune decimal.Decimal

	switch kind {
	case domain.MultiplierPercentage, domain.MultiplierUnits:
		canton = simple.Mul(cantonMultiplier)
		commune = simple.Mul(municipal.Multiplier)

	case domain.MultiplierCentimes:
		centimes := cantonMultiplier.Add(municipal.Multiplier)
		if centimes.IsPositive() {
			canton = simple.Mul(cantonMultiplier).Div(centimes)
			commune = simple.Mul(municipal.Multiplier).Div(centimes)
		}

	case domain.MultiplierDualIndex:
		canton = simple.Mul(cantonMultiplier)
		commune = simple.Mul(municipal.Multiplier).Mul(municipal.Indexation)

	case domain.MultiplierNone:
		canton = simple
		commune = simple.Mul(municipal.Multiplier)

	case domain.MultiplierDualTariff:
		simple = parts.Total()
		canton = parts.Canton
		commune = parts.Municipal

	default:
		return Composition{}, fmt.Errorf("unknown multiplier kind %q", kind)
	}

	c := Composition{
		SimpleTax:    domain.RoundMoney(simple),
		CantonalTax:  domain.RoundMoney(canton),
		MunicipalTax: domain.RoundMoney(commune),
	}
	c.TotalTax = c.CantonalTax.Add(c.MunicipalTax)
	return c, nil
}

// scale multiplies every rounded part by the number of shares a split household owes
func (c Composition) scale(shares decimal.Decimal) Composition {
	if shares.Equal(decimal.NewFromInt(1)) {
		return c
	}
	scaled := Composition{
		SimpleTax:    domain.RoundMoney(c.SimpleTax.Mul(shares)),
		CantonalTax:  domain.RoundMoney(c.CantonalTax.Mul(shares)),
		MunicipalTax: domain.RoundMoney(c.MunicipalTax.Mul(shares)),
	}
	scaled.TotalTax = scaled.CantonalTax.Add(scaled.MunicipalTax)
	return scaled
}
