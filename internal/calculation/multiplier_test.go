package calculation

import (
	"testing"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.MultiplierKind
		parts     TaxParts
		canton    string
		municipal MunicipalFactors
		simple    string
		cantonal  string
		commune   string
		total     string
	}{
		{
			name:      "percentage",
			kind:      domain.MultiplierPercentage,
			parts:     TaxParts{Canton: d("1560")},
			canton:    "0.98",
			municipal: MunicipalFactors{Multiplier: d("1.19")},
			simple:    "1560.00", cantonal: "1528.80", commune: "1856.40", total: "3385.20",
		},
		{
			name:      "units",
			kind:      domain.MultiplierUnits,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "3.025",
			municipal: MunicipalFactors{Multiplier: d("1.54")},
			simple:    "1000.00", cantonal: "3025.00", commune: "1540.00", total: "4565.00",
		},
		{
			name:      "municipal multiplier applies to simple tax",
			kind:      domain.MultiplierPercentage,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "2",
			municipal: MunicipalFactors{Multiplier: d("1.5")},
			simple:    "1000.00", cantonal: "2000.00", commune: "1500.00", total: "3500.00",
		},
		{
			name:      "centimes additionnels split the combined tax",
			kind:      domain.MultiplierCentimes,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "47.5",
			municipal: MunicipalFactors{Multiplier: d("45.49")},
			simple:    "1000.00", cantonal: "510.81", commune: "489.19", total: "1000.00",
		},
		{
			name:      "centimes summing to zero",
			kind:      domain.MultiplierCentimes,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "0",
			municipal: MunicipalFactors{Multiplier: d("0")},
			simple:    "1000.00", cantonal: "0.00", commune: "0.00", total: "0.00",
		},
		{
			name:      "dual indexation",
			kind:      domain.MultiplierDualIndex,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "1.00",
			municipal: MunicipalFactors{Multiplier: d("1.2"), Indexation: d("1.1")},
			simple:    "1000.00", cantonal: "1000.00", commune: "1320.00", total: "2320.00",
		},
		{
			name:      "none",
			kind:      domain.MultiplierNone,
			parts:     TaxParts{Canton: d("1000")},
			canton:    "0",
			municipal: MunicipalFactors{Multiplier: d("0.65")},
			simple:    "1000.00", cantonal: "1000.00", commune: "650.00", total: "1650.00",
		},
		{
			name:   "dual tariff",
			kind:   domain.MultiplierDualTariff,
			parts:  TaxParts{Canton: d("18900"), Municipal: d("2700")},
			simple: "21600.00", cantonal: "18900.00", commune: "2700.00", total: "21600.00",
		},
		{
			name:      "parts are rounded before summing",
			kind:      domain.MultiplierPercentage,
			parts:     TaxParts{Canton: d("100.01")},
			canton:    "1.005",
			municipal: MunicipalFactors{Multiplier: d("1.005")},
			simple:    "100.01", cantonal: "100.51", commune: "100.51", total: "201.02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := d("0")
			if tt.canton != "" {
				cm = d(tt.canton)
			}
			c, err := Compose(tt.kind, tt.parts, cm, tt.municipal)
			require.NoError(t, err)
			assert.Equal(t, tt.simple, c.SimpleTax.StringFixed(2), "simple")
			assert.Equal(t, tt.cantonal, c.CantonalTax.StringFixed(2), "cantonal")
			assert.Equal(t, tt.commune, c.MunicipalTax.StringFixed(2), "municipal")
			assert.Equal(t, tt.total, c.TotalTax.StringFixed(2), "total")
		})
	}
}

func TestCompose_UnknownKind(t *testing.T) {
	_, err := Compose("steuerfuss", TaxParts{Canton: d("1")}, d("1"), MunicipalFactors{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown multiplier kind")
}
