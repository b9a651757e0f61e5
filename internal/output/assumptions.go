package output

// DefaultAssumptions lists the modelling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Amounts are taxable income or net wealth after all deductions",
	"Municipal multipliers default to the cantonal capital",
	"Federal direct tax and church tax are not included",
	"Married couples are assessed jointly on their combined amount",
}
