package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVSummarizer implements the summary CSV output (one row per result).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Canton", "TaxYear", "Entity", "MaritalStatus", "Children", "Amount", "TaxableAmount", "SimpleTax", "CantonalTax", "MunicipalTax", "TotalTax", "EffectiveRatePercent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range report.Results {
		row := []string{
			r.Canton,
			strconv.Itoa(r.TaxYear),
			string(r.Entity),
			string(r.MaritalStatus),
			strconv.Itoa(r.Children),
			r.Amount.StringFixed(2),
			r.TaxableAmount.StringFixed(2),
			r.SimpleTax.StringFixed(2),
			r.CantonalTax.StringFixed(2),
			r.MunicipalTax.StringFixed(2),
			r.TotalTax.StringFixed(2),
			r.EffectiveRatePercent.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
