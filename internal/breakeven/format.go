package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for a solver result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder
	req := result.Request

	sb.WriteString("BREAK-EVEN AMOUNT\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Household:           %s %d, %s, %d children\n",
		strings.ToUpper(req.Base.Canton), req.Base.TaxYear, req.Base.MaritalStatus, req.Base.Children))
	sb.WriteString(fmt.Sprintf("Entity:              %s\n", req.Entity))
	sb.WriteString(fmt.Sprintf("Target:              %s = %s\n", req.Target, tf.formatTarget(req.Target, req.Value)))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("SOLUTION\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	label := "Taxable Income:"
	if req.Entity == domain.EntityWealth {
		label = "Taxable Wealth:"
	}
	sb.WriteString(fmt.Sprintf("%-20s %s\n", label, domain.FormatCHF(result.Amount)))
	sb.WriteString(fmt.Sprintf("Achieved:            %s (%s%s)\n",
		tf.formatTarget(req.Target, result.Achieved),
		tf.deltaSymbol(result.Difference), tf.formatTarget(req.Target, result.Difference)))
	sb.WriteString("\n")

	sb.WriteString("RESULT AT SOLUTION\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	r := result.Result
	sb.WriteString(fmt.Sprintf("Simple Tax:          %s\n", domain.FormatCHF(r.SimpleTax)))
	sb.WriteString(fmt.Sprintf("Cantonal Tax:        %s\n", domain.FormatCHF(r.CantonalTax)))
	sb.WriteString(fmt.Sprintf("Municipal Tax:       %s\n", domain.FormatCHF(r.MunicipalTax)))
	sb.WriteString(fmt.Sprintf("Total Tax:           %s\n", domain.FormatCHF(r.TotalTax)))
	sb.WriteString(fmt.Sprintf("Effective Rate:      %s\n", domain.FormatPercent(r.EffectiveRatePercent)))

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *SolveResult) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatTarget(target Target, d decimal.Decimal) string {
	if target == TargetEffectiveRate {
		return domain.FormatPercent(d)
	}
	return domain.FormatCHF(d)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return ""
	}
	return "+"
}
