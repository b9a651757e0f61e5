package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/output"
)

// addHouseholdFlags registers the flags describing one household and municipality
func addHouseholdFlags(cmd *cobra.Command) {
	cmd.Flags().String("canton", "ZH", "Canton code (e.g. ZH, ZG, GE)")
	cmd.Flags().Int("year", 0, "Tax year (defaults to the settings tax_year)")
	cmd.Flags().String("status", "single", "Marital status: single or married")
	cmd.Flags().Int("children", 0, "Number of dependent children")
	cmd.Flags().Bool("single-parent", false, "Single parent household (family tariff where the canton has one)")
	cmd.Flags().String("canton-multiplier", "", "Override the cantonal multiplier (e.g. 0.98 or 98%)")
	cmd.Flags().String("municipal-multiplier", "", "Municipal multiplier of the commune (e.g. 1.19)")
	cmd.Flags().String("municipal-indexation", "", "Municipal indexation factor (cantons with dual indexation)")
}

// requestFromFlags builds a calculation request from the household flags.
// amountFlag names the flag holding the taxable amount; empty leaves it zero.
func requestFromFlags(cmd *cobra.Command, a *app, amountFlag string) (calculation.Request, error) {
	flags := cmd.Flags()
	canton, _ := flags.GetString("canton")
	year, _ := flags.GetInt("year")
	statusText, _ := flags.GetString("status")
	children, _ := flags.GetInt("children")
	singleParent, _ := flags.GetBool("single-parent")

	if year == 0 {
		year = a.settings.TaxYear
	}
	status, err := domain.ParseMaritalStatus(statusText)
	if err != nil {
		return calculation.Request{}, err
	}
	if children < 0 {
		return calculation.Request{}, fmt.Errorf("children must not be negative, got %d", children)
	}

	req := calculation.Request{
		Canton:        strings.ToUpper(strings.TrimSpace(canton)),
		TaxYear:       year,
		MaritalStatus: status,
		Children:      children,
		SingleParent:  singleParent,
	}
	if amountFlag != "" {
		amountText, _ := flags.GetString(amountFlag)
		if req.Amount, err = domain.ParseAmount(amountText); err != nil {
			return calculation.Request{}, fmt.Errorf("--%s: %w", amountFlag, err)
		}
	}

	overrides := []struct {
		flag   string
		target **decimal.Decimal
	}{
		{"canton-multiplier", &req.CantonMultiplier},
		{"municipal-multiplier", &req.MunicipalMultiplier},
		{"municipal-indexation", &req.MunicipalIndexation},
	}
	for _, o := range overrides {
		text, _ := flags.GetString(o.flag)
		if strings.TrimSpace(text) == "" {
			continue
		}
		value, err := parseFactor(text)
		if err != nil {
			return calculation.Request{}, fmt.Errorf("--%s: %w", o.flag, err)
		}
		*o.target = &value
	}
	return req, nil
}

// parseFactor accepts a plain factor (1.19) or a percentage (119%)
func parseFactor(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	percent := strings.HasSuffix(text, "%")
	value, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(text, "%")))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid factor %q", text)
	}
	if percent {
		value = value.Div(domain.Hundred)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("factor must not be negative, got %s", text)
	}
	return value, nil
}

// outputFormat resolves --format against the settings default
func outputFormat(cmd *cobra.Command, a *app) string {
	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		return format
	}
	return a.settings.Format
}

// writeReport renders results with the chosen formatter to the command output
func writeReport(cmd *cobra.Command, a *app, title string, results ...domain.CalculationResult) error {
	formatter, err := output.NewFormatter(outputFormat(cmd, a))
	if err != nil {
		return err
	}
	report := output.NewReport(title, results...)
	report.Assumptions = output.DefaultAssumptions
	data, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// taxCmd builds the income or wealth command
func taxCmd(entity string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   entity,
		Short: fmt.Sprintf("Calculate cantonal and municipal %s tax", entity),
		Example: fmt.Sprintf("  cantontax %s --canton ZH --year 2024 --amount 120'000 --status married --children 2",
			entity),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, syncLogger, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer syncLogger()

			req, err := requestFromFlags(cmd, a, "amount")
			if err != nil {
				return err
			}

			var result domain.CalculationResult
			if entity == string(domain.EntityWealth) {
				result, err = a.engine.CalculateWealth(req)
			} else {
				result, err = a.engine.CalculateIncome(req)
			}
			if err != nil {
				a.logger.Errorf("%s calculation failed: %v", entity, err)
				return err
			}
			a.logger.Debugf("%s %s %d: total %s", entity, result.Canton, result.TaxYear, result.TotalTax)

			return writeReport(cmd, a, fmt.Sprintf("%s tax %s %d", strings.ToUpper(entity[:1])+entity[1:], req.Canton, req.TaxYear), result)
		},
	}
	addHouseholdFlags(cmd)
	cmd.Flags().String("amount", "", "Taxable amount in CHF (e.g. 85000 or 85'000)")
	cmd.Flags().StringP("format", "f", "console", "Output format: "+strings.Join(output.FormatNames(), ", "))
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// calculateCmd computes income and wealth tax for one household in one report
func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate income and wealth tax together",
		Example: "  cantontax calculate --canton GE --income 150000 --wealth 800000 --status married",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, syncLogger, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer syncLogger()

			incomeReq, err := requestFromFlags(cmd, a, "income")
			if err != nil {
				return err
			}
			wealthReq, err := requestFromFlags(cmd, a, "wealth")
			if err != nil {
				return err
			}

			income, err := a.engine.CalculateIncome(incomeReq)
			if err != nil {
				return fmt.Errorf("income tax: %w", err)
			}
			wealth, err := a.engine.CalculateWealth(wealthReq)
			if err != nil {
				return fmt.Errorf("wealth tax: %w", err)
			}
			return writeReport(cmd, a, fmt.Sprintf("Tax %s %d", incomeReq.Canton, incomeReq.TaxYear), income, wealth)
		},
	}
	addHouseholdFlags(cmd)
	cmd.Flags().String("income", "", "Taxable income in CHF")
	cmd.Flags().String("wealth", "", "Taxable wealth in CHF")
	cmd.Flags().StringP("format", "f", "console", "Output format: "+strings.Join(output.FormatNames(), ", "))
	_ = cmd.MarkFlagRequired("income")
	_ = cmd.MarkFlagRequired("wealth")
	return cmd
}
