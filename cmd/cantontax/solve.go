package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/cantontax/internal/breakeven"
	"github.com/rgehrsitz/cantontax/internal/domain"
)

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the taxable amount at which a target tax is reached",
		Long: `Searches the smallest taxable amount (to the franc) at which the household reaches
either a total tax (--target-tax) or an effective rate (--target-rate).`,
		Example: `  cantontax solve --canton ZH --year 2024 --target-tax 10000
  cantontax solve --canton GE --status married --children 2 --target-rate 12%
  cantontax solve --canton ZG --entity wealth --target-tax 5000 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, syncLogger, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer syncLogger()

			flags := cmd.Flags()
			base, err := requestFromFlags(cmd, a, "")
			if err != nil {
				return err
			}

			taxText, _ := flags.GetString("target-tax")
			rateText, _ := flags.GetString("target-rate")
			req := breakeven.SolveRequest{Base: base}
			switch {
			case taxText != "" && rateText != "":
				return fmt.Errorf("use either --target-tax or --target-rate, not both")
			case taxText != "":
				req.Target = breakeven.TargetTotalTax
				if req.Value, err = domain.ParseAmount(taxText); err != nil {
					return fmt.Errorf("--target-tax: %w", err)
				}
			case rateText != "":
				req.Target = breakeven.TargetEffectiveRate
				if req.Value, err = decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(rateText), "%")); err != nil {
					return fmt.Errorf("--target-rate: invalid rate %q", rateText)
				}
			default:
				return fmt.Errorf("one of --target-tax or --target-rate is required")
			}

			entityText, _ := flags.GetString("entity")
			req.Entity = domain.Entity(entityText)
			for _, bound := range []struct {
				flag   string
				target **decimal.Decimal
			}{
				{"min-amount", &req.Constraints.MinAmount},
				{"max-amount", &req.Constraints.MaxAmount},
			} {
				text, _ := flags.GetString(bound.flag)
				if text == "" {
					continue
				}
				value, err := domain.ParseAmount(text)
				if err != nil {
					return fmt.Errorf("--%s: %w", bound.flag, err)
				}
				*bound.target = &value
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			result, err := breakeven.NewDefaultSolver(a.engine).Solve(ctx, req)
			if err != nil {
				return err
			}
			a.logger.Debugf("solver finished after %d iterations: %s", result.Iterations, result.ConvergenceInfo)

			out := cmd.OutOrStdout()
			format, _ := flags.GetString("format")
			switch strings.ToLower(format) {
			case "table", "console", "":
				fmt.Fprint(out, (&breakeven.TableFormatter{}).Format(result))
			case "json":
				content, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				fmt.Fprintln(out, content)
			default:
				return fmt.Errorf("unsupported solve format: %s (use table or json)", format)
			}
			return nil
		},
	}

	addHouseholdFlags(cmd)
	cmd.Flags().String("entity", "income", "Solve for income or wealth")
	cmd.Flags().String("target-tax", "", "Target total tax in CHF")
	cmd.Flags().String("target-rate", "", "Target effective rate in percent (e.g. 8.5 or 8.5%)")
	cmd.Flags().String("min-amount", "", "Lower bound of the search in CHF (default 0)")
	cmd.Flags().String("max-amount", "", "Upper bound of the search in CHF (default 100'000'000)")
	cmd.Flags().StringP("format", "f", "table", "Output format: table, json")
	return cmd
}
