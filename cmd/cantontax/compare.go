package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/transform"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank cantons or compare what-if scenarios for one household",
		Long: `Without --what-if or --transform, ranks the household across cantons from the
lowest to the highest total tax, using --canton as the base for differences.

With --what-if (built-in templates) or --transform (individual changes), calculates
each variant of the base household and reports the difference to it.

Available transforms:
  set_status:status=married
  set_children:count=2
  adjust_amount:percent=10 | adjust_amount:delta=-5000
  move_canton:canton=ZG
  set_multiplier:level=municipal,value=1.19
  set_tax_year:year=2025`,
		Example: `  cantontax compare --amount 120000 --canton ZH
  cantontax compare --amount 120000 --cantons ZH,ZG,SZ,GE --format csv
  cantontax compare --amount 120000 --what-if marry,move_zg
  cantontax compare --amount 120000 --transform move_canton:canton=LU --transform set_children:count=1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if list, _ := flags.GetBool("list-templates"); list {
				return listTemplates(cmd)
			}

			a, syncLogger, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer syncLogger()

			req, err := requestFromFlags(cmd, a, "amount")
			if err != nil {
				return err
			}

			entityText, _ := flags.GetString("entity")
			entity := domain.Entity(strings.ToLower(entityText))
			cantonList, _ := flags.GetStringSlice("cantons")
			whatIf, _ := flags.GetString("what-if")
			specs, _ := flags.GetStringArray("transform")
			format, _ := flags.GetString("format")

			engine := compare.NewCompareEngine(a.engine, a.registry)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var compSet *compare.ComparisonSet
			if whatIf != "" || len(specs) > 0 {
				a.logger.Infof("comparing %s against templates %q and %d transforms", req.Canton, whatIf, len(specs))
				compSet, err = engine.CompareScenarios(ctx, compare.ScenarioOptions{
					Entity:    entity,
					Base:      req,
					Templates: transform.ParseTemplateList(whatIf),
					Specs:     specs,
				})
			} else {
				a.logger.Infof("ranking %d cantons", len(cantonList))
				compSet, err = engine.RankCantons(ctx, compare.RankOptions{
					Entity:  entity,
					Request: req,
					Cantons: cantonList,
				})
			}
			if err != nil {
				return err
			}
			for code, reason := range compSet.Skipped {
				a.logger.Warnf("skipped %s: %s", code, reason)
			}

			return writeComparison(cmd, compSet, format)
		},
	}

	addHouseholdFlags(cmd)
	cmd.Flags().String("amount", "", "Taxable amount in CHF")
	cmd.Flags().String("entity", "income", "What to compare: income or wealth")
	cmd.Flags().StringSlice("cantons", nil, "Cantons to rank (comma separated, default all)")
	cmd.Flags().String("what-if", "", "Comma separated built-in templates (see --list-templates)")
	cmd.Flags().StringArray("transform", nil, "Transform spec, repeatable (e.g. move_canton:canton=ZG)")
	cmd.Flags().Bool("list-templates", false, "List built-in what-if templates and exit")
	cmd.Flags().StringP("format", "f", "table", "Output format: table, csv, json")
	return cmd
}

func writeComparison(cmd *cobra.Command, compSet *compare.ComparisonSet, format string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "table", "console", "":
		formatter := &compare.TableFormatter{}
		fmt.Fprint(out, formatter.Format(compSet))
	case "compact":
		formatter := &compare.TableFormatter{}
		fmt.Fprintln(out, formatter.FormatCompact(compSet))
	case "csv":
		formatter := &compare.CSVFormatter{}
		content, err := formatter.Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		fmt.Fprint(out, content)
	case "json":
		content, err := compare.JSONFormatter{Pretty: true}.Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprint(out, content)
	default:
		return fmt.Errorf("unsupported comparison format: %s (use table, compact, csv or json)", format)
	}
	return nil
}

func listTemplates(cmd *cobra.Command) error {
	registry := transform.CreateBuiltInTemplates()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available what-if templates:")
	fmt.Fprintln(out)
	for _, name := range registry.List() {
		tmpl, _ := registry.Get(name)
		fmt.Fprintf(out, "  %-22s %s\n", name, tmpl.Description)
	}
	return nil
}
