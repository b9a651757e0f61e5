package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/cantontax/internal/config"
)

func cantonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cantons",
		Short: "List the cantons and tax years with tariff data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, syncLogger, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer syncLogger()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-4s %-26s %s\n", "Code", "Canton", "Tax years")
			fmt.Fprintln(out, strings.Repeat("-", 50))
			for _, code := range a.registry.Codes() {
				years := lo.Map(a.registry.Years(code), func(y int, _ int) string {
					return fmt.Sprintf("%d", y)
				})
				fmt.Fprintf(out, "%-4s %-26s %s\n", code, a.registry.Name(code), strings.Join(years, ", "))
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [tariff-file]",
		Short: "Validate a canton tariff file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewTariffParser()
			configs, err := parser.LoadFromFile(args[0])
			if err != nil {
				return fmt.Errorf("tariff validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tariff file %s is valid\n", args[0])
			for _, cfg := range configs {
				fmt.Fprintf(out, "  %s %d (%s)\n", cfg.Code, cfg.TaxYear, cfg.Name)
			}
			return nil
		},
	}
}
