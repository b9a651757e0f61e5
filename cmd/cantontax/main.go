package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/cantons"
	"github.com/rgehrsitz/cantontax/internal/config"
	"github.com/rgehrsitz/cantontax/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds what every command needs once flags are parsed
type app struct {
	settings *config.Settings
	logger   *logging.ZapLogger
	registry *cantons.Registry
	engine   *calculation.Engine
}

// newApp loads settings, builds the logger and the tariff registry.
// The returned func flushes the logger.
func newApp(cmd *cobra.Command) (*app, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		settings.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	logger, syncLogger, err := logging.NewZapLogger(settings.Logging.Level, settings.Logging.Format)
	if err != nil {
		return nil, nil, err
	}

	registry := cantons.Default()
	if dir, _ := cmd.Flags().GetString("tariffs"); dir != "" {
		registry, err = cantons.NewRegistry(os.DirFS(dir))
		if err != nil {
			syncLogger()
			return nil, nil, fmt.Errorf("failed to load tariffs from %s: %w", dir, err)
		}
		logger.Infof("loaded %d cantons from %s", len(registry.Codes()), dir)
	}

	engine := calculation.NewEngine(registry)
	engine.SetLogger(logger)

	return &app{
		settings: settings,
		logger:   logger,
		registry: registry,
		engine:   engine,
	}, syncLogger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cantontax %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cantontax",
		Short: "Swiss cantonal tax calculator",
		Long: `Calculates cantonal and municipal income and wealth tax for all 26 Swiss cantons
from taxable amounts, and compares households across cantons.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Settings file (YAML); CANTONTAX_* env vars override it")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("tariffs", "", "Directory of tariff YAML files replacing the built-in tables")

	rootCmd.AddCommand(taxCmd("income"))
	rootCmd.AddCommand(taxCmd("wealth"))
	rootCmd.AddCommand(calculateCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(cantonsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
