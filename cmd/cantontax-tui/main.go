package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/cantons"
	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/config"
	"github.com/rgehrsitz/cantontax/internal/logging"
	"github.com/rgehrsitz/cantontax/internal/tui"
)

func main() {
	// optional settings file as the only argument
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			fmt.Printf("Error: settings file not found: %s\n", configPath)
			os.Exit(1)
		}
	}

	settings, err := config.LoadSettings(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// stderr shares the terminal with the alt screen, so only errors are logged
	logger, syncLogger, err := logging.NewZapLogger("error", settings.Logging.Format)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer syncLogger()

	registry := cantons.Default()
	calcEngine := calculation.NewEngine(registry)
	calcEngine.SetLogger(logger)
	compareEngine := compare.NewCompareEngine(calcEngine, registry)

	p := tea.NewProgram(
		tui.NewModel(calcEngine, compareEngine, settings.TaxYear),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
