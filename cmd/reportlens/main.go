// Command reportlens watches a folder for report files and analyses them.
package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/reportlens/internal/adapters/driving/cli"
	"github.com/custodia-labs/reportlens/internal/app"
	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	services := cli.Services{
		OpenSettings: openSettings,
		NewEngine:    newEngine,
	}

	// A missing home directory only matters to commands that read settings.
	if settings, err := app.NewSettingsService(""); err != nil {
		logger.Warn("settings unavailable", "err", err)
	} else {
		services.Settings = settings
	}

	cli.SetVersion(version)
	cli.SetServices(services)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSettings(path string) (driving.SettingsService, error) {
	s, err := app.NewSettingsService(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newEngine(settings domain.Settings, l *log.Logger) (cli.Engine, error) {
	engine, err := app.BuildEngine(settings, l)
	if err != nil {
		return nil, err
	}
	return engine, nil
}
