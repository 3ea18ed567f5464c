package main

import (
	"fmt"
	"os"
	"time"

	"ratedesk/cmd"
	"ratedesk/internal/dataset"
	"ratedesk/internal/db"
	"ratedesk/internal/logging"
	"ratedesk/internal/ratetable"
	"ratedesk/internal/render"
	"ratedesk/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if config.ShowVersion {
		fmt.Println("ratedesk", version)
		return
	}

	closer, err := logging.Setup(config.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.WithFields(log.Fields{
		"version":  version,
		"data":     config.DataPath,
		"db":       config.DBPath,
		"category": config.Category,
	}).Info("Starting ratedesk")

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if config.Export != "" {
		if err := exportHTML(config, dataset.Source{Path: config.DataPath, DB: database}); err != nil {
			log.WithError(err).Error("Export failed")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	prefsPath, err := ui.DefaultPrefsPath()
	if err != nil {
		log.WithError(err).Warn("UI preferences disabled")
	}

	// Create and run Bubble Tea app
	app := ui.New(ui.Options{
		DataPath:   config.DataPath,
		DB:         database,
		Category:   config.Category,
		Search:     config.Search,
		SortKey:    config.SortKey,
		SortDir:    config.SortDir,
		ExportPath: config.ExportPath,
		PrefsPath:  prefsPath,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// exportHTML renders the table with the configured filters and sort and
// writes it without starting the terminal UI.
func exportHTML(config *cmd.Config, src dataset.Source) error {
	entries, _, err := dataset.Fetch(src)
	if err != nil {
		return err
	}

	table := ratetable.New(entries)
	table.SetCategory(config.Category)
	table.SetSearch(config.Search)
	if config.SortKey != "" {
		table.SortBy(config.SortKey, config.SortDir)
	}

	if err := render.WriteFile(config.Export, table, time.Now()); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"path":    config.Export,
		"rows":    table.VisibleLen(),
		"total":   table.Len(),
		"sortKey": config.SortKey,
	}).Info("Exported html")
	fmt.Printf("Wrote %d of %d institutions to %s\n", table.VisibleLen(), table.Len(), config.Export)
	return nil
}
