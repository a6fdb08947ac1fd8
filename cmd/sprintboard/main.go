package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/app"
	"github.com/nhle/sprintboard/internal/config"
	"github.com/nhle/sprintboard/internal/session"
	"github.com/nhle/sprintboard/internal/store"
)

func main() {
	configPath := flag.String(
		"config", config.DefaultConfigPath(), "path to the configuration file",
	)
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sprintboard: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}

	db, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "sprintboard.db"))
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer db.Close()

	client := api.NewClient(
		cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSec)*time.Second,
	)
	sess := session.New(client, db)

	root := app.New(client, db, sess, cfg.Organisation)
	program := tea.NewProgram(root, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
