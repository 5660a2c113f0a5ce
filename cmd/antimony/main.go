package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"antimony"
	"antimony/internal/config"
	"antimony/internal/metrics"
	"antimony/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:               "antimony",
		Short:             "Convert and inspect Antimony, SBML and CellML models",
		PersistentPreRunE: setup,
		SilenceUsage:      true,
	}
	configPath string
	dbPath     string

	cfg    = config.Default()
	logger = slog.Default()
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "antimony.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the snapshot database (SQLite), overriding the configuration")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

// setup loads the configuration and installs the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		c.Snapshots.Path = dbPath
	}
	cfg = c
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()}))
	slog.SetDefault(logger)
	return nil
}

// newSession creates a session set up from the configuration. Every
// goroutine gets its own.
func newSession(reg *metrics.Registry) *antimony.Session {
	s := antimony.NewSession(
		antimony.WithLogger(logger),
		antimony.WithMetrics(reg),
		antimony.WithDirectories(cfg.Search.Directories...),
	)
	s.SetBareNumbersAreDimensionless(cfg.BareNumbersDimensionless)
	return s
}

// initStore opens the snapshot database, creating its directory.
func initStore() (*storage.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Snapshots.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return storage.NewSQLiteStore(cfg.Snapshots.Path)
}
