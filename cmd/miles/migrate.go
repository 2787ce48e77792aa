package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run label cache migrations",
		Long: `Initialize or update the label cache schema to the latest version.

This command ensures the local cache database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath := config.ExpandPath(viper.GetString("cache.db_path"))
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "miles", "labels.db")
	}

	slog.Info("🗄️  Running label cache migrations...", "database", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("✅ Label cache migrations completed successfully!")

	return nil
}
