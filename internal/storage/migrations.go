package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial label cache schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS labels (
					address_key TEXT PRIMARY KEY,
					label TEXT NOT NULL,
					source TEXT NOT NULL,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_labels_source ON labels(source)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Track label use counts",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE labels ADD COLUMN use_count INTEGER DEFAULT 0`); err != nil {
				return fmt.Errorf("failed to add use_count column: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
