package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
)

// GetLabel retrieves a cached label by its normalized address key.
func (s *SQLiteStore) GetLabel(ctx context.Context, addressKey string) (*model.LabelEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(addressKey, "addressKey"); err != nil {
		return nil, err
	}

	// Check the in-memory cache first
	if entry := s.getCachedLabel(addressKey); entry != nil {
		return entry, nil
	}

	var entry model.LabelEntry
	var source string

	err := s.db.QueryRowContext(ctx, `
		SELECT address_key, label, source, last_updated, use_count
		FROM labels
		WHERE address_key = ?
	`, addressKey).Scan(
		&entry.AddressKey,
		&entry.Label,
		&source,
		&entry.LastUpdated,
		&entry.UseCount,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	entry.Source = model.LabelSource(source)

	s.cacheLabel(&entry)

	return &entry, nil
}

// SaveLabel saves or updates a resolved label.
func (s *SQLiteStore) SaveLabel(ctx context.Context, entry *model.LabelEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLabelEntry(entry); err != nil {
		return err
	}

	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labels (address_key, label, source, last_updated, use_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address_key) DO UPDATE SET
			label = excluded.label,
			source = excluded.source,
			last_updated = excluded.last_updated,
			use_count = excluded.use_count
	`, entry.AddressKey, entry.Label, string(entry.Source), entry.LastUpdated, entry.UseCount)

	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCacheWrite, err)
	}

	s.cacheLabel(entry)

	return nil
}

// AllLabels retrieves all cached labels ordered by address key.
func (s *SQLiteStore) AllLabels(ctx context.Context) ([]model.LabelEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT address_key, label, source, last_updated, use_count
		FROM labels
		ORDER BY address_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LabelEntry
	for rows.Next() {
		var entry model.LabelEntry
		var source string
		err := rows.Scan(
			&entry.AddressKey,
			&entry.Label,
			&source,
			&entry.LastUpdated,
			&entry.UseCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		entry.Source = model.LabelSource(source)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteLabel deletes a cached label.
func (s *SQLiteStore) DeleteLabel(ctx context.Context, addressKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(addressKey, "addressKey"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM labels WHERE address_key = ?
	`, addressKey)

	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	s.cacheMutex.Lock()
	delete(s.labelCache, addressKey)
	s.cacheMutex.Unlock()

	return nil
}

// IncrementUseCount bumps the use counter for a cached label. Failures are
// not fatal to a run and callers may ignore them.
func (s *SQLiteStore) IncrementUseCount(ctx context.Context, addressKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(addressKey, "addressKey"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE labels SET use_count = use_count + 1 WHERE address_key = ?
	`, addressKey)
	if err != nil {
		return fmt.Errorf("failed to increment use count: %w", err)
	}

	s.cacheMutex.Lock()
	if entry, ok := s.labelCache[addressKey]; ok {
		entry.UseCount++
	}
	s.cacheMutex.Unlock()

	return nil
}
