package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Veraticus/miles-to-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the service.LabelStore interface using SQLite.
// WAL journaling keeps previously cached entries safe across a crash
// mid-run; partial writes roll back instead of corrupting the cache.
type SQLiteStore struct {
	cacheExpiry time.Time
	db          *sql.DB
	labelCache  map[string]*model.LabelEntry
	dbPath      string
	cacheMutex  sync.RWMutex
}

// NewSQLiteStore creates a new SQLite label store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		dbPath:     dbPath,
		labelCache: make(map[string]*model.LabelEntry),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// getCachedLabel retrieves an entry from the in-memory read cache.
func (s *SQLiteStore) getCachedLabel(key string) *model.LabelEntry {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		// Double-check after acquiring write lock
		if time.Now().After(s.cacheExpiry) {
			s.labelCache = make(map[string]*model.LabelEntry)
		}
		return nil
	}

	entry := s.labelCache[key]
	s.cacheMutex.RUnlock()
	return entry
}

// cacheLabel adds an entry to the in-memory read cache.
func (s *SQLiteStore) cacheLabel(entry *model.LabelEntry) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.labelCache) == 0 {
		s.cacheExpiry = time.Now().Add(5 * time.Minute)
	}
	s.labelCache[entry.AddressKey] = entry
}

// WarmLabelCache loads all entries into the in-memory cache. Batches of
// trips revisit the same addresses constantly, so one scan up front saves
// a query per trip.
func (s *SQLiteStore) WarmLabelCache(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	entries, err := s.AllLabels(ctx)
	if err != nil {
		return err
	}

	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.labelCache = make(map[string]*model.LabelEntry, len(entries))
	for i := range entries {
		s.labelCache[entries[i].AddressKey] = &entries[i]
	}

	s.cacheExpiry = time.Now().Add(5 * time.Minute)
	return nil
}
