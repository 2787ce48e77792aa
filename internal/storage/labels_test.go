package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "labels.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func TestSQLiteStore_SaveAndGetLabel(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	entry := &model.LabelEntry{
		AddressKey: "9227 ne 180th st, bothell",
		Label:      "Office",
		Source:     model.SourcePlaces,
	}
	if err := store.SaveLabel(ctx, entry); err != nil {
		t.Fatalf("Failed to save label: %v", err)
	}

	got, err := store.GetLabel(ctx, "9227 ne 180th st, bothell")
	if err != nil {
		t.Fatalf("Failed to get label: %v", err)
	}
	if got.Label != "Office" {
		t.Errorf("label = %q, want Office", got.Label)
	}
	if got.Source != model.SourcePlaces {
		t.Errorf("source = %q, want places", got.Source)
	}
	if got.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set on save")
	}
}

func TestSQLiteStore_GetLabelNotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetLabel(context.Background(), "nowhere")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetLabel() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SaveLabelUpsert(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	entry := &model.LabelEntry{
		AddressKey: "123 main st",
		Label:      "First Label",
		Source:     model.SourceNominatim,
	}
	if err := store.SaveLabel(ctx, entry); err != nil {
		t.Fatalf("Failed to save label: %v", err)
	}

	entry.Label = "Updated Label"
	entry.Source = model.SourcePlaces
	entry.UseCount = 3
	if err := store.SaveLabel(ctx, entry); err != nil {
		t.Fatalf("Failed to update label: %v", err)
	}

	got, err := store.GetLabel(ctx, "123 main st")
	if err != nil {
		t.Fatalf("Failed to get label: %v", err)
	}
	if got.Label != "Updated Label" {
		t.Errorf("label = %q, want Updated Label", got.Label)
	}
	if got.UseCount != 3 {
		t.Errorf("use count = %d, want 3", got.UseCount)
	}

	all, err := store.AllLabels(ctx)
	if err != nil {
		t.Fatalf("Failed to list labels: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d entries after upsert, want 1", len(all))
	}
}

func TestSQLiteStore_RejectsUnnormalizedKey(t *testing.T) {
	store := createTestStore(t)

	entry := &model.LabelEntry{
		AddressKey: "123 Main St",
		Label:      "Shop",
		Source:     model.SourcePlaces,
	}
	err := store.SaveLabel(context.Background(), entry)
	if !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("SaveLabel() error = %v, want ErrInvalidLabel", err)
	}
}

func TestSQLiteStore_RejectsEmptyLabel(t *testing.T) {
	store := createTestStore(t)

	entry := &model.LabelEntry{
		AddressKey: "123 main st",
		Source:     model.SourcePlaces,
	}
	err := store.SaveLabel(context.Background(), entry)
	if !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("SaveLabel() error = %v, want ErrInvalidLabel", err)
	}
}

func TestSQLiteStore_DeleteLabel(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	entry := &model.LabelEntry{
		AddressKey: "123 main st",
		Label:      "Shop",
		Source:     model.SourceManual,
	}
	if err := store.SaveLabel(ctx, entry); err != nil {
		t.Fatalf("Failed to save label: %v", err)
	}

	if err := store.DeleteLabel(ctx, "123 main st"); err != nil {
		t.Fatalf("Failed to delete label: %v", err)
	}

	_, err := store.GetLabel(ctx, "123 main st")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetLabel() after delete error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteLabel(ctx, "123 main st"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("DeleteLabel() on missing key error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_WarmLabelCache(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	entries := []*model.LabelEntry{
		{AddressKey: "a street 1", Label: "One", Source: model.SourcePlaces},
		{AddressKey: "b street 2", Label: "Two", Source: model.SourceNominatim},
	}
	for _, e := range entries {
		if err := store.SaveLabel(ctx, e); err != nil {
			t.Fatalf("Failed to save label: %v", err)
		}
	}

	// Simulate a fresh start
	store.labelCache = make(map[string]*model.LabelEntry)

	if err := store.WarmLabelCache(ctx); err != nil {
		t.Fatalf("Failed to warm cache: %v", err)
	}

	for _, e := range entries {
		cached := store.getCachedLabel(e.AddressKey)
		if cached == nil {
			t.Errorf("entry %s not in cache after warming", e.AddressKey)
		} else if cached.Label != e.Label {
			t.Errorf("cached label = %q, want %q", cached.Label, e.Label)
		}
	}
}

func TestSQLiteStore_IncrementUseCount(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	entry := &model.LabelEntry{
		AddressKey: "123 main st",
		Label:      "Shop",
		Source:     model.SourceCache,
	}
	if err := store.SaveLabel(ctx, entry); err != nil {
		t.Fatalf("Failed to save label: %v", err)
	}

	if err := store.IncrementUseCount(ctx, "123 main st"); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if err := store.IncrementUseCount(ctx, "123 main st"); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}

	// Bypass the in-memory cache to check the persisted value.
	store.labelCache = make(map[string]*model.LabelEntry)
	got, err := store.GetLabel(ctx, "123 main st")
	if err != nil {
		t.Fatalf("Failed to get label: %v", err)
	}
	if got.UseCount != 2 {
		t.Errorf("use count = %d, want 2", got.UseCount)
	}
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	store := createTestStore(t)

	// Running migrations again on a current database is a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}
