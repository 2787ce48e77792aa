// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// LabelStore defines the contract for the persisted resolved-label cache.
type LabelStore interface {
	// GetLabel returns the cached entry for a normalized address key, or
	// common.ErrNotFound when absent.
	GetLabel(ctx context.Context, addressKey string) (*model.LabelEntry, error)
	// SaveLabel inserts or updates a cache entry.
	SaveLabel(ctx context.Context, entry *model.LabelEntry) error
	// AllLabels returns every cached entry ordered by address key.
	AllLabels(ctx context.Context) ([]model.LabelEntry, error)
	// DeleteLabel removes an entry by its normalized address key.
	DeleteLabel(ctx context.Context, addressKey string) error
	// IncrementUseCount records one more resolution served from this entry.
	IncrementUseCount(ctx context.Context, addressKey string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Lookup is one external business-name provider. Implementations own their
// transport details; the resolver only sees a label or a failure.
type Lookup interface {
	// Name identifies the provider in logs and label sources.
	Name() string
	// Lookup returns the business name at an address. It returns
	// common.ErrNotFound when the provider answered but found no business,
	// and common.ErrProviderUnavailable or common.ErrProviderRateLimited
	// when the provider could not answer.
	Lookup(ctx context.Context, address string) (string, error)
}
