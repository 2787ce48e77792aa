// Package storage provides the persistence layer for the resolved-label cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidLabel = errors.New("invalid label entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLabelEntry validates a label cache entry before persistence.
func validateLabelEntry(entry *model.LabelEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if strings.TrimSpace(entry.AddressKey) == "" {
		return fmt.Errorf("%w: missing address key", ErrInvalidLabel)
	}
	if entry.AddressKey != model.NormalizeAddress(entry.AddressKey) {
		return fmt.Errorf("%w: address key %q is not normalized", ErrInvalidLabel, entry.AddressKey)
	}
	if strings.TrimSpace(entry.Label) == "" {
		return fmt.Errorf("%w: missing label", ErrInvalidLabel)
	}
	if entry.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidLabel)
	}
	return nil
}
