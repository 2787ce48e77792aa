// Package places implements the Google Places lookup provider.
package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
)

// addressOnlyTypes are Places result types that describe the location
// itself rather than a business at it. A result carrying only these
// types is a geocode echo, not an answer.
var addressOnlyTypes = map[string]bool{
	"street_address": true,
	"premise":        true,
	"subpremise":     true,
	"route":          true,
	"political":      true,
	"locality":       true,
	"postal_code":    true,
	"neighborhood":   true,
	"intersection":   true,
}

// Client looks up business names through the Google Places text search
// API.
type Client struct {
	client *maps.Client
	logger *slog.Logger
}

// NewClient creates a Places client with the given API key.
func NewClient(apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: lookup.places_api_key", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating places client: %w", err)
	}

	return &Client{client: c, logger: logger}, nil
}

// Name identifies this provider in logs and label sources.
func (c *Client) Name() string {
	return string(model.SourcePlaces)
}

// Lookup searches for a business at the address. It returns
// common.ErrNotFound when the search answers but no result names an
// actual business there.
func (c *Client) Lookup(ctx context.Context, address string) (string, error) {
	resp, err := c.client.TextSearch(ctx, &maps.TextSearchRequest{Query: address})
	if err != nil {
		if strings.Contains(err.Error(), "OVER_QUERY_LIMIT") {
			return "", fmt.Errorf("%w: places: %s", common.ErrProviderRateLimited, err)
		}
		return "", fmt.Errorf("%w: places: %s", common.ErrProviderUnavailable, err)
	}

	for _, result := range resp.Results {
		name := strings.TrimSpace(result.Name)
		if name == "" {
			continue
		}
		if isAddressOnly(result.Types) {
			continue
		}
		// A "business" whose name is just the address restated tells us
		// nothing.
		if model.AddressMatches(name, address) {
			continue
		}
		c.logger.Debug("places match", "address", address, "name", name)
		return name, nil
	}

	return "", common.ErrNotFound
}

func isAddressOnly(types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if !addressOnlyTypes[t] {
			return false
		}
	}
	return true
}
