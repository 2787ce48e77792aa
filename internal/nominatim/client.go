// Package nominatim implements the OpenStreetMap Nominatim lookup
// provider, the free fallback behind Google Places.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "miles-to-go/1.0 (mileage log analyzer)"

	// Nominatim's usage policy caps anonymous clients at one request
	// per second.
	requestInterval = 1100 * time.Millisecond
)

// searchResult is one entry of a jsonv2 search response.
type searchResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// amenityLabels maps common OSM amenity and shop types to readable
// business labels when the result itself carries no name.
var amenityLabels = map[string]string{
	"fuel":        "Gas Station",
	"restaurant":  "Restaurant",
	"cafe":        "Cafe",
	"fast_food":   "Fast Food",
	"pharmacy":    "Pharmacy",
	"bank":        "Bank",
	"supermarket": "Grocery Store",
	"convenience": "Convenience Store",
	"mall":        "Store/Shopping",
}

// Client queries the Nominatim search API. All requests share a courtesy
// delay so batch runs stay inside the public instance's rate policy.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a Nominatim client against the public instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		baseURL:    defaultBaseURL,
	}
}

// Name identifies this provider in logs and label sources.
func (c *Client) Name() string {
	return string(model.SourceNominatim)
}

// Lookup searches for a named place at the address. It returns
// common.ErrNotFound when Nominatim answers but knows no business there.
func (c *Client) Lookup(ctx context.Context, address string) (string, error) {
	if err := c.throttle(ctx); err != nil {
		return "", fmt.Errorf("%w: nominatim: %s", common.ErrProviderUnavailable, err)
	}

	query := url.Values{
		"q":              {address},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: nominatim: %s", common.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: nominatim: %s", common.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: nominatim", common.ErrProviderRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: nominatim: status %d", common.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: nominatim: %s", common.ErrProviderUnavailable, err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("%w: nominatim: %s", common.ErrProviderUnavailable, err)
	}
	if len(results) == 0 {
		return "", common.ErrNotFound
	}

	label := labelFor(results[0], address)
	if label == "" {
		return "", common.ErrNotFound
	}
	c.logger.Debug("nominatim match", "address", address, "name", label)
	return label, nil
}

// labelFor extracts a business label from a search result. A bare name
// that restates the address is a geocode echo, not a business.
func labelFor(result searchResult, address string) string {
	name := strings.TrimSpace(result.Name)
	if name != "" && !model.AddressMatches(name, address) {
		return name
	}
	if result.Category == "amenity" || result.Category == "shop" {
		if label, ok := amenityLabels[result.Type]; ok {
			return label
		}
	}
	return ""
}

// throttle blocks until the courtesy interval since the previous request
// has elapsed, or the context is done.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := requestInterval - time.Since(c.lastCall)
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
