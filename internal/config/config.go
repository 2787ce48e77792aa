// Package config provides typed application configuration loaded via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/miles-to-go/internal/common"
)

// Cutoff is a point within the week, used for the weekend window boundaries.
type Cutoff struct {
	Weekday time.Weekday
	Hour    int
}

// MergeConfig controls the short-stop merge pass over parsed trips.
type MergeConfig struct {
	Enabled       bool
	MaxGapMinutes float64
	MaxStopMiles  float64
}

// Config holds all recognized analyzer options. The weekend window and the
// area keyword lists are configuration, never hard-coded: the source data's
// exact boundaries are operator knowledge, not derivable from the code.
type Config struct {
	TrackedAreas              map[string][]string
	HomeAddress               string
	WorkAddress               string
	PlacesAPIKey              string
	ManualMappingPath         string
	CacheDBPath               string
	BusinessKeywords          []string
	LocalArea                 []string
	RemoteArea                []string
	Merge                     MergeConfig
	WeekendStart              Cutoff
	WeekendEnd                Cutoff
	BusinessDistanceThreshold float64
	MicroTripMaxMiles         float64
	LookupEnabled             bool
}

func setDefaults() {
	viper.SetDefault("business.distance_threshold", 8.0)
	viper.SetDefault("business.keywords", []string{
		"gas", "station", "fuel", "shell", "chevron", "arco", "bp",
		"costco", "safeway", "store", "market", "shop",
		"customer", "client", "office",
	})
	viper.SetDefault("weekend.start.weekday", "friday")
	viper.SetDefault("weekend.start.hour", 17)
	viper.SetDefault("weekend.end.weekday", "monday")
	viper.SetDefault("weekend.end.hour", 7)
	viper.SetDefault("mapping.manual_path", "~/.config/miles/business_mapping.json")
	viper.SetDefault("cache.db_path", "~/.local/share/miles/labels.db")
	viper.SetDefault("merge.enabled", true)
	viper.SetDefault("merge.max_gap_minutes", 3.0)
	viper.SetDefault("merge.max_stop_miles", 0.2)
	viper.SetDefault("micro.max_miles", 0.15)
}

// Load materializes a Config from viper's current state.
func Load() (*Config, error) {
	setDefaults()

	weekendStart, err := parseCutoff(viper.GetString("weekend.start.weekday"), viper.GetInt("weekend.start.hour"))
	if err != nil {
		return nil, fmt.Errorf("weekend.start: %w", err)
	}
	weekendEnd, err := parseCutoff(viper.GetString("weekend.end.weekday"), viper.GetInt("weekend.end.hour"))
	if err != nil {
		return nil, fmt.Errorf("weekend.end: %w", err)
	}

	cfg := &Config{
		HomeAddress:               viper.GetString("home_address"),
		WorkAddress:               viper.GetString("work_address"),
		BusinessDistanceThreshold: viper.GetFloat64("business.distance_threshold"),
		BusinessKeywords:          viper.GetStringSlice("business.keywords"),
		WeekendStart:              weekendStart,
		WeekendEnd:                weekendEnd,
		LocalArea:                 viper.GetStringSlice("areas.local"),
		RemoteArea:                viper.GetStringSlice("areas.remote"),
		TrackedAreas:              viper.GetStringMapStringSlice("areas.tracked"),
		LookupEnabled:             viper.GetBool("lookup.enabled"),
		PlacesAPIKey:              strings.TrimSpace(viper.GetString("lookup.places_api_key")),
		ManualMappingPath:         ExpandPath(viper.GetString("mapping.manual_path")),
		CacheDBPath:               ExpandPath(viper.GetString("cache.db_path")),
		Merge: MergeConfig{
			Enabled:       viper.GetBool("merge.enabled"),
			MaxGapMinutes: viper.GetFloat64("merge.max_gap_minutes"),
			MaxStopMiles:  viper.GetFloat64("merge.max_stop_miles"),
		},
		MicroTripMaxMiles: viper.GetFloat64("micro.max_miles"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HomeAddress) == "" {
		return fmt.Errorf("%w: home_address", common.ErrMissingConfig)
	}
	if strings.TrimSpace(c.WorkAddress) == "" {
		return fmt.Errorf("%w: work_address", common.ErrMissingConfig)
	}
	if c.BusinessDistanceThreshold <= 0 {
		return fmt.Errorf("%w: business.distance_threshold must be positive, got %v",
			common.ErrInvalidConfig, c.BusinessDistanceThreshold)
	}
	if c.CacheDBPath == "" {
		return fmt.Errorf("%w: cache.db_path", common.ErrMissingConfig)
	}
	if c.Merge.Enabled && c.Merge.MaxGapMinutes < 0 {
		return fmt.Errorf("%w: merge.max_gap_minutes cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

func parseCutoff(weekday string, hour int) (Cutoff, error) {
	if hour < 0 || hour > 23 {
		return Cutoff{}, fmt.Errorf("%w: hour %d out of range", common.ErrInvalidConfig, hour)
	}

	wd, err := parseWeekday(weekday)
	if err != nil {
		return Cutoff{}, err
	}

	return Cutoff{Weekday: wd, Hour: hour}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("%w: unknown weekday %q", common.ErrInvalidConfig, s)
	}
}
