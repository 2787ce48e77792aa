package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		HomeAddress:               "12345 35th Ave NE, Seattle",
		WorkAddress:               "9227 NE 180th St, Bothell",
		BusinessKeywords:          []string{"gas", "shell", "fuel", "chevron"},
		BusinessDistanceThreshold: 8.0,
		WeekendStart:              config.Cutoff{Weekday: time.Friday, Hour: 17},
		WeekendEnd:                config.Cutoff{Weekday: time.Monday, Hour: 7},
		LocalArea:                 []string{"bothell", "woodinville"},
		RemoteArea:                []string{"vashon"},
	}
}

// staticResolver records which addresses get resolved.
type staticResolver struct {
	calls []string
}

func (r *staticResolver) Resolve(_ context.Context, address string) model.BusinessLabel {
	r.calls = append(r.calls, address)
	return model.BusinessLabel{Label: "Resolved Business", Source: model.SourcePlaces}
}

// at builds a time on a fixed calendar: the week of Monday 2026-01-05.
func at(day time.Weekday, hour, minute int) time.Time {
	// 2026-01-04 is a Sunday.
	base := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(day)).Add(
		time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func trip(start time.Time, from, to string, miles float64) model.Trip {
	return model.Trip{
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		StartAddress:  from,
		EndAddress:    to,
		DistanceMiles: miles,
	}
}

func TestEngine_RuleTable(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		trip     model.Trip
		category model.Category
		rule     string
		label    string // empty means the resolver supplies it
	}{
		{
			name:     "weekday commute home to work",
			trip:     trip(at(time.Wednesday, 8, 30), cfg.HomeAddress, cfg.WorkAddress, 9.2),
			category: model.CategoryCommute,
			rule:     "commute",
			label:    "Office",
		},
		{
			name:     "weekday commute work to home",
			trip:     trip(at(time.Wednesday, 17, 15), cfg.WorkAddress, cfg.HomeAddress, 9.2),
			category: model.CategoryCommute,
			rule:     "commute",
			label:    "Home",
		},
		{
			name:     "commute wins over distance regardless of time",
			trip:     trip(at(time.Saturday, 10, 0), cfg.HomeAddress, cfg.WorkAddress, 20.0),
			category: model.CategoryCommute,
			rule:     "commute",
			label:    "Office",
		},
		{
			name:     "fuel stop is business even on a weekend",
			trip:     trip(at(time.Saturday, 14, 0), "100 Elm St, Kirkland", "Shell Station, 124th Ave NE", 1.2),
			category: model.CategoryBusiness,
			rule:     "business-fuel",
		},
		{
			name:     "twelve mile tuesday trip is business",
			trip:     trip(at(time.Tuesday, 11, 0), "100 Elm St, Kirkland", "400 Oak Ave, Tacoma", 12.0),
			category: model.CategoryBusiness,
			rule:     "business-long-weekday",
		},
		{
			name:     "remote area weekday trip is business",
			trip:     trip(at(time.Thursday, 9, 0), "100 Elm St, Kirkland", "Ferry Dock, Vashon Island", 6.0),
			category: model.CategoryBusiness,
			rule:     "business-remote-area",
		},
		{
			name:     "short trip inside the local area on a weekday is business",
			trip:     trip(at(time.Monday, 13, 0), "400 Main St, Bothell", "800 2nd Ave, Woodinville", 2.5),
			category: model.CategoryBusiness,
			rule:     "business-short-local",
		},
		{
			name:     "three mile saturday trip is personal",
			trip:     trip(at(time.Saturday, 10, 0), "100 Elm St, Kirkland", "200 Pine St, Kirkland", 3.0),
			category: model.CategoryPersonal,
			rule:     "personal-weekend",
			label:    "Weekend Travel",
		},
		{
			name:     "short weekday trip outside any area is personal",
			trip:     trip(at(time.Tuesday, 12, 0), "100 Elm St, Kirkland", "200 Pine St, Kirkland", 2.0),
			category: model.CategoryPersonal,
			rule:     "personal-default",
			label:    "Other Personal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &staticResolver{}
			e := New(DefaultRules(cfg), resolver, nil)

			got := e.Categorize(context.Background(), &tt.trip)
			assert.Equal(t, tt.category, got.Result.Category)
			assert.Equal(t, tt.rule, got.Result.Rule)

			if tt.label != "" {
				assert.Equal(t, tt.label, got.Label.Label)
				assert.Empty(t, resolver.calls, "static labels must not hit the resolver")
			} else {
				assert.Equal(t, "Resolved Business", got.Label.Label)
				require.Len(t, resolver.calls, 1)
				assert.Equal(t, tt.trip.EndAddress, resolver.calls[0])
			}
		})
	}
}

func TestEngine_WeekendBoundaries(t *testing.T) {
	cfg := testConfig()
	e := New(DefaultRules(cfg), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		start time.Time
		miles float64
		rule  string
	}{
		{"friday 16:59 long trip is still a weekday", at(time.Friday, 16, 59), 12.0, "business-long-weekday"},
		{"friday 17:00 starts the weekend", at(time.Friday, 17, 0), 12.0, "personal-weekend"},
		{"sunday night is weekend", at(time.Sunday, 23, 30), 12.0, "personal-weekend"},
		{"monday 06:00 long trip is business", at(time.Monday, 6, 0), 12.0, "business-long-weekday"},
		{"monday 06:59 short trip is still weekend", at(time.Monday, 6, 59), 2.0, "personal-weekend"},
		{"monday 07:00 long trip is a weekday", at(time.Monday, 7, 0), 12.0, "business-long-weekday"},
		{"monday 07:00 short trip is no longer weekend", at(time.Monday, 7, 0), 2.0, "personal-default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := trip(tt.start, "100 Elm St, Kirkland", "400 Oak Ave, Tacoma", tt.miles)
			got := e.Categorize(ctx, &tr)
			assert.Equal(t, tt.rule, got.Result.Rule)
		})
	}
}

func TestEngine_StraddlingTripJudgedByStart(t *testing.T) {
	cfg := testConfig()
	e := New(DefaultRules(cfg), nil, nil)

	// Starts before the Friday cutoff, ends after it.
	tr := model.Trip{
		StartTime:     at(time.Friday, 16, 30),
		EndTime:       at(time.Friday, 17, 45),
		StartAddress:  "100 Elm St, Kirkland",
		EndAddress:    "400 Oak Ave, Tacoma",
		DistanceMiles: 25.0,
	}
	got := e.Categorize(context.Background(), &tr)
	assert.Equal(t, model.CategoryBusiness, got.Result.Category)
}

func TestEngine_EveryTripGetsExactlyOneCategory(t *testing.T) {
	cfg := testConfig()
	e := New(DefaultRules(cfg), nil, nil)
	ctx := context.Background()

	addresses := []string{
		cfg.HomeAddress, cfg.WorkAddress, "Shell Station",
		"400 Main St, Bothell", "Vashon Island", "200 Pine St, Kirkland", "",
	}
	var trips []model.Trip
	for d := time.Sunday; d <= time.Saturday; d++ {
		for i, from := range addresses {
			for j, to := range addresses {
				trips = append(trips, trip(at(d, 10, 0), from, to, float64(i*7+j)))
			}
		}
	}

	results := e.CategorizeAll(ctx, trips, nil)
	require.Len(t, results, len(trips))
	for _, r := range results {
		assert.NotEmpty(t, r.Result.Category)
		assert.NotEmpty(t, r.Result.Rule)
	}
}

func TestEngine_CategorizeAllReportsProgress(t *testing.T) {
	cfg := testConfig()
	e := New(DefaultRules(cfg), nil, nil)

	trips := []model.Trip{
		trip(at(time.Tuesday, 9, 0), "a", "b", 1),
		trip(at(time.Tuesday, 10, 0), "c", "d", 2),
		trip(at(time.Tuesday, 11, 0), "e", "f", 3),
	}

	var seen []int
	e.CategorizeAll(context.Background(), trips, func(done int) {
		seen = append(seen, done)
	})
	assert.Equal(t, []int{1, 2, 3}, seen)
}
