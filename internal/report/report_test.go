package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/miles-to-go/internal/model"
)

func TestRenderWeekly(t *testing.T) {
	weeks := []model.WeeklySummary{
		{
			WeekStart:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			CommuteMiles:  18.4,
			BusinessMiles: 42.0,
			PersonalMiles: 12.5,
			WeekendMiles:  8.0,
			TrackedMiles:  map[string]float64{"island": 6.0},
		},
	}

	out := RenderWeekly(weeks)
	assert.Contains(t, out, "2026-01-05")
	assert.Contains(t, out, "42.0")
	assert.Contains(t, out, "island")
	assert.Contains(t, out, "72.9") // total
}

func TestRenderWeekly_Empty(t *testing.T) {
	out := RenderWeekly(nil)
	assert.Contains(t, out, "No trips in range.")
}

func TestRenderOverall(t *testing.T) {
	o := model.OverallSummary{
		TotalMiles:         100,
		BusinessMiles:      60,
		CommuteMiles:       25,
		OtherPersonalMiles: 15,
	}
	out := RenderOverall(o)
	assert.Contains(t, out, "60.0")
	assert.Contains(t, out, "(60.0%)")
	assert.Contains(t, out, "(40.0%)")
	assert.Contains(t, out, "commute")
}

func TestRenderTrips_AnnotatesFlags(t *testing.T) {
	trips := []model.CategorizedTrip{
		{
			Trip: model.Trip{
				StartTime:      time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC),
				EndAddress:     "400 Oak Ave, Tacoma",
				DistanceMiles:  12.0,
				MergedSegments: 2,
			},
			Result: model.CategoryResult{Category: model.CategoryBusiness, Rule: "business-long-weekday"},
			Label:  model.BusinessLabel{Label: "Client Site", Source: model.SourcePlaces},
		},
		{
			Trip: model.Trip{
				StartTime:     time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC),
				EndAddress:    "Parking Lot",
				DistanceMiles: 0.1,
				MicroTrip:     true,
			},
			Result: model.CategoryResult{Category: model.CategoryPersonal, Rule: "personal-default"},
			Label:  model.BusinessLabel{Label: "Other Personal", Source: model.SourceRaw},
		},
	}

	out := RenderTrips(trips)
	assert.Contains(t, out, "Client Site")
	assert.Contains(t, out, "(merged 2 stops)")
	assert.Contains(t, out, "(micro)")
}

func TestWriteWeeklyCSV(t *testing.T) {
	weeks := []model.WeeklySummary{
		{
			WeekStart:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			CommuteMiles:  18.4,
			BusinessMiles: 42.0,
			TrackedMiles:  map[string]float64{"island": 6.0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWeeklyCSV(&buf, weeks))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "week_start", records[0][0])
	assert.Contains(t, records[0], "island_miles")
	assert.Equal(t, "2026-01-05", records[1][0])
	assert.Equal(t, "42.0", records[1][2])
}

func TestWriteTripsCSV(t *testing.T) {
	trips := []model.CategorizedTrip{
		{
			Trip: model.Trip{
				StartTime:     time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC),
				EndTime:       time.Date(2026, 1, 7, 9, 30, 0, 0, time.UTC),
				StartAddress:  "Home",
				EndAddress:    "Office, with a comma",
				DistanceMiles: 9.2,
			},
			Result: model.CategoryResult{Category: model.CategoryCommute, Rule: "commute"},
			Label:  model.BusinessLabel{Label: "Office", Source: model.SourceRaw},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTripsCSV(&buf, trips))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Office, with a comma", records[1][6])
	assert.Equal(t, "commute", records[1][2])
}

func TestWriteSummaryCSV(t *testing.T) {
	o := model.OverallSummary{
		TotalMiles:    100,
		BusinessMiles: 60,
		TrackedMiles:  map[string]float64{"island": 5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, o))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "metric,value"))
	assert.Contains(t, out, "business_percent,60.0")
	assert.Contains(t, out, "island_miles,5.0")
}
