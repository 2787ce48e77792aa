package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// WriteWeeklyCSV writes the per-week summary table as CSV.
func WriteWeeklyCSV(w io.Writer, weeks []model.WeeklySummary) error {
	cw := csv.NewWriter(w)

	trackedNames := trackedRegionNames(weeks)
	header := []string{"week_start", "commute_miles", "business_miles", "personal_miles", "weekend_miles", "total_miles"}
	for _, name := range trackedNames {
		header = append(header, name+"_miles")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing weekly csv header: %w", err)
	}

	for _, week := range weeks {
		row := []string{
			week.WeekStart.Format("2006-01-02"),
			miles(week.CommuteMiles),
			miles(week.BusinessMiles),
			miles(week.PersonalMiles),
			miles(week.WeekendMiles),
			miles(week.TotalMiles()),
		}
		for _, name := range trackedNames {
			row = append(row, miles(week.TrackedMiles[name]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing weekly csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTripsCSV writes every categorized trip as one CSV row.
func WriteTripsCSV(w io.Writer, trips []model.CategorizedTrip) error {
	cw := csv.NewWriter(w)

	header := []string{
		"started", "stopped", "category", "rule", "distance_miles",
		"start_address", "end_address", "business_label", "label_source",
		"merged_segments", "micro_trip", "notes",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing trips csv header: %w", err)
	}

	for _, t := range trips {
		row := []string{
			t.Trip.StartTime.Format("2006-01-02 15:04"),
			t.Trip.EndTime.Format("2006-01-02 15:04"),
			string(t.Result.Category),
			t.Result.Rule,
			miles(t.Trip.DistanceMiles),
			t.Trip.StartAddress,
			t.Trip.EndAddress,
			t.Label.Label,
			string(t.Label.Source),
			strconv.Itoa(t.Trip.MergedSegments),
			strconv.FormatBool(t.Trip.MicroTrip),
			t.Trip.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing trips csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes the overall split as key/value rows.
func WriteSummaryCSV(w io.Writer, o model.OverallSummary) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"metric", "value"},
		{"total_miles", miles(o.TotalMiles)},
		{"business_miles", miles(o.BusinessMiles)},
		{"business_percent", miles(o.BusinessPercent())},
		{"personal_miles", miles(o.PersonalMiles())},
		{"personal_percent", miles(o.PersonalPercent())},
		{"commute_miles", miles(o.CommuteMiles)},
		{"commute_percent", miles(o.CommutePercent())},
		{"weekend_miles", miles(o.WeekendMiles)},
	}

	names := make([]string, 0, len(o.TrackedMiles))
	for name := range o.TrackedMiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []string{name + "_miles", miles(o.TrackedMiles[name])})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing summary csv: %w", err)
	}
	return nil
}

func miles(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
