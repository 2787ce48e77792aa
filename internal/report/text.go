package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// RenderWeekly renders the per-week mileage table.
func RenderWeekly(weeks []model.WeeklySummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Weekly Mileage"))
	b.WriteString("\n")

	if len(weeks) == 0 {
		b.WriteString(SubtleStyle.Render("No trips in range."))
		b.WriteString("\n")
		return b.String()
	}

	trackedNames := trackedRegionNames(weeks)

	header := fmt.Sprintf("%-12s %10s %10s %10s %10s %10s",
		"Week", "Commute", "Business", "Personal", "Weekend", "Total")
	for _, name := range trackedNames {
		header += fmt.Sprintf(" %12s", name)
	}
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, w := range weeks {
		row := fmt.Sprintf("%-12s %10.1f %10.1f %10.1f %10.1f %10.1f",
			w.WeekStart.Format("2006-01-02"),
			w.CommuteMiles, w.BusinessMiles, w.PersonalMiles,
			w.WeekendMiles, w.TotalMiles())
		for _, name := range trackedNames {
			row += fmt.Sprintf(" %12.1f", w.TrackedMiles[name])
		}
		b.WriteString(TableCellStyle.Render(row))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderOverall renders the business/personal split for the whole trip
// set. Commute miles show separately but count as personal in the split.
func RenderOverall(o model.OverallSummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Overall Summary"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%-18s %10.1f mi\n", "Total", o.TotalMiles))
	b.WriteString(BusinessStyle.Render(fmt.Sprintf("%-18s %10.1f mi  (%.1f%%)",
		"Business", o.BusinessMiles, o.BusinessPercent())))
	b.WriteString("\n")
	b.WriteString(PersonalStyle.Render(fmt.Sprintf("%-18s %10.1f mi  (%.1f%%)",
		"Personal", o.PersonalMiles(), o.PersonalPercent())))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%-18s %10.1f mi  (%.1f%%)",
		"  of which commute", o.CommuteMiles, o.CommutePercent())))
	b.WriteString("\n")

	if len(o.TrackedMiles) > 0 {
		names := make([]string, 0, len(o.TrackedMiles))
		for name := range o.TrackedMiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("%-18s %10.1f mi\n", name, o.TrackedMiles[name]))
		}
	}

	return b.String()
}

// RenderTrips renders the full categorized trip log.
func RenderTrips(trips []model.CategorizedTrip) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Trips"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-16s %-9s %8s  %-28s %-24s %s",
		"Start", "Category", "Miles", "Destination", "Business", "Rule")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, t := range trips {
		row := fmt.Sprintf("%-16s %-9s %8.1f  %-28s %-24s %s",
			t.Trip.StartTime.Format("2006-01-02 15:04"),
			t.Result.Category,
			t.Trip.DistanceMiles,
			truncate(t.Trip.EndAddress, 28),
			truncate(t.Label.Label, 24),
			t.Result.Rule)
		line := TableCellStyle.Render(row)
		if t.Trip.MicroTrip {
			line += " " + SubtleStyle.Render("(micro)")
		}
		if t.Trip.MergedSegments > 0 {
			line += " " + SubtleStyle.Render(fmt.Sprintf("(merged %d stops)", t.Trip.MergedSegments))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSkipped summarizes rows the parser could not use.
func RenderSkipped(count int) string {
	if count == 0 {
		return ""
	}
	return FormatWarning(fmt.Sprintf("Skipped %d unusable log rows (run with --log-level debug for details)", count)) + "\n"
}

// trackedRegionNames collects every region name appearing in any week,
// sorted for stable column order.
func trackedRegionNames(weeks []model.WeeklySummary) []string {
	seen := make(map[string]bool)
	for _, w := range weeks {
		for name := range w.TrackedMiles {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
