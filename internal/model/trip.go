// Package model defines the core domain models used throughout the application.
package model

import "time"

// Coord is a geographic coordinate pair.
type Coord struct {
	Lat float64
	Lon float64
}

// Trip represents one row of movement between two points in a trip log.
// A Trip is immutable after parsing; categorization results are attached
// via CategorizedTrip rather than mutating the Trip itself.
type Trip struct {
	StartTime     time.Time
	EndTime       time.Time
	StartAddress  string
	EndAddress    string
	StartCoord    *Coord // may be nil when the log carries no coordinates
	EndCoord      *Coord
	Notes         string
	DistanceMiles float64
	OdometerStart float64
	OdometerEnd   float64

	// MergedSegments counts log rows folded into this trip by the
	// short-stop merge pass. Zero for trips taken verbatim from the log.
	MergedSegments int

	// MicroTrip marks trips short enough to be GPS drift or a parking
	// adjustment. Flagged, never removed.
	MicroTrip bool
}

// WeekStart returns the Monday 00:00 that starts the ISO week containing
// the trip's start time.
func (t *Trip) WeekStart() time.Time {
	return WeekStart(t.StartTime)
}

// WeekStart returns the Monday 00:00 of the week containing tm.
func WeekStart(tm time.Time) time.Time {
	daysSinceMonday := (int(tm.Weekday()) + 6) % 7
	y, m, d := tm.AddDate(0, 0, -daysSinceMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tm.Location())
}

// CategorizedTrip pairs a Trip with its categorization result and the
// resolved business label for its destination.
type CategorizedTrip struct {
	Trip   Trip
	Result CategoryResult
	Label  BusinessLabel
}
