package engine

import (
	"strings"

	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/geo"
	"github.com/Veraticus/miles-to-go/internal/model"
)

// MergeShortStops folds consecutive trips separated by a brief stop into
// one logical trip. Trip loggers split a single errand at every red-light
// length pause; a stop shorter than the configured gap where the vehicle
// barely moved is noise, not a destination. Input must be sorted by start
// time.
func MergeShortStops(trips []model.Trip, cfg config.MergeConfig) []model.Trip {
	if !cfg.Enabled || len(trips) < 2 {
		return trips
	}

	out := make([]model.Trip, 0, len(trips))
	current := trips[0]
	for i := 1; i < len(trips); i++ {
		next := trips[i]
		if isShortStop(&current, &next, cfg) {
			current = mergeTrips(current, next)
			continue
		}
		out = append(out, current)
		current = next
	}
	out = append(out, current)
	return out
}

func isShortStop(prev, next *model.Trip, cfg config.MergeConfig) bool {
	gap := next.StartTime.Sub(prev.EndTime)
	if gap < 0 || gap.Minutes() > cfg.MaxGapMinutes {
		return false
	}
	// The vehicle must not have moved meaningfully during the stop.
	if prev.EndCoord != nil && next.StartCoord != nil {
		return geo.Distance(*prev.EndCoord, *next.StartCoord) <= cfg.MaxStopMiles
	}
	return model.AddressMatches(prev.EndAddress, next.StartAddress)
}

func mergeTrips(a, b model.Trip) model.Trip {
	merged := model.Trip{
		StartTime:      a.StartTime,
		EndTime:        b.EndTime,
		StartAddress:   a.StartAddress,
		EndAddress:     b.EndAddress,
		StartCoord:     a.StartCoord,
		EndCoord:       b.EndCoord,
		DistanceMiles:  a.DistanceMiles + b.DistanceMiles,
		OdometerStart:  a.OdometerStart,
		OdometerEnd:    b.OdometerEnd,
		MergedSegments: a.MergedSegments + b.MergedSegments + 1,
	}

	var notes []string
	for _, n := range []string{a.Notes, b.Notes} {
		if strings.TrimSpace(n) != "" {
			notes = append(notes, strings.TrimSpace(n))
		}
	}
	merged.Notes = strings.Join(notes, "; ")
	return merged
}

// FlagMicroTrips marks trips short enough to be GPS drift or a parking
// adjustment: under the distance ceiling with both endpoints on the same
// street, or under a tenth of a mile outright. They stay in the data set,
// flagged for review rather than dropped, so the odometer chain remains
// unbroken.
func FlagMicroTrips(trips []model.Trip, maxMiles float64) int {
	if maxMiles <= 0 {
		return 0
	}
	flagged := 0
	for i := range trips {
		t := &trips[i]
		if t.DistanceMiles > maxMiles {
			continue
		}
		if t.DistanceMiles <= 0.1 || sameStreet(t.StartAddress, t.EndAddress) {
			t.MicroTrip = true
			flagged++
		}
	}
	return flagged
}

// streetTypes are the suffixes recognized when pulling a street name out
// of an address.
var streetTypes = map[string]bool{
	"st": true, "ave": true, "rd": true, "dr": true, "ln": true,
	"way": true, "blvd": true, "ct": true, "pl": true, "circle": true,
	"street": true, "avenue": true, "road": true, "drive": true,
	"lane": true, "boulevard": true, "court": true, "place": true,
}

func sameStreet(a, b string) bool {
	sa, sb := streetName(a), streetName(b)
	return sa != "" && sa == sb
}

// streetName extracts the street portion of an address: the tokens up to
// and including the first street-type suffix, or the leading tokens when
// no suffix is present.
func streetName(addr string) string {
	parts := strings.Fields(strings.ToLower(strings.ReplaceAll(addr, ",", " ")))
	for i, p := range parts {
		if i > 0 && streetTypes[strings.TrimRight(p, ".")] {
			lo := i - 2
			if lo < 0 {
				lo = 0
			}
			return strings.Join(parts[lo:i+1], " ")
		}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}
