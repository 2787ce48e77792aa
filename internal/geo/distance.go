// Package geo provides stateless geographic distance helpers.
package geo

import (
	"math"

	"github.com/Veraticus/miles-to-go/internal/model"
)

const earthRadiusMiles = 3958.8

// Distance returns the great-circle distance between two coordinates in
// miles (haversine formula).
func Distance(a, b model.Coord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// PlausibleDistance reports whether a trip's logged distance is consistent
// with its coordinates: no drive can be shorter than the straight line
// between its endpoints. Trips without coordinates are always plausible.
// This is a sanity signal only, never a categorization input.
func PlausibleDistance(t *model.Trip) bool {
	if t.StartCoord == nil || t.EndCoord == nil {
		return true
	}
	// Half a mile of slack absorbs GPS jitter and address snapping.
	return t.DistanceMiles+0.5 >= Distance(*t.StartCoord, *t.EndCoord)
}
