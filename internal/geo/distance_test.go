package geo

import (
	"math"
	"testing"

	"github.com/Veraticus/miles-to-go/internal/model"
)

var (
	kenmore = model.Coord{Lat: 47.7573, Lon: -122.2440}
	bothell = model.Coord{Lat: 47.7623, Lon: -122.2054}
	spokane = model.Coord{Lat: 47.6588, Lon: -117.4260}
)

func TestDistance(t *testing.T) {
	// Kenmore to Bothell is roughly 1.8 miles as the crow flies.
	d := Distance(kenmore, bothell)
	if d < 1.5 || d > 2.2 {
		t.Errorf("Distance(kenmore, bothell) = %v, want ~1.8", d)
	}

	// Seattle area to Spokane is roughly 225 miles.
	d = Distance(kenmore, spokane)
	if d < 215 || d > 235 {
		t.Errorf("Distance(kenmore, spokane) = %v, want ~225", d)
	}
}

func TestDistanceZero(t *testing.T) {
	if d := Distance(kenmore, kenmore); math.Abs(d) > 1e-9 {
		t.Errorf("Distance(a, a) = %v, want 0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	ab := Distance(kenmore, spokane)
	ba := Distance(spokane, kenmore)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestPlausibleDistance(t *testing.T) {
	plausible := &model.Trip{
		StartCoord:    &kenmore,
		EndCoord:      &spokane,
		DistanceMiles: 280, // road miles exceed straight line
	}
	if !PlausibleDistance(plausible) {
		t.Error("road distance above straight line should be plausible")
	}

	implausible := &model.Trip{
		StartCoord:    &kenmore,
		EndCoord:      &spokane,
		DistanceMiles: 5,
	}
	if PlausibleDistance(implausible) {
		t.Error("5 logged miles across 225 straight-line miles should be implausible")
	}

	noCoords := &model.Trip{DistanceMiles: 5}
	if !PlausibleDistance(noCoords) {
		t.Error("trips without coordinates are always plausible")
	}
}
