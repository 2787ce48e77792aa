package model

import "time"

// WeeklySummary holds per-category mileage for one ISO week (Monday start).
// A summary exists only for weeks that contain at least one trip.
type WeeklySummary struct {
	WeekStart     time.Time
	TrackedMiles  map[string]float64 // configured region name -> miles
	CommuteMiles  float64
	BusinessMiles float64
	PersonalMiles float64
	WeekendMiles  float64
}

// TotalMiles is the sum of all categories for the week.
func (w *WeeklySummary) TotalMiles() float64 {
	return w.CommuteMiles + w.BusinessMiles + w.PersonalMiles
}

// OverallSummary aggregates the full categorized trip set. It carries no
// independent state and is recomputed from trips each run. Commute miles
// count toward personal in the business/personal split.
type OverallSummary struct {
	TrackedMiles       map[string]float64
	TotalMiles         float64
	BusinessMiles      float64
	CommuteMiles       float64
	OtherPersonalMiles float64
	WeekendMiles       float64
}

// PersonalMiles is commute plus other personal mileage.
func (o *OverallSummary) PersonalMiles() float64 {
	return o.CommuteMiles + o.OtherPersonalMiles
}

// BusinessPercent is the business share of total miles, 0 when no miles.
func (o *OverallSummary) BusinessPercent() float64 {
	return o.percent(o.BusinessMiles)
}

// PersonalPercent is the personal share (commute included), 0 when no miles.
func (o *OverallSummary) PersonalPercent() float64 {
	return o.percent(o.PersonalMiles())
}

// CommutePercent is the commute share of total miles, 0 when no miles.
func (o *OverallSummary) CommutePercent() float64 {
	return o.percent(o.CommuteMiles)
}

// OtherPersonalPercent is the non-commute personal share, 0 when no miles.
func (o *OverallSummary) OtherPersonalPercent() float64 {
	return o.percent(o.OtherPersonalMiles)
}

func (o *OverallSummary) percent(miles float64) float64 {
	if o.TotalMiles == 0 {
		return 0
	}
	return miles / o.TotalMiles * 100
}
