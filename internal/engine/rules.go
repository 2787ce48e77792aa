// Package engine classifies trips as commute, business, or personal by
// running each trip through an ordered rule table, first match wins.
package engine

import (
	"time"

	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/model"
)

// Rule is one entry of the categorization table. Rules are evaluated in
// order and the first match decides the category, so the table's order is
// part of the contract.
type Rule struct {
	Name     string
	Category model.Category
	Match    func(t *model.Trip) bool
	// Label produces the trip's business label. Nil means the engine
	// resolves the destination address through the label resolver.
	Label func(t *model.Trip) string
}

// DefaultRules builds the rule table for a configuration. Order matters:
//
//	commute > fuel > long weekday > remote-area weekday >
//	short local weekday > weekend window > personal default
func DefaultRules(cfg *config.Config) []Rule {
	weekend := weekWindow{start: cfg.WeekendStart, end: cfg.WeekendEnd}
	// The workweek runs from Monday 00:00 until the weekend starts. Early
	// Monday hours before the weekend end cutoff sit in both windows; the
	// business rules outrank the weekend rule there, so a long trip at
	// Monday 06:00 is business while a short one is still weekend travel.
	workweek := weekWindow{start: config.Cutoff{Weekday: time.Monday}, end: cfg.WeekendStart}
	weekday := func(t *model.Trip) bool { return workweek.contains(t.StartTime) }

	return []Rule{
		{
			Name:     "commute",
			Category: model.CategoryCommute,
			Match: func(t *model.Trip) bool {
				return isCommutePair(t, cfg.HomeAddress, cfg.WorkAddress)
			},
			Label: func(t *model.Trip) string {
				if model.AddressMatches(t.EndAddress, cfg.WorkAddress) {
					return "Office"
				}
				return "Home"
			},
		},
		{
			Name:     "business-fuel",
			Category: model.CategoryBusiness,
			Match: func(t *model.Trip) bool {
				return model.AddressContainsAny(t.EndAddress, cfg.BusinessKeywords) ||
					model.AddressContainsAny(t.StartAddress, cfg.BusinessKeywords)
			},
		},
		{
			Name:     "business-long-weekday",
			Category: model.CategoryBusiness,
			Match: func(t *model.Trip) bool {
				return weekday(t) && t.DistanceMiles > cfg.BusinessDistanceThreshold
			},
		},
		{
			Name:     "business-remote-area",
			Category: model.CategoryBusiness,
			Match: func(t *model.Trip) bool {
				return weekday(t) &&
					(model.AddressContainsAny(t.EndAddress, cfg.RemoteArea) ||
						model.AddressContainsAny(t.StartAddress, cfg.RemoteArea))
			},
		},
		{
			Name:     "business-short-local",
			Category: model.CategoryBusiness,
			Match: func(t *model.Trip) bool {
				return weekday(t) &&
					model.AddressContainsAny(t.EndAddress, cfg.LocalArea) &&
					model.AddressContainsAny(t.StartAddress, cfg.LocalArea)
			},
		},
		{
			Name:     "personal-weekend",
			Category: model.CategoryPersonal,
			Match: func(t *model.Trip) bool {
				return weekend.contains(t.StartTime)
			},
			Label: func(_ *model.Trip) string { return "Weekend Travel" },
		},
		{
			Name:     "personal-default",
			Category: model.CategoryPersonal,
			Match:    func(_ *model.Trip) bool { return true },
			Label:    func(_ *model.Trip) string { return "Other Personal" },
		},
	}
}

// isCommutePair reports whether the trip runs directly between home and
// work, in either direction.
func isCommutePair(t *model.Trip, home, work string) bool {
	return (model.AddressMatches(t.StartAddress, home) && model.AddressMatches(t.EndAddress, work)) ||
		(model.AddressMatches(t.StartAddress, work) && model.AddressMatches(t.EndAddress, home))
}

// weekWindow is a weekly interval from the start cutoff, inclusive, until
// the end cutoff, exclusive. The window wraps across the week boundary
// when the start cutoff falls later in the week than the end.
type weekWindow struct {
	start config.Cutoff
	end   config.Cutoff
}

// contains reports whether tm falls inside the window. A trip straddling
// a cutoff is judged by its start time alone, so this is the only
// calendar test the engine performs.
func (w weekWindow) contains(tm time.Time) bool {
	p := weekHours(tm)
	s := cutoffHours(w.start)
	e := cutoffHours(w.end)

	if s == e {
		return false
	}
	if s < e {
		return p >= s && p < e
	}
	return p >= s || p < e
}

// weekHours maps a time to hours since Sunday 00:00 of its week.
func weekHours(tm time.Time) float64 {
	return float64(int(tm.Weekday())*24+tm.Hour()) + float64(tm.Minute())/60
}

func cutoffHours(c config.Cutoff) float64 {
	return float64(int(c.Weekday)*24 + c.Hour)
}
