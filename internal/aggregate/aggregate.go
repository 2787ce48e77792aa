// Package aggregate rolls categorized trips into weekly and overall
// mileage summaries.
package aggregate

import (
	"sort"
	"time"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// Weekly buckets trips into Monday-start weeks and sums miles per
// category. Tracked region miles are counted for any trip touching one
// of the region's keywords at either endpoint. Weeks come back sorted.
func Weekly(trips []model.CategorizedTrip, trackedAreas map[string][]string) []model.WeeklySummary {
	byWeek := make(map[time.Time]*model.WeeklySummary)

	for i := range trips {
		t := &trips[i]
		week := t.Trip.WeekStart()
		summary, ok := byWeek[week]
		if !ok {
			summary = &model.WeeklySummary{
				WeekStart:    week,
				TrackedMiles: make(map[string]float64),
			}
			byWeek[week] = summary
		}
		accumulate(summary, t, trackedAreas)
	}

	out := make([]model.WeeklySummary, 0, len(byWeek))
	for _, s := range byWeek {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

func accumulate(s *model.WeeklySummary, t *model.CategorizedTrip, trackedAreas map[string][]string) {
	miles := t.Trip.DistanceMiles

	switch t.Result.Category {
	case model.CategoryCommute:
		s.CommuteMiles += miles
	case model.CategoryBusiness:
		s.BusinessMiles += miles
	case model.CategoryPersonal:
		s.PersonalMiles += miles
	}
	if t.Result.Rule == "personal-weekend" {
		s.WeekendMiles += miles
	}

	for region, keywords := range trackedAreas {
		if touchesArea(&t.Trip, keywords) {
			s.TrackedMiles[region] += miles
		}
	}
}

// Overall sums the full trip set. Commute counts toward personal in the
// business/personal split, so percentages answer the deduction question
// directly: commuting is not deductible mileage.
func Overall(trips []model.CategorizedTrip, trackedAreas map[string][]string) model.OverallSummary {
	summary := model.OverallSummary{TrackedMiles: make(map[string]float64)}

	for i := range trips {
		t := &trips[i]
		miles := t.Trip.DistanceMiles
		summary.TotalMiles += miles

		switch t.Result.Category {
		case model.CategoryCommute:
			summary.CommuteMiles += miles
		case model.CategoryBusiness:
			summary.BusinessMiles += miles
		case model.CategoryPersonal:
			summary.OtherPersonalMiles += miles
		}
		if t.Result.Rule == "personal-weekend" {
			summary.WeekendMiles += miles
		}

		for region, keywords := range trackedAreas {
			if touchesArea(&t.Trip, keywords) {
				summary.TrackedMiles[region] += miles
			}
		}
	}

	return summary
}

func touchesArea(t *model.Trip, keywords []string) bool {
	return model.AddressContainsAny(t.StartAddress, keywords) ||
		model.AddressContainsAny(t.EndAddress, keywords)
}
