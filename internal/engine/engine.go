package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// LabelResolver resolves a destination address to a business label. The
// engine only consults it for business trips whose rule carries no static
// label.
type LabelResolver interface {
	Resolve(ctx context.Context, address string) model.BusinessLabel
}

// Engine categorizes trips with an ordered rule table.
type Engine struct {
	rules    []Rule
	resolver LabelResolver
	logger   *slog.Logger
}

// New creates an engine over the given rule table. resolver may be nil,
// in which case business trips are labeled with their raw destination.
func New(rules []Rule, resolver LabelResolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rules, resolver: resolver, logger: logger}
}

// Categorize classifies one trip. Every trip matches a rule: the table
// ends in an unconditional default, so no trip is ever left unclassified.
func (e *Engine) Categorize(ctx context.Context, trip *model.Trip) model.CategorizedTrip {
	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.Match(trip) {
			continue
		}

		e.logger.Debug("categorized trip",
			"start", trip.StartTime, "rule", rule.Name, "category", rule.Category)

		return model.CategorizedTrip{
			Trip:   *trip,
			Result: model.CategoryResult{Category: rule.Category, Rule: rule.Name},
			Label:  e.label(ctx, rule, trip),
		}
	}

	// Unreachable with DefaultRules; kept so a custom table without a
	// catch-all still yields a classified trip.
	return model.CategorizedTrip{
		Trip:   *trip,
		Result: model.CategoryResult{Category: model.CategoryPersonal, Rule: "personal-default"},
		Label:  model.BusinessLabel{Label: "Other Personal", Source: model.SourceRaw},
	}
}

// CategorizeAll classifies a batch of trips in order, invoking onProgress
// after each trip when non-nil.
func (e *Engine) CategorizeAll(ctx context.Context, trips []model.Trip, onProgress func(done int)) []model.CategorizedTrip {
	out := make([]model.CategorizedTrip, 0, len(trips))
	for i := range trips {
		out = append(out, e.Categorize(ctx, &trips[i]))
		if onProgress != nil {
			onProgress(i + 1)
		}
	}
	return out
}

func (e *Engine) label(ctx context.Context, rule *Rule, trip *model.Trip) model.BusinessLabel {
	if rule.Label != nil {
		return model.BusinessLabel{Label: rule.Label(trip), Source: model.SourceRaw}
	}
	if e.resolver == nil {
		return model.BusinessLabel{Label: strings.TrimSpace(trip.EndAddress), Source: model.SourceRaw}
	}
	return e.resolver.Resolve(ctx, trip.EndAddress)
}
