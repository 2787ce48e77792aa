package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
	"github.com/Veraticus/miles-to-go/internal/service"
)

// keywordRule maps address keywords to a generic business label. These
// run after every other source has come up empty.
type keywordRule struct {
	label    string
	keywords []string
}

func defaultKeywordRules() []keywordRule {
	return []keywordRule{
		{label: "Gas Station", keywords: []string{
			"gas", "fuel", "shell", "chevron", "arco", "exxon", "mobil", "texaco",
		}},
		{label: "Store/Shopping", keywords: []string{
			"store", "market", "mall", "plaza", "shopping", "outlet",
		}},
	}
}

// Resolver resolves addresses to business labels through an ordered chain
// of sources. Resolution never fails: when every source comes up empty the
// raw address itself is the label.
type Resolver struct {
	store       service.LabelStore
	manual      *ManualMap
	lookups     []service.Lookup
	rules       []keywordRule
	logger      *slog.Logger
	group       singleflight.Group
	allowRemote bool

	// memo holds every resolution that fell past the persistent cache, so
	// a batch of trips to one address makes at most one remote call even
	// when the providers come up empty. Misses live here for the run only,
	// never in the database.
	mu   sync.Mutex
	memo map[string]model.BusinessLabel
}

// NewResolver creates a resolver over the given cache store, manual
// mapping, and remote providers, tried in the order given. When
// allowRemote is false the providers are never called and unknown
// addresses resolve to the raw address itself.
func NewResolver(store service.LabelStore, manual *ManualMap, lookups []service.Lookup, allowRemote bool, logger *slog.Logger) *Resolver {
	if manual == nil {
		manual = &ManualMap{entries: make(map[string]string)}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:       store,
		manual:      manual,
		lookups:     lookups,
		rules:       defaultKeywordRules(),
		logger:      logger,
		allowRemote: allowRemote,
		memo:        make(map[string]model.BusinessLabel),
	}
}

// Resolve returns the business label for an address. Concurrent calls for
// the same normalized address share a single resolution, so a batch of
// trips ending at one place makes at most one remote lookup.
func (r *Resolver) Resolve(ctx context.Context, address string) model.BusinessLabel {
	norm := model.NormalizeAddress(address)
	if norm == "" {
		return model.BusinessLabel{Label: strings.TrimSpace(address), Source: model.SourceRaw}
	}

	v, _, _ := r.group.Do(norm, func() (any, error) {
		return r.resolve(ctx, address, norm), nil
	})
	label, ok := v.(model.BusinessLabel)
	if !ok {
		return model.BusinessLabel{Label: strings.TrimSpace(address), Source: model.SourceRaw}
	}
	return label
}

func (r *Resolver) resolve(ctx context.Context, address, norm string) model.BusinessLabel {
	if label, ok := r.manual.Get(address); ok {
		return model.BusinessLabel{Label: label, Source: model.SourceManual}
	}

	if r.store != nil {
		entry, err := r.store.GetLabel(ctx, norm)
		switch {
		case err == nil:
			if err := r.store.IncrementUseCount(ctx, norm); err != nil {
				r.logger.Debug("failed to record cache hit", "address", norm, "error", err)
			}
			return model.BusinessLabel{Label: entry.Label, Source: model.SourceCache}
		case !errors.Is(err, common.ErrNotFound):
			r.logger.Warn("label cache read failed", "address", norm, "error", err)
		}
	}

	if !r.allowRemote {
		return model.BusinessLabel{Label: strings.TrimSpace(address), Source: model.SourceRaw}
	}

	r.mu.Lock()
	label, seen := r.memo[norm]
	r.mu.Unlock()
	if seen {
		return label
	}

	label, ok := r.lookupRemote(ctx, address, norm)
	if !ok {
		label = r.fallback(address)
	}

	r.mu.Lock()
	r.memo[norm] = label
	r.mu.Unlock()
	return label
}

// fallback labels an address no provider could name.
func (r *Resolver) fallback(address string) model.BusinessLabel {
	for _, rule := range r.rules {
		if model.AddressContainsAny(address, rule.keywords) {
			return model.BusinessLabel{Label: rule.label, Source: model.SourceKeyword}
		}
	}
	return model.BusinessLabel{Label: strings.TrimSpace(address), Source: model.SourceRaw}
}

// lookupRemote tries each provider in order. A provider failure or miss
// falls through to the next; only a definite answer is persisted. Misses
// are never cached, so a provider outage today cannot poison tomorrow's
// runs.
func (r *Resolver) lookupRemote(ctx context.Context, address, norm string) (model.BusinessLabel, bool) {
	for _, lookup := range r.lookups {
		name, err := lookup.Lookup(ctx, address)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNotFound):
				r.logger.Debug("no business found", "provider", lookup.Name(), "address", norm)
			case common.IsProviderFailure(err):
				r.logger.Warn("lookup provider failed", "provider", lookup.Name(), "address", norm, "error", err)
			default:
				r.logger.Warn("lookup error", "provider", lookup.Name(), "address", norm, "error", err)
			}
			continue
		}

		source := model.LabelSource(lookup.Name())
		r.persist(ctx, norm, name, source)
		return model.BusinessLabel{Label: name, Source: source}, true
	}
	return model.BusinessLabel{}, false
}

// persist writes a resolved label to the cache. Cache writes are best
// effort: a failure is logged and the run continues with the label it
// already has.
func (r *Resolver) persist(ctx context.Context, norm, label string, source model.LabelSource) {
	if r.store == nil {
		return
	}
	entry := &model.LabelEntry{
		AddressKey: norm,
		Label:      label,
		Source:     source,
	}
	if err := r.store.SaveLabel(ctx, entry); err != nil {
		r.logger.Warn("failed to cache resolved label", "address", norm, "error", err)
	}
}
