package model

import "strings"

// NormalizeAddress produces the canonical cache key for an address:
// trimmed, lowercased, interior whitespace collapsed. Equivalent spellings
// of one address must normalize identically so batches of trips never
// trigger duplicate remote lookups.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// AddressMatches reports whether two addresses refer to the same place
// using containment in either direction after normalization. Trip logs
// truncate and reformat addresses, so "10484 Beardslee Blvd, Bothell"
// must match "10484 Beardslee Blvd, Bothell WA 98011".
func AddressMatches(a, b string) bool {
	na, nb := NormalizeAddress(a), NormalizeAddress(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// AddressContainsAny reports whether the normalized address contains any
// of the given keywords (themselves matched case-insensitively).
func AddressContainsAny(address string, keywords []string) bool {
	norm := NormalizeAddress(address)
	if norm == "" {
		return false
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(norm, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
