package model

import "time"

// LabelSource indicates which resolver tier produced a business label.
type LabelSource string

const (
	// SourceManual indicates the label came from the operator-curated mapping file.
	SourceManual LabelSource = "manual"
	// SourceCache indicates the label came from the persisted resolved cache.
	SourceCache LabelSource = "cache"
	// SourcePlaces indicates the label came from the Google Places provider.
	SourcePlaces LabelSource = "places"
	// SourceNominatim indicates the label came from the Nominatim provider.
	SourceNominatim LabelSource = "nominatim"
	// SourceKeyword indicates the label was derived from address keywords.
	SourceKeyword LabelSource = "keyword"
	// SourceRaw indicates no source matched and the raw address is the label.
	SourceRaw LabelSource = "raw"
)

// BusinessLabel is the result of resolving an address to a business name.
type BusinessLabel struct {
	Label  string
	Source LabelSource
}

// LabelEntry is one persisted row of the resolved-label cache.
type LabelEntry struct {
	LastUpdated time.Time
	AddressKey  string
	Label       string
	Source      LabelSource
	UseCount    int
}
