package model

import (
	"testing"
	"time"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normal", input: "123 main st, bothell", want: "123 main st, bothell"},
		{name: "mixed case", input: "123 Main St, Bothell", want: "123 main st, bothell"},
		{name: "extra whitespace", input: "  123   Main St,\tBothell ", want: "123 main st, bothell"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAddress(tt.input); got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddressEquivalence(t *testing.T) {
	// Equivalent spellings must produce identical cache keys.
	a := NormalizeAddress("9227 NE 180th St, Bothell")
	b := NormalizeAddress("  9227 ne 180TH st,   Bothell")
	if a != b {
		t.Errorf("equivalent addresses normalized differently: %q vs %q", a, b)
	}
}

func TestAddressMatches(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "exact", a: "15815 61st Ln NE, Kenmore", b: "15815 61st Ln NE, Kenmore", want: true},
		{name: "truncated log address", a: "10484 Beardslee Blvd, Bothell", b: "10484 Beardslee Blvd, Bothell WA 98011", want: true},
		{name: "reversed containment", a: "10484 Beardslee Blvd, Bothell WA 98011", b: "10484 Beardslee Blvd, Bothell", want: true},
		{name: "different streets", a: "15815 61st Ln NE, Kenmore", b: "9227 NE 180th St, Bothell", want: false},
		{name: "empty never matches", a: "", b: "9227 NE 180th St", want: false},
		{name: "both empty", a: "", b: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddressMatches(tt.a, tt.b); got != tt.want {
				t.Errorf("AddressMatches(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAddressContainsAny(t *testing.T) {
	keywords := []string{"gas", "shell", "chevron"}

	if !AddressContainsAny("Shell Station, 123 Main St", keywords) {
		t.Error("expected keyword match for Shell")
	}
	if AddressContainsAny("15815 61st Ln NE, Kenmore", keywords) {
		t.Error("unexpected keyword match for residential address")
	}
	if AddressContainsAny("", keywords) {
		t.Error("empty address should never match")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday",
			in:   time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday maps to prior monday",
			in:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOverallSummaryPercentages(t *testing.T) {
	o := OverallSummary{
		TotalMiles:         200,
		BusinessMiles:      100,
		CommuteMiles:       60,
		OtherPersonalMiles: 40,
	}

	if got := o.BusinessPercent(); got != 50 {
		t.Errorf("BusinessPercent() = %v, want 50", got)
	}
	if got := o.PersonalPercent(); got != 50 {
		t.Errorf("PersonalPercent() = %v, want 50", got)
	}
	if got := o.PersonalMiles(); got != 100 {
		t.Errorf("PersonalMiles() = %v, want 100", got)
	}
}

func TestOverallSummaryZeroTotal(t *testing.T) {
	var o OverallSummary

	// A zero-distance trip set must yield 0%% everywhere, not a division fault.
	if got := o.BusinessPercent(); got != 0 {
		t.Errorf("BusinessPercent() = %v, want 0", got)
	}
	if got := o.PersonalPercent(); got != 0 {
		t.Errorf("PersonalPercent() = %v, want 0", got)
	}
	if got := o.CommutePercent(); got != 0 {
		t.Errorf("CommutePercent() = %v, want 0", got)
	}
}
