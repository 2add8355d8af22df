package date

import (
	"testing"
	"time"
)

func TestNewRange(t *testing.T) {
	testCases := []struct {
		name   string
		on     Date
		period Period
		want   Range
	}{
		{"day", New(2025, time.September, 8), Daily, Range{New(2025, time.September, 8), New(2025, time.September, 8)}},
		{"week from a wednesday", New(2025, time.September, 10), Weekly, Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"week across years", New(2025, time.January, 1), Weekly, Range{New(2024, time.December, 30), New(2025, time.January, 5)}},
		{"leap february", New(2024, time.February, 15), Monthly, Range{New(2024, time.February, 1), New(2024, time.February, 29)}},
		{"second quarter", New(2025, time.May, 20), Quarterly, Range{New(2025, time.April, 1), New(2025, time.June, 30)}},
		{"year", New(2025, time.September, 8), Yearly, Range{New(2025, time.January, 1), New(2025, time.December, 31)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewRange(tc.on, tc.period); got != tc.want {
				t.Errorf("NewRange(%s, %s) = %v..%v, want %v..%v", tc.on, tc.period, got.From, got.To, tc.want.From, tc.want.To)
			}
		})
	}
}

func TestRangeNames(t *testing.T) {
	testCases := []struct {
		in         Range
		name, id   string
		wantPeriod bool
	}{
		{NewRange(New(2025, time.September, 8), Daily), "daily", "2025-09-08", true},
		{NewRange(New(2025, time.September, 8), Weekly), "weekly", "2025-W37", true},
		{NewRange(New(2025, time.January, 6), Weekly), "weekly", "2025-W02", true},
		{NewRange(New(2025, time.September, 1), Monthly), "monthly", "2025-09", true},
		{NewRange(New(2025, time.August, 14), Quarterly), "quarterly", "2025-Q3", true},
		{NewRange(New(2025, time.March, 3), Yearly), "yearly", "2025", true},
		{Range{New(2025, time.September, 2), New(2025, time.September, 10)}, "special", "2025-09-02_2025-09-10", false},
		{Range{New(2025, time.January, 1), New(2026, time.December, 31)}, "special", "2025-01-01_2026-12-31", false},
	}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			if _, ok := tc.in.Period(); ok != tc.wantPeriod {
				t.Errorf("Period() ok = %v, want %v", ok, tc.wantPeriod)
			}
			if got := tc.in.Name(); got != tc.name {
				t.Errorf("Name() = %q, want %q", got, tc.name)
			}
			if got := tc.in.Identifier(); got != tc.id {
				t.Errorf("Identifier() = %q, want %q", got, tc.id)
			}
			if got, want := tc.in.String(), tc.name+" "+tc.id; got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
		})
	}
}

func TestRangeContainsTime(t *testing.T) {
	r := NewRange(New(2025, time.March, 15), Monthly)
	testCases := []struct {
		t    time.Time
		want bool
	}{
		{time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), false},
		// the UTC day counts, not the local one.
		{time.Date(2025, time.April, 1, 1, 0, 0, 0, time.FixedZone("CET", 2*3600)), true},
	}
	for _, tc := range testCases {
		if got := r.ContainsTime(tc.t); got != tc.want {
			t.Errorf("ContainsTime(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	testCases := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"daily", Daily, false},
		{"week", Weekly, false},
		{"Monthly", Monthly, false},
		{" quarter ", Quarterly, false},
		{"YEAR", Yearly, false},
		{"fortnight", Daily, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePeriod(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
