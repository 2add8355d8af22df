package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestOf(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	// 00:30 in Paris is still the previous day in UTC.
	ts := time.Date(2025, time.March, 2, 0, 30, 0, 0, paris)
	if got, want := Of(ts), New(2025, time.March, 1); got != want {
		t.Errorf("Of(%v) = %v, want %v", ts, got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, time.July, 1), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"2025-07-01T23:30:00-02:00", New(2025, time.July, 2), false},
		{"July 1st", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAddMonth(t *testing.T) {
	testCases := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"plain", New(2025, time.June, 15), -1, New(2025, time.May, 15)},
		{"clamped to february", New(2025, time.March, 31), -1, New(2025, time.February, 28)},
		{"leap year", New(2024, time.March, 30), -1, New(2024, time.February, 29)},
		{"across year", New(2025, time.January, 10), -3, New(2024, time.October, 10)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.AddMonth(tc.n); got != tc.want {
				t.Errorf("%v.AddMonth(%d) = %v, want %v", tc.in, tc.n, got, tc.want)
			}
		})
	}
}
