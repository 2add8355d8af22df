package tradebook

import "testing"

func TestAccountValueOn(t *testing.T) {
	a := &Account{Currency: "USD", Balance: Some(USD(30000))}
	a.Values.Append(day(5), USD(10000)).Append(day(10), USD(-5)).Append(day(15), USD(20000))

	testCases := []struct {
		name string
		day  int
		want Money
		ok   bool
	}{
		{"before the series", 1, USD(30000), true},
		{"on a day", 5, USD(10000), true},
		{"as of a previous day", 7, USD(10000), true},
		{"non positive value", 12, USD(30000), true},
		{"latest", 20, USD(20000), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := a.ValueOn(at(tc.day, 12))
			if ok != tc.ok || !got.Equal(tc.want) {
				t.Errorf("ValueOn(%d) = %v, %v, want %v, %v", tc.day, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestAccountUnavailable(t *testing.T) {
	var none *Account
	if _, ok := none.ValueOn(at(1, 0)); ok {
		t.Error("a nil account has no value")
	}
	empty := &Account{Currency: "USD", Balance: Some(USD(0))}
	if _, ok := empty.Current(); ok {
		t.Error("a zero balance is not a usable account value")
	}

	series := &Account{Currency: "USD"}
	series.Values.Append(day(3), USD(5000))
	if v, ok := series.Current(); !ok || !v.Equal(USD(5000)) {
		t.Errorf("Current() = %v, %v, want the latest value of the series", v, ok)
	}
}

func TestAccountValueBeforeSeries(t *testing.T) {
	a := &Account{Currency: "USD"}
	a.Values.Append(day(20), USD(50000))

	if v, ok := a.ValueOn(at(2, 10)); ok {
		t.Errorf("ValueOn() before the series = %v, want no value", v)
	}
	if v, ok := a.ValueOn(at(21, 10)); !ok || !v.Equal(USD(50000)) {
		t.Errorf("ValueOn() after the series start = %v, %v, want %v", v, ok, USD(50000))
	}
	// the current value still knows the latest point of the series.
	if v, ok := a.Current(); !ok || !v.Equal(USD(50000)) {
		t.Errorf("Current() = %v, %v, want %v", v, ok, USD(50000))
	}
}
