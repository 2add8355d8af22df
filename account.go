package tradebook

import (
	"encoding/json"
	"time"

	"github.com/etnz/tradebook/date"
)

// Account provides the account value used as the denominator of risk
// percentages: a per-date series with a current-balance fallback.
type Account struct {
	Currency string
	Values   date.History[Money] // account value by date
	Balance  Opt[Money]          // current balance, used when the series has no value
}

// ValueOn returns the account value at the given instant: the latest value
// of the series on or before that day, else the current balance. A later
// value of the series is never used for an earlier instant. Non-positive
// values are not usable as a denominator and are reported as unavailable.
func (a *Account) ValueOn(t time.Time) (Money, bool) {
	if a == nil {
		return Money{}, false
	}
	if v, ok := a.Values.ValueAsOf(date.Of(t)); ok && v.IsPositive() {
		return v, true
	}
	if b, ok := a.Balance.Get(); ok && b.IsPositive() {
		return b, true
	}
	return Money{}, false
}

// Current returns the current balance, else the latest value of the series.
func (a *Account) Current() (Money, bool) {
	if a == nil {
		return Money{}, false
	}
	if b, ok := a.Balance.Get(); ok && b.IsPositive() {
		return b, true
	}
	if a.Values.Len() > 0 {
		if _, v := a.Values.Latest(); v.IsPositive() {
			return v, true
		}
	}
	return Money{}, false
}

type jaccountValue struct {
	Date  date.Date `json:"date"`
	Value Money     `json:"value"`
}

// MarshalJSON encodes the complete account input, so that it can take part in
// a snapshot fingerprint.
func (a Account) MarshalJSON() ([]byte, error) {
	values := make([]jaccountValue, 0, a.Values.Len())
	for on, v := range a.Values.Values() {
		values = append(values, jaccountValue{Date: on, Value: v})
	}
	return json.Marshal(struct {
		Currency string          `json:"currency,omitempty"`
		Balance  Opt[Money]      `json:"balance"`
		Values   []jaccountValue `json:"values"`
	}{a.Currency, a.Balance, values})
}
