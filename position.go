package tradebook

import (
	"fmt"
	"time"
)

// Status is the lifecycle status of a position.
type Status string

const (
	Open   Status = "open"
	Closed Status = "closed"
)

// PositionRecord is the aggregate persisted by the journal (or an importer).
// It is never modified by the engine, only compared against what the events
// say.
type PositionRecord struct {
	Ticker       string         `json:"ticker"`
	Direction    Direction      `json:"direction,omitempty"`
	Status       Status         `json:"status,omitempty"`
	Shares       Quantity       `json:"shares"`
	AverageEntry Opt[Money]     `json:"average_entry"`
	TotalCost    Opt[Money]     `json:"total_cost"`
	RealizedPnL  Opt[Money]     `json:"realized_pnl"`
	Opened       Opt[time.Time] `json:"opened"`
	Closed       Opt[time.Time] `json:"closed"`
	AccountValue Opt[Money]     `json:"account_value"`
	Aggregated   bool           `json:"aggregated,omitempty"` // built from a holdings summary, not from fills
}

// Position is the aggregate derived from the events of one lifecycle epoch.
type Position struct {
	Ticker        string         `json:"ticker"`
	Direction     Direction      `json:"direction"`
	Epoch         int            `json:"epoch"`
	Status        Status         `json:"status"`
	Shares        Quantity       `json:"shares"`
	AverageEntry  Money          `json:"average_entry"` // over every opening event of the epoch
	TotalCost     Money          `json:"total_cost"`    // over every opening event of the epoch
	OpenCost      Money          `json:"open_cost"`     // cost basis of the shares still held
	RealizedPnL   Money          `json:"realized_pnl"`
	ClosedCost    Money          `json:"closed_cost"` // cost basis of the shares actually closed
	// ReturnPercent is the realized P&L relative to ClosedCost, not to
	// TotalCost, so that adding to a position does not dilute the return.
	ReturnPercent Percent        `json:"return_percent"`
	Opened        time.Time      `json:"opened"`
	Closed        Opt[time.Time] `json:"closed"`
	AccountValue  Opt[Money]     `json:"account_value"`
}

// ClosedTrade returns the position-close event feeding the equity curve. It
// is false while the position is open.
func (p Position) ClosedTrade() (ClosedTrade, bool) {
	closed, ok := p.Closed.Get()
	if !ok {
		return ClosedTrade{}, false
	}
	return ClosedTrade{Ticker: p.Ticker, Time: closed, PnL: p.RealizedPnL}, true
}

// Epochs splits a history into lifecycle epochs. An epoch ends with the
// closing event that brings the shares back to zero; an opening event after
// that starts the next epoch.
//
// A closing event larger than the shares held is returned as an *OversellError.
func Epochs(events []TradeEvent, dir Direction) ([][]TradeEvent, error) {
	var epochs [][]TradeEvent
	var current []TradeEvent
	var held Quantity
	for _, e := range Chronological(events) {
		if e.Side == dir.Opening() {
			held = held.Add(e.Shares)
			current = append(current, e)
			continue
		}
		if e.Shares.GreaterThan(held) {
			return nil, &OversellError{EventID: e.ID, Time: e.Time, Requested: e.Shares, Available: held}
		}
		held = held.Sub(e.Shares)
		current = append(current, e)
		if held.IsZero() {
			epochs = append(epochs, current)
			current = nil
		}
	}
	if len(current) > 0 {
		epochs = append(epochs, current)
	}
	return epochs, nil
}

// Aggregate derives one Position per lifecycle epoch of a ticker, oldest
// first. The last one is the current position.
func Aggregate(ticker string, events []TradeEvent, dir Direction, account *Account) ([]Position, error) {
	dir = dir.orDefault()
	if err := sameCurrency(events, nil); err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", ticker, err)
	}
	epochs, err := Epochs(events, dir)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", ticker, err)
	}
	positions := make([]Position, 0, len(epochs))
	for i, epoch := range epochs {
		p, err := aggregateEpoch(ticker, epoch, dir, account)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s epoch %d: %w", ticker, i+1, err)
		}
		p.Epoch = i + 1
		positions = append(positions, p)
	}
	return positions, nil
}

func aggregateEpoch(ticker string, events []TradeEvent, dir Direction, account *Account) (Position, error) {
	ledger, matches, err := fifo(events, dir)
	if err != nil {
		return Position{}, err
	}
	currency := events[0].Price.Currency()
	zero := M(0, currency)
	p := Position{
		Ticker:       ticker,
		Direction:    dir,
		Status:       Open,
		AverageEntry: zero,
		TotalCost:    zero,
		OpenCost:     zero,
		RealizedPnL:  zero,
		ClosedCost:   zero,
		Opened:       events[0].Time,
	}

	var opened, closed Quantity
	for _, e := range events {
		if e.Side == dir.Opening() {
			opened = opened.Add(e.Shares)
			p.TotalCost = p.TotalCost.Add(e.Price.Mul(e.Shares))
			continue
		}
		closed = closed.Add(e.Shares)
		if opened.Sub(closed).IsZero() {
			p.Status = Closed
			p.Closed = Some(e.Time)
		}
	}
	p.Shares = opened.Sub(closed)
	if opened.IsPositive() {
		p.AverageEntry = p.TotalCost.Div(opened)
	}

	for _, m := range matches {
		p.RealizedPnL = p.RealizedPnL.Add(m.pnl(dir))
		p.ClosedCost = p.ClosedCost.Add(m.cost())
	}
	p.ReturnPercent = RatioOf(p.RealizedPnL, p.ClosedCost).Percent()

	for _, l := range ledger.surviving() {
		p.OpenCost = p.OpenCost.Add(l.Price.Mul(l.Remaining))
	}
	p.AccountValue = optional(account.ValueOn(p.Opened))
	return p, nil
}

// DivergenceWarning reports a persisted aggregate that disagrees with the one
// derived from the events. The derived value is the one displayed; the
// persisted record is left as is.
type DivergenceWarning struct {
	Ticker    string `json:"ticker"`
	Field     string `json:"field"`
	Persisted string `json:"persisted"`
	Derived   string `json:"derived"`
}

func (w DivergenceWarning) String() string {
	return fmt.Sprintf("%s: persisted %s is %s but events give %s", w.Ticker, w.Field, w.Persisted, w.Derived)
}

// CheckDivergence compares a persisted record with the derived current
// position. A nil record never diverges.
func CheckDivergence(record *PositionRecord, derived Position) []DivergenceWarning {
	if record == nil {
		return nil
	}
	var warnings []DivergenceWarning
	warn := func(field, persisted, got string) {
		warnings = append(warnings, DivergenceWarning{Ticker: derived.Ticker, Field: field, Persisted: persisted, Derived: got})
	}
	if !record.Shares.Equal(derived.Shares) {
		warn("shares", record.Shares.String(), derived.Shares.String())
	}
	if record.Status != "" && record.Status != derived.Status {
		warn("status", string(record.Status), string(derived.Status))
	}
	if avg, ok := record.AverageEntry.Get(); ok && !avg.Decimal().Round(4).Equal(derived.AverageEntry.Decimal().Round(4)) {
		warn("average entry", avg.String(), derived.AverageEntry.String())
	}
	return warnings
}
