package tradebook

import (
	"errors"
	"fmt"
)

// Snapshot is one consistent set of inputs for a ticker. Analyses are pure
// functions of a snapshot.
type Snapshot struct {
	Ticker    string          `json:"ticker"`
	Direction Direction       `json:"direction,omitempty"`
	Events    []TradeEvent    `json:"events"`
	Orders    []BrokerOrder   `json:"orders"`
	Record    *PositionRecord `json:"record,omitempty"`
	Account   *Account        `json:"account,omitempty"`
	Price     Opt[Money]      `json:"price"` // latest known price, if any
}

// Analysis is everything derived from a snapshot.
type Analysis struct {
	Ticker     string              `json:"ticker"`
	Direction  Direction           `json:"direction"`
	Strategy   LotStrategy         `json:"strategy"`
	Events     []TradeEvent        `json:"events"` // chronological, inferred stops applied
	Inferences []Inference         `json:"inferences,omitempty"`
	EventRisks []EventRisk         `json:"event_risks,omitempty"`
	Lots       []Lot               `json:"lots,omitempty"`
	Positions  []Position          `json:"positions,omitempty"` // one per epoch, oldest first
	Price      Opt[Money]          `json:"price"`               // current price estimate
	Warnings   []DivergenceWarning `json:"warnings,omitempty"`
}

// Current returns the latest position, false when there is no event at all.
func (a *Analysis) Current() (Position, bool) {
	if len(a.Positions) == 0 {
		return Position{}, false
	}
	return a.Positions[len(a.Positions)-1], true
}

// Analyze runs stop-loss inference, lot matching, risk and aggregation over
// one snapshot. Everything is recomputed from scratch.
//
// Invalid events are rejected with ErrInvalidEvent, an oversell with an
// *OversellError; in both cases nothing is derived.
func Analyze(s Snapshot) (*Analysis, error) {
	if err := validateSnapshot(s); err != nil {
		return nil, err
	}
	dir := s.Direction
	if dir == "" && s.Record != nil {
		dir = s.Record.Direction
	}
	dir = dir.orDefault()

	events, inferences := ApplyInference(Chronological(s.Events), dir, s.Orders)
	strategy := SelectStrategy(events, s.Orders, dir, s.Record != nil && s.Record.Aggregated)

	positions, err := Aggregate(s.Ticker, events, dir, s.Account)
	if err != nil {
		return nil, err
	}
	lots, err := BuildLots(events, s.Orders, dir, strategy)
	if err != nil {
		return nil, fmt.Errorf("building %s lots: %w", s.Ticker, err)
	}

	a := &Analysis{
		Ticker:     s.Ticker,
		Direction:  dir,
		Strategy:   strategy,
		Events:     events,
		Inferences: inferences,
		Positions:  positions,
	}

	current, hasCurrent := a.Current()
	if hasCurrent && current.Status == Open {
		a.Price = s.Price
		if !a.Price.IsSet() {
			a.Price = Some(current.AverageEntry)
		}
	}

	for i, l := range lots {
		lots[i].Risk = lotRisk(l, dir, a.Price, s.Account)
	}
	a.Lots = lots

	inferred := make(map[string]bool, len(inferences))
	for _, inf := range inferences {
		inferred[inf.EventID] = true
	}
	// only the open epoch has a current risk.
	openSince := current.Opened
	for _, e := range events {
		if e.Side != dir.Opening() {
			continue
		}
		price := a.Price
		if e.Time.Before(openSince) {
			price = None[Money]()
		}
		a.EventRisks = append(a.EventRisks, EventRisk{
			EventID:  e.ID,
			StopLoss: e.StopLoss,
			Inferred: inferred[e.ID],
			Risk:     eventRisk(e, dir, price, s.Account),
		})
	}

	if hasCurrent {
		a.Warnings = CheckDivergence(s.Record, current)
		var held Quantity
		for _, l := range a.Lots {
			held = held.Add(l.Remaining)
		}
		if !held.Equal(current.Shares) {
			a.Warnings = append(a.Warnings, DivergenceWarning{Ticker: s.Ticker, Field: "lot shares", Persisted: held.String(), Derived: current.Shares.String()})
		}
	} else if s.Record != nil && !s.Record.Shares.IsZero() {
		a.Warnings = append(a.Warnings, DivergenceWarning{Ticker: s.Ticker, Field: "shares", Persisted: s.Record.Shares.String(), Derived: "0"})
	}
	return a, nil
}

func validateSnapshot(s Snapshot) error {
	errs := []error{ValidateEvents(s.Events)}
	for _, o := range s.Orders {
		errs = append(errs, o.Validate())
	}
	// events are already checked against each other, orders and the current
	// price are checked against them.
	var currencies currencyCheck
	for _, e := range s.Events {
		currencies.event(e)
	}
	currencies.errs = nil
	for _, o := range s.Orders {
		currencies.order(o)
	}
	if p, ok := s.Price.Get(); ok {
		currencies.check(p, "current price")
	}
	errs = append(errs, currencies.errs...)
	if s.Direction != "" && s.Direction != Long && s.Direction != Short {
		errs = append(errs, fmt.Errorf("%w: unknown direction %q", ErrInvalidEvent, s.Direction))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("analyzing %s: %w", s.Ticker, err)
	}
	return nil
}
