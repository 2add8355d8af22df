package tradebook

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrOversell is matched by every *OversellError.
var ErrOversell = errors.New("oversell")

// OversellError reports a closing event larger than the shares still held.
type OversellError struct {
	EventID   string
	Time      time.Time
	Requested Quantity
	Available Quantity
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell on %s by event %q: closing %s shares but only %s held",
		e.Time.Format(time.RFC3339), e.EventID, e.Requested, e.Available)
}

func (e *OversellError) Is(target error) bool { return target == ErrOversell }

// Lot is a surviving slice of one opening event not yet fully closed.
type Lot struct {
	EventID    string     `json:"event_id,omitempty"`
	Price      Money      `json:"price"`
	Opened     time.Time  `json:"opened"`
	Original   Quantity   `json:"original"`
	Remaining  Quantity   `json:"remaining"`
	StopLoss   Opt[Money] `json:"stop_loss"`
	TakeProfit Opt[Money] `json:"take_profit"`
	Synthetic  bool       `json:"synthetic,omitempty"` // derived from orders or averages, not from one event
	Risk       Risk       `json:"risk"`
}

// LotStrategy selects how lots are derived from the history.
type LotStrategy int

const (
	// ChronologicalFIFO walks every event and closes the oldest lots first.
	ChronologicalFIFO LotStrategy = iota
	// OrderGroupingFallback derives lots from pending closing orders grouped by stop.
	OrderGroupingFallback
	// WeightedAverageFallback collapses the position into one lot at the average price.
	WeightedAverageFallback
)

func (s LotStrategy) String() string {
	switch s {
	case ChronologicalFIFO:
		return "fifo"
	case OrderGroupingFallback:
		return "order-grouping"
	case WeightedAverageFallback:
		return "weighted-average"
	default:
		return "unknown"
	}
}

func (s LotStrategy) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// SelectStrategy picks the lot strategy for a history.
//
// Full chronological FIFO is used as soon as one event was entered manually,
// or when the imported events are individual fills. The fallbacks only apply
// when every event is imported and the position was recorded from an
// aggregated holding (no per-fill linkage).
func SelectStrategy(events []TradeEvent, orders []BrokerOrder, dir Direction, aggregated bool) LotStrategy {
	if !aggregated || len(events) == 0 {
		return ChronologicalFIFO
	}
	for _, e := range events {
		if e.Provenance != Imported {
			return ChronologicalFIFO
		}
	}
	if len(pendingClosingOrders(orders, dir)) > 0 {
		return OrderGroupingFallback
	}
	return WeightedAverageFallback
}

// BuildLots returns the surviving lots of a history using the given strategy.
// An oversell anywhere in the history is returned as an *OversellError and no
// lot at all is produced.
func BuildLots(events []TradeEvent, orders []BrokerOrder, dir Direction, strategy LotStrategy) ([]Lot, error) {
	if err := sameCurrency(events, orders); err != nil {
		return nil, err
	}
	events = Chronological(events)
	all, _, err := fifo(events, dir)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case ChronologicalFIFO:
		return all.surviving(), nil
	case OrderGroupingFallback:
		return groupedLots(events, orders, dir, all.remaining()), nil
	case WeightedAverageFallback:
		return averagedLots(events, dir, all.remaining()), nil
	default:
		return nil, fmt.Errorf("unknown lot strategy %d", strategy)
	}
}

type lots []Lot

// match is a slice of a closing event matched against one lot.
type match struct {
	closing TradeEvent
	lot     Lot // the lot as it was before the match
	shares  Quantity
}

// cost returns the cost basis of the matched shares.
func (m match) cost() Money { return m.lot.Price.Mul(m.shares) }

// pnl returns the realized profit of the matched shares.
func (m match) pnl(dir Direction) Money {
	diff := m.closing.Price.Sub(m.lot.Price)
	if dir.orDefault() == Short {
		diff = diff.Neg()
	}
	return diff.Mul(m.shares)
}

func (l lots) remaining() Quantity {
	var total Quantity
	for _, lot := range l {
		total = total.Add(lot.Remaining)
	}
	return total
}

func (l lots) surviving() []Lot {
	var out []Lot
	for _, lot := range l {
		if lot.Remaining.IsPositive() {
			out = append(out, lot)
		}
	}
	return out
}

// close consumes the closing event's shares oldest lot first. The caller
// checks beforehand that enough shares remain.
func (l lots) close(e TradeEvent) []match {
	var matches []match
	toClose := e.Shares
	for i := range l {
		if !toClose.IsPositive() {
			break
		}
		if !l[i].Remaining.IsPositive() {
			continue
		}
		n := toClose.Min(l[i].Remaining)
		matches = append(matches, match{closing: e, lot: l[i], shares: n})
		l[i].Remaining = l[i].Remaining.Sub(n)
		toClose = toClose.Sub(n)
	}
	return matches
}

// fifo walks chronological events and returns every lot ever opened (with
// its remaining shares) and every closing match.
func fifo(events []TradeEvent, dir Direction) (lots, []match, error) {
	var ledger lots
	var matches []match
	for _, e := range events {
		if e.Side == dir.Opening() {
			ledger = append(ledger, Lot{
				EventID:    e.ID,
				Price:      e.Price,
				Opened:     e.Time,
				Original:   e.Shares.Abs(),
				Remaining:  e.Shares.Abs(),
				StopLoss:   e.StopLoss,
				TakeProfit: e.TakeProfit,
			})
			continue
		}
		if available := ledger.remaining(); e.Shares.Abs().GreaterThan(available) {
			return nil, nil, &OversellError{EventID: e.ID, Time: e.Time, Requested: e.Shares.Abs(), Available: available}
		}
		matches = append(matches, ledger.close(e)...)
	}
	return ledger, matches, nil
}

// openings returns the opening events.
func openings(events []TradeEvent, dir Direction) []TradeEvent {
	var out []TradeEvent
	for _, e := range events {
		if e.Side == dir.Opening() {
			out = append(out, e)
		}
	}
	return out
}

// averagePrice is the volume-weighted average price of the events.
func averagePrice(events []TradeEvent) (Money, bool) {
	var shares Quantity
	var cost Money
	for _, e := range events {
		shares = shares.Add(e.Shares)
		cost = cost.Add(e.Price.Mul(e.Shares))
	}
	if shares.IsZero() {
		return Money{}, false
	}
	return cost.Div(shares), true
}

func pendingClosingOrders(orders []BrokerOrder, dir Direction) []BrokerOrder {
	var out []BrokerOrder
	for _, o := range orders {
		if o.Side == dir.Closing() && o.Status == Pending && o.Shares.IsPositive() {
			out = append(out, o)
		}
	}
	return out
}

// averagedLots collapses held shares into one synthetic lot priced at the
// average opening price, protected by the most recent known stop.
func averagedLots(events []TradeEvent, dir Direction, held Quantity) []Lot {
	if !held.IsPositive() {
		return nil
	}
	opens := openings(events, dir)
	price, _ := averagePrice(opens)
	lot := Lot{
		Price:     price,
		Opened:    opens[0].Time,
		Original:  held,
		Remaining: held,
		Synthetic: true,
	}
	for i := len(opens) - 1; i >= 0; i-- {
		if opens[i].StopLoss.IsSet() {
			lot.StopLoss = opens[i].StopLoss
			break
		}
	}
	for i := len(opens) - 1; i >= 0; i-- {
		if opens[i].TakeProfit.IsSet() {
			lot.TakeProfit = opens[i].TakeProfit
			break
		}
	}
	return []Lot{lot}
}

// groupedLots derives one lot per distinct stop (or limit) price among the
// pending closing orders. Held shares not covered by an order make one
// unprotected lot; orders covering more than held are trimmed from the
// highest priced group down.
func groupedLots(events []TradeEvent, orders []BrokerOrder, dir Direction, held Quantity) []Lot {
	if !held.IsPositive() {
		return nil
	}
	opens := openings(events, dir)
	price, _ := averagePrice(opens)
	opened := opens[0].Time

	type group struct {
		key    Money
		shares Quantity
	}
	index := make(map[string]int)
	var groups []group
	for _, o := range pendingClosingOrders(orders, dir) {
		key, ok := o.StopLoss.Get()
		if !ok {
			key, ok = o.Price.Get()
		}
		if !ok {
			continue
		}
		k := key.Decimal().String()
		if i, exists := index[k]; exists {
			groups[i].shares = groups[i].shares.Add(o.Shares)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, group{key: key, shares: o.Shares})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].key.LessThan(groups[j].key)
	})

	var out []Lot
	left := held
	for _, g := range groups {
		if !left.IsPositive() {
			break
		}
		n := g.shares.Min(left)
		out = append(out, Lot{
			Price:     price,
			Opened:    opened,
			Original:  n,
			Remaining: n,
			StopLoss:  Some(g.key),
			Synthetic: true,
		})
		left = left.Sub(n)
	}
	if left.IsPositive() {
		out = append(out, Lot{
			Price:     price,
			Opened:    opened,
			Original:  left,
			Remaining: left,
			Synthetic: true,
		})
	}
	return out
}
