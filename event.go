package tradebook

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidEvent is returned (wrapped) for every malformed input record.
var ErrInvalidEvent = errors.New("invalid event")

// Side is the side of a trade event or a broker order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Provenance tells whether an event was entered manually or imported from a broker.
type Provenance string

const (
	Manual   Provenance = "manual"
	Imported Provenance = "imported"
)

func (p Provenance) Valid() bool { return p == Manual || p == Imported }

// Direction is the direction of a position. A long position is opened by
// buys and closed by sells, a short position the other way around.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// orDefault returns Long for the zero direction.
func (d Direction) orDefault() Direction {
	if d == "" {
		return Long
	}
	return d
}

// Opening returns the side that opens lots in this direction.
func (d Direction) Opening() Side {
	if d.orDefault() == Short {
		return Sell
	}
	return Buy
}

// Closing returns the side that consumes lots in this direction.
func (d Direction) Closing() Side {
	if d.orDefault() == Short {
		return Buy
	}
	return Sell
}

// TradeEvent is a single buy or sell on one instrument.
type TradeEvent struct {
	ID         string     `json:"id"`
	Side       Side       `json:"side"`
	Time       time.Time  `json:"time"`
	Shares     Quantity   `json:"shares"`
	Price      Money      `json:"price"`
	StopLoss   Opt[Money] `json:"stop_loss"`
	TakeProfit Opt[Money] `json:"take_profit"`
	Note       string     `json:"note,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// Validate checks the event fields, all failures are joined.
func (e TradeEvent) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if !e.Side.Valid() {
		errs = append(errs, fmt.Errorf("unknown side %q", e.Side))
	}
	if !e.Provenance.Valid() {
		errs = append(errs, fmt.Errorf("unknown provenance %q", e.Provenance))
	}
	if e.Time.IsZero() {
		errs = append(errs, errors.New("missing time"))
	}
	if !e.Shares.IsPositive() || !e.Shares.IsInteger() {
		errs = append(errs, fmt.Errorf("shares must be a positive integer, got %s", e.Shares))
	}
	if !e.Price.IsPositive() {
		errs = append(errs, fmt.Errorf("price must be positive, got %s", e.Price))
	}
	if stop, ok := e.StopLoss.Get(); ok && !stop.IsPositive() {
		errs = append(errs, fmt.Errorf("stop-loss must be positive, got %s", stop))
	}
	if tp, ok := e.TakeProfit.Get(); ok && !tp.IsPositive() {
		errs = append(errs, fmt.Errorf("take-profit must be positive, got %s", tp))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidEvent, e.ID, errors.Join(errs...))
}

// ValidateEvents validates every event and rejects duplicated ids.
func ValidateEvents(events []TradeEvent) error {
	var errs []error
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, dup := seen[e.ID]; dup && e.ID != "" {
			errs = append(errs, fmt.Errorf("%w %q: duplicated id", ErrInvalidEvent, e.ID))
		}
		seen[e.ID] = struct{}{}
	}
	var currencies currencyCheck
	for _, e := range events {
		currencies.event(e)
	}
	errs = append(errs, currencies.errs...)
	return errors.Join(errs...)
}

// currencyCheck reports the amounts of one instrument that are not in the
// currency of the first amount seen. An amount without currency matches any.
type currencyCheck struct {
	currency string
	errs     []error
}

func (c *currencyCheck) check(m Money, what string) {
	cur := m.Currency()
	switch {
	case cur == "":
	case c.currency == "":
		c.currency = cur
	case cur != c.currency:
		c.errs = append(c.errs, fmt.Errorf("%w: %s in %s, expected %s", ErrInvalidEvent, what, cur, c.currency))
	}
}

func (c *currencyCheck) event(e TradeEvent) {
	c.check(e.Price, fmt.Sprintf("event %q price", e.ID))
	if v, ok := e.StopLoss.Get(); ok {
		c.check(v, fmt.Sprintf("event %q stop-loss", e.ID))
	}
	if v, ok := e.TakeProfit.Get(); ok {
		c.check(v, fmt.Sprintf("event %q take-profit", e.ID))
	}
}

func (c *currencyCheck) order(o BrokerOrder) {
	if v, ok := o.Price.Get(); ok {
		c.check(v, fmt.Sprintf("order %q price", o.ID))
	}
	if v, ok := o.StopLoss.Get(); ok {
		c.check(v, fmt.Sprintf("order %q stop-loss", o.ID))
	}
}

// sameCurrency checks that the events and orders of an instrument share one currency.
func sameCurrency(events []TradeEvent, orders []BrokerOrder) error {
	var c currencyCheck
	for _, e := range events {
		c.event(e)
	}
	for _, o := range orders {
		c.order(o)
	}
	return errors.Join(c.errs...)
}

// Chronological returns a copy of the events sorted by time. Events at the
// same instant keep their insertion order.
func Chronological(events []TradeEvent) []TradeEvent {
	sorted := make([]TradeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// OrderStatus is the broker-side status of an order. Statuses this package
// does not know about are kept verbatim.
type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Filled    OrderStatus = "filled"
	Cancelled OrderStatus = "cancelled"
	Rejected  OrderStatus = "rejected"
	Expired   OrderStatus = "expired"
)

// BrokerOrder is an order as reported by the broker. It is only a signal
// source: it never becomes a lot by itself.
type BrokerOrder struct {
	ID       string      `json:"id"`
	Side     Side        `json:"side"`
	Status   OrderStatus `json:"status"`
	Shares   Quantity    `json:"shares"`
	Price    Opt[Money]  `json:"price"`
	StopLoss Opt[Money]  `json:"stop_loss"`
	Placed   time.Time   `json:"placed"`
}

// Validate checks the order fields.
func (o BrokerOrder) Validate() error {
	var errs []error
	if !o.Side.Valid() {
		errs = append(errs, fmt.Errorf("unknown side %q", o.Side))
	}
	if o.Placed.IsZero() {
		errs = append(errs, errors.New("missing placed time"))
	}
	if o.Shares.IsNegative() {
		errs = append(errs, fmt.Errorf("shares must not be negative, got %s", o.Shares))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: order %q: %w", ErrInvalidEvent, o.ID, errors.Join(errs...))
}

// CashFlowKind tells deposits from withdrawals.
type CashFlowKind string

const (
	Deposit    CashFlowKind = "deposit"
	Withdrawal CashFlowKind = "withdrawal"
)

// CashFlow is money moved in or out of the account.
type CashFlow struct {
	Time   time.Time    `json:"time"`
	Amount Money        `json:"amount"`
	Kind   CashFlowKind `json:"kind"`
	Note   string       `json:"note,omitempty"`
}

// Delta returns the signed change the cash flow applies to the account.
func (c CashFlow) Delta() Money {
	if c.Kind == Withdrawal {
		return c.Amount.Abs().Neg()
	}
	return c.Amount.Abs()
}

// Validate checks the cash flow fields.
func (c CashFlow) Validate() error {
	if c.Kind != Deposit && c.Kind != Withdrawal {
		return fmt.Errorf("%w: unknown cash flow kind %q", ErrInvalidEvent, c.Kind)
	}
	if c.Time.IsZero() {
		return fmt.Errorf("%w: %s without time", ErrInvalidEvent, c.Kind)
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("%w: %s amount must be positive, got %s", ErrInvalidEvent, c.Kind, c.Amount)
	}
	return nil
}
