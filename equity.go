package tradebook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/etnz/tradebook/date"
)

// PointKind classifies what moved the equity curve.
type PointKind string

const (
	StartPoint         PointKind = "start"
	DepositPoint       PointKind = "deposit"
	WithdrawalPoint    PointKind = "withdrawal"
	PositionClosePoint PointKind = "position-close"
	MixedPoint         PointKind = "mixed" // several kinds at the same instant
)

// EquityPoint is one point of the equity curve.
type EquityPoint struct {
	Time        time.Time `json:"time"`
	Value       Money     `json:"value"`
	Delta       Money     `json:"delta"`
	Kind        PointKind `json:"kind,omitempty"`
	Description string    `json:"description,omitempty"`
}

// ClosedTrade is the realized P&L of a position, booked when it closes.
type ClosedTrade struct {
	Ticker string    `json:"ticker"`
	Time   time.Time `json:"time"`
	PnL    Money     `json:"pnl"`
}

// Curve is the account equity over time: cash flows and realized P&L applied
// to a starting balance. Points are strictly ascending by time.
type Curve struct {
	points []EquityPoint
}

// CurveInput is everything the equity curve is built from.
type CurveInput struct {
	Start     Money
	StartTime Opt[time.Time] // defaults to midnight UTC of the day before the first event
	CashFlows []CashFlow
	Trades    []ClosedTrade
}

type curveEvent struct {
	time        time.Time
	delta       Money
	kind        PointKind
	description string
}

// BuildCurve merges cash flows and position closes by time into a running
// balance. Events at the same instant collapse into a single point.
func BuildCurve(in CurveInput) (*Curve, error) {
	currency := in.Start.Currency()
	var errs []error
	var events []curveEvent
	check := func(m Money, what string) {
		if currency == "" {
			currency = m.Currency()
		}
		if m.Currency() != "" && m.Currency() != currency {
			errs = append(errs, fmt.Errorf("%s in %s, the curve is in %s", what, m.Currency(), currency))
		}
	}
	for _, c := range in.CashFlows {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		check(c.Amount, string(c.Kind))
		kind := DepositPoint
		if c.Kind == Withdrawal {
			kind = WithdrawalPoint
		}
		description := c.Note
		if description == "" {
			description = string(c.Kind)
		}
		events = append(events, curveEvent{time: c.Time, delta: c.Delta(), kind: kind, description: description})
	}
	for _, t := range in.Trades {
		if t.Time.IsZero() {
			errs = append(errs, fmt.Errorf("%w: closed trade %s without time", ErrInvalidEvent, t.Ticker))
			continue
		}
		check(t.PnL, "closed "+t.Ticker)
		events = append(events, curveEvent{time: t.Time, delta: t.PnL, kind: PositionClosePoint, description: t.Ticker + " closed"})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].time.Before(events[j].time) })

	start, ok := in.StartTime.Get()
	if !ok {
		if len(events) == 0 {
			return &Curve{}, nil
		}
		start = date.Of(events[0].time).Add(-1).Midnight()
	}
	if len(events) > 0 && !start.Before(events[0].time) {
		return nil, fmt.Errorf("curve start %s is not before the first event %s", start.Format(time.RFC3339), events[0].time.Format(time.RFC3339))
	}

	value := M(in.Start.Decimal(), currency)
	c := &Curve{points: []EquityPoint{{Time: start, Value: value, Delta: M(0, currency), Kind: StartPoint, Description: "starting balance"}}}
	for _, e := range events {
		value = value.Add(e.delta)
		last := &c.points[len(c.points)-1]
		if last.Time.Equal(e.time) {
			last.Value = value
			last.Delta = last.Delta.Add(e.delta)
			if last.Kind != e.kind {
				last.Kind = MixedPoint
			}
			last.Description = strings.Join([]string{last.Description, e.description}, "; ")
			continue
		}
		c.points = append(c.points, EquityPoint{Time: e.time, Value: value, Delta: e.delta, Kind: e.kind, Description: e.description})
	}
	return c, nil
}

// Points returns a copy of every point of the curve.
func (c *Curve) Points() []EquityPoint {
	if c == nil {
		return nil
	}
	out := make([]EquityPoint, len(c.points))
	copy(out, c.points)
	return out
}

// Window returns the points inside the window queried on 'on'. The curve is
// left untouched.
func (c *Curve) Window(w date.Window, on date.Date) []EquityPoint {
	var out []EquityPoint
	for _, p := range c.Points() {
		if w.Contains(on, date.Of(p.Time)) {
			out = append(out, p)
		}
	}
	return out
}

// Within returns the points whose UTC day is inside the range.
func (c *Curve) Within(r date.Range) []EquityPoint {
	var out []EquityPoint
	for _, p := range c.Points() {
		if r.ContainsTime(p.Time) {
			out = append(out, p)
		}
	}
	return out
}

// Span returns the points covered by a window or a calendar period queried
// on 'on'.
func (c *Curve) Span(s date.Span, on date.Date) []EquityPoint {
	r, bounded := s.Range(on)
	if !bounded {
		return c.Points()
	}
	return c.Within(r)
}

// Summary describes a slice of the equity curve.
type Summary struct {
	First         Money   `json:"first"`
	Last          Money   `json:"last"`
	Change        Money   `json:"change"`
	ChangePercent Percent `json:"change_percent"` // undefined when the first value is zero
	Peak          Money   `json:"peak"`
	Trough        Money   `json:"trough"`
}

// Summarize computes the summary of points. It returns false for no points.
func Summarize(points []EquityPoint) (Summary, bool) {
	if len(points) == 0 {
		return Summary{}, false
	}
	first, last := points[0].Value, points[len(points)-1].Value
	s := Summary{First: first, Last: last, Change: last.Sub(first), Peak: first, Trough: first}
	s.ChangePercent = RatioOf(s.Change, first).Percent()
	for _, p := range points[1:] {
		if p.Value.GreaterThan(s.Peak) {
			s.Peak = p.Value
		}
		if p.Value.LessThan(s.Trough) {
			s.Trough = p.Value
		}
	}
	return s, true
}
