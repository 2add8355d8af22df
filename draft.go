package tradebook

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Draft is an edit being typed: raw text, not yet parsed nor validated.
type Draft struct {
	EventID    string
	Kind       EditKind
	StopLoss   string
	TakeProfit string
	Note       string
	Shares     string
	Price      string
	Time       string
}

// Drafts is an immutable set of drafts keyed by event id. Every action returns
// a new Drafts and leaves the receiver unchanged. Drafts never take part in an
// analysis; only a committed Edit does.
type Drafts struct {
	m map[string]Draft
}

func (d Drafts) with(id string, f func(*Draft)) Drafts {
	draft, ok := d.m[id]
	if !ok {
		return d
	}
	f(&draft)
	m := maps.Clone(d.m)
	m[id] = draft
	return Drafts{m: m}
}

// Begin starts a draft for the event, prefilled with its current values.
// An existing draft for the same event is replaced.
func (d Drafts) Begin(e TradeEvent, kind EditKind) Drafts {
	draft := Draft{
		EventID: e.ID,
		Kind:    kind,
		Note:    e.Note,
		Shares:  e.Shares.String(),
		Price:   e.Price.Decimal().String(),
		Time:    e.Time.Format(time.RFC3339),
	}
	if v, ok := e.StopLoss.Get(); ok {
		draft.StopLoss = v.Decimal().String()
	}
	if v, ok := e.TakeProfit.Get(); ok {
		draft.TakeProfit = v.Decimal().String()
	}
	m := maps.Clone(d.m)
	if m == nil {
		m = make(map[string]Draft)
	}
	m[e.ID] = draft
	return Drafts{m: m}
}

// SetStopLoss updates the stop-loss text of a draft. Unknown ids are ignored.
func (d Drafts) SetStopLoss(id, v string) Drafts {
	return d.with(id, func(x *Draft) { x.StopLoss = v })
}

func (d Drafts) SetTakeProfit(id, v string) Drafts {
	return d.with(id, func(x *Draft) { x.TakeProfit = v })
}

func (d Drafts) SetNote(id, v string) Drafts { return d.with(id, func(x *Draft) { x.Note = v }) }

func (d Drafts) SetShares(id, v string) Drafts { return d.with(id, func(x *Draft) { x.Shares = v }) }

func (d Drafts) SetPrice(id, v string) Drafts { return d.with(id, func(x *Draft) { x.Price = v }) }

func (d Drafts) SetTime(id, v string) Drafts { return d.with(id, func(x *Draft) { x.Time = v }) }

// Discard drops the draft of an event.
func (d Drafts) Discard(id string) Drafts {
	if _, ok := d.m[id]; !ok {
		return d
	}
	m := maps.Clone(d.m)
	delete(m, id)
	return Drafts{m: m}
}

// Get returns the draft of an event.
func (d Drafts) Get(id string) (Draft, bool) {
	draft, ok := d.m[id]
	return draft, ok
}

func (d Drafts) Len() int { return len(d.m) }

// Commit parses the draft of an event into an Edit with amounts in the given
// currency, and returns the drafts without it. On error the drafts are
// returned unchanged so that the user can fix the input.
func (d Drafts) Commit(id, currency string) (Edit, Drafts, error) {
	draft, ok := d.m[id]
	if !ok {
		return Edit{}, d, fmt.Errorf("no draft for %w %q", ErrUnknownEvent, id)
	}
	edit := Edit{EventID: id, Kind: draft.Kind}
	var errs []error
	switch draft.Kind {
	case EditStopLoss:
		v, err := parseOptMoney(draft.StopLoss, currency)
		edit.StopLoss, errs = v, append(errs, err)
	case EditTakeProfit:
		v, err := parseOptMoney(draft.TakeProfit, currency)
		edit.TakeProfit, errs = v, append(errs, err)
	case EditNote:
		edit.Note = strings.TrimSpace(draft.Note)
	case EditEvent:
		shares, err := decimal.NewFromString(strings.TrimSpace(draft.Shares))
		if err != nil {
			errs = append(errs, fmt.Errorf("shares %q: %w", draft.Shares, err))
		}
		edit.Shares = Some(Q(shares))
		price, err := parseOptMoney(draft.Price, currency)
		if err == nil && !price.IsSet() {
			err = errors.New("missing price")
		}
		edit.Price, errs = price, append(errs, err)
		t, err := parseTime(draft.Time)
		edit.Time, errs = Some(t), append(errs, err)
	default:
		errs = append(errs, fmt.Errorf("unknown edit kind %q", draft.Kind))
	}
	if err := errors.Join(errs...); err != nil {
		return Edit{}, d, fmt.Errorf("draft %q: %w", id, err)
	}
	return edit, d.Discard(id), nil
}

// parseOptMoney parses an amount; blank text is an unset amount.
func parseOptMoney(s, currency string) (Opt[Money], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[Money](), nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return None[Money](), fmt.Errorf("amount %q: %w", s, err)
	}
	return Some(M(v, currency)), nil
}

// parseTime accepts an RFC 3339 instant or a plain date (midnight UTC).
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: expected RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
