package tradebook

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownEvent is returned when an edit targets an event that does not exist.
var ErrUnknownEvent = errors.New("unknown event")

// EditKind is one of the narrow paths through which an event may change.
type EditKind string

const (
	EditStopLoss   EditKind = "stop-loss"
	EditTakeProfit EditKind = "take-profit"
	EditNote       EditKind = "note"
	// EditEvent changes shares, price or time: everything derived from the
	// position is recomputed.
	EditEvent EditKind = "comprehensive"
)

func (k EditKind) Valid() bool {
	switch k {
	case EditStopLoss, EditTakeProfit, EditNote, EditEvent:
		return true
	}
	return false
}

// Edit is a change to one event. Only the fields of its kind are used. An
// unset StopLoss or TakeProfit removes it.
type Edit struct {
	EventID    string         `json:"event_id"`
	Kind       EditKind       `json:"kind"`
	StopLoss   Opt[Money]     `json:"stop_loss"`
	TakeProfit Opt[Money]     `json:"take_profit"`
	Note       string         `json:"note,omitempty"`
	Shares     Opt[Quantity]  `json:"shares"`
	Price      Opt[Money]     `json:"price"`
	Time       Opt[time.Time] `json:"time"`
}

// ApplyEdit returns a copy of events with the edit applied. The edited event
// is validated again; the input slice is never modified.
func ApplyEdit(events []TradeEvent, edit Edit) ([]TradeEvent, error) {
	if !edit.Kind.Valid() {
		return nil, fmt.Errorf("unknown edit kind %q", edit.Kind)
	}
	i := -1
	for j, e := range events {
		if e.ID == edit.EventID {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, edit.EventID)
	}

	out := make([]TradeEvent, len(events))
	copy(out, events)
	e := &out[i]
	switch edit.Kind {
	case EditStopLoss:
		e.StopLoss = edit.StopLoss
	case EditTakeProfit:
		e.TakeProfit = edit.TakeProfit
	case EditNote:
		e.Note = edit.Note
	case EditEvent:
		if v, ok := edit.Shares.Get(); ok {
			e.Shares = v
		}
		if v, ok := edit.Price.Get(); ok {
			e.Price = v
		}
		if v, ok := edit.Time.Get(); ok {
			e.Time = v
		}
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("editing %s: %w", edit.Kind, err)
	}
	return out, nil
}
