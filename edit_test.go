package tradebook

import (
	"errors"
	"testing"
)

func editEvents() []TradeEvent {
	return []TradeEvent{
		withStop(buy("b1", at(2, 10), 100, 50), 45),
		sell("s1", at(3, 10), 40, 55),
	}
}

func TestApplyEdit(t *testing.T) {
	testCases := []struct {
		name  string
		edit  Edit
		check func(t *testing.T, e TradeEvent)
	}{
		{"stop-loss", Edit{EventID: "b1", Kind: EditStopLoss, StopLoss: Some(USD(48))}, func(t *testing.T, e TradeEvent) {
			if stop, _ := e.StopLoss.Get(); !stop.Equal(USD(48)) {
				t.Errorf("stop = %v, want %v", e.StopLoss, USD(48))
			}
		}},
		{"remove stop-loss", Edit{EventID: "b1", Kind: EditStopLoss}, func(t *testing.T, e TradeEvent) {
			if e.StopLoss.IsSet() {
				t.Errorf("stop = %v, want none", e.StopLoss)
			}
		}},
		{"take-profit", Edit{EventID: "b1", Kind: EditTakeProfit, TakeProfit: Some(USD(70))}, func(t *testing.T, e TradeEvent) {
			if tp, _ := e.TakeProfit.Get(); !tp.Equal(USD(70)) {
				t.Errorf("take-profit = %v, want %v", e.TakeProfit, USD(70))
			}
			if stop, _ := e.StopLoss.Get(); !stop.Equal(USD(45)) {
				t.Errorf("stop = %v, want it untouched", e.StopLoss)
			}
		}},
		{"note", Edit{EventID: "b1", Kind: EditNote, Note: "breakout", Shares: Some(Q(1))}, func(t *testing.T, e TradeEvent) {
			if e.Note != "breakout" || !e.Shares.Equal(Q(100)) {
				t.Errorf("event = %+v, want only the note changed", e)
			}
		}},
		{"comprehensive", Edit{EventID: "b1", Kind: EditEvent, Shares: Some(Q(120)), Price: Some(USD(49))}, func(t *testing.T, e TradeEvent) {
			if !e.Shares.Equal(Q(120)) || !e.Price.Equal(USD(49)) || !e.Time.Equal(at(2, 10)) {
				t.Errorf("event = %+v, want 120 @ 49 at the same time", e)
			}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			events := editEvents()
			got, err := ApplyEdit(events, tc.edit)
			if err != nil {
				t.Fatalf("ApplyEdit() error = %v", err)
			}
			tc.check(t, got[0])
			if stop, _ := events[0].StopLoss.Get(); !stop.Equal(USD(45)) || events[0].Note != "" {
				t.Error("ApplyEdit() modified its input")
			}
		})
	}
}

func TestApplyEditErrors(t *testing.T) {
	testCases := []struct {
		name string
		edit Edit
		want error
	}{
		{"unknown event", Edit{EventID: "nope", Kind: EditNote}, ErrUnknownEvent},
		{"zero shares", Edit{EventID: "b1", Kind: EditEvent, Shares: Some(Q(0))}, ErrInvalidEvent},
		{"negative stop", Edit{EventID: "b1", Kind: EditStopLoss, StopLoss: Some(USD(-1))}, ErrInvalidEvent},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ApplyEdit(editEvents(), tc.edit); !errors.Is(err, tc.want) {
				t.Errorf("ApplyEdit() error = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := ApplyEdit(editEvents(), Edit{EventID: "b1", Kind: "rename"}); err == nil {
		t.Error("ApplyEdit() with an unknown kind should fail")
	}
}

func TestEditRecomputesEverything(t *testing.T) {
	events, err := ApplyEdit(editEvents(), Edit{EventID: "b1", Kind: EditEvent, Shares: Some(Q(60))})
	if err != nil {
		t.Fatalf("ApplyEdit() error = %v", err)
	}
	a, err := Analyze(Snapshot{Ticker: "ACME", Events: events})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	current, _ := a.Current()
	if !current.Shares.Equal(Q(20)) || len(a.Lots) != 1 || !a.Lots[0].Remaining.Equal(Q(20)) {
		t.Errorf("after edit: %s shares, lots %+v, want 20 shares in one lot", current.Shares, a.Lots)
	}

	// shrinking the buy below what was sold is caught by the analysis.
	events, err = ApplyEdit(editEvents(), Edit{EventID: "b1", Kind: EditEvent, Shares: Some(Q(30))})
	if err != nil {
		t.Fatalf("ApplyEdit() error = %v", err)
	}
	if _, err := Analyze(Snapshot{Ticker: "ACME", Events: events}); !errors.Is(err, ErrOversell) {
		t.Errorf("Analyze() error = %v, want an oversell", err)
	}
}
