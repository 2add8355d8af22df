package tradebook

import "time"

// The inference window around an imported fill. Stops are usually placed
// right after the fill, sometimes the next day, and broker clocks drift a bit.
const (
	InferenceLookBack  = time.Hour
	InferenceLookAhead = 24 * time.Hour
)

// Inference records which broker order provided a missing stop-loss.
type Inference struct {
	EventID string        `json:"event_id"`
	OrderID string        `json:"order_id"`
	Delta   time.Duration `json:"delta"` // order placed time minus event time
	Stop    Money         `json:"stop"`
}

// InferStopLoss looks for the protective stop of an imported opening event
// among the broker orders.
//
// Candidates are closing-side orders placed within [-1h, +24h] of the event.
// The closest one in absolute time wins and ties go to the first listed
// order: this is a heuristic, the match is not guaranteed to be right.
// The candidate's stop is used, or its price when it has no stop. It returns
// false when nothing matches; the stop is then unknown.
func InferStopLoss(e TradeEvent, dir Direction, orders []BrokerOrder) (Inference, bool) {
	var best Inference
	found := false
	for _, o := range orders {
		if o.Side != dir.Closing() {
			continue
		}
		delta := o.Placed.Sub(e.Time)
		if delta < -InferenceLookBack || delta > InferenceLookAhead {
			continue
		}
		stop, ok := o.StopLoss.Get()
		if !ok {
			stop, ok = o.Price.Get()
		}
		if !ok || !stop.IsPositive() {
			continue
		}
		// strictly closer only, so the earliest listed candidate keeps ties.
		if found && absDuration(delta) >= absDuration(best.Delta) {
			continue
		}
		best = Inference{EventID: e.ID, OrderID: o.ID, Delta: delta, Stop: stop}
		found = true
	}
	return best, found
}

// ApplyInference returns a copy of events where imported opening events
// without a stop-loss receive the inferred one, and the list of inferences
// made. Manual events are never touched.
func ApplyInference(events []TradeEvent, dir Direction, orders []BrokerOrder) ([]TradeEvent, []Inference) {
	out := make([]TradeEvent, len(events))
	copy(out, events)
	var inferences []Inference
	for i, e := range out {
		if e.Provenance != Imported || e.Side != dir.Opening() || e.StopLoss.IsSet() {
			continue
		}
		inf, ok := InferStopLoss(e, dir, orders)
		if !ok {
			continue
		}
		out[i].StopLoss = Some(inf.Stop)
		inferences = append(inferences, inf)
	}
	return out, inferences
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
