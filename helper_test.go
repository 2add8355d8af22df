package tradebook

import (
	"time"

	"github.com/etnz/tradebook/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// at returns an instant in January 2025.
func at(day, hour int) time.Time { return time.Date(2025, time.January, day, hour, 0, 0, 0, time.UTC) }

// day returns a day of January 2025.
func day(d int) date.Date { return date.New(2025, time.January, d) }

func buy(id string, t time.Time, shares int, price float64) TradeEvent {
	return TradeEvent{ID: id, Side: Buy, Time: t, Shares: Q(shares), Price: USD(price), Provenance: Manual}
}

func sell(id string, t time.Time, shares int, price float64) TradeEvent {
	return TradeEvent{ID: id, Side: Sell, Time: t, Shares: Q(shares), Price: USD(price), Provenance: Manual}
}

func withStop(e TradeEvent, stop float64) TradeEvent {
	e.StopLoss = Some(USD(stop))
	return e
}

func withTarget(e TradeEvent, tp float64) TradeEvent {
	e.TakeProfit = Some(USD(tp))
	return e
}

func imported(e TradeEvent) TradeEvent {
	e.Provenance = Imported
	return e
}

func stopOrder(id string, side Side, placed time.Time, shares int, stop float64) BrokerOrder {
	return BrokerOrder{ID: id, Side: side, Status: Pending, Shares: Q(shares), StopLoss: Some(USD(stop)), Placed: placed}
}
