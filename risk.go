package tradebook

// Risk holds the risk and reward figures of an opening event or of a lot.
// Amounts are unset when the stop-loss (or the price they need) is unknown,
// ratios are undefined rather than zero or infinite.
type Risk struct {
	OriginalRisk        Opt[Money] `json:"original_risk"`
	OriginalRiskPercent Percent    `json:"original_risk_percent"`
	CurrentRisk         Opt[Money] `json:"current_risk"`
	CurrentRiskPercent  Percent    `json:"current_risk_percent"`
	ProfitPotential     Money      `json:"profit_potential"`
	RiskReward          Ratio      `json:"risk_reward"`
}

// RiskInput gathers everything one risk computation needs.
type RiskInput struct {
	Direction  Direction
	Entry      Money
	Shares     Quantity   // shares at risk at entry
	Held       Quantity   // shares still at risk now
	StopLoss   Opt[Money] // the stop known for this very entry
	TakeProfit Opt[Money]
	Current    Opt[Money] // current price estimate
	AtEntry    Opt[Money] // account value on the entry date
	Now        Opt[Money] // current account value
}

// ComputeRisk returns the risk metrics of one entry.
//
//	original risk    = |entry - stop| x shares
//	current risk     = |current - stop| x held, 0 once the stop is on the favorable side of the price
//	profit potential = |take profit - entry| x shares
//	risk/reward      = profit potential / original risk
func ComputeRisk(in RiskInput) Risk {
	var r Risk
	if tp, ok := in.TakeProfit.Get(); ok {
		r.ProfitPotential = tp.Sub(in.Entry).Abs().Mul(in.Shares)
	} else {
		r.ProfitPotential = M(0, in.Entry.Currency())
	}

	stop, ok := in.StopLoss.Get()
	if !ok {
		return r
	}

	original := in.Entry.Sub(stop).Abs().Mul(in.Shares)
	r.OriginalRisk = Some(original)
	r.OriginalRiskPercent = percentOf(original, in.AtEntry)
	if original.IsPositive() {
		r.RiskReward = RatioOf(r.ProfitPotential, original)
	}

	if price, ok := in.Current.Get(); ok {
		current := currentRisk(in.Direction, price, stop, in.Held)
		r.CurrentRisk = Some(current)
		r.CurrentRiskPercent = percentOf(current, in.Now)
	}
	return r
}

// currentRisk is zero when the stop is at or beyond the current price on the
// profitable side: for a long position a stop at or above the price.
func currentRisk(dir Direction, price, stop Money, held Quantity) Money {
	favorable := stop.GreaterThanOrEqual(price)
	if dir.orDefault() == Short {
		favorable = stop.LessThanOrEqual(price)
	}
	if favorable {
		return M(0, price.Currency())
	}
	return price.Sub(stop).Abs().Mul(held)
}

func percentOf(amount Money, account Opt[Money]) Percent {
	v, ok := account.Get()
	if !ok || !v.IsPositive() {
		return Percent{}
	}
	return RatioOf(amount, v).Percent()
}

// EventRisk is the risk of one opening event, computed with its own stop.
type EventRisk struct {
	EventID  string     `json:"event_id"`
	StopLoss Opt[Money] `json:"stop_loss"`
	Inferred bool       `json:"inferred,omitempty"`
	Risk
}

// eventRisk computes the risk of an opening event against its own stop-loss.
func eventRisk(e TradeEvent, dir Direction, current Opt[Money], account *Account) Risk {
	return ComputeRisk(RiskInput{
		Direction:  dir,
		Entry:      e.Price,
		Shares:     e.Shares,
		Held:       e.Shares,
		StopLoss:   e.StopLoss,
		TakeProfit: e.TakeProfit,
		Current:    current,
		AtEntry:    optional(account.ValueOn(e.Time)),
		Now:        optional(account.Current()),
	})
}

// lotRisk computes the risk of a lot: original risk on the shares the lot
// was opened with, current risk on the shares it still holds.
func lotRisk(l Lot, dir Direction, current Opt[Money], account *Account) Risk {
	return ComputeRisk(RiskInput{
		Direction:  dir,
		Entry:      l.Price,
		Shares:     l.Original,
		Held:       l.Remaining,
		StopLoss:   l.StopLoss,
		TakeProfit: l.TakeProfit,
		Current:    current,
		AtEntry:    optional(account.ValueOn(l.Opened)),
		Now:        optional(account.Current()),
	})
}

func optional[T any](v T, ok bool) Opt[T] {
	if !ok {
		return None[T]()
	}
	return Some(v)
}
