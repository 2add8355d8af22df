package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
)

// LotsMarkdown renders the surviving lots of an analysis with their risk.
func LotsMarkdown(a *tradebook.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lots of %s\n\n", a.Ticker)
	fmt.Fprintf(&b, "Direction: %s, strategy: %s", a.Direction, a.Strategy)
	if p, ok := a.Price.Get(); ok {
		fmt.Fprintf(&b, ", price: %s", p)
	}
	fmt.Fprint(&b, "\n\n")

	if len(a.Lots) == 0 {
		fmt.Fprintln(&b, "No open lot.")
		return b.String()
	}

	header(&b, "Opened", "Event", "Price", "Shares", "Remaining", "Stop", "Original Risk", "%", "Current Risk", "%")
	for _, l := range a.Lots {
		event := l.EventID
		if l.Synthetic {
			event = "*synthetic*"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			day(l.Opened),
			event,
			l.Price,
			l.Original,
			l.Remaining,
			optMoney(l.StopLoss),
			optMoney(l.Risk.OriginalRisk),
			l.Risk.OriginalRiskPercent,
			optMoney(l.Risk.CurrentRisk),
			l.Risk.CurrentRiskPercent,
		)
	}
	inferences(&b, a.Inferences)
	return b.String()
}

// inferences lists the stops recovered from broker orders, if any.
func inferences(w io.Writer, list []tradebook.Inference) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Inferred Stop-Losses\n\n")
		header(w, "Event", "Order", "Delta", "Stop")
		for _, inf := range list {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", inf.EventID, inf.OrderID, inf.Delta, inf.Stop)
		}
		return len(list) > 0
	})
}
