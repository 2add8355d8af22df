package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
)

// PositionMarkdown renders the position of an analysis: the current epoch,
// previous epochs, the risk of every entry and the integrity warnings.
func PositionMarkdown(a *tradebook.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Position %s\n\n", a.Ticker)

	current, ok := a.Current()
	if !ok {
		fmt.Fprintln(&b, "No event.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Field | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Status | %s |\n", current.Status)
	fmt.Fprintf(&b, "| Direction | %s |\n", current.Direction)
	fmt.Fprintf(&b, "| Shares | %s |\n", current.Shares)
	fmt.Fprintf(&b, "| Average Entry | %s |\n", current.AverageEntry)
	fmt.Fprintf(&b, "| Total Cost | %s |\n", current.TotalCost)
	fmt.Fprintf(&b, "| Realized P&L | %s |\n", current.RealizedPnL.SignedString())
	fmt.Fprintf(&b, "| Return | %s |\n", current.ReturnPercent.SignedString())
	fmt.Fprintf(&b, "| Opened | %s |\n", day(current.Opened))
	fmt.Fprintf(&b, "| Closed | %s |\n", closedAt(current.Closed))
	fmt.Fprintf(&b, "| Account Value at Entry | %s |\n", optMoney(current.AccountValue))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Previous Epochs\n\n")
		header(w, "Epoch", "Opened", "Closed", "Realized P&L", "Return")
		for _, p := range a.Positions[:len(a.Positions)-1] {
			fmt.Fprintf(w, "| %d | %s | %s | %s | %s |\n",
				p.Epoch, day(p.Opened), closedAt(p.Closed), p.RealizedPnL.SignedString(), p.ReturnPercent.SignedString())
		}
		return len(a.Positions) > 1
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Entries\n\n")
		header(w, "Event", "Stop", "Original Risk", "%", "Current Risk", "%", "Profit Potential", "R/R")
		for _, r := range a.EventRisks {
			stop := optMoney(r.StopLoss)
			if r.Inferred {
				stop += " (inferred)"
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				r.EventID,
				stop,
				optMoney(r.OriginalRisk),
				r.OriginalRiskPercent,
				optMoney(r.CurrentRisk),
				r.CurrentRiskPercent,
				r.ProfitPotential,
				r.RiskReward,
			)
		}
		return len(a.EventRisks) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Warnings\n\n")
		for _, warn := range a.Warnings {
			fmt.Fprintf(w, "- %s\n", warn)
		}
		return len(a.Warnings) > 0
	})
	return b.String()
}
