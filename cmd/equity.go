package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/config"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type equityCmd struct {
	window string
	on     string
	html   string
}

func (*equityCmd) Name() string     { return "equity" }
func (*equityCmd) Synopsis() string { return "display the account equity curve" }
func (*equityCmd) Usage() string {
	return `tbk equity [-w ALL|1M|3M|6M|YTD|1Y|day|week|month|quarter|year] [-d <date>] [-html <file>]

  Rebuilds the equity curve from the starting balance, the cash flows and the
  realized P&L of every closed position, and displays the points within the
  window ending on -d (today by default) with their summary. A calendar
  period selects the week, month, quarter or year containing -d instead.
`
}

func (c *equityCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "w", "", "Rolling window or calendar period, defaults to the configuration")
	f.StringVar(&c.on, "d", "", "Query date, defaults to today")
	f.StringVar(&c.html, "html", "", "Also write an HTML chart of the window to this file")
}

// curve loads the journal and builds the equity curve.
func curve() (*tradebook.Curve, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	book, err := tradebook.LoadBook(cfg.Journal.File)
	if err != nil {
		return nil, nil, err
	}
	start := tradebook.None[date.Date]()
	if on, ok := cfg.StartDate(); ok {
		start = tradebook.Some(on)
	}
	c, err := book.Curve(tradebook.M(cfg.Account.StartingBalance, cfg.Account.Currency), start)
	return c, cfg, err
}

func (c *equityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	equity, cfg, err := curve()
	if err != nil {
		return fail(err)
	}
	name := c.window
	if name == "" {
		name = cfg.Equity.Window
	}
	span, err := date.ParseSpan(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	on := date.Today()
	if c.on != "" {
		if on, err = date.Parse(c.on); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	points := equity.Span(span, on)
	printMarkdown(renderer.EquityMarkdown(points, span, on))

	if c.html == "" {
		return subcommands.ExitSuccess
	}
	out, err := os.Create(c.html)
	if err != nil {
		return fail(err)
	}
	defer out.Close()
	if err := renderer.EquityChart(out, "Equity "+span.Label(on), points); err != nil {
		return fail(err)
	}
	log.Printf("equity chart written to %q", c.html)
	return subcommands.ExitSuccess
}
