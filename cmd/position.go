package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type positionCmd struct {
	ticker string
	src    priceSource
	json   bool
}

func (*positionCmd) Name() string { return "position" }
func (*positionCmd) Synopsis() string {
	return "display a position: aggregates, epochs, risk of each entry and warnings"
}
func (*positionCmd) Usage() string {
	return `tbk position -t <ticker> [-p <price> | -quote <file>] [-json]

  Displays the current position of a ticker (average entry, realized P&L and
  return on the shares actually closed), its previous lifecycle epochs, the
  risk of every entry, and any mismatch with the persisted position record.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker of the position")
	setPriceFlags(f, &c.src)
	f.BoolVar(&c.json, "json", false, "Print the whole analysis as JSON")
}

func (c *positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := analyze(ctx, c.ticker, c.src)
	if err != nil {
		return fail(err)
	}
	if c.json {
		return printJSON(a)
	}
	printMarkdown(renderer.PositionMarkdown(a))
	return subcommands.ExitSuccess
}
