package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	ticker string
	src    priceSource
	json   bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open lots of a position with their risk" }
func (*lotsCmd) Usage() string {
	return `tbk lots -t <ticker> [-p <price> | -quote <file>] [-json]

  Lists the lots still open, oldest first, with their original and current
  risk. The current price is -p, else the quote read from the quote file,
  else the average entry price.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker of the position")
	setPriceFlags(f, &c.src)
	f.BoolVar(&c.json, "json", false, "Print the whole analysis as JSON")
}

func setPriceFlags(f *flag.FlagSet, src *priceSource) {
	f.StringVar(&src.price, "p", "", "Current price")
	f.StringVar(&src.quoteFile, "quote", "", "JSON document to read the current price from, overrides the configuration")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := analyze(ctx, c.ticker, c.src)
	if err != nil {
		return fail(err)
	}
	if c.json {
		return printJSON(a)
	}
	printMarkdown(renderer.LotsMarkdown(a))
	return subcommands.ExitSuccess
}

func printJSON(a *tradebook.Analysis) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
