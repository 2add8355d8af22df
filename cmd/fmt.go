package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the journal into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `tbk fmt [-check]

  Validates the journal: every event, order and cash flow, unique ids, and no
  oversell on any ticker. Then rewrites it in canonical order (account,
  positions, cash flows, orders, events by time).

Usage Examples:
# Only report problems, do not rewrite.
$ tbk fmt -check

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.check, "check", false, "Validate only, do not rewrite the journal")
}

// validate checks the book and analyzes every ticker.
func validate(book *tradebook.Book) error {
	errs := []error{book.Validate()}
	for _, ticker := range book.Tickers() {
		if _, err := tradebook.Analyze(book.Snapshot(ticker, tradebook.None[tradebook.Money]())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	book, err := tradebook.LoadBook(cfg.Journal.File)
	if err != nil {
		return fail(err)
	}
	if err := validate(book); err != nil {
		return fail(err)
	}
	if p.check {
		fmt.Fprintf(os.Stderr, "Journal %q is valid.\n", cfg.Journal.File)
		return subcommands.ExitSuccess
	}
	if err := tradebook.SaveBook(cfg.Journal.File, book); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stderr, "Formatted journal %q.\n", cfg.Journal.File)
	return subcommands.ExitSuccess
}
