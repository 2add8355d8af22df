package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

// editCmd edits one event of the journal through a draft: the flags are the
// raw text typed by the user, committed into an edit at the end.
type editCmd struct {
	id   string
	kind string

	stop       string
	takeProfit string
	note       string
	shares     string
	price      string
	at         string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit the stop-loss, take-profit, note or details of an event" }
func (*editCmd) Usage() string {
	return `tbk edit -id <event> -k stop-loss|take-profit|note|comprehensive [-stop <price>] [-tp <price>] [-note <text>] [-n <shares>] [-p <price>] [-d <time>]

  Edits an event and rewrites the journal. An empty -stop or -tp removes it.
  A comprehensive edit changes shares, price or time; every derived figure of
  the position is recomputed from scratch, and an edit that would oversell
  is rejected.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the event to edit")
	f.StringVar(&c.kind, "k", string(tradebook.EditStopLoss), "Kind of edit: stop-loss, take-profit, note or comprehensive")
	f.StringVar(&c.stop, "stop", "", "New stop-loss, empty to remove it")
	f.StringVar(&c.takeProfit, "tp", "", "New take-profit, empty to remove it")
	f.StringVar(&c.note, "note", "", "New note")
	f.StringVar(&c.shares, "n", "", "New number of shares")
	f.StringVar(&c.price, "p", "", "New price")
	f.StringVar(&c.at, "d", "", "New time (RFC 3339 or YYYY-MM-DD)")
}

// draft replays the flags that were actually given onto a draft of the event.
func (c *editCmd) draft(e tradebook.TradeEvent, given map[string]bool) tradebook.Drafts {
	d := tradebook.Drafts{}.Begin(e, tradebook.EditKind(c.kind))
	if given["stop"] {
		d = d.SetStopLoss(e.ID, c.stop)
	}
	if given["tp"] {
		d = d.SetTakeProfit(e.ID, c.takeProfit)
	}
	if given["note"] {
		d = d.SetNote(e.ID, c.note)
	}
	if given["n"] {
		d = d.SetShares(e.ID, c.shares)
	}
	if given["p"] {
		d = d.SetPrice(e.ID, c.price)
	}
	if given["d"] {
		d = d.SetTime(e.ID, c.at)
	}
	return d
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: missing event id, use -id")
		return subcommands.ExitUsageError
	}
	given := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { given[fl.Name] = true })

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	book, err := tradebook.LoadBook(cfg.Journal.File)
	if err != nil {
		return fail(err)
	}
	ticker, ok := book.TickerOf(c.id)
	if !ok {
		return fail(fmt.Errorf("%w %q", tradebook.ErrUnknownEvent, c.id))
	}
	var event tradebook.TradeEvent
	for _, e := range book.EventsOf(ticker) {
		if e.ID == c.id {
			event = e
		}
	}

	edit, _, err := c.draft(event, given).Commit(c.id, event.Price.Currency())
	if err != nil {
		return fail(err)
	}
	if err := book.Edit(edit); err != nil {
		return fail(err)
	}
	// recompute in full: the edit must leave a consistent position.
	if _, err := tradebook.Analyze(book.Snapshot(ticker, tradebook.None[tradebook.Money]())); err != nil {
		return fail(err)
	}
	if err := tradebook.SaveBook(cfg.Journal.File, book); err != nil {
		return fail(err)
	}
	fmt.Printf("Edited %s of %s (%s)\n", edit.Kind, c.id, ticker)
	return subcommands.ExitSuccess
}
