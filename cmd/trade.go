package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeCmd records a manual buy or sell.
type tradeCmd struct {
	side string

	ticker     string
	shares     string
	price      string
	stop       string
	takeProfit string
	note       string
	at         string
}

func (c *tradeCmd) Name() string { return c.side }
func (c *tradeCmd) Synopsis() string {
	return fmt.Sprintf("record a manual %s in the journal", c.side)
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`tbk %s -t <ticker> -n <shares> -p <price> [-stop <price>] [-tp <price>] [-note <text>] [-d <time>]

  Appends a manual %s event to the journal. The event gets a new time-sortable
  id. A sell larger than the shares held is rejected.
`, c.side, c.side)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker of the instrument")
	f.StringVar(&c.shares, "n", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share")
	f.StringVar(&c.stop, "stop", "", "Stop-loss price")
	f.StringVar(&c.takeProfit, "tp", "", "Take-profit price")
	f.StringVar(&c.note, "note", "", "Free text note")
	f.StringVar(&c.at, "d", "", "Time of the trade (RFC 3339 or YYYY-MM-DD), defaults to now")
}

// event builds the trade event from the flags.
func (c *tradeCmd) event(currency string, now time.Time) (tradebook.TradeEvent, error) {
	e := tradebook.TradeEvent{
		Side:       tradebook.Side(c.side),
		Time:       now,
		Note:       strings.TrimSpace(c.note),
		Provenance: tradebook.Manual,
	}
	if c.at != "" {
		t, err := parseTime(c.at)
		if err != nil {
			return e, err
		}
		e.Time = t
	}
	e.ID = tradebook.NewEventID(e.Time)

	shares, err := decimal.NewFromString(c.shares)
	if err != nil {
		return e, fmt.Errorf("invalid shares %q: %w", c.shares, err)
	}
	e.Shares = tradebook.Q(shares)
	if e.Price, err = parseMoney(c.price, currency); err != nil {
		return e, err
	}
	if c.stop != "" {
		stop, err := parseMoney(c.stop, currency)
		if err != nil {
			return e, err
		}
		e.StopLoss = tradebook.Some(stop)
	}
	if c.takeProfit != "" {
		tp, err := parseMoney(c.takeProfit, currency)
		if err != nil {
			return e, err
		}
		e.TakeProfit = tradebook.Some(tp)
	}
	return e, e.Validate()
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		fmt.Fprintln(os.Stderr, "Error: missing ticker, use -t")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	book, err := tradebook.LoadBook(cfg.Journal.File)
	if err != nil {
		return fail(err)
	}
	e, err := c.event(tickerCurrency(book, c.ticker, cfg.Account.Currency), time.Now())
	if err != nil {
		return fail(err)
	}

	// the journal must stay consistent: no oversell.
	var dir tradebook.Direction
	if r := book.Record(c.ticker); r != nil {
		dir = r.Direction
	}
	if _, err := tradebook.Aggregate(c.ticker, append(book.EventsOf(c.ticker), e), dir, &book.Account); err != nil {
		return fail(err)
	}

	if err := tradebook.AppendEvent(cfg.Journal.File, c.ticker, e); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %s %s @ %s as %s in %s\n", e.Side, e.Shares, c.ticker, e.Price, e.ID, cfg.Journal.File)
	return subcommands.ExitSuccess
}

func parseMoney(s, currency string) (tradebook.Money, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return tradebook.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return tradebook.M(v, currency), nil
}

// parseTime accepts an RFC 3339 instant or a day (midnight UTC).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
