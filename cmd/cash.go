package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

// cashCmd records a deposit or a withdrawal.
type cashCmd struct {
	kind string

	amount string
	note   string
	at     string
}

func (c *cashCmd) Name() string { return c.kind }
func (c *cashCmd) Synopsis() string {
	return fmt.Sprintf("record a cash %s in the journal", c.kind)
}
func (c *cashCmd) Usage() string {
	return fmt.Sprintf(`tbk %s -a <amount> [-note <text>] [-d <time>]

  Appends a cash flow to the journal, in the account currency.
`, c.kind)
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount, positive")
	f.StringVar(&c.note, "note", "", "Free text note")
	f.StringVar(&c.at, "d", "", "Time of the cash flow (RFC 3339 or YYYY-MM-DD), defaults to now")
}

func (c *cashCmd) flow(currency string, now time.Time) (tradebook.CashFlow, error) {
	flow := tradebook.CashFlow{Time: now, Kind: tradebook.Deposit, Note: strings.TrimSpace(c.note)}
	if c.kind == "withdraw" {
		flow.Kind = tradebook.Withdrawal
	}
	if c.at != "" {
		t, err := parseTime(c.at)
		if err != nil {
			return flow, err
		}
		flow.Time = t
	}
	amount, err := parseMoney(c.amount, currency)
	if err != nil {
		return flow, err
	}
	flow.Amount = amount
	return flow, flow.Validate()
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	flow, err := c.flow(cfg.Account.Currency, time.Now())
	if err != nil {
		return fail(err)
	}
	if err := tradebook.AppendCashFlow(cfg.Journal.File, flow); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s of %s in %s\n", flow.Kind, flow.Amount, cfg.Journal.File)
	return subcommands.ExitSuccess
}
