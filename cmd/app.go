// Package cmd implements the tbk command line tool over a trading journal.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/config"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&tradeCmd{side: "buy"}, "journal")
	c.Register(&tradeCmd{side: "sell"}, "journal")
	c.Register(&cashCmd{kind: "deposit"}, "journal")
	c.Register(&cashCmd{kind: "withdraw"}, "journal")
	c.Register(&editCmd{}, "journal")
	c.Register(&fmtCmd{}, "journal")

	c.Register(&lotsCmd{}, "reports")
	c.Register(&positionCmd{}, "reports")
	c.Register(&equityCmd{}, "reports")
	c.Register(&watchCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// Names returns the name of every registered subcommand, for shell completion.
func Names() []string {
	return []string{"buy", "sell", "deposit", "withdraw", "edit", "fmt", "lots", "position", "equity", "watch", "topic"}
}

// Tickers returns the tickers of the journal, nil when it cannot be read.
func Tickers() []string {
	cfg, err := loadConfig()
	if err != nil {
		return nil
	}
	book, err := tradebook.LoadBook(cfg.Journal.File)
	if err != nil {
		return nil
	}
	return book.Tickers()
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile  = flag.String("config", envOr(EnvConfig, "tbk.yaml"), "Path to the configuration file (YAML or JSON)")
	journalFile = flag.String("journal", os.Getenv(EnvJournal), "Path to the JSONL journal, overrides the configuration")
	currency    = flag.String("currency", os.Getenv(EnvCurrency), "Account currency, overrides the configuration")
	Verbose     = flag.Bool("v", envBool(EnvVerbose), "Print the log on stderr")
)

// SetupLog silences the log unless -v was given.
func SetupLog() {
	log.SetFlags(0)
	log.SetPrefix("tbk: ")
	if !*Verbose {
		log.SetOutput(io.Discard)
	}
}

// loadConfig loads the configuration file, then applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		return nil, err
	}
	if *journalFile != "" {
		cfg.Journal.File = *journalFile
	}
	if *currency != "" {
		cfg.Account.Currency = *currency
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Printf("using journal %q in %s", cfg.Journal.File, cfg.Account.Currency)
	return cfg, nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envBool(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}

// fail prints an error and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
