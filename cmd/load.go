package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/config"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// priceSource tells where the current price of a ticker comes from: an
// explicit price, else a quote document, else nothing.
type priceSource struct {
	price     string // explicit price
	quoteFile string // overrides the configured quote file
}

// loadInputs reads the journal and the current price concurrently, and
// returns them once both are available. The price is expressed in the
// currency of the ticker's events.
func loadInputs(ctx context.Context, cfg *config.Config, ticker string, src priceSource) (*tradebook.Book, tradebook.Opt[tradebook.Money], error) {
	g, ctx := errgroup.WithContext(ctx)

	var book *tradebook.Book
	g.Go(func() error {
		b, err := tradebook.LoadBook(cfg.Journal.File)
		book = b
		return err
	})

	var price decimal.Decimal
	var found bool
	g.Go(func() error {
		v, ok, err := readPrice(ctx, cfg, ticker, src)
		price, found = v, ok
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, tradebook.None[tradebook.Money](), err
	}
	if !found {
		return book, tradebook.None[tradebook.Money](), nil
	}
	return book, tradebook.Some(tradebook.M(price, tickerCurrency(book, ticker, cfg.Account.Currency))), nil
}

func readPrice(ctx context.Context, cfg *config.Config, ticker string, src priceSource) (decimal.Decimal, bool, error) {
	if src.price != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(src.price))
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("invalid price %q: %w", src.price, err)
		}
		return v, true, nil
	}
	file := src.quoteFile
	if file == "" {
		file = cfg.Quote.File
	}
	if file == "" || ticker == "" {
		return decimal.Decimal{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, false, err
	}
	f, err := os.Open(file)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("cannot open quotes: %w", err)
	}
	defer f.Close()
	m, err := tradebook.QuoteFromJSON(f, cfg.QuotePath(ticker), "")
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("reading %s quote from %q: %w", ticker, file, err)
	}
	log.Printf("quote %s = %s from %q", ticker, m.Decimal(), file)
	return m.Decimal(), true, nil
}

// tickerCurrency is the currency of the ticker's events, or def.
func tickerCurrency(book *tradebook.Book, ticker, def string) string {
	for _, e := range book.EventsOf(ticker) {
		if c := e.Price.Currency(); c != "" {
			return c
		}
	}
	return def
}

// analyze loads the inputs of a ticker and analyzes them.
func analyze(ctx context.Context, ticker string, src priceSource) (*tradebook.Analysis, error) {
	if ticker == "" {
		return nil, fmt.Errorf("missing ticker, use -t")
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	book, price, err := loadInputs(ctx, cfg, ticker, src)
	if err != nil {
		return nil, err
	}
	return tradebook.Analyze(book.Snapshot(ticker, price))
}
