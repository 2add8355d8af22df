package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
)

type watchCmd struct {
	ticker string
	src    priceSource
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "display a position again each time the journal changes" }
func (*watchCmd) Usage() string {
	return `tbk watch -t <ticker> [-p <price> | -quote <file>]

  Displays the position of a ticker, then watches the journal and displays it
  again whenever its content changes, until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker of the position")
	setPriceFlags(f, &c.src)
}

// refresher analyzes a ticker through the cache and tells whether the result
// changed since last time.
type refresher struct {
	cache *tradebook.Cache
	last  *tradebook.Analysis
}

func (r *refresher) refresh(ctx context.Context, ticker string, src priceSource) (*tradebook.Analysis, bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, false, err
	}
	book, price, err := loadInputs(ctx, cfg, ticker, src)
	if err != nil {
		return nil, false, err
	}
	a, err := r.cache.Analyze(book.Snapshot(ticker, price))
	if err != nil {
		return nil, false, err
	}
	changed := a != r.last
	r.last = a
	return a, changed, nil
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		fmt.Fprintln(os.Stderr, "Error: missing ticker, use -t")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	journal, err := filepath.Abs(cfg.Journal.File)
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r := &refresher{cache: tradebook.NewCache()}
	show := func() {
		a, changed, err := r.refresh(ctx, c.ticker, c.src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if changed {
			printMarkdown(renderer.PositionMarkdown(a))
		}
	}
	show()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fail(err)
	}
	defer watcher.Close()
	// editors replace files: watch the directory.
	if err := watcher.Add(filepath.Dir(journal)); err != nil {
		return fail(err)
	}
	log.Printf("watching %q", journal)

	for {
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case ev, ok := <-watcher.Events:
			if !ok {
				return subcommands.ExitSuccess
			}
			if filepath.Clean(ev.Name) != journal || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Printf("journal changed: %s", ev.Op)
			show()
		case err, ok := <-watcher.Errors:
			if !ok {
				return subcommands.ExitSuccess
			}
			log.Printf("watch error: %v", err)
		}
	}
}
