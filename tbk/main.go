// Command tbk is a trading journal: it records trades and cash flows in a
// JSONL journal and reports lots, risk, positions and the equity curve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/tradebook/cmd"
	"github.com/etnz/tradebook/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion
// (install with COMP_INSTALL=1 tbk).
func completion() *complete.Command {
	tickers := complete.PredictFunc(func(prefix string) []string { return cmd.Tickers() })
	price := map[string]complete.Predictor{
		"t":     tickers,
		"p":     predict.Something,
		"quote": predict.Files("*.json"),
		"json":  predict.Nothing,
	}
	trade := map[string]complete.Predictor{
		"t": tickers, "n": predict.Something, "p": predict.Something,
		"stop": predict.Something, "tp": predict.Something, "note": predict.Something, "d": predict.Something,
	}
	cash := map[string]complete.Predictor{"a": predict.Something, "note": predict.Something, "d": predict.Something}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":   predict.Files("*.yaml"),
			"journal":  predict.Files("*.jsonl"),
			"currency": predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"},
			"v":        predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"buy":      {Flags: trade},
			"sell":     {Flags: trade},
			"deposit":  {Flags: cash},
			"withdraw": {Flags: cash},
			"edit": {Flags: map[string]complete.Predictor{
				"id": predict.Something,
				"k":  predict.Set{"stop-loss", "take-profit", "note", "comprehensive"},
				"stop": predict.Something, "tp": predict.Something, "note": predict.Something,
				"n": predict.Something, "p": predict.Something, "d": predict.Something,
			}},
			"fmt":      {Flags: map[string]complete.Predictor{"check": predict.Nothing}},
			"lots":     {Flags: price},
			"position": {Flags: price},
			"watch":    {Flags: price},
			"equity": {Flags: map[string]complete.Predictor{
				"w":    predict.Set{"ALL", "1M", "3M", "6M", "YTD", "1Y", "day", "week", "month", "quarter", "year"},
				"d":    predict.Something,
				"html": predict.Files("*.html"),
			}},
			"topic": {Args: topics()},
		},
	}
}

// topics predicts the help topic names.
func topics() complete.Predictor {
	all, err := docs.All()
	if err != nil {
		return predict.Nothing
	}
	return predict.Set(append(all, "*"))
}

func main() {
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	cmd.SetupLog()

	// unknown subcommands are looked up as tbk-<name> extensions.
	if args := flag.Args(); len(args) > 0 && !isBuiltin(args[0]) {
		if found, code := cmd.RunExtension(args[0], args[1:]); found {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "tbk: unknown command %q\n", args[0])
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func isBuiltin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, n := range cmd.Names() {
		if n == name {
			return true
		}
	}
	return false
}
