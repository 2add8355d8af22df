package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// document is the structure of a rendered markdown: its headings and tables.
type document struct {
	headings []string
	tables   [][][]string // rows of cells, header row first
}

func parse(t *testing.T, source string) document {
	t.Helper()
	src := []byte(source)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, nodeText(n, src))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			doc.tables = append(doc.tables, nil)
		case *east.TableHeader, *east.TableRow:
			var row []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				row = append(row, nodeText(c, src))
			}
			last := len(doc.tables) - 1
			doc.tables[last] = append(doc.tables[last], row)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return doc
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func at(day, hour int) time.Time { return time.Date(2025, time.January, day, hour, 0, 0, 0, time.UTC) }

func USD(v float64) tradebook.Money { return tradebook.M(v, "USD") }

func TestEquityMarkdown(t *testing.T) {
	curve, err := tradebook.BuildCurve(tradebook.CurveInput{
		Start:     USD(0),
		CashFlows: []tradebook.CashFlow{{Time: at(2, 9), Amount: USD(1000), Kind: tradebook.Deposit}},
		Trades:    []tradebook.ClosedTrade{{Ticker: "ACME", Time: at(5, 16), PnL: USD(250)}},
	})
	if err != nil {
		t.Fatalf("BuildCurve() error = %v", err)
	}
	on := date.New(2025, time.January, 10)
	doc := parse(t, EquityMarkdown(curve.Points(), date.WindowSpan(date.AllTime), on))

	wantHeadings := []string{"Equity (ALL as of 2025-01-10)", "Points"}
	if strings.Join(doc.headings, "|") != strings.Join(wantHeadings, "|") {
		t.Errorf("headings = %q, want %q", doc.headings, wantHeadings)
	}
	if len(doc.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(doc.tables))
	}

	summary := make(map[string]string)
	for _, row := range doc.tables[0][1:] {
		summary[row[0]] = row[1]
	}
	if got := summary["Change %"]; got != "N/A" {
		t.Errorf("Change %% = %q, want N/A from a zero first value", got)
	}
	if got := summary["Peak"]; got != USD(1250).String() {
		t.Errorf("Peak = %q, want %q", got, USD(1250).String())
	}

	points := doc.tables[1]
	if len(points) != 4 {
		t.Fatalf("got %d rows in points, want header and 3 points", len(points))
	}
	wantKinds := []string{"start", "deposit", "position-close"}
	for i, row := range points[1:] {
		if row[1] != wantKinds[i] {
			t.Errorf("point %d kind = %q, want %q", i, row[1], wantKinds[i])
		}
	}
}

func TestEquityMarkdownEmpty(t *testing.T) {
	got := EquityMarkdown(nil, date.WindowSpan(date.OneMonth), date.New(2025, time.March, 1))
	if !strings.Contains(got, "No equity point") {
		t.Errorf("EquityMarkdown(nil) = %q, want a no point message", got)
	}
}

func analyze(t *testing.T, s tradebook.Snapshot) *tradebook.Analysis {
	t.Helper()
	a, err := tradebook.Analyze(s)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return a
}

func TestPositionMarkdown(t *testing.T) {
	a := analyze(t, tradebook.Snapshot{
		Ticker: "ACME",
		Events: []tradebook.TradeEvent{
			{ID: "b1", Side: tradebook.Buy, Time: at(2, 10), Shares: tradebook.Q(100), Price: USD(50), StopLoss: tradebook.Some(USD(45)), Provenance: tradebook.Manual},
			{ID: "s1", Side: tradebook.Sell, Time: at(3, 10), Shares: tradebook.Q(100), Price: USD(60), Provenance: tradebook.Manual},
			{ID: "b2", Side: tradebook.Buy, Time: at(6, 10), Shares: tradebook.Q(10), Price: USD(55), Provenance: tradebook.Manual},
		},
		Record:  &tradebook.PositionRecord{Ticker: "ACME", Shares: tradebook.Q(20)},
		Account: &tradebook.Account{Currency: "USD", Balance: tradebook.Some(USD(10000))},
		Price:   tradebook.Some(USD(58)),
	})
	doc := parse(t, PositionMarkdown(a))

	wantHeadings := []string{"Position ACME", "Previous Epochs", "Entries", "Warnings"}
	if strings.Join(doc.headings, "|") != strings.Join(wantHeadings, "|") {
		t.Errorf("headings = %q, want %q", doc.headings, wantHeadings)
	}
	if len(doc.tables) != 3 {
		t.Fatalf("got %d tables, want 3", len(doc.tables))
	}

	fields := make(map[string]string)
	for _, row := range doc.tables[0][1:] {
		fields[row[0]] = row[1]
	}
	if got := fields["Status"]; got != "open" {
		t.Errorf("Status = %q, want open", got)
	}
	if got := fields["Shares"]; got != "10" {
		t.Errorf("Shares = %q, want 10", got)
	}

	epochs := doc.tables[1]
	if len(epochs) != 2 {
		t.Fatalf("got %d rows in previous epochs, want header and 1 epoch", len(epochs))
	}
	if got, want := epochs[1][3], USD(1000).SignedString(); got != want {
		t.Errorf("epoch 1 realized P&L = %q, want %q", got, want)
	}

	entries := doc.tables[2]
	if len(entries) != 3 {
		t.Fatalf("got %d rows in entries, want header and 2 entries", len(entries))
	}
	// b1 belongs to the closed epoch: original risk only.
	if got, want := entries[1][2], USD(500).String(); got != want {
		t.Errorf("b1 original risk = %q, want %q", got, want)
	}
	if got := entries[1][4]; got != "N/A" {
		t.Errorf("b1 current risk = %q, want N/A", got)
	}
	// b2 has no stop.
	if got := entries[2][1]; got != "N/A" {
		t.Errorf("b2 stop = %q, want N/A", got)
	}
}

func TestPositionMarkdownNoEvent(t *testing.T) {
	a := analyze(t, tradebook.Snapshot{Ticker: "NONE"})
	got := PositionMarkdown(a)
	if !strings.Contains(got, "No event.") {
		t.Errorf("PositionMarkdown() = %q, want a no event message", got)
	}
}

func TestLotsMarkdown(t *testing.T) {
	a := analyze(t, tradebook.Snapshot{
		Ticker: "INTC",
		Events: []tradebook.TradeEvent{
			{ID: "f1", Side: tradebook.Buy, Time: at(3, 14), Shares: tradebook.Q(200), Price: USD(20), Provenance: tradebook.Imported},
			{ID: "f2", Side: tradebook.Buy, Time: at(4, 14), Shares: tradebook.Q(100), Price: USD(22), StopLoss: tradebook.Some(USD(21)), Provenance: tradebook.Manual},
			{ID: "f3", Side: tradebook.Sell, Time: at(5, 14), Shares: tradebook.Q(50), Price: USD(23), Provenance: tradebook.Manual},
		},
		Orders: []tradebook.BrokerOrder{
			{ID: "o1", Side: tradebook.Sell, Status: tradebook.Pending, Shares: tradebook.Q(200), StopLoss: tradebook.Some(USD(19)), Placed: at(3, 15)},
		},
		Price: tradebook.Some(USD(21.5)),
	})
	doc := parse(t, LotsMarkdown(a))

	wantHeadings := []string{"Lots of INTC", "Inferred Stop-Losses"}
	if strings.Join(doc.headings, "|") != strings.Join(wantHeadings, "|") {
		t.Errorf("headings = %q, want %q", doc.headings, wantHeadings)
	}
	if len(doc.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(doc.tables))
	}
	lots := doc.tables[0]
	if len(lots) != 3 {
		t.Fatalf("got %d rows in lots, want header and 2 lots", len(lots))
	}
	wantRemaining := []string{"150", "100"}
	for i, row := range lots[1:] {
		if row[4] != wantRemaining[i] {
			t.Errorf("lot %d remaining = %q, want %q", i, row[4], wantRemaining[i])
		}
	}
	if got, want := lots[1][5], USD(19).String(); got != want {
		t.Errorf("inferred stop of f1 = %q, want %q", got, want)
	}
	if got := doc.tables[1][1][1]; got != "o1" {
		t.Errorf("inferred from order %q, want o1", got)
	}
}

func TestLotsMarkdownNoLot(t *testing.T) {
	a := analyze(t, tradebook.Snapshot{Ticker: "NONE"})
	if got := LotsMarkdown(a); !strings.Contains(got, "No open lot.") {
		t.Errorf("LotsMarkdown() = %q, want a no lot message", got)
	}
}

func TestEquityMarkdownCalendarPeriod(t *testing.T) {
	got := EquityMarkdown(nil, date.PeriodSpan(date.Quarterly), date.New(2025, time.February, 10))
	doc := parse(t, got)
	if len(doc.headings) == 0 || doc.headings[0] != "Equity (quarterly 2025-Q1)" {
		t.Errorf("headings = %q, want the calendar quarter", doc.headings)
	}
}
