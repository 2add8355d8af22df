package tradebook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The journal is a single JSONL file, one record per line, readable and
// git-friendly. Every line has a "kind":
//
//	{"kind":"event","ticker":"AAPL","id":"...","side":"buy","time":"...","shares":100,"price":{"amount":150,"currency":"USD"},...}
//	{"kind":"order","ticker":"AAPL","id":"...","side":"sell","status":"pending","shares":100,"stop_loss":{...},"placed":"..."}
//	{"kind":"cash","time":"...","amount":{...},"flow":"deposit"}
//	{"kind":"position","ticker":"AAPL","shares":100,"aggregated":true,...}
//	{"kind":"account","date":"2025-01-02","value":100000,"currency":"USD"}
//	{"kind":"account","value":120000,"currency":"USD"}   (current balance, no date)
//
// Encode writes the lines in a canonical order, so that decoding then
// encoding a journal is stable.

const (
	kindEvent    = "event"
	kindOrder    = "order"
	kindCash     = "cash"
	kindPosition = "position"
	kindAccount  = "account"
)

// TickerEvent is a trade event with the instrument it belongs to.
type TickerEvent struct {
	Ticker string `json:"ticker"`
	TradeEvent
}

// TickerOrder is a broker order with the instrument it belongs to.
type TickerOrder struct {
	Ticker string `json:"ticker"`
	BrokerOrder
}

// Book is the content of a journal file: the collaborator feeding snapshots
// to the engine.
type Book struct {
	Events  []TickerEvent
	Orders  []TickerOrder
	Cash    []CashFlow
	Records []PositionRecord
	Account Account
}

// jcash renames the cash flow kind, "kind" being the line discriminator.
type jcash struct {
	Time   time.Time    `json:"time"`
	Amount Money        `json:"amount"`
	Flow   CashFlowKind `json:"flow"`
	Note   string       `json:"note,omitempty"`
}

func (c jcash) CashFlow() CashFlow {
	return CashFlow{Time: c.Time, Amount: c.Amount, Kind: c.Flow, Note: c.Note}
}

func cashLine(c CashFlow) jcash {
	return jcash{Time: c.Time, Amount: c.Amount, Flow: c.Kind, Note: c.Note}
}

type jaccount struct {
	Date     *date.Date      `json:"date,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency,omitempty"`
}

// DecodeBook reads a journal. name is for error messages only.
func DecodeBook(name string, r io.Reader) (*Book, error) {
	b := new(Book)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		i++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := b.decodeLine(line); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return b, nil
}

func (b *Book) decodeLine(line []byte) error {
	var identifier struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(line, &identifier); err != nil {
		return fmt.Errorf("not a correct json: %w", err)
	}

	switch identifier.Kind {
	case kindEvent:
		var e TickerEvent
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		if e.Ticker == "" {
			return fmt.Errorf("event %q without ticker", e.ID)
		}
		if err := e.Validate(); err != nil {
			return err
		}
		b.Events = append(b.Events, e)
	case kindOrder:
		var o TickerOrder
		if err := json.Unmarshal(line, &o); err != nil {
			return err
		}
		if o.Ticker == "" {
			return fmt.Errorf("order %q without ticker", o.ID)
		}
		if err := o.Validate(); err != nil {
			return err
		}
		b.Orders = append(b.Orders, o)
	case kindCash:
		var c jcash
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		flow := c.CashFlow()
		if err := flow.Validate(); err != nil {
			return err
		}
		b.Cash = append(b.Cash, flow)
	case kindPosition:
		var p PositionRecord
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		if p.Ticker == "" {
			return errors.New("position without ticker")
		}
		if b.Record(p.Ticker) != nil {
			return fmt.Errorf("position %q is already defined", p.Ticker)
		}
		b.Records = append(b.Records, p)
	case kindAccount:
		var a jaccount
		if err := json.Unmarshal(line, &a); err != nil {
			return err
		}
		if b.Account.Currency != "" && a.Currency != "" && a.Currency != b.Account.Currency {
			return fmt.Errorf("account value in %s, the account is in %s", a.Currency, b.Account.Currency)
		}
		if a.Currency != "" {
			b.Account.Currency = a.Currency
		}
		if a.Date == nil {
			b.Account.Balance = Some(M(a.Value, a.Currency))
			break
		}
		b.Account.Values.Append(*a.Date, M(a.Value, a.Currency))
	default:
		return fmt.Errorf("unknown kind %q", identifier.Kind)
	}
	return nil
}

// encodeLine writes v as a single JSON line, prefixed with its kind.
func encodeLine(w io.Writer, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", kind, err)
	}
	// v always encodes as an object: splice the kind in front.
	if len(data) < 2 || data[0] != '{' {
		return fmt.Errorf("cannot encode %s: not an object", kind)
	}
	prefix := `{"kind":"` + kind + `"`
	if len(data) > 2 {
		prefix += ","
	}
	if _, err := io.WriteString(w, prefix); err != nil {
		return err
	}
	if _, err := w.Write(data[1:]); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Encode writes the book in canonical order: account, positions by ticker,
// cash flows, orders and events by time.
func (b *Book) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if v, ok := b.Account.Balance.Get(); ok {
		if err := encodeLine(bw, kindAccount, struct {
			Value    decimal.Decimal `json:"value"`
			Currency string          `json:"currency,omitempty"`
		}{v.Decimal(), v.Currency()}); err != nil {
			return err
		}
	}
	for on, v := range b.Account.Values.Values() {
		if err := encodeLine(bw, kindAccount, struct {
			Date     date.Date       `json:"date"`
			Value    decimal.Decimal `json:"value"`
			Currency string          `json:"currency,omitempty"`
		}{on, v.Decimal(), v.Currency()}); err != nil {
			return err
		}
	}

	records := slices.Clone(b.Records)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })
	for _, r := range records {
		if err := encodeLine(bw, kindPosition, r); err != nil {
			return err
		}
	}

	cash := slices.Clone(b.Cash)
	sort.SliceStable(cash, func(i, j int) bool { return cash[i].Time.Before(cash[j].Time) })
	for _, c := range cash {
		if err := encodeLine(bw, kindCash, cashLine(c)); err != nil {
			return err
		}
	}

	orders := slices.Clone(b.Orders)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Placed.Before(orders[j].Placed) })
	for _, o := range orders {
		if err := encodeLine(bw, kindOrder, o); err != nil {
			return err
		}
	}

	events := slices.Clone(b.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	for _, e := range events {
		if err := encodeLine(bw, kindEvent, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Validate checks the whole book: events (with ids unique across tickers and
// one currency per ticker), orders and cash flows.
func (b *Book) Validate() error {
	var errs []error
	owner := make(map[string]string, len(b.Events))
	for _, e := range b.Events {
		if t, dup := owner[e.ID]; dup && t != e.Ticker {
			errs = append(errs, fmt.Errorf("%w %q: duplicated id in %s and %s", ErrInvalidEvent, e.ID, t, e.Ticker))
			continue
		}
		owner[e.ID] = e.Ticker
	}
	for _, ticker := range b.Tickers() {
		errs = append(errs, ValidateEvents(b.EventsOf(ticker)))
	}
	for _, o := range b.Orders {
		errs = append(errs, o.Validate())
	}
	for _, c := range b.Cash {
		errs = append(errs, c.Validate())
	}
	return errors.Join(errs...)
}

// Tickers returns every ticker of the book, sorted.
func (b *Book) Tickers() []string {
	set := make(map[string]struct{})
	for _, e := range b.Events {
		set[e.Ticker] = struct{}{}
	}
	for _, r := range b.Records {
		set[r.Ticker] = struct{}{}
	}
	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Record returns the persisted position of a ticker, nil if none.
func (b *Book) Record(ticker string) *PositionRecord {
	for i := range b.Records {
		if b.Records[i].Ticker == ticker {
			return &b.Records[i]
		}
	}
	return nil
}

// EventsOf returns the events of a ticker, in journal order.
func (b *Book) EventsOf(ticker string) []TradeEvent {
	var out []TradeEvent
	for _, e := range b.Events {
		if e.Ticker == ticker {
			out = append(out, e.TradeEvent)
		}
	}
	return out
}

// OrdersOf returns the broker orders of a ticker, in journal order.
func (b *Book) OrdersOf(ticker string) []BrokerOrder {
	var out []BrokerOrder
	for _, o := range b.Orders {
		if o.Ticker == ticker {
			out = append(out, o.BrokerOrder)
		}
	}
	return out
}

// Snapshot returns the consistent engine input for a ticker.
func (b *Book) Snapshot(ticker string, price Opt[Money]) Snapshot {
	s := Snapshot{
		Ticker:  ticker,
		Events:  b.EventsOf(ticker),
		Orders:  b.OrdersOf(ticker),
		Record:  b.Record(ticker),
		Account: &b.Account,
		Price:   price,
	}
	if s.Record != nil {
		s.Direction = s.Record.Direction
	}
	return s
}

// TickerOf returns the ticker of an event id.
func (b *Book) TickerOf(id string) (string, bool) {
	for _, e := range b.Events {
		if e.ID == id {
			return e.Ticker, true
		}
	}
	return "", false
}

// Edit applies an edit to the event it targets.
func (b *Book) Edit(edit Edit) error {
	ticker, ok := b.TickerOf(edit.EventID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownEvent, edit.EventID)
	}
	events, err := ApplyEdit(b.EventsOf(ticker), edit)
	if err != nil {
		return err
	}
	// events keep the journal order of the ticker.
	j := 0
	for i := range b.Events {
		if b.Events[i].Ticker == ticker {
			b.Events[i].TradeEvent = events[j]
			j++
		}
	}
	return nil
}

// ClosedTrades returns the position-close events of every ticker.
func (b *Book) ClosedTrades() ([]ClosedTrade, error) {
	var trades []ClosedTrade
	for _, ticker := range b.Tickers() {
		var dir Direction
		if r := b.Record(ticker); r != nil {
			dir = r.Direction
		}
		positions, err := Aggregate(ticker, b.EventsOf(ticker), dir, &b.Account)
		if err != nil {
			return nil, err
		}
		for _, p := range positions {
			if t, ok := p.ClosedTrade(); ok {
				trades = append(trades, t)
			}
		}
	}
	return trades, nil
}

// Curve builds the equity curve of the book from the given starting balance.
func (b *Book) Curve(start Money, startTime Opt[date.Date]) (*Curve, error) {
	trades, err := b.ClosedTrades()
	if err != nil {
		return nil, err
	}
	in := CurveInput{Start: start, CashFlows: b.Cash, Trades: trades}
	if on, ok := startTime.Get(); ok {
		in.StartTime = Some(on.Midnight())
	}
	return BuildCurve(in)
}

// LoadBook reads a journal file. A missing file is an empty book.
func LoadBook(filename string) (*Book, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("journal %q does not exist yet, starting empty", filename)
		return new(Book), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open journal: %w", err)
	}
	defer f.Close()
	b, err := DecodeBook(filename, f)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded journal %q: %d events, %d orders, %d cash flows", filename, len(b.Events), len(b.Orders), len(b.Cash))
	return b, nil
}

// SaveBook writes the book canonically, replacing the file atomically.
func SaveBook(filename string, b *Book) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("cannot save journal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := b.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot encode journal %q: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot save journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("cannot save journal: %w", err)
	}
	log.Printf("saved journal %q", filename)
	return nil
}

// AppendEvent appends one event to a journal file without rewriting it.
func AppendEvent(filename, ticker string, e TradeEvent) error {
	if strings.TrimSpace(ticker) == "" {
		return errors.New("missing ticker")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	return appendLine(filename, kindEvent, TickerEvent{Ticker: ticker, TradeEvent: e})
}

// AppendCashFlow appends one cash flow to a journal file without rewriting it.
func AppendCashFlow(filename string, c CashFlow) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return appendLine(filename, kindCash, cashLine(c))
}

func appendLine(filename, kind string, v any) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open journal for append: %w", err)
	}
	defer f.Close()
	if err := encodeLine(f, kind, v); err != nil {
		return err
	}
	return f.Close()
}
