package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	md "github.com/nao1215/markdown"
)

// EquityMarkdown renders the points of an equity curve span and its summary.
func EquityMarkdown(points []tradebook.EquityPoint, span date.Span, on date.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Equity (%s)", span.Label(on)))

	s, ok := tradebook.Summarize(points)
	if !ok {
		doc.PlainText("No equity point in this window.")
		return doc.String()
	}
	doc.Table(md.TableSet{
		Header: []string{"Summary", "Value"},
		Rows: [][]string{
			{"First", s.First.String()},
			{"Last", md.Bold(s.Last.String())},
			{"Change", s.Change.SignedString()},
			{"Change %", s.ChangePercent.SignedString()},
			{"Peak", s.Peak.String()},
			{"Trough", s.Trough.String()},
		},
	})

	doc.H2("Points")
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{instant(p.Time), string(p.Kind), p.Delta.SignedString(), p.Value.String(), p.Description})
	}
	doc.Table(md.TableSet{
		Header: []string{"Time", "Kind", "Delta", "Value", "Description"},
		Rows:   rows,
	})
	return doc.String()
}
