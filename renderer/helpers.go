package renderer

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/etnz/tradebook"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// optMoney renders an optional amount, "N/A" when unknown.
func optMoney(m tradebook.Opt[tradebook.Money]) string {
	if v, ok := m.Get(); ok {
		return v.String()
	}
	return "N/A"
}

func day(t time.Time) string { return t.UTC().Format("2006-01-02") }

func instant(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") }

func closedAt(t tradebook.Opt[time.Time]) string {
	if v, ok := t.Get(); ok {
		return day(v)
	}
	return "-"
}

func header(w io.Writer, columns ...string) {
	fmt.Fprint(w, "|")
	for _, c := range columns {
		fmt.Fprintf(w, " %s |", c)
	}
	fmt.Fprint(w, "\n|")
	for i := range columns {
		if i == 0 {
			fmt.Fprint(w, ":---|")
			continue
		}
		fmt.Fprint(w, "---:|")
	}
	fmt.Fprintln(w)
}
