package tradebook

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// QuoteFromJSON extracts the current price of an instrument from an already
// fetched JSON document (a broker export, a saved API response) with a
// JSONPath expression like "$.quotes.AAPL.last".
//
// Numbers and numeric strings are accepted, decimal commas included.
func QuoteFromJSON(r io.Reader, path, currency string) (Money, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return Money{}, fmt.Errorf("invalid quote document: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return Money{}, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for wildcards and slices: keep the first one.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return Money{}, fmt.Errorf("no quote at %q", path)
		}
		jval = jlist[0]
	}

	var v decimal.Decimal
	switch x := jval.(type) {
	case float64:
		v = decimal.NewFromFloat(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Money{}, fmt.Errorf("quote at %q is an invalid number %q: %w", path, x, err)
		}
		v = decimal.NewFromFloat(f)
	default:
		return Money{}, fmt.Errorf("quote at %q is neither a number nor a string: %v", path, jval)
	}
	if !v.IsPositive() {
		return Money{}, fmt.Errorf("quote at %q must be positive, got %s", path, v)
	}
	return M(v, currency), nil
}
