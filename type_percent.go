package tradebook

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ratio is the quotient of two values. It is undefined (N/A) when the
// denominator is zero or unknown, and never holds NaN or Inf.
type Ratio struct {
	value   decimal.Decimal
	defined bool
}

// Undefined is the N/A ratio.
var Undefined = Ratio{}

// NewRatio returns num/den, undefined when den is zero.
func NewRatio(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return Undefined
	}
	return Ratio{value: num.Div(den), defined: true}
}

// RatioOf returns a/b for two monetary values.
func RatioOf(a, b Money) Ratio { return NewRatio(a.value, b.value) }

func (r Ratio) Defined() bool { return r.defined }

// Value returns the ratio and whether it is defined.
func (r Ratio) Value() (decimal.Decimal, bool) { return r.value, r.defined }

// Float returns the ratio as a float64 and whether it is defined.
func (r Ratio) Float() (float64, bool) { return r.value.InexactFloat64(), r.defined }

// Percent returns the ratio expressed in percent.
func (r Ratio) Percent() Percent {
	if !r.defined {
		return Percent{}
	}
	return Percent{value: r.value.Mul(hundred), defined: true}
}

func (r Ratio) Equal(q Ratio) bool {
	return r.defined == q.defined && r.value.Equal(q.value)
}

func (r Ratio) String() string {
	if !r.defined {
		return "N/A"
	}
	return r.value.StringFixed(2)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// Percent is a ratio multiplied by 100, possibly undefined.
type Percent struct {
	value   decimal.Decimal
	defined bool
}

// P returns a defined percent, handy in tests.
func P(v float64) Percent { return Percent{value: decimal.NewFromFloat(v), defined: true} }

func (p Percent) Defined() bool                  { return p.defined }
func (p Percent) Value() (decimal.Decimal, bool) { return p.value, p.defined }
func (p Percent) Float() (float64, bool)         { return p.value.InexactFloat64(), p.defined }

// Equal compares with some precision, both undefined values are equal.
func (p Percent) Equal(q Percent) bool {
	if p.defined != q.defined {
		return false
	}
	const precision = 0.0001
	diff := p.value.Sub(q.value).Abs()
	return diff.LessThan(decimal.NewFromFloat(precision))
}

func (p Percent) String() string {
	if !p.defined {
		return "N/A"
	}
	return p.value.StringFixed(2) + "%"
}

func (p Percent) SignedString() string {
	if !p.defined {
		return "N/A"
	}
	res := p.value.StringFixed(2)
	switch {
	case res == "0.00" || res == "-0.00":
		return "-"
	case p.value.IsPositive():
		return "+" + res + "%"
	default:
		return res + "%"
	}
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.defined {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}
