package date

import (
	"fmt"
	"strings"
)

// Window is a rolling time window evaluated relative to a query date.
type Window int

const (
	AllTime Window = iota
	OneMonth
	ThreeMonths
	SixMonths
	YearToDate
	OneYear
)

func (w Window) String() string {
	switch w {
	case AllTime:
		return "ALL"
	case OneMonth:
		return "1M"
	case ThreeMonths:
		return "3M"
	case SixMonths:
		return "6M"
	case YearToDate:
		return "YTD"
	case OneYear:
		return "1Y"
	default:
		panic(fmt.Sprintf("unknown window %d", w))
	}
}

// ParseWindow parses the short window names ("1M", "ytd", "all", ...).
func ParseWindow(s string) (Window, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL", "MAX":
		return AllTime, nil
	case "1M":
		return OneMonth, nil
	case "3M":
		return ThreeMonths, nil
	case "6M":
		return SixMonths, nil
	case "YTD":
		return YearToDate, nil
	case "1Y", "12M":
		return OneYear, nil
	default:
		return AllTime, fmt.Errorf("unknown window %q", s)
	}
}

// Range returns the dates covered by the window when queried on 'on'.
// Bounded is false for AllTime, in which case the range is meaningless.
func (w Window) Range(on Date) (r Range, bounded bool) {
	switch w {
	case OneMonth:
		return Range{From: on.AddMonth(-1), To: on}, true
	case ThreeMonths:
		return Range{From: on.AddMonth(-3), To: on}, true
	case SixMonths:
		return Range{From: on.AddMonth(-6), To: on}, true
	case YearToDate:
		return Range{From: on.StartOf(Yearly), To: on}, true
	case OneYear:
		return Range{From: on.AddMonth(-12), To: on}, true
	default:
		return Range{}, false
	}
}

// Contains reports whether d falls in the window queried on 'on'.
func (w Window) Contains(on, d Date) bool {
	r, bounded := w.Range(on)
	if !bounded {
		return true
	}
	return r.Contains(d)
}

// Span is what a report covers: a rolling Window, or the calendar period
// containing the query date.
type Span struct {
	window   Window
	period   Period
	calendar bool
}

// WindowSpan returns the span of a rolling window.
func WindowSpan(w Window) Span { return Span{window: w} }

// PeriodSpan returns the span of the calendar period containing the query date.
func PeriodSpan(p Period) Span { return Span{period: p, calendar: true} }

// ParseSpan parses a window name ("1M", "YTD", ...) or a calendar period
// name ("month", "quarterly", ...).
func ParseSpan(s string) (Span, error) {
	if w, err := ParseWindow(s); err == nil {
		return WindowSpan(w), nil
	}
	p, err := ParsePeriod(s)
	if err != nil {
		return Span{}, fmt.Errorf("unknown window or period %q", s)
	}
	return PeriodSpan(p), nil
}

// Range returns the dates covered when queried on 'on'. Bounded is false for
// AllTime.
func (s Span) Range(on Date) (r Range, bounded bool) {
	if s.calendar {
		return NewRange(on, s.period), true
	}
	return s.window.Range(on)
}

// Label names the span queried on 'on': "1M as of 2025-03-01" or
// "quarterly 2025-Q1".
func (s Span) Label(on Date) string {
	if s.calendar {
		return NewRange(on, s.period).String()
	}
	return fmt.Sprintf("%s as of %s", s.window, on)
}
