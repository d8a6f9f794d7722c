package engine

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order. The dotted day-first form is what the
// province offices type; the rest are what browsers and scripts send.
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses s in any accepted layout. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use DD.MM.YYYY or YYYY-MM-DD)", s)
}

// dateValue converts a payload or stored value into a time.Time.
func dateValue(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("nil date")
		}
		return *d, nil
	case string:
		return ParseDate(d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}

// sameDay reports whether a and b fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
