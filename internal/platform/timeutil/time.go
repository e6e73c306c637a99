package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision, used for log timestamps.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// DateLayout is the calendar-date form ("YYYY-MM-DD") used for timeline keys.
const DateLayout = time.DateOnly

// ErrEmpty is returned by Parse for an empty timestamp.
var ErrEmpty = errors.New("missing required timestamp")

// Parse reads an RFC 3339 timestamp with or without fractional seconds.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

// ParseOptional is Parse for timestamps GitHub may omit or send as null: an empty
// string yields the zero time. Malformed non-empty input is still an error.
func ParseOptional(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return Parse(s)
}

// Format renders t in UTC the way GitHub writes timestamps ("2011-01-26T19:01:12Z").
// The zero time renders as nil so absent timestamps serialize as null.
func Format(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// Date formats t as its UTC calendar date.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DatePrefix returns the calendar-date portion of an ISO 8601 timestamp string
// without parsing it: everything before the first "T".
func DatePrefix(s string) string {
	date, _, _ := strings.Cut(s, "T")
	return date
}
