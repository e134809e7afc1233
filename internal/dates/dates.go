// Package dates holds the calendar-date handling shared by the merge,
// migration and rendering paths. Tasks carry dates with no time
// component; everything here works on midnight-UTC time.Time values.
package dates

import (
	"fmt"
	"time"
)

const (
	// ISOFormat is the form dates take in forms and session documents.
	ISOFormat = "2006-01-02"
	// VerboseFormat matches serialized timestamps like
	// "Mon, 02 Jun 2025 00:00:00 GMT".
	VerboseFormat = "Mon, 02 Jan 2006 15:04:05 MST"
)

// Max and Min are the substitution keys for missing due dates when
// sorting: Max pushes them last on ascending order, Min pushes them
// last on descending order.
var (
	Max = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	Min = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Today returns the current calendar date (process clock, UTC).
func Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate drops the time component of t, keeping the UTC date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize turns a date string in either accepted format into a
// calendar date. Empty or unparsable input falls back to today; it
// never fails.
func Normalize(value string) time.Time {
	if value == "" {
		return Today()
	}
	if t, err := time.Parse(ISOFormat, value); err == nil {
		return Truncate(t)
	}
	if t, err := time.Parse(VerboseFormat, value); err == nil {
		return Truncate(t)
	}
	return Today()
}

// NormalizeOptional is Normalize for fields where absence means "no
// date": empty input yields nil instead of today.
func NormalizeOptional(value string) *time.Time {
	if value == "" {
		return nil
	}
	t := Normalize(value)
	return &t
}

// Human renders a date-like value as e.g. "3rd Jun 2025". It accepts a
// time.Time, a *time.Time, or a string in either accepted format. Nil
// and empty values yield "No date"; unparsable strings are returned
// unchanged.
func Human(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "No date"
	case time.Time:
		if v.IsZero() {
			return "No date"
		}
		return humanize(v)
	case *time.Time:
		if v == nil || v.IsZero() {
			return "No date"
		}
		return humanize(*v)
	case string:
		if v == "" {
			return "No date"
		}
		if len(v) >= len(ISOFormat) {
			if t, err := time.Parse(ISOFormat, v[:len(ISOFormat)]); err == nil {
				return humanize(t)
			}
		}
		if t, err := time.Parse(VerboseFormat, v); err == nil {
			return humanize(t)
		}
		return v
	default:
		return "No date"
	}
}

func humanize(t time.Time) string {
	return fmt.Sprintf("%d%s %s", t.Day(), ordinalSuffix(t.Day()), t.Format("Jan 2006"))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
