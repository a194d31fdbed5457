package record

import (
	"strings"
	"time"
)

var (
	dateFormats = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"1/2/2006",
		"02-Jan-2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2006-01",
	}

	dateTimeFormats = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05Z07:00",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// ParseTimestamp parses a string written in one of the supported date or
// datetime layouts. Bare numbers are never treated as dates.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 7 || !looksLikeDate(s) {
		return time.Time{}, false
	}

	for _, layout := range dateTimeFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}

	for _, layout := range dateFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}

	return time.Time{}, false
}

// looksLikeDate rejects strings without a date separator or month name
// before trying every layout.
func looksLikeDate(s string) bool {
	if strings.ContainsAny(s, "-/:") {
		return true
	}
	lower := strings.ToLower(s)
	for _, m := range []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"} {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
