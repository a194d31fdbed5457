package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := map[string]struct {
		raw  string
		ok   bool
		want time.Time
	}{
		"iso date":     {"2014-02-01", true, time.Date(2014, time.February, 1, 0, 0, 0, 0, time.UTC)},
		"us date":      {"02/01/2014", true, time.Date(2014, time.February, 1, 0, 0, 0, 0, time.UTC)},
		"datetime":     {"2014-02-01 10:00:00", true, time.Date(2014, time.February, 1, 10, 0, 0, 0, time.UTC)},
		"rfc3339":      {"2014-02-01T10:00:00Z", true, time.Date(2014, time.February, 1, 10, 0, 0, 0, time.UTC)},
		"month name":   {"Feb 1, 2014", true, time.Date(2014, time.February, 1, 0, 0, 0, 0, time.UTC)},
		"year month":   {"2014-02", true, time.Date(2014, time.February, 1, 0, 0, 0, 0, time.UTC)},
		"bare number":  {"20140201", false, time.Time{}},
		"word":         {"marketing", false, time.Time{}},
		"invalid date": {"2014-13-45", false, time.Time{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %v", got)
			}
		})
	}
}
