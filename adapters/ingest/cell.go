package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"vizrec/domain/record"
)

// Strict decimal notation; rejects hex floats, Inf and NaN spellings.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ClassifyCell converts one delimited-text cell into a typed value.
// Empty cells are Null. Numbers are tried first, then booleans and dates;
// anything else stays text. The classification depends only on the cell.
func ClassifyCell(raw string) record.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Null()
	}

	if v, ok := parseNumber(s); ok {
		return v
	}

	switch strings.ToLower(s) {
	case "true":
		return record.Bool(true)
	case "false":
		return record.Bool(false)
	}

	if t, ok := record.ParseTimestamp(s); ok {
		return record.Time(t)
	}

	return record.Text(s)
}

func parseNumber(s string) (record.Value, bool) {
	if !numberPattern.MatchString(s) {
		return record.Value{}, false
	}

	// Zero-padded integers are codes (zip codes, account numbers), not
	// quantities.
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return record.Value{}, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return record.Value{}, false
	}
	v := record.Number(f)
	return v, !v.IsNull()
}

// classifyJSON converts a decoded JSON value. Numbers and booleans keep their
// JSON type; strings only get date detection.
func classifyJSON(x interface{}) record.Value {
	if s, ok := x.(string); ok {
		if t, ok := record.ParseTimestamp(s); ok {
			return record.Time(t)
		}
		return record.Text(s)
	}
	return record.FromInterface(x)
}
