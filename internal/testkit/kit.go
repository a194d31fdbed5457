// Package testkit generates deterministic tabular fixtures for tests:
// record sets with known statistical shape and their CSV/NDJSON encodings.
package testkit

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"vizrec/domain/record"
)

// Linear returns n rows of y = slope*x + intercept with gaussian noise
func Linear(n int, slope, intercept, noise float64, seed int64) record.RecordSet {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]record.Record, n)
	for i := range rows {
		x := float64(i)
		rows[i] = record.Record{
			"x": record.Number(x),
			"y": record.Number(slope*x + intercept + rng.NormFloat64()*noise),
		}
	}
	return record.NewRecordSet([]string{"x", "y"}, rows)
}

// Categorical returns n rows cycling through the categories with a value
// drawn around each category's index.
func Categorical(n int, categories []string, seed int64) record.RecordSet {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]record.Record, n)
	for i := range rows {
		c := i % len(categories)
		rows[i] = record.Record{
			"category": record.Text(categories[c]),
			"value":    record.Number(float64(10*(c+1)) + rng.Float64()),
		}
	}
	return record.NewRecordSet([]string{"category", "value"}, rows)
}

// Trend returns daily rows whose metric grows by growth per day from base
func Trend(days int, base, growth float64, seed int64) record.RecordSet {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]record.Record, days)
	for i := range rows {
		rows[i] = record.Record{
			"date":   record.Time(start.AddDate(0, 0, i)),
			"metric": record.Number(base*(1+growth*float64(i)) + rng.Float64()),
		}
	}
	return record.NewRecordSet([]string{"date", "metric"}, rows)
}

// WriteCSV encodes rs with a header row; nulls become empty cells
func WriteCSV(w io.Writer, rs record.RecordSet) error {
	fields := rs.FieldNames()
	if _, err := io.WriteString(w, strings.Join(fields, ",")+"\n"); err != nil {
		return err
	}
	cells := make([]string, len(fields))
	for _, row := range rs.Rows {
		for i, f := range fields {
			cells[i] = csvCell(row[f])
		}
		if _, err := io.WriteString(w, strings.Join(cells, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func csvCell(v record.Value) string {
	switch v.Kind() {
	case record.KindNull:
		return ""
	case record.KindNumber:
		f, _ := v.Float()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case record.KindTime:
		t, _ := v.Timestamp()
		return t.Format(time.RFC3339)
	}
	s := v.String()
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// WriteNDJSON encodes one JSON object per row
func WriteNDJSON(w io.Writer, rs record.RecordSet) error {
	enc := json.NewEncoder(w)
	for _, row := range rs.Rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// CSV renders rs as a CSV string
func CSV(rs record.RecordSet) string {
	var b strings.Builder
	_ = WriteCSV(&b, rs)
	return b.String()
}

// LargeCSV streams a CSV of n rows without materializing it. Row i holds
// id=i, a value cycling through 0..999 and a group label; the fingerprint of
// the stream depends only on n.
func LargeCSV(n int) io.Reader {
	return &largeCSV{n: n}
}

type largeCSV struct {
	n, next int
	header  bool
	buf     []byte
}

func (l *largeCSV) Read(p []byte) (int, error) {
	for len(l.buf) < len(p) && (!l.header || l.next < l.n) {
		if !l.header {
			l.buf = append(l.buf, "id,value,group\n"...)
			l.header = true
			continue
		}
		l.buf = fmt.Appendf(l.buf, "%d,%d,g%d\n", l.next, l.next%1000, l.next%7)
		l.next++
	}
	if len(l.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, l.buf)
	l.buf = l.buf[n:]
	return n, nil
}

// Round rounds to the given number of decimals, handy for stable assertions
func Round(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(f*p) / p
}
