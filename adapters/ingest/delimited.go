package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"vizrec/domain/record"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM discards a leading UTF-8 byte order mark
func skipBOM(br *bufio.Reader) {
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
}

// readDelimited streams CSV or TSV text. The first record is the header;
// malformed data rows are skipped and reported, short rows leave their
// trailing fields absent and surplus cells are ignored.
func readDelimited(c *collector, r io.Reader, comma rune) error {
	br := bufio.NewReaderSize(r, 64*1024)
	skipBOM(br)

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return emptyError(stderrors.New("no header row"))
	}
	if err != nil {
		return parseError(fmt.Errorf("reading header: %w", err), cr.InputOffset())
	}
	if err := checkHeader(header); err != nil {
		return parseError(err, 0)
	}
	fields := uniqueHeaders(header)
	c.setFields(fields)

	for {
		cells, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				c.skip(RowIssue{Row: c.row(), Line: perr.Line, Offset: cr.InputOffset(), Reason: perr.Err.Error()})
				continue
			}
			return parseError(err, cr.InputOffset())
		}

		// encoding/csv already drops empty lines; a line of bare delimiters
		// is a row of nulls and counts like any other.
		if err := c.add(buildRow(fields, cells), nil); err != nil {
			return err
		}
	}
}

// buildRow maps positional cells onto the header; missing trailing cells
// stay absent.
func buildRow(fields, cells []string) record.Record {
	row := make(record.Record, len(fields))
	for i, f := range fields {
		if i >= len(cells) {
			break
		}
		row[f] = ClassifyCell(cells[i])
	}
	return row
}

// checkHeader rejects binary input that the CSV reader happily splits
func checkHeader(header []string) error {
	for _, h := range header {
		if !utf8.ValidString(h) || strings.ContainsRune(h, 0) {
			return stderrors.New("header is not delimited text")
		}
	}
	return nil
}

// uniqueHeaders trims names, fills blanks and suffixes duplicates
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[name]++
		out[i] = name
	}
	return out
}
