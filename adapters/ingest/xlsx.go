package ingest

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX streams the first worksheet of a workbook. The first non-empty
// row is the header.
func readXLSX(c *collector, r io.Reader) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return parseError(fmt.Errorf("failed to open workbook: %w", err), -1)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return emptyError(stderrors.New("workbook has no sheets"))
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return parseError(fmt.Errorf("failed to read sheet %s: %w", sheets[0], err), -1)
	}
	defer rows.Close()

	var fields []string
	line := 0
	for rows.Next() {
		line++
		cells, err := rows.Columns()
		if err != nil {
			if fields == nil {
				return parseError(fmt.Errorf("reading header: %w", err), -1)
			}
			c.skip(RowIssue{Row: c.row(), Line: line, Offset: -1, Reason: err.Error()})
			continue
		}

		if fields == nil {
			if allEmpty(cells) {
				continue
			}
			fields = uniqueHeaders(cells)
			c.setFields(fields)
			continue
		}

		// Sheets store no delimiters, so a row without values cannot be told
		// apart from a gap between rows.
		if allEmpty(cells) {
			continue
		}
		if err := c.add(buildRow(fields, cells), nil); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return parseError(err, -1)
	}
	if fields == nil {
		return emptyError(fmt.Errorf("sheet %s has no header row", sheets[0]))
	}
	return nil
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
