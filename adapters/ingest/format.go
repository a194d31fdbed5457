package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"vizrec/internal/errors"
)

// Format names a supported source encoding
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatXLSX   Format = "xlsx"
)

// Formats lists every supported format
var Formats = []Format{FormatCSV, FormatTSV, FormatJSON, FormatNDJSON, FormatXLSX}

// ParseFormat resolves a format name, accepting a few common aliases
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv", "text/csv":
		return FormatCSV, nil
	case "tsv", "tab", "text/tab-separated-values":
		return FormatTSV, nil
	case "json", "application/json":
		return FormatJSON, nil
	case "ndjson", "jsonl", "ldjson", "application/x-ndjson":
		return FormatNDJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported format: %q", s))
}

// DetectFormat picks a format from a file name's extension
func DetectFormat(filename string) (Format, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "", errors.InvalidInput(fmt.Sprintf("cannot detect format of %q: no extension", filename))
	}
	return ParseFormat(ext)
}
