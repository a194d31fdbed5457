package ingest

import (
	stderrors "errors"
	"fmt"
	"strings"

	"vizrec/internal/errors"
)

var (
	// ErrParse marks a stream that is not valid in the declared format
	ErrParse = stderrors.New("parse error")
	// ErrEmptyData marks a stream that yielded zero usable rows
	ErrEmptyData = stderrors.New("empty data")
)

// ErrorKind distinguishes the two fatal ingestion failures
type ErrorKind string

const (
	KindParse ErrorKind = "ParseError"
	KindEmpty ErrorKind = "EmptyDataError"
)

// IngestError reports a failed ingestion with enough context to show the
// user where it went wrong.
type IngestError struct {
	Kind          ErrorKind
	Filename      string
	Format        Format
	Offset        int64 // byte offset of the failure, -1 when unknown
	RowsProcessed int
	SkippedRows   int
	Fields        []string
	Cause         error
}

func (e *IngestError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Filename != "" {
		fmt.Fprintf(&b, ": %s", e.Filename)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at byte %d", e.Offset)
	}
	fmt.Fprintf(&b, " (%d rows processed, %d skipped)", e.RowsProcessed, e.SkippedRows)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *IngestError) Unwrap() []error {
	sentinel := ErrParse
	if e.Kind == KindEmpty {
		sentinel = ErrEmptyData
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}

// ErrorCode maps the kind onto the application error codes
func (e *IngestError) ErrorCode() string {
	if e.Kind == KindEmpty {
		return errors.CodeEmptyData
	}
	return errors.CodeParseError
}

// RowIssue describes one skipped row
type RowIssue struct {
	Row    int    `json:"row"`
	Line   int    `json:"line,omitempty"`
	Offset int64  `json:"offset"`
	Reason string `json:"reason"`
}

func parseError(cause error, offset int64) *IngestError {
	return &IngestError{Kind: KindParse, Offset: offset, Cause: cause}
}

func emptyError(cause error) *IngestError {
	return &IngestError{Kind: KindEmpty, Offset: -1, Cause: cause}
}
