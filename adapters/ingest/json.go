package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"vizrec/domain/record"
	"vizrec/internal"
)

const maxLineBytes = 16 << 20

var errNotObject = stderrors.New("element is not a JSON object")

// readJSON streams a JSON document. A top-level array is read element by
// element. A top-level object is searched one level deep for array
// properties; each is streamed into its own collector and the one with the
// most rows wins.
func (p *Pipeline) readJSON(ctx context.Context, r io.Reader, opts Options) (*collector, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	skipBOM(br)

	dec := json.NewDecoder(br)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, emptyError(stderrors.New("empty document"))
	}
	if err != nil {
		return nil, parseError(err, dec.InputOffset())
	}

	switch tok {
	case json.Delim('['):
		c := p.newCollector(ctx, opts)
		return c, readArray(c, dec)
	case json.Delim('{'):
		return p.readObject(ctx, dec, opts)
	}
	return nil, emptyError(fmt.Errorf("top-level value %v is neither an array nor an object", tok))
}

func (p *Pipeline) readObject(ctx context.Context, dec *json.Decoder, opts Options) (*collector, error) {
	var best *collector
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return best, parseError(err, dec.InputOffset())
		}
		key, _ := kt.(string)

		tok, err := dec.Token()
		if err != nil {
			return best, parseError(err, dec.InputOffset())
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		if delim == '{' {
			if err := skipValue(dec); err != nil {
				return best, parseError(err, dec.InputOffset())
			}
			continue
		}

		c := p.newCollector(ctx, opts)
		if err := readArray(c, dec); err != nil {
			return c, err
		}
		internal.DefaultLogger.Debug("[Ingest] JSON property %q holds %d rows", key, c.total)
		if best == nil || c.total > best.total {
			best = c
		}
	}
	if _, err := dec.Token(); err != nil {
		return best, parseError(err, dec.InputOffset())
	}

	if best == nil {
		return nil, emptyError(stderrors.New("top-level object has no array property"))
	}
	return best, nil
}

// readArray consumes the elements of an array whose opening bracket has
// already been read, plus the closing bracket.
func readArray(c *collector, dec *json.Decoder) error {
	for dec.More() {
		offset := dec.InputOffset()
		row, keys, err := decodeRow(dec)
		if err == errNotObject {
			c.skip(RowIssue{Row: c.row(), Offset: offset, Reason: err.Error()})
			continue
		}
		if err != nil {
			return parseError(err, dec.InputOffset())
		}
		if err := c.add(row, keys); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return parseError(err, dec.InputOffset())
	}
	return nil
}

// decodeRow reads one array element. Objects become records with their keys
// in document order; any other value is consumed and reported as
// errNotObject.
func decodeRow(dec *json.Decoder) (record.Record, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, nil, errNotObject
	}
	if delim == '[' {
		if err := skipValue(dec); err != nil {
			return nil, nil, err
		}
		return nil, nil, errNotObject
	}

	row := make(record.Record)
	var keys []string
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := kt.(string)

		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = classifyJSON(v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

// skipValue discards the rest of a composite value whose opening delimiter
// was just read.
func skipValue(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

// readNDJSON reads one JSON object per line. Lines that are not objects are
// skipped; a stream where no line is an object is not NDJSON at all.
func readNDJSON(c *collector, r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)
	skipBOM(br)

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var offset int64
	line := 0
	for sc.Scan() {
		b := sc.Bytes()
		line++
		start := offset
		offset += int64(len(b)) + 1
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		row, keys, err := decodeRow(dec)
		if err == nil {
			if _, terr := dec.Token(); terr != io.EOF {
				err = stderrors.New("trailing data after object")
			}
		}
		if err != nil {
			c.skip(RowIssue{Row: c.row(), Line: line, Offset: start, Reason: err.Error()})
			continue
		}
		if err := c.add(row, keys); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return parseError(err, offset)
	}
	if c.total == 0 && c.skipped > 0 {
		return parseError(stderrors.New("no line holds a JSON object"), 0)
	}
	return nil
}
