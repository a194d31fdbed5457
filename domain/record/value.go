package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "datetime"
	case KindBool:
		return "boolean"
	}
	return "null"
}

// Value is a single scalar cell: Number | Text | DateTime | Bool | Null.
// The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	text string
	at   time.Time
	b    bool
}

// Number creates a numeric value. NaN and infinities are stored as Null so
// that statistics never see them.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text creates a string value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Time creates a datetime value
func Time(t time.Time) Value {
	return Value{kind: KindTime, at: t}
}

// Bool creates a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Null returns the missing value
func Null() Value {
	return Value{}
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the text payload
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// Timestamp returns the datetime payload
func (v Value) Timestamp() (time.Time, bool) {
	return v.at, v.kind == KindTime
}

// Boolean returns the boolean payload
func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// String returns a display representation
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindTime:
		return v.at.Format(time.RFC3339Nano)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Key returns a canonical, kind-qualified representation used for
// uniqueness counting and content hashing.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return "s:" + v.text
	case KindTime:
		return "t:" + v.at.UTC().Format(time.RFC3339Nano)
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	}
	return "null"
}

// Equal compares two values by kind and payload
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Interface returns the payload as a plain Go value (float64, string,
// time.Time, bool or nil).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindTime:
		return v.at
	case KindBool:
		return v.b
	}
	return nil
}

// MarshalJSON encodes the payload; datetimes are emitted as RFC3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindText:
		return json.Marshal(v.text)
	case KindTime:
		return json.Marshal(v.at.Format(time.RFC3339Nano))
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a JSON scalar. Strings holding an RFC3339 timestamp
// become datetimes, which makes MarshalJSON output round-trip.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*v = Null()
	case s == "true" || s == "false":
		*v = Bool(s == "true")
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
			*v = Time(t)
		} else {
			*v = Text(str)
		}
	case strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		*v = Text(s)
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", s, err)
		}
		*v = Number(f)
	}
	return nil
}

// FromInterface converts a decoded Go value into a Value. Unknown composite
// values are kept as their JSON text.
func FromInterface(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Text(t.String())
		}
		return Number(f)
	case string:
		return Text(t)
	case bool:
		return Bool(t)
	case time.Time:
		return Time(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Text(fmt.Sprintf("%v", t))
		}
		return Text(string(b))
	}
}
