package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"vizrec/domain/record"
)

// Wildcard is the placeholder field used by count aggregates
const Wildcard = "*"

// Bin is a binning directive. MaxBins == 0 means automatic binning.
type Bin struct {
	MaxBins int `json:"maxbins,omitempty"`
}

// MarshalJSON emits `true` for automatic binning and {"maxbins":N} otherwise
func (b Bin) MarshalJSON() ([]byte, error) {
	if b.MaxBins <= 0 {
		return []byte("true"), nil
	}
	return []byte(fmt.Sprintf(`{"maxbins":%d}`, b.MaxBins)), nil
}

var binTokenPattern = regexp.MustCompile(`^(?:max\s*bins?\s*[:=]?\s*)?(\d+)(?:\s*(?:buckets?|bins?))?$|^bins?\s*[:=]\s*(\d+)$`)

// ParseBin parses a bin directive given as a short-hand token such as
// "10 buckets", "bins:20", "maxbins=8", "12", "auto" or "true".
func ParseBin(token string) (*Bin, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch t {
	case "", "false", "none", "off":
		return nil, false
	case "true", "auto", "yes":
		return &Bin{}, true
	}
	m := binTokenPattern.FindStringSubmatch(t)
	if m == nil {
		return nil, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return nil, false
	}
	return &Bin{MaxBins: n}, true
}

// decodeBin accepts a boolean, an object with maxbins, or a short-hand token
func decodeBin(raw json.RawMessage) (*Bin, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return nil, nil
	}
	if string(raw) == "true" {
		return &Bin{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		b, ok := ParseBin(s)
		if !ok {
			return nil, fmt.Errorf("invalid bin directive %q", s)
		}
		return b, nil
	}
	var obj struct {
		MaxBins int `json:"maxbins"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("invalid bin directive: %w", err)
	}
	return &Bin{MaxBins: obj.MaxBins}, nil
}

// EncodingSpec maps one field onto a channel. Aggregate, TimeUnit and Bin
// are mutually exclusive; the With* setters enforce that.
type EncodingSpec struct {
	Field     string                 `json:"field,omitempty"`
	Type      record.FieldType       `json:"type,omitempty"`
	Aggregate string                 `json:"aggregate,omitempty"`
	TimeUnit  string                 `json:"timeUnit,omitempty"`
	Bin       *Bin                   `json:"bin,omitempty"`
	Scale     map[string]interface{} `json:"scale,omitempty"`
	Sort      string                 `json:"sort,omitempty"`
	Title     string                 `json:"title,omitempty"`
	Format    string                 `json:"format,omitempty"`
	Stack     string                 `json:"stack,omitempty"`
}

// Field builds a plain field encoding
func Field(name string, t record.FieldType) EncodingSpec {
	return EncodingSpec{Field: name, Type: t}
}

// Count builds the wildcard count aggregate
func Count() EncodingSpec {
	return EncodingSpec{Field: Wildcard, Type: record.Quantitative, Aggregate: "count"}
}

// WithAggregate sets the aggregate and clears the other directives
func (e EncodingSpec) WithAggregate(op string) EncodingSpec {
	e.Aggregate, e.TimeUnit, e.Bin = op, "", nil
	return e
}

// WithTimeUnit sets the time unit and clears the other directives
func (e EncodingSpec) WithTimeUnit(unit string) EncodingSpec {
	e.Aggregate, e.TimeUnit, e.Bin = "", unit, nil
	return e
}

// WithBin sets the bin directive and clears the other directives
func (e EncodingSpec) WithBin(b *Bin) EncodingSpec {
	e.Aggregate, e.TimeUnit, e.Bin = "", "", b
	return e
}

// WithTitle sets a display title
func (e EncodingSpec) WithTitle(title string) EncodingSpec {
	e.Title = title
	return e
}

// Normalize resolves conflicting directives, keeping aggregate over bin over time unit.
func (e EncodingSpec) Normalize() EncodingSpec {
	switch {
	case e.Aggregate != "":
		return e.WithAggregate(e.Aggregate)
	case e.Bin != nil:
		return e.WithBin(e.Bin)
	case e.TimeUnit != "":
		return e.WithTimeUnit(e.TimeUnit)
	}
	return e
}

// IsPlaceholder reports a wildcard or aggregate-only encoding that names no real field
func (e EncodingSpec) IsPlaceholder() bool {
	return e.Field == "" || e.Field == Wildcard
}

// UnmarshalJSON accepts bin as a boolean, an object or a short-hand token
func (e *EncodingSpec) UnmarshalJSON(b []byte) error {
	type alias EncodingSpec
	var aux struct {
		alias
		Bin json.RawMessage `json:"bin,omitempty"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	bin, err := decodeBin(aux.Bin)
	if err != nil {
		return err
	}
	*e = EncodingSpec(aux.alias)
	e.Bin = bin
	return nil
}

// ChannelDef holds the encodings of one channel. A single entry is emitted as
// an object, several entries (tooltips) as an array.
type ChannelDef []EncodingSpec

// MarshalJSON emits a single object or an array
func (c ChannelDef) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]EncodingSpec(c))
}

// UnmarshalJSON accepts a single object or an array
func (c *ChannelDef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []EncodingSpec
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	var one EncodingSpec
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*c = ChannelDef{one}
	return nil
}

// Encoding maps channels to field encodings
type Encoding map[Channel]ChannelDef

// Set assigns a single encoding to a channel
func (e Encoding) Set(ch Channel, spec EncodingSpec) {
	e[ch] = ChannelDef{spec}
}

// Get returns the first encoding of a channel
func (e Encoding) Get(ch Channel) (EncodingSpec, bool) {
	def, ok := e[ch]
	if !ok || len(def) == 0 {
		return EncodingSpec{}, false
	}
	return def[0], true
}

// Has reports whether a channel is set
func (e Encoding) Has(ch Channel) bool {
	return len(e[ch]) > 0
}

// Clone returns a deep copy
func (e Encoding) Clone() Encoding {
	out := make(Encoding, len(e))
	for ch, def := range e {
		cp := make(ChannelDef, len(def))
		for i, s := range def {
			if s.Bin != nil {
				b := *s.Bin
				s.Bin = &b
			}
			if s.Scale != nil {
				sc := make(map[string]interface{}, len(s.Scale))
				for k, v := range s.Scale {
					sc[k] = v
				}
				s.Scale = sc
			}
			cp[i] = s
		}
		out[ch] = cp
	}
	return out
}

// Channels returns the set channels in a stable order
func (e Encoding) Channels() []Channel {
	out := make([]Channel, 0, len(e))
	for ch := range e {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := channelRank(out[i]), channelRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// Fields returns the distinct real fields used by non-tooltip channels, in channel order
func (e Encoding) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, ch := range e.Channels() {
		if ch == ChannelTooltip {
			continue
		}
		for _, s := range e[ch] {
			if s.IsPlaceholder() || seen[s.Field] {
				continue
			}
			seen[s.Field] = true
			out = append(out, s.Field)
		}
	}
	return out
}

var channelOrder = []Channel{
	ChannelX, ChannelY, ChannelX2, ChannelY2, ChannelXOffset, ChannelYOffset,
	ChannelTheta, ChannelRadius, ChannelColor, ChannelSize, ChannelShape, ChannelOpacity,
	ChannelText, ChannelDetail, ChannelOrder, ChannelStrokeDash, ChannelRow, ChannelColumn, ChannelTooltip,
}

func channelRank(c Channel) int {
	for i, ch := range channelOrder {
		if ch == c {
			return i
		}
	}
	return len(channelOrder)
}
