package viz

// SchemaURL identifies the declarative grammar the specification targets
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Container is the sizing token for container-relative width/height
const Container = "container"

// Specification is a complete, renderer-ready chart description. The data
// block always carries inline values.
type Specification struct {
	Schema    string      `json:"$schema"`
	Title     string      `json:"title,omitempty"`
	Data      Data        `json:"data"`
	Mark      Mark        `json:"mark"`
	Encoding  Encoding    `json:"encoding"`
	Transform []Transform `json:"transform,omitempty"`
	Resolve   *Resolve    `json:"resolve,omitempty"`
	Width     interface{} `json:"width,omitempty"`
	Height    interface{} `json:"height,omitempty"`
	Autosize  *Autosize   `json:"autosize,omitempty"`
	Config    *Config     `json:"config,omitempty"`
}

// Data is the inline data block
type Data struct {
	Values []map[string]interface{} `json:"values"`
}

// Mark carries the mark type and its visual parameters. Nil pointers are
// parameters the caller left unspecified.
type Mark struct {
	Type         MarkType `json:"type"`
	Filled       *bool    `json:"filled,omitempty"`
	Point        *bool    `json:"point,omitempty"`
	StrokeWidth  *float64 `json:"strokeWidth,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`
	Opacity      *float64 `json:"opacity,omitempty"`
	InnerRadius  *float64 `json:"innerRadius,omitempty"`
	Tooltip      *bool    `json:"tooltip,omitempty"`
	Interpolate  string   `json:"interpolate,omitempty"`
	Align        string   `json:"align,omitempty"`
	Baseline     string   `json:"baseline,omitempty"`
}

// Transform is a data transform; only fold is produced by the synthesizer
type Transform struct {
	Fold []string `json:"fold,omitempty"`
	As   []string `json:"as,omitempty"`
}

// Resolve controls scale sharing between layers or folded dimensions
type Resolve struct {
	Scale map[Channel]string `json:"scale,omitempty"`
}

// Autosize controls how the view fits its container
type Autosize struct {
	Type     string `json:"type,omitempty"`
	Contains string `json:"contains,omitempty"`
}

// Config is the top-level renderer configuration
type Config struct {
	Axis *AxisConfig `json:"axis,omitempty"`
	View *ViewConfig `json:"view,omitempty"`
}

// AxisConfig toggles axis rendering
type AxisConfig struct {
	Disable bool `json:"disable"`
}

// ViewConfig styles the view frame
type ViewConfig struct {
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 { return &f }
