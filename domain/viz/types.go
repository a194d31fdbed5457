package viz

import (
	"vizrec/domain/record"
)

// ChartType names a recommended chart
type ChartType string

const (
	ChartScatter       ChartType = "scatter"
	ChartBoxplot       ChartType = "boxplot"
	ChartLine          ChartType = "line"
	ChartStackedArea   ChartType = "stacked_area"
	ChartHeatmap       ChartType = "heatmap"
	ChartHistogram     ChartType = "histogram"
	ChartBar           ChartType = "bar"
	ChartHorizontalBar ChartType = "horizontal_bar"
	ChartGroupedBar    ChartType = "grouped_bar"
	ChartPie           ChartType = "pie"
	ChartBubble        ChartType = "bubble"
	ChartParallel      ChartType = "parallel_coordinates"
	ChartWordCloud     ChartType = "word_cloud"
)

// MarkType is the geometric primitive a chart is drawn with. Parallel
// coordinates and word clouds are composite families that the synthesizer
// lowers to line and text marks respectively.
type MarkType string

const (
	MarkBar       MarkType = "bar"
	MarkLine      MarkType = "line"
	MarkPoint     MarkType = "point"
	MarkCircle    MarkType = "circle"
	MarkSquare    MarkType = "square"
	MarkArea      MarkType = "area"
	MarkRect      MarkType = "rect"
	MarkTick      MarkType = "tick"
	MarkRule      MarkType = "rule"
	MarkText      MarkType = "text"
	MarkTrail     MarkType = "trail"
	MarkArc       MarkType = "arc"
	MarkBoxplot   MarkType = "boxplot"
	MarkParallel  MarkType = "parallel_coordinates"
	MarkWordCloud MarkType = "wordcloud"
)

// Family groups mark types that share structural synthesis rules
type Family int

const (
	FamilyDefault Family = iota
	FamilyFold
	FamilyTextDensity
	FamilyRadial
)

// Family returns the synthesis family of a mark
func (m MarkType) Family() Family {
	switch m {
	case MarkParallel:
		return FamilyFold
	case MarkWordCloud:
		return FamilyTextDensity
	case MarkArc:
		return FamilyRadial
	}
	return FamilyDefault
}

// MarkFor returns the mark a chart type is drawn with
func MarkFor(c ChartType) MarkType {
	switch c {
	case ChartScatter:
		return MarkPoint
	case ChartBoxplot:
		return MarkBoxplot
	case ChartLine:
		return MarkLine
	case ChartStackedArea:
		return MarkArea
	case ChartHeatmap:
		return MarkRect
	case ChartHistogram, ChartBar, ChartHorizontalBar, ChartGroupedBar:
		return MarkBar
	case ChartPie:
		return MarkArc
	case ChartBubble:
		return MarkCircle
	case ChartParallel:
		return MarkParallel
	case ChartWordCloud:
		return MarkWordCloud
	}
	return MarkBar
}

// Channel is a named visual role a field can be mapped to
type Channel string

const (
	ChannelX          Channel = "x"
	ChannelY          Channel = "y"
	ChannelX2         Channel = "x2"
	ChannelY2         Channel = "y2"
	ChannelXOffset    Channel = "xOffset"
	ChannelYOffset    Channel = "yOffset"
	ChannelColor      Channel = "color"
	ChannelSize       Channel = "size"
	ChannelShape      Channel = "shape"
	ChannelOpacity    Channel = "opacity"
	ChannelTheta      Channel = "theta"
	ChannelRadius     Channel = "radius"
	ChannelText       Channel = "text"
	ChannelDetail     Channel = "detail"
	ChannelTooltip    Channel = "tooltip"
	ChannelOrder      Channel = "order"
	ChannelStrokeDash Channel = "strokeDash"
	ChannelRow        Channel = "row"
	ChannelColumn     Channel = "column"
)

// Spatial reports whether the channel positions marks on a cartesian plane
func (c Channel) Spatial() bool {
	switch c {
	case ChannelX, ChannelY, ChannelX2, ChannelY2, ChannelXOffset, ChannelYOffset:
		return true
	}
	return false
}

// Recommendation is a ranked chart suggestion with a draft encoding
type Recommendation struct {
	ID         string    `json:"id"`
	ChartType  ChartType `json:"chartType"`
	Mark       MarkType  `json:"mark"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Encoding   Encoding  `json:"suggestedEncodings"`
}

// FieldTypeOf is a convenience for building specs from a type map
func FieldTypeOf(ft record.FieldTypes, field string) record.FieldType {
	if t, ok := ft[field]; ok {
		return t
	}
	return record.Nominal
}
