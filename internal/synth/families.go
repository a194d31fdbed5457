package synth

import (
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/heuristics"
)

const (
	foldKey   = "key"
	foldValue = "value"
	minFolded = 3
)

var (
	foldChannels   = channelSet(viz.ChannelX, viz.ChannelY, viz.ChannelColor, viz.ChannelDetail, viz.ChannelOpacity, viz.ChannelStrokeDash, viz.ChannelTooltip)
	textChannels   = channelSet(viz.ChannelText, viz.ChannelSize, viz.ChannelColor, viz.ChannelOpacity, viz.ChannelX, viz.ChannelY, viz.ChannelTooltip)
	radialChannels = channelSet(viz.ChannelTheta, viz.ChannelRadius, viz.ChannelColor, viz.ChannelOpacity, viz.ChannelOrder, viz.ChannelDetail, viz.ChannelTooltip)
)

// fold lowers a multi-dimension mark to a line over folded key/value
// columns, one path per source record. The mark is never filled.
func (s *Synthesizer) fold(spec *viz.Specification, mark viz.Mark, cols columns) {
	enc := spec.Encoding

	detail := ""
	if d, ok := enc.Get(viz.ChannelDetail); ok && !d.IsPlaceholder() {
		detail = d.Field
	} else {
		detail = cols.identifier()
	}

	var dims []string
	for _, f := range cols.order {
		if f != detail && cols.isNumeric(f) {
			dims = append(dims, f)
		}
	}
	for _, f := range cols.order {
		if len(dims) >= minFolded {
			break
		}
		if f != detail && !cols.isNumeric(f) {
			dims = append(dims, f)
		}
	}

	if len(dims) > 0 {
		spec.Transform = []viz.Transform{{Fold: dims, As: []string{foldKey, foldValue}}}
	}

	enc.Set(viz.ChannelX, viz.Field(foldKey, record.Nominal).WithTitle("Dimension"))
	enc.Set(viz.ChannelY, viz.Field(foldValue, record.Quantitative).WithTitle("Value"))
	if detail != "" {
		enc.Set(viz.ChannelDetail, viz.Field(detail, record.Nominal))
	}
	keep(enc, foldChannels)

	if s.cfg.IndependentFoldScales {
		spec.Resolve = &viz.Resolve{Scale: map[viz.Channel]string{viz.ChannelY: "independent"}}
	}

	mark.Type = viz.MarkLine
	mark.Filled = viz.BoolPtr(false)
	if mark.Opacity == nil {
		mark.Opacity = viz.FloatPtr(0.6)
	}
	spec.Mark = mark
}

// textDensity lowers a word-cloud mark to sized text
func textDensity(spec *viz.Specification, mark viz.Mark, cols columns) {
	enc := spec.Encoding

	var text string
	if cur, ok := enc.Get(viz.ChannelText); ok && cur.Field != "" {
		text = cur.Field
	} else {
		text = cols.first(heuristics.IsTextName)
		if text == "" && len(cols.order) > 0 {
			text = cols.order[0]
		}
		if text != "" {
			enc.Set(viz.ChannelText, viz.Field(text, record.Nominal))
		}
	}

	if !hasField(enc, viz.ChannelSize) {
		weight := cols.first(func(f string) bool { return heuristics.IsWeightName(f) && cols.isNumeric(f) })
		if weight == "" {
			weight = cols.first(func(f string) bool { return f != text && cols.isNumeric(f) })
		}
		if weight == "" {
			weight = cols.first(func(f string) bool { return f != text })
		}
		if weight != "" {
			enc.Set(viz.ChannelSize, viz.Field(weight, cols.typeOf(weight)))
		}
	}
	keep(enc, textChannels)

	mark.Type = viz.MarkText
	if mark.Align == "" {
		mark.Align = "center"
	}
	if mark.Baseline == "" {
		mark.Baseline = "middle"
	}
	spec.Mark = mark
}

// radial builds an arc chart: theta and color are detected when missing,
// spatial and size channels are always stripped, the view is sized to its
// container and axes are disabled.
func radial(spec *viz.Specification, mark viz.Mark, cols columns) {
	enc := spec.Encoding

	if !enc.Has(viz.ChannelTheta) {
		theta := cols.first(func(f string) bool { return cols.isNumeric(f) && heuristics.IsWeightName(f) })
		if theta == "" {
			theta = cols.first(func(f string) bool { return cols.isNumeric(f) && heuristics.IsMeasureName(f) })
		}
		if theta == "" {
			theta = cols.first(cols.isNumeric)
		}
		if theta != "" {
			enc.Set(viz.ChannelTheta, viz.Field(theta, record.Quantitative).WithAggregate("sum"))
		} else {
			enc.Set(viz.ChannelTheta, viz.Count())
		}
	}

	if !hasField(enc, viz.ChannelColor) {
		notNumeric := func(f string) bool { return !cols.isNumeric(f) }
		color := cols.first(func(f string) bool { return notNumeric(f) && heuristics.IsCategoryName(f) })
		if color == "" {
			color = cols.first(notNumeric)
		}
		if color != "" {
			enc.Set(viz.ChannelColor, viz.Field(color, record.Nominal))
		}
	}
	keep(enc, radialChannels)

	spec.Width = viz.Container
	spec.Height = viz.Container
	spec.Autosize = &viz.Autosize{Type: "fit", Contains: "padding"}
	spec.Config = &viz.Config{
		Axis: &viz.AxisConfig{Disable: true},
		View: &viz.ViewConfig{StrokeWidth: viz.FloatPtr(0)},
	}

	mark.Type = viz.MarkArc
	spec.Mark = mark
}

// defaultFamily keeps the encoding, drops channels the mark cannot use and
// fills unset visual parameters.
func defaultFamily(spec *viz.Specification, mark viz.Mark) {
	if mark.Type == "" {
		mark.Type = viz.MarkPoint
	}
	keep(spec.Encoding, allowedChannels(mark.Type))

	switch mark.Type {
	case viz.MarkLine:
		if mark.Point == nil {
			mark.Point = viz.BoolPtr(true)
		}
		if mark.StrokeWidth == nil {
			mark.StrokeWidth = viz.FloatPtr(2)
		}
	case viz.MarkBar:
		if mark.CornerRadius == nil {
			mark.CornerRadius = viz.FloatPtr(0)
		}
	case viz.MarkPoint, viz.MarkCircle:
		if mark.Filled == nil {
			mark.Filled = viz.BoolPtr(true)
		}
		if mark.Opacity == nil {
			mark.Opacity = viz.FloatPtr(0.7)
		}
	}
	spec.Mark = mark
}

func hasField(enc viz.Encoding, ch viz.Channel) bool {
	s, ok := enc.Get(ch)
	return ok && s.Field != ""
}
