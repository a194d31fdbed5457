// Package synth completes a draft encoding into a renderer-ready chart
// specification. Synthesis never fails: unusable input degrades to a
// structurally valid, possibly empty, specification.
package synth

import (
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/config"
)

// Synthesizer applies the structural rules of each mark family
type Synthesizer struct {
	cfg config.RendererConfig
}

// NewSynthesizer creates a synthesizer for a renderer with the given capabilities
func NewSynthesizer(cfg config.RendererConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize builds a specification for a mark type with default visual
// parameters.
func (s *Synthesizer) Synthesize(mark viz.MarkType, enc viz.Encoding, rs record.RecordSet) *viz.Specification {
	return s.SynthesizeMark(viz.Mark{Type: mark}, enc, rs)
}

// SynthesizeMark builds a specification keeping any visual parameter the
// caller already set on mark.
func (s *Synthesizer) SynthesizeMark(mark viz.Mark, enc viz.Encoding, rs record.RecordSet) *viz.Specification {
	spec := &viz.Specification{
		Schema:   viz.SchemaURL,
		Data:     viz.Data{Values: rs.Values()},
		Encoding: normalized(enc),
	}

	cols := newColumns(rs)
	switch mark.Type.Family() {
	case viz.FamilyFold:
		s.fold(spec, mark, cols)
	case viz.FamilyTextDensity:
		textDensity(spec, mark, cols)
	case viz.FamilyRadial:
		radial(spec, mark, cols)
	default:
		defaultFamily(spec, mark)
	}
	return spec
}

// FromRecommendation synthesizes the chart a recommendation describes
func (s *Synthesizer) FromRecommendation(rec viz.Recommendation, rs record.RecordSet) *viz.Specification {
	mark := rec.Mark
	if mark == "" {
		mark = viz.MarkFor(rec.ChartType)
	}
	spec := s.Synthesize(mark, rec.Encoding, rs)
	spec.Title = rec.Reason
	return spec
}

// normalized deep-copies the encoding and resolves conflicting directives
func normalized(enc viz.Encoding) viz.Encoding {
	out := enc.Clone()
	for ch, def := range out {
		if len(def) == 0 {
			delete(out, ch)
			continue
		}
		for i := range def {
			def[i] = def[i].Normalize()
		}
	}
	return out
}

// keep removes every channel not in allowed
func keep(enc viz.Encoding, allowed map[viz.Channel]bool) {
	for ch := range enc {
		if !allowed[ch] {
			delete(enc, ch)
		}
	}
}

func channelSet(chs ...viz.Channel) map[viz.Channel]bool {
	out := make(map[viz.Channel]bool, len(chs))
	for _, ch := range chs {
		out[ch] = true
	}
	return out
}
