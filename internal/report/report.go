// Package report renders a dataset's profile and recommendations as a
// Markdown document, optionally converted to a standalone HTML page.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"vizrec/domain/profile"
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/heuristics"
)

// Input is everything a report shows
type Input struct {
	Name            string
	Fingerprint     string
	TotalRowCount   int
	SampleSize      int
	IsSampled       bool
	SkippedRows     int
	Types           record.FieldTypes
	Profile         *profile.Profile
	Recommendations []viz.Recommendation
}

// Markdown renders the report as Markdown
func Markdown(in Input) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", title(in.Name)))
	writeOverview(&b, in)
	writeFields(&b, in)
	writePatterns(&b, in.Profile)
	writeRelationships(&b, in.Profile)
	writeRecommendations(&b, in.Recommendations)

	return b.String()
}

// HTML renders the report as a complete HTML page
func HTML(in Input) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: title(in.Name),
	})
	return markdown.ToHTML([]byte(Markdown(in)), p, renderer)
}

func title(name string) string {
	if name == "" {
		return "Dataset report"
	}
	return name
}

func writeOverview(b *strings.Builder, in Input) {
	b.WriteString("## Overview\n\n")
	b.WriteString(fmt.Sprintf("- Rows: %d\n", in.TotalRowCount))
	if in.IsSampled {
		b.WriteString(fmt.Sprintf("- Sample: %d rows (uniform random sample)\n", in.SampleSize))
	}
	if in.SkippedRows > 0 {
		b.WriteString(fmt.Sprintf("- Skipped malformed rows: %d\n", in.SkippedRows))
	}
	if in.Fingerprint != "" {
		b.WriteString(fmt.Sprintf("- Fingerprint: `%s`\n", in.Fingerprint))
	}
	if in.Profile != nil && in.Profile.Degenerate {
		b.WriteString("- Too little numeric data for patterns or recommendations\n")
	}
	b.WriteString("\n")
}

func writeFields(b *strings.Builder, in Input) {
	if in.Profile == nil || len(in.Profile.FieldOrder) == 0 {
		return
	}
	b.WriteString("## Fields\n\n")
	b.WriteString("| Field | Type | Non-null | Unique | Mean | Std dev | Min | Max | Outliers |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, fp := range in.Profile.Ordered() {
		t := fp.Type
		if ft, ok := in.Types[fp.Field]; ok {
			t = ft
		}
		row := []string{escape(fp.Field), string(t), fmt.Sprint(fp.Count), fmt.Sprint(fp.UniqueCount)}
		if d := fp.Distribution; d != nil {
			row = append(row, num(d.Mean), num(d.StdDev), num(d.Min), num(d.Max), fmt.Sprint(d.OutlierCount))
		} else {
			row = append(row, "", "", "", "", "")
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func writePatterns(b *strings.Builder, prof *profile.Profile) {
	if prof == nil || prof.Degenerate {
		return
	}
	p := prof.Patterns
	b.WriteString("## Patterns\n\n")
	b.WriteString(fmt.Sprintf("- Density: %s\n", p.Density))
	flags := []struct {
		on   bool
		text string
	}{
		{p.HasOutliers, "Outliers present"},
		{p.HasGaps, "Missing values present"},
		{p.HasTrend, "Trend over time"},
		{p.HasHighVariance, "High variance"},
		{p.HasMultiModality, "Possibly multi-modal"},
	}
	for _, f := range flags {
		if f.on {
			b.WriteString("- " + f.text + "\n")
		}
	}
	for _, t := range prof.Trends {
		b.WriteString(fmt.Sprintf("- %s changes by %+.0f%% over %s\n", escape(t.Field), t.Change*100, escape(t.Temporal)))
	}
	b.WriteString("\n")
}

func writeRelationships(b *strings.Builder, prof *profile.Profile) {
	if prof == nil || len(prof.Relationships) == 0 {
		return
	}
	b.WriteString("## Relationships\n\n")
	b.WriteString("| Fields | r | ρ | Type |\n|---|---:|---:|---|\n")
	for _, r := range prof.StrongestFirst() {
		b.WriteString(fmt.Sprintf("| %s / %s | %.2f | %.2f | %s |\n", escape(r.A), escape(r.B), r.Coefficient, r.Monotonic, r.Type))
	}
	b.WriteString("\n")
}

func writeRecommendations(b *strings.Builder, recs []viz.Recommendation) {
	b.WriteString("## Recommended charts\n\n")
	if len(recs) == 0 {
		b.WriteString("No recommendations for this dataset.\n")
		return
	}
	for i, r := range recs {
		b.WriteString(fmt.Sprintf("%d. **%s** (%.0f%%): %s\n", i+1, heuristics.Title(string(r.ChartType)), r.Confidence*100, escape(r.Reason)))
		for _, ch := range r.Encoding.Channels() {
			if ch == viz.ChannelTooltip {
				continue
			}
			spec, _ := r.Encoding.Get(ch)
			b.WriteString(fmt.Sprintf("    - %s: %s\n", ch, describe(spec)))
		}
	}
}

func describe(s viz.EncodingSpec) string {
	name := s.Field
	if s.IsPlaceholder() {
		name = "records"
	}
	switch {
	case s.Aggregate != "":
		return fmt.Sprintf("%s of %s", s.Aggregate, escape(name))
	case s.Bin != nil:
		return fmt.Sprintf("binned %s", escape(name))
	case s.TimeUnit != "":
		return fmt.Sprintf("%s by %s", escape(name), s.TimeUnit)
	}
	return fmt.Sprintf("%s (%s)", escape(name), s.Type)
}

func num(f float64) string {
	if math.Abs(f) >= 1e6 || (f != 0 && math.Abs(f) < 1e-3) {
		return fmt.Sprintf("%.3g", f)
	}
	return fmt.Sprintf("%.2f", f)
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
