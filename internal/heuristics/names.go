// Package heuristics holds the fuzzy field-name checks used by inference,
// recommendation and synthesis. Keeping them here lets a better classifier
// replace them in one place.
package heuristics

import (
	"strings"
	"unicode"
)

var (
	relationshipTokens = []string{"parent", "source", "target"}
	textTokens         = []string{"text", "word", "term"}
	weightTokens       = []string{"value", "count", "size", "weight"}
	groupingTokens     = []string{"category", "type", "group"}
	categoryTokens     = []string{"category", "type", "group", "name", "label", "class", "segment"}
	measureTokens      = []string{"value", "amount", "count", "total", "sum", "size", "weight", "quantity", "sales", "revenue"}
	identifierTokens   = []string{"id", "uuid", "key", "code"}
)

// Normalize lower-cases a field name for substring matching
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func containsAny(name string, tokens []string) bool {
	n := Normalize(name)
	for _, t := range tokens {
		if strings.Contains(n, t) {
			return true
		}
	}
	return false
}

// IsRelationshipName reports names that describe an edge endpoint
// ("parent", "source", "target").
func IsRelationshipName(name string) bool {
	return containsAny(name, relationshipTokens)
}

// IsTextName reports names of free-text term columns ("text", "word", "term")
func IsTextName(name string) bool {
	return containsAny(name, textTokens)
}

// IsWeightName reports names of term weights ("value", "count", "size", "weight")
func IsWeightName(name string) bool {
	return containsAny(name, weightTokens)
}

// IsGroupingName reports names that suggest a grouping ("category", "type", "group")
func IsGroupingName(name string) bool {
	return containsAny(name, groupingTokens)
}

// IsCategoryName is the broader category detector used for part-to-whole charts
func IsCategoryName(name string) bool {
	return containsAny(name, categoryTokens)
}

// IsMeasureName reports names of additive measures used for part-to-whole charts
func IsMeasureName(name string) bool {
	return containsAny(name, measureTokens)
}

// IsIdentifierName reports names such as "id", "user_id" or "OrderKey".
// Matching is on word boundaries so "width" or "valid" do not count.
func IsIdentifierName(name string) bool {
	for _, w := range Words(name) {
		for _, t := range identifierTokens {
			if w == t {
				return true
			}
		}
	}
	return false
}

// Words splits snake_case, kebab-case, spaced and camelCase names into lower-case words
func Words(name string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// Title turns a field name into a human-readable title: "sales_amount" -> "Sales Amount"
func Title(name string) string {
	words := Words(name)
	if len(words) == 0 {
		return name
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
