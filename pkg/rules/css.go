package rules

import (
	"regexp"
	"strings"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
)

// cssProperties maps interesting property names to the feature they use.
var cssProperties = map[string]string{
	"grid":                 "grid",
	"subgrid":              "subgrid",
	"gap":                  "gap",
	"aspect-ratio":         "aspect-ratio",
	"container":            "container",
	"container-type":       "container",
	"container-name":       "container",
	"view-transition-name": "view-transitions",
	"color-scheme":         "color-scheme",
	"anchor-name":          "anchor-positioning",
	"position-anchor":      "anchor-positioning",
	"field-sizing":         "field-sizing",
}

// cssFunctions are found by substring search in declaration values, so
// "minmax(" also reports "max(". The feature id is the function name with
// "-function" appended.
var cssFunctions = []string{"min(", "max(", "clamp(", "var(", "color-mix("}

// cssValueKeywords are keyword values that imply a feature on any property.
var cssValueKeywords = []struct {
	id      string
	pattern *regexp.Regexp
}{
	{id: "subgrid", pattern: regexp.MustCompile(`\bsubgrid\b`)},
}

var cssAtRules = map[string]string{
	"container": "container",
	"layer":     "cascade-layers",
	"property":  "registered-custom-properties",
	"scope":     "scope",
}

var (
	declarationPattern = regexp.MustCompile(`([a-z-]+)\s*:\s*([^;{}]*)`)
	atRulePattern      = regexp.MustCompile(`@([a-z-]+)`)
	hasPattern         = regexp.MustCompile(`:has\(`)
)

// FunctionFeatureID derives the feature id for a CSS function pattern,
// e.g. "clamp(" becomes "clamp-function".
func FunctionFeatureID(fn string) string {
	return strings.TrimSuffix(strings.TrimSuffix(fn, ")"), "(") + "-function"
}

// CSS detects properties, functions, at-rules and selectors in stylesheets.
type CSS struct{}

func (CSS) Name() string { return "css" }

// CheckDeclaration evaluates one property/value pair.
func (c CSS) CheckDeclaration(eng *diagnostics.Engine, property, value string, loc diagnostics.Location) ([]diagnostics.Diagnostic, error) {
	return checkHits(eng, c.declarationHits(property, value, loc))
}

func (CSS) declarationHits(property, value string, loc diagnostics.Location) []hit {
	loc.Category = features.CategoryCSS
	property = strings.ToLower(strings.TrimSpace(property))

	var hits []hit
	if id, ok := cssProperties[property]; ok {
		l := loc
		l.Type = "css-property"
		l.Value = strings.TrimSpace(value)
		hits = append(hits, hit{identifier: id, loc: l})
	}

	lower := strings.ToLower(value)
	for _, fn := range cssFunctions {
		if strings.Contains(lower, fn) {
			l := loc
			l.Type = "css-function"
			l.Value = strings.TrimSpace(value)
			hits = append(hits, hit{identifier: FunctionFeatureID(fn), loc: l})
		}
	}

	for _, kw := range cssValueKeywords {
		if kw.pattern.MatchString(lower) {
			l := loc
			l.Type = "css-value"
			l.Value = strings.TrimSpace(value)
			hits = append(hits, hit{identifier: kw.id, loc: l})
		}
	}
	return hits
}

func (c CSS) Lint(eng *diagnostics.Engine, code string, in Input) ([]diagnostics.Diagnostic, error) {
	hits := c.scan(code, in.File, 0, newPositions(code))
	hits = append(hits, explicitHits(in)...)
	return checkHits(eng, hits)
}

// scan finds hits in code. base is added to offsets when code is embedded
// in a larger document described by pos.
func (c CSS) scan(code, file string, base int, pos positions) []hit {
	code = blankComments(code)

	var hits []hit
	for _, m := range atRulePattern.FindAllStringSubmatchIndex(code, -1) {
		id, ok := cssAtRules[strings.ToLower(code[m[2]:m[3]])]
		if !ok {
			continue
		}
		line, col := pos.at(base + m[0])
		hits = append(hits, hit{identifier: id, loc: diagnostics.Location{
			File: file, Line: line, Column: col,
			Category: features.CategoryCSS, Type: "css-at-rule", Value: code[m[0]:m[1]],
		}})
	}

	for _, m := range hasPattern.FindAllStringIndex(code, -1) {
		line, col := pos.at(base + m[0])
		hits = append(hits, hit{identifier: "has", loc: diagnostics.Location{
			File: file, Line: line, Column: col,
			Category: features.CategoryCSS, Type: "css-selector", Value: ":has()",
		}})
	}

	for _, m := range declarationPattern.FindAllStringSubmatchIndex(code, -1) {
		property := code[m[2]:m[3]]
		value := code[m[4]:m[5]]
		if strings.HasPrefix(value, ":") {
			continue
		}
		line, col := pos.at(base + m[0])
		hits = append(hits, c.declarationHits(property, value, diagnostics.Location{
			File: file, Line: line, Column: col,
		})...)
	}

	sortHits(hits)
	return hits
}
