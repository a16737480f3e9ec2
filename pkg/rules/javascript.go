package rules

import (
	"regexp"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
)

type jsPattern struct {
	pattern  *regexp.Regexp
	id       string
	category features.Category
}

var jsPatterns = []jsPattern{
	{regexp.MustCompile(`\.at\(`), "array-at", features.CategoryJavaScript},
	{regexp.MustCompile(`\bstructuredClone\(`), "structured-clone", features.CategoryJavaScript},
	{regexp.MustCompile(`\.findLast(Index)?\(`), "array-findlast", features.CategoryJavaScript},
	{regexp.MustCompile(`\bimport\.meta\b`), "import-meta", features.CategoryJavaScript},
	{regexp.MustCompile(`\.(flatMap|flat)\(`), "array-flat", features.CategoryJavaScript},
	{regexp.MustCompile(`\bPromise\.any\(`), "promise-any", features.CategoryJavaScript},
	{regexp.MustCompile(`\bObject\.hasOwn\(`), "object-hasown", features.CategoryJavaScript},
	{regexp.MustCompile(`\bArray\.fromAsync\(`), "array-fromasync", features.CategoryJavaScript},
	{regexp.MustCompile(`\.replaceAll\(`), "string-replaceall", features.CategoryJavaScript},
	{regexp.MustCompile(`\bIntersectionObserver\b`), "intersection-observer", features.CategoryWebAPI},
	{regexp.MustCompile(`\bResizeObserver\b`), "resize-observer", features.CategoryWebAPI},
	{regexp.MustCompile(`\bnavigator\.clipboard\b`), "async-clipboard", features.CategoryWebAPI},
	{regexp.MustCompile(`\bnavigator\.gpu\b`), "webgpu-api", features.CategoryWebAPI},
	{regexp.MustCompile(`\bnavigator\.share\(`), "web-share-api", features.CategoryWebAPI},
	{regexp.MustCompile(`\bdocument\.startViewTransition\(`), "view-transitions", features.CategoryWebAPI},
}

var lineCommentPattern = regexp.MustCompile(`(?m)(^|[^:])//.*$`)

// JavaScript detects language features and web APIs in JS/TS source with
// regular expressions.
type JavaScript struct{}

func (JavaScript) Name() string { return "javascript" }

func (j JavaScript) Lint(eng *diagnostics.Engine, code string, in Input) ([]diagnostics.Diagnostic, error) {
	hits := j.scan(code, in.File, 0, newPositions(code))
	hits = append(hits, explicitHits(in)...)
	return checkHits(eng, hits)
}

func (JavaScript) scan(code, file string, base int, pos positions) []hit {
	code = blankComments(code)
	code = lineCommentPattern.ReplaceAllStringFunc(code, func(c string) string {
		b := []byte(c)
		for i := range b {
			if i == 0 && b[i] != '/' {
				continue
			}
			b[i] = ' '
		}
		return string(b)
	})

	var hits []hit
	for _, p := range jsPatterns {
		for _, m := range p.pattern.FindAllStringIndex(code, -1) {
			line, col := pos.at(base + m[0])
			hits = append(hits, hit{identifier: p.id, loc: diagnostics.Location{
				File: file, Line: line, Column: col,
				Category: p.category, Type: "js-api", Value: code[m[0]:m[1]],
			}})
		}
	}
	sortHits(hits)
	return hits
}
