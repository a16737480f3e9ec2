package rules

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
)

var htmlElements = map[string]string{
	"dialog": "dialog",
	"search": "search",
}

var htmlAttributes = map[string]string{
	"popover":         "popover",
	"popovertarget":   "popover",
	"inert":           "inert",
	"shadowrootmode":  "declarative-shadow-dom",
	"shadowrootclone": "declarative-shadow-dom",
}

// HTML tokenizes markup, checks elements and attributes, and runs the CSS
// and JavaScript rules over inline <style> and <script> bodies.
type HTML struct {
	CSS        CSS
	JavaScript JavaScript
}

func (HTML) Name() string { return "html" }

func (h HTML) Lint(eng *diagnostics.Engine, code string, in Input) ([]diagnostics.Diagnostic, error) {
	hits, err := h.scan(code, in.File)
	if err != nil {
		return nil, err
	}
	hits = append(hits, explicitHits(in)...)
	return checkHits(eng, hits)
}

func (h HTML) scan(code, file string) ([]hit, error) {
	pos := newPositions(code)
	z := html.NewTokenizer(strings.NewReader(code))

	var hits []hit
	offset := 0
	rawParent := ""
	for {
		tt := z.Next()
		raw := len(z.Raw())
		start := offset
		offset += raw

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			sortHits(hits)
			return hits, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			line, col := pos.at(start)
			loc := diagnostics.Location{File: file, Line: line, Column: col, Category: features.CategoryHTML}

			if id, ok := htmlElements[tag]; ok {
				l := loc
				l.Type = "html-element"
				l.Value = "<" + tag + ">"
				hits = append(hits, hit{identifier: id, loc: l})
			}

			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				attr := string(key)
				id, ok := htmlAttributes[attr]
				if !ok && attr == "loading" && strings.EqualFold(string(val), "lazy") {
					id, ok = "loading-lazy", true
				}
				if ok {
					l := loc
					l.Type = "html-attribute"
					l.Value = attr
					hits = append(hits, hit{identifier: id, loc: l})
				}
			}

			if tt == html.StartTagToken && (tag == "style" || tag == "script") {
				rawParent = tag
			}

		case html.EndTagToken:
			rawParent = ""

		case html.TextToken:
			switch rawParent {
			case "style":
				hits = append(hits, h.CSS.scan(string(z.Raw()), file, start, pos)...)
			case "script":
				hits = append(hits, h.JavaScript.scan(string(z.Raw()), file, start, pos)...)
			}
		}
	}
}
