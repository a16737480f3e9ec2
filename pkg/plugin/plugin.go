package plugin

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/linter"
	"github.com/compatguard/cli/pkg/rules"
)

// Warning is one finding reported back to the build tool.
type Warning struct {
	Text string               `json:"text"`
	Loc  diagnostics.Location `json:"loc"`
}

// TransformResult is the augmented module returned by Transform.
type TransformResult struct {
	Code     string    `json:"code"`
	Warnings []Warning `json:"warnings"`
}

type Plugin struct {
	linter *linter.Linter
}

// New returns a hook backed by l. l must be initialized before Transform is
// called.
func New(l *linter.Linter) *Plugin {
	return &Plugin{linter: l}
}

var supported = map[string]linter.FileType{
	".js":   linter.FileTypeJavaScript,
	".jsx":  linter.FileTypeJavaScript,
	".mjs":  linter.FileTypeJavaScript,
	".ts":   linter.FileTypeTypeScript,
	".tsx":  linter.FileTypeTypeScript,
	".css":  linter.FileTypeCSS,
	".html": linter.FileTypeHTML,
}

// Transform lints code for the module id. It returns nil when the module is
// not a supported type or has no findings, in which case the host must use
// the code unchanged.
func (p *Plugin) Transform(code, id string) (*TransformResult, error) {
	ft, ok := supported[strings.ToLower(filepath.Ext(stripQuery(id)))]
	if !ok {
		return nil, nil
	}

	res, err := p.linter.Lint(code, string(ft), rules.Input{File: id})
	if err != nil {
		return nil, err
	}
	if len(res.Diagnostics) == 0 {
		return nil, nil
	}

	messages := make([]string, 0, len(res.Diagnostics))
	warnings := make([]Warning, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		messages = append(messages, fmt.Sprintf("Baseline Warning in %s: %s", id, d.Message))
		warnings = append(warnings, Warning{Text: d.Message, Loc: d.Location})
	}

	return &TransformResult{
		Code:     banner(ft, messages) + code,
		Warnings: warnings,
	}, nil
}

func banner(ft linter.FileType, messages []string) string {
	switch ft {
	case linter.FileTypeCSS:
		var b strings.Builder
		for _, m := range messages {
			fmt.Fprintf(&b, "/* %s */\n", strings.ReplaceAll(m, "*/", "* /"))
		}
		return b.String()
	case linter.FileTypeHTML:
		var b strings.Builder
		for _, m := range messages {
			fmt.Fprintf(&b, "<!-- %s -->\n", strings.ReplaceAll(m, "--", "- -"))
		}
		return b.String()
	}

	literal, _ := json.Marshal(strings.Join(messages, "\n"))
	return fmt.Sprintf("console.warn(%s);\n", literal)
}

// stripQuery drops the "?query" suffix bundlers append to module ids.
func stripQuery(id string) string {
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		return id[:i]
	}
	return id
}
