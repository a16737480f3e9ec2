package rules

import (
	"github.com/compatguard/cli/pkg/diagnostics"
)

// Input is the per-call context a rule receives with the source text.
type Input struct {
	// File is reported in diagnostic locations.
	File string
	// Features are identifiers already extracted by the caller. The generic
	// rule checks these; other rules also check them after their own
	// detection.
	Features []string
}

// Rule detects feature usage in one category of source text. Rules keep no
// state between calls; every finding is recorded on the engine passed in.
type Rule interface {
	Name() string
	Lint(eng *diagnostics.Engine, code string, in Input) ([]diagnostics.Diagnostic, error)
}

// Generic checks identifiers handed to it. It does not inspect source text.
type Generic struct{}

func (Generic) Name() string { return "generic" }

// CheckFeature resolves one identifier and returns the diagnostic, if any.
func (Generic) CheckFeature(eng *diagnostics.Engine, identifier string, loc diagnostics.Location) ([]diagnostics.Diagnostic, error) {
	d, err := eng.CheckFeatureUsage(identifier, loc)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	return []diagnostics.Diagnostic{*d}, nil
}

func (g Generic) Lint(eng *diagnostics.Engine, code string, in Input) ([]diagnostics.Diagnostic, error) {
	return checkHits(eng, explicitHits(in))
}

func explicitHits(in Input) []hit {
	hits := make([]hit, 0, len(in.Features))
	for _, id := range in.Features {
		hits = append(hits, hit{
			identifier: id,
			loc:        diagnostics.Location{File: in.File, Type: "feature"},
		})
	}
	return hits
}

// hit is one detected feature occurrence.
type hit struct {
	identifier string
	loc        diagnostics.Location
}

func checkHits(eng *diagnostics.Engine, hits []hit) ([]diagnostics.Diagnostic, error) {
	var g Generic
	var out []diagnostics.Diagnostic
	for _, h := range hits {
		diags, err := g.CheckFeature(eng, h.identifier, h.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, diags...)
	}
	return out, nil
}
