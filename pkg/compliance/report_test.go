package compliance

import (
	"testing"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
)

func diag(file string, category features.Category, severity diagnostics.Severity) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Severity: severity,
		Status:   features.Newly,
		Location: diagnostics.Location{File: file, Category: category},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		cats Categories
		want float64
	}{
		{
			name: "empty scan",
			cats: Categories{},
			want: 100,
		},
		{
			name: "no issues",
			cats: Categories{features.CategoryCSS: {Total: 10}},
			want: 100,
		},
		{
			name: "rounds to one decimal",
			cats: Categories{
				features.CategoryCSS:        {Total: 145, Issues: 3},
				features.CategoryJavaScript: {Total: 312, Issues: 7},
				features.CategoryHTML:       {Total: 45, Issues: 1},
				features.CategoryWebAPI:     {Total: 121, Issues: 2},
			},
			want: 97.9,
		},
		{
			name: "two thirds",
			cats: Categories{features.CategoryCSS: {Total: 3, Issues: 1}},
			want: 66.7,
		},
		{
			name: "all units failing",
			cats: Categories{features.CategoryHTML: {Total: 4, Issues: 4}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.cats); got != tt.want {
				t.Fatalf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func cssUnits(names ...string) Units {
	u := Units{}
	for _, n := range names {
		u[n] = []features.Category{features.CategoryCSS}
	}
	return u
}

func TestBuildCountsDistinctUnits(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diag("a.css", features.CategoryCSS, diagnostics.SeverityError),
		diag("a.css", features.CategoryCSS, diagnostics.SeverityWarning),
		diag("b.css", features.CategoryCSS, diagnostics.SeverityWarning),
		diag("app.js", features.CategoryJavaScript, diagnostics.SeverityWarning),
		diag("app.js", features.CategoryWebAPI, diagnostics.SeverityWarning),
		diag("x", "other", diagnostics.SeverityWarning),
	}
	units := cssUnits("a.css", "b.css", "c.css", "d.css")
	units["app.js"] = []features.Category{features.CategoryJavaScript, features.CategoryWebAPI}

	cats := Build(diags, units)
	if got := cats[features.CategoryCSS]; got.Total != 4 || got.Issues != 2 {
		t.Fatalf("css = %+v, want total 4 issues 2", got)
	}
	if got := cats[features.CategoryJavaScript].Issues; got != 1 {
		t.Fatalf("javascript issues = %d, want 1", got)
	}
	if got := cats[features.CategoryWebAPI].Issues; got != 1 {
		t.Fatalf("webApi issues = %d, want 1", got)
	}
	if _, ok := cats[features.CategoryHTML]; !ok {
		t.Fatal("expected html category to be present with zero totals")
	}
	if _, ok := cats["other"]; ok {
		t.Fatal("findings outside scanned units must not create categories")
	}
	if got := cats[features.CategoryCSS].Score(); got != 50 {
		t.Fatalf("css score = %v, want 50", got)
	}
}

func TestBuildChargesInlineFindingsToHostFile(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diag("index.html", features.CategoryCSS, diagnostics.SeverityError),
		diag("index.html", features.CategoryJavaScript, diagnostics.SeverityWarning),
	}
	units := Units{
		"a.css":      {features.CategoryCSS},
		"app.js":     {features.CategoryJavaScript, features.CategoryWebAPI},
		"index.html": {features.CategoryHTML},
	}

	cats := Build(diags, units)
	want := Categories{
		features.CategoryCSS:        {Total: 1},
		features.CategoryJavaScript: {Total: 1},
		features.CategoryWebAPI:     {Total: 1},
		features.CategoryHTML:       {Total: 1, Issues: 1},
	}
	for c, w := range want {
		if got := cats[c]; got != w {
			t.Errorf("%s = %+v, want %+v", c, got, w)
		}
	}
	if got := Score(cats); got != 75 {
		t.Fatalf("score = %v, want 75", got)
	}
}

func TestUnitsTotals(t *testing.T) {
	units := Units{
		"a.css":  {features.CategoryCSS},
		"app.ts": {features.CategoryJavaScript, features.CategoryWebAPI},
	}
	got := units.Totals()
	if got[features.CategoryCSS] != 1 || got[features.CategoryJavaScript] != 1 || got[features.CategoryWebAPI] != 1 {
		t.Fatalf("Totals() = %v", got)
	}
	if len(Units(nil).Totals()) != 0 {
		t.Fatal("nil units should have no totals")
	}
}

func TestNewReport(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diag("a.css", features.CategoryCSS, diagnostics.SeverityError),
		diag("b.css", features.CategoryCSS, diagnostics.SeverityWarning),
	}
	units := cssUnits("a.css", "b.css", "c.css", "d.css")
	report := NewReport(diags, units, diagnostics.SeverityError)

	if report.Compliance != 50 {
		t.Fatalf("compliance = %v, want 50", report.Compliance)
	}
	if report.TotalIssues != 2 || report.CriticalIssues != 1 {
		t.Fatalf("issues = %d critical = %d, want 2 and 1", report.TotalIssues, report.CriticalIssues)
	}
	if got := SummarizeReport(report); got != "2 issues found (1 errors, 1 warnings)" {
		t.Fatalf("unexpected summary: %q", got)
	}

	warnReport := NewReport(diags, units, diagnostics.SeverityWarning)
	if warnReport.CriticalIssues != 2 {
		t.Fatalf("critical with fail-on warning = %d, want 2", warnReport.CriticalIssues)
	}
}

func TestHasCriticalIssues(t *testing.T) {
	warnings := []diagnostics.Diagnostic{diag("a", features.CategoryCSS, diagnostics.SeverityWarning)}
	errors := append(warnings, diag("b", features.CategoryCSS, diagnostics.SeverityError))

	if HasCriticalIssues(nil, diagnostics.SeverityError) {
		t.Fatal("expected no critical issues for empty set")
	}
	if HasCriticalIssues(warnings, diagnostics.SeverityError) {
		t.Fatal("warnings are not critical when failing on errors")
	}
	if !HasCriticalIssues(warnings, diagnostics.SeverityWarning) {
		t.Fatal("warnings are critical when failing on warnings")
	}
	if !HasCriticalIssues(errors, diagnostics.SeverityError) {
		t.Fatal("expected errors to be critical")
	}
}

func TestSummarizeReportEmpty(t *testing.T) {
	if got := SummarizeReport(nil); got != "No compatibility issues found" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if got := SummarizeReport(&Report{}); got != "No compatibility issues found" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
