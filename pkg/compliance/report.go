package compliance

import (
	"fmt"
	"math"
	"strings"

	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/resolver"
)

// CategoryTotals is the number of units scanned in a category and how many
// of them had at least one finding.
type CategoryTotals struct {
	Total  int `json:"total"`
	Issues int `json:"issues"`
}

// Score is the category's compliance percentage.
func (c CategoryTotals) Score() float64 {
	return score(c.Total, c.Issues)
}

type Categories map[features.Category]CategoryTotals

// Report is the aggregated view of one scan.
type Report struct {
	Compliance     float64                      `json:"compliance"`
	TotalIssues    int                          `json:"totalIssues"`
	CriticalIssues int                          `json:"criticalIssues"`
	Categories     Categories                   `json:"categories"`
	BySeverity     map[diagnostics.Severity]int `json:"bySeverity"`
	ByRisk         map[resolver.RiskLevel]int   `json:"byRisk"`
}

// Units maps each scanned file to the categories it counts toward. The
// first category is the file's primary one.
type Units map[string][]features.Category

// Totals counts units per category.
func (u Units) Totals() map[features.Category]int {
	totals := map[features.Category]int{}
	for _, cats := range u {
		for _, c := range cats {
			totals[c]++
		}
	}
	return totals
}

// chargeTo picks the unit a finding in file with category c belongs to. A
// finding in a category the file is not a unit of, such as inline CSS in an
// HTML page, is charged to the file's primary category.
func (u Units) chargeTo(file string, c features.Category) (features.Category, bool) {
	cats := u[file]
	if len(cats) == 0 {
		return "", false
	}
	for _, fc := range cats {
		if fc == c {
			return c, true
		}
	}
	return cats[0], true
}

// Build counts, per category, the distinct units (files) with findings.
// Findings in files that are not units are ignored.
func Build(diags []diagnostics.Diagnostic, units Units) Categories {
	totals := units.Totals()
	cats := make(Categories, len(features.Categories))
	for _, c := range features.Categories {
		cats[c] = CategoryTotals{Total: totals[c]}
	}
	for c, n := range totals {
		if _, ok := cats[c]; !ok {
			cats[c] = CategoryTotals{Total: n}
		}
	}

	type unit struct {
		file     string
		category features.Category
	}
	seen := map[unit]struct{}{}
	for _, d := range diags {
		category, ok := units.chargeTo(d.Location.File, d.Location.Category)
		if !ok {
			continue
		}
		u := unit{file: d.Location.File, category: category}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}

		ct := cats[category]
		ct.Issues++
		cats[category] = ct
	}
	return cats
}

// Score computes (total - issues) / total * 100 across all categories,
// rounded to one decimal. An empty scan scores 100.
func Score(cats Categories) float64 {
	total, issues := 0, 0
	for _, c := range cats {
		total += c.Total
		issues += c.Issues
	}
	return score(total, issues)
}

func score(total, issues int) float64 {
	if total <= 0 {
		return 100
	}
	if issues > total {
		issues = total
	}
	return math.Round(float64(total-issues)/float64(total)*1000) / 10
}

// NewReport aggregates diags against the scanned units. Findings at or above
// failOn count as critical.
func NewReport(diags []diagnostics.Diagnostic, units Units, failOn diagnostics.Severity) *Report {
	cats := Build(diags, units)
	summary := diagnostics.Summarize(diags)

	byRisk := map[resolver.RiskLevel]int{}
	critical := 0
	for _, d := range diags {
		byRisk[resolver.Risk(d.Status)]++
		if isCritical(d, failOn) {
			critical++
		}
	}

	return &Report{
		Compliance:     Score(cats),
		TotalIssues:    len(diags),
		CriticalIssues: critical,
		Categories:     cats,
		BySeverity:     summary.BySeverity,
		ByRisk:         byRisk,
	}
}

func isCritical(d diagnostics.Diagnostic, failOn diagnostics.Severity) bool {
	return d.Severity.Rank() >= failOn.Rank()
}

// HasCriticalIssues reports whether any finding is at or above failOn.
func HasCriticalIssues(diags []diagnostics.Diagnostic, failOn diagnostics.Severity) bool {
	for _, d := range diags {
		if isCritical(d, failOn) {
			return true
		}
	}
	return false
}

func SummarizeReport(report *Report) string {
	if report == nil || report.TotalIssues == 0 {
		return "No compatibility issues found"
	}

	summary := fmt.Sprintf("%d issues found", report.TotalIssues)
	details := make([]string, 0, 2)

	if n := report.BySeverity[diagnostics.SeverityError]; n > 0 {
		details = append(details, fmt.Sprintf("%d errors", n))
	}
	if n := report.BySeverity[diagnostics.SeverityWarning]; n > 0 {
		details = append(details, fmt.Sprintf("%d warnings", n))
	}

	if len(details) == 0 {
		return summary
	}

	return fmt.Sprintf("%s (%s)", summary, strings.Join(details, ", "))
}
