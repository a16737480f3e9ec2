package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
	"github.com/mgutz/ansi"

	"github.com/compatguard/cli/pkg/compliance"
	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/scanner"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

func severityColor(s diagnostics.Severity) string {
	if s == diagnostics.SeverityError {
		return "red+b"
	}
	return "yellow"
}

func colorize(s, style string, color bool) string {
	if !color {
		return s
	}
	return ansi.Color(s, style)
}

// PrintDiagnostics writes one block per diagnostic in file order.
func PrintDiagnostics(w io.Writer, diags []diagnostics.Diagnostic, color bool) {
	for _, d := range diags {
		pos := d.Location.File
		if pos == "" {
			pos = "<input>"
		}
		if d.Location.Line > 0 {
			pos = fmt.Sprintf("%s:%d:%d", pos, d.Location.Line, d.Location.Column)
		}

		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			pos,
			colorize(fmt.Sprintf("%-7s", d.Severity), severityColor(d.Severity), color),
			d.Message,
			colorize("["+d.FeatureID+"]", "cyan", color),
		)
		for _, s := range d.Suggestions {
			fmt.Fprintf(w, "    - %s\n", s)
		}
		if d.QuickFix != "" {
			fmt.Fprintf(w, "    fix: %s\n", d.QuickFix)
		}
	}
}

// PrintScan writes the human readable scan report.
func PrintScan(w io.Writer, res *scanner.Result, color bool) {
	PrintDiagnostics(w, res.Diagnostics, color)
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}

	header := fmt.Sprintf("Baseline compliance: %.1f%%", res.Report.Compliance)
	if color {
		header = headerStyle.Render(header)
	}
	fmt.Fprintln(w, header)

	cats := make([]string, 0, len(res.Report.Categories))
	for c := range res.Report.Categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		ct := res.Report.Categories[features.Category(c)]
		if ct.Total == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-11s %5.1f%%  (%d/%d files with issues)\n", c, ct.Score(), ct.Issues, ct.Total)
	}

	footer := fmt.Sprintf("%s. Scanned %d files in %s.",
		compliance.SummarizeReport(res.Report), len(res.Files), strings.ToLower(units.HumanDuration(res.Duration)))
	if color {
		footer = dimStyle.Render(footer)
	}
	fmt.Fprintln(w, footer)
}

func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
