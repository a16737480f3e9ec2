package diagnostics

import (
	"time"

	"github.com/compatguard/cli/pkg/features"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

func (s Severity) Rank() int {
	if s == SeverityError {
		return 1
	}
	return 0
}

// ParseSeverity returns SeverityWarning for anything other than "error".
func ParseSeverity(s string) Severity {
	if Severity(s) == SeverityError {
		return SeverityError
	}
	return SeverityWarning
}

// TargetStatus selects which Baseline tier a project targets. "high" only
// accepts widely available features. "low" also accepts newly available
// features that reached Baseline on or before the target year.
type TargetStatus string

const (
	TargetHigh TargetStatus = "high"
	TargetLow  TargetStatus = "low"
)

// RuleContext is the read-only configuration for one scan.
type RuleContext struct {
	Framework        string       `json:"framework"`
	TargetYear       int          `json:"targetYear"`
	TargetStatus     TargetStatus `json:"targetStatus"`
	EnableQuickFixes bool         `json:"enableQuickFixes"`
}

func DefaultContext() RuleContext {
	return RuleContext{
		Framework:        "generic",
		TargetYear:       2024,
		TargetStatus:     TargetHigh,
		EnableQuickFixes: true,
	}
}

// Location is where a feature was seen.
type Location struct {
	File     string            `json:"file,omitempty"`
	Line     int               `json:"line,omitempty"`
	Column   int               `json:"column,omitempty"`
	Category features.Category `json:"category,omitempty"`
	Type     string            `json:"type,omitempty"`
	Value    string            `json:"value,omitempty"`
}

// Diagnostic is one compatibility finding. Values handed out by the engine
// are copies; mutating them does not affect the engine.
type Diagnostic struct {
	ID          string          `json:"id"`
	FeatureID   string          `json:"featureId,omitempty"`
	FeatureName string          `json:"featureName"`
	Status      features.Status `json:"status"`
	Severity    Severity        `json:"severity"`
	Message     string          `json:"message"`
	Suggestions []string        `json:"suggestions"`
	Polyfills   []string        `json:"polyfills,omitempty"`
	Migration   []string        `json:"migration,omitempty"`
	QuickFix    string          `json:"quickFix,omitempty"`
	Location    Location        `json:"location"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (d Diagnostic) clone() Diagnostic {
	d.Suggestions = append([]string(nil), d.Suggestions...)
	if d.Suggestions == nil {
		d.Suggestions = []string{}
	}
	if d.Polyfills != nil {
		d.Polyfills = append([]string(nil), d.Polyfills...)
	}
	if d.Migration != nil {
		d.Migration = append([]string(nil), d.Migration...)
	}
	return d
}

// Summary is derived from a diagnostic list.
type Summary struct {
	Total      int                       `json:"total"`
	BySeverity map[Severity]int          `json:"bySeverity"`
	ByCategory map[features.Category]int `json:"byCategory"`
}

// CategoryOther collects diagnostics whose location has no category.
const CategoryOther features.Category = "other"

// Summarize counts diags by severity and category.
func Summarize(diags []Diagnostic) Summary {
	s := Summary{
		Total:      len(diags),
		BySeverity: map[Severity]int{SeverityError: 0, SeverityWarning: 0},
		ByCategory: map[features.Category]int{},
	}
	for _, d := range diags {
		s.BySeverity[d.Severity]++
		category := d.Location.Category
		if category == "" {
			category = CategoryOther
		}
		s.ByCategory[category]++
	}
	return s
}

// Merge adds other into s.
func (s *Summary) Merge(other Summary) {
	if s.BySeverity == nil {
		s.BySeverity = map[Severity]int{}
	}
	if s.ByCategory == nil {
		s.ByCategory = map[features.Category]int{}
	}
	s.Total += other.Total
	for k, v := range other.BySeverity {
		s.BySeverity[k] += v
	}
	for k, v := range other.ByCategory {
		s.ByCategory[k] += v
	}
}
