package features

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

// Status is a feature's Baseline availability tier.
type Status string

const (
	Widely      Status = "widely"
	Newly       Status = "newly"
	Limited     Status = "limited"
	NotBaseline Status = "notBaseline"

	// Unknown is never stored in a registry. The resolver returns it for
	// identifiers it cannot match.
	Unknown Status = "unknown"
)

// Rank orders statuses from lowest risk (widely) to highest (notBaseline).
// Unknown ranks between limited and notBaseline.
func (s Status) Rank() int {
	switch s {
	case Widely:
		return 0
	case Newly:
		return 1
	case Limited:
		return 2
	case Unknown:
		return 3
	case NotBaseline:
		return 4
	}
	return 3
}

func (s Status) Label() string {
	switch s {
	case Widely:
		return "Widely Available"
	case Newly:
		return "Newly Available"
	case Limited:
		return "Limited Availability"
	case NotBaseline:
		return "Not Baseline"
	}
	return "Unknown"
}

func (s Status) Valid() bool {
	switch s {
	case Widely, Newly, Limited, NotBaseline:
		return true
	}
	return false
}

// ParseStatus accepts both the registry spelling and the web-features
// spelling (high, low, false).
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "widely", "high":
		return Widely, nil
	case "newly", "low":
		return Newly, nil
	case "limited":
		return Limited, nil
	case "notbaseline", "false", "not-baseline":
		return NotBaseline, nil
	}
	return Unknown, fmt.Errorf("unknown baseline status %q", s)
}

// Category groups features the way compliance reports break them down.
type Category string

const (
	CategoryCSS        Category = "css"
	CategoryJavaScript Category = "javascript"
	CategoryHTML       Category = "html"
	CategoryWebAPI     Category = "webApi"
)

var Categories = []Category{CategoryCSS, CategoryJavaScript, CategoryHTML, CategoryWebAPI}

// Record is one web platform feature and its Baseline classification.
type Record struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Status         Status            `json:"status"`
	AvailableSince time.Time         `json:"availableSince,omitempty"`
	Category       Category          `json:"category,omitempty"`
	Alternatives   []string          `json:"alternatives,omitempty"`
	Polyfills      []string          `json:"polyfills,omitempty"`
	MigrationSteps []string          `json:"migrationSteps,omitempty"`
	MDNURL         string            `json:"mdnUrl,omitempty"`
	Support        map[string]string `json:"support,omitempty"`
}

// Year returns the year the feature reached its status, or 0 if unknown.
func (r Record) Year() int {
	if r.AvailableSince.IsZero() {
		return 0
	}
	return r.AvailableSince.Year()
}

// SupportedIn reports whether the given browser version meets the minimum
// version recorded for that browser. Browsers without data are unsupported.
func (r Record) SupportedIn(browser, v string) (bool, error) {
	minimum, ok := r.Support[strings.ToLower(browser)]
	if !ok || minimum == "" {
		return false, nil
	}

	want, err := version.NewVersion(strings.TrimPrefix(minimum, "≤"))
	if err != nil {
		return false, fmt.Errorf("invalid %s version %q for %s: %w", browser, minimum, r.ID, err)
	}
	have, err := version.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return have.GreaterThanOrEqual(want), nil
}

func (r Record) clone() Record {
	out := r
	out.Alternatives = cloneStrings(r.Alternatives)
	out.Polyfills = cloneStrings(r.Polyfills)
	out.MigrationSteps = cloneStrings(r.MigrationSteps)
	if r.Support != nil {
		out.Support = make(map[string]string, len(r.Support))
		for k, v := range r.Support {
			out.Support[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// dedupe keeps the first occurrence of each value.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseSince accepts "2023", "2023-06" or "2023-06-01".
func ParseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
