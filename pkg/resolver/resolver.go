package resolver

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/compatguard/cli/pkg/features"
)

// Confidence describes how sure the resolver is about a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match describes how an identifier was resolved.
type Match string

const (
	MatchExact Match = "exact"
	MatchFuzzy Match = "fuzzy"
	MatchNone  Match = "none"
)

const spellingHint = "Check feature name spelling"

// Result is the classification of one identifier. Unknown identifiers
// produce a Result with Status features.Unknown, never an error.
type Result struct {
	Identifier     string           `json:"identifier"`
	IsBaseline     bool             `json:"isBaseline"`
	Status         features.Status  `json:"status"`
	Record         *features.Record `json:"feature,omitempty"`
	AvailableSince time.Time        `json:"availableSince,omitempty"`
	Suggestions    []string         `json:"suggestions"`
	Polyfills      []string         `json:"polyfills,omitempty"`
	Migration      []string         `json:"migration,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Confidence     Confidence       `json:"confidence"`
	Match          Match            `json:"match"`
}

// FeatureName returns the resolved feature's name, or "Unknown".
func (r Result) FeatureName() string {
	if r.Record == nil || r.Record.Name == "" {
		return "Unknown"
	}
	return r.Record.Name
}

// FeatureID returns the resolved feature's id, or "" when unresolved.
func (r Result) FeatureID() string {
	if r.Record == nil {
		return ""
	}
	return r.Record.ID
}

// Stats are the resolver counters. They are only reset by building a new
// Service.
type Stats struct {
	Checks    int64 `json:"checks"`
	CacheHits int64 `json:"cacheHits"`
	APICalls  int64 `json:"apiCalls"`
	CacheSize int   `json:"cacheSize"`
}

// Service resolves feature identifiers against a sealed registry.
type Service struct {
	registry *features.Registry

	checks    atomic.Int64
	cacheHits atomic.Int64
	apiCalls  atomic.Int64
}

func New(registry *features.Registry) *Service {
	return &Service{registry: registry}
}

func (s *Service) Registry() *features.Registry {
	return s.registry
}

// GetFeatureStatus classifies identifier. An exact, case-insensitive id
// match wins; otherwise the first record in registry order whose id or name
// contains the identifier is used.
func (s *Service) GetFeatureStatus(identifier string) Result {
	s.checks.Add(1)

	trimmed := strings.TrimSpace(identifier)
	normalized := strings.ToLower(trimmed)

	if rec, ok := s.registry.Get(normalized); ok {
		s.cacheHits.Add(1)
		return found(trimmed, rec, MatchExact, ConfidenceHigh)
	}

	if rec, ok := s.registry.Match(normalized); ok {
		return found(trimmed, rec, MatchFuzzy, ConfidenceMedium)
	}

	return Result{
		Identifier:  trimmed,
		IsBaseline:  false,
		Status:      features.Unknown,
		Reason:      fmt.Sprintf("Feature %q not found", trimmed),
		Confidence:  ConfidenceLow,
		Suggestions: []string{spellingHint},
		Match:       MatchNone,
	}
}

func found(identifier string, rec features.Record, match Match, confidence Confidence) Result {
	suggestions := rec.Alternatives
	if suggestions == nil {
		suggestions = []string{}
	}
	return Result{
		Identifier:     identifier,
		IsBaseline:     rec.Status == features.Widely,
		Status:         rec.Status,
		Record:         &rec,
		AvailableSince: rec.AvailableSince,
		Suggestions:    suggestions,
		Polyfills:      rec.Polyfills,
		Migration:      rec.MigrationSteps,
		Confidence:     confidence,
		Match:          match,
	}
}

// RecordAPICalls adds n remote lookups to the apiCalls counter.
func (s *Service) RecordAPICalls(n int64) {
	s.apiCalls.Add(n)
}

func (s *Service) Stats() Stats {
	return Stats{
		Checks:    s.checks.Load(),
		CacheHits: s.cacheHits.Load(),
		APICalls:  s.apiCalls.Load(),
		CacheSize: s.registry.Len(),
	}
}
