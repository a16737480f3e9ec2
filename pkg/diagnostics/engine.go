package diagnostics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/resolver"
)

// ErrNotInitialized is returned when a check runs before a resolver is attached.
var ErrNotInitialized = errors.New("diagnostic engine has no feature resolver attached")

// Resolver classifies feature identifiers.
type Resolver interface {
	GetFeatureStatus(identifier string) resolver.Result
}

// Engine owns the diagnostic list for one scan.
type Engine struct {
	ctx RuleContext

	mu          sync.Mutex
	resolver    Resolver
	now         func() time.Time
	lastStamp   int64
	diagnostics []Diagnostic
}

type Option func(*Engine)

// WithClock replaces time.Now for diagnostic timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithResolver(r Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func NewEngine(ctx RuleContext, opts ...Option) *Engine {
	if ctx.Framework == "" {
		ctx.Framework = "generic"
	}
	if ctx.TargetStatus == "" {
		ctx.TargetStatus = TargetHigh
	}
	e := &Engine{ctx: ctx, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attach wires the resolver used by CheckFeatureUsage.
func (e *Engine) Attach(r Resolver) *Engine {
	e.mu.Lock()
	e.resolver = r
	e.mu.Unlock()
	return e
}

func (e *Engine) Context() RuleContext {
	return e.ctx
}

// CheckFeatureUsage resolves identifier and records a diagnostic when the
// feature is not acceptable for the scan's Baseline target. It returns nil
// without error for acceptable features.
func (e *Engine) CheckFeatureUsage(identifier string, loc Location) (*Diagnostic, error) {
	e.mu.Lock()
	r := e.resolver
	e.mu.Unlock()
	if r == nil {
		return nil, ErrNotInitialized
	}

	res := r.GetFeatureStatus(identifier)
	if e.accepted(res) {
		return nil, nil
	}

	d := e.record(res, loc)
	return &d, nil
}

func (e *Engine) accepted(res resolver.Result) bool {
	if res.IsBaseline {
		return true
	}
	if e.ctx.TargetStatus != TargetLow || res.Status != features.Newly || res.Record == nil {
		return false
	}
	year := res.Record.Year()
	return year > 0 && year <= e.ctx.TargetYear
}

// severityFor maps limited to error and every other status to warning.
// notBaseline is intentionally not escalated.
func severityFor(status features.Status) Severity {
	if status == features.Limited {
		return SeverityError
	}
	return SeverityWarning
}

func (e *Engine) record(res resolver.Result, loc Location) Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	stamp := now.UnixNano()
	if stamp <= e.lastStamp {
		stamp = e.lastStamp + 1
	}
	e.lastStamp = stamp

	featureID := res.FeatureID()
	idPart := featureID
	if idPart == "" {
		idPart = "unknown"
	}

	if loc.Category == "" && res.Record != nil {
		loc.Category = res.Record.Category
	}

	d := Diagnostic{
		ID:          fmt.Sprintf("%s-%s-%d", e.ctx.Framework, idPart, stamp),
		FeatureID:   featureID,
		FeatureName: res.FeatureName(),
		Status:      res.Status,
		Severity:    severityFor(res.Status),
		Message:     fmt.Sprintf(`"%s" not in Baseline %d`, res.FeatureName(), e.ctx.TargetYear),
		Suggestions: res.Suggestions,
		Polyfills:   res.Polyfills,
		Migration:   res.Migration,
		Location:    loc,
		CreatedAt:   now,
	}
	if len(d.Suggestions) == 0 {
		d.Suggestions = []string{resolver.Advice(res.Status, d.FeatureName)}
	}
	if e.ctx.EnableQuickFixes && res.Record != nil && len(res.Record.Alternatives) > 0 {
		d.QuickFix = res.Record.Alternatives[0]
	}

	d = d.clone()
	e.diagnostics = append(e.diagnostics, d)
	return d.clone()
}

// Diagnostics returns a snapshot of the recorded diagnostics in insertion order.
func (e *Engine) Diagnostics() []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Diagnostic, len(e.diagnostics))
	for i, d := range e.diagnostics {
		out[i] = d.clone()
	}
	return out
}

// Clear empties the diagnostic list. Resolver statistics are untouched.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.diagnostics = nil
	e.mu.Unlock()
}

// Summary is recomputed from the current list on every call.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Summarize(e.diagnostics)
}
