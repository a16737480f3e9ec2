package linter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/compatguard/cli/pkg/debuglog"
	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/resolver"
	"github.com/compatguard/cli/pkg/rules"
)

// ErrNotReady is returned by Lint before Initialize has completed.
var ErrNotReady = errors.New("linter is not initialized")

const DefaultLoadTimeout = 30 * time.Second

type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// Result is the outcome of one Lint call.
type Result struct {
	FileType       string                   `json:"fileType"`
	File           string                   `json:"file,omitempty"`
	Diagnostics    []diagnostics.Diagnostic `json:"diagnostics"`
	Summary        diagnostics.Summary      `json:"summary"`
	Timestamp      time.Time                `json:"timestamp"`
	BaselineTarget int                      `json:"baselineTarget"`
}

// Linter wires a feature registry and resolver to one rule per file type.
type Linter struct {
	ruleCtx     diagnostics.RuleContext
	source      features.Source
	loadTimeout time.Duration
	now         func() time.Time
	dispatch    map[FileType]rules.Rule
	fallback    rules.Rule

	init singleflight.Group

	mu      sync.RWMutex
	state   State
	service *resolver.Service
}

// apiCounter is implemented by sources that fetch features remotely.
type apiCounter interface {
	APICalls() int64
}

type Option func(*Linter)

func WithRuleContext(ctx diagnostics.RuleContext) Option {
	return func(l *Linter) { l.ruleCtx = ctx }
}

// WithSource sets where Initialize loads features from. Defaults to the
// built-in catalog.
func WithSource(src features.Source) Option {
	return func(l *Linter) { l.source = src }
}

func WithLoadTimeout(d time.Duration) Option {
	return func(l *Linter) { l.loadTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(l *Linter) { l.now = now }
}

// WithRule overrides the rule used for a file type.
func WithRule(ft FileType, rule rules.Rule) Option {
	return func(l *Linter) { l.dispatch[ft] = rule }
}

func New(opts ...Option) *Linter {
	l := &Linter{
		ruleCtx:     diagnostics.DefaultContext(),
		source:      features.Builtin(),
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		dispatch: map[FileType]rules.Rule{
			FileTypeCSS:        rules.CSS{},
			FileTypeJavaScript: rules.JavaScript{},
			FileTypeTypeScript: rules.JavaScript{},
			FileTypeHTML:       rules.HTML{},
			FileTypeGeneric:    rules.Generic{},
		},
		fallback: rules.Generic{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Linter) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Linter) RuleContext() diagnostics.RuleContext {
	return l.ruleCtx
}

// Initialize loads the feature registry. Concurrent callers share one load;
// calls after the linter is ready return immediately. A failed load leaves
// the linter uninitialized so it can be retried.
func (l *Linter) Initialize(ctx context.Context) error {
	if l.State() == Ready {
		return nil
	}

	_, err, _ := l.init.Do("initialize", func() (interface{}, error) {
		l.mu.Lock()
		if l.state == Ready {
			l.mu.Unlock()
			return nil, nil
		}
		l.state = Initializing
		l.mu.Unlock()

		reg, err := l.load(ctx)

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.state = Uninitialized
			return nil, err
		}
		l.service = resolver.New(reg)
		if counter, ok := l.source.(apiCounter); ok {
			l.service.RecordAPICalls(counter.APICalls())
		}
		l.state = Ready
		debuglog.Log("linter ready with %d features (target %d/%s)", reg.Len(), l.ruleCtx.TargetYear, l.ruleCtx.TargetStatus)
		return nil, nil
	})
	return err
}

func (l *Linter) load(ctx context.Context) (*features.Registry, error) {
	if l.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.loadTimeout)
		defer cancel()
	}

	type loaded struct {
		reg *features.Registry
		err error
	}
	done := make(chan loaded, 1)
	go func() {
		reg, err := features.Build(ctx, l.source)
		done <- loaded{reg, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, pkgerrors.Wrap(res.err, "failed to initialize linter")
		}
		return res.reg, nil
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(ctx.Err(), "timed out loading feature registry")
	}
}

// Lint runs the rule for fileType over code. Unknown file types use the
// generic rule. Each call records into its own diagnostic engine, so
// concurrent calls do not share diagnostics.
func (l *Linter) Lint(code, fileType string, in rules.Input) (*Result, error) {
	l.mu.RLock()
	state, svc := l.state, l.service
	l.mu.RUnlock()
	if state != Ready {
		return nil, ErrNotReady
	}

	rule := l.ruleFor(fileType)
	eng := diagnostics.NewEngine(l.ruleCtx, diagnostics.WithClock(l.now)).Attach(svc)
	if _, err := rule.Lint(eng, code, in); err != nil {
		return nil, pkgerrors.Wrapf(err, "%s rule failed", rule.Name())
	}

	return &Result{
		FileType:       strings.ToLower(strings.TrimSpace(fileType)),
		File:           in.File,
		Diagnostics:    eng.Diagnostics(),
		Summary:        eng.Summary(),
		Timestamp:      l.now(),
		BaselineTarget: l.ruleCtx.TargetYear,
	}, nil
}

func (l *Linter) ruleFor(fileType string) rules.Rule {
	ft, _ := ParseFileType(fileType)
	if rule, ok := l.dispatch[ft]; ok {
		return rule
	}
	return l.fallback
}

// Service returns the resolver, or nil before the linter is ready.
func (l *Linter) Service() *resolver.Service {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.service
}

// Source returns the source the registry is loaded from.
func (l *Linter) Source() features.Source {
	return l.source
}

func (l *Linter) Registry() *features.Registry {
	if svc := l.Service(); svc != nil {
		return svc.Registry()
	}
	return nil
}

// Stats returns resolver statistics; zero before initialization.
func (l *Linter) Stats() resolver.Stats {
	if svc := l.Service(); svc != nil {
		return svc.Stats()
	}
	return resolver.Stats{}
}

// QuickLint builds a linter, initializes it and lints code once.
func QuickLint(ctx context.Context, code, fileType string, opts ...Option) (*Result, error) {
	l := New(opts...)
	if err := l.Initialize(ctx); err != nil {
		return nil, err
	}
	return l.Lint(code, fileType, rules.Input{})
}
