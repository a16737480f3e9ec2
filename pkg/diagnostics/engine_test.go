package diagnostics

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/resolver"
)

func testResolver(t *testing.T) *resolver.Service {
	t.Helper()
	reg, err := features.Build(context.Background(), features.Static(
		features.Record{ID: "gap", Name: "gap", Status: features.Widely, Category: features.CategoryCSS},
		features.Record{ID: "dialog", Name: "<dialog>", Status: features.Newly, AvailableSince: time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC), Category: features.CategoryHTML, Alternatives: []string{"div role=dialog"}, Polyfills: []string{"dialog-polyfill"}},
		features.Record{ID: "clamp-function", Name: "CSS clamp()", Status: features.Limited, Category: features.CategoryCSS},
		features.Record{ID: "anchor-positioning", Name: "Anchor positioning", Status: features.NotBaseline},
		features.Record{ID: "popover", Name: "Popover", Status: features.Newly, AvailableSince: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	))
	require.NoError(t, err)
	return resolver.New(reg)
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestCheckFeatureUsageRequiresResolver(t *testing.T) {
	e := NewEngine(DefaultContext())
	d, err := e.CheckFeatureUsage("gap", Location{})
	require.ErrorIs(t, err, ErrNotInitialized)
	require.Nil(t, d)
}

func TestWidelyProducesNothing(t *testing.T) {
	e := NewEngine(DefaultContext()).Attach(testResolver(t))
	d, err := e.CheckFeatureUsage("gap", Location{})
	require.NoError(t, err)
	require.Nil(t, d)
	require.Empty(t, e.Diagnostics())
}

func TestSeverityPolicy(t *testing.T) {
	tests := []struct {
		identifier string
		status     features.Status
		want       Severity
	}{
		{"clamp-function", features.Limited, SeverityError},
		{"dialog", features.Newly, SeverityWarning},
		{"anchor-positioning", features.NotBaseline, SeverityWarning},
		{"no-such-thing", features.Unknown, SeverityWarning},
	}

	e := NewEngine(DefaultContext()).Attach(testResolver(t))
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			d, err := e.CheckFeatureUsage(tt.identifier, Location{})
			require.NoError(t, err)
			require.NotNil(t, d)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.want, d.Severity)
		})
	}
}

func TestDiagnosticContent(t *testing.T) {
	ctx := RuleContext{Framework: "react", TargetYear: 2023, EnableQuickFixes: true}
	e := NewEngine(ctx, WithClock(fixedClock()), WithResolver(testResolver(t)))

	d, err := e.CheckFeatureUsage("dialog", Location{File: "index.html", Line: 3})
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, `"<dialog>" not in Baseline 2023`, d.Message)
	assert.Equal(t, "dialog", d.FeatureID)
	assert.True(t, strings.HasPrefix(d.ID, "react-dialog-"), d.ID)
	assert.Equal(t, []string{"div role=dialog"}, d.Suggestions)
	assert.Equal(t, []string{"dialog-polyfill"}, d.Polyfills)
	assert.Equal(t, "div role=dialog", d.QuickFix)
	assert.Equal(t, features.CategoryHTML, d.Location.Category, "category falls back to the record's")
	assert.Equal(t, "index.html", d.Location.File)

	u, err := e.CheckFeatureUsage("zzz", Location{})
	require.NoError(t, err)
	assert.Equal(t, `"Unknown" not in Baseline 2023`, u.Message)
	assert.Equal(t, "", u.FeatureID)
	assert.True(t, strings.HasPrefix(u.ID, "react-unknown-"), u.ID)
	assert.Equal(t, []string{"Check feature name spelling"}, u.Suggestions)
}

func TestQuickFixesDisabled(t *testing.T) {
	ctx := DefaultContext()
	ctx.EnableQuickFixes = false
	e := NewEngine(ctx).Attach(testResolver(t))

	d, err := e.CheckFeatureUsage("dialog", Location{})
	require.NoError(t, err)
	assert.Empty(t, d.QuickFix)
}

func TestSuggestionsNeverEmpty(t *testing.T) {
	e := NewEngine(DefaultContext()).Attach(testResolver(t))
	d, err := e.CheckFeatureUsage("clamp-function", Location{})
	require.NoError(t, err)
	require.NotEmpty(t, d.Suggestions)
	assert.Contains(t, d.Suggestions[0], "limited support")
}

func TestIDsUniqueWithFrozenClock(t *testing.T) {
	e := NewEngine(DefaultContext(), WithClock(fixedClock())).Attach(testResolver(t))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		d, err := e.CheckFeatureUsage("dialog", Location{})
		require.NoError(t, err)
		require.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestTargetStatusLow(t *testing.T) {
	ctx := DefaultContext()
	ctx.TargetStatus = TargetLow
	e := NewEngine(ctx).Attach(testResolver(t))

	d, err := e.CheckFeatureUsage("dialog", Location{})
	require.NoError(t, err)
	assert.Nil(t, d, "newly since 2022 is accepted for a low 2024 target")

	d, err = e.CheckFeatureUsage("popover", Location{})
	require.NoError(t, err)
	assert.NotNil(t, d, "newly since 2025 is after the target year")
}

func TestSnapshotAndClear(t *testing.T) {
	r := testResolver(t)
	e := NewEngine(DefaultContext()).Attach(r)

	_, _ = e.CheckFeatureUsage("dialog", Location{})
	_, _ = e.CheckFeatureUsage("clamp-function", Location{})

	first := e.Diagnostics()
	second := e.Diagnostics()
	require.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "dialog", first[0].FeatureID)

	first[0].Suggestions[0] = "mutated"
	assert.NotEqual(t, "mutated", e.Diagnostics()[0].Suggestions[0])

	checks := r.Stats().Checks
	e.Clear()
	assert.Empty(t, e.Diagnostics())
	assert.Equal(t, checks, r.Stats().Checks, "clear leaves resolver stats alone")
}

func TestSummary(t *testing.T) {
	e := NewEngine(DefaultContext()).Attach(testResolver(t))
	for _, id := range []string{"dialog", "clamp-function", "clamp-function", "zzz", "gap"} {
		_, err := e.CheckFeatureUsage(id, Location{})
		require.NoError(t, err)
	}

	s := e.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.BySeverity[SeverityError])
	assert.Equal(t, 2, s.BySeverity[SeverityWarning])

	sum := 0
	for _, n := range s.BySeverity {
		sum += n
	}
	assert.Equal(t, len(e.Diagnostics()), sum)

	assert.Equal(t, 2, s.ByCategory[features.CategoryCSS])
	assert.Equal(t, 1, s.ByCategory[features.CategoryHTML])
	assert.Equal(t, 1, s.ByCategory[CategoryOther])
}

func TestConcurrentChecksOnSharedEngine(t *testing.T) {
	e := NewEngine(DefaultContext()).Attach(testResolver(t))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.CheckFeatureUsage("dialog", Location{})
		}()
	}
	wg.Wait()

	diags := e.Diagnostics()
	require.Len(t, diags, 32)
	ids := map[string]bool{}
	for _, d := range diags {
		ids[d.ID] = true
	}
	assert.Len(t, ids, 32)
}

func TestSummaryMerge(t *testing.T) {
	var total Summary
	total.Merge(Summarize([]Diagnostic{{Severity: SeverityError, Location: Location{Category: features.CategoryCSS}}}))
	total.Merge(Summarize([]Diagnostic{{Severity: SeverityWarning}}))

	assert.Equal(t, 2, total.Total)
	assert.Equal(t, 1, total.BySeverity[SeverityError])
	assert.Equal(t, 1, total.ByCategory[CategoryOther])
}
