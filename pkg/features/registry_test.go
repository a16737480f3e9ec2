package features

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "dialog", Status: Newly}))

	err := reg.Register(Record{ID: "DIALOG", Status: Widely})
	var dup *DuplicateFeatureError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "DIALOG", dup.ID)

	rec, ok := reg.Get("dialog")
	require.True(t, ok)
	require.Equal(t, Newly, rec.Status, "duplicate must not overwrite")
}

func TestRegisterSealed(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "gap", Status: Widely}))
	reg.Seal()

	require.ErrorIs(t, reg.Register(Record{ID: "grid", Status: Widely}), ErrRegistrySealed)
	require.Equal(t, 1, reg.Len())
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	require.ErrorIs(t, reg.Register(Record{ID: "  ", Status: Widely}), ErrEmptyID)
	require.Error(t, reg.Register(Record{ID: "x", Status: Unknown}))
	require.Error(t, reg.Register(Record{ID: "x"}))
}

func TestGetIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "Aspect-Ratio", Name: "aspect-ratio", Status: Widely}))

	rec, ok := reg.Get("aspect-ratio")
	require.True(t, ok)
	require.Equal(t, "Aspect-Ratio", rec.ID, "stored case is preserved")

	_, ok = reg.Get("aspect")
	require.False(t, ok)
}

func TestAllKeepsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(Record{ID: id, Status: Widely}))
	}

	var ids []string
	for _, rec := range reg.All() {
		ids = append(ids, rec.ID)
	}
	require.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
}

func TestMatchFirstWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "container", Name: "Container queries", Status: Newly}))
	require.NoError(t, reg.Register(Record{ID: "container-style", Name: "Container style queries", Status: Limited}))

	rec, ok := reg.Match("contain")
	require.True(t, ok)
	require.Equal(t, "container", rec.ID)

	rec, ok = reg.Match("style queries")
	require.True(t, ok)
	require.Equal(t, "container-style", rec.ID)

	_, ok = reg.Match("")
	require.False(t, ok)
}

func TestRecordsAreCopies(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "dialog", Status: Newly, Alternatives: []string{"div"}}))

	rec, _ := reg.Get("dialog")
	rec.Alternatives[0] = "mutated"

	again, _ := reg.Get("dialog")
	require.Equal(t, "div", again.Alternatives[0])
}

func TestPolyfillsDeduplicated(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Record{ID: "at", Status: Newly, Polyfills: []string{"core-js", "shim", "core-js"}}))

	rec, _ := reg.Get("at")
	require.Equal(t, []string{"core-js", "shim"}, rec.Polyfills)
}

func TestQueries(t *testing.T) {
	reg, err := Build(context.Background(), Builtin())
	require.NoError(t, err)
	require.True(t, reg.Sealed())

	stats := reg.Statistics()
	require.Equal(t, reg.Len(), stats.Total)
	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	require.Equal(t, stats.Total, sum)

	for _, rec := range reg.ByStatus(Limited) {
		require.Equal(t, Limited, rec.Status)
	}
	for _, rec := range reg.ByCategory(CategoryHTML) {
		require.Equal(t, CategoryHTML, rec.Category)
	}
	require.NotEmpty(t, reg.Search("ARRAY"))
}

func TestBuildFailsOnDuplicate(t *testing.T) {
	_, err := Build(context.Background(), Static(
		Record{ID: "gap", Status: Widely},
		Record{ID: "gap", Status: Newly},
	))
	var dup *DuplicateFeatureError
	require.ErrorAs(t, err, &dup)
}

func TestBuildHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, Static(Record{ID: "gap", Status: Widely}))
	require.ErrorIs(t, err, context.Canceled)
}
