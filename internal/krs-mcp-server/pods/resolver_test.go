package pods

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNames(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "web-1", want: []string{"web-1"}},
		{raw: "web-1, web-2", want: []string{"web-1", "web-2"}},
		{raw: "web-1 and web-2", want: []string{"web-1", "web-2"}},
		{raw: "web-1,web-2 and web-3 AND web-4", want: []string{"web-1", "web-2", "web-3", "web-4"}},
		{raw: " web-1 ,, web-1 ", want: []string{"web-1"}},
		{raw: "android and band", want: []string{"android", "band"}},
		{raw: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitNames(tt.raw))
		})
	}
}

func TestResolve(t *testing.T) {
	existing := []string{"web-1", "web-2", "database"}

	t.Run("exact match is deleted directly", func(t *testing.T) {
		res := Resolve("web-1", existing)
		assert.Equal(t, []string{"web-1"}, res.ToDelete)
		assert.Empty(t, res.Suggestions)
		assert.Empty(t, res.Unmatched)
	})

	t.Run("typo becomes a suggestion for the first closest name", func(t *testing.T) {
		res := Resolve("web-x", existing)
		assert.Empty(t, res.ToDelete)
		assert.Equal(t, []Suggestion{{Requested: "web-x", Suggested: "web-1"}}, res.Suggestions)
	})

	t.Run("nothing close enough is unmatched", func(t *testing.T) {
		res := Resolve("zzz", existing)
		assert.Empty(t, res.Suggestions)
		assert.Equal(t, []string{"zzz"}, res.Unmatched)
	})

	t.Run("mixed request", func(t *testing.T) {
		res := Resolve("web-2 and databse, qqq", existing)
		assert.Equal(t, []string{"web-2"}, res.ToDelete)
		assert.Equal(t, []Suggestion{{Requested: "databse", Suggested: "database"}}, res.Suggestions)
		assert.Equal(t, []string{"qqq"}, res.Unmatched)
	})
}

func TestClosestMatch(t *testing.T) {
	match, ok := ClosestMatch("webx", []string{"web-1", "web-2"}, SimilarityCutoff)
	require.True(t, ok)
	assert.Equal(t, "web-1", match)

	_, ok = ClosestMatch("webx", nil, SimilarityCutoff)
	assert.False(t, ok)

	assert.InDelta(t, 0.8, Similarity("web-1", "web-x"), 1e-9)
}

type fakeDeleter struct {
	calls    []string
	failures map[string]error
}

func (f *fakeDeleter) DeletePod(_ context.Context, _, name string) error {
	f.calls = append(f.calls, name)
	return f.failures[name]
}

func TestDelete(t *testing.T) {
	existing := []string{"web-1", "web-2", "web-3"}

	t.Run("exact names only", func(t *testing.T) {
		d := &fakeDeleter{failures: map[string]error{"web-2": errors.New("forbidden")}}
		result := Delete(context.Background(), d, "default", Resolve("web-1 and web-2", existing))

		assert.Equal(t, []string{"web-1", "web-2"}, d.calls)
		assert.Equal(t, []string{"web-1"}, result.Deleted)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "web-2", result.Failed[0].Name)
		assert.False(t, result.NeedsConfirmation())
		assert.Equal(t, "Pods deleted successfully: web-1\nFailed to delete pods: web-2 (forbidden)", result.Summary())
	})

	t.Run("suggestions are never deleted", func(t *testing.T) {
		d := &fakeDeleter{}
		result := Delete(context.Background(), d, "default", Resolve("web-x", existing))

		assert.Empty(t, d.calls)
		assert.True(t, result.NeedsConfirmation())
		assert.Equal(t, "Pod 'web-x' not found. Did you mean 'web-1'? Reply 'yes' to delete it.", result.Summary())
	})

	t.Run("unmatched names are attempted", func(t *testing.T) {
		d := &fakeDeleter{failures: map[string]error{"zzz": errors.New(`pods "zzz" not found`)}}
		result := Delete(context.Background(), d, "default", Resolve("zzz", existing))

		assert.Equal(t, []string{"zzz"}, d.calls)
		assert.Equal(t, `Failed to delete pods: zzz (pods "zzz" not found)`, result.Summary())
	})

	t.Run("nothing to do", func(t *testing.T) {
		result := Delete(context.Background(), &fakeDeleter{}, "default", Resolve("", existing))
		assert.Equal(t, "No pods were deleted.", result.Summary())
	})
}
