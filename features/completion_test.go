package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branchscript-editor/parser"
)

func complete(t *testing.T, text string, line, char int) []CompletionItem {
	t.Helper()
	return NewProvider(nil).Completion(analyze(t, text), parser.Position{Line: line, Character: char})
}

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestCompletionCommands(t *testing.T) {
	items := complete(t, "=== s\n~se", 1, 3)

	require.NotEmpty(t, items)
	assert.Equal(t, "set", items[0].Label, "closest match first")
	assert.Contains(t, labels(items), "setif")
	assert.NotContains(t, labels(items), "once")
	assert.Equal(t, CompletionKeyword, items[0].Kind)
	assert.Equal(t, "mutation", items[0].Detail)

	t.Logf("✅ Comandi: %v", labels(items))
}

func TestCompletionAllCommands(t *testing.T) {
	items := complete(t, "=== s\n~", 1, 1)
	assert.Equal(t, []string{"call", "disabled", "if", "ifd", "once", "set", "setif"}, labels(items))
}

func TestCompletionJumpTargets(t *testing.T) {
	text := "=== s\n* a\n= door\n*# secret\n> d"
	items := complete(t, text, 4, 3)

	assert.Equal(t, []string{"end", "door"}, labels(items))
	assert.Equal(t, CompletionConstant, items[0].Kind)
	assert.Equal(t, CompletionReference, items[1].Kind)

	all := labels(complete(t, text, 4, 2))
	assert.Subset(t, all, []string{"door", "secret", "start", "end", "back", "backonce", "startonce"})
	assert.Len(t, all, 7, "the pseudo start entry is listed once")
}

func TestCompletionJumpOtherStory(t *testing.T) {
	text := "=== one\n* a\n= door\n=== two\n* b\n>> "
	items := complete(t, text, 5, 3)
	assert.NotContains(t, labels(items), "door", "ids are scoped per story")
}

func TestCompletionBracketKeywords(t *testing.T) {
	items := complete(t, "=== s\nSome text [e", 1, 12)
	assert.Equal(t, []string{"end", "else", "endif", "elseif"}, labels(items))
}

func TestCompletionVariables(t *testing.T) {
	items := complete(t, "=== s\n[if p", 1, 5)
	require.Len(t, items, 1)
	assert.Equal(t, "p_", items[0].Label)
	assert.Equal(t, CompletionVariable, items[0].Kind)

	items = complete(t, "=== s\n~if g_gold > 1 and ", 1, 23)
	assert.Len(t, items, 8, "every prefix after a blank")

	assert.Empty(t, complete(t, "=== s\n~if g_", 1, 6), "prefix already typed")
	assert.Empty(t, complete(t, "=== s\n~disabled x", 1, 11), "flags take no expression")
}

func TestCompletionNothing(t *testing.T) {
	assert.Empty(t, complete(t, "=== s\nPlain text", 1, 5))
	assert.Empty(t, complete(t, "=== s", 7, 0))
	assert.Nil(t, NewProvider(nil).Completion(nil, parser.Position{}))

	assert.NotPanics(t, func() {
		assert.Empty(t, complete(t, "=== s\n~se", 1, -1))
		assert.Empty(t, complete(t, "=== s\n* A\n  > d", 2, -5))
	})
}
