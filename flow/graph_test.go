package flow

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branchscript-editor/parser"
)

var mapStory = strings.Join([]string{
	"=== map",     // 0
	"* Go north",  // 1
	"= north",     // 2
	"** Climb",    // 3
	"= climb",     // 4
	"> treasure",  // 5
	"** Back",     // 6
	"> start",     // 7
	"* Go south",  // 8
	"= south",     // 9
	"> end",       // 10
	"*# treasure", // 11
	"> back",      // 12
	"*# secret",   // 13
	"> nowhere",   // 14
}, "\n")

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	doc := parser.Parse(mapStory)
	require.Len(t, doc.Stories, 1)
	return NewGraph(doc.Stories[0], nil)
}

func TestGraphEdges(t *testing.T) {
	g := newTestGraph(t)

	assert.Equal(t, []string{"start", "north", "climb", "south", "treasure", "secret"}, g.Nodes())

	want := []Edge{{To: "north", Line: 1}, {To: "south", Line: 8}}
	if diff := cmp.Diff(want, g.Edges(Start)); diff != "" {
		t.Errorf("edges from start (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"climb", "start"}, g.Targets("north"), "unnamed choices jump from their parent node")
	assert.Equal(t, []string{"treasure"}, g.Targets("climb"))
	assert.Empty(t, g.Targets("south"))
	assert.Equal(t, []string{"end"}, g.Terminals("south"))
	assert.Equal(t, []string{"back"}, g.Terminals("treasure"))

	t.Logf("✅ Grafo: %d nodi", len(g.Nodes()))
}

func TestValidatePath(t *testing.T) {
	g := newTestGraph(t)

	assert.Empty(t, g.ValidatePath([]string{"start", "north", "climb", "treasure"}))
	assert.Empty(t, g.ValidatePath([]string{"north", "start", "south"}), "jump back to start")

	errs := g.ValidatePath([]string{"start", "climb"})
	require.Len(t, errs, 1)
	assert.Equal(t, "Step 1→2: 'start' non porta a 'climb'. Destinazioni disponibili: [north south]", errs[0])

	errs = g.ValidatePath([]string{"start", "ghost"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Step 2: scelta 'ghost' non esiste", errs[0])

	res := g.CheckPath([]string{"start", "south"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	t.Log("✅ Validazione percorsi OK")
}

func TestSuggestedPaths(t *testing.T) {
	g := newTestGraph(t)

	got := g.GetSuggestedPaths(Start, 5)
	want := [][]string{
		{"start", "south"},
		{"start", "north", "climb", "treasure"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggested paths (-want +got):\n%s", diff)
	}

	got = g.GetSuggestedPaths(Start, 2)
	want = [][]string{{"start", "north"}, {"start", "south"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("depth 2 (-want +got):\n%s", diff)
	}

	assert.Empty(t, g.GetSuggestedPaths("ghost", 5))
	assert.Empty(t, g.GetSuggestedPaths(Start, 0))
}

func TestSuggestedPathsLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("=== wide\n")
	for i := 0; i < 15; i++ {
		sb.WriteString("* option\n= opt" + string(rune('a'+i)) + "\n")
	}
	g := NewGraph(parser.Parse(sb.String()).Stories[0], nil)

	assert.Len(t, g.GetSuggestedPaths(Start, 5), maxSuggestedPaths)
}

func TestUnreachableAndDangling(t *testing.T) {
	g := newTestGraph(t)

	reachable := g.Reachable()
	for _, id := range []string{"start", "north", "climb", "south", "treasure"} {
		assert.True(t, reachable[id], id)
	}
	assert.Equal(t, []string{"secret"}, g.Unreachable())
	assert.Equal(t, map[string][]string{"secret": {"nowhere"}}, g.Dangling())
}

func TestConditionalJumpEdges(t *testing.T) {
	doc := parser.Parse("=== s\n* a\n= left\n* b\n= right\n> if f_x ? left : end")
	g := NewGraph(doc.Stories[0], nil)

	assert.Equal(t, []string{"left"}, g.Targets("right"))
	assert.Equal(t, []string{"end"}, g.Terminals("right"))
	assert.Empty(t, g.Unreachable())
}
