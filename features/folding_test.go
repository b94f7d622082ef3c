package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"branchscript-editor/analysis"
)

func TestFoldingRanges(t *testing.T) {
	res := analyze(t, sampleStory)
	got := NewProvider(nil).Folding(res)

	want := []FoldingRange{
		{StartLine: 0, EndLine: 13, Kind: "region"},
		{StartLine: 1, EndLine: 7, Kind: "region"},
		{StartLine: 9, EndLine: 11, Kind: "region"},
		{StartLine: 12, EndLine: 13, Kind: "comment"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("folding mismatch (-want +got):\n%s", diff)
	}
	t.Logf("✅ %d intervalli richiudibili", len(got))
}

func TestFoldingSkipsSingleLines(t *testing.T) {
	res := analyze(t, "=== s\n* a [if f_x]b[endif]\n/* c */")
	got := NewProvider(nil).Folding(res)

	want := []FoldingRange{{StartLine: 0, EndLine: 2, Kind: "region"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("folding mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldingWithoutDocument(t *testing.T) {
	p := NewProvider(nil)
	if got := p.Folding(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}

	// i blocchi restano disponibili anche senza albero
	res := &analysis.Result{Blocks: analysis.ValidateBrackets("[if a]\nx\n[endif]").Blocks}
	got := p.Folding(res)
	if len(got) != 1 || got[0].StartLine != 0 || got[0].EndLine != 2 {
		t.Errorf("Expected one block 0..2, got %v", got)
	}
}
