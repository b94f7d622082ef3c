package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branchscript-editor/parser"
)

// ============================================
// Test: esempi di riferimento
// ============================================

func TestAnalyzeCleanDocument(t *testing.T) {
	res := Analyze("=== t\n~if age >= 10\nSome text")

	assert.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Document)
	assert.Len(t, res.Document.Stories, 1)

	t.Log("✅ Nessuna diagnostica")
}

func TestAnalyzeMissingParen(t *testing.T) {
	res := Analyze("=== t\n~if (age >= 10\nSome text")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, parser.SeverityError, res.Diagnostics[0].Severity)
	assert.Contains(t, res.Diagnostics[0].Message, "Unbalanced parentheses")

	t.Logf("✅ %s", res.Diagnostics[0].Message)
}

func TestAnalyzeUnclosedBlock(t *testing.T) {
	res := Analyze("=== t\n[if c]\ntext")

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, parser.SeverityError, d.Severity)
	assert.Contains(t, d.Message, "Unclosed")
	assert.Equal(t, 1, d.Range.Start.Line)

	t.Logf("✅ %s", d.Message)
}

func TestAnalyzeDuplicateID(t *testing.T) {
	res := Analyze("=== t\n* Choice\n  = sameId\n* Choice\n  = sameId")

	var dups []parser.Diagnostic
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "Duplicate choice ID") {
			dups = append(dups, d)
		}
	}
	require.Len(t, dups, 1)
	assert.Equal(t, parser.SeverityError, dups[0].Severity)

	want := parser.LineRange(4, 4, 10)
	if diff := cmp.Diff(want, dups[0].Range); diff != "" {
		t.Errorf("duplicate range mismatch (-want +got):\n%s", diff)
	}

	t.Logf("✅ %s", dups[0].Message)
}

// ============================================
// Test: aggregazione
// ============================================

func TestAnalyzeStageOrder(t *testing.T) {
	text := "~disabled\n=== t\n* \n[else]\n~iff x"
	res := Analyze(text)

	got := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		got = append(got, d.Code)
	}
	want := []string{
		parser.CodeCommandTypo, // parser
		CodeBranchOutsideBlock, // blocchi
		CodeEmptyChoice,        // lint
		CodeDocumentDisabled,   // ~disabled
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}

	t.Logf("✅ Ordine delle fasi: %v", got)
}

func TestAnalyzeDisabledIsInformation(t *testing.T) {
	res := Analyze("~disabled\n=== s")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, parser.SeverityInformation, res.Diagnostics[0].Severity)
	assert.Equal(t, parser.LineRange(0, 0, 9), res.Diagnostics[0].Range)
	assert.False(t, res.HasErrors())

	t.Log("✅ Documento disabilitato")
}

func TestAnalyzeMaxDiagnostics(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("=== s\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "~nope %d\n", i)
	}

	res := NewAnalyzer(Options{MaxDiagnostics: 5}).Analyze(sb.String())
	require.Len(t, res.Diagnostics, 5)
	assert.Equal(t, "Unknown command '~nope'", res.Diagnostics[0].Message)
	assert.Equal(t, 1, res.Diagnostics[0].Range.Start.Line)

	unlimited := NewAnalyzer(Options{MaxDiagnostics: -1}).Analyze(sb.String())
	assert.Len(t, unlimited.Diagnostics, 20)

	t.Log("✅ Limite delle diagnostiche")
}

func TestAnalyzeStagePanicIsIsolated(t *testing.T) {
	a := NewAnalyzer(Options{})
	for i := range a.stages {
		if a.stages[i].name == "bracket validator" {
			a.stages[i].run = func(string, *Result) { panic("boom") }
		}
	}

	res := a.Analyze("=== s\n~iff x")

	var internal []parser.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == CodeInternalError {
			internal = append(internal, d)
		}
	}
	require.Len(t, internal, 1)
	assert.Equal(t, "Internal error in bracket validator: boom", internal[0].Message)
	assert.Equal(t, parser.Range{}, internal[0].Range)

	// le altre fasi hanno comunque prodotto i loro risultati
	assert.NotNil(t, res.Document)
	assert.Equal(t, 2, res.Count(parser.SeverityError), "the typo is still reported")

	t.Log("✅ Panic isolato in una sola diagnostica")
}

func TestAnalyzeParsePanicLeavesNilDocument(t *testing.T) {
	a := NewAnalyzer(Options{})
	a.stages[0].run = func(string, *Result) { panic("parse") }

	res := a.Analyze("=== s")
	assert.Nil(t, res.Document)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, CodeInternalError, res.Diagnostics[0].Code)

	t.Log("✅ Documento nil dopo un panic del parser")
}

func TestNormalizeClampsRanges(t *testing.T) {
	diags := normalize([]parser.Diagnostic{
		{Range: parser.Range{Start: parser.Position{Line: -1, Character: -3}, End: parser.Position{Line: 0, Character: 2}}},
		{Range: parser.LineRange(3, 8, 2)},
	})

	want := []parser.Range{
		parser.LineRange(0, 0, 2),
		parser.LineRange(3, 8, 8),
	}
	got := []parser.Range{diags[0].Range, diags[1].Range}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalize mismatch (-want +got):\n%s", diff)
	}

	t.Log("✅ Intervalli normalizzati")
}

func TestAnalyzeBlocksExposed(t *testing.T) {
	res := Analyze("=== s\n[if p_a]\nx\n[endif]")

	want := []BracketBlock{{
		Keyword: "if",
		Open:    parser.LineRange(1, 0, 8),
		Close:   parser.LineRange(3, 0, 7),
	}}
	if diff := cmp.Diff(want, res.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}

	t.Log("✅ Blocchi esposti nel risultato")
}
