package parser

import (
	"testing"
)

// ============================================
// Test: parentesi tonde
// ============================================

func TestCheckParens(t *testing.T) {
	tests := []struct {
		expr    string
		issues  int
		missing bool
	}{
		{"(a && (b || c))", 0, false},
		{"(a", 1, true},
		{"a)", 1, false},
		{"a) && (b", 2, true},
		{"))", 2, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		issues := CheckParens(tt.expr)
		if len(issues) != tt.issues {
			t.Errorf("%q: expected %d issues, got %d", tt.expr, tt.issues, len(issues))
			continue
		}
		if tt.issues > 0 && issues[len(issues)-1].Missing != tt.missing {
			t.Errorf("%q: expected missing=%v", tt.expr, tt.missing)
		}
	}

	t.Logf("✅ %d espressioni controllate", len(tests))
}

func TestCheckParensResetsAfterExtraClose(t *testing.T) {
	issues := CheckParens("a) (b")

	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].Offset != 1 || issues[0].Missing {
		t.Errorf("First issue should be the extra ')' at 1: %+v", issues[0])
	}
	if !issues[1].Missing || issues[1].Open != 1 {
		t.Errorf("Second issue should be one unclosed '(': %+v", issues[1])
	}

	t.Log("✅ Contatore azzerato dopo una ')' in eccesso")
}

// ============================================
// Test: destinazioni dei salti
// ============================================

func TestSplitJumpTarget(t *testing.T) {
	refs := SplitJumpTarget("if p_a > 1 ? left : right")
	if len(refs) != 2 {
		t.Fatalf("Expected 2 operands, got %d", len(refs))
	}
	if refs[0].ID != "left" || refs[1].ID != "right" {
		t.Errorf("Unexpected operands: %+v", refs)
	}
	target := "if p_a > 1 ? left : right"
	if target[refs[1].Start:refs[1].End] != "right" {
		t.Errorf("Offsets should point into the target")
	}

	if refs := SplitJumpTarget("hall"); len(refs) != 1 || refs[0].ID != "hall" {
		t.Errorf("Plain target should give one operand: %+v", refs)
	}
	if refs := SplitJumpTarget(""); refs != nil {
		t.Errorf("Empty target should give nothing")
	}
	if !IsConditionalTarget(target) || IsConditionalTarget("hall") {
		t.Error("IsConditionalTarget mismatch")
	}

	t.Log("✅ Destinazioni condizionali")
}

func TestIsIdentifier(t *testing.T) {
	valid := []string{"a", "intro_1", "chapter.2-b", "_x", "9lives"}
	invalid := []string{"", "-a", ".a", "a b", "a!"}

	for _, s := range valid {
		if !IsIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range invalid {
		if IsIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}

	t.Log("✅ Sintassi degli identificatori")
}

// ============================================
// Test: parentesi quadre
// ============================================

func TestClassifyBracket(t *testing.T) {
	tests := []struct {
		inner   string
		keyword string
		role    BracketRole
	}{
		{"if p_a > 1", "if", BracketOpen},
		{"IF x", "if", BracketOpen},
		{"random", "random", BracketOpen},
		{"else", "else", BracketMiddle},
		{"else if x", "elseif", BracketMiddle},
		{"elseif x", "elseif", BracketMiddle},
		{"or", "or", BracketMiddle},
		{"|", "|", BracketMiddle},
		{"endif", "endif", BracketClose},
		{" end ", "end", BracketClose},
		{"end now", "", BracketNone},
		{"link", "", BracketNone},
		{"", "", BracketNone},
	}

	for _, tt := range tests {
		keyword, role := ClassifyBracket(tt.inner)
		if keyword != tt.keyword || role != tt.role {
			t.Errorf("%q: expected %s/%v, got %s/%v", tt.inner, tt.keyword, tt.role, keyword, role)
		}
	}

	t.Logf("✅ %d parole chiave classificate", len(tests))
}

func TestScanBracketsOffsets(t *testing.T) {
	exprs := ScanBrackets(2, "a [if x] b [endif]", 4)

	if len(exprs) != 2 {
		t.Fatalf("Expected 2 expressions, got %d", len(exprs))
	}
	if exprs[0].Range != LineRange(2, 6, 12) {
		t.Errorf("Unexpected range for [if x]: %+v", exprs[0].Range)
	}
	if exprs[1].Range != LineRange(2, 15, 22) {
		t.Errorf("Unexpected range for [endif]: %+v", exprs[1].Range)
	}

	t.Log("✅ Offset delle espressioni tra parentesi")
}

// ============================================
// Test: commenti
// ============================================

func TestCommentTrackerSameLine(t *testing.T) {
	var tracker CommentTracker
	rest, offset, touched := tracker.Strip(0, "/* a */ /* b */ testo")

	if rest != " testo" || offset != 15 || !touched {
		t.Errorf("Unexpected strip: %q offset=%d touched=%v", rest, offset, touched)
	}
	if len(tracker.Blocks) != 2 || tracker.inBlock {
		t.Errorf("Expected 2 closed blocks")
	}

	t.Log("✅ Più commenti sulla stessa riga")
}

func TestCommentTrackerOnlyAtLineStart(t *testing.T) {
	var tracker CommentTracker
	rest, _, touched := tracker.Strip(0, "testo /* non un commento")

	if touched || rest != "testo /* non un commento" || tracker.inBlock {
		t.Errorf("A block comment should only open at the start of the content")
	}

	t.Log("✅ Commento solo a inizio riga")
}
