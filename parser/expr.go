package parser

import (
	"regexp"
	"strings"
)

const identPattern = `[A-Za-z0-9_][A-Za-z0-9_.\-]*`

var (
	identRegex          = regexp.MustCompile(`^` + identPattern + `$`)
	conditionalJumpExpr = regexp.MustCompile(`^if\s+(.+?)\s*\?\s*(` + identPattern + `)\s*:\s*(` + identPattern + `)\s*$`)
)

// IsIdentifier verifica la sintassi di un id di storia o di scelta
func IsIdentifier(s string) bool {
	return identRegex.MatchString(s)
}

// ParenIssue è un problema di bilanciamento trovato in un'espressione
type ParenIssue struct {
	// Offset del ")" in eccesso, relativo all'espressione
	Offset int
	// Missing è vero per le aperture rimaste senza chiusura a fine espressione
	Missing bool
	// Open è il numero di "(" non chiuse quando Missing è vero
	Open int
}

// CheckParens scorre l'espressione da sinistra a destra. Dopo una ")" in
// eccesso il contatore riparte da zero, così i problemi successivi vengono
// comunque segnalati.
func CheckParens(expr string) []ParenIssue {
	var issues []ParenIssue
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				issues = append(issues, ParenIssue{Offset: i})
				continue
			}
			depth--
		}
	}
	if depth > 0 {
		issues = append(issues, ParenIssue{Missing: true, Open: depth})
	}
	return issues
}

// TargetRef è un identificatore dentro la destinazione di un salto
type TargetRef struct {
	ID    string
	Start int
	End   int
}

// SplitJumpTarget estrae gli identificatori da risolvere.
// "if cond ? a : b" produce due operandi risolti in modo indipendente.
func SplitJumpTarget(target string) []TargetRef {
	if target == "" {
		return nil
	}
	if m := conditionalJumpExpr.FindStringSubmatchIndex(target); m != nil {
		return []TargetRef{
			{ID: target[m[4]:m[5]], Start: m[4], End: m[5]},
			{ID: target[m[6]:m[7]], Start: m[6], End: m[7]},
		}
	}
	return []TargetRef{{ID: target, Start: 0, End: len(target)}}
}

// IsConditionalTarget riconosce la forma "if cond ? a : b"
func IsConditionalTarget(target string) bool {
	return strings.HasPrefix(target, "if ") && conditionalJumpExpr.MatchString(target)
}
