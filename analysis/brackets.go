package analysis

import (
	"fmt"

	"branchscript-editor/parser"
)

// Codici dei blocchi condizionali
const (
	CodeUnmatchedClose     = "unmatched-block-close"
	CodeBranchOutsideBlock = "branch-outside-block"
	CodeUnclosedBlock      = "unclosed-block"
)

// BracketBlock è una coppia apertura/chiusura bilanciata
type BracketBlock struct {
	Keyword string       `json:"keyword"`
	Open    parser.Range `json:"open"`
	Close   parser.Range `json:"close"`
}

// BracketResult è l'esito del validatore dei blocchi
type BracketResult struct {
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	Blocks      []BracketBlock      `json:"blocks"`
}

type frame struct {
	expr parser.BracketExpr
}

// ValidateBrackets controlla l'annidamento dei blocchi [if]..[endif] sul
// testo grezzo. Non usa le righe del lexer perché un blocco può attraversare
// qualsiasi tipo di riga, commenti compresi.
func ValidateBrackets(text string) BracketResult {
	var (
		res     BracketResult
		stack   []frame
		tracker parser.CommentTracker
	)

	for lineNo, line := range parser.SplitLines(text) {
		rest, offset, _ := tracker.Strip(lineNo, line)
		rest = parser.StripLineComment(rest)

		for _, expr := range parser.ScanBrackets(lineNo, rest, offset) {
			switch expr.Role {
			case parser.BracketOpen:
				stack = append(stack, frame{expr: expr})
			case parser.BracketClose:
				if len(stack) == 0 {
					res.Diagnostics = append(res.Diagnostics, diagnostic(parser.SeverityError, expr.Range, CodeUnmatchedClose,
						fmt.Sprintf("Unmatched '[%s]': no matching open conditional block", expr.Inner)))
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				res.Blocks = append(res.Blocks, BracketBlock{Keyword: top.expr.Keyword, Open: top.expr.Range, Close: expr.Range})
			case parser.BracketMiddle:
				if len(stack) == 0 {
					res.Diagnostics = append(res.Diagnostics, diagnostic(parser.SeverityError, expr.Range, CodeBranchOutsideBlock,
						fmt.Sprintf("'[%s]' used outside of a conditional block", expr.Inner)))
				}
			}
		}
	}

	// Ogni blocco rimasto aperto ha la sua diagnostica
	for _, f := range stack {
		res.Diagnostics = append(res.Diagnostics, diagnostic(parser.SeverityError, f.expr.Range, CodeUnclosedBlock,
			fmt.Sprintf("Unclosed conditional block '[%s]': missing '[endif]'", f.expr.Inner)))
	}
	return res
}

func diagnostic(sev parser.Severity, rng parser.Range, code, message string) parser.Diagnostic {
	return parser.Diagnostic{Message: message, Range: rng, Severity: sev, Code: code}
}
