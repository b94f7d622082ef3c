package parser

import "fmt"

// Position è una posizione zero-based (riga, colonna in byte)
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range è un intervallo [Start, End) nel documento
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineRange crea un intervallo su una sola riga
func LineRange(line, start, end int) Range {
	return Range{
		Start: Position{Line: line, Character: start},
		End:   Position{Line: line, Character: end},
	}
}

// Contains verifica se la posizione cade nell'intervallo (estremo finale incluso)
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// Severity usa gli stessi valori del protocollo degli editor
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Codici stabili di classificazione emessi dal lexer e dal parser
const (
	CodeInvalidStoryHeader = "invalid-story-header"
	CodeUnknownCommand     = "unknown-command"
	CodeCommandTypo        = "command-typo"
	CodeMissingExpression  = "missing-expression"
	CodeUnbalancedParens   = "unbalanced-parens"
	CodeUnclosedComment    = "unclosed-comment"
	CodeHiddenChoiceID     = "hidden-choice-id"
	CodeDuplicateChoiceID  = "duplicate-choice-id"
	CodeUnknownJumpTarget  = "unknown-jump-target"
	CodeOrphanedChoice     = "orphaned-choice"
	CodeOrphanedJump       = "orphaned-jump"
	CodeContentBeforeStory = "content-before-story"
)

// Diagnostic è un valore puro: nessun riferimento all'albero
type Diagnostic struct {
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d %s [%s] %s", d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Code, d.Message)
}

func newDiagnostic(sev Severity, rng Range, code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Range:    rng,
		Severity: sev,
		Code:     code,
	}
}
