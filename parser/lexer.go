package parser

import (
	"regexp"
	"strings"

	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
)

// LexResult contiene le righe classificate e gli errori di sintassi
type LexResult struct {
	// Lines ha una voce per riga più il marcatore LineEOF finale
	Lines    []Line
	Errors   []Diagnostic
	Comments []Range
}

// Lexer classifica il testo riga per riga
type Lexer struct {
	format formats.ScriptFormat
}

// NewLexer crea un lexer; con format nil usa BranchScript
func NewLexer(format formats.ScriptFormat) *Lexer {
	if format == nil {
		format = branch.NewBranchFormat()
	}
	return &Lexer{format: format}
}

// Lex classifica il testo con il formato predefinito
func Lex(text string) *LexResult {
	return NewLexer(nil).Lex(text)
}

var (
	dividerRegex     = regexp.MustCompile(`^={4,}`)
	storyHeaderRegex = regexp.MustCompile(`^===\s*(` + identPattern + `)$`)
	commandRegex     = regexp.MustCompile(`^~([A-Za-z_]*)\s*(.*)$`)
	jumpRegex        = regexp.MustCompile(`^(>>|>!|>)\s*(.*)$`)
	choiceIDRegex    = regexp.MustCompile(`^=\s*(` + identPattern + `)$`)
	choiceRegex      = regexp.MustCompile(`^(\*+)(#)?\s*(.*)$`)
	hiddenIDRegex    = regexp.MustCompile(`^(` + identPattern + `)`)
)

// Lex classifica ogni riga. Non rifiuta mai una riga: quelle malformate
// diventano testo semplice.
func (l *Lexer) Lex(text string) *LexResult {
	raw := SplitLines(text)
	res := &LexResult{Lines: make([]Line, 0, len(raw)+1)}
	tracker := &CommentTracker{}

	for i, line := range raw {
		rest, offset, touched := tracker.Strip(i, line)
		ln := l.classify(res, i, line, rest, offset)
		ln.Commented = touched
		if touched && ln.Kind == LineEmpty {
			ln.Kind = LineComment
		}
		res.Lines = append(res.Lines, ln)
	}

	last := len(raw) - 1
	if rng, open := tracker.Unclosed(last, len(raw[last])); open {
		res.Errors = append(res.Errors, newDiagnostic(SeverityError, rng, CodeUnclosedComment,
			"Unclosed block comment: missing '*/'"))
	}
	res.Comments = tracker.Blocks
	res.Lines = append(res.Lines, Line{Kind: LineEOF, Number: len(raw)})
	return res
}

func (l *Lexer) errorf(res *LexResult, sev Severity, rng Range, code, format string, args ...any) {
	res.Errors = append(res.Errors, newDiagnostic(sev, rng, code, format, args...))
}

// classify applica i pattern nell'ordine di priorità
func (l *Lexer) classify(res *LexResult, lineNo int, raw, content string, offset int) Line {
	ln := Line{Number: lineNo, Raw: raw}
	trimmed := strings.TrimLeft(content, " \t")
	ln.Offset = offset + len(content) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, " \t")
	col := ln.Offset

	switch {
	case trimmed == "":
		ln.Kind = LineEmpty
	case strings.HasPrefix(trimmed, lineComment):
		ln.Kind = LineComment
	case dividerRegex.MatchString(trimmed):
		ln.Kind = LineDivider
	case strings.HasPrefix(trimmed, "==="):
		l.classifyHeader(res, &ln, trimmed, col)
	case strings.HasPrefix(trimmed, "~"):
		l.classifyCommand(res, &ln, trimmed, col)
	case strings.HasPrefix(trimmed, ">"):
		l.classifyJump(&ln, trimmed, col)
	case choiceIDRegex.MatchString(trimmed):
		m := choiceIDRegex.FindStringSubmatchIndex(trimmed)
		ln.Kind = LineChoiceID
		ln.Name = trimmed[m[2]:m[3]]
		ln.NameRange = LineRange(lineNo, col+m[2], col+m[3])
	case strings.HasPrefix(trimmed, "*"):
		l.classifyChoice(res, &ln, trimmed, col)
	case trimmed == "-":
		ln.Kind = LinePageBreak
	default:
		l.classifyText(&ln, trimmed, col)
	}
	return ln
}

func (l *Lexer) classifyHeader(res *LexResult, ln *Line, trimmed string, col int) {
	m := storyHeaderRegex.FindStringSubmatchIndex(trimmed)
	if m == nil {
		l.errorf(res, SeverityError, ln.ContentRange(), CodeInvalidStoryHeader,
			"Invalid story header: expected '=== <identifier>'")
		ln.Malformed = true
		l.classifyText(ln, trimmed, col)
		return
	}
	ln.Kind = LineStoryHeader
	ln.Name = trimmed[m[2]:m[3]]
	ln.NameRange = LineRange(ln.Number, col+m[2], col+m[3])
}

func (l *Lexer) classifyCommand(res *LexResult, ln *Line, trimmed string, col int) {
	// la regex accetta qualsiasi riga che inizia con "~"
	m := commandRegex.FindStringSubmatchIndex(trimmed)
	ln.Kind = LineCommand
	ln.Name = trimmed[m[2]:m[3]]
	ln.NameRange = LineRange(ln.Number, col+m[2], col+m[3])
	ln.Text = strings.TrimSpace(trimmed[m[4]:m[5]])
	ln.TextRange = LineRange(ln.Number, col+m[4], col+m[4]+len(ln.Text))

	wordRange := LineRange(ln.Number, col, col+m[3])
	info, ok := l.format.Command(ln.Name)
	if !ok {
		switch fix, typo := l.format.CommandTypo(ln.Name); {
		case ln.Name == "":
			l.errorf(res, SeverityError, wordRange, CodeUnknownCommand, "Missing command name after '~'")
		case typo:
			l.errorf(res, SeverityError, wordRange, CodeCommandTypo,
				"Unknown command '~%s'. Did you mean '~%s'?", ln.Name, fix)
		default:
			l.errorf(res, SeverityError, wordRange, CodeUnknownCommand, "Unknown command '~%s'", ln.Name)
		}
		return
	}

	ln.Known = true
	ln.Command = info.Kind
	if ln.Text == "" {
		if info.RequiresExpression && !info.ShorthandAllowed {
			l.errorf(res, SeverityWarning, wordRange, CodeMissingExpression,
				"Command '~%s' requires an expression", ln.Name)
		}
		return
	}
	if info.CheckParens {
		l.checkParens(res, ln)
	}
}

func (l *Lexer) checkParens(res *LexResult, ln *Line) {
	start := ln.TextRange.Start.Character
	for _, issue := range CheckParens(ln.Text) {
		if issue.Missing {
			l.errorf(res, SeverityError, ln.TextRange, CodeUnbalancedParens,
				"Unbalanced parentheses: missing ')' (%d unclosed)", issue.Open)
			continue
		}
		at := start + issue.Offset
		l.errorf(res, SeverityError, LineRange(ln.Number, at, at+1), CodeUnbalancedParens,
			"Unbalanced parentheses: unexpected ')'")
	}
}

func (l *Lexer) classifyJump(ln *Line, trimmed string, col int) {
	m := jumpRegex.FindStringSubmatchIndex(trimmed)
	ln.Kind = LineJump
	switch trimmed[m[2]:m[3]] {
	case ">>":
		ln.Style = JumpSilent
	case ">!":
		ln.Style = JumpNoBreak
	default:
		ln.Style = JumpNormal
	}
	ln.Name = trimmed[m[4]:m[5]]
	ln.NameRange = LineRange(ln.Number, col+m[4], col+m[5])
}

func (l *Lexer) classifyChoice(res *LexResult, ln *Line, trimmed string, col int) {
	m := choiceRegex.FindStringSubmatchIndex(trimmed)
	depth := m[3] - m[2]
	text := trimmed[m[6]:m[7]]
	textCol := col + m[6]

	if m[4] >= 0 {
		id := hiddenIDRegex.FindString(text)
		if id == "" {
			l.errorf(res, SeverityError, ln.ContentRange(), CodeHiddenChoiceID,
				"Hidden choice requires an ID, e.g. '%s# my_id'", strings.Repeat("*", depth))
			ln.Malformed = true
			l.classifyText(ln, trimmed, col)
			return
		}
		ln.Kind = LineChoice
		ln.Depth = depth
		ln.Hidden = true
		ln.Name = id
		ln.NameRange = LineRange(ln.Number, textCol, textCol+len(id))
		return
	}

	ln.Kind = LineChoice
	ln.Depth = depth
	ln.Text = text
	ln.TextRange = LineRange(ln.Number, textCol, textCol+len(text))
	ln.Brackets = keywordBrackets(ScanBrackets(ln.Number, text, textCol))
}

func (l *Lexer) classifyText(ln *Line, trimmed string, col int) {
	ln.Kind = LineText
	ln.Text = trimmed
	ln.TextRange = LineRange(ln.Number, col, col+len(trimmed))
	ln.Brackets = keywordBrackets(ScanBrackets(ln.Number, trimmed, col))
}

// keywordBrackets tiene solo le parole chiave riconosciute
func keywordBrackets(all []BracketExpr) []BracketExpr {
	var out []BracketExpr
	for _, b := range all {
		if b.Role != BracketNone {
			out = append(out, b)
		}
	}
	return out
}
