package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
	"branchscript-editor/parser"
)

// Codici dei controlli euristici
const (
	CodeKeywordTypo           = "keyword-typo"
	CodeUnmatchedQuote        = "unmatched-quote"
	CodeEmptyChoice           = "empty-choice"
	CodeMissingStoryName      = "missing-story-name"
	CodeUnknownVariablePrefix = "unknown-variable-prefix"
	CodeSpacedOperator        = "spaced-operator"
)

var (
	lintCommandRegex = regexp.MustCompile(`^~([A-Za-z_]+)\s*(.*)$`)
	emptyChoiceRegex = regexp.MustCompile(`^\*+$`)
	wordRegex        = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)
	stringRegex      = regexp.MustCompile(`"[^"]*"`)
	spacedOpRegex    = regexp.MustCompile(`([<>!=+\-*/&|])[ \t]+([=&|])`)
	conditionPrefix  = regexp.MustCompile(`^\s*(?:else\s+if|elseif|if)\s+`)
	bracketFirstWord = regexp.MustCompile(`^([A-Za-z]+)`)
)

// Linter esegue i controlli euristici: non bloccano mai, sono Warning o Hint
type Linter struct {
	format formats.ScriptFormat
}

// NewLinter crea un linter; con format nil usa BranchScript
func NewLinter(format formats.ScriptFormat) *Linter {
	if format == nil {
		format = branch.NewBranchFormat()
	}
	return &Linter{format: format}
}

// expression è un'espressione con la colonna del suo primo carattere
type expression struct {
	text string
	col  int
}

// Lint controlla il testo grezzo riga per riga
func (l *Linter) Lint(text string) []parser.Diagnostic {
	var (
		diags   []parser.Diagnostic
		tracker parser.CommentTracker
	)

	for lineNo, line := range parser.SplitLines(text) {
		rest, offset, _ := tracker.Strip(lineNo, line)
		rest = parser.StripLineComment(rest)
		trimmed := strings.TrimLeft(rest, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		col := offset + len(rest) - len(trimmed)
		trimmed = strings.TrimRight(trimmed, " \t")
		content := parser.LineRange(lineNo, col, col+len(trimmed))

		if emptyChoiceRegex.MatchString(trimmed) {
			diags = append(diags, diagnostic(parser.SeverityWarning, content, CodeEmptyChoice,
				"Empty choice: the choice marker has no text"))
		}
		if trimmed == "===" {
			diags = append(diags, diagnostic(parser.SeverityHint, content, CodeMissingStoryName,
				"Story header is missing an identifier, e.g. '=== intro'"))
		}

		brackets := parser.ScanBrackets(lineNo, rest, offset)
		diags = append(diags, l.keywordTypos(brackets)...)
		diags = append(diags, l.quotes(lineNo, rest, offset)...)

		for _, expr := range l.expressions(line, trimmed, col, brackets) {
			diags = append(diags, l.variables(lineNo, expr)...)
			diags = append(diags, l.operators(lineNo, expr)...)
		}
	}
	return diags
}

// expressions estrae le espressioni dei comandi e le condizioni tra parentesi
func (l *Linter) expressions(line, trimmed string, col int, brackets []parser.BracketExpr) []expression {
	var out []expression
	if m := lintCommandRegex.FindStringSubmatchIndex(trimmed); m != nil {
		info, ok := l.format.Command(trimmed[m[2]:m[3]])
		if ok && info.Kind != formats.CommandFlag && m[5] > m[4] {
			out = append(out, expression{text: trimmed[m[4]:m[5]], col: col + m[4]})
		}
		return out
	}
	for _, b := range brackets {
		if b.Keyword != "if" && b.Keyword != "elseif" {
			continue
		}
		start, end := b.Range.Start.Character+1, b.Range.End.Character-1
		inner := line[start:end]
		loc := conditionPrefix.FindStringIndex(inner)
		if loc == nil {
			continue
		}
		out = append(out, expression{text: inner[loc[1]:], col: start + loc[1]})
	}
	return out
}

func (l *Linter) keywordTypos(brackets []parser.BracketExpr) []parser.Diagnostic {
	var diags []parser.Diagnostic
	for _, b := range brackets {
		if b.Role != parser.BracketNone {
			continue
		}
		word := bracketFirstWord.FindString(b.Inner)
		if fix, ok := l.format.BracketTypo(word); ok && word != "" {
			diags = append(diags, diagnostic(parser.SeverityWarning, b.Range, CodeKeywordTypo,
				fmt.Sprintf("Unknown bracket keyword '[%s]'. Did you mean '[%s]'?", word, fix)))
		}
	}
	return diags
}

// quotes segnala un numero dispari di virgolette non escapate
func (l *Linter) quotes(lineNo int, s string, offset int) []parser.Diagnostic {
	count, last := 0, -1
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			count++
			last = i
		}
	}
	if count%2 == 0 {
		return nil
	}
	at := offset + last
	return []parser.Diagnostic{diagnostic(parser.SeverityHint, parser.LineRange(lineNo, at, at+1), CodeUnmatchedQuote,
		"Unmatched quotation mark")}
}

// variables controlla i prefissi delle variabili con underscore
func (l *Linter) variables(lineNo int, expr expression) []parser.Diagnostic {
	var diags []parser.Diagnostic
	prefixes := l.format.VariablePrefixes()

	// Le stringhe vengono sostituite da spazi per non spostare le colonne
	masked := stringRegex.ReplaceAllStringFunc(expr.text, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	for _, loc := range wordRegex.FindAllStringIndex(masked, -1) {
		word := masked[loc[0]:loc[1]]
		idx := strings.IndexByte(word, '_')
		if idx < 0 || l.format.IsSuffixWord(word) {
			continue
		}
		prefix := strings.ToLower(word[:idx])
		if _, ok := prefixes[prefix]; ok {
			continue
		}
		rng := parser.LineRange(lineNo, expr.col+loc[0], expr.col+loc[1])
		diags = append(diags, diagnostic(parser.SeverityHint, rng, CodeUnknownVariablePrefix,
			fmt.Sprintf("Unknown variable prefix '%s_' in '%s'", word[:idx], word)))
	}
	return diags
}

// operators trova operatori di due caratteri separati da spazi ("> =")
func (l *Linter) operators(lineNo int, expr expression) []parser.Diagnostic {
	var diags []parser.Diagnostic
	for _, m := range spacedOpRegex.FindAllStringSubmatchIndex(expr.text, -1) {
		first, second := expr.text[m[2]:m[3]], expr.text[m[4]:m[5]]
		valid := second == "=" && strings.Contains("<>!=+-*/", first) ||
			(first == second && (first == "&" || first == "|"))
		if !valid {
			continue
		}
		rng := parser.LineRange(lineNo, expr.col+m[0], expr.col+m[1])
		diags = append(diags, diagnostic(parser.SeverityWarning, rng, CodeSpacedOperator,
			fmt.Sprintf("Spaced operator '%s': did you mean '%s%s'?", expr.text[m[0]:m[1]], first, second)))
	}
	return diags
}
