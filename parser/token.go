package parser

import (
	"strings"

	"branchscript-editor/formats"
)

// LineKind è l'insieme chiuso di classificazioni di una riga
type LineKind int

const (
	LineEmpty LineKind = iota
	LineComment
	LineDivider
	LineStoryHeader
	LineCommand
	LineJump
	LineChoiceID
	LineChoice
	LinePageBreak
	LineText
	LineEOF
)

var lineKindNames = [...]string{
	LineEmpty:       "empty",
	LineComment:     "comment",
	LineDivider:     "divider",
	LineStoryHeader: "story-header",
	LineCommand:     "command",
	LineJump:        "jump",
	LineChoiceID:    "choice-id",
	LineChoice:      "choice",
	LinePageBreak:   "page-break",
	LineText:        "text",
	LineEOF:         "eof",
}

func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "unknown"
}

// Line è il record prodotto dal lexer per ogni riga.
// I campi del payload hanno senso solo per alcuni Kind:
//
//	LineStoryHeader: Name (id storia)
//	LineCommand:     Name (parola), Text (espressione), Known, Command
//	LineJump:        Name (destinazione), Style
//	LineChoiceID:    Name (id)
//	LineChoice:      Depth, Text, Hidden, Name (id se Hidden), Brackets
//	LineText:        Brackets
type Line struct {
	Kind   LineKind
	Number int
	Raw    string
	// Offset è la colonna dove inizia il contenuto classificato
	Offset int
	// Commented indica che la riga tocca un commento a blocco
	Commented bool
	// Malformed indica una riga degradata a testo dopo un errore
	Malformed bool

	Name      string
	NameRange Range
	Text      string
	TextRange Range
	Depth     int
	Hidden    bool
	Style     JumpStyle
	Known     bool
	Command   formats.CommandKind
	Brackets  []BracketExpr
}

// ContentRange copre il contenuto della riga senza spazi laterali
func (l Line) ContentRange() Range {
	end := len(strings.TrimRight(l.Raw, " \t"))
	if end < l.Offset {
		end = l.Offset
	}
	return LineRange(l.Number, l.Offset, end)
}
