package parser

import "strings"

const (
	blockOpen   = "/*"
	blockClose  = "*/"
	lineComment = "//"
)

// CommentTracker segue lo stato dei commenti a blocco riga per riga.
// Lexer, validatore delle parentesi e lint ne usano ognuno un'istanza
// propria, così vedono gli stessi confini senza condividere stato.
type CommentTracker struct {
	inBlock bool
	openPos Position

	// Blocks contiene i commenti a blocco chiusi, nell'ordine di apertura
	Blocks []Range
}

// Strip restituisce la parte di riga fuori dai commenti a blocco, la colonna
// in cui inizia e se la riga ha toccato un commento.
// Un commento a blocco si apre solo all'inizio del contenuto di una riga.
func (c *CommentTracker) Strip(lineNo int, line string) (rest string, offset int, touched bool) {
	rest = line
	if c.inBlock {
		touched = true
		idx := strings.Index(line, blockClose)
		if idx < 0 {
			return "", len(line), true
		}
		c.inBlock = false
		c.Blocks = append(c.Blocks, Range{Start: c.openPos, End: Position{Line: lineNo, Character: idx + 2}})
		rest, offset = line[idx+2:], idx+2
	}

	for {
		trimmed := strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(trimmed, blockOpen) {
			return rest, offset, touched
		}
		touched = true
		start := offset + len(rest) - len(trimmed)
		end := strings.Index(trimmed[len(blockOpen):], blockClose)
		if end < 0 {
			c.inBlock = true
			c.openPos = Position{Line: lineNo, Character: start}
			return "", len(line), true
		}
		stop := start + len(blockOpen) + end + len(blockClose)
		c.Blocks = append(c.Blocks, LineRange(lineNo, start, stop))
		rest, offset = line[stop:], stop
	}
}

// Unclosed restituisce l'intervallo dal commento aperto fino a fine documento
func (c *CommentTracker) Unclosed(lastLine, lastLen int) (Range, bool) {
	if !c.inBlock {
		return Range{}, false
	}
	return Range{Start: c.openPos, End: Position{Line: lastLine, Character: lastLen}}, true
}

// IsLineComment riconosce le righe che iniziano con "//"
func IsLineComment(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), lineComment)
}

// StripLineComment svuota il contenuto se è un commento di riga
func StripLineComment(s string) string {
	if IsLineComment(s) {
		return ""
	}
	return s
}

// SplitLines divide su "\n" togliendo l'eventuale "\r" finale
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
