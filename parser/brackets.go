package parser

import (
	"regexp"
	"strings"
)

// BracketRole è il ruolo di una parola chiave tra parentesi quadre
type BracketRole int

const (
	BracketNone BracketRole = iota
	BracketOpen
	BracketMiddle
	BracketClose
)

func (r BracketRole) String() string {
	switch r {
	case BracketOpen:
		return "open"
	case BracketMiddle:
		return "middle"
	case BracketClose:
		return "close"
	}
	return "none"
}

// BracketExpr è un'espressione [..] trovata su una riga
type BracketExpr struct {
	Keyword string      `json:"keyword"`
	Role    BracketRole `json:"role"`
	Inner   string      `json:"inner"`
	Range   Range       `json:"range"`
}

var (
	bracketRegex     = regexp.MustCompile(`\[([^\[\]]*)\]`)
	bracketWordRegex = regexp.MustCompile(`^([A-Za-z]+)(\s.*)?$`)
)

// ClassifyBracket riconosce la parola chiave all'inizio del contenuto
func ClassifyBracket(inner string) (string, BracketRole) {
	t := strings.TrimSpace(inner)
	if t == "|" {
		return "|", BracketMiddle
	}
	m := bracketWordRegex.FindStringSubmatch(t)
	if m == nil {
		return "", BracketNone
	}
	word := strings.ToLower(m[1])
	rest := strings.TrimSpace(m[2])
	switch word {
	case "if", "random":
		return word, BracketOpen
	case "else":
		if rest == "if" || strings.HasPrefix(rest, "if ") {
			return "elseif", BracketMiddle
		}
		return word, BracketMiddle
	case "elseif", "or":
		return word, BracketMiddle
	case "endif", "end":
		if rest != "" {
			return "", BracketNone
		}
		return word, BracketClose
	}
	return "", BracketNone
}

// ScanBrackets trova tutte le espressioni [..] da sinistra a destra.
// offset è la colonna del primo carattere di s nella riga originale.
func ScanBrackets(lineNo int, s string, offset int) []BracketExpr {
	matches := bracketRegex.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]BracketExpr, 0, len(matches))
	for _, m := range matches {
		inner := s[m[2]:m[3]]
		keyword, role := ClassifyBracket(inner)
		out = append(out, BracketExpr{
			Keyword: keyword,
			Role:    role,
			Inner:   strings.TrimSpace(inner),
			Range:   LineRange(lineNo, offset+m[0], offset+m[1]),
		})
	}
	return out
}
