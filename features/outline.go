package features

import (
	"strings"

	"branchscript-editor/analysis"
	"branchscript-editor/parser"
)

// SymbolKind distingue le voci dell'outline
type SymbolKind string

const (
	SymbolStory     SymbolKind = "story"
	SymbolChoice    SymbolKind = "choice"
	SymbolChoiceRef SymbolKind = "choice-id"
)

// previewLimit è la lunghezza massima dell'anteprima di una scelta
const previewLimit = 40

// DocumentSymbol è una voce dell'outline
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          parser.Range     `json:"range"`
	SelectionRange parser.Range     `json:"selection_range"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// Outline restituisce una voce per storia con definizioni e scelte annidate
func (p *Provider) Outline(res *analysis.Result) []DocumentSymbol {
	if res == nil || res.Document == nil {
		return nil
	}

	symbols := make([]DocumentSymbol, 0, len(res.Document.Stories))
	for _, story := range res.Document.Stories {
		sym := DocumentSymbol{
			Name:           story.ID,
			Kind:           SymbolStory,
			Range:          story.Range,
			SelectionRange: story.HeaderRange,
		}
		for _, ref := range story.RefList() {
			if ref.Pseudo {
				continue
			}
			detail := "id"
			if ref.Hidden {
				detail = "hidden"
			}
			sym.Children = append(sym.Children, DocumentSymbol{
				Name:           ref.ID,
				Detail:         detail,
				Kind:           SymbolChoiceRef,
				Range:          ref.Range,
				SelectionRange: ref.Range,
			})
		}
		for _, c := range story.Choices {
			sym.Children = append(sym.Children, p.choiceSymbol(c))
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

func (p *Provider) choiceSymbol(c *parser.Choice) DocumentSymbol {
	sym := DocumentSymbol{
		Name:           ChoiceLabel(c, p.format.StripCode(c.Text)),
		Kind:           SymbolChoice,
		Range:          c.Range,
		SelectionRange: parser.LineRange(c.Range.Start.Line, c.Range.Start.Character, c.Range.Start.Character+c.Depth),
	}
	if c.Hidden {
		sym.Detail = "hidden"
	}
	for _, child := range c.Children {
		sym.Children = append(sym.Children, p.choiceSymbol(child))
	}
	return sym
}

// ChoiceLabel è "<asterischi> <id|anteprima>"
func ChoiceLabel(c *parser.Choice, text string) string {
	label := c.ID()
	if label == "" {
		label = Truncate(text, previewLimit)
	}
	if label == "" {
		label = "(empty)"
	}
	return strings.Repeat("*", c.Depth) + " " + label
}

// Truncate limita il testo a max rune, ellissi compresa
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
