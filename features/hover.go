package features

import (
	"fmt"
	"strings"

	"branchscript-editor/analysis"
	"branchscript-editor/parser"
)

// Hover è il testo markdown mostrato sopra una posizione
type Hover struct {
	Contents string       `json:"contents"`
	Range    parser.Range `json:"range"`
}

// Hover restituisce la descrizione dell'elemento sotto la posizione, o nil
func (p *Provider) Hover(res *analysis.Result, pos parser.Position) *Hover {
	if res == nil || res.Document == nil {
		return nil
	}
	doc := res.Document
	ln, ok := doc.Line(pos.Line)
	if !ok {
		return nil
	}
	story := doc.StoryAt(pos.Line)

	switch ln.Kind {
	case parser.LineCommand:
		word := parser.LineRange(ln.Number, ln.NameRange.Start.Character-1, ln.NameRange.End.Character)
		if ln.Known && word.Contains(pos) {
			return p.commandHover(ln.Name, word)
		}
	case parser.LineJump:
		for _, t := range parser.SplitJumpTarget(ln.Name) {
			start := ln.NameRange.Start.Character
			rng := parser.LineRange(ln.Number, start+t.Start, start+t.End)
			if !rng.Contains(pos) {
				continue
			}
			h := p.jumpHover(story, t.ID, rng)
			if parser.IsConditionalTarget(ln.Name) {
				h.Contents += fmt.Sprintf("\n\nBranch of the conditional jump `%s`", ln.Name)
			}
			return h
		}
	case parser.LineChoiceID:
		if ln.NameRange.Contains(pos) {
			return refHover(story, ln.Name, ln.NameRange)
		}
	case parser.LineChoice:
		if ln.Hidden && ln.NameRange.Contains(pos) {
			return refHover(story, ln.Name, ln.NameRange)
		}
	}

	word, rng := wordAt(ln.Raw, pos)
	for _, b := range ln.Brackets {
		onKeyword := strings.EqualFold(word, b.Keyword) || (b.Keyword == "elseif" && strings.EqualFold(word, "else"))
		if b.Range.Contains(pos) && onKeyword {
			return p.keywordHover(b.Keyword, b.Range)
		}
		if b.Keyword == "|" && b.Range.Contains(pos) && word == "" {
			return p.keywordHover("or", b.Range)
		}
	}
	if h := p.variableHover(word, rng); h != nil {
		return h
	}
	return nil
}

func (p *Provider) commandHover(name string, rng parser.Range) *Hover {
	info, ok := p.format.Command(name)
	if !ok {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**~%s** (%s)\n\n%s", info.Name, info.Kind, info.Summary)
	if info.Usage != "" {
		fmt.Fprintf(&sb, "\n\n```\n%s\n```", info.Usage)
	}
	return &Hover{Contents: sb.String(), Range: rng}
}

func (p *Provider) keywordHover(keyword string, rng parser.Range) *Hover {
	for _, kw := range p.format.BracketKeywords() {
		if kw.Name == keyword {
			return &Hover{
				Contents: fmt.Sprintf("**[%s]**\n\n%s\n\n```\n%s\n```", kw.Name, kw.Summary, kw.Usage),
				Range:    rng,
			}
		}
	}
	return nil
}

func (p *Provider) jumpHover(story *parser.Story, id string, rng parser.Range) *Hover {
	if desc, ok := p.format.PseudoTargets()[id]; ok {
		return &Hover{Contents: fmt.Sprintf("**%s** (built-in target)\n\n%s", id, desc), Range: rng}
	}
	if story != nil {
		if ref, ok := story.Ref(id); ok {
			kind := "choice"
			if ref.Hidden {
				kind = "hidden choice"
			}
			return &Hover{
				Contents: fmt.Sprintf("**Jump target** `%s`\n\nDefined on line %d (%s)", id, ref.Range.Start.Line+1, kind),
				Range:    rng,
			}
		}
		return &Hover{
			Contents: fmt.Sprintf("⚠️ Unknown target `%s`: no `= %s` in story `%s`", id, id, story.ID),
			Range:    rng,
		}
	}
	return &Hover{Contents: fmt.Sprintf("⚠️ Unknown target `%s`", id), Range: rng}
}

func refHover(story *parser.Story, id string, rng parser.Range) *Hover {
	if story == nil {
		return nil
	}
	ref, ok := story.Ref(id)
	if !ok {
		return nil
	}
	refs := 0
	story.Walk(func(c *parser.Choice) {
		for _, j := range c.Jumps {
			for _, t := range parser.SplitJumpTarget(j.Target) {
				if t.ID == id {
					refs++
				}
			}
		}
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Choice ID** `%s`\n\nDefined on line %d", id, ref.Range.Start.Line+1)
	if ref.Range.Start.Line != rng.Start.Line {
		sb.WriteString(" (this is a duplicate definition)")
	}
	if ref.Hidden {
		sb.WriteString("\n\nHidden choice: it has no visible text.")
	}
	fmt.Fprintf(&sb, "\n\nReferenced by %d jump(s)", refs)
	return &Hover{Contents: sb.String(), Range: rng}
}

func (p *Provider) variableHover(word string, rng parser.Range) *Hover {
	idx := strings.IndexByte(word, '_')
	if idx <= 0 || p.format.IsSuffixWord(word) {
		return nil
	}
	prefix := strings.ToLower(word[:idx])
	desc, ok := p.format.VariablePrefixes()[prefix]
	if !ok {
		return nil
	}
	return &Hover{
		Contents: fmt.Sprintf("**%s_** variable prefix\n\n%s", prefix, desc),
		Range:    rng,
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// wordAt restituisce la parola che contiene la colonna
func wordAt(line string, pos parser.Position) (string, parser.Range) {
	at := pos.Character
	if at < 0 {
		at = 0
	}
	if at > len(line) {
		at = len(line)
	}
	start, end := at, at
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	return line[start:end], parser.LineRange(pos.Line, start, end)
}
