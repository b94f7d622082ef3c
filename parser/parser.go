package parser

import (
	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
)

// Parser costruisce il Document a partire dalle righe classificate.
// Non ha stato tra una chiamata e l'altra: può essere usato da più
// goroutine su documenti diversi.
type Parser struct {
	format formats.ScriptFormat
	lexer  *Lexer
}

// NewParser crea un parser; con format nil usa BranchScript
func NewParser(format formats.ScriptFormat) *Parser {
	if format == nil {
		format = branch.NewBranchFormat()
	}
	return &Parser{
		format: format,
		lexer:  NewLexer(format),
	}
}

// Parse analizza il testo con il formato predefinito
func Parse(text string) *Document {
	return NewParser(nil).Parse(text)
}

// Parse esegue lexer, costruzione dell'albero e risoluzione dei salti
func (p *Parser) Parse(text string) *Document {
	lexed := p.lexer.Lex(text)
	b := &builder{
		pseudo: p.format.PseudoTargets(),
		doc: &Document{
			Lines:    lexed.Lines,
			Comments: lexed.Comments,
			Errors:   append([]Diagnostic(nil), lexed.Errors...),
		},
	}
	b.doc.Disabled = detectDisabled(lexed.Lines)

	for i := range lexed.Lines {
		ln := &lexed.Lines[i]
		if ln.Kind == LineEOF {
			b.closeStory(ln.Number - 1)
			break
		}
		b.handle(ln)
	}

	// I salti si risolvono solo a documento completo
	b.resolveJumps()
	return b.doc
}

// detectDisabled guarda solo le righe prima della prima intestazione
func detectDisabled(lines []Line) bool {
	for _, ln := range lines {
		switch {
		case ln.Kind == LineStoryHeader || ln.Kind == LineEOF:
			return false
		case ln.Kind == LineCommand && ln.Known && ln.Command == formats.CommandFlag && ln.Name == "disabled":
			return true
		}
	}
	return false
}

// ============================================
// BUILDER
// ============================================

type builder struct {
	doc    *Document
	story  *Story
	stack  []*Choice
	pseudo map[string]string

	warnedPreamble bool
}

func (b *builder) addf(sev Severity, rng Range, code, format string, args ...any) {
	b.doc.Errors = append(b.doc.Errors, newDiagnostic(sev, rng, code, format, args...))
}

func (b *builder) current() *Choice {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) handle(ln *Line) {
	switch ln.Kind {
	case LineEmpty, LineComment, LineDivider:
		return
	case LineStoryHeader:
		b.openStory(ln)
		return
	}

	if b.story == nil {
		b.preamble(ln)
	}

	switch ln.Kind {
	case LineCommand:
		b.directive(ln)
	case LineChoice:
		b.choice(ln)
	case LineChoiceID:
		b.choiceID(ln)
	case LineJump:
		b.jump(ln)
	case LinePageBreak:
		if cur := b.current(); cur != nil {
			cur.Breaks = append(cur.Breaks, ln.Number)
		}
	}

	b.extend(ln)
}

// preamble segnala una sola volta il contenuto prima della prima storia
func (b *builder) preamble(ln *Line) {
	if b.doc.Disabled || b.warnedPreamble || ln.Malformed {
		return
	}
	if ln.Kind == LineCommand && ln.Known && ln.Command == formats.CommandFlag {
		return
	}
	b.warnedPreamble = true
	b.addf(SeverityWarning, ln.ContentRange(), CodeContentBeforeStory,
		"Content before the first story header is ignored")
}

// extend allarga l'intervallo delle scelte aperte fino a questa riga
func (b *builder) extend(ln *Line) {
	end := ln.ContentRange().End
	for _, c := range b.stack {
		if end.Line > c.Range.End.Line || (end.Line == c.Range.End.Line && end.Character > c.Range.End.Character) {
			c.Range.End = end
		}
	}
}

func (b *builder) openStory(ln *Line) {
	b.closeStory(ln.Number - 1)
	b.story = newStory(ln.Name, ln.ContentRange(), ln.NameRange)
	b.doc.Stories = append(b.doc.Stories, b.story)
	b.stack = nil
}

// closeStory chiude l'intervallo della storia corrente alla riga indicata
func (b *builder) closeStory(last int) {
	if b.story == nil {
		return
	}
	if last < b.story.Range.Start.Line {
		last = b.story.Range.Start.Line
	}
	b.story.Range.End = Position{Line: last, Character: len(b.doc.Lines[last].Raw)}
	b.story = nil
}

func (b *builder) directive(ln *Line) {
	if !ln.Known || ln.Command == formats.CommandFlag {
		return
	}
	d := Directive{Command: ln.Name, Expression: ln.Text, Range: ln.ContentRange()}
	cur := b.current()

	switch ln.Command {
	case formats.CommandRequirement:
		if cur != nil {
			cur.Requirements = append(cur.Requirements, d)
		} else if b.story != nil {
			b.story.Requirements = append(b.story.Requirements, d)
		}
	case formats.CommandMutation:
		if cur != nil {
			cur.Mutations = append(cur.Mutations, d)
		} else if b.story != nil {
			b.story.Mutations = append(b.story.Mutations, d)
		}
	}
}

func (b *builder) choice(ln *Line) {
	c := &Choice{
		Depth: ln.Depth,
		Text:  ln.Text,
		Range: ln.ContentRange(),
	}
	if ln.Hidden {
		c.Hidden = true
		c.Ref = b.register(ln.Name, ln.NameRange, true)
	}
	b.insert(c, ln)
}

// insert aggancia la scelta al genitore di profondità d-1, oppure la
// promuove a radice segnalandola come orfana
func (b *builder) insert(c *Choice, ln *Line) {
	d := c.Depth
	for len(b.stack) > 0 && b.current().Depth != d-1 {
		b.stack = b.stack[:len(b.stack)-1]
	}

	if parent := b.current(); d > 1 && parent != nil {
		parent.Children = append(parent.Children, c)
	} else {
		if d > 1 {
			b.addf(SeverityError, ln.ContentRange(), CodeOrphanedChoice,
				"Orphaned choice: no parent choice at depth %d", d-1)
		}
		if b.story != nil {
			b.story.Choices = append(b.story.Choices, c)
		} else {
			b.doc.Orphans = append(b.doc.Orphans, c)
		}
	}
	b.stack = append(b.stack, c)
}

func (b *builder) choiceID(ln *Line) {
	if b.story == nil {
		return
	}
	ref := b.register(ln.Name, ln.NameRange, false)
	if cur := b.current(); cur != nil && cur.Ref == nil {
		cur.Ref = ref
	}
}

// register inserisce l'id nella tabella della storia; vince la prima definizione
func (b *builder) register(id string, rng Range, hidden bool) *ChoiceRef {
	ref := &ChoiceRef{ID: id, Range: rng, Hidden: hidden}
	if b.story == nil {
		return ref
	}
	if first, exists := b.story.Refs.Get(id); exists {
		b.addf(SeverityError, rng, CodeDuplicateChoiceID,
			"Duplicate choice ID '%s' (first defined on line %d)", id, first.Range.Start.Line+1)
		return ref
	}
	b.story.Refs.Set(id, ref)
	return ref
}

func (b *builder) jump(ln *Line) {
	j := Jump{
		Target:      ln.Name,
		Style:       ln.Style,
		Range:       ln.ContentRange(),
		TargetRange: ln.NameRange,
	}
	if cur := b.current(); cur != nil {
		cur.Jumps = append(cur.Jumps, j)
		return
	}
	if b.story != nil {
		b.addf(SeverityWarning, j.Range, CodeOrphanedJump,
			"Orphaned jump: '%s' is not inside a choice", ln.Style.Prefix())
	}
}
