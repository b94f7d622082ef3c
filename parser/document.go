package parser

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JumpStyle distingue i tre prefissi di salto
type JumpStyle int

const (
	JumpNormal  JumpStyle = iota // >
	JumpSilent                   // >>
	JumpNoBreak                  // >!
)

func (s JumpStyle) String() string {
	switch s {
	case JumpSilent:
		return "silent"
	case JumpNoBreak:
		return "no-break"
	}
	return "normal"
}

// Prefix restituisce il prefisso sorgente del salto
func (s JumpStyle) Prefix() string {
	switch s {
	case JumpSilent:
		return ">>"
	case JumpNoBreak:
		return ">!"
	}
	return ">"
}

// Directive è un comando tilde di requisito o mutazione
type Directive struct {
	Command    string `json:"command"`
	Expression string `json:"expression,omitempty"`
	Range      Range  `json:"range"`
}

// ChoiceRef è la definizione di un identificatore raggiungibile con un salto
type ChoiceRef struct {
	ID     string `json:"id"`
	Range  Range  `json:"range"`
	Hidden bool   `json:"hidden"`
	// Pseudo è vero solo per la voce "start" inserita all'apertura della storia
	Pseudo bool `json:"pseudo,omitempty"`
}

// Jump è un arco uscente da una scelta
type Jump struct {
	Target      string    `json:"target"`
	Style       JumpStyle `json:"style"`
	Range       Range     `json:"range"`
	TargetRange Range     `json:"target_range"`
}

// Choice rappresenta un'opzione "*". I figli sono posseduti dal genitore,
// non c'è puntatore inverso.
type Choice struct {
	Depth        int         `json:"depth"`
	Text         string      `json:"text"`
	Ref          *ChoiceRef  `json:"ref,omitempty"`
	Hidden       bool        `json:"hidden,omitempty"`
	Requirements []Directive `json:"requirements,omitempty"`
	Mutations    []Directive `json:"mutations,omitempty"`
	Jumps        []Jump      `json:"jumps,omitempty"`
	Breaks       []int       `json:"breaks,omitempty"`
	Children     []*Choice   `json:"children,omitempty"`
	Range        Range       `json:"range"`
}

// ID restituisce l'identificatore della scelta, se ne ha uno
func (c *Choice) ID() string {
	if c.Ref == nil {
		return ""
	}
	return c.Ref.ID
}

// LastLine restituisce l'ultima riga del sottoalbero
func (c *Choice) LastLine() int {
	last := c.Range.End.Line
	for _, child := range c.Children {
		if l := child.LastLine(); l > last {
			last = l
		}
	}
	return last
}

// Walk visita la scelta e i discendenti in pre-ordine
func (c *Choice) Walk(fn func(*Choice)) {
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// RefTable mantiene l'ordine di inserimento degli identificatori
type RefTable = orderedmap.OrderedMap[string, *ChoiceRef]

// Story è un'unità di contenuto introdotta da "=== id"
type Story struct {
	ID           string      `json:"id"`
	Range        Range       `json:"range"`
	HeaderRange  Range       `json:"header_range"`
	NameRange    Range       `json:"name_range"`
	Requirements []Directive `json:"requirements,omitempty"`
	Mutations    []Directive `json:"mutations,omitempty"`
	Choices      []*Choice   `json:"choices"`
	Refs         *RefTable   `json:"refs"`
}

func newStory(id string, header, name Range) *Story {
	story := &Story{
		ID:          id,
		Range:       Range{Start: Position{Line: header.Start.Line}},
		HeaderRange: header,
		NameRange:   name,
		Refs:        orderedmap.New[string, *ChoiceRef](),
	}
	story.Refs.Set("start", &ChoiceRef{ID: "start", Range: name, Pseudo: true})
	return story
}

// Ref cerca una definizione nella tabella della storia
func (s *Story) Ref(id string) (*ChoiceRef, bool) {
	return s.Refs.Get(id)
}

// RefList restituisce le definizioni in ordine di inserimento
func (s *Story) RefList() []*ChoiceRef {
	refs := make([]*ChoiceRef, 0, s.Refs.Len())
	for pair := s.Refs.Oldest(); pair != nil; pair = pair.Next() {
		refs = append(refs, pair.Value)
	}
	return refs
}

// Walk visita tutte le scelte della storia
func (s *Story) Walk(fn func(*Choice)) {
	for _, c := range s.Choices {
		c.Walk(fn)
	}
}

// Document è il risultato immutabile di un parse completo
type Document struct {
	Stories []*Story `json:"stories"`
	// Orphans sono scelte trovate prima di qualsiasi intestazione
	Orphans  []*Choice    `json:"orphans,omitempty"`
	Disabled bool         `json:"disabled"`
	Errors   []Diagnostic `json:"errors"`
	Comments []Range      `json:"comments,omitempty"`
	Lines    []Line       `json:"-"`
}

// StoryAt restituisce la storia che contiene la riga
func (d *Document) StoryAt(line int) *Story {
	for _, s := range d.Stories {
		if line >= s.Range.Start.Line && line <= s.Range.End.Line {
			return s
		}
	}
	return nil
}

// Line restituisce il record classificato di una riga
func (d *Document) Line(n int) (Line, bool) {
	if n < 0 || n >= len(d.Lines) || d.Lines[n].Kind == LineEOF {
		return Line{}, false
	}
	return d.Lines[n], true
}
