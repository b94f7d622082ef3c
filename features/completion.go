package features

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"branchscript-editor/analysis"
	"branchscript-editor/formats"
	"branchscript-editor/parser"
)

// CompletionKind classifica i suggerimenti
type CompletionKind string

const (
	CompletionKeyword   CompletionKind = "keyword"
	CompletionReference CompletionKind = "reference"
	CompletionConstant  CompletionKind = "constant"
	CompletionVariable  CompletionKind = "variable"
)

// CompletionItem è un suggerimento di completamento
type CompletionItem struct {
	Label         string         `json:"label"`
	Kind          CompletionKind `json:"kind"`
	Detail        string         `json:"detail,omitempty"`
	Documentation string         `json:"documentation,omitempty"`
	InsertText    string         `json:"insert_text"`
}

var (
	commandPrefixRegex = regexp.MustCompile(`^~(\w*)$`)
	jumpPrefixRegex    = regexp.MustCompile(`^(?:>>|>!|>)\s*([\w.\-]*)$`)
	bracketPrefixRegex = regexp.MustCompile(`\[\s*(\w*)$`)
	directiveExprRegex = regexp.MustCompile(`^~(\w+)\s+.*?(\w*)$`)
	bracketExprRegex   = regexp.MustCompile(`\[\s*(?:if|elseif|else\s+if)\s+[^\]]*?(\w*)$`)
)

// Completion restituisce i suggerimenti in base al testo prima del cursore
func (p *Provider) Completion(res *analysis.Result, pos parser.Position) []CompletionItem {
	if res == nil || res.Document == nil {
		return nil
	}
	ln, ok := res.Document.Line(pos.Line)
	if !ok {
		return nil
	}
	at := pos.Character
	if at < 0 {
		at = 0
	}
	if at > len(ln.Raw) {
		at = len(ln.Raw)
	}
	before := strings.TrimLeft(ln.Raw[:at], " \t")

	if m := commandPrefixRegex.FindStringSubmatch(before); m != nil {
		return rank(m[1], p.commandItems())
	}
	if m := jumpPrefixRegex.FindStringSubmatch(before); m != nil {
		return rank(m[1], p.targetItems(res.Document.StoryAt(pos.Line)))
	}
	if m := bracketExprRegex.FindStringSubmatch(before); m != nil {
		return p.variableItems(m[1])
	}
	if m := bracketPrefixRegex.FindStringSubmatch(before); m != nil {
		return rank(m[1], p.keywordItems())
	}
	if m := directiveExprRegex.FindStringSubmatch(before); m != nil {
		if info, ok := p.format.Command(m[1]); ok && info.Kind != formats.CommandFlag {
			return p.variableItems(m[2])
		}
	}
	return nil
}

func (p *Provider) commandItems() []CompletionItem {
	var items []CompletionItem
	for _, info := range p.format.Commands() {
		items = append(items, CompletionItem{
			Label:         info.Name,
			Kind:          CompletionKeyword,
			Detail:        info.Kind.String(),
			Documentation: info.Summary,
			InsertText:    info.Name,
		})
	}
	return items
}

func (p *Provider) targetItems(story *parser.Story) []CompletionItem {
	var items []CompletionItem
	if story != nil {
		for _, ref := range story.RefList() {
			if ref.Pseudo {
				continue
			}
			items = append(items, CompletionItem{
				Label:      ref.ID,
				Kind:       CompletionReference,
				Detail:     "choice id",
				InsertText: ref.ID,
			})
		}
	}
	for id, desc := range p.format.PseudoTargets() {
		items = append(items, CompletionItem{
			Label:         id,
			Kind:          CompletionConstant,
			Detail:        "built-in target",
			Documentation: desc,
			InsertText:    id,
		})
	}
	return items
}

func (p *Provider) keywordItems() []CompletionItem {
	var items []CompletionItem
	for _, kw := range p.format.BracketKeywords() {
		items = append(items, CompletionItem{
			Label:         kw.Name,
			Kind:          CompletionKeyword,
			Detail:        kw.Usage,
			Documentation: kw.Summary,
			InsertText:    kw.Name,
		})
	}
	return items
}

// variableItems suggerisce i prefissi finché la parola non ha un underscore
func (p *Provider) variableItems(partial string) []CompletionItem {
	if strings.Contains(partial, "_") {
		return nil
	}
	var items []CompletionItem
	for prefix, desc := range p.format.VariablePrefixes() {
		items = append(items, CompletionItem{
			Label:         prefix + "_",
			Kind:          CompletionVariable,
			Detail:        "variable prefix",
			Documentation: desc,
			InsertText:    prefix + "_",
		})
	}
	return rank(partial, items)
}

// rank filtra con ricerca fuzzy e ordina per distanza, poi per etichetta.
// Senza prefisso restituisce tutto in ordine alfabetico.
func rank(partial string, items []CompletionItem) []CompletionItem {
	if partial == "" {
		out := append([]CompletionItem(nil), items...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
		return out
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	ranks := fuzzy.RankFindFold(partial, labels)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	out := make([]CompletionItem, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, items[r.OriginalIndex])
	}
	return out
}
