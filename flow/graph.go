// Package flow costruisce il grafo statico dei salti di una storia.
// Le condizioni non vengono valutate: ogni arco è considerato percorribile.
package flow

import (
	"fmt"
	"sort"

	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
	"branchscript-editor/parser"
)

// Start è il nodo di ingresso di ogni storia
const Start = "start"

// Edge è un arco uscente da un nodo
type Edge struct {
	To   string `json:"to"`
	Line int    `json:"line"`
	// Jump è falso per gli archi impliciti verso le sotto-scelte
	Jump bool `json:"jump"`
}

// Graph collega gli identificatori di scelta di una storia
type Graph struct {
	story  *parser.Story
	format formats.ScriptFormat
	nodes  []string
	edges  map[string][]Edge
	// terminals raccoglie le destinazioni speciali raggiunte da ogni nodo
	terminals map[string][]string
}

// PathResult esito della validazione di un percorso
type PathResult struct {
	Valid  bool     `json:"valid"`
	Path   []string `json:"path"`
	Errors []string `json:"errors,omitempty"`
}

// NewGraph costruisce il grafo di una storia
func NewGraph(story *parser.Story, format formats.ScriptFormat) *Graph {
	if format == nil {
		format = branch.NewBranchFormat()
	}
	g := &Graph{
		story:     story,
		format:    format,
		edges:     make(map[string][]Edge),
		terminals: make(map[string][]string),
	}
	for _, ref := range story.RefList() {
		g.nodes = append(g.nodes, ref.ID)
	}
	for _, c := range story.Choices {
		g.add(Start, c)
	}
	return g
}

// add collega la scelta al nodo che la rende visibile e ne segue i salti
func (g *Graph) add(owner string, c *parser.Choice) {
	node := owner
	if id := c.ID(); id != "" {
		if !c.Hidden {
			g.edges[owner] = append(g.edges[owner], Edge{To: id, Line: c.Range.Start.Line})
		}
		node = id
	}
	for _, j := range c.Jumps {
		for _, t := range parser.SplitJumpTarget(j.Target) {
			if t.ID == Start {
				g.edges[node] = append(g.edges[node], Edge{To: Start, Line: j.Range.Start.Line, Jump: true})
				continue
			}
			if g.isPseudo(t.ID) {
				g.terminals[node] = append(g.terminals[node], t.ID)
				continue
			}
			g.edges[node] = append(g.edges[node], Edge{To: t.ID, Line: j.Range.Start.Line, Jump: true})
		}
	}
	for _, child := range c.Children {
		g.add(node, child)
	}
}

func (g *Graph) isPseudo(id string) bool {
	_, ok := g.format.PseudoTargets()[id]
	return ok
}

// Nodes restituisce i nodi nell'ordine di definizione
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges restituisce gli archi uscenti da un nodo
func (g *Graph) Edges(node string) []Edge {
	return g.edges[node]
}

// Targets restituisce le destinazioni distinte raggiungibili da un nodo
func (g *Graph) Targets(node string) []string {
	seen := make(map[string]bool)
	targets := []string{}
	for _, e := range g.edges[node] {
		if !seen[e.To] {
			seen[e.To] = true
			targets = append(targets, e.To)
		}
	}
	return targets
}

// Terminals restituisce le destinazioni speciali usate da un nodo
func (g *Graph) Terminals(node string) []string {
	return g.terminals[node]
}

func (g *Graph) exists(node string) bool {
	_, ok := g.story.Ref(node)
	return ok
}

// ValidatePath verifica che il percorso usi nodi esistenti e collegati
func (g *Graph) ValidatePath(path []string) []string {
	errors := []string{}

	for i, node := range path {
		if !g.exists(node) {
			errors = append(errors, fmt.Sprintf("Step %d: scelta '%s' non esiste", i+1, node))
		}
	}

	for i := 0; i < len(path)-1; i++ {
		current, next := path[i], path[i+1]
		if !g.exists(current) {
			continue // già segnalato sopra
		}
		targets := g.Targets(current)
		linked := false
		for _, t := range targets {
			if t == next {
				linked = true
				break
			}
		}
		if !linked {
			errors = append(errors, fmt.Sprintf(
				"Step %d→%d: '%s' non porta a '%s'. Destinazioni disponibili: %v",
				i+1, i+2, current, next, targets,
			))
		}
	}

	return errors
}

// CheckPath restituisce la validazione in forma serializzabile
func (g *Graph) CheckPath(path []string) PathResult {
	errs := g.ValidatePath(path)
	return PathResult{Valid: len(errs) == 0, Path: path, Errors: errs}
}

// maxSuggestedPaths limita la BFS per non esplodere su grafi densi
const maxSuggestedPaths = 10

// GetSuggestedPaths suggerisce percorsi a partire da un nodo. Un percorso
// si ferma alla profondità massima, su un nodo senza uscite o su un ciclo.
func (g *Graph) GetSuggestedPaths(start string, maxDepth int) [][]string {
	paths := [][]string{}
	if !g.exists(start) || maxDepth <= 0 {
		return paths
	}

	queue := [][]string{{start}}
	for len(queue) > 0 && len(paths) < maxSuggestedPaths {
		current := queue[0]
		queue = queue[1:]

		if len(current) >= maxDepth {
			paths = append(paths, current)
			continue
		}

		last := current[len(current)-1]
		expanded := false
		for _, next := range g.Targets(last) {
			if contains(current, next) || !g.exists(next) {
				continue
			}
			path := make([]string, len(current), len(current)+1)
			copy(path, current)
			queue = append(queue, append(path, next))
			expanded = true
		}
		if !expanded {
			paths = append(paths, current)
		}
	}

	return paths
}

// Reachable restituisce i nodi raggiungibili da start
func (g *Graph) Reachable() map[string]bool {
	seen := map[string]bool{Start: true}
	queue := []string{Start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, e := range g.edges[node] {
			if !seen[e.To] && g.exists(e.To) {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return seen
}

// Unreachable elenca gli identificatori che nessun percorso da start raggiunge
func (g *Graph) Unreachable() []string {
	seen := g.Reachable()
	unreachable := []string{}
	for _, node := range g.nodes {
		if !seen[node] {
			unreachable = append(unreachable, node)
		}
	}
	return unreachable
}

// Dangling elenca gli archi verso identificatori non definiti, per nodo
func (g *Graph) Dangling() map[string][]string {
	dangling := make(map[string][]string)
	for node, edges := range g.edges {
		for _, e := range edges {
			if !g.exists(e.To) {
				dangling[node] = append(dangling[node], e.To)
			}
		}
	}
	for node := range dangling {
		sort.Strings(dangling[node])
	}
	return dangling
}

func contains(path []string, node string) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}
