package features

import (
	"sort"

	"branchscript-editor/analysis"
	"branchscript-editor/parser"
)

// FoldingRange è un intervallo richiudibile nell'editor
type FoldingRange struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Kind      string `json:"kind"`
}

// Folding restituisce storie, scelte con figli, commenti e blocchi [if]..[endif]
func (p *Provider) Folding(res *analysis.Result) []FoldingRange {
	if res == nil {
		return nil
	}
	var ranges []FoldingRange
	add := func(start, end int, kind string) {
		if end > start {
			ranges = append(ranges, FoldingRange{StartLine: start, EndLine: end, Kind: kind})
		}
	}

	if doc := res.Document; doc != nil {
		for _, story := range doc.Stories {
			add(story.Range.Start.Line, story.Range.End.Line, "region")
			story.Walk(func(c *parser.Choice) {
				if len(c.Children) > 0 {
					add(c.Range.Start.Line, c.LastLine(), "region")
				}
			})
		}
		for _, comment := range doc.Comments {
			add(comment.Start.Line, comment.End.Line, "comment")
		}
	}
	for _, block := range res.Blocks {
		add(block.Open.Start.Line, block.Close.Start.Line, "region")
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].StartLine < ranges[j].StartLine
	})
	return ranges
}
