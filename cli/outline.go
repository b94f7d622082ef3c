package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"branchscript-editor/features"
	"branchscript-editor/parser"
)

func newOutlineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the stories and choices of a .branch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runOutline,
	}
	cmd.Flags().Bool("json", false, "Print the outline as JSON")
	return cmd
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	text, err := parser.NewScriptParser(args[0]).ReadText()
	if err != nil {
		return err
	}
	res := analyzer.Analyze(text)
	symbols := features.NewProvider(analyzer.Format()).Outline(res)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(symbols)
	}

	for _, sym := range symbols {
		printSymbol(out, sym, 0)
	}
	if n := res.Count(parser.SeverityError); n > 0 {
		fmt.Fprintf(out, "\n❌ %d errori (usa 'check' per i dettagli)\n", n)
	}
	return nil
}

func printSymbol(w io.Writer, sym features.DocumentSymbol, depth int) {
	indent := strings.Repeat("  ", depth)
	line := sym.SelectionRange.Start.Line + 1
	switch sym.Kind {
	case features.SymbolStory:
		fmt.Fprintf(w, "%s📖 %s (riga %d)\n", indent, sym.Name, line)
	case features.SymbolChoiceRef:
		fmt.Fprintf(w, "%s🏷️  %s [%s] (riga %d)\n", indent, sym.Name, sym.Detail, line)
	default:
		fmt.Fprintf(w, "%s%s (riga %d)\n", indent, sym.Name, line)
	}
	for _, child := range sym.Children {
		printSymbol(w, child, depth+1)
	}
}
