package analysis

import (
	"fmt"

	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
	"branchscript-editor/parser"
)

// Codici emessi dall'aggregatore
const (
	CodeDocumentDisabled = "document-disabled"
	CodeInternalError    = "internal-error"
)

// DefaultMaxDiagnostics è il limite quando le opzioni non ne indicano uno
const DefaultMaxDiagnostics = 200

// Options configura l'analizzatore
type Options struct {
	Format formats.ScriptFormat
	// MaxDiagnostics tronca la lista in silenzio; 0 usa il default, <0 nessun limite
	MaxDiagnostics int
}

// Result è il prodotto di un'analisi completa. È immutabile: più
// consumatori possono leggerlo insieme.
type Result struct {
	// Document è nil solo se la fase di parse è fallita
	Document    *parser.Document    `json:"document"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	Blocks      []BracketBlock      `json:"blocks"`
}

type stage struct {
	name string
	run  func(text string, res *Result)
}

// Analyzer esegue in ordine parse, blocchi, lint e controllo ~disabled
type Analyzer struct {
	format         formats.ScriptFormat
	parser         *parser.Parser
	linter         *Linter
	maxDiagnostics int
	stages         []stage
}

// NewAnalyzer crea un analizzatore
func NewAnalyzer(opts Options) *Analyzer {
	if opts.Format == nil {
		opts.Format = branch.NewBranchFormat()
	}
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}

	a := &Analyzer{
		format:         opts.Format,
		parser:         parser.NewParser(opts.Format),
		linter:         NewLinter(opts.Format),
		maxDiagnostics: opts.MaxDiagnostics,
	}
	a.stages = []stage{
		{name: "parser", run: a.parseStage},
		{name: "bracket validator", run: a.bracketStage},
		{name: "lint", run: a.lintStage},
		{name: "disabled check", run: a.disabledStage},
	}
	return a
}

// Analyze analizza il testo con le opzioni predefinite
func Analyze(text string) *Result {
	return NewAnalyzer(Options{}).Analyze(text)
}

// Format restituisce il formato usato
func (a *Analyzer) Format() formats.ScriptFormat {
	return a.format
}

// Analyze esegue tutte le fasi. L'ordine delle diagnostiche è quello di
// scoperta, non quello delle posizioni.
func (a *Analyzer) Analyze(text string) *Result {
	res := &Result{}
	for _, st := range a.stages {
		a.runStage(st, text, res)
	}

	res.Diagnostics = normalize(res.Diagnostics)
	if a.maxDiagnostics > 0 && len(res.Diagnostics) > a.maxDiagnostics {
		res.Diagnostics = res.Diagnostics[:a.maxDiagnostics]
	}
	return res
}

// runStage isola una fase: un panic diventa una sola diagnostica
func (a *Analyzer) runStage(st stage, text string, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Diagnostics = append(res.Diagnostics, parser.Diagnostic{
				Message:  fmt.Sprintf("Internal error in %s: %v", st.name, r),
				Severity: parser.SeverityError,
				Code:     CodeInternalError,
			})
		}
	}()
	st.run(text, res)
}

func (a *Analyzer) parseStage(text string, res *Result) {
	doc := a.parser.Parse(text)
	res.Document = doc
	res.Diagnostics = append(res.Diagnostics, doc.Errors...)
}

func (a *Analyzer) bracketStage(text string, res *Result) {
	br := ValidateBrackets(text)
	res.Diagnostics = append(res.Diagnostics, br.Diagnostics...)
	res.Blocks = br.Blocks
}

func (a *Analyzer) lintStage(text string, res *Result) {
	res.Diagnostics = append(res.Diagnostics, a.linter.Lint(text)...)
}

func (a *Analyzer) disabledStage(_ string, res *Result) {
	if res.Document == nil || !res.Document.Disabled {
		return
	}
	var rng parser.Range
	for _, ln := range res.Document.Lines {
		if ln.Kind == parser.LineCommand && ln.Name == "disabled" {
			rng = ln.ContentRange()
			break
		}
	}
	res.Diagnostics = append(res.Diagnostics, parser.Diagnostic{
		Message:  "Document is disabled: '~disabled' found before the first story header",
		Range:    rng,
		Severity: parser.SeverityInformation,
		Code:     CodeDocumentDisabled,
	})
}

// normalize corregge intervalli negativi o rovesciati senza riordinare
func normalize(diags []parser.Diagnostic) []parser.Diagnostic {
	for i := range diags {
		r := &diags[i].Range
		clamp(&r.Start)
		clamp(&r.End)
		if r.End.Line < r.Start.Line || (r.End.Line == r.Start.Line && r.End.Character < r.Start.Character) {
			r.End = r.Start
		}
	}
	return diags
}

func clamp(p *parser.Position) {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Character < 0 {
		p.Character = 0
	}
}

// Count conta le diagnostiche di una severità
func (r *Result) Count(sev parser.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors indica se c'è almeno un Error
func (r *Result) HasErrors() bool {
	return r.Count(parser.SeverityError) > 0
}
