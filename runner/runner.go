// Package runner esegue il controllo batch di una cartella di script.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"branchscript-editor/analysis"
	"branchscript-editor/flow"
	"branchscript-editor/parser"
)

// Extension è l'estensione dei file cercati
const Extension = ".branch"

// ReportSuffix è aggiunto al nome del file per il report JSON
const ReportSuffix = "_diagnostics.json"

// Runner analizza tutti i file di una cartella
type Runner struct {
	analyzer    *analysis.Analyzer
	outputDir   string
	noReports   bool
	concurrency int
	out         io.Writer
}

// Config configurazione del runner
type Config struct {
	Analyzer *analysis.Analyzer
	// OutputDir vuota scrive i report accanto ai sorgenti; altrimenti le
	// sottocartelle relative alla radice vengono ricreate al suo interno
	OutputDir   string
	Concurrency int
	// Out riceve il riepilogo leggibile; nil lo scarta
	Out io.Writer
	// NoReports disattiva la scrittura dei file JSON
	NoReports bool
}

// FileReport è il contenuto di un file _diagnostics.json
type FileReport struct {
	Filename    string              `json:"filename"`
	Path        string              `json:"path"`
	AnalyzedAt  string              `json:"analyzed_at"`
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	Disabled    bool                `json:"disabled,omitempty"`
	Errors      int                 `json:"errors"`
	Warnings    int                 `json:"warnings"`
	Stories     []StoryReport       `json:"stories,omitempty"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
}

// StoryReport riassume una storia del file
type StoryReport struct {
	ID          string   `json:"id"`
	Line        int      `json:"line"`
	Choices     int      `json:"choices"`
	ChoiceIDs   int      `json:"choice_ids"`
	Unreachable []string `json:"unreachable,omitempty"`
}

// Summary riassunto dell'esecuzione
type Summary struct {
	TotalFiles  int           `json:"total_files"`
	CleanFiles  int           `json:"clean_files"`
	FailedFiles int           `json:"failed_files"`
	Errors      int           `json:"errors"`
	Warnings    int           `json:"warnings"`
	Duration    string        `json:"duration"`
	Reports     []*FileReport `json:"-"`
}

// HasErrors verifica se almeno un file ha errori o non è leggibile
func (s *Summary) HasErrors() bool {
	return s.FailedFiles > 0
}

// New crea un nuovo runner
func New(config Config) *Runner {
	if config.Analyzer == nil {
		config.Analyzer = analysis.NewAnalyzer(analysis.Options{})
	}
	if config.Concurrency < 1 {
		config.Concurrency = 4
	}
	if config.Out == nil {
		config.Out = io.Discard
	}
	return &Runner{
		analyzer:    config.Analyzer,
		outputDir:   config.OutputDir,
		noReports:   config.NoReports,
		concurrency: config.Concurrency,
		out:         config.Out,
	}
}

// Run analizza un file o tutti i file .branch sotto una cartella
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	startTime := time.Now()

	files, err := FindFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("nessun file %s trovato in %s", Extension, root)
	}

	fmt.Fprintf(r.out, "\n📁 Trovati %d file %s in %s\n", len(files), Extension, root)
	fmt.Fprintln(r.out, strings.Repeat("─", 50))

	reports := make([]*FileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = r.checkFile(file)
			return r.save(reports[i], r.reportPath(root, file))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{TotalFiles: len(files), Reports: reports}
	for _, report := range reports {
		r.printReport(report, r.reportPath(root, report.Path))
		summary.Errors += report.Errors
		summary.Warnings += report.Warnings
		if report.Success && report.Errors == 0 {
			summary.CleanFiles++
		} else {
			summary.FailedFiles++
		}
	}
	summary.Duration = time.Since(startTime).String()
	r.printSummary(summary)

	return summary, nil
}

// FindFiles restituisce i file .branch in ordine alfabetico
func FindFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("impossibile leggere %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("errore scansione %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// checkFile analizza un singolo file
func (r *Runner) checkFile(path string) *FileReport {
	report := &FileReport{
		Filename:    filepath.Base(path),
		Path:        path,
		AnalyzedAt:  time.Now().Format(time.RFC3339),
		Diagnostics: []parser.Diagnostic{},
	}

	text, err := parser.NewScriptParser(path).ReadText()
	if err != nil {
		report.Error = err.Error()
		return report
	}

	res := r.analyzer.Analyze(text)
	report.Success = true
	report.Diagnostics = res.Diagnostics
	report.Errors = res.Count(parser.SeverityError)
	report.Warnings = res.Count(parser.SeverityWarning)

	if res.Document == nil {
		return report
	}
	report.Disabled = res.Document.Disabled
	for _, story := range res.Document.Stories {
		choices := 0
		story.Walk(func(*parser.Choice) { choices++ })
		report.Stories = append(report.Stories, StoryReport{
			ID:          story.ID,
			Line:        story.Range.Start.Line,
			Choices:     choices,
			ChoiceIDs:   story.Refs.Len() - 1,
			Unreachable: flow.NewGraph(story, r.analyzer.Format()).Unreachable(),
		})
	}
	return report
}

// reportPath genera il path del report per un file. Con OutputDir il
// percorso relativo a root viene mantenuto, così file omonimi in
// sottocartelle diverse non si sovrascrivono.
func (r *Runner) reportPath(root, inputPath string) string {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Dir(inputPath)
	if r.outputDir != "" {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			// root è il file stesso
			rel = "."
		}
		dir = filepath.Join(r.outputDir, rel)
	}
	return filepath.Join(dir, baseName+ReportSuffix)
}

// save scrive il report JSON
func (r *Runner) save(report *FileReport, path string) error {
	if r.noReports {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("errore creazione cartella report: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("errore serializzazione %s: %w", report.Filename, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("errore salvataggio %s: %w", path, err)
	}
	return nil
}

func (r *Runner) printReport(report *FileReport, reportPath string) {
	fmt.Fprintf(r.out, "\n📄 %s\n", report.Filename)
	if !report.Success {
		fmt.Fprintf(r.out, "   ❌ Lettura FAILED: %s\n", report.Error)
		return
	}
	if report.Errors == 0 {
		fmt.Fprintf(r.out, "   ✅ OK - %d storie\n", len(report.Stories))
	} else {
		fmt.Fprintf(r.out, "   ❌ %d errori\n", report.Errors)
	}
	if report.Warnings > 0 {
		fmt.Fprintf(r.out, "   ⚠️  %d warning(s)\n", report.Warnings)
	}
	if report.Disabled {
		fmt.Fprintln(r.out, "   💤 Documento disabilitato")
	}
	for _, d := range report.Diagnostics {
		if d.Severity == parser.SeverityError {
			fmt.Fprintf(r.out, "   - %s\n", d.String())
		}
	}
	for _, story := range report.Stories {
		if len(story.Unreachable) > 0 {
			fmt.Fprintf(r.out, "   🔍 %s: scelte irraggiungibili %v\n", story.ID, story.Unreachable)
		}
	}
	if !r.noReports {
		fmt.Fprintf(r.out, "   💾 %s\n", reportPath)
	}
}

func (r *Runner) printSummary(summary *Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, strings.Repeat("═", 50))
	fmt.Fprintln(r.out, "📊 RIASSUNTO CONTROLLO")
	fmt.Fprintln(r.out, strings.Repeat("═", 50))
	fmt.Fprintf(r.out, "   File controllati: %d\n", summary.TotalFiles)
	fmt.Fprintf(r.out, "   Senza errori:     %d/%d\n", summary.CleanFiles, summary.TotalFiles)
	fmt.Fprintf(r.out, "   Errori:           %d\n", summary.Errors)
	fmt.Fprintf(r.out, "   Warning:          %d\n", summary.Warnings)
	fmt.Fprintf(r.out, "   Durata:           %s\n", summary.Duration)
	fmt.Fprintln(r.out, strings.Repeat("═", 50))
}
