package cli

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"branchscript-editor/runner"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Analyze a .branch file or every .branch file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().StringP("out", "o", "", "Directory for the _diagnostics.json reports (default: next to each file)")
	cmd.Flags().Bool("no-report", false, "Do not write JSON reports")
	cmd.Flags().Int("concurrency", 0, "Files analyzed in parallel (overrides config)")
	cmd.Flags().Bool("json", false, "Print the summary as JSON")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	noReport, _ := cmd.Flags().GetBool("no-report")
	asJSON, _ := cmd.Flags().GetBool("json")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		concurrency = cfg.Runner.Concurrency
	}

	rc := runner.Config{
		Analyzer:    analyzer,
		OutputDir:   outDir,
		Concurrency: concurrency,
		NoReports:   noReport,
	}
	if !asJSON {
		rc.Out = cmd.OutOrStdout()
	}

	summary, err := runner.New(rc).Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	}

	if summary.HasErrors() {
		return ErrDiagnostics
	}
	return nil
}
