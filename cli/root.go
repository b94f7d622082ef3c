// Package cli contiene i comandi da riga di comando del backend.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"branchscript-editor/analysis"
	"branchscript-editor/config"
	"branchscript-editor/formats"
	_ "branchscript-editor/formats/branch" // Registra il formato BranchScript
)

// ErrDiagnostics segnala che il controllo ha trovato errori
var ErrDiagnostics = errors.New("trovati errori nei file controllati")

// NewRootCommand costruisce l'albero dei comandi
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "branchscript-editor",
		Short: "Editor backend for BranchScript interactive stories",
		Long: `branchscript-editor analyzes .branch scripts: it reports diagnostics,
builds the outline of stories and choices and serves the editor API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigFile, "Config file (YAML or TOML)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newOutlineCommand())

	return rootCmd
}

// loadConfig legge il file indicato dal flag --config
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(path)
}

// newAnalyzer crea l'analizzatore descritto dalla configurazione
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	format := formats.GetRegisteredFormat(cfg.Analysis.Format)
	if format == nil {
		return nil, fmt.Errorf("formato '%s' non registrato", cfg.Analysis.Format)
	}
	return analysis.NewAnalyzer(analysis.Options{
		Format:         format,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
	}), nil
}
