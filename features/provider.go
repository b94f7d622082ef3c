// Package features proietta il risultato dell'analisi nelle viste
// dell'editor: outline, folding, hover e completamento.
package features

import (
	"branchscript-editor/formats"
	"branchscript-editor/formats/branch"
)

// Provider genera le viste usando le tabelle di un formato
type Provider struct {
	format formats.ScriptFormat
}

// NewProvider crea un provider; con format nil usa BranchScript
func NewProvider(format formats.ScriptFormat) *Provider {
	if format == nil {
		format = branch.NewBranchFormat()
	}
	return &Provider{format: format}
}
