package branch

import "branchscript-editor/formats"

// init registra automaticamente il formato BranchScript
// Questo viene chiamato quando il package viene importato
func init() {
	formats.RegisterFormat(formats.DefaultFormat, func() formats.ScriptFormat {
		return NewBranchFormat()
	})

	// Registra anche l'abbreviazione usata nelle estensioni dei file
	formats.RegisterFormat("branch", func() formats.ScriptFormat {
		return NewBranchFormat()
	})
}
