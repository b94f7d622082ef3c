package parser

import (
	"fmt"
	"os"

	"branchscript-editor/formats"
)

// ScriptParser gestisce il parsing dei file .branch su disco
type ScriptParser struct {
	filepath string
	parser   *Parser
}

// NewScriptParser crea un nuovo parser per un file
func NewScriptParser(filepath string) *ScriptParser {
	return NewScriptParserWithFormat(filepath, nil)
}

// NewScriptParserWithFormat crea un parser per un file con un formato esplicito
func NewScriptParserWithFormat(filepath string, format formats.ScriptFormat) *ScriptParser {
	return &ScriptParser{filepath: filepath, parser: NewParser(format)}
}

// Path restituisce il percorso del file
func (sp *ScriptParser) Path() string {
	return sp.filepath
}

// Parse legge e parsa il file
func (sp *ScriptParser) Parse() (*Document, error) {
	text, err := sp.ReadText()
	if err != nil {
		return nil, err
	}
	return sp.parser.Parse(text), nil
}

// ReadText legge il contenuto del file
func (sp *ScriptParser) ReadText() (string, error) {
	data, err := os.ReadFile(sp.filepath)
	if err != nil {
		return "", fmt.Errorf("errore lettura file: %w", err)
	}
	return string(data), nil
}
