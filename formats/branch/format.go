package branch

import (
	"regexp"
	"sort"
	"strings"

	"branchscript-editor/formats"
)

// BranchFormat implementa ScriptFormat per BranchScript
type BranchFormat struct{}

// NewBranchFormat crea un nuovo formato BranchScript
func NewBranchFormat() *BranchFormat {
	return &BranchFormat{}
}

// GetFormatName restituisce "BranchScript"
func (b *BranchFormat) GetFormatName() string {
	return "BranchScript"
}

// Command cerca un comando nella whitelist
func (b *BranchFormat) Command(name string) (formats.CommandInfo, bool) {
	info, ok := commands[name]
	return info, ok
}

// Commands restituisce tutti i comandi ordinati per nome
func (b *BranchFormat) Commands() []formats.CommandInfo {
	list := make([]formats.CommandInfo, 0, len(commands))
	for _, info := range commands {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// CommandTypo cerca la parola nella tabella degli errori noti
func (b *BranchFormat) CommandTypo(word string) (string, bool) {
	fix, ok := commandTypos[strings.ToLower(word)]
	return fix, ok
}

// BracketKeywords restituisce le parole chiave dei blocchi
func (b *BranchFormat) BracketKeywords() []formats.KeywordInfo {
	return append([]formats.KeywordInfo(nil), bracketKeywords...)
}

// BracketTypo cerca un errore di battitura tra parentesi quadre
func (b *BranchFormat) BracketTypo(word string) (string, bool) {
	fix, ok := bracketTypos[strings.ToLower(word)]
	return fix, ok
}

// VariablePrefixes restituisce una copia della tabella dei prefissi
func (b *BranchFormat) VariablePrefixes() map[string]string {
	out := make(map[string]string, len(variablePrefixes))
	for k, v := range variablePrefixes {
		out[k] = v
	}
	return out
}

// IsSuffixWord riconosce le parole con underscore della whitelist secondaria
func (b *BranchFormat) IsSuffixWord(word string) bool {
	return suffixWords[strings.ToLower(word)]
}

// PseudoTargets restituisce una copia delle destinazioni speciali
func (b *BranchFormat) PseudoTargets() map[string]string {
	out := make(map[string]string, len(pseudoTargets))
	for k, v := range pseudoTargets {
		out[k] = v
	}
	return out
}

var (
	inlineBracketRegex = regexp.MustCompile(`\[[^\[\]]*\]`)
	markupRegex        = regexp.MustCompile(`<[^>]+>`)
)

// StripCode rimuove espressioni [..] e markup, lasciando solo il testo
func (b *BranchFormat) StripCode(content string) string {
	cleaned := inlineBracketRegex.ReplaceAllString(content, "")
	cleaned = markupRegex.ReplaceAllString(cleaned, "")

	// Pulisci spazi multipli
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	return strings.TrimSpace(cleaned)
}
