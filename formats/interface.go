package formats

// CommandKind indica il ruolo di un comando tilde
type CommandKind int

const (
	// CommandRequirement condiziona la visibilità (es: ~if)
	CommandRequirement CommandKind = iota
	// CommandMutation modifica lo stato (es: ~set)
	CommandMutation
	// CommandFlag è un flag a livello di documento (es: ~disabled)
	CommandFlag
)

func (k CommandKind) String() string {
	switch k {
	case CommandRequirement:
		return "requirement"
	case CommandMutation:
		return "mutation"
	case CommandFlag:
		return "flag"
	}
	return "unknown"
}

// CommandInfo descrive un comando della whitelist
type CommandInfo struct {
	Name string      `json:"name"`
	Kind CommandKind `json:"kind"`

	// RequiresExpression: il comando vuole un'espressione dopo la parola chiave
	RequiresExpression bool `json:"requires_expression"`
	// ShorthandAllowed: l'espressione mancante è tollerata (~set, ~call)
	ShorthandAllowed bool `json:"shorthand_allowed"`
	// CheckParens: l'espressione viene controllata per parentesi bilanciate
	CheckParens bool `json:"check_parens"`

	Summary string `json:"summary"`
	Usage   string `json:"usage"`
}

// KeywordInfo documenta una parola chiave tra parentesi quadre
type KeywordInfo struct {
	Name    string `json:"name"`
	Usage   string `json:"usage"`
	Summary string `json:"summary"`
}

// ScriptFormat definisce l'interface per i dialetti del linguaggio
type ScriptFormat interface {
	// GetFormatName restituisce il nome del formato
	GetFormatName() string

	// === COMANDI ===

	// Command cerca un comando nella whitelist
	Command(name string) (CommandInfo, bool)

	// Commands restituisce la whitelist ordinata per nome
	Commands() []CommandInfo

	// CommandTypo cerca un errore di battitura noto (tabella esatta)
	// Es: "iff" -> "if"
	CommandTypo(word string) (string, bool)

	// === PAROLE CHIAVE ===

	// BracketKeywords restituisce le parole chiave dei blocchi condizionali
	BracketKeywords() []KeywordInfo

	// BracketTypo cerca un errore di battitura di una parola chiave
	// Es: "endiff" -> "endif"
	BracketTypo(word string) (string, bool)

	// === VARIABILI E SALTI ===

	// VariablePrefixes restituisce prefisso -> descrizione (es: "p" -> giocatore)
	VariablePrefixes() map[string]string

	// IsSuffixWord riconosce parole con underscore che non sono variabili
	IsSuffixWord(word string) bool

	// PseudoTargets restituisce le destinazioni speciali con descrizione
	PseudoTargets() map[string]string

	// StripCode rimuove il codice lasciando solo il testo
	StripCode(content string) string
}
