package branch

import "branchscript-editor/formats"

// ============================================
// COMANDI TILDE
// ============================================

var commands = map[string]formats.CommandInfo{
	"if": {
		Name:               "if",
		Kind:               formats.CommandRequirement,
		RequiresExpression: true,
		CheckParens:        true,
		Summary:            "Shows the choice only when the condition is true.",
		Usage:              "~if p_strength >= 10",
	},
	"ifd": {
		Name:               "ifd",
		Kind:               formats.CommandRequirement,
		RequiresExpression: true,
		CheckParens:        true,
		Summary:            "Like `~if`, but the choice stays visible and is disabled when the condition is false.",
		Usage:              "~ifd g_gold > 5",
	},
	"once": {
		Name:    "once",
		Kind:    formats.CommandRequirement,
		Summary: "The choice can be picked only once per playthrough.",
		Usage:   "~once",
	},
	"set": {
		Name:               "set",
		Kind:               formats.CommandMutation,
		RequiresExpression: true,
		ShorthandAllowed:   true,
		CheckParens:        true,
		Summary:            "Assigns one or more variables when the choice is taken.",
		Usage:              "~set p_strength += 1",
	},
	"setif": {
		Name:               "setif",
		Kind:               formats.CommandMutation,
		RequiresExpression: true,
		CheckParens:        true,
		Summary:            "Assigns a variable only when the condition holds.",
		Usage:              "~setif g_gold > 5 ? f_rich = true",
	},
	"call": {
		Name:               "call",
		Kind:               formats.CommandMutation,
		RequiresExpression: true,
		ShorthandAllowed:   true,
		Summary:            "Invokes a host function registered by the game.",
		Usage:              "~call play_sound(\"door\")",
	},
	"disabled": {
		Name:    "disabled",
		Kind:    formats.CommandFlag,
		Summary: "Marks the whole document as disabled: it is skipped by the game.",
		Usage:   "~disabled",
	},
}

// commandTypos è una tabella esatta, nessuna distanza di edit
var commandTypos = map[string]string{
	"iff":     "if",
	"fi":      "if",
	"ifdef":   "ifd",
	"ifdf":    "ifd",
	"onse":    "once",
	"onc":     "once",
	"sett":    "set",
	"st":      "set",
	"seti":    "setif",
	"setiff":  "setif",
	"set_if":  "setif",
	"cal":     "call",
	"calll":   "call",
	"disable": "disabled",
	"disabed": "disabled",
}

// ============================================
// PAROLE CHIAVE TRA PARENTESI
// ============================================

var bracketKeywords = []formats.KeywordInfo{
	{Name: "if", Usage: "[if condition]", Summary: "Opens a conditional block: the text up to the next branch keyword is shown only when the condition is true."},
	{Name: "random", Usage: "[random]", Summary: "Opens a random-selection block: one of the `[or]`-separated variants is shown."},
	{Name: "elseif", Usage: "[elseif condition]", Summary: "Alternative branch with its own condition."},
	{Name: "else", Usage: "[else]", Summary: "Branch shown when no previous condition matched."},
	{Name: "or", Usage: "[or]", Summary: "Separates the variants of a block. `[|]` is a shorthand."},
	{Name: "endif", Usage: "[endif]", Summary: "Closes the innermost conditional block. `[end]` is equivalent."},
	{Name: "end", Usage: "[end]", Summary: "Closes the innermost conditional or random block."},
}

var bracketTypos = map[string]string{
	"iff":    "if",
	"els":    "else",
	"esle":   "else",
	"elif":   "elseif",
	"elsif":  "elseif",
	"endiff": "endif",
	"edif":   "endif",
	"enif":   "endif",
	"fi":     "endif",
	"ranodm": "random",
	"rand":   "random",
}

// ============================================
// VARIABILI
// ============================================

var variablePrefixes = map[string]string{
	"p": "Player attribute, persisted for the whole playthrough.",
	"g": "Global game state shared by every story.",
	"s": "Story-local variable, reset when the story is left.",
	"c": "Choice-local counter, reset when the choice is re-entered.",
	"t": "Temporary value, discarded at the next page break.",
	"f": "Boolean flag.",
	"i": "Inventory item count.",
	"n": "Relationship score with a non-player character.",
}

// suffixWords contengono un underscore ma non sono variabili
var suffixWords = map[string]bool{
	"is_set":     true,
	"not_set":    true,
	"at_least":   true,
	"at_most":    true,
	"one_of":     true,
	"none_of":    true,
	"random_int": true,
	"play_sound": true,
	"show_image": true,
}

// ============================================
// DESTINAZIONI SPECIALI
// ============================================

var pseudoTargets = map[string]string{
	"start":     "Jumps to the beginning of the current story.",
	"end":       "Ends the current story.",
	"back":      "Returns to the choice list that led here.",
	"backonce":  "Returns to the previous choice list and hides the choice just taken.",
	"startonce": "Restarts the story and hides the choice just taken.",
}
