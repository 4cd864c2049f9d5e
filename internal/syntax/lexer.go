// Package syntax is gpir's external collaborator for the textual form: a
// participle-based lexer and grammar that parses the exact output of
// internal/ir.Print back into a *ir.Module, plus the converter that wires
// parsed nodes to live IR definitions. It is intentionally minimal — round
// -trip oriented, not a hardened front end (spec §6).
package syntax

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes gpir's textual form. A single "Root" state is enough —
// the grammar has no context-sensitive lexical modes — but MustStateful
// keeps the same shape the surface-language lexer this is modeled on uses.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Arrow", `->`, nil},
		{"Ident", `[A-Za-z_][A-Za-z0-9_.]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Punct", `[{}()\[\]#:,.=*@%'?$]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
