package dsl

import "github.com/alecthomas/participle/v2/lexer"

// circuitLexer defines the token set for the DSL grammar (grammar.go),
// following pkg/bsdl's lexer.MustSimple idiom: comments and whitespace are
// ordinary rules elided at parser build time, not special-cased here.
var circuitLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	{Name: "KwCircuit", Pattern: `\bcircuit\b`},
	{Name: "KwNet", Pattern: `\bnet\b`},
	{Name: "KwInst", Pattern: `\binst\b`},
	{Name: "KwSub", Pattern: `\bsub\b`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_~][a-zA-Z0-9_]*`},

	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Dot", Pattern: `\.`},
})
