package dsl

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser wraps a participle-generated parser for File, the same way
// pkg/bsdl.Parser wraps one for BSDLFile.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds a Parser. The lookahead of 2 disambiguates InstAssignStmt
// from SubAssignStmt (both start with an Ident) before choosing the
// Dot-vs-LBracket alternative.
func NewParser() (*Parser, error) {
	p, err := participle.Build[File](
		participle.Lexer(circuitLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("dsl: building parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Parse reads a full DSL source from r.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("dsl: parse: %w", err)
	}
	return f, nil
}

// ParseString parses src directly.
func (p *Parser) ParseString(src string) (*File, error) {
	f, err := p.parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("dsl: parse: %w", err)
	}
	return f, nil
}

// ParseFile reads and parses the named file.
func (p *Parser) ParseFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dsl: opening %s: %w", filename, err)
	}
	defer f.Close()
	return p.Parse(f)
}
