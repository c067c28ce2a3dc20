package engine

import "strings"

// TokenType identifies the kind of a lexed template token.
type TokenType int

const (
	// TokenText is literal template text between tags.
	TokenText TokenType = iota
	// TokenVar is a {{ variable }} token.
	TokenVar
	// TokenBlock is a {% directive %} token.
	TokenBlock
	// TokenComment is a {# comment #} token.
	TokenComment
)

// Token is a single lexed unit of template source.
type Token struct {
	// Type is the kind of token.
	Type TokenType

	// Contents is the token payload with the surrounding delimiters and
	// outer whitespace stripped. For TokenText it is the raw text.
	Contents string

	// Position is the byte offset of the token in the template source,
	// including its delimiters.
	Position int

	// LineNo is the 1-based source line the token starts on.
	LineNo int
}

// SplitContents splits a block token's contents into arguments.
//
// Arguments are separated by whitespace. Quoted arguments ("name" or
// `name`) are returned without their quotes and may contain spaces.
// Mixing quoted and bare arguments is accepted.
func (t Token) SplitContents() []string {
	var parts []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for _, r := range t.Contents {
		switch {
		case !inString && (r == '"' || r == '`'):
			inString = true
			stringChar = r
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}

		case inString && r == stringChar:
			inString = false
			parts = append(parts, current.String())
			current.Reset()

		case !inString && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
