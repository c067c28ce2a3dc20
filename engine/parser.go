package engine

import (
	"fmt"
	"slices"
)

// TagFunc compiles one block directive. It receives the parser
// positioned just after the directive token and the token itself, and
// returns the render node to emit in place.
type TagFunc func(p *Parser, tok Token) (Node, error)

// Parser turns a token stream into a node list, dispatching block
// directives to registered tag functions.
//
// ExtraData is a side-channel for tag implementations that need to
// attach per-document state to the compilation (the partials registry
// lives there). It is always non-nil and is carried onto the compiled
// Template, so state registered during parsing survives for the
// document's lifetime.
type Parser struct {
	engine *Engine
	origin *Origin
	tokens []Token

	// ExtraData holds per-document compilation state keyed by owner.
	ExtraData map[string]any
}

// NewParser creates a parser over tokens for the document identified by
// origin. A nil origin is replaced with an anonymous one.
func NewParser(e *Engine, tokens []Token, origin *Origin) *Parser {
	if origin == nil {
		origin = &Origin{Name: UnknownSource}
	}
	return &Parser{
		engine:    e,
		origin:    origin,
		tokens:    tokens,
		ExtraData: map[string]any{},
	}
}

// Engine returns the engine this parser compiles for.
func (p *Parser) Engine() *Engine {
	return p.engine
}

// Origin returns the identity of the document being compiled.
func (p *Parser) Origin() *Origin {
	return p.origin
}

// Parse consumes tokens and builds a node list until one of the named
// block directives is reached. The terminating directive token is left
// in the stream; callers consume it with NextToken or DeleteFirstToken
// after inspecting its arguments.
//
// With no terminators, Parse consumes the entire stream.
func (p *Parser) Parse(until ...string) (NodeList, error) {
	var nodes NodeList

	for len(p.tokens) > 0 {
		tok := p.tokens[0]
		p.tokens = p.tokens[1:]

		switch tok.Type {
		case TokenText:
			nodes = append(nodes, &TextNode{Text: tok.Contents})

		case TokenVar:
			if tok.Contents == "" {
				return nil, &SyntaxError{
					Message: "empty variable tag",
					Line:    tok.LineNo,
				}
			}
			nodes = append(nodes, &VariableNode{Expr: tok.Contents})

		case TokenComment:
			// Comments produce no output.

		case TokenBlock:
			command := firstField(tok.Contents)
			if command == "" {
				return nil, &SyntaxError{
					Message: "empty block tag",
					Line:    tok.LineNo,
				}
			}

			if slices.Contains(until, command) {
				// Leave the terminator for the caller.
				p.tokens = append([]Token{tok}, p.tokens...)
				return nodes, nil
			}

			fn, ok := p.engine.tags[command]
			if !ok {
				return nil, &SyntaxError{
					Message: fmt.Sprintf("invalid block tag %q", command),
					Token:   tok.Contents,
					Line:    tok.LineNo,
				}
			}

			node, err := fn(p, tok)
			if err != nil {
				return nil, err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		}
	}

	if len(until) > 0 {
		return nil, &SyntaxError{
			Message: fmt.Sprintf("unclosed tag: expected one of %v", until),
		}
	}

	return nodes, nil
}

// NextToken removes and returns the next token in the stream.
func (p *Parser) NextToken() (Token, bool) {
	if len(p.tokens) == 0 {
		return Token{}, false
	}
	tok := p.tokens[0]
	p.tokens = p.tokens[1:]
	return tok, true
}

// DeleteFirstToken discards the next token. Used by tags to drop the
// end directive left in the stream by Parse.
func (p *Parser) DeleteFirstToken() {
	if len(p.tokens) > 0 {
		p.tokens = p.tokens[1:]
	}
}

// firstField returns the first whitespace-separated field of s.
func firstField(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}
