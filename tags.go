package partials

import (
	"fmt"
	"strings"

	"github.com/abiiranathan/partials/engine"
)

// Directive names. The startpartial/endpartial pair is the deprecated
// spelling kept for backward compatibility.
const (
	tagPartialDef    = "partialdef"
	tagEndPartialDef = "endpartialdef"
	tagPartial       = "partial"
	tagStartPartial  = "startpartial"
	tagEndPartial    = "endpartial"
)

// Register installs the partial tags on e. It must be called before
// compiling any document that uses them.
func Register(e *engine.Engine) {
	e.RegisterTag(tagPartialDef, parsePartialDef)
	e.RegisterTag(tagStartPartial, func(p *engine.Parser, tok engine.Token) (engine.Node, error) {
		p.Engine().Deprecated(tagStartPartial,
			"the {% startpartial %} tag is deprecated, use {% partialdef %} instead")
		return parsePartialDef(p, tok)
	})
	e.RegisterTag(tagPartial, parsePartial)
}

// parsePartialDef compiles a fragment definition: it consumes the body
// up to the matching end directive, registers the fragment in the
// owning document's registry, and returns the definition-site node.
//
// Accepted forms:
//
//	{% partialdef name %}...{% endpartialdef %}
//	{% partialdef name inline %}...{% endpartialdef name %}
//
// The end directive may optionally repeat the fragment name; a
// non-matching echo is a syntax error. The parameterized inline form
// (inline=true) is accepted with a deprecation warning.
func parsePartialDef(p *engine.Parser, tok engine.Token) (engine.Node, error) {
	bits := tok.SplitContents()

	if len(bits) < 2 || len(bits) > 3 {
		return nil, &engine.SyntaxError{
			Message: fmt.Sprintf("%q tag requires 2-3 arguments", bits[0]),
			Token:   tok.Contents,
			Line:    tok.LineNo,
		}
	}

	name := bits[1]

	inline := false
	if len(bits) == 3 {
		switch {
		case bits[2] == "inline":
			inline = true
		case strings.HasPrefix(bits[2], "inline="):
			// Old parameterized spelling; the value is ignored because
			// the modifier takes no parameters.
			p.Engine().Deprecated("inline=",
				"the inline=... form is deprecated, use the bare inline modifier")
			inline = true
		default:
			return nil, &engine.SyntaxError{
				Message: fmt.Sprintf("%q tag received an unknown argument %q", bits[0], bits[2]),
				Token:   tok.Contents,
				Line:    tok.LineNo,
			}
		}
	}

	// Nested definitions are rejected so that source extraction can
	// rely on well-formed, non-nested directive pairs.
	if open, ok := p.ExtraData[openKey].(string); ok {
		return nil, &engine.SyntaxError{
			Message: fmt.Sprintf("%q cannot be defined inside partial %q", name, open),
			Token:   tok.Contents,
			Line:    tok.LineNo,
		}
	}
	p.ExtraData[openKey] = name
	defer delete(p.ExtraData, openKey)

	nodelist, err := p.Parse(tagEndPartialDef, tagEndPartial)
	if err != nil {
		return nil, err
	}

	// Parse only returns without error when the terminator is still in
	// the stream; an exhausted stream is its "unclosed tag" error.
	endTok, _ := p.NextToken()

	// The end directive may echo the fragment name; it must then match
	// the opening name exactly.
	if endBits := endTok.SplitContents(); len(endBits) > 1 && endBits[1] != name {
		return nil, &engine.SyntaxError{
			Message: fmt.Sprintf("%q tag closes partial %q, expected %q", endBits[0], endBits[1], name),
			Token:   endTok.Contents,
			Line:    endTok.LineNo,
		}
	}

	registry := ensureRegistry(p.ExtraData)
	registry[name] = newProxy(nodelist, p.Origin(), name, p.Engine())

	return &DefinePartialNode{name: name, inline: inline, nodelist: nodelist}, nil
}

// parsePartial compiles a {% partial name %} reference. The lookup is
// deferred to render time so the reference may precede its definition.
func parsePartial(p *engine.Parser, tok engine.Token) (engine.Node, error) {
	bits := tok.SplitContents()
	if len(bits) != 2 {
		return nil, &engine.SyntaxError{
			Message: fmt.Sprintf("%q tag requires a single argument", bits[0]),
			Token:   tok.Contents,
			Line:    tok.LineNo,
		}
	}

	return &RenderPartialNode{name: bits[1], extra: p.ExtraData, token: tok}, nil
}
