package partials

import (
	"fmt"

	"github.com/abiiranathan/partials/engine"
)

// DefinePartialNode sits at a fragment's definition site. Registration
// happened at parse time; at render time the node emits the fragment
// body in place when the definition is inline, and nothing otherwise.
type DefinePartialNode struct {
	name     string
	inline   bool
	nodelist engine.NodeList
}

func (n *DefinePartialNode) Render(ctx *engine.Context) (string, error) {
	if n.inline {
		return n.nodelist.Render(ctx)
	}
	return "", nil
}

// RenderPartialNode renders a fragment by name.
//
// The node holds the document's extra-data map as a lookup handle, not
// the registry itself: forward references are legal, so at construction
// time the registry may not contain the name, or may not exist at all.
// Dereferencing happens once, at render time.
type RenderPartialNode struct {
	name  string
	extra map[string]any
	token engine.Token
}

func (n *RenderPartialNode) Render(ctx *engine.Context) (string, error) {
	reg, ok := registryFrom(n.extra)
	if !ok {
		return "", &engine.SyntaxError{
			Message: fmt.Sprintf("partial %q: no partials are defined in this template", n.name),
			Token:   n.token.Contents,
			Line:    n.token.LineNo,
		}
	}

	proxy, ok := reg[n.name]
	if !ok {
		return "", &engine.SyntaxError{
			Message: fmt.Sprintf("partial %q is not defined in this template", n.name),
			Token:   n.token.Contents,
			Line:    n.token.LineNo,
		}
	}

	return proxy.Render(ctx)
}
