package engine

import (
	"fmt"
	"reflect"
	"strings"
)

// Node is a single renderable unit of a compiled template.
type Node interface {
	// Render produces the node's output against ctx. Errors are fatal
	// to the render and propagate synchronously.
	Render(ctx *Context) (string, error)
}

// NodeList is an ordered sequence of nodes.
type NodeList []Node

// Render concatenates the output of every node in order.
func (nl NodeList) Render(ctx *Context) (string, error) {
	var sb strings.Builder
	for _, n := range nl {
		out, err := n.Render(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// TextNode emits literal template text verbatim.
type TextNode struct {
	Text string
}

func (n *TextNode) Render(_ *Context) (string, error) {
	return n.Text, nil
}

// VariableNode emits the value of a dotted variable expression, e.g.
// {{ user.Name }}. Unresolvable variables render as the empty string.
type VariableNode struct {
	Expr string
}

func (n *VariableNode) Render(ctx *Context) (string, error) {
	value, ok := resolveExpr(ctx, n.Expr)
	if !ok || value == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", value), nil
}

// resolveExpr resolves a dotted variable expression against the
// context's scopes.
func resolveExpr(ctx *Context, expr string) (any, bool) {
	parts := strings.Split(expr, ".")

	value, ok := ctx.Get(parts[0])
	if !ok {
		return nil, false
	}

	for _, part := range parts[1:] {
		value, ok = resolveAttr(value, part)
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// resolveAttr resolves one step of a dotted path against maps with
// string keys and struct fields. Pointers are dereferenced first.
func resolveAttr(value any, attr string) (any, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(attr))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case reflect.Struct:
		fv := rv.FieldByName(attr)
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	}

	return nil, false
}
