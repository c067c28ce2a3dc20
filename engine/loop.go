package engine

import (
	"fmt"
	"reflect"
	"strings"
)

// ForNode renders its body once per element of a sequence, binding the
// element to the loop variable in a scope pushed for each iteration.
type ForNode struct {
	varName  string
	listExpr string
	body     NodeList
}

// parseFor compiles {% for <var> in <sequence> %} ... {% endfor %}.
func parseFor(p *Parser, tok Token) (Node, error) {
	bits := tok.SplitContents()
	if len(bits) != 4 || bits[2] != "in" {
		return nil, &SyntaxError{
			Message: fmt.Sprintf("%q tag requires the format: for <var> in <sequence>", bits[0]),
			Token:   tok.Contents,
			Line:    tok.LineNo,
		}
	}

	body, err := p.Parse("endfor")
	if err != nil {
		return nil, err
	}
	p.DeleteFirstToken()

	return &ForNode{varName: bits[1], listExpr: bits[3], body: body}, nil
}

// Render iterates the resolved sequence. A missing or non-sequence
// value renders as the empty string, matching variable resolution.
func (n *ForNode) Render(ctx *Context) (string, error) {
	value, ok := resolveExpr(ctx, n.listExpr)
	if !ok || value == nil {
		return "", nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", nil
	}

	var sb strings.Builder
	for i := 0; i < rv.Len(); i++ {
		ctx.Push()
		ctx.Set(n.varName, rv.Index(i).Interface())
		out, err := n.body.Render(ctx)
		ctx.Pop()
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}
