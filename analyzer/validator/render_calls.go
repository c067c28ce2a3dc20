package validator

import (
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FindRenderCalls loads the Go packages under dir and collects every
// call whose function name matches the configured render functions and
// whose first string-literal argument looks like a template lookup key.
//
// Both calling conventions are supported:
//
//	c.Render("doc.html#row", data)     — method call
//	eng.GetTemplate("doc.html")        — method call
//	Render(w, "doc.html", data)        — plain call, key found among args
//
// Dynamic template names (non-literal arguments) cannot be validated
// statically and are skipped.
func FindRenderCalls(dir string, config Config) ([]RenderCall, []string) {
	var errs []string
	fset := token.NewFileSet()

	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:   dir,
		Fset:  fset,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, []string{fmt.Sprintf("load error: %v", err)}
	}

	var calls []RenderCall
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("package error: %v", e.Msg))
		}
		for _, f := range pkg.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}

				funcName := ""
				switch fn := call.Fun.(type) {
				case *ast.SelectorExpr:
					funcName = fn.Sel.Name
				case *ast.Ident:
					funcName = fn.Name
				}
				if !slices.Contains(config.RenderFunctionNames, funcName) {
					return true
				}

				name, ok := firstStringLiteral(call.Args)
				if !ok || !looksLikeTemplateName(name) {
					return true
				}

				pos := fset.Position(call.Pos())
				calls = append(calls, RenderCall{
					File:     pos.Filename,
					Line:     pos.Line,
					Template: name,
				})
				return true
			})
		}
	}

	return calls, errs
}

// firstStringLiteral returns the first string-literal argument.
func firstStringLiteral(args []ast.Expr) (string, bool) {
	for _, arg := range args {
		lit, ok := arg.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			continue
		}
		value, err := strconv.Unquote(lit.Value)
		if err != nil {
			continue
		}
		return value, true
	}
	return "", false
}

// looksLikeTemplateName filters out string literals that clearly are
// not template lookup keys: the document portion must carry a template
// file extension.
func looksLikeTemplateName(name string) bool {
	doc, _, _ := strings.Cut(name, "#")
	return isTemplateFile(doc)
}
