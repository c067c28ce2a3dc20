package partials

import (
	"fmt"

	"github.com/abiiranathan/partials/engine"
)

// TemplateProxy presents one fragment as if it were a standalone
// document. It is a view: it owns only the fragment's node sequence and
// borrows the owning document's origin to answer source and exception
// questions. It satisfies engine.Renderable, so it can be bound as the
// current template of a context and returned from loaders in place of a
// whole document.
type TemplateProxy struct {
	nodelist engine.NodeList
	origin   *engine.Origin
	name     string
	engine   *engine.Engine
}

// newProxy wraps a parsed fragment body for the document identified by
// origin.
func newProxy(nodelist engine.NodeList, origin *engine.Origin, name string, e *engine.Engine) *TemplateProxy {
	return &TemplateProxy{
		nodelist: nodelist,
		origin:   origin,
		name:     name,
		engine:   e,
	}
}

// Name returns the fragment's own name. Context binding uses it as the
// visible template name, so a rendering fragment reports itself rather
// than its enclosing document.
func (tp *TemplateProxy) Name() string {
	return tp.name
}

// Origin returns the owning document's origin.
func (tp *TemplateProxy) Origin() *engine.Origin {
	return tp.origin
}

// Render runs the fragment body against ctx. The proxy pushes itself as
// the current render scope and, only when no document is bound yet,
// binds itself as the current template for the duration of the render.
// Prior state is restored on exit even when the render fails. A nil ctx
// is allowed.
func (tp *TemplateProxy) Render(ctx *engine.Context) (string, error) {
	if ctx == nil {
		ctx = engine.NewContext(nil)
	}

	defer ctx.RenderContext().PushState(tp)()

	if ctx.Template == nil {
		defer ctx.BindTemplate(tp)()
		return tp.nodelist.Render(ctx)
	}
	return tp.nodelist.Render(ctx)
}

// Source returns the exact verbatim slice of the owning document's
// source between this fragment's begin and end directives, excluding
// the directive tokens themselves. The owning document is re-resolved
// through its loader so the text reflects the current source on disk.
func (tp *TemplateProxy) Source() (string, error) {
	return fragmentSource(tp.engine, tp.origin, tp.name)
}

// ExceptionInfo forwards to the true owning document so stack traces
// report the real file and line rather than the fragment view.
func (tp *TemplateProxy) ExceptionInfo(err error, tok engine.Token) (*engine.ExceptionInfo, error) {
	owner, oerr := tp.owner()
	if oerr != nil {
		return nil, oerr
	}
	return owner.ExceptionInfo(err, tok)
}

// owner re-resolves the owning document through the loader recorded on
// the borrowed origin.
func (tp *TemplateProxy) owner() (engine.Renderable, error) {
	if tp.origin.Loader == nil {
		return nil, fmt.Errorf("partial %q: owning template %q has no loader", tp.name, tp.origin.Name)
	}
	return tp.origin.Loader.GetTemplate(tp.engine, tp.origin.TemplateName, nil)
}
