package engine

// UnknownSource is the origin name used for templates compiled from
// strings rather than loaded from a named source.
const UnknownSource = "<unknown source>"

// Renderable is the capability set shared by whole documents and
// fragment proxies. Anything that satisfies it can be bound as the
// current template of a Context and used for exception reporting, so
// a fragment can stand in wherever a full document is expected.
type Renderable interface {
	// Name is the identity the renderable reports for itself: the
	// template name for documents, the fragment name for proxies.
	Name() string

	// Render runs the renderable against ctx. A nil ctx is allowed and
	// behaves like an empty context.
	Render(ctx *Context) (string, error)

	// Source returns the renderable's verbatim source text. For a
	// fragment proxy this is the exact slice of the owning document
	// between the fragment's directive boundaries.
	Source() (string, error)

	// ExceptionInfo resolves err and the failing token to a location in
	// the true owning document.
	ExceptionInfo(err error, tok Token) (*ExceptionInfo, error)
}

// Origin identifies where a template came from: its resolved source
// name, the logical name it was requested under, and the loader that
// produced it (nil for string templates). Fragment proxies borrow the
// origin of their owning document to re-fetch source text and enrich
// exceptions.
type Origin struct {
	// Name is the resolved source identity, typically an absolute path.
	Name string

	// TemplateName is the logical name the template was requested
	// under, e.g. "pages/index.html".
	TemplateName string

	// Loader is the loader that resolved this origin.
	Loader Loader
}

// Template is one compiled document: its verbatim source, the compiled
// node list, its origin, and any per-document state tags registered
// during compilation.
//
// A Template is immutable after compilation and safe for concurrent
// renders against distinct contexts.
type Template struct {
	origin   *Origin
	source   string
	nodelist NodeList
	engine   *Engine

	// ExtraData is the per-document compilation state captured from the
	// parser (the partials registry lives under its own key here).
	ExtraData map[string]any
}

// Name returns the template's logical name, falling back to the
// resolved origin name.
func (t *Template) Name() string {
	if t.origin.TemplateName != "" {
		return t.origin.TemplateName
	}
	return t.origin.Name
}

// Origin returns the template's origin.
func (t *Template) Origin() *Origin {
	return t.origin
}

// Engine returns the engine that compiled this template.
func (t *Template) Engine() *Engine {
	return t.engine
}

// Nodelist returns the compiled node sequence.
func (t *Template) Nodelist() NodeList {
	return t.nodelist
}

// Source returns the template's verbatim source text.
func (t *Template) Source() (string, error) {
	return t.source, nil
}

// Render runs the template against ctx, binding itself as the current
// document if no document is bound yet. A nil ctx is allowed.
func (t *Template) Render(ctx *Context) (string, error) {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	defer ctx.RenderContext().PushState(t)()
	if ctx.Template == nil {
		defer ctx.BindTemplate(t)()
		return t.nodelist.Render(ctx)
	}
	return t.nodelist.Render(ctx)
}

// RenderData is a convenience wrapper that renders the template against
// a fresh context seeded with data.
func (t *Template) RenderData(data map[string]any) (string, error) {
	return t.Render(NewContext(data))
}

// ExceptionInfo resolves err and the failing token against this
// template's own source.
func (t *Template) ExceptionInfo(err error, tok Token) (*ExceptionInfo, error) {
	return &ExceptionInfo{
		Name:    t.Name(),
		Line:    tok.LineNo,
		Token:   tok.Contents,
		Message: err.Error(),
	}, nil
}
