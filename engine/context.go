package engine

// Context carries the variable scopes and render state for one render
// of a template.
//
// A Context must not be shared between concurrent renders. Concurrent
// renders of the same compiled template against distinct Contexts are
// safe: compiled templates and proxies are read-only after compilation.
type Context struct {
	dicts []map[string]any

	// Template is the renderable currently bound as the document being
	// rendered, or nil if none is bound yet.
	Template Renderable

	// TemplateName is the visible name of the bound template. For a
	// fragment proxy this is the fragment's own name.
	TemplateName string

	renderContext *RenderContext
}

// NewContext creates a render context seeded with data. A nil data map
// is allowed and yields an empty root scope.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = map[string]any{}
	}
	return &Context{
		dicts:         []map[string]any{data},
		renderContext: &RenderContext{},
	}
}

// Push adds a new innermost variable scope.
func (c *Context) Push() {
	c.dicts = append(c.dicts, map[string]any{})
}

// Pop removes the innermost variable scope. The root scope is never
// removed.
func (c *Context) Pop() {
	if len(c.dicts) > 1 {
		c.dicts = c.dicts[:len(c.dicts)-1]
	}
}

// Set assigns key in the innermost scope.
func (c *Context) Set(key string, value any) {
	c.dicts[len(c.dicts)-1][key] = value
}

// Get looks key up from the innermost scope outwards.
func (c *Context) Get(key string) (any, bool) {
	for i := len(c.dicts) - 1; i >= 0; i-- {
		if v, ok := c.dicts[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// BindTemplate binds t as the current document for the duration of a
// render. It returns a restore function that must be deferred so prior
// state is reinstated even when the nested render fails.
func (c *Context) BindTemplate(t Renderable) func() {
	prevTemplate := c.Template
	prevName := c.TemplateName
	c.Template = t
	c.TemplateName = t.Name()
	return func() {
		c.Template = prevTemplate
		c.TemplateName = prevName
	}
}

// RenderContext returns the per-render state stack used by stateful
// tags and caching keyed on the current template.
func (c *Context) RenderContext() *RenderContext {
	return c.renderContext
}

// RenderContext is a stack of render-scope markers. Each entry is the
// renderable whose body is currently being rendered, so nested
// self-reference and per-template state behave correctly.
type RenderContext struct {
	stack []Renderable
}

// PushState pushes t as the current render scope and returns a restore
// function to be deferred around the nested render.
func (rc *RenderContext) PushState(t Renderable) func() {
	rc.stack = append(rc.stack, t)
	return func() {
		rc.stack = rc.stack[:len(rc.stack)-1]
	}
}

// Current returns the renderable at the top of the state stack, or nil
// if no render is in progress.
func (rc *RenderContext) Current() Renderable {
	if len(rc.stack) == 0 {
		return nil
	}
	return rc.stack[len(rc.stack)-1]
}
