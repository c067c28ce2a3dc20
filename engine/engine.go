// Package engine implements a minimal Django-style template engine:
// {% directive %} blocks dispatched through a tag registry,
// {{ variable }} interpolation over maps and structs, and a pluggable
// document-loading chain.
//
// The engine ships a single builtin block tag, {% for %}; further tag
// packages register their directives on an Engine instance. Compiled
// templates are immutable and safe for concurrent rendering.
package engine

import (
	"sync"

	"go.uber.org/zap"
)

// Loader resolves a template name into a renderable document.
//
// Implementations that decorate other loaders (caches, name splitters)
// receive the engine on each call so they can compile sources without
// holding a back-reference. skip carries origins already visited,
// allowing recursive resolution to avoid revisiting a source.
type Loader interface {
	GetTemplate(e *Engine, name string, skip []*Origin) (Renderable, error)

	// GetTemplateSources enumerates the origins that would be tried for
	// name, in order, without loading any of them.
	GetTemplateSources(name string) []*Origin
}

// DirLister is implemented by loaders that read from directories.
type DirLister interface {
	GetDirs() []string
}

// Resetter is implemented by loaders that hold cached state. Reset
// drops it so changed files are picked up on the next resolution.
type Resetter interface {
	Reset() error
}

// Engine compiles and resolves templates.
type Engine struct {
	loader     Loader
	tags       map[string]TagFunc
	logger     *zap.Logger
	autoReload bool
	warned     sync.Map // construct kind -> struct{}, dedupes deprecation warnings
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for deprecation warnings and other
// advisory output. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAutoReload drops cached loader state before every lookup, so
// edited templates are recompiled on the next request. There is no
// filesystem watching; intended for development.
func WithAutoReload() Option {
	return func(e *Engine) { e.autoReload = true }
}

// New creates an engine resolving templates through loader. The loader
// may be nil for engines that only compile strings.
func New(loader Loader, opts ...Option) *Engine {
	e := &Engine{
		loader: loader,
		tags:   map[string]TagFunc{},
		logger: zap.NewNop(),
	}
	e.RegisterTag("for", parseFor)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Loader returns the top of the engine's loader chain, or nil.
func (e *Engine) Loader() Loader {
	return e.loader
}

// RegisterTag registers fn as the handler for {% name ... %} blocks.
// Registering an existing name overwrites the previous handler.
func (e *Engine) RegisterTag(name string, fn TagFunc) {
	e.tags[name] = fn
}

// FromString compiles source into an anonymous template.
func (e *Engine) FromString(source string) (*Template, error) {
	return e.CompileString(source, nil)
}

// CompileString compiles source into a template with the given origin.
// A nil origin yields an anonymous template.
func (e *Engine) CompileString(source string, origin *Origin) (*Template, error) {
	p := NewParser(e, Tokenize(source), origin)
	nodelist, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return &Template{
		origin:    p.Origin(),
		source:    source,
		nodelist:  nodelist,
		engine:    e,
		ExtraData: p.ExtraData,
	}, nil
}

// GetTemplate resolves name through the loader chain. The name may be
// a compound "document#fragment" key when the chain includes a
// fragment-splitting loader.
func (e *Engine) GetTemplate(name string) (Renderable, error) {
	if e.loader == nil {
		return nil, &NotFoundError{Name: name}
	}
	if e.autoReload {
		if err := e.Reset(); err != nil {
			return nil, err
		}
	}
	return e.loader.GetTemplate(e, name, nil)
}

// Reset drops cached state in the loader chain, if any.
func (e *Engine) Reset() error {
	if r, ok := e.loader.(Resetter); ok {
		return r.Reset()
	}
	return nil
}

// Deprecated emits a non-fatal deprecation warning, once per construct
// kind for the engine's lifetime. It never alters rendered output.
func (e *Engine) Deprecated(construct, message string) {
	if _, loaded := e.warned.LoadOrStore(construct, struct{}{}); loaded {
		return
	}
	e.logger.Warn(message, zap.String("construct", construct))
}
