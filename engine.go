package partials

import (
	"github.com/abiiranathan/partials/engine"
	"github.com/abiiranathan/partials/loaders"
)

// NewEngine builds a fully wired engine: a fragment-splitting Loader
// over a caching loader over a filesystem loader searching dirs in
// order, with the partial tags registered.
//
// This mirrors the default loader stack:
//
//	partials → cached → filesystem
//
// so compiled documents are cached by plain name while compound
// "document#fragment" keys are still answered correctly.
func NewEngine(dirs []string, opts ...engine.Option) *engine.Engine {
	e := engine.New(WrapLoaders(loaders.NewFilesystem(dirs...)), opts...)
	Register(e)
	return e
}

// WrapLoaders stacks the default decorators over the given loaders: a
// caching loader over the chain, and a fragment-splitting loader on
// top. A chain already headed by a fragment-splitting loader is
// returned unchanged, so wrapping is idempotent.
func WrapLoaders(children ...engine.Loader) engine.Loader {
	if len(children) == 1 {
		if pl, ok := children[0].(*Loader); ok {
			return pl
		}
	}
	return NewLoader(loaders.NewCached(children...))
}
