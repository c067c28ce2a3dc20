package partials

import (
	"errors"
	"strings"

	"go.uber.org/multierr"

	"github.com/abiiranathan/partials/engine"
	"github.com/abiiranathan/partials/loaders"
)

// Separator splits a compound lookup key into document and fragment
// names.
const Separator = "#"

// Loader decorates a chain of document loaders with compound-name
// resolution: "document#fragment" resolves the document through the
// wrapped chain, then returns the named fragment's proxy instead of the
// whole document. Plain names pass through untouched, so partials stay
// transparent to callers that only ever ask for whole documents.
type Loader struct {
	loaders []engine.Loader
}

// NewLoader wraps the given loaders, tried in order.
func NewLoader(children ...engine.Loader) *Loader {
	return &Loader{loaders: children}
}

// Loaders returns the wrapped loaders.
func (l *Loader) Loaders() []engine.Loader {
	return l.loaders
}

// SplitName splits a compound lookup key on the first separator. The
// fragment name is empty when no separator is present.
func SplitName(name string) (docName, fragmentName string) {
	docName, fragmentName, _ = strings.Cut(name, Separator)
	return docName, fragmentName
}

// GetTemplate resolves name, which may be a plain document name or a
// compound "document#fragment" key.
//
// The document portion is resolved through the wrapped chain first;
// whole-document compilation always precedes fragment lookup. A missing
// fragment is reported with the same NotFoundError type as a missing
// document, so callers distinguish the two only by message.
func (l *Loader) GetTemplate(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	docName, fragmentName := SplitName(name)

	tmpl, err := l.resolveDocument(e, docName, skip)
	if err != nil {
		// Re-raise under the compound name so the diagnostic shows what
		// was actually requested.
		var nf *engine.NotFoundError
		if fragmentName != "" && errors.As(err, &nf) {
			return nil, &engine.NotFoundError{Name: name, Tried: nf.Tried}
		}
		return nil, err
	}

	if fragmentName == "" {
		return tmpl, nil
	}

	doc, ok := tmpl.(*engine.Template)
	if !ok {
		// The chain handed back something that is not a full document
		// (e.g. a nested fragment-splitting loader); fragments can only
		// be looked up on documents.
		return nil, &engine.NotFoundError{Name: fragmentName, Tried: []string{docName}}
	}

	reg, ok := registryFrom(doc.ExtraData)
	if !ok {
		// No partials were ever defined on this document.
		return nil, &engine.NotFoundError{Name: fragmentName, Tried: []string{docName}}
	}

	proxy, ok := reg[fragmentName]
	if !ok {
		// Partials exist, but not this one.
		return nil, &engine.NotFoundError{Name: fragmentName, Tried: []string{docName}}
	}

	return proxy, nil
}

// resolveDocument resolves a plain document name through the wrapped
// chain.
//
// A chain consisting solely of a caching loader is called through its
// own resolution method directly rather than iterated generically:
// caching loaders memoize by plain name and own their chain iteration.
func (l *Loader) resolveDocument(e *engine.Engine, docName string, skip []*engine.Origin) (engine.Renderable, error) {
	if len(l.loaders) == 1 {
		if cached, ok := l.loaders[0].(*loaders.Cached); ok {
			return cached.GetTemplate(e, docName, skip)
		}
	}

	var tried []string
	for _, child := range l.loaders {
		tmpl, err := child.GetTemplate(e, docName, skip)
		if err != nil {
			var nf *engine.NotFoundError
			if errors.As(err, &nf) {
				tried = append(tried, nf.Tried...)
				continue
			}
			return nil, err
		}
		return tmpl, nil
	}

	return nil, &engine.NotFoundError{Name: docName, Tried: tried}
}

// GetTemplateSources enumerates candidate origins for the document
// portion of name across the wrapped chain.
func (l *Loader) GetTemplateSources(name string) []*engine.Origin {
	docName, _ := SplitName(name)

	var origins []*engine.Origin
	for _, child := range l.loaders {
		origins = append(origins, child.GetTemplateSources(docName)...)
	}
	return origins
}

// GetDirs enumerates directories of every wrapped loader that serves
// from directories, so directory-watching layers above keep working
// through this decorator.
func (l *Loader) GetDirs() []string {
	var dirs []string
	for _, child := range l.loaders {
		if dl, ok := child.(engine.DirLister); ok {
			dirs = append(dirs, dl.GetDirs()...)
		}
	}
	return dirs
}

// Reset resets every wrapped loader that holds cached state, ignoring
// loaders without reset support, and drops the process-wide fragment
// source cache. Failures are aggregated.
func (l *Loader) Reset() error {
	var err error
	for _, child := range l.loaders {
		if r, ok := child.(engine.Resetter); ok {
			err = multierr.Append(err, r.Reset())
		}
	}
	ResetSourceCache()
	return err
}
