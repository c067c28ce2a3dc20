package loaders

import (
	"errors"
	"sync"

	"go.uber.org/multierr"

	"github.com/abiiranathan/partials/engine"
)

// Cached decorates a list of loaders with a compile-once cache keyed on
// the plain template name. Both successful compilations and not-found
// results are memoized until Reset is called.
//
// Cached memoizes by plain name only; compound "document#fragment" keys
// must be split before they reach this loader.
type Cached struct {
	loaders []engine.Loader

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	template engine.Renderable
	err      error
}

// NewCached creates a caching decorator over loaders, tried in order.
func NewCached(loaders ...engine.Loader) *Cached {
	return &Cached{
		loaders: loaders,
		cache:   map[string]cacheEntry{},
	}
}

// Loaders returns the wrapped loaders.
func (l *Cached) Loaders() []engine.Loader {
	return l.loaders
}

// GetDirs enumerates directories of every wrapped loader that serves
// from directories.
func (l *Cached) GetDirs() []string {
	var dirs []string
	for _, child := range l.loaders {
		if dl, ok := child.(engine.DirLister); ok {
			dirs = append(dirs, dl.GetDirs()...)
		}
	}
	return dirs
}

// GetTemplateSources enumerates candidate origins across all wrapped
// loaders without touching the cache.
func (l *Cached) GetTemplateSources(name string) []*engine.Origin {
	var origins []*engine.Origin
	for _, child := range l.loaders {
		origins = append(origins, child.GetTemplateSources(name)...)
	}
	return origins
}

// GetTemplate resolves name through the wrapped loaders, memoizing the
// outcome. Repeated lookups of the same name return the same compiled
// document until Reset drops the cache.
func (l *Cached) GetTemplate(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	// Resolutions with a skip list bypass the cache: the entry would be
	// keyed on name alone and poison unskipped lookups.
	if len(skip) > 0 {
		return l.resolve(e, name, skip)
	}

	l.mu.RLock()
	entry, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return entry.template, entry.err
	}

	tmpl, err := l.resolve(e, name, nil)

	l.mu.Lock()
	l.cache[name] = cacheEntry{template: tmpl, err: err}
	l.mu.Unlock()

	return tmpl, err
}

// resolve tries each wrapped loader in order, aggregating tried sources
// from not-found results.
func (l *Cached) resolve(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	var tried []string

	for _, child := range l.loaders {
		tmpl, err := child.GetTemplate(e, name, skip)
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

	return nil, &engine.NotFoundError{Name: name, Tried: tried}
}

// Reset drops every cached entry and resets wrapped loaders that hold
// their own state. Reset failures are aggregated, not short-circuited.
func (l *Cached) Reset() error {
	l.mu.Lock()
	l.cache = map[string]cacheEntry{}
	l.mu.Unlock()

	var err error
	for _, child := range l.loaders {
		if r, ok := child.(engine.Resetter); ok {
			err = multierr.Append(err, r.Reset())
		}
	}
	return err
}
