package loaders

import (
	"sort"

	"github.com/abiiranathan/partials/engine"
)

// Map loads templates from an in-memory name-to-source map. It is
// useful in tests and for embedded template sets.
type Map struct {
	templates map[string]string
}

// NewMap creates a map loader over templates. The map is used as-is
// and must not be mutated while the loader is in use.
func NewMap(templates map[string]string) *Map {
	if templates == nil {
		templates = map[string]string{}
	}
	return &Map{templates: templates}
}

// Names returns the template names served by this loader, sorted.
func (l *Map) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTemplateSources returns a single synthetic origin when name is
// present, nothing otherwise.
func (l *Map) GetTemplateSources(name string) []*engine.Origin {
	if _, ok := l.templates[name]; !ok {
		return nil
	}
	return []*engine.Origin{{
		Name:         name,
		TemplateName: name,
		Loader:       l,
	}}
}

// GetTemplate compiles the named in-memory source.
func (l *Map) GetTemplate(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	source, ok := l.templates[name]
	if !ok {
		return nil, &engine.NotFoundError{Name: name, Tried: []string{name}}
	}

	origin := l.GetTemplateSources(name)[0]
	if skipOrigin(origin, skip) {
		return nil, &engine.NotFoundError{Name: name, Tried: []string{name}}
	}

	return e.CompileString(source, origin)
}
