// Package loaders provides the document-loading chain for the template
// engine: a filesystem loader over ordered search directories, an
// in-memory map loader, and a caching decorator that memoizes compiled
// documents by name.
package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/abiiranathan/partials/engine"
)

// Filesystem loads templates from an ordered list of directories. The
// first directory containing the requested name wins.
type Filesystem struct {
	dirs []string
}

// NewFilesystem creates a filesystem loader searching dirs in order.
func NewFilesystem(dirs ...string) *Filesystem {
	return &Filesystem{dirs: dirs}
}

// GetDirs returns the configured search directories.
func (l *Filesystem) GetDirs() []string {
	return l.dirs
}

// GetTemplateSources enumerates candidate origins for name, one per
// search directory. Names escaping the search directory are skipped.
func (l *Filesystem) GetTemplateSources(name string) []*engine.Origin {
	var origins []*engine.Origin
	for _, dir := range l.dirs {
		path := filepath.Join(dir, filepath.FromSlash(name))
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		origins = append(origins, &engine.Origin{
			Name:         path,
			TemplateName: name,
			Loader:       l,
		})
	}
	return origins
}

// GetTemplate reads and compiles the first matching file. Missing files
// are recorded in the returned NotFoundError's Tried list.
func (l *Filesystem) GetTemplate(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	var tried []string

	for _, origin := range l.GetTemplateSources(name) {
		if skipOrigin(origin, skip) {
			continue
		}

		contents, err := os.ReadFile(origin.Name)
		if err != nil {
			tried = append(tried, origin.Name)
			continue
		}

		return e.CompileString(string(contents), origin)
	}

	return nil, &engine.NotFoundError{Name: name, Tried: tried}
}

// skipOrigin reports whether origin matches an entry in skip.
func skipOrigin(origin *engine.Origin, skip []*engine.Origin) bool {
	for _, s := range skip {
		if s.Name == origin.Name {
			return true
		}
	}
	return false
}
