package partials

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/abiiranathan/partials/engine"
)

// sourceKey identifies one fragment's extracted source text. The
// owning loader is part of the key: two loaders may serve different
// content under the same document name, so name alone is ambiguous.
type sourceKey struct {
	loader engine.Loader
	origin string
	name   string
}

// sourceCache memoizes extracted fragment source text process-wide.
// Entries are dropped by ResetSourceCache, which the partials Loader
// invokes on Reset so the cache tracks the same invalidation signal as
// compiled documents.
var sourceCache sync.Map // sourceKey -> string

// ResetSourceCache drops all cached fragment source text.
func ResetSourceCache() {
	sourceCache.Range(func(key, _ any) bool {
		sourceCache.Delete(key)
		return true
	})
}

// fragmentSource resolves the owning document through its loader and
// slices the verbatim fragment body out of its source text.
func fragmentSource(e *engine.Engine, origin *engine.Origin, name string) (string, error) {
	if origin.Loader == nil {
		return "", fmt.Errorf("partial %q: owning template %q has no loader", name, origin.Name)
	}

	key := sourceKey{loader: origin.Loader, origin: origin.Name, name: name}
	if cached, ok := sourceCache.Load(key); ok {
		return cached.(string), nil
	}

	owner, err := origin.Loader.GetTemplate(e, origin.TemplateName, nil)
	if err != nil {
		return "", err
	}
	docSource, err := owner.Source()
	if err != nil {
		return "", err
	}

	body, ok := sliceFragment(docSource, name)
	if !ok {
		return "", fmt.Errorf("partial %q not found in source of %q", name, origin.TemplateName)
	}

	sourceCache.Store(key, body)
	return body, nil
}

// sliceFragment extracts the text between the begin and end directives
// of the named fragment.
//
// Pair matching assumes well-formed, non-nested pairs: the parser
// rejects nested definitions, so the first end directive after the
// begin directive always closes it.
func sliceFragment(docSource, name string) (string, bool) {
	quoted := regexp.QuoteMeta(name)

	beginRe := regexp.MustCompile(
		`\{%\s*(?:partialdef|startpartial)\s+(?:"` + quoted + `"|` + "`" + quoted + "`" + `|` + quoted + `)(?:\s+inline(?:=\S+)?)?\s*%\}`)
	endRe := regexp.MustCompile(
		`\{%\s*(?:endpartialdef|endpartial)(?:\s+\S+)?\s*%\}`)

	begins := beginRe.FindAllStringIndex(docSource, -1)
	if len(begins) == 0 {
		return "", false
	}

	// The registry keeps the last definition of a duplicated name, so
	// the source slice must come from the last pair as well.
	begin := begins[len(begins)-1]

	end := endRe.FindStringIndex(docSource[begin[1]:])
	if end == nil {
		return "", false
	}

	return docSource[begin[1] : begin[1]+end[0]], true
}
