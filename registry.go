// Package partials adds named, reusable template fragments to the
// engine: {% partialdef name [inline] %} declares a fragment,
// {% partial name %} renders one, and the package's Loader resolves
// compound "document#fragment" names so a single fragment can be
// requested anywhere a whole document can.
package partials

// registryKey is the ExtraData key under which a document's fragment
// registry is stored, from the parser through to the compiled template.
const registryKey = "template-partials"

// openKey marks an in-progress partialdef on the parser's ExtraData,
// used to reject nested definitions.
const openKey = "template-partials:open"

// Registry maps fragment names to their proxies for one document.
//
// The registry is created lazily on the first definition and mutated
// only during the document's single-threaded compilation; afterwards it
// is read-only. A duplicated name silently overwrites the earlier
// definition: the last one wins.
type Registry map[string]*TemplateProxy

// registryFrom retrieves the registry from a document's extra data. The
// second return is false when no fragment was ever defined there.
func registryFrom(extra map[string]any) (Registry, bool) {
	if extra == nil {
		return nil, false
	}
	reg, ok := extra[registryKey].(Registry)
	return reg, ok
}

// ensureRegistry returns the document's registry, creating it on first
// use.
func ensureRegistry(extra map[string]any) Registry {
	if reg, ok := registryFrom(extra); ok {
		return reg
	}
	reg := Registry{}
	extra[registryKey] = reg
	return reg
}
