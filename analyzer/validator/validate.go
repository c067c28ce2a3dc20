// Package validator statically validates template partial usage: it
// extracts every partial definition from a template tree, discovers
// template resolutions in Go source, and reports lookups of missing
// documents or undefined fragments before they fail at runtime.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateTemplates cross-checks render calls against the template tree
// under baseDir/templateRoot.
//
// For every call it verifies that the document file exists and — when
// the lookup key is compound — that the named fragment is defined in
// that document. The two failure messages for fragment lookups mirror
// the engine's: a document with no partials at all is reported
// distinctly from a document that defines partials but not the
// requested one.
//
// Returns the diagnostics, the partial registry, and the duplicate
// warnings.
func ValidateTemplates(calls []RenderCall, baseDir, templateRoot string, config Config) ([]ValidationResult, map[string][]PartialEntry, []DuplicatePartial) {
	registry, duplicates := parseAllPartials(baseDir, templateRoot)

	// Templates that define at least one partial, for distinguishable
	// "no partials defined" diagnostics.
	templatesWithPartials := make(map[string]bool)
	for _, entries := range registry {
		for _, e := range entries {
			templatesWithPartials[e.TemplatePath] = true
		}
	}

	var results []ValidationResult
	for _, call := range calls {
		docName, fragmentName, _ := strings.Cut(call.Template, config.Separator)

		docPath := filepath.Join(baseDir, templateRoot, filepath.FromSlash(docName))
		if _, err := os.Stat(docPath); os.IsNotExist(err) {
			results = append(results, ValidationResult{
				Template: docName,
				Fragment: fragmentName,
				Message:  fmt.Sprintf("template %q could not be found at %s", docName, docPath),
				Severity: "error",
				GoFile:   call.File,
				GoLine:   call.Line,
			})
			continue
		}

		if fragmentName == "" {
			continue
		}

		if !templatesWithPartials[docName] {
			results = append(results, ValidationResult{
				Template: docName,
				Fragment: fragmentName,
				Message:  fmt.Sprintf("partial %q: no partials are defined in %q", fragmentName, docName),
				Severity: "error",
				GoFile:   call.File,
				GoLine:   call.Line,
			})
			continue
		}

		if !partialDefinedIn(registry, fragmentName, docName) {
			results = append(results, ValidationResult{
				Template: docName,
				Fragment: fragmentName,
				Message:  fmt.Sprintf("partial %q is not defined in %q", fragmentName, docName),
				Severity: "error",
				GoFile:   call.File,
				GoLine:   call.Line,
			})
		}
	}

	return results, registry, duplicates
}

// partialDefinedIn reports whether fragment name is defined in the
// template at templatePath.
func partialDefinedIn(registry map[string][]PartialEntry, name, templatePath string) bool {
	for _, entry := range registry[name] {
		if entry.TemplatePath == templatePath {
			return true
		}
	}
	return false
}

// ParseAllPartials exposes partial extraction for callers and tests.
func ParseAllPartials(baseDir, templateRoot string) (map[string][]PartialEntry, []DuplicatePartial) {
	return parseAllPartials(baseDir, templateRoot)
}
