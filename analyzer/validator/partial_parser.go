package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// parseAllPartials extracts every partial definition from the template
// files under baseDir/templateRoot.
//
// Each template file is scanned independently, so file processing is
// done concurrently using a worker pool. Definitions are keyed by
// fragment name; one name may map to entries from several templates
// (fragment names are only unique per document).
//
// Returns the registry and the duplicate-definition warnings (same
// name defined twice within one template).
func parseAllPartials(baseDir, templateRoot string) (map[string][]PartialEntry, []DuplicatePartial) {
	root := filepath.Join(baseDir, templateRoot)

	// Phase 1: collect template file paths.
	var templateFiles []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if isTemplateFile(path) {
			templateFiles = append(templateFiles, path)
		}
		return nil
	})

	// Phase 2: scan files concurrently.
	registry := scanTemplateFilesConcurrently(templateFiles, root)

	// Phase 3: detect per-template duplicates.
	duplicates := detectDuplicatePartials(registry)

	return registry, duplicates
}

// scanTemplateFilesConcurrently scans template files with one worker
// per CPU core, collecting results in a sync.Map and converting to a
// regular map once all workers complete.
func scanTemplateFilesConcurrently(templateFiles []string, root string) map[string][]PartialEntry {
	if len(templateFiles) == 0 {
		return make(map[string][]PartialEntry)
	}

	var sharedRegistry sync.Map // map[string][]PartialEntry
	numWorkers := max(runtime.NumCPU(), 1)
	fileChan := make(chan string, len(templateFiles))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			scanTemplateFileWorker(fileChan, root, &sharedRegistry)
		})
	}

	for _, path := range templateFiles {
		fileChan <- path
	}
	close(fileChan)
	wg.Wait()

	registry := make(map[string][]PartialEntry)
	sharedRegistry.Range(func(key, value any) bool {
		registry[key.(string)] = value.([]PartialEntry)
		return true
	})
	return registry
}

// scanTemplateFileWorker reads template files from a channel and
// extracts partial definitions into the shared registry.
func scanTemplateFileWorker(fileChan <-chan string, root string, sharedRegistry *sync.Map) {
	for path := range fileChan {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		content, err := os.ReadFile(path)
		if err != nil {
			continue // Skip files we can't read
		}

		for _, entry := range ExtractPartials(string(content), path, rel) {
			storePartial(sharedRegistry, entry)
		}
	}
}

// storePartial appends entry to the shared registry under its name,
// retrying on CompareAndSwap contention.
func storePartial(registry *sync.Map, entry PartialEntry) {
	for {
		val, loaded := registry.LoadOrStore(entry.Name, []PartialEntry{entry})
		if !loaded {
			return
		}
		existing := val.([]PartialEntry)
		updated := append(existing, entry)
		if registry.CompareAndSwap(entry.Name, existing, updated) {
			return
		}
	}
}

// detectDuplicatePartials reports fragment names defined more than once
// within the same template. The engine silently keeps the last
// definition, so these are warnings rather than errors.
func detectDuplicatePartials(registry map[string][]PartialEntry) []DuplicatePartial {
	var duplicates []DuplicatePartial
	for name, entries := range registry {
		byTemplate := make(map[string][]PartialEntry)
		for _, e := range entries {
			byTemplate[e.TemplatePath] = append(byTemplate[e.TemplatePath], e)
		}
		for tmpl, same := range byTemplate {
			if len(same) > 1 {
				duplicates = append(duplicates, DuplicatePartial{
					Name:         name,
					TemplatePath: tmpl,
					Entries:      same,
					Message:      fmt.Sprintf("partial %q is defined %d times in %s; the last definition wins", name, len(same), tmpl),
				})
			}
		}
	}
	return duplicates
}

// ExtractPartials scans template content for partial definitions.
//
// Algorithm:
//  1. Scans content for {% ... %} directives, tracking line and column.
//  2. On partialdef/startpartial, records the open fragment and the
//     offset just past the begin directive.
//  3. On endpartialdef/endpartial, emits the entry with the content
//     between the directives.
//
// Nested definitions are not legal in the engine; a begin directive
// inside an open fragment closes nothing and starts no new fragment, so
// the scan simply ignores it (the engine reports the error at compile
// time).
func ExtractPartials(content, absolutePath, templatePath string) []PartialEntry {
	var entries []PartialEntry

	var active *PartialEntry
	var bodyStart int

	cur := 0
	lineNum := 1

	for cur < len(content) {
		openRel := strings.Index(content[cur:], "{%")
		if openRel == -1 {
			break
		}
		openIdx := cur + openRel

		lineNum += strings.Count(content[cur:openIdx], "\n")

		closeRel := strings.Index(content[openIdx:], "%}")
		if closeRel == -1 {
			break // Unclosed directive
		}
		closeIdx := openIdx + closeRel

		lastNewline := strings.LastIndexByte(content[:openIdx], '\n')
		col := openIdx - lastNewline

		directive := strings.TrimSpace(content[openIdx+2 : closeIdx])
		linesInside := strings.Count(content[openIdx:closeIdx+2], "\n")
		cur = closeIdx + 2

		words := strings.Fields(directive)
		if len(words) == 0 {
			lineNum += linesInside
			continue
		}

		switch words[0] {
		case "partialdef", "startpartial":
			if active == nil && len(words) >= 2 {
				active = &PartialEntry{
					Name:         unquote(words[1]),
					AbsolutePath: absolutePath,
					TemplatePath: templatePath,
					Line:         lineNum,
					Col:          col,
					Inline:       len(words) >= 3 && strings.HasPrefix(words[2], "inline"),
					Deprecated:   words[0] == "startpartial",
				}
				bodyStart = cur
			}

		case "endpartialdef", "endpartial":
			if active != nil {
				active.Content = content[bodyStart:openIdx]
				entries = append(entries, *active)
				active = nil
			}
		}

		lineNum += linesInside
	}

	return entries
}

// isTemplateFile reports whether path has a recognized template file
// extension.
func isTemplateFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".html", ".tmpl", ".gohtml", ".tpl", ".htm":
		return true
	}
	return false
}

// unquote strips a single level of double quotes or backticks.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
