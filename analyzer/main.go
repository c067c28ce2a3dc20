// Command analyzer validates template partial usage in a Go project:
// it scans Go sources for template resolutions such as
// Render("doc.html#fragment") and checks each one against the partial
// definitions found in the template tree.
package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/abiiranathan/partials/analyzer/validator"
)

// ValidationOutput is the JSON structure emitted by the analyzer.
type ValidationOutput struct {
	// RenderCalls contains every detected template resolution.
	RenderCalls []validator.RenderCall `json:"renderCalls"`

	// ValidationErrors contains unresolved documents and fragments.
	ValidationErrors []validator.ValidationResult `json:"validationErrors"`

	// Duplicates contains per-template duplicate partial warnings.
	Duplicates []validator.DuplicatePartial `json:"duplicates,omitempty"`

	// Errors contains non-fatal analysis errors (optional).
	Errors []string `json:"errors,omitempty"`
}

func main() {
	dir := flag.String("dir", ".", "Go source directory to analyze")
	templateRoot := flag.String("template-root", "", "Root directory for templates")
	templateBaseDir := flag.String("template-base-dir", "", "Base directory for template-root")
	showPartials := flag.Bool("partials", false, "Emit all discovered partial definitions as JSON")
	compress := flag.Bool("compress", false, "Output gzip-compressed JSON")
	verbose := flag.Bool("v", false, "Verbose logging to stderr")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	absDir := mustAbs(*dir)
	templateBase := absDir
	if *templateBaseDir != "" {
		templateBase = mustAbs(*templateBaseDir)
	}

	calls, errs := validator.FindRenderCalls(absDir, validator.DefaultConfig)
	logger.Info("analysis complete",
		zap.Int("renderCalls", len(calls)),
		zap.Int("errors", len(errs)))

	var output any
	if *showPartials {
		registry, duplicates := validator.ParseAllPartials(templateBase, *templateRoot)
		output = struct {
			Partials   map[string][]validator.PartialEntry `json:"partials"`
			Duplicates []validator.DuplicatePartial        `json:"duplicates,omitempty"`
		}{registry, duplicates}
	} else {
		results, _, duplicates := validator.ValidateTemplates(calls, templateBase, *templateRoot, validator.DefaultConfig)
		output = ValidationOutput{
			RenderCalls:      calls,
			ValidationErrors: results,
			Duplicates:       duplicates,
			Errors:           errs,
		}
	}

	encodeJSON(output, *compress)
}

// encodeJSON serializes output as JSON and writes it to stdout.
//
// If compress is true, the output is gzip-compressed.
func encodeJSON(output any, compress bool) {
	if compress {
		gzWriter := gzip.NewWriter(os.Stdout)
		defer gzWriter.Close()

		enc := json.NewEncoder(gzWriter)
		if err := enc.Encode(output); err != nil {
			panic("failed to encode JSON: " + err.Error())
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(output); err != nil {
		panic("failed to encode JSON: " + err.Error())
	}
}

// mustAbs resolves path to an absolute path, panicking on failure.
func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic("failed to resolve path: " + err.Error())
	}
	return abs
}
