package validator

// PartialEntry represents one {% partialdef %} (or deprecated
// {% startpartial %}) declaration found in a template file.
type PartialEntry struct {
	// Name is the fragment's name.
	Name string `json:"name"`
	// AbsolutePath is the absolute path to the template file containing the definition.
	AbsolutePath string `json:"absolutePath"`
	// TemplatePath is the template's path relative to the template root.
	TemplatePath string `json:"templatePath"`
	// Line is the 1-based line of the begin directive.
	Line int `json:"line"`
	// Col is the 1-based column of the begin directive.
	Col int `json:"col"`
	// Inline reports whether the definition carries the inline modifier.
	Inline bool `json:"inline"`
	// Deprecated reports whether the deprecated startpartial spelling was used.
	Deprecated bool `json:"deprecated,omitempty"`
	// Content is the raw fragment body. It is omitted from JSON output.
	Content string `json:"-"`
}

// DuplicatePartial is reported when one template defines the same
// fragment name more than once. The engine resolves this silently
// (last definition wins), so it is surfaced as a warning, not an error.
type DuplicatePartial struct {
	// Name is the duplicated fragment name.
	Name string `json:"name"`
	// TemplatePath is the template defining it more than once.
	TemplatePath string `json:"templatePath"`
	// Entries lists every definition of the name in that template.
	Entries []PartialEntry `json:"entries"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// RenderCall represents a template resolution detected in Go source:
// a call such as Render("doc.html#fragment", ...) or
// GetTemplate("doc.html").
type RenderCall struct {
	// File is the Go file containing the call.
	File string `json:"file"`
	// Line is the line the call starts on.
	Line int `json:"line"`
	// Template is the lookup key passed to the call, possibly compound.
	Template string `json:"template"`
}

// ValidationResult is a single diagnostic produced by validating render
// calls against the discovered partial definitions.
type ValidationResult struct {
	// Template is the document portion of the lookup key.
	Template string `json:"template"`
	// Fragment is the fragment portion, empty for whole-document keys.
	Fragment string `json:"fragment,omitempty"`
	// Message describes the problem.
	Message string `json:"message"`
	// Severity is "error" or "warning".
	Severity string `json:"severity"`
	// GoFile is the Go file containing the offending call.
	GoFile string `json:"goFile,omitempty"`
	// GoLine is the line of the offending call.
	GoLine int `json:"goLine,omitempty"`
}

// Config defines the function names the analyzer treats as template
// resolutions and the compound-name separator.
type Config struct {
	// RenderFunctionNames are function or method names whose first
	// string-literal argument is a template lookup key.
	RenderFunctionNames []string
	// Separator splits compound keys into document and fragment names.
	Separator string
}

// DefaultConfig matches the engine's conventions.
var DefaultConfig = Config{
	RenderFunctionNames: []string{"Render", "GetTemplate"},
	Separator:           "#",
}
