package partials

import (
	"errors"
	"strings"
	"testing"

	"github.com/abiiranathan/partials/engine"
	"github.com/abiiranathan/partials/loaders"
)

// capturingNode records the context state observed while rendering a
// fragment body.
type capturingNode struct {
	templateName string
	current      engine.Renderable
}

func (n *capturingNode) Render(ctx *engine.Context) (string, error) {
	n.templateName = ctx.TemplateName
	n.current = ctx.RenderContext().Current()
	return "", nil
}

func TestProxyBindsAsCurrentTemplate(t *testing.T) {
	e, _, _ := newLoaderEngine(map[string]string{"page.html": pageSource})

	r, err := e.GetTemplate("page.html#hero")
	if err != nil {
		t.Fatal(err)
	}
	proxy := r.(*TemplateProxy)

	capture := &capturingNode{}
	probe := &TemplateProxy{
		nodelist: engine.NodeList{capture},
		origin:   proxy.origin,
		name:     "hero",
		engine:   proxy.engine,
	}

	// With no document bound, the proxy binds itself and reports the
	// fragment name as the visible template name.
	ctx := engine.NewContext(nil)
	if _, err := probe.Render(ctx); err != nil {
		t.Fatal(err)
	}
	if capture.templateName != "hero" {
		t.Errorf("TemplateName during render = %q, want %q", capture.templateName, "hero")
	}
	if capture.current != probe {
		t.Errorf("render state should be keyed by the proxy itself")
	}
	if ctx.Template != nil || ctx.TemplateName != "" {
		t.Error("binding must be restored after the render")
	}

	// With a document already bound, the proxy must not rebind.
	bound := engine.NewContext(nil)
	doc, err := e.GetTemplate("page.html")
	if err != nil {
		t.Fatal(err)
	}
	restore := bound.BindTemplate(doc)
	defer restore()

	if _, err := probe.Render(bound); err != nil {
		t.Fatal(err)
	}
	if capture.templateName != "page.html" {
		t.Errorf("TemplateName with bound document = %q, want %q", capture.templateName, "page.html")
	}
}

func TestProxySourceSlicing(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		fragment string
		expected string
	}{
		{
			name:     "Bare name",
			source:   "{% partialdef hero %}HELLO{% endpartialdef %}",
			fragment: "hero",
			expected: "HELLO",
		},
		{
			name:     "Quoted name",
			source:   `{% partialdef "hero" %}HELLO{% endpartialdef %}`,
			fragment: "hero",
			expected: "HELLO",
		},
		{
			name:     "Inline modifier",
			source:   "{% partialdef hero inline %}HELLO{% endpartialdef %}",
			fragment: "hero",
			expected: "HELLO",
		},
		{
			name:     "Name echo on end directive",
			source:   "{% partialdef hero %}HELLO{% endpartialdef hero %}",
			fragment: "hero",
			expected: "HELLO",
		},
		{
			name:     "Deprecated alias pair",
			source:   `{% startpartial "hero" %}HELLO{% endpartial %}`,
			fragment: "hero",
			expected: "HELLO",
		},
		{
			name:     "Multiline body is verbatim",
			source:   "{% partialdef hero %}\n  <h1>{{ Title }}</h1>\n{% endpartialdef %}",
			fragment: "hero",
			expected: "\n  <h1>{{ Title }}</h1>\n",
		},
		{
			name:     "Surrounding document text excluded",
			source:   "before {% partialdef hero %}HELLO{% endpartialdef %} after",
			fragment: "hero",
			expected: "HELLO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ok := sliceFragment(tt.source, tt.fragment)
			if !ok {
				t.Fatalf("sliceFragment(%q, %q): not found", tt.source, tt.fragment)
			}
			if body != tt.expected {
				t.Errorf("sliceFragment = %q, want %q", body, tt.expected)
			}
		})
	}

	t.Run("Missing fragment", func(t *testing.T) {
		if _, ok := sliceFragment("no fragments", "hero"); ok {
			t.Error("sliceFragment should report not found")
		}
	})
}

func TestProxySourceReflectsLoaderState(t *testing.T) {
	ResetSourceCache()

	e, _, _ := newLoaderEngine(map[string]string{"page.html": pageSource})
	r, err := e.GetTemplate("page.html#hero")
	if err != nil {
		t.Fatal(err)
	}

	// First retrieval populates the process-wide cache; a second one is
	// served from it and must be identical.
	first, err := r.Source()
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Source()
	if err != nil {
		t.Fatal(err)
	}
	if first != second || first != "HELLO" {
		t.Errorf("Source = %q then %q, want %q both times", first, second, "HELLO")
	}
}

func TestProxySourceIsolatedPerLoader(t *testing.T) {
	ResetSourceCache()

	// Two independent engines serving different content under the same
	// document name must not see each other's source text.
	eA, _, _ := newLoaderEngine(map[string]string{
		"page.html": "{% partialdef hero %}AAA{% endpartialdef %}",
	})
	eB, _, _ := newLoaderEngine(map[string]string{
		"page.html": "{% partialdef hero %}BBB{% endpartialdef %}",
	})

	pa, err := eA.GetTemplate("page.html#hero")
	if err != nil {
		t.Fatal(err)
	}
	srcA, err := pa.Source()
	if err != nil {
		t.Fatal(err)
	}
	if srcA != "AAA" {
		t.Fatalf("first engine Source = %q, want %q", srcA, "AAA")
	}

	pb, err := eB.GetTemplate("page.html#hero")
	if err != nil {
		t.Fatal(err)
	}
	srcB, err := pb.Source()
	if err != nil {
		t.Fatal(err)
	}
	if srcB != "BBB" {
		t.Errorf("second engine Source = %q, want %q", srcB, "BBB")
	}
}

func TestDuplicateDefinitionSource(t *testing.T) {
	ResetSourceCache()

	// With a duplicated name the last definition wins for rendering; the
	// proxy's source must be the slice of that same definition.
	e, _, _ := newLoaderEngine(map[string]string{
		"page.html": "{% partialdef a %}first{% endpartialdef %}{% partialdef a %}second{% endpartialdef %}",
	})

	proxy, err := e.GetTemplate("page.html#a")
	if err != nil {
		t.Fatal(err)
	}

	out, err := proxy.Render(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "second" {
		t.Fatalf("Render = %q, want %q", out, "second")
	}

	source, err := proxy.Source()
	if err != nil {
		t.Fatal(err)
	}
	if source != "second" {
		t.Errorf("Source = %q, want %q (slice of the definition that renders)", source, "second")
	}
}

func TestProxyExceptionInfoForwarding(t *testing.T) {
	e, _, _ := newLoaderEngine(map[string]string{"page.html": pageSource})

	r, err := e.GetTemplate("page.html#hero")
	if err != nil {
		t.Fatal(err)
	}

	tok := engine.Token{Type: engine.TokenBlock, Contents: "partial hero", LineNo: 3}
	info, err := r.ExceptionInfo(errors.New("boom"), tok)
	if err != nil {
		t.Fatalf("ExceptionInfo: %v", err)
	}

	// The info is resolved against the true owning document, not the
	// fragment view.
	if info.Name != "page.html" {
		t.Errorf("Name = %q, want %q", info.Name, "page.html")
	}
	if info.Line != 3 {
		t.Errorf("Line = %d, want 3", info.Line)
	}
	if !strings.Contains(info.Message, "boom") {
		t.Errorf("Message = %q, should carry the cause", info.Message)
	}
}

func TestProxyWithoutLoader(t *testing.T) {
	// Fragments compiled from strings have no loader; source retrieval
	// must fail cleanly rather than panic.
	e := newTestEngine()
	tmpl, err := e.FromString("{% partialdef a %}X{% endpartialdef %}")
	if err != nil {
		t.Fatal(err)
	}

	reg, ok := registryFrom(tmpl.ExtraData)
	if !ok {
		t.Fatal("registry should exist after compiling a definition")
	}
	proxy := reg["a"]
	if proxy == nil {
		t.Fatal("fragment should be registered")
	}

	if _, err := proxy.Source(); err == nil {
		t.Error("Source without a loader should fail")
	}
	if _, err := proxy.ExceptionInfo(errors.New("x"), engine.Token{}); err == nil {
		t.Error("ExceptionInfo without a loader should fail")
	}
}

func TestRegistryNotMutatedByReads(t *testing.T) {
	e, _, _ := newLoaderEngine(map[string]string{"page.html": pageSource})

	doc, err := e.GetTemplate("page.html")
	if err != nil {
		t.Fatal(err)
	}
	tmpl := doc.(*engine.Template)
	reg, _ := registryFrom(tmpl.ExtraData)
	before := len(reg)

	for range 3 {
		if _, err := e.GetTemplate("page.html#hero"); err != nil {
			t.Fatal(err)
		}
	}

	if len(reg) != before {
		t.Errorf("registry size changed from %d to %d on reads", before, len(reg))
	}
}

var _ engine.Loader = (*Loader)(nil)
var _ engine.Loader = (*loaders.Cached)(nil)
var _ engine.Renderable = (*TemplateProxy)(nil)
