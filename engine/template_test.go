package engine

import (
	"errors"
	"strings"
	"testing"
)

type address struct {
	City string
	Zip  string
}

type user struct {
	Name    string
	Age     int
	Address address
}

func TestTemplateRender(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		// --- Literal output ---
		{
			name:     "Plain text",
			source:   "hello",
			data:     nil,
			expected: "hello",
		},
		{
			name:     "Comments produce no output",
			source:   "a{# hidden #}b",
			data:     nil,
			expected: "ab",
		},

		// --- Variable resolution ---
		{
			name:     "Top-level variable",
			source:   "{{ greeting }}",
			data:     map[string]any{"greeting": "hi"},
			expected: "hi",
		},
		{
			name:     "Struct field access",
			source:   "{{ user.Name }} ({{ user.Age }})",
			data:     map[string]any{"user": user{Name: "Jane", Age: 40}},
			expected: "Jane (40)",
		},
		{
			name:     "Nested struct field access",
			source:   "{{ user.Address.City }}",
			data:     map[string]any{"user": user{Address: address{City: "Kampala"}}},
			expected: "Kampala",
		},
		{
			name:     "Pointer deref",
			source:   "{{ user.Name }}",
			data:     map[string]any{"user": &user{Name: "Jane"}},
			expected: "Jane",
		},
		{
			name:     "Map key access",
			source:   "{{ roles.admin }}",
			data:     map[string]any{"roles": map[string]string{"admin": "Administrator"}},
			expected: "Administrator",
		},
		{
			name:     "Missing variable renders empty",
			source:   "[{{ missing }}]",
			data:     nil,
			expected: "[]",
		},
		{
			name:     "Missing field renders empty",
			source:   "[{{ user.Invalid }}]",
			data:     map[string]any{"user": user{}},
			expected: "[]",
		},

		// --- Loops ---
		{
			name:     "Loop over slice",
			source:   "{% for n in names %}<{{ n }}>{% endfor %}",
			data:     map[string]any{"names": []string{"a", "b", "c"}},
			expected: "<a><b><c>",
		},
		{
			name:     "Loop over struct slice",
			source:   "{% for u in users %}{{ u.Name }};{% endfor %}",
			data:     map[string]any{"users": []user{{Name: "Jane"}, {Name: "Ayo"}}},
			expected: "Jane;Ayo;",
		},
		{
			name:     "Loop variable scoped to the body",
			source:   "{% for n in names %}{{ n }}{% endfor %}[{{ n }}]",
			data:     map[string]any{"names": []string{"x"}},
			expected: "x[]",
		},
		{
			name:     "Missing sequence renders empty",
			source:   "[{% for n in nothing %}{{ n }}{% endfor %}]",
			data:     nil,
			expected: "[]",
		},
		{
			name:     "Non-sequence value renders empty",
			source:   "[{% for n in word %}{{ n }}{% endfor %}]",
			data:     map[string]any{"word": 42},
			expected: "[]",
		},
	}

	e := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := e.FromString(tt.source)
			if err != nil {
				t.Fatalf("FromString(%q): %v", tt.source, err)
			}
			got, err := tmpl.RenderData(tt.data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Render = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			name:    "Unknown block tag",
			source:  "{% frobnicate %}",
			wantMsg: `invalid block tag "frobnicate"`,
		},
		{
			name:    "Empty block tag",
			source:  "{% %}",
			wantMsg: "empty block tag",
		},
		{
			name:    "Empty variable tag",
			source:  "{{ }}",
			wantMsg: "empty variable tag",
		},
		{
			name:    "Malformed for tag",
			source:  "{% for x %}{% endfor %}",
			wantMsg: "for <var> in <sequence>",
		},
		{
			name:    "Unclosed for tag",
			source:  "{% for x in xs %}body",
			wantMsg: "unclosed tag",
		},
	}

	e := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.FromString(tt.source)
			if err == nil {
				t.Fatalf("FromString(%q): expected error", tt.source)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			if !strings.Contains(se.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", se.Error(), tt.wantMsg)
			}
		})
	}
}

func TestContextBinding(t *testing.T) {
	e := New(nil)
	tmpl, err := e.FromString("x")
	if err != nil {
		t.Fatal(err)
	}

	ctx := NewContext(nil)
	if ctx.Template != nil {
		t.Fatal("fresh context should have no bound template")
	}

	if _, err := tmpl.Render(ctx); err != nil {
		t.Fatal(err)
	}

	// Binding is scoped to the render; prior state is restored.
	if ctx.Template != nil {
		t.Errorf("template still bound after render: %v", ctx.Template)
	}
	if ctx.RenderContext().Current() != nil {
		t.Errorf("render state not popped after render")
	}
}

func TestContextScopes(t *testing.T) {
	ctx := NewContext(map[string]any{"a": 1})

	ctx.Push()
	ctx.Set("a", 2)
	if v, _ := ctx.Get("a"); v != 2 {
		t.Errorf("inner scope: got %v, want 2", v)
	}

	ctx.Pop()
	if v, _ := ctx.Get("a"); v != 1 {
		t.Errorf("after pop: got %v, want 1", v)
	}

	// The root scope survives excess pops.
	ctx.Pop()
	if v, ok := ctx.Get("a"); !ok || v != 1 {
		t.Errorf("root scope lost: got %v, %v", v, ok)
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Name: "missing.html", Tried: []string{"/a/missing.html", "/b/missing.html"}}

	if !IsNotFound(err) {
		t.Error("IsNotFound should report true")
	}
	msg := err.Error()
	for _, want := range []string{"missing.html", "/a/missing.html", "/b/missing.html"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}

	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound should report false for unrelated errors")
	}
}
