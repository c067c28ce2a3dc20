package loaders

import (
	"errors"
	"strings"
	"testing"

	"github.com/abiiranathan/partials/engine"
)

// countingLoader wraps another loader and counts resolution attempts.
type countingLoader struct {
	inner    engine.Loader
	calls    int
	resets   int
	resetErr error
}

func (l *countingLoader) GetTemplateSources(name string) []*engine.Origin {
	return l.inner.GetTemplateSources(name)
}

func (l *countingLoader) GetTemplate(e *engine.Engine, name string, skip []*engine.Origin) (engine.Renderable, error) {
	l.calls++
	return l.inner.GetTemplate(e, name, skip)
}

func (l *countingLoader) Reset() error {
	l.resets++
	return l.resetErr
}

func TestCachedMemoization(t *testing.T) {
	counting := &countingLoader{inner: NewMap(map[string]string{"page.html": "hi"})}
	cached := NewCached(counting)
	e := engine.New(cached)

	first, err := cached.GetTemplate(e, "page.html", nil)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	second, err := cached.GetTemplate(e, "page.html", nil)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}

	// The map loader compiles on every call, so pointer identity proves
	// the second lookup was served from the cache.
	if first != second {
		t.Error("second lookup should return the cached document")
	}
	if counting.calls != 1 {
		t.Errorf("wrapped loader called %d times, want 1", counting.calls)
	}
}

func TestCachedNegativeCaching(t *testing.T) {
	counting := &countingLoader{inner: NewMap(nil)}
	cached := NewCached(counting)
	e := engine.New(cached)

	for range 3 {
		if _, err := cached.GetTemplate(e, "ghost.html", nil); !engine.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	}

	// Misses are memoized too.
	if counting.calls != 1 {
		t.Errorf("wrapped loader called %d times, want 1", counting.calls)
	}
}

func TestCachedSkipBypassesCache(t *testing.T) {
	counting := &countingLoader{inner: NewMap(map[string]string{"page.html": "hi"})}
	cached := NewCached(counting)
	e := engine.New(cached)

	if _, err := cached.GetTemplate(e, "page.html", nil); err != nil {
		t.Fatal(err)
	}

	// A lookup with a skip list must hit the wrapped loader and must not
	// replace the cached entry.
	skip := []*engine.Origin{{Name: "elsewhere.html"}}
	if _, err := cached.GetTemplate(e, "page.html", skip); err != nil {
		t.Fatal(err)
	}
	if counting.calls != 2 {
		t.Errorf("wrapped loader called %d times, want 2", counting.calls)
	}

	if _, err := cached.GetTemplate(e, "page.html", nil); err != nil {
		t.Fatal(err)
	}
	if counting.calls != 2 {
		t.Errorf("plain lookup after skip lookup should be a cache hit, calls = %d", counting.calls)
	}
}

func TestCachedTriedAggregation(t *testing.T) {
	a := NewMap(map[string]string{"only-a.html": "A"})
	b := NewMap(map[string]string{"only-b.html": "B"})
	cached := NewCached(a, b)
	e := engine.New(cached)

	_, err := cached.GetTemplate(e, "ghost.html", nil)
	var nf *engine.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	// Both children report their attempt.
	if len(nf.Tried) != 2 {
		t.Errorf("Tried = %v, want one entry per wrapped loader", nf.Tried)
	}

	// The second loader serves names the first lacks.
	tmpl, err := cached.GetTemplate(e, "only-b.html", nil)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	out, err := tmpl.Render(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "B" {
		t.Errorf("Render = %q, want %q", out, "B")
	}
}

func TestCachedReset(t *testing.T) {
	counting := &countingLoader{inner: NewMap(map[string]string{"page.html": "hi"})}
	cached := NewCached(counting)
	e := engine.New(cached)

	first, err := cached.GetTemplate(e, "page.html", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := cached.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if counting.resets != 1 {
		t.Errorf("wrapped Resetter invoked %d times, want 1", counting.resets)
	}

	second, err := cached.GetTemplate(e, "page.html", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("lookup after Reset should recompile")
	}
}

func TestCachedResetAggregatesErrors(t *testing.T) {
	failA := &countingLoader{inner: NewMap(nil), resetErr: errors.New("a failed")}
	failB := &countingLoader{inner: NewMap(nil), resetErr: errors.New("b failed")}
	cached := NewCached(failA, failB)

	err := cached.Reset()
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	// Both children are reset even when the first fails.
	if failA.resets != 1 || failB.resets != 1 {
		t.Errorf("resets = (%d, %d), want (1, 1)", failA.resets, failB.resets)
	}
	for _, want := range []string{"a failed", "b failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("aggregated error %q should mention %q", err.Error(), want)
		}
	}
}

func TestCachedPassThrough(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	cached := NewCached(NewFilesystem(dirA), NewFilesystem(dirB))

	dirs := cached.GetDirs()
	if len(dirs) != 2 || dirs[0] != dirA || dirs[1] != dirB {
		t.Errorf("GetDirs = %v, want [%s %s]", dirs, dirA, dirB)
	}

	origins := cached.GetTemplateSources("page.html")
	if len(origins) != 2 {
		t.Errorf("GetTemplateSources returned %d origins, want 2", len(origins))
	}
}
