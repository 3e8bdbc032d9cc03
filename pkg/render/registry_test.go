package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/render"
)

type namedRenderer struct{ name string }

func (n namedRenderer) Name() string                              { return n.name }
func (namedRenderer) ContentType() string                         { return "text/plain" }
func (namedRenderer) Step(string) (render.Block, error)           { return render.Block{}, nil }
func (namedRenderer) Table(model.CharTable) (render.Block, error) { return render.Block{}, nil }
func (namedRenderer) Result(string) (render.Block, error)         { return render.Block{}, nil }
func (namedRenderer) Error(string) (render.Block, error)          { return render.Block{}, nil }
func (namedRenderer) Loading() (render.Block, error)              { return render.Block{}, nil }
func (namedRenderer) Compose([]render.Block) string               { return "" }

func TestRegistry_RegisterAndList(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer{name: "terminal"})
	registry.MustRegister(namedRenderer{name: "html"})

	if diff := cmp.Diff([]string{"html", "terminal"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := registry.Get("terminal")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name() != "terminal" {
		t.Fatalf("unexpected renderer %q", got.Name())
	}
}

func TestRegistry_RejectsDuplicatesAndBlankNames(t *testing.T) {
	registry := render.NewRegistry()
	if err := registry.Register(namedRenderer{name: "html"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(namedRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(namedRenderer{}); err == nil {
		t.Fatalf("expected blank name to fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Fatalf("expected missing renderer lookup to fail")
	}
}
