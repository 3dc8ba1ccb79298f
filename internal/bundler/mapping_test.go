package bundler

import (
	"errors"
	"testing"

	"github.com/esm-dev/esm-bundle/internal/graph"
)

// stubLoader serves a fixed graph (or error) and records invocations.
type stubLoader struct {
	graph *graph.Graph
	err   error
	calls int
}

func (l *stubLoader) Load(entrypoints []string) (*graph.Graph, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.graph, nil
}

func testGraph() *graph.Graph {
	return &graph.Graph{
		Roots: []string{"file:///app/main.ts"},
		Modules: []graph.Module{
			{
				Kind:      "esm",
				Specifier: "file:///app/main.ts",
				Dependencies: []graph.Dependency{
					{
						Specifier: "h3",
						Code:      graph.Resolution{Specifier: "jsr:@hono/h3@1.0.0"},
					},
					{
						Specifier: "h3/router",
						Code:      graph.Resolution{Specifier: "jsr:@hono/h3@1.0.0/router"},
					},
					{
						Specifier: "./util.ts",
						Code:      graph.Resolution{Specifier: "file:///app/util.ts"},
					},
					{
						Specifier: "dynamic-pkg",
						// unresolved edge: no code specifier
					},
				},
			},
			{
				Kind:      "npm",
				Specifier: "npm:h3@1.13.0",
				Dependencies: []graph.Dependency{
					{
						Specifier: "h3-internal",
						Code:      graph.Resolution{Specifier: "npm:h3-internal@1.0.0"},
					},
				},
			},
		},
		Redirects: map[string]string{},
	}
}

func TestBuildImportMappingsNoExternals(t *testing.T) {
	loader := &stubLoader{err: errors.New("graph loader must not be invoked")}
	mappings, err := New(loader, nil).buildImportMappings(nil, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mappings != nil {
		t.Fatalf("expected no mappings, got %v", mappings)
	}
	if loader.calls != 0 {
		t.Fatalf("expected the graph loader to be skipped, got %d call(s)", loader.calls)
	}
}

func TestBuildImportMappings(t *testing.T) {
	loader := &stubLoader{graph: testGraph()}
	mappings, err := New(loader, nil).buildImportMappings([]string{"h3"}, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected 1 graph load, got %d", loader.calls)
	}
	if len(mappings) != 2 {
		t.Fatalf("expected 2 mappings, got %v", mappings)
	}
	if mappings["h3"] != "jsr:@hono/h3@1.0.0" {
		t.Fatalf("expected 'h3' to map to 'jsr:@hono/h3@1.0.0', got %q", mappings["h3"])
	}
	// "h3" is a prefix of "h3/router"
	if mappings["h3/router"] != "jsr:@hono/h3@1.0.0/router" {
		t.Fatalf("expected 'h3/router' to map to 'jsr:@hono/h3@1.0.0/router', got %q", mappings["h3/router"])
	}
}

func TestBuildImportMappingsUnmatchedExternal(t *testing.T) {
	loader := &stubLoader{graph: testGraph()}
	mappings, err := New(loader, nil).buildImportMappings([]string{"other"}, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mappings == nil || len(mappings) != 0 {
		t.Fatalf("expected an empty mapping, got %v", mappings)
	}
}

func TestBuildImportMappingsProtocolFilter(t *testing.T) {
	// a file-path resolution is never mapped, even when the external list
	// names its bare specifier
	loader := &stubLoader{graph: testGraph()}
	mappings, err := New(loader, nil).buildImportMappings([]string{"./util.ts"}, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected no mappings for file resolutions, got %v", mappings)
	}
}

func TestBuildImportMappingsNonESModules(t *testing.T) {
	// dependencies of non-esm graph modules are not mapped
	loader := &stubLoader{graph: testGraph()}
	mappings, err := New(loader, nil).buildImportMappings([]string{"h3-internal"}, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected no mappings from non-esm modules, got %v", mappings)
	}
}

func TestBuildImportMappingsRedirects(t *testing.T) {
	g := &graph.Graph{
		Modules: []graph.Module{
			{
				Kind:      "esm",
				Specifier: "file:///app/main.ts",
				Dependencies: []graph.Dependency{
					{
						Specifier: "preact",
						Code:      graph.Resolution{Specifier: "https://esm.sh/preact"},
					},
				},
			},
		},
		Redirects: map[string]string{
			"https://esm.sh/preact": "https://esm.sh/preact@10.24.0",
		},
	}
	mappings, err := New(&stubLoader{graph: g}, nil).buildImportMappings([]string{"preact"}, []string{"./main.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mappings["preact"] != "https://esm.sh/preact@10.24.0" {
		t.Fatalf("expected the redirect target, got %q", mappings["preact"])
	}
}

func TestBuildImportMappingsLoaderError(t *testing.T) {
	loader := &stubLoader{err: errors.New("entry point not found")}
	_, err := New(loader, nil).buildImportMappings([]string{"h3"}, []string{"./missing.ts"})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestNormalizeSpecifier(t *testing.T) {
	tests := map[string]string{
		"npm:/h3@1.13.0":      "npm:h3@1.13.0",
		"jsr:/@hono/h3@1.0.0": "jsr:@hono/h3@1.0.0",
		"npm:h3@1.13.0":       "npm:h3@1.13.0",
		"https://esm.sh/h3":   "https://esm.sh/h3",
	}
	for input, expected := range tests {
		if out := normalizeSpecifier(input); out != expected {
			t.Fatalf("normalizeSpecifier(%q): expected %q, got %q", input, expected, out)
		}
	}
}
