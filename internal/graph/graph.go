// Package graph loads the module graph reachable from a set of ESM entry
// points. The resolution work is delegated to the Deno CLI (`deno info
// --json`); this package only shapes its output into typed data.
package graph

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ije/gox/set"
)

// KindESM marks modules of the "ES module" kind in the graph.
const KindESM = "esm"

// Graph is the module graph computed for one or more entry points.
type Graph struct {
	Roots     []string          `json:"roots"`
	Modules   []Module          `json:"modules"`
	Redirects map[string]string `json:"redirects"`
}

// Module is one module of the graph with its outgoing dependency edges.
type Module struct {
	Kind         string       `json:"kind"`
	Specifier    string       `json:"specifier"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is one import edge: the bare specifier as written in the
// importing module, plus the resolver's target for it. A dependency whose
// code resolution is empty is unresolved (e.g. a dynamic import the resolver
// could not follow) and carries no usable target.
type Dependency struct {
	Specifier string     `json:"specifier"`
	Code      Resolution `json:"code"`
	Type      Resolution `json:"type"`
}

// Resolution is the resolved target of a dependency with its source position.
type Resolution struct {
	Specifier string `json:"specifier"`
	Span      *Span  `json:"span,omitempty"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Loader resolves the module graph reachable from the given entry points.
type Loader interface {
	Load(entrypoints []string) (*Graph, error)
}

// DenoLoader implements Loader on top of the Deno CLI. The deno executable is
// located and version-checked once, on first use.
type DenoLoader struct {
	denoPath string
}

func NewDenoLoader() *DenoLoader {
	return &DenoLoader{}
}

// Load runs `deno info --json` for each entry point and merges the resulting
// graphs. Modules are deduplicated by specifier; redirect tables are merged
// with later entries winning.
func (l *DenoLoader) Load(entrypoints []string) (*Graph, error) {
	if l.denoPath == "" {
		denoPath, err := lookupDeno()
		if err != nil {
			return nil, err
		}
		l.denoPath = denoPath
	}

	merged := &Graph{Redirects: map[string]string{}}
	seen := set.New[string]()
	for _, entry := range entrypoints {
		cmd := exec.Command(l.denoPath, "info", "--json", "--quiet", entry)
		output, err := cmd.Output()
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
				return nil, fmt.Errorf("deno info %s: %s", entry, strings.TrimSpace(string(exitErr.Stderr)))
			}
			return nil, fmt.Errorf("deno info %s: %w", entry, err)
		}
		g, err := parseGraph(output)
		if err != nil {
			return nil, fmt.Errorf("deno info %s: %w", entry, err)
		}
		merged.Roots = append(merged.Roots, g.Roots...)
		for _, module := range g.Modules {
			if seen.Has(module.Specifier) {
				continue
			}
			seen.Add(module.Specifier)
			merged.Modules = append(merged.Modules, module)
		}
		for from, to := range g.Redirects {
			merged.Redirects[from] = to
		}
	}
	return merged, nil
}

func parseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("fail to parse module graph: %w", err)
	}
	if g.Redirects == nil {
		g.Redirects = map[string]string{}
	}
	return &g, nil
}
