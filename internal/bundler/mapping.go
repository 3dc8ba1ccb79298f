package bundler

import (
	"fmt"
	"strings"

	"github.com/esm-dev/esm-bundle/internal/graph"
)

// specifier protocols that mark a resolution as external: the package-manager
// protocol, the registry protocol, and direct network URLs
const (
	npmProtocol   = "npm:"
	jsrProtocol   = "jsr:"
	httpsProtocol = "https://"
)

// buildImportMappings resolves the module graph of the entry points and
// collects a bare-specifier to resolved-specifier mapping for every import
// edge that (a) resolves to an external protocol and (b) has one of the
// external package names as a prefix of its bare specifier. The prefix match
// lets the external name "h3" cover "h3/router" as well.
//
// A nil mapping means externals were not requested at all; the graph loader
// is not invoked in that case. A non-nil empty mapping means the graph simply
// contained no matching edges.
func (b *Bundler) buildImportMappings(external []string, entrypoints []string) (map[string]string, error) {
	if len(external) == 0 {
		return nil, nil
	}

	g, err := b.loader.Load(entrypoints)
	if err != nil {
		return nil, fmt.Errorf("resolve module graph: %w", err)
	}

	mappings := map[string]string{}
	for _, module := range g.Modules {
		if module.Kind != graph.KindESM {
			continue
		}
		for _, dep := range module.Dependencies {
			resolved := dep.Code.Specifier
			if resolved == "" {
				// unresolved or dynamic edge, nothing to map
				continue
			}
			if target, ok := g.Redirects[resolved]; ok {
				resolved = target
			}
			resolved = normalizeSpecifier(resolved)
			if !startsWith(resolved, npmProtocol, jsrProtocol, httpsProtocol) {
				continue
			}
			if startsWith(dep.Specifier, external...) {
				mappings[dep.Specifier] = resolved
			}
		}
	}

	if len(mappings) > 0 {
		b.log.Debugf("resolved %d external import(s):", len(mappings))
		for bare, resolved := range mappings {
			b.log.Debugf("  %s => %s", bare, resolved)
		}
	}
	return mappings, nil
}

// normalizeSpecifier strips the extra path separator some resolvers put after
// the npm/jsr protocol, e.g. `npm:/foo@1.0.0` -> `npm:foo@1.0.0`.
func normalizeSpecifier(specifier string) string {
	for _, protocol := range []string{npmProtocol, jsrProtocol} {
		if strings.HasPrefix(specifier, protocol+"/") {
			return protocol + specifier[len(protocol)+1:]
		}
	}
	return specifier
}
