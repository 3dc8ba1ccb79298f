package bundler

import (
	"regexp"
	"strings"

	"github.com/ije/gox/set"
)

// rewriteImports applies the literal replacement table and then the import
// mappings to bundled output text. The returned set contains the bare
// specifiers that matched at least one import position in this text.
//
// The specifier rewrite is position-constrained pattern matching, not
// parsing: a mapped specifier is only substituted between the quotes of an
// import/export-from clause or a dynamic import() call, so the same string
// appearing as plain data is left alone. Generated code that happens to
// contain an import-shaped string inside an unrelated literal can still be
// caught by the patterns; that is an accepted limitation of rewriting
// without an AST.
func rewriteImports(text string, replacements []Replacement, importMap map[string]string) (string, *set.Set[string]) {
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.Find, r.Value)
	}

	rewritten := set.New[string]()
	for bare, resolved := range importMap {
		literal := regexp.QuoteMeta(bare)
		// `$` in the substitution would be taken as a group reference
		value := strings.ReplaceAll(resolved, "$", "$$")

		// import/export ... from "bare"
		staticRe := regexp.MustCompile(`(\b(?:import|export)\b[^"']*\bfrom\s*)(["'])` + literal + `(["'])`)
		if staticRe.MatchString(text) {
			text = staticRe.ReplaceAllString(text, `${1}${2}`+value+`${3}`)
			rewritten.Add(bare)
		}

		// import("bare")
		dynamicRe := regexp.MustCompile(`(\bimport\(\s*)(["'])` + literal + `(["'])(\s*\))`)
		if dynamicRe.MatchString(text) {
			text = dynamicRe.ReplaceAllString(text, `${1}${2}`+value+`${3}${4}`)
			rewritten.Add(bare)
		}
	}
	return text, rewritten
}
