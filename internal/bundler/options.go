package bundler

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Replacement is one literal find/replace pair applied to the bundled output.
// Pairs are applied in slice order; each pair runs exactly one replace-all
// pass over the running text.
type Replacement struct {
	Find  string `json:"find"`
	Value string `json:"value"`
}

// Options configures a single build. All fields are optional; zero values are
// filled in by normalizeOptions.
type Options struct {
	Entrypoints []string        `json:"entrypoints"`
	External    []string        `json:"external"`
	OutputDir   string          `json:"outputDir"`
	OutputPath  string          `json:"outputPath"`
	Replace     []Replacement   `json:"replace"`
	MinifyRaw   json.RawMessage `json:"minify"`
	Minify      bool            `json:"-"`
}

// LoadOptions loads build options from a JSON config file.
func LoadOptions(filename string) (*Options, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fail to read config file: %w", err)
	}
	defer file.Close()

	var options Options
	err = json.NewDecoder(file).Decode(&options)
	if err != nil {
		return nil, fmt.Errorf("fail to parse config: %w", err)
	}
	return &options, nil
}

func normalizeOptions(options *Options) {
	if len(options.Entrypoints) == 0 {
		options.Entrypoints = []string{"./main.ts"}
	}
	if options.OutputDir == "" {
		options.OutputDir = "dist"
	}
	// minify defaults to true
	options.Minify = true
	if options.MinifyRaw != nil {
		var minify bool
		if json.Unmarshal(options.MinifyRaw, &minify) == nil {
			options.Minify = minify
		}
	}
}
