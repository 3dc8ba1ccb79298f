// Package bundler builds ESM bundles with esbuild and rewrites the imports of
// externally resolved packages in the emitted code to fully-qualified
// specifiers (npm:, jsr: or https:// URLs).
package bundler

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/esm-dev/esm-bundle/internal/graph"
	esbuild "github.com/evanw/esbuild/pkg/api"
	logx "github.com/ije/gox/log"
	"github.com/ije/gox/set"
)

// Bundler drives builds. The graph loader and the logger are injected so
// concurrent builds can carry their own observers; a Bundler itself holds no
// per-build state and is safe for concurrent use as long as the output
// directories of concurrent builds do not overlap.
type Bundler struct {
	loader graph.Loader
	log    *logx.Logger
}

func New(loader graph.Loader, log *logx.Logger) *Bundler {
	if log == nil {
		log = &logx.Logger{}
	}
	return &Bundler{loader: loader, log: log}
}

// BuildResult reports what a build produced: the elapsed time and the written
// file paths, in emit order.
type BuildResult struct {
	Duration    time.Duration
	OutputFiles []string
}

// Build bundles the entry points to ESM output and post-processes every
// emitted file: the literal replacement table first, then the external import
// rewrites. Any failure aborts the whole build; files written before the
// failure are left on disk.
func (b *Bundler) Build(options Options) (*BuildResult, error) {
	normalizeOptions(&options)
	start := time.Now()

	importMap, err := b.buildImportMappings(options.External, options.Entrypoints)
	if err != nil {
		return nil, err
	}

	// with no externals requested, let esbuild inline everything it can
	packagesMode := esbuild.PackagesBundle
	if importMap != nil {
		packagesMode = esbuild.PackagesExternal
	}

	buildOptions := esbuild.BuildOptions{
		EntryPoints:       options.Entrypoints,
		Bundle:            true,
		Write:             false,
		Format:            esbuild.FormatESModule,
		External:          options.External,
		Packages:          packagesMode,
		MinifyWhitespace:  options.Minify,
		MinifyIdentifiers: options.Minify,
		MinifySyntax:      options.Minify,
	}
	if options.OutputPath != "" {
		buildOptions.Outfile = options.OutputPath
	} else {
		buildOptions.Outdir = options.OutputDir
	}
	result := esbuild.Build(buildOptions)
	if len(result.Errors) > 0 {
		return nil, errors.New("esbuild: " + result.Errors[0].Text)
	}

	rewritten := set.New[string]()
	outputFiles := make([]string, 0, len(result.OutputFiles))
	for _, file := range result.OutputFiles {
		js, hits := rewriteImports(string(file.Contents), options.Replace, importMap)
		for _, bare := range hits.Values() {
			rewritten.Add(bare)
		}
		err = ensureDir(filepath.Dir(file.Path))
		if err != nil {
			return nil, err
		}
		err = os.WriteFile(file.Path, []byte(js), 0644)
		if err != nil {
			return nil, err
		}
		outputFiles = append(outputFiles, file.Path)
	}

	// the mapping is computed from the graph independently of the bundler's
	// output, so a mapped specifier the bundler renamed would silently never
	// match (see rewriteImports); surface that as a warning
	for bare := range importMap {
		if !rewritten.Has(bare) {
			b.log.Warnf("external import '%s' was mapped but not found in any output file", bare)
		}
	}

	b.log.Debugf("bundled %d file(s) in %v", len(outputFiles), time.Since(start))
	return &BuildResult{
		Duration:    time.Since(start),
		OutputFiles: outputFiles,
	}, nil
}
