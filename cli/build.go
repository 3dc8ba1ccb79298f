package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/esm-dev/esm-bundle/internal/bundler"
	"github.com/esm-dev/esm-bundle/internal/graph"
	"github.com/goccy/go-json"
	logx "github.com/ije/gox/log"
	"github.com/ije/gox/term"
	"github.com/ije/gox/utils"
)

const buildHelpMessage = `Usage: esm-bundle build [options] [...entrypoints]

Options:
  --entrypoints, -i     Entry files to bundle (repeatable or comma-separated, default "./main.ts")
  --external, -e        Package names to resolve instead of inline (repeatable or comma-separated)
  --outputDir, -o       Directory for the output files (default "dist")
  --outputPath          Output file path, overrides --outputDir for single-file output
  --minify, -m          Minify the output (default)
  --no-minify           Do not minify the output
  --replace, -r         Literal replacement applied to the output, "search=replacement" (repeatable)
  --config              Load build options from a JSON file, flags win over it
  --debug               Print debug logs
  --help, -h            Display this help message
`

type buildFlags struct {
	options    bundler.Options
	configFile string
	debug      bool
	help       bool
}

// Build implements the `build` command.
func Build() {
	flags := parseBuildArgs(os.Args[2:])
	if flags.help {
		fmt.Print(buildHelpMessage)
		return
	}

	options := flags.options
	if flags.configFile != "" {
		loaded, err := bundler.LoadOptions(flags.configFile)
		if err != nil {
			fmt.Println(term.Red("error: " + err.Error()))
			os.Exit(1)
		}
		options = mergeOptions(*loaded, flags.options)
	}

	log := &logx.Logger{}
	if flags.debug {
		log.SetLevelByName("debug")
	} else {
		log.SetLevelByName("info")
	}

	ret, err := bundler.New(graph.NewDenoLoader(), log).Build(options)
	if err != nil {
		fmt.Println(term.Red("error: " + err.Error()))
		os.Exit(1)
	}

	for _, filename := range ret.OutputFiles {
		fmt.Println(filename)
	}
	fmt.Println(term.Dim(fmt.Sprintf("Done in %dms", ret.Duration.Milliseconds())))
}

// parseBuildArgs parses the `build` command arguments. Unflagged arguments
// are taken as extra entry points; array-valued flags accept both repeated
// occurrences and comma-separated values.
func parseBuildArgs(args []string) (flags buildFlags) {
	noMinify := false
	minify := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			flags.options.Entrypoints = append(flags.options.Entrypoints, arg)
			continue
		}
		name, inline := utils.SplitByFirstByte(strings.TrimLeft(arg, "-"), '=')
		switch name {
		case "i", "entrypoints":
			if value, ok := takeValue(args, &i, inline); ok {
				flags.options.Entrypoints = append(flags.options.Entrypoints, splitValues(value)...)
			}
		case "e", "external":
			if value, ok := takeValue(args, &i, inline); ok {
				flags.options.External = append(flags.options.External, splitValues(value)...)
			}
		case "o", "outputDir":
			if value, ok := takeValue(args, &i, inline); ok {
				flags.options.OutputDir = value
			}
		case "outputPath":
			if value, ok := takeValue(args, &i, inline); ok {
				flags.options.OutputPath = value
			}
		case "r", "replace":
			if value, ok := takeValue(args, &i, inline); ok {
				// only the first '=' delimits; entries without one are dropped
				if search, replacement, found := strings.Cut(value, "="); found && search != "" {
					flags.options.Replace = append(flags.options.Replace, bundler.Replacement{Find: search, Value: replacement})
				}
			}
		case "config":
			if value, ok := takeValue(args, &i, inline); ok {
				flags.configFile = value
			}
		case "m", "minify":
			minify = true
		case "no-minify":
			noMinify = true
		case "debug":
			flags.debug = true
		case "h", "help":
			flags.help = true
		}
	}
	// --no-minify wins over --minify
	if noMinify {
		flags.options.MinifyRaw = json.RawMessage("false")
	} else if minify {
		flags.options.MinifyRaw = json.RawMessage("true")
	}
	return
}

// takeValue returns the value of a flag: the `--flag=value` form if present,
// otherwise the following argument.
func takeValue(args []string, i *int, inline string) (string, bool) {
	if inline != "" {
		return inline, true
	}
	if *i+1 < len(args) {
		*i++
		return args[*i], true
	}
	return "", false
}

func splitValues(value string) (values []string) {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	return
}

// mergeOptions overlays the flag-provided options on top of the config file
// ones: arrays are appended, scalars are overridden when set.
func mergeOptions(base bundler.Options, overlay bundler.Options) bundler.Options {
	base.Entrypoints = append(base.Entrypoints, overlay.Entrypoints...)
	base.External = append(base.External, overlay.External...)
	base.Replace = append(base.Replace, overlay.Replace...)
	if overlay.OutputDir != "" {
		base.OutputDir = overlay.OutputDir
	}
	if overlay.OutputPath != "" {
		base.OutputPath = overlay.OutputPath
	}
	if overlay.MinifyRaw != nil {
		base.MinifyRaw = overlay.MinifyRaw
	}
	return base
}
