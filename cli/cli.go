package cli

import (
	"fmt"
	"os"
)

const VERSION = "0.2.0"

const helpMessage = "\033[30mesm-bundle - Bundle modules to ESM with resolvable external imports.\033[0m" + `

Usage: esm-bundle [command] [options]

Commands:
  build [...entrypoints]   Bundle the entry files to ESM output

Options:
  --version, -v            Show the version
  --help, -h               Display this help message
`

func Run() {
	if len(os.Args) < 2 {
		fmt.Print(helpMessage)
		return
	}
	switch command := os.Args[1]; command {
	case "build":
		Build()
	case "version":
		fmt.Println("esm-bundle " + VERSION)
	default:
		for _, arg := range os.Args[1:] {
			if arg == "--version" {
				fmt.Println("esm-bundle " + VERSION)
				return
			}
			if arg == "-v" {
				fmt.Println(VERSION)
				return
			}
		}
		fmt.Print(helpMessage)
	}
}
