package main

import (
	"github.com/esm-dev/esm-bundle/cli"
)

func main() {
	cli.Run()
}
