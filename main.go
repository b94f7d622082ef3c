package main

import (
	"errors"
	"fmt"
	"os"

	"branchscript-editor/cli"
)

var version = "0.1.0"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		if !errors.Is(err, cli.ErrDiagnostics) {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		}
		os.Exit(1)
	}
}
