package main

import (
	"os"

	"github.com/majorcontext/watchprocess/cmd/watchprocess/cli"
)

func main() {
	// Invoked through a shadow link: run the genuine command under
	// monitoring instead of the management CLI.
	if cli.IsIndirect(os.Args[0]) {
		os.Exit(cli.Indirect(os.Args))
	}
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
