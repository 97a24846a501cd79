package main

import (
	"os"

	"github.com/conduit-lang/recordtree/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
