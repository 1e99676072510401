package main

import (
	"fmt"
	"os"

	"github.com/ds124wfegd/item-analyzer/cmd/itemctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
