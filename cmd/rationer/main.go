// main is the entry point for the rationer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/nutrily/rationer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
