// Command tendril compiles and runs Tendril patterns against JSON
// documents from the command line (SPEC_FULL.md §10.3).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
