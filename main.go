// Command streamcore drives one capture session (and demonstrates the
// array/memory engine it shares a process with) per invocation.
package main

import (
	"fmt"
	"os"

	"github.com/nsdr/streamcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
