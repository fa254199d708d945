// Command kazt validates, simulates and exports transaction rule graphs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kazt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
