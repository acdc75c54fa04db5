// Command unitconv builds, evaluates and renders unit conversion functions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/unitconv/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
