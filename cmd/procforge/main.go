// Command procforge validates proc definition files, drives the trigger
// engine from input streams and replays journaled sessions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/procforge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "procforge:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
