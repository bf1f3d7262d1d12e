// Command aiscript is the CLI entry point: `aiscript <file>` runs a script,
// `aiscript serve <file>` watches and re-runs one, and no arguments starts
// the REPL.
package main

import (
	"os"

	"github.com/aiscriptdev/aiscript/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
