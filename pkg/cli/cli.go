// Package cli implements AIScript's command surface: `aiscript <file>` runs
// a script, `aiscript serve <file>` runs it (and with --reload re-runs it
// whenever it changes), and no
// arguments starts an interactive REPL. AIScript carries no AOT/bundling
// commands since native codegen is out of scope for this runtime.
package cli

import (
	"fmt"
	"os"

	"github.com/aiscriptdev/aiscript/pkg/embed"
)

// Run dispatches argv (excluding the program name) and returns a process
// exit code.
func Run(args []string) int {
	switch {
	case len(args) == 0:
		return runREPL()
	case args[0] == "serve":
		return runServe(args[1:])
	default:
		return runFile(args[0])
	}
}

func runFile(path string) int {
	v := embed.New(".")
	loadConfigIfPresent(v)
	code, err := v.RunFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}

func loadConfigIfPresent(v *embed.VM) {
	if _, err := os.Stat("aiscript.toml"); err == nil {
		if err := v.LoadConfig("aiscript.toml"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: aiscript.toml: %s\n", err)
		}
	}
}
