package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aiscriptdev/aiscript/pkg/embed"
)

// runServe implements `aiscript serve <file> --port --reload`. The HTTP
// routing layer itself is an external collaborator — AIScript's own
// responsibility here ends at re-running the script whenever
// its source changes and exposing --port as a value the script can read via
// env.get("PORT"), the same seam a host router would consult.
func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", 8080, "port the script's own routing reads via env")
	reload := fs.Bool("reload", false, "re-run the script when its source file changes")
	if err := fs.Parse(args); err != nil {
		return embed.ExitIOError
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: aiscript serve <file> [--port N] [--reload]")
		return embed.ExitIOError
	}
	path := fs.Arg(0)
	os.Setenv("PORT", fmt.Sprintf("%d", *port))

	if !*reload {
		return runFile(path)
	}

	var lastMod time.Time
	for {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return embed.ExitIOError
		}
		if info.ModTime().After(lastMod) {
			lastMod = info.ModTime()
			fmt.Printf("[reload] running %s\n", path)
			if code := runFile(path); code != embed.ExitSuccess {
				fmt.Fprintf(os.Stderr, "[reload] exited with code %d\n", code)
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
}
