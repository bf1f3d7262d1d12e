package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/aiscriptdev/aiscript/internal/parser"
	"github.com/aiscriptdev/aiscript/internal/vm"
)

// runREPL reads one statement at a time from stdin and runs it in a single
// persistent VM, so `let`/function/class declarations from one line are
// visible to the next. Banner/prompt are only printed on an interactive
// terminal, detected via go-isatty so piped input runs quietly.
func runREPL() int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	machine := vm.New()
	machine.SetOutput(os.Stdout)

	if interactive {
		fmt.Println("aiscript REPL — Ctrl-D to exit")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		program, diags := parser.ParseProgram(line)
		if diags.HasErrors() {
			fmt.Fprintln(os.Stderr, diags.String())
			continue
		}
		fn, diags := vm.Compile(program)
		if diags.HasErrors() {
			fmt.Fprintln(os.Stderr, diags.String())
			continue
		}
		if _, err := machine.Interpret(fn); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if interactive {
		fmt.Println()
	}
	return 0
}
