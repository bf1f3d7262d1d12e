package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aiscriptdev/aiscript/pkg/embed"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing %s: %s", path, err)
	}
	return path
}

func TestRunExecutesScriptFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.ai", `print "hello";`)

	code := Run([]string{path})
	if code != embed.ExitSuccess {
		t.Fatalf("Run(%q) = %d, want ExitSuccess", path, code)
	}
}

func TestRunReportsCompileErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.ai", "let x = ;")

	code := Run([]string{path})
	if code != embed.ExitCompileError {
		t.Fatalf("Run(%q) = %d, want ExitCompileError", path, code)
	}
}

func TestRunMissingFileReportsIOError(t *testing.T) {
	code := Run([]string{filepath.Join(t.TempDir(), "missing.ai")})
	if code != embed.ExitIOError {
		t.Fatalf("Run(missing) = %d, want ExitIOError", code)
	}
}

func TestRunServeWithoutReloadRunsOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.ai", `print "served";`)

	code := Run([]string{"serve", "--port", "9090", path})
	if code != embed.ExitSuccess {
		t.Fatalf("Run(serve) = %d, want ExitSuccess", code)
	}
	if got := os.Getenv("PORT"); got != "9090" {
		t.Errorf("PORT env var = %q, want %q", got, "9090")
	}
}

func TestRunServeWithNoFileArgumentReportsIOError(t *testing.T) {
	code := Run([]string{"serve"})
	if code != embed.ExitIOError {
		t.Fatalf("Run(serve) with no file = %d, want ExitIOError", code)
	}
}
