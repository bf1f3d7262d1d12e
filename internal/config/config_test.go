package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load of a missing file should not error, got: %s", err)
	}
	if cfg.DB.Postgres != "" || cfg.AI.Provider != "" || cfg.SSO.Provider != "" {
		t.Errorf("expected a zero-value Config, got %+v", cfg)
	}
}

func TestLoadParsesAllSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aiscript.toml")
	content := `
[db]
pg = "postgres://localhost/app"
sqlite = "file:app.db"
redis = "redis://localhost:6379"

[ai]
provider = "openai"
api_key = "sk-test"
base_url = "https://api.openai.com/v1"

[sso]
provider = "okta"
client_id = "abc123"
client_secret = "shh"
redirect_url = "https://app.example.com/callback"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if cfg.DB.Postgres != "postgres://localhost/app" {
		t.Errorf("DB.Postgres = %q", cfg.DB.Postgres)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.APIKey != "sk-test" {
		t.Errorf("AI section = %+v", cfg.AI)
	}
	if cfg.SSO.Provider != "okta" || cfg.SSO.ClientID != "abc123" {
		t.Errorf("SSO section = %+v", cfg.SSO)
	}
}

func TestLoadMalformedTOMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("not = valid = toml = ["), 0o644); err != nil {
		t.Fatalf("writing config: %s", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestHasSourceExt(t *testing.T) {
	if !HasSourceExt("main.ai") {
		t.Error("main.ai should be recognized as a source file")
	}
	if HasSourceExt("main.go") {
		t.Error("main.go should not be recognized as an AIScript source file")
	}
}

func TestTrimSourceExt(t *testing.T) {
	if got := TrimSourceExt("main.ai"); got != "main" {
		t.Errorf("TrimSourceExt(main.ai) = %q, want %q", got, "main")
	}
	if got := TrimSourceExt("main"); got != "main" {
		t.Errorf("TrimSourceExt(main) = %q, want %q (no recognized extension)", got, "main")
	}
}
