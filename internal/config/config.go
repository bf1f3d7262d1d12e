// Package config holds AIScript's build-time constants and the optional
// TOML-loaded runtime configuration (DB connections, AI provider keys, SSO
// settings) consulted by pkg/embed and cmd/aiscript.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Version is the current AIScript version, set at build time by -ldflags.
var Version = "0.1.0"

const SourceFileExt = ".ai"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".ai"}

// TrimSourceExt removes a recognized source extension from name, returning
// name unchanged if none matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is false unless a caller sets it; no CLI subcommand sets it.
var IsTestMode = false

// DBConfig holds connection strings for the native db modules.
type DBConfig struct {
	Postgres string `toml:"pg"`
	SQLite   string `toml:"sqlite"`
	Redis    string `toml:"redis"`
}

// AIProviderConfig holds the key/endpoint pair an `ai` agent declaration's
// provider resolves against at runtime.
type AIProviderConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// SSOConfig names the OAuth/SSO provider an embedder wires in through
// pkg/embed's InjectSSOInstance; AIScript never implements SSO/OAuth itself,
// it only carries the settings a host-supplied provider object is
// constructed from.
type SSOConfig struct {
	Provider     string `toml:"provider"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Config is the top-level shape of an optional aiscript.toml file.
type Config struct {
	DB  DBConfig         `toml:"db"`
	AI  AIProviderConfig `toml:"ai"`
	SSO SSOConfig        `toml:"sso"`
}

// Load reads and parses the TOML file at path. A missing file is not an
// error: it returns a zero-value Config, since every section is optional.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
