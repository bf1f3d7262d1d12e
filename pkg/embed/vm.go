// Package embed is AIScript's public embedding API: construct a VM, run a
// file or source string, call a named function, and hand the VM whatever
// host-provided SSO/LLM/database collaborators it needs.
package embed

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/aiscriptdev/aiscript/internal/config"
	"github.com/aiscriptdev/aiscript/internal/modules"
	"github.com/aiscriptdev/aiscript/internal/parser"
	"github.com/aiscriptdev/aiscript/internal/vm"
)

// Exit codes a host process can return from main after RunFile.
const (
	ExitSuccess      = 0
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 1
)

// VM wraps the underlying AIScript machine with a small host-facing surface.
type VM struct {
	machine *vm.VM
	Config  *config.Config
}

// Options carries the optional host-supplied collaborators a VM can be
// constructed with: pre-opened database connections that the embedder
// manages the lifecycle of (instead of letting std.db.* dial its own), and
// an AI provider configuration used to service `prompt <expr>`.
type Options struct {
	PgConn     *sql.DB
	SqliteConn *sql.DB
	RedisConn  *redis.Client
	AIConfig   *config.AIProviderConfig
}

// New creates a VM wired with the native/script module loader rooted at dir
// (the directory relative script imports and std.db.sqlite/redis DSNs are
// resolved against). opts is optional: pass nothing for a VM with no
// pre-wired connections or AI provider, or a single *Options to install
// pg_conn/sqlite_conn/redis_conn globals for already-open connections and
// a prompt handler for an AI provider.
func New(dir string, opts ...*Options) *VM {
	machine := vm.New()
	machine.SetBaseDir(dir)
	machine.SetLoader(modules.NewLoader(dir))
	machine.SetOutput(os.Stdout)
	v := &VM{machine: machine, Config: &config.Config{}}

	if len(opts) > 0 && opts[0] != nil {
		v.applyOptions(opts[0])
	}
	return v
}

// applyOptions registers any pre-opened connections as std.db.* handles
// exposed under their conventional global names, and installs a prompt
// handler if an AI provider was configured.
func (v *VM) applyOptions(opts *Options) {
	if opts.PgConn != nil {
		v.machine.DefineGlobal("pg_conn", vm.NumberVal(modules.RegisterPgConn(opts.PgConn)))
	}
	if opts.SqliteConn != nil {
		v.machine.DefineGlobal("sqlite_conn", vm.NumberVal(modules.RegisterSQLiteConn(opts.SqliteConn)))
	}
	if opts.RedisConn != nil {
		v.machine.DefineGlobal("redis_conn", vm.NumberVal(modules.RegisterRedisConn(opts.RedisConn)))
	}
	if opts.AIConfig != nil {
		v.Config.AI = *opts.AIConfig
		v.machine.SetPromptHandler(newPromptHandler(opts.AIConfig))
	}
}

// LoadConfig reads an optional aiscript.toml at path into v.Config. A
// declared AI provider section installs a prompt handler built from it,
// and each declared db.{pg,sqlite,redis} DSN is dialed and exposed as the
// matching pg_conn/sqlite_conn/redis_conn global, the same wiring Options
// gives a Go embedder that already holds open connections.
func (v *VM) LoadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	v.Config = cfg
	if cfg.AI.Provider != "" {
		v.machine.SetPromptHandler(newPromptHandler(&cfg.AI))
	}
	if cfg.DB.Postgres != "" {
		if err := v.dialPg(cfg.DB.Postgres); err != nil {
			return err
		}
	}
	if cfg.DB.SQLite != "" {
		if err := v.dialSQLite(cfg.DB.SQLite); err != nil {
			return err
		}
	}
	if cfg.DB.Redis != "" {
		if err := v.dialRedis(cfg.DB.Redis); err != nil {
			return err
		}
	}
	return nil
}

func (v *VM) dialPg(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db.pg: %w", err)
	}
	v.machine.DefineGlobal("pg_conn", vm.NumberVal(modules.RegisterPgConn(db)))
	return nil
}

func (v *VM) dialSQLite(dsn string) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("db.sqlite: %w", err)
	}
	v.machine.DefineGlobal("sqlite_conn", vm.NumberVal(modules.RegisterSQLiteConn(db)))
	return nil
}

func (v *VM) dialRedis(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	v.machine.DefineGlobal("redis_conn", vm.NumberVal(modules.RegisterRedisConn(client)))
	return nil
}

// SetOutput redirects the VM's `print`/OpPrint destination.
func (v *VM) SetOutput(w io.Writer) { v.machine.SetOutput(w) }

// InjectSSOInstance installs an already-constructed SSO/OAuth provider
// object as a global: AIScript never implements OAuth flows itself, it
// only exposes whatever object the host hands it under name.
func (v *VM) InjectSSOInstance(name string, instance vm.Value) {
	v.machine.DefineGlobal(name, instance)
}

// Compile parses and compiles source into a callable top-level function
// without running it, surfacing diagnostics as a formatted error.
func (v *VM) Compile(source, file string) (*vm.ObjFunction, error) {
	program, diags := parser.ParseProgram(source)
	if diags.HasErrors() {
		return nil, &CompileError{Diagnostics: diags.String()}
	}
	v.machine.SetCurrentFile(file)
	fn, diags := vm.Compile(program)
	if diags.HasErrors() {
		return nil, &CompileError{Diagnostics: diags.String()}
	}
	return fn, nil
}

// Interpret runs a previously compiled function to completion and converts
// its top-level return value to a host-friendly ReturnValue.
func (v *VM) Interpret(fn *vm.ObjFunction) (ReturnValue, error) {
	result, err := v.machine.Interpret(fn)
	if err != nil {
		return ReturnValue{}, err
	}
	return ConvertValue(result), nil
}

// EvalFunction calls a global function by name with args, the embedding
// API's route for a host to drive a specific entry point instead of the
// top-level script body.
func (v *VM) EvalFunction(name string, args ...vm.Value) (ReturnValue, error) {
	globals := v.machine.Globals()
	fn, ok := globals[name]
	if !ok {
		return ReturnValue{}, fmt.Errorf("function %q not found", name)
	}
	result, err := v.machine.CallNoArgs(fn, args...)
	if err != nil {
		return ReturnValue{}, err
	}
	return ConvertValue(result), nil
}

// RunFile reads, compiles, and interprets path, returning a process exit
// code (0 success, 65 compile error, 70 runtime error, 1 I/O error)
// alongside any error for the caller to report.
func (v *VM) RunFile(path string) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return ExitIOError, err
	}
	v.machine.SetBaseDir(filepath.Dir(path))

	fn, err := v.Compile(string(src), path)
	if err != nil {
		return ExitCompileError, err
	}
	if _, err := v.Interpret(fn); err != nil {
		return ExitRuntimeError, err
	}
	return ExitSuccess, nil
}

// CompileError wraps the formatted `[line N] Error: message` diagnostics
// produced by a failed parse/compile.
type CompileError struct {
	Diagnostics string
}

func (e *CompileError) Error() string { return e.Diagnostics }
