package embed

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/aiscriptdev/aiscript/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFileSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ai")
	require.NoError(t, os.WriteFile(path, []byte(`
		fn fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`), 0o644))

	v := New(dir)
	code, err := v.RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
}

func TestRunFileCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ai")
	require.NoError(t, os.WriteFile(path, []byte("let x = ;"), 0o644))

	v := New(dir)
	code, err := v.RunFile(path)
	require.Error(t, err)
	assert.Equal(t, ExitCompileError, code)
	assert.IsType(t, &CompileError{}, err)
}

func TestRunFileMissing(t *testing.T) {
	v := New(t.TempDir())
	code, err := v.RunFile("/no/such/file.ai")
	require.Error(t, err)
	assert.Equal(t, ExitIOError, code)
}

func TestEvalFunction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ai")
	require.NoError(t, os.WriteFile(path, []byte(`
		fn square(n) {
			return n * n;
		}
	`), 0o644))

	v := New(dir)
	_, err := v.RunFile(path)
	require.NoError(t, err)

	result, err := v.EvalFunction("square", vm.NumberVal(6))
	require.NoError(t, err)
	assert.Equal(t, ReturnNumber, result.Kind)
	assert.Equal(t, float64(36), result.Number)
}

func TestEvalFunctionConvertsObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ai")
	require.NoError(t, os.WriteFile(path, []byte(`
		fn point() {
			return {x: 1, y: 2};
		}
	`), 0o644))

	v := New(dir)
	_, err := v.RunFile(path)
	require.NoError(t, err)

	result, err := v.EvalFunction("point")
	require.NoError(t, err)
	assert.Equal(t, ReturnObject, result.Kind)
	assert.Equal(t, float64(1), result.Object["x"])
	assert.Equal(t, float64(2), result.Object["y"])
}

func TestInjectSSOInstance(t *testing.T) {
	dir := t.TempDir()
	v := New(dir)

	obj := vm.NewObjObject()
	provider := vm.ObjVal(vm.VObject, obj)
	v.InjectSSOInstance("sso_provider", provider)

	path := filepath.Join(dir, "main.ai")
	require.NoError(t, os.WriteFile(path, []byte(`
		fn has_sso() {
			return sso_provider;
		}
	`), 0o644))
	_, err := v.RunFile(path)
	require.NoError(t, err)

	result, err := v.EvalFunction("has_sso")
	require.NoError(t, err)
	assert.Equal(t, ReturnObject, result.Kind)
}

func TestNewWithSqliteConnOptionExposesGlobal(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("create table greeting (msg text)")
	require.NoError(t, err)
	_, err = db.Exec("insert into greeting (msg) values ('hi')")
	require.NoError(t, err)

	v := New(dir, &Options{SqliteConn: db})

	path := filepath.Join(dir, "main.ai")
	require.NoError(t, os.WriteFile(path, []byte(`
		let db = import("std.db.sqlite");
		fn read_msg() {
			let rows = db.query(sqlite_conn, "select msg from greeting");
			return rows[0].msg;
		}
	`), 0o644))
	_, err = v.RunFile(path)
	require.NoError(t, err)

	result, err := v.EvalFunction("read_msg")
	require.NoError(t, err)
	assert.Equal(t, ReturnString, result.Kind)
	assert.Equal(t, "hi", result.String)
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	v := New(t.TempDir())
	err := v.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Empty(t, v.Config.DB.Postgres)
}
