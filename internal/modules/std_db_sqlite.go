package modules

import (
	"database/sql"

	"github.com/aiscriptdev/aiscript/internal/vm"
	_ "modernc.org/sqlite"
)

// std.db.sqlite wraps modernc.org/sqlite's pure-Go driver behind query/exec
// builtins, and backs the embedding API's sqlite_conn constructor argument.
func init() {
	register("std.db.sqlite", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.db.sqlite", map[string]vm.NativeFn{
			"open":  sqliteOpen,
			"query": sqliteQuery,
			"exec":  sqliteExec,
			"close": sqliteClose,
		}), nil
	})
}

// sqliteHandles maps an opaque handle id (returned to script as a Number)
// to an open *sql.DB, since AIScript's Value model has no native "opaque
// Go pointer" variant — mirrors the bound-native-closure pattern vm_ops.go
// uses for method binding, but for host resources instead of methods.
var sqliteHandles = map[int]*sql.DB{}
var sqliteNextHandle = 1

// RegisterSQLiteConn installs an already-open *sql.DB as a std.db.sqlite
// handle and returns the handle id, for hosts that hand the embedding API
// a live connection instead of a DSN for std.db.sqlite.open to dial itself.
func RegisterSQLiteConn(db *sql.DB) float64 {
	id := sqliteNextHandle
	sqliteNextHandle++
	sqliteHandles[id] = db
	return float64(id)
}

func sqliteOpen(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.sqlite.open: expected a DSN string")
	}
	db, err := sql.Open("sqlite", args[0].AsString().Chars)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.open: %s", err)
	}
	if err := db.Ping(); err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.open: %s", err)
	}
	id := sqliteNextHandle
	sqliteNextHandle++
	sqliteHandles[id] = db
	return vm.NumberVal(float64(id)), nil
}

func sqliteHandle(state *vm.VM, v vm.Value) (*sql.DB, error) {
	if !v.IsNumber() {
		return nil, state.RuntimeError("expected a db.sqlite handle")
	}
	db, ok := sqliteHandles[int(v.AsNumber())]
	if !ok {
		return nil, state.RuntimeError("invalid or closed db.sqlite handle")
	}
	return db, nil
}

func sqliteQuery(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) < 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.sqlite.query: expected (handle, sql, ...args)")
	}
	db, err := sqliteHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	params := make([]any, len(args)-2)
	for i, a := range args[2:] {
		params[i] = valueToAny(a)
	}
	rows, err := db.Query(args[1].AsString().Chars, params...)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.query: %s", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.query: %s", err)
	}

	results := make([]vm.Value, 0)
	for rows.Next() {
		scanTargets := make([]any, len(cols))
		scanValues := make([]any, len(cols))
		for i := range scanTargets {
			scanTargets[i] = &scanValues[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return vm.Nil(), state.RuntimeError("db.sqlite.query: %s", err)
		}
		obj := vm.NewObjObject()
		state.Allocate(obj)
		for i, col := range cols {
			obj.Set(col, anyToValue(state, scanValues[i]))
		}
		results = append(results, vm.ObjVal(vm.VObject, obj))
	}

	arr := &vm.ObjArray{Elements: results}
	state.Allocate(arr)
	return vm.ObjVal(vm.VArray, arr), nil
}

func sqliteExec(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) < 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.sqlite.exec: expected (handle, sql, ...args)")
	}
	db, err := sqliteHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	params := make([]any, len(args)-2)
	for i, a := range args[2:] {
		params[i] = valueToAny(a)
	}
	result, err := db.Exec(args[1].AsString().Chars, params...)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.exec: %s", err)
	}
	affected, _ := result.RowsAffected()
	return vm.NumberVal(float64(affected)), nil
}

func sqliteClose(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Nil(), state.RuntimeError("db.sqlite.close: expected a handle")
	}
	db, err := sqliteHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	delete(sqliteHandles, int(args[0].AsNumber()))
	if err := db.Close(); err != nil {
		return vm.Nil(), state.RuntimeError("db.sqlite.close: %s", err)
	}
	return vm.Nil(), nil
}
