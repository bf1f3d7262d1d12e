package modules

import (
	"database/sql"

	"github.com/aiscriptdev/aiscript/internal/vm"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// std.db.pg wraps jackc/pgx/v5's database/sql driver behind query/exec
// builtins, mirroring std.db.sqlite's handle-table shape, and backs the
// embedding API's pg_conn constructor argument.
func init() {
	register("std.db.pg", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.db.pg", map[string]vm.NativeFn{
			"open":  pgOpen,
			"query": pgQuery,
			"exec":  pgExec,
			"close": pgClose,
		}), nil
	})
}

var pgHandles = map[int]*sql.DB{}
var pgNextHandle = 1

// RegisterPgConn installs an already-open *sql.DB as a std.db.pg handle and
// returns the handle id, for hosts that hand the embedding API a live
// connection instead of a DSN for std.db.pg.open to dial itself.
func RegisterPgConn(db *sql.DB) float64 {
	id := pgNextHandle
	pgNextHandle++
	pgHandles[id] = db
	return float64(id)
}

func pgOpen(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.pg.open: expected a DSN string")
	}
	db, err := sql.Open("pgx", args[0].AsString().Chars)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.open: %s", err)
	}
	if err := db.Ping(); err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.open: %s", err)
	}
	id := pgNextHandle
	pgNextHandle++
	pgHandles[id] = db
	return vm.NumberVal(float64(id)), nil
}

func pgHandle(state *vm.VM, v vm.Value) (*sql.DB, error) {
	if !v.IsNumber() {
		return nil, state.RuntimeError("expected a db.pg handle")
	}
	db, ok := pgHandles[int(v.AsNumber())]
	if !ok {
		return nil, state.RuntimeError("invalid or closed db.pg handle")
	}
	return db, nil
}

func pgQuery(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) < 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.pg.query: expected (handle, sql, ...args)")
	}
	db, err := pgHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	params := make([]any, len(args)-2)
	for i, a := range args[2:] {
		params[i] = valueToAny(a)
	}
	rows, err := db.Query(args[1].AsString().Chars, params...)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.query: %s", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.query: %s", err)
	}

	results := make([]vm.Value, 0)
	for rows.Next() {
		scanTargets := make([]any, len(cols))
		scanValues := make([]any, len(cols))
		for i := range scanTargets {
			scanTargets[i] = &scanValues[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return vm.Nil(), state.RuntimeError("db.pg.query: %s", err)
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

func pgExec(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) < 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.pg.exec: expected (handle, sql, ...args)")
	}
	db, err := pgHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	params := make([]any, len(args)-2)
	for i, a := range args[2:] {
		params[i] = valueToAny(a)
	}
	result, err := db.Exec(args[1].AsString().Chars, params...)
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.exec: %s", err)
	}
	affected, _ := result.RowsAffected()
	return vm.NumberVal(float64(affected)), nil
}

func pgClose(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Nil(), state.RuntimeError("db.pg.close: expected a handle")
	}
	db, err := pgHandle(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	delete(pgHandles, int(args[0].AsNumber()))
	if err := db.Close(); err != nil {
		return vm.Nil(), state.RuntimeError("db.pg.close: %s", err)
	}
	return vm.Nil(), nil
}
