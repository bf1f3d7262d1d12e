package modules

import (
	"strings"
	"time"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

// std.time exposes the clock: now (epoch millis), format (strftime-style
// layout over a millisecond timestamp), and sleep.
func init() {
	register("std.time", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.time", map[string]vm.NativeFn{
			"now":    timeNow,
			"format": timeFormat,
			"sleep":  timeSleep,
		}), nil
	})
}

func timeNow(state *vm.VM, args []vm.Value) (vm.Value, error) {
	return vm.NumberVal(float64(time.Now().UnixMilli())), nil
}

func timeFormat(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || !args[0].IsNumber() || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("time.format: expected (millis, layout)")
	}
	millis := int64(args[0].AsNumber())
	t := time.UnixMilli(millis).UTC()
	layout := goLayout(args[1].AsString().Chars)
	return vm.ObjVal(vm.VString, state.Intern(t.Format(layout))), nil
}

func timeSleep(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || !args[0].IsNumber() {
		return vm.Nil(), state.RuntimeError("time.sleep: expected a number of milliseconds")
	}
	time.Sleep(time.Duration(args[0].AsNumber()) * time.Millisecond)
	return vm.Nil(), nil
}

// goLayout maps a small set of strftime-style directives to Go's
// reference-time layout, covering the directives scripts commonly use.
func goLayout(pattern string) string {
	r := strings.NewReplacer(
		"%Y", "2006", "%m", "01", "%d", "02",
		"%H", "15", "%M", "04", "%S", "05",
	)
	return r.Replace(pattern)
}
