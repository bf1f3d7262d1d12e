package modules

import (
	"math"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

func init() {
	register("std.math", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.math", map[string]vm.NativeFn{
			"sqrt":  mathUnary(math.Sqrt),
			"abs":   mathUnary(math.Abs),
			"floor": mathUnary(math.Floor),
			"ceil":  mathUnary(math.Ceil),
			"round": mathUnary(math.Round),
			"pow":   mathPow,
			"min":   mathMin,
			"max":   mathMax,
		}), nil
	})
}

// mathUnary adapts a float64->float64 stdlib function to NativeFn, for the
// single-argument math.* builtins (sqrt, abs, floor, ceil, round).
func mathUnary(f func(float64) float64) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 || !args[0].IsNumber() {
			return vm.Nil(), state.RuntimeError("expected one number argument")
		}
		return vm.NumberVal(f(args[0].AsNumber())), nil
	}
}

func mathPow(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
		return vm.Nil(), state.RuntimeError("pow: expected two number arguments")
	}
	return vm.NumberVal(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
}

func mathMin(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) == 0 {
		return vm.Nil(), state.RuntimeError("min: expected at least one argument")
	}
	best := args[0].AsNumber()
	for _, a := range args[1:] {
		if a.AsNumber() < best {
			best = a.AsNumber()
		}
	}
	return vm.NumberVal(best), nil
}

func mathMax(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) == 0 {
		return vm.Nil(), state.RuntimeError("max: expected at least one argument")
	}
	best := args[0].AsNumber()
	for _, a := range args[1:] {
		if a.AsNumber() > best {
			best = a.AsNumber()
		}
	}
	return vm.NumberVal(best), nil
}
