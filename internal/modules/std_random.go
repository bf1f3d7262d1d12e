package modules

import (
	"math/rand"

	"github.com/aiscriptdev/aiscript/internal/vm"
)

// std.random provides int/float/choice/shuffle. Each module instance owns
// its own *rand.Rand so two embedded VMs don't share PRNG state.
func init() {
	register("std.random", func(v *vm.VM) (*vm.ObjModule, error) {
		rng := rand.New(rand.NewSource(0x5151))
		return newExportModule(v, "std.random", map[string]vm.NativeFn{
			"int":     randomInt(rng),
			"float":   randomFloat(rng),
			"choice":  randomChoice(rng),
			"shuffle": randomShuffle(rng),
		}), nil
	})
}

func randomInt(rng *rand.Rand) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return vm.Nil(), state.RuntimeError("random.int: expected (min, max)")
		}
		lo, hi := int(args[0].AsNumber()), int(args[1].AsNumber())
		if hi < lo {
			return vm.Nil(), state.RuntimeError("random.int: max must be >= min")
		}
		return vm.NumberVal(float64(lo + rng.Intn(hi-lo+1))), nil
	}
}

func randomFloat(rng *rand.Rand) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		return vm.NumberVal(rng.Float64()), nil
	}
}

func randomChoice(rng *rand.Rand) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 || args[0].Type != vm.VArray {
			return vm.Nil(), state.RuntimeError("random.choice: expected an array")
		}
		elems := args[0].AsArray().Elements
		if len(elems) == 0 {
			return vm.Nil(), state.RuntimeError("random.choice: array is empty")
		}
		return elems[rng.Intn(len(elems))], nil
	}
}

func randomShuffle(rng *rand.Rand) vm.NativeFn {
	return func(state *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 || args[0].Type != vm.VArray {
			return vm.Nil(), state.RuntimeError("random.shuffle: expected an array")
		}
		src := args[0].AsArray().Elements
		out := make([]vm.Value, len(src))
		copy(out, src)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		arr := &vm.ObjArray{Elements: out}
		state.Allocate(arr)
		return vm.ObjVal(vm.VArray, arr), nil
	}
}
