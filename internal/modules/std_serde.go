package modules

import (
	"encoding/json"

	"github.com/aiscriptdev/aiscript/internal/vm"
	"gopkg.in/yaml.v3"
)

// std.serde provides to_str/from_str JSON round-tripping plus
// to_yaml/from_yaml via gopkg.in/yaml.v3.
func init() {
	register("std.serde", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.serde", map[string]vm.NativeFn{
			"to_str":     serdeToJSON,
			"from_str":   serdeFromJSON,
			"to_yaml":    serdeToYAML,
			"from_yaml":  serdeFromYAML,
		}), nil
	})
}

func serdeToJSON(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Nil(), state.RuntimeError("serde.to_str: expected one argument")
	}
	b, err := json.Marshal(valueToAny(args[0]))
	if err != nil {
		return vm.Nil(), state.RuntimeError("serde.to_str: %s", err)
	}
	return vm.ObjVal(vm.VString, state.Intern(string(b))), nil
}

func serdeFromJSON(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("serde.from_str: expected a JSON string")
	}
	var decoded any
	if err := json.Unmarshal([]byte(args[0].AsString().Chars), &decoded); err != nil {
		return vm.Nil(), state.RuntimeError("serde.from_str: %s", err)
	}
	return anyToValue(state, decoded), nil
}

func serdeToYAML(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Nil(), state.RuntimeError("serde.to_yaml: expected one argument")
	}
	b, err := yaml.Marshal(valueToAny(args[0]))
	if err != nil {
		return vm.Nil(), state.RuntimeError("serde.to_yaml: %s", err)
	}
	return vm.ObjVal(vm.VString, state.Intern(string(b))), nil
}

func serdeFromYAML(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("serde.from_yaml: expected a YAML string")
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(args[0].AsString().Chars), &decoded); err != nil {
		return vm.Nil(), state.RuntimeError("serde.from_yaml: %s", err)
	}
	return anyToValue(state, normalizeYAML(decoded)), nil
}

// valueToAny converts an AIScript Value into a plain Go value suitable for
// json.Marshal/yaml.Marshal.
func valueToAny(v vm.Value) any {
	switch v.Type {
	case vm.VNil:
		return nil
	case vm.VBool:
		return v.AsBool()
	case vm.VNumber:
		return v.AsNumber()
	case vm.VString:
		return v.AsString().Chars
	case vm.VArray:
		elems := v.AsArray().Elements
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = valueToAny(e)
		}
		return out
	case vm.VObject:
		obj := v.AsObject()
		out := make(map[string]any, len(obj.Fields))
		for k, val := range obj.Fields {
			out[k] = valueToAny(val)
		}
		return out
	default:
		return v.Inspect()
	}
}

// anyToValue converts a decoded JSON/YAML value back into an AIScript
// Value, allocating arrays/objects on state's arena.
func anyToValue(state *vm.VM, decoded any) vm.Value {
	switch d := decoded.(type) {
	case nil:
		return vm.Nil()
	case bool:
		return vm.BoolVal(d)
	case float64:
		return vm.NumberVal(d)
	case int:
		return vm.NumberVal(float64(d))
	case string:
		return vm.ObjVal(vm.VString, state.Intern(d))
	case []any:
		elems := make([]vm.Value, len(d))
		for i, e := range d {
			elems[i] = anyToValue(state, e)
		}
		arr := &vm.ObjArray{Elements: elems}
		state.Allocate(arr)
		return vm.ObjVal(vm.VArray, arr)
	case map[string]any:
		obj := vm.NewObjObject()
		state.Allocate(obj)
		for k, val := range d {
			obj.Set(k, anyToValue(state, val))
		}
		return vm.ObjVal(vm.VObject, obj)
	default:
		return vm.Nil()
	}
}

// normalizeYAML recursively converts yaml.v3's map[any]any decode result
// (and nested instances of it) into map[string]any so anyToValue's single
// map case handles both JSON- and YAML-sourced documents.
func normalizeYAML(v any) any {
	switch d := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, val := range d {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(d))
		for k, val := range d {
			out[keyToString(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(d))
		for i, e := range d {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return d
	}
}

func keyToString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return ""
}
