package embed

import "github.com/aiscriptdev/aiscript/internal/vm"

// ReturnKind identifies which variant of ReturnValue is populated.
type ReturnKind int

const (
	ReturnNil ReturnKind = iota
	ReturnNumber
	ReturnBoolean
	ReturnString
	ReturnObject
)

// ReturnValue is the host-facing conversion of a script-level Value: a
// plain Go sum a caller can switch on without importing internal/vm.
// Number/Boolean/String carry their Go-native counterpart directly;
// Object walks an object literal's or a class instance's fields into a
// map, converting each field recursively so nested objects convert too.
type ReturnValue struct {
	Kind    ReturnKind
	Number  float64
	Boolean bool
	String  string
	Object  map[string]any
}

// ConvertValue converts a script Value into a ReturnValue. Class instances
// and object literals both convert via their Fields map; any other
// reference type (array, closure, module, ...) that isn't one of Number,
// Boolean, String, Object, or Nil converts to its display string.
func ConvertValue(v vm.Value) ReturnValue {
	switch v.Type {
	case vm.VNil:
		return ReturnValue{Kind: ReturnNil}
	case vm.VBool:
		return ReturnValue{Kind: ReturnBoolean, Boolean: v.AsBool()}
	case vm.VNumber:
		return ReturnValue{Kind: ReturnNumber, Number: v.AsNumber()}
	case vm.VString:
		return ReturnValue{Kind: ReturnString, String: v.AsString().Chars}
	case vm.VObject:
		return ReturnValue{Kind: ReturnObject, Object: fieldsToMap(v.AsObject().Fields)}
	case vm.VInstance:
		return ReturnValue{Kind: ReturnObject, Object: fieldsToMap(v.AsInstance().Fields)}
	default:
		return ReturnValue{Kind: ReturnString, String: v.Inspect()}
	}
}

func fieldsToMap(fields map[string]vm.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = toJSONAny(ConvertValue(v))
	}
	return out
}

// toJSONAny unwraps a ReturnValue into the bare Go value its Kind carries,
// so a nested Object field's map[string]any holds plain JSON-shaped data
// (float64/bool/string/map/nil) instead of another ReturnValue wrapper.
func toJSONAny(rv ReturnValue) any {
	switch rv.Kind {
	case ReturnNumber:
		return rv.Number
	case ReturnBoolean:
		return rv.Boolean
	case ReturnString:
		return rv.String
	case ReturnObject:
		return rv.Object
	default:
		return nil
	}
}
