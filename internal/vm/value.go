package vm

import (
	"fmt"
	"math"
)

// ValueType identifies which variant of the tagged Value union is active.
type ValueType uint8

const (
	VNil ValueType = iota
	VBool
	VNumber
	VString // ObjString; Interned flag distinguishes pool-deduplicated strings from dynamic ones
	VArray
	VObject
	VClass
	VInstance
	VClosure
	VBoundMethod
	VNative
	VModule
	VAgent
)

// Value is a stack-allocated tagged union using a {Type, Num, Obj} split
// so numbers/booleans/nil never allocate: Num holds
// the float64 (or 0/1 for booleans), Obj holds a GC-managed heap object for
// every reference-typed variant.
type Value struct {
	Type ValueType
	Num  float64
	Obj  Object
}

func Nil() Value { return Value{Type: VNil} }

func BoolVal(b bool) Value {
	if b {
		return Value{Type: VBool, Num: 1}
	}
	return Value{Type: VBool, Num: 0}
}

func NumberVal(n float64) Value          { return Value{Type: VNumber, Num: n} }
func ObjVal(t ValueType, o Object) Value { return Value{Type: t, Obj: o} }

func (v Value) IsNil() bool  { return v.Type == VNil }
func (v Value) IsBool() bool { return v.Type == VBool }
func (v Value) AsBool() bool { return v.Num != 0 }
func (v Value) IsNumber() bool { return v.Type == VNumber }
func (v Value) AsNumber() float64 { return v.Num }

// Truthy implements falsy-value semantics: Nil and Boolean(false) are
// falsy, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Type {
	case VNil:
		return false
	case VBool:
		return v.Num != 0
	default:
		return true
	}
}

func (v Value) AsString() *ObjString     { return v.Obj.(*ObjString) }
func (v Value) AsArray() *ObjArray       { return v.Obj.(*ObjArray) }
func (v Value) AsObject() *ObjObject     { return v.Obj.(*ObjObject) }
func (v Value) AsClass() *ObjClass       { return v.Obj.(*ObjClass) }
func (v Value) AsInstance() *ObjInstance { return v.Obj.(*ObjInstance) }
func (v Value) AsClosure() *ObjClosure   { return v.Obj.(*ObjClosure) }
func (v Value) AsBoundMethod() *ObjBoundMethod { return v.Obj.(*ObjBoundMethod) }
func (v Value) AsNative() *ObjNative     { return v.Obj.(*ObjNative) }
func (v Value) AsModule() *ObjModule     { return v.Obj.(*ObjModule) }
func (v Value) AsAgent() *ObjAgent       { return v.Obj.(*ObjAgent) }

func (v Value) IsCallable() bool {
	return v.Type == VClosure || v.Type == VBoundMethod || v.Type == VNative || v.Type == VClass
}

// Equals implements Value equality: structural for numbers/booleans/
// strings, reference equality otherwise.
func (v Value) Equals(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case VNil:
		return true
	case VBool, VNumber:
		return v.Num == o.Num
	case VString:
		return v.AsString().Chars == o.AsString().Chars
	default:
		return v.Obj == o.Obj
	}
}

func (v Value) TypeName() string {
	switch v.Type {
	case VNil:
		return "Nil"
	case VBool:
		return "Boolean"
	case VNumber:
		return "Number"
	case VString:
		return "String"
	case VArray:
		return "Array"
	case VObject:
		return "Object"
	case VClass:
		return "Class"
	case VInstance:
		return "Instance"
	case VClosure:
		return "Function"
	case VBoundMethod:
		return "Method"
	case VNative:
		return "NativeFunction"
	case VModule:
		return "Module"
	case VAgent:
		return "Agent"
	default:
		return "Unknown"
	}
}

// Inspect renders a value the way `str()` and `print` do.
func (v Value) Inspect() string {
	switch v.Type {
	case VNil:
		return "nil"
	case VBool:
		return fmt.Sprintf("%t", v.AsBool())
	case VNumber:
		n := v.Num
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case VString:
		return v.AsString().Chars
	case VArray:
		arr := v.AsArray()
		s := "["
		for i, e := range arr.Elements {
			if i > 0 {
				s += ", "
			}
			s += e.Inspect()
		}
		return s + "]"
	case VObject:
		obj := v.AsObject()
		s := "{"
		for i, k := range obj.Keys {
			if i > 0 {
				s += ", "
			}
			s += k + ": " + obj.Fields[k].Inspect()
		}
		return s + "}"
	case VClass:
		return "<class " + v.AsClass().Name + ">"
	case VInstance:
		return "<instance of " + v.AsInstance().Class.Name + ">"
	case VClosure:
		return "<fn " + v.AsClosure().Function.Name + ">"
	case VBoundMethod:
		return "<bound method " + v.AsBoundMethod().Method.Function.Name + ">"
	case VNative:
		return "<native fn " + v.AsNative().Name + ">"
	case VModule:
		return "<module " + v.AsModule().Name + ">"
	case VAgent:
		return "<agent " + v.AsAgent().Name + ">"
	default:
		return "<?>"
	}
}
