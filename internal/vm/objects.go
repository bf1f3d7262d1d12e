package vm

import "github.com/aiscriptdev/aiscript/internal/gc"

// Object is the interface every AIScript heap object satisfies; it is an
// alias for gc.Object so this package's call sites don't need to import gc
// directly for every function signature.
type Object = gc.Object

// markValue reports v's held Object (if any) to mark, used by every
// Trace implementation below.
func markValue(mark func(gc.Object), v Value) {
	if v.Obj != nil {
		mark(v.Obj)
	}
}

// ObjString is an immutable byte string. Interned strings are
// pool-deduplicated (see VM.strings and intern in vm.go);
// dynamic strings hold arbitrary runtime-built text such as I/O results.
type ObjString struct {
	gc.Header
	Chars    string
	Interned bool
}

func (s *ObjString) GCHeader() *gc.Header       { return &s.Header }
func (s *ObjString) Trace(mark func(gc.Object)) {}

// ObjArray is an ordered, amortized-growth sequence of Value.
type ObjArray struct {
	gc.Header
	Elements []Value
}

func (a *ObjArray) GCHeader() *gc.Header { return &a.Header }

func (a *ObjArray) Trace(mark func(gc.Object)) {
	for _, e := range a.Elements {
		markValue(mark, e)
	}
}

// ObjObject is a mapping from field name to Value, with Keys retaining
// insertion order for stable printing (the spec treats order as
// irrelevant for equality/iteration, but deterministic output is a
// reasonable implementation choice).
type ObjObject struct {
	gc.Header
	Fields map[string]Value
	Keys   []string
}

func NewObjObject() *ObjObject {
	return &ObjObject{Fields: make(map[string]Value)}
}

func (o *ObjObject) Set(key string, v Value) {
	if _, exists := o.Fields[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Fields[key] = v
}

func (o *ObjObject) GCHeader() *gc.Header { return &o.Header }

func (o *ObjObject) Trace(mark func(gc.Object)) {
	for _, v := range o.Fields {
		markValue(mark, v)
	}
}

// ObjClass is {name, methods}; no declared fields at the class level
// (instance fields are assigned at runtime). Declared-field
// metadata used for object-literal validation lives in the resolver, not
// on the runtime class object.
type ObjClass struct {
	gc.Header
	Name    string
	Methods map[string]Value // name -> Closure | NativeFn
	Super   *ObjClass
}

func NewObjClass(name string) *ObjClass {
	return &ObjClass{Name: name, Methods: make(map[string]Value)}
}

// Method resolves a method by walking the superclass chain: it resolves
// either to a method defined in C, or (if absent) recursively in C's
// superclass chain.
func (c *ObjClass) Method(name string) (Value, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return Value{}, false
}

func (c *ObjClass) GCHeader() *gc.Header { return &c.Header }

func (c *ObjClass) Trace(mark func(gc.Object)) {
	for _, m := range c.Methods {
		markValue(mark, m)
	}
	if c.Super != nil {
		mark(c.Super)
	}
}

// ObjInstance is {class, fields}.
type ObjInstance struct {
	gc.Header
	Class  *ObjClass
	Fields map[string]Value
}

func NewObjInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: make(map[string]Value)}
}

func (i *ObjInstance) GCHeader() *gc.Header { return &i.Header }

func (i *ObjInstance) Trace(mark func(gc.Object)) {
	mark(i.Class)
	for _, v := range i.Fields {
		markValue(mark, v)
	}
}

// UpvalueDesc is the parse-time specification of what a nested closure
// captures: a slot index and whether it refers to the enclosing function's
// local frame (true) or one of the enclosing closure's own upvalues
// (false).
type UpvalueDesc struct {
	Index   int
	IsLocal bool
}

// ObjFunction is {name, arity, max_arity, param_names, default-value
// constant indices, chunk, upvalue_descriptors}.
type ObjFunction struct {
	gc.Header
	Name         string
	Arity        int
	MaxArity     int
	ParamNames   []string
	DefaultConst []int // -1 when the parameter has no default
	Chunk        *Chunk
	UpvalueDescs []UpvalueDesc
	Doc          string
}

func (f *ObjFunction) GCHeader() *gc.Header { return &f.Header }

func (f *ObjFunction) Trace(mark func(gc.Object)) {
	for _, c := range f.Chunk.Constants {
		markValue(mark, c)
	}
}

// ObjUpvalue is a runtime cell referencing a captured variable: open while
// it aliases a stack slot, closed once the slot's frame has ended.
type ObjUpvalue struct {
	gc.Header
	Location   *Value // points into the VM stack while open
	Closed     Value
	IsClosed   bool
	StackIndex int
	Next       *ObjUpvalue // open-upvalue list, sorted by descending StackIndex
}

func (u *ObjUpvalue) Get() Value {
	if u.IsClosed {
		return u.Closed
	}
	return *u.Location
}

func (u *ObjUpvalue) Set(v Value) {
	if u.IsClosed {
		u.Closed = v
		return
	}
	*u.Location = v
}

func (u *ObjUpvalue) GCHeader() *gc.Header { return &u.Header }

func (u *ObjUpvalue) Trace(mark func(gc.Object)) {
	if u.IsClosed {
		markValue(mark, u.Closed)
	} else if u.Location != nil {
		markValue(mark, *u.Location)
	}
}

// ObjClosure is a function plus the array of upvalue cells it captured.
type ObjClosure struct {
	gc.Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) GCHeader() *gc.Header { return &c.Header }

func (c *ObjClosure) Trace(mark func(gc.Object)) {
	mark(c.Function)
	for _, u := range c.Upvalues {
		mark(u)
	}
}

// ObjBoundMethod is {receiver, closure}.
type ObjBoundMethod struct {
	gc.Header
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) GCHeader() *gc.Header { return &b.Header }

func (b *ObjBoundMethod) Trace(mark func(gc.Object)) {
	markValue(mark, b.Receiver)
	mark(b.Method)
}

// NativeFn is the signature every builtin and host-bound function
// implements.
type NativeFn func(vm *VM, args []Value) (Value, error)

// ObjNative wraps a Go-implemented builtin or host-bound function.
type ObjNative struct {
	gc.Header
	Name string
	Fn   NativeFn
}

func (n *ObjNative) GCHeader() *gc.Header       { return &n.Header }
func (n *ObjNative) Trace(mark func(gc.Object)) {}

// ObjModule is a script or native module: {name, path, exports, globals}
// for script modules, {name, exports} for native ones (IsNative true,
// Globals nil).
type ObjModule struct {
	gc.Header
	Name     string
	Path     string
	IsNative bool
	Exports  map[string]Value
	Globals  map[string]Value
}

func NewObjModule(name string, isNative bool) *ObjModule {
	m := &ObjModule{Name: name, IsNative: isNative, Exports: make(map[string]Value)}
	if !isNative {
		m.Globals = make(map[string]Value)
	}
	return m
}

func (m *ObjModule) GCHeader() *gc.Header { return &m.Header }

func (m *ObjModule) Trace(mark func(gc.Object)) {
	for _, v := range m.Exports {
		markValue(mark, v)
	}
	for _, v := range m.Globals {
		markValue(mark, v)
	}
}

// ObjAgent models an `agent` declaration: a model name, a tools list, and a
// run closure. Host-side LLM dispatch is out of core scope; the
// declaration and its field/method plumbing are fully implemented.
type ObjAgent struct {
	gc.Header
	Name   string
	Model  string
	Tools  []Value
	Run    *ObjClosure
	Fields map[string]Value
}

func (a *ObjAgent) GCHeader() *gc.Header { return &a.Header }

func (a *ObjAgent) Trace(mark func(gc.Object)) {
	for _, t := range a.Tools {
		markValue(mark, t)
	}
	if a.Run != nil {
		mark(a.Run)
	}
	for _, v := range a.Fields {
		markValue(mark, v)
	}
}
