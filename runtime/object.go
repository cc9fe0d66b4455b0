package runtime

import (
	"fmt"
	"strings"
)

// ObjKind tags every heap object kind of spec.md 3.2.
type ObjKind uint8

const (
	ObjKindString ObjKind = iota
	ObjKindFunction
	ObjKindClosure
	ObjKindUpvalue
	ObjKindClass
	ObjKindInstance
	ObjKindBoundMethod
	ObjKindNativeClass
	ObjKindNativeFn
	ObjKindList
)

// Obj is implemented by every heap object. head() gives the GC and
// allocator access to the shared { kind, marked, next } fields of
// spec.md 3.2 without every call site needing a type switch.
type Obj interface {
	kind() ObjKind
	String() string
	head() *objHeader
}

// objHeader is embedded by every concrete Obj. next threads the object
// into the VM's single intrusive allocation list (spec.md 3.2
// invariant: every heap object is reachable from exactly one next
// chain).
type objHeader struct {
	objKind ObjKind
	marked  bool
	next    Obj
}

func (h *objHeader) kind() ObjKind  { return h.objKind }
func (h *objHeader) head() *objHeader { return h }

// ---- String ----

type ObjString struct {
	objHeader
	Chars string
	Hash  uint32
}

func (s *ObjString) String() string { return s.Chars }

// hashString computes 32-bit FNV-1a per spec.md 4.2.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// ---- Function ----

type ObjFunction struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString // nil for the top-level script
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// ---- Closure ----

type ObjClosure struct {
	objHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) String() string { return c.Function.String() }

// ---- Upvalue ----

// ObjUpvalue is Open while Location points into a live VM stack slot,
// and Closed once RETURN/CLOSE_UPVALUE hoists the value onto the heap
// (spec.md 3.2, 4.5). The VM's stack array has fixed capacity (see
// vm.go) so this pointer never dangles across a stack append.
type ObjUpvalue struct {
	objHeader
	Location *Value
	Slot     int // stack index Location pointed at while open; meaningless once closed
	Closed   Value
	Next     *ObjUpvalue // intrusive open-upvalue list, sorted by decreasing slot
}

func (u *ObjUpvalue) String() string { return "upvalue" }

func (u *ObjUpvalue) IsOpen() bool { return u.Location != nil }

func (u *ObjUpvalue) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

func (u *ObjUpvalue) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

func (u *ObjUpvalue) close() {
	u.Closed = *u.Location
	u.Location = nil
}

// ---- Class ----

type ObjClass struct {
	objHeader
	Name    *ObjString
	Methods *Table // name -> Value(Closure)
}

func (c *ObjClass) String() string { return c.Name.Chars }

// ---- Instance ----

type ObjInstance struct {
	objHeader
	Class  *ObjClass
	Fields *Table // name -> Value
}

func (i *ObjInstance) String() string { return fmt.Sprintf("%s instance", i.Class.Name.Chars) }

// ---- BoundMethod ----

type ObjBoundMethod struct {
	objHeader
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }

// ---- NativeClass ----

// ObjNativeClass hosts native modules (Assert, IO, List) behind the
// same method-dispatch protocol as a user-defined ObjClass, per
// spec.md 4.9 / the native-function ABI of 6.3.
type ObjNativeClass struct {
	objHeader
	Name    *ObjString
	Methods *Table // name -> Value(NativeFn)
}

func (n *ObjNativeClass) String() string { return n.Name.Chars }

// ---- NativeFn ----

// NativeFnPtr is the Go-level shape of the native-function ABI (spec.md
// 6.3): it reads args[0:argc] and returns a Value, calling
// vm.RuntimeError itself to signal failure (returning NilVal() in that
// case, never panicking across the VM boundary).
type NativeFnPtr func(vm *VM, argc int, args []Value) Value

type ObjNativeFn struct {
	objHeader
	Name string
	Fn   NativeFnPtr
}

func (n *ObjNativeFn) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// ---- List ----

type ObjList struct {
	objHeader
	Elements []Value
}

func (l *ObjList) String() string {
	parts := make([]string, len(l.Elements))
	for i, v := range l.Elements {
		if v.IsObjKind(ObjKindString) {
			parts[i] = "'" + v.String() + "'"
		} else {
			parts[i] = v.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
