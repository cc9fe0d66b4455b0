package runtime

import "fmt"

// ValueKind discriminates the Value union of spec.md 3.1.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObj
)

// Value is a tagged union: exactly one of the payload fields is live,
// selected by Kind. Kept as a plain struct rather than an interface so
// stack slots (spec.md 4.5) are fixed-size and can be addressed by
// pointer for open upvalues.
type Value struct {
	Kind   ValueKind
	number float64
	obj    Obj
}

func NilVal() Value               { return Value{Kind: ValNil} }
func BoolVal(b bool) Value        { return Value{Kind: ValBool, number: boolToF64(b)} }
func NumberVal(n float64) Value   { return Value{Kind: ValNumber, number: n} }
func ObjVal(o Obj) Value          { return Value{Kind: ValObj, obj: o} }

func boolToF64(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) IsNil() bool    { return v.Kind == ValNil }
func (v Value) IsBool() bool   { return v.Kind == ValBool }
func (v Value) IsNumber() bool { return v.Kind == ValNumber }
func (v Value) IsObj() bool    { return v.Kind == ValObj }

func (v Value) AsBool() bool     { return v.number != 0 }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObj() Obj        { return v.obj }

func (v Value) ObjKind() (ObjKind, bool) {
	if v.Kind != ValObj || v.obj == nil {
		return 0, false
	}
	return v.obj.kind(), true
}

func (v Value) IsObjKind(k ObjKind) bool {
	kind, ok := v.ObjKind()
	return ok && kind == k
}

// IsFalsey holds for Nil and Bool(false) only, per spec.md 3.1.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements the structural-for-primitives, identity-for-Obj
// equality rule of spec.md 3.1. String equality is reference identity
// because every String value in the runtime is interned (see
// vm.go:CopyString/TakeString).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValNil:
		return true
	case ValBool:
		return v.AsBool() == other.AsBool()
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	case ValObj:
		return v.obj == other.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "null"
	case ValBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.AsNumber())
	case ValObj:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) && n < 1e15 && n > -1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

func TypeName(v Value) string {
	switch v.Kind {
	case ValNil:
		return "null"
	case ValBool:
		return "bool"
	case ValNumber:
		return "number"
	case ValObj:
		switch v.obj.kind() {
		case ObjKindString:
			return "string"
		case ObjKindFunction, ObjKindClosure, ObjKindNativeFn, ObjKindBoundMethod:
			return "function"
		case ObjKindClass, ObjKindNativeClass:
			return "class"
		case ObjKindInstance:
			return "instance"
		case ObjKindList:
			return "list"
		case ObjKindUpvalue:
			return "upvalue"
		}
	}
	return "unknown"
}
