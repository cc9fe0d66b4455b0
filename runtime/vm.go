package runtime

import (
	"fmt"
	"io"
	"os"
)

const (
	StackMax  = 16384
	FramesMax = 64
)

// CallFrame is one activation record: a Closure, an instruction
// pointer into its Chunk, and a base index into the value stack
// (spec.md 4.5).
type CallFrame struct {
	closure *ObjClosure
	ip      int
	slots   int
}

// VM is the explicit, threaded-through-every-primitive replacement for
// the source's process-wide singleton (spec.md 9, "Global mutable VM
// state").
type VM struct {
	stack    [StackMax]Value
	stackTop int

	frames     [FramesMax]CallFrame
	frameCount int

	openUpvalues *ObjUpvalue

	globals *Table
	strings *Table

	initString *ObjString

	objects        Obj
	bytesAllocated int64
	nextGC         int64
	StressGC       bool

	compilerRoots []*ObjFunction

	Stdout      io.Writer
	TraceWriter io.Writer

	nativeErrored bool
	lastError     *RuntimeError
}

// NewVM constructs a VM with fresh globals/intern tables. out defaults
// to os.Stdout if nil; it is the sink for the PRINT opcode. The IO
// native module writes to the writer passed to natives.RegisterIO
// (SPEC_FULL.md 4.9).
func NewVM(out io.Writer) *VM {
	if out == nil {
		out = os.Stdout
	}
	vm := &VM{
		globals: NewTable(),
		strings: NewTable(),
		nextGC:  gcMinNextGC,
		Stdout:  out,
	}
	vm.initString = vm.CopyString("init")
	return vm
}

// ---- value stack ----

type vmFatalError struct{ msg string }

func (vm *VM) push(v Value) {
	if vm.stackTop >= StackMax {
		panic(vmFatalError{"Stack overflow."})
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// ---- allocation entry points (spec.md 4.1, 4.2) ----

// registerObject is the sole point every heap allocation passes
// through: it triggers a collection if bytesAllocated would exceed
// nextGC, then links the object at the head of the VM's allocation
// list (spec.md 4.1's allocate()).
func (vm *VM) registerObject(o Obj) {
	size := approxSize(o)
	if vm.bytesAllocated+size > vm.nextGC || vm.StressGC {
		vm.collectGarbage()
	}
	vm.bytesAllocated += size
	h := o.head()
	h.next = vm.objects
	vm.objects = o
}

func (vm *VM) allocateString(s string, hash uint32) *ObjString {
	str := &ObjString{objHeader: objHeader{objKind: ObjKindString}, Chars: s, Hash: hash}
	vm.registerObject(str)
	// Canonical rooting discipline (spec.md 5): the intern table's own
	// growth cannot trigger a collection in this implementation (its
	// backing array is a plain Go slice, invisible to registerObject),
	// but the string is pushed anyway to preserve the source's
	// push/tableSet/pop shape (object.c:allocateString).
	vm.push(ObjVal(str))
	vm.strings.Set(str, NilVal())
	vm.pop()
	return str
}

// CopyString interns bytes, copying them if no equal string already
// exists (spec.md 4.2).
func (vm *VM) CopyString(s string) *ObjString {
	hash := hashString(s)
	if interned := vm.strings.FindString(s, hash); interned != nil {
		return interned
	}
	return vm.allocateString(s, hash)
}

// TakeString is CopyString's ownership-transferring twin (spec.md
// 4.2): in this GC-hosted-on-a-GC design there is no buffer to free on
// an intern hit, so the two are behaviorally identical, but callers
// that just built a fresh buffer (concatenation results) go through
// this name to keep the ABI's two entry points distinct.
func (vm *VM) TakeString(s string) *ObjString {
	return vm.CopyString(s)
}

func (vm *VM) NewFunction(name *ObjString, arity int) *ObjFunction {
	fn := &ObjFunction{objHeader: objHeader{objKind: ObjKindFunction}, Name: name, Arity: arity}
	vm.registerObject(fn)
	return fn
}

func (vm *VM) NewClosure(function *ObjFunction) *ObjClosure {
	closure := &ObjClosure{
		objHeader: objHeader{objKind: ObjKindClosure},
		Function:  function,
		Upvalues:  make([]*ObjUpvalue, function.UpvalueCount),
	}
	vm.registerObject(closure)
	return closure
}

func (vm *VM) NewClass(name *ObjString) *ObjClass {
	class := &ObjClass{objHeader: objHeader{objKind: ObjKindClass}, Name: name, Methods: NewTable()}
	vm.registerObject(class)
	return class
}

func (vm *VM) NewNativeClass(name *ObjString) *ObjNativeClass {
	class := &ObjNativeClass{objHeader: objHeader{objKind: ObjKindNativeClass}, Name: name, Methods: NewTable()}
	vm.registerObject(class)
	return class
}

func (vm *VM) NewInstance(class *ObjClass) *ObjInstance {
	inst := &ObjInstance{objHeader: objHeader{objKind: ObjKindInstance}, Class: class, Fields: NewTable()}
	vm.registerObject(inst)
	return inst
}

func (vm *VM) NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	bound := &ObjBoundMethod{objHeader: objHeader{objKind: ObjKindBoundMethod}, Receiver: receiver, Method: method}
	vm.registerObject(bound)
	return bound
}

func (vm *VM) NewNativeFn(name string, fn NativeFnPtr) *ObjNativeFn {
	native := &ObjNativeFn{objHeader: objHeader{objKind: ObjKindNativeFn}, Name: name, Fn: fn}
	vm.registerObject(native)
	return native
}

func (vm *VM) NewList(elements []Value) *ObjList {
	list := &ObjList{objHeader: objHeader{objKind: ObjKindList}, Elements: elements}
	vm.registerObject(list)
	return list
}

func (vm *VM) newUpvalueAt(slot int) *ObjUpvalue {
	uv := &ObjUpvalue{objHeader: objHeader{objKind: ObjKindUpvalue}, Location: &vm.stack[slot], Slot: slot}
	vm.registerObject(uv)
	return uv
}

// captureUpvalue returns the open upvalue for slot, sharing an
// existing one if a prior closure already captured it (spec.md 9,
// "Open-upvalue sharing") and keeping the list sorted by decreasing
// slot (spec.md 3.2 invariant).
func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}
	created := vm.newUpvalueAt(slot)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues hoists every open upvalue at or above stack index
// last onto the heap (spec.md 4.5, CLOSE_UPVALUE/RETURN).
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= last {
		uv := vm.openUpvalues
		uv.close()
		vm.openUpvalues = uv.Next
	}
}

// ---- compiler roots (spec.md 4.6, "the currently-compiling Function
// chain is a root so mid-compilation collections are safe") ----

func (vm *VM) PushCompilerRoot(fn *ObjFunction) {
	vm.compilerRoots = append(vm.compilerRoots, fn)
}

func (vm *VM) PopCompilerRoot() {
	vm.compilerRoots = vm.compilerRoots[:len(vm.compilerRoots)-1]
}

// ---- global/native registration (spec.md 5, canonical rooting
// example: "push name, allocate class, push class, define methods,
// store in globals, pop twice") ----

func (vm *VM) DefineGlobal(name string, value Value) {
	nameStr := vm.CopyString(name)
	vm.push(ObjVal(nameStr))
	vm.push(value)
	vm.globals.Set(nameStr, value)
	vm.pop()
	vm.pop()
}

func (vm *VM) DefineNativeFunction(name string, fn NativeFnPtr) {
	nameStr := vm.CopyString(name)
	vm.push(ObjVal(nameStr))
	native := vm.NewNativeFn(name, fn)
	vm.push(ObjVal(native))
	vm.globals.Set(nameStr, ObjVal(native))
	vm.pop()
	vm.pop()
}

// DefineNativeClass registers a static, instance-free native module
// (Assert, IO, List — SPEC_FULL.md 4.9) as a global bound to an
// ObjNativeClass whose methods dispatch through GET_PROPERTY/INVOKE
// exactly like a user class's methods, minus `this` binding.
func (vm *VM) DefineNativeClass(name string, methods map[string]NativeFnPtr) *ObjNativeClass {
	nameStr := vm.CopyString(name)
	vm.push(ObjVal(nameStr))
	class := vm.NewNativeClass(nameStr)
	vm.push(ObjVal(class))
	for methodName, fn := range methods {
		methodNameStr := vm.CopyString(methodName)
		vm.push(ObjVal(methodNameStr))
		native := vm.NewNativeFn(name+"."+methodName, fn)
		vm.push(ObjVal(native))
		class.Methods.Set(methodNameStr, ObjVal(native))
		vm.pop()
		vm.pop()
	}
	vm.globals.Set(nameStr, ObjVal(class))
	vm.pop()
	vm.pop()
	return class
}

// RuntimeError is the native-function ABI's error signal (spec.md
// 6.3): a native calls this and returns NilVal(); the VM notices
// nativeErrored and unwinds the call.
func (vm *VM) RuntimeError(format string, args ...any) Value {
	vm.runtimeError(format, args...)
	return NilVal()
}

func (vm *VM) runtimeError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		line := fn.Chunk.LineAt(f.ip - 1)
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", line, name))
	}
	vm.lastError = &RuntimeError{Message: msg, Trace: trace}
	vm.nativeErrored = true
	vm.resetStack()
}

// ---- calling convention (spec.md 4.5) ----

func (vm *VM) call(closure *ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

func (vm *VM) callValue(callee Value, argCount int) bool {
	if callee.IsObj() {
		switch obj := callee.AsObj().(type) {
		case *ObjClosure:
			return vm.call(obj, argCount)
		case *ObjBoundMethod:
			vm.stack[vm.stackTop-argCount-1] = obj.Receiver
			return vm.call(obj.Method, argCount)
		case *ObjClass:
			instance := vm.NewInstance(obj)
			vm.stack[vm.stackTop-argCount-1] = ObjVal(instance)
			if initializer, ok := obj.Methods.Get(vm.initString); ok {
				return vm.call(initializer.AsObj().(*ObjClosure), argCount)
			} else if argCount != 0 {
				vm.runtimeError("Expected 0 arguments but got %d.", argCount)
				return false
			}
			return true
		case *ObjNativeFn:
			return vm.callNative(obj, argCount)
		}
	}
	vm.runtimeError("Can only call functions and classes.")
	return false
}

func (vm *VM) callNative(native *ObjNativeFn, argCount int) bool {
	vm.nativeErrored = false
	base := vm.stackTop - argCount
	args := vm.stack[base:vm.stackTop]
	result := native.Fn(vm, argCount, args)
	if vm.nativeErrored {
		return false
	}
	vm.stackTop -= argCount + 1
	vm.push(result)
	return true
}

func (vm *VM) invoke(name *ObjString, argCount int) bool {
	receiver := vm.peek(argCount)
	if !receiver.IsObj() {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	switch o := receiver.AsObj().(type) {
	case *ObjInstance:
		if value, ok := o.Fields.Get(name); ok {
			vm.stack[vm.stackTop-argCount-1] = value
			return vm.callValue(value, argCount)
		}
		return vm.invokeFromClass(o.Class, name, argCount)
	case *ObjNativeClass:
		method, ok := o.Methods.Get(name)
		if !ok {
			vm.runtimeError("Undefined property '%s'.", name.Chars)
			return false
		}
		return vm.callValue(method, argCount)
	default:
		vm.runtimeError("Only instances have methods.")
		return false
	}
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method.AsObj().(*ObjClosure), argCount)
}

func (vm *VM) bindMethod(class *ObjClass, name *ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := vm.NewBoundMethod(vm.peek(0), method.AsObj().(*ObjClosure))
	vm.pop()
	vm.push(ObjVal(bound))
	return true
}

// ---- interpretation entry point ----

// Run wraps function in a Closure and executes it to completion,
// recovering from stack-overflow-style fatal conditions into a
// RuntimeError instead of aborting the process (SPEC_FULL.md 4.7 /
// spec.md 9's open question about not calling exit() from inside the
// runtime).
func (vm *VM) Run(function *ObjFunction) (result InterpretResult, rerr *RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(vmFatalError); ok {
				vm.runtimeError("%s", fe.msg)
				result = InterpretRuntimeError
				rerr = vm.lastError
				return
			}
			panic(r)
		}
	}()

	vm.push(ObjVal(function))
	closure := vm.NewClosure(function)
	vm.pop()
	vm.push(ObjVal(closure))
	if !vm.call(closure, 0) {
		return InterpretRuntimeError, vm.lastError
	}
	result = vm.run()
	if result == InterpretRuntimeError {
		rerr = vm.lastError
	}
	return result, rerr
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort(frame *CallFrame) int {
	hi := frame.closure.Function.Chunk.Code[frame.ip]
	lo := frame.closure.Function.Chunk.Code[frame.ip+1]
	frame.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant(frame *CallFrame) Value {
	return frame.closure.Function.Chunk.Constants[vm.readByte(frame)]
}

func (vm *VM) readString(frame *CallFrame) *ObjString {
	return vm.readConstant(frame).AsObj().(*ObjString)
}

func (vm *VM) traceStep(frame *CallFrame) {
	fmt.Fprint(vm.TraceWriter, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.TraceWriter, "[ %s ]", vm.stack[i].String())
	}
	fmt.Fprintln(vm.TraceWriter)
	line, _ := DisassembleInstruction(&frame.closure.Function.Chunk, frame.ip)
	fmt.Fprintln(vm.TraceWriter, line)
}

func (vm *VM) run() InterpretResult {
	frame := &vm.frames[vm.frameCount-1]

	for {
		if vm.TraceWriter != nil {
			vm.traceStep(frame)
		}

		instruction := OpCode(vm.readByte(frame))
		switch instruction {
		case OpConstant:
			vm.push(vm.readConstant(frame))

		case OpNull:
			vm.push(NilVal())
		case OpTrue:
			vm.push(BoolVal(true))
		case OpFalse:
			vm.push(BoolVal(false))
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := int(vm.readByte(frame))
			vm.push(vm.stack[frame.slots+slot])
		case OpSetLocal:
			slot := int(vm.readByte(frame))
			vm.stack[frame.slots+slot] = vm.peek(0)

		case OpGetGlobal:
			name := vm.readString(frame)
			value, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}
			vm.push(value)
		case OpDefineGlobal:
			name := vm.readString(frame)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case OpSetGlobal:
			name := vm.readString(frame)
			if !vm.globals.Has(name) {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}
			vm.globals.Set(name, vm.peek(0))

		case OpGetUpvalue:
			slot := vm.readByte(frame)
			vm.push(frame.closure.Upvalues[slot].Get())
		case OpSetUpvalue:
			slot := vm.readByte(frame)
			frame.closure.Upvalues[slot].Set(vm.peek(0))

		case OpGetProperty:
			name := vm.readString(frame)
			if !vm.peek(0).IsObj() {
				vm.runtimeError("Only instances have properties.")
				return InterpretRuntimeError
			}
			switch o := vm.peek(0).AsObj().(type) {
			case *ObjInstance:
				if value, ok := o.Fields.Get(name); ok {
					vm.pop()
					vm.push(value)
					break
				}
				if !vm.bindMethod(o.Class, name) {
					return InterpretRuntimeError
				}
			case *ObjNativeClass:
				value, ok := o.Methods.Get(name)
				if !ok {
					vm.runtimeError("Undefined property '%s'.", name.Chars)
					return InterpretRuntimeError
				}
				vm.pop()
				vm.push(value)
			default:
				vm.runtimeError("Only instances have properties.")
				return InterpretRuntimeError
			}
		case OpSetProperty:
			name := vm.readString(frame)
			if !vm.peek(1).IsObjKind(ObjKindInstance) {
				vm.runtimeError("Only instances have fields.")
				return InterpretRuntimeError
			}
			instance := vm.peek(1).AsObj().(*ObjInstance)
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)

		case OpGetSuper:
			name := vm.readString(frame)
			superclass := vm.pop().AsObj().(*ObjClass)
			if !vm.bindMethod(superclass, name) {
				return InterpretRuntimeError
			}

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolVal(a.Equal(b)))
		case OpGreater:
			if !vm.numericBinary(func(a, b float64) Value { return BoolVal(a > b) }) {
				return InterpretRuntimeError
			}
		case OpLess:
			if !vm.numericBinary(func(a, b float64) Value { return BoolVal(a < b) }) {
				return InterpretRuntimeError
			}

		case OpAdd:
			if !vm.add() {
				return InterpretRuntimeError
			}
		case OpSubtract:
			if !vm.numericBinary(func(a, b float64) Value { return NumberVal(a - b) }) {
				return InterpretRuntimeError
			}
		case OpMultiply:
			if !vm.numericBinary(func(a, b float64) Value { return NumberVal(a * b) }) {
				return InterpretRuntimeError
			}
		case OpDivide:
			if !vm.numericBinary(func(a, b float64) Value { return NumberVal(a / b) }) {
				return InterpretRuntimeError
			}

		case OpNot:
			vm.push(BoolVal(vm.pop().IsFalsey()))
		case OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return InterpretRuntimeError
			}
			vm.push(NumberVal(-vm.pop().AsNumber()))

		case OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case OpJump:
			offset := vm.readShort(frame)
			frame.ip += offset
		case OpJumpIfFalse:
			offset := vm.readShort(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case OpLoop:
			offset := vm.readShort(frame)
			frame.ip -= offset

		case OpCall:
			argCount := int(vm.readByte(frame))
			if !vm.callValue(vm.peek(argCount), argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpInvoke:
			method := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			if !vm.invoke(method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpSuperInvoke:
			method := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			superclass := vm.pop().AsObj().(*ObjClass)
			if !vm.invokeFromClass(superclass, method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpClosure:
			function := vm.readConstant(frame).AsObj().(*ObjFunction)
			closure := vm.NewClosure(function)
			vm.push(ObjVal(closure))
			for i := 0; i < function.UpvalueCount; i++ {
				isLocal := vm.readByte(frame)
				index := int(vm.readByte(frame))
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return InterpretOK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case OpClass:
			vm.push(ObjVal(vm.NewClass(vm.readString(frame))))

		case OpInherit:
			superclassVal := vm.peek(1)
			if !superclassVal.IsObjKind(ObjKindClass) {
				vm.runtimeError("Superclass must be a class.")
				return InterpretRuntimeError
			}
			subclass := vm.peek(0).AsObj().(*ObjClass)
			subclass.Methods.AddAll(superclassVal.AsObj().(*ObjClass).Methods)
			vm.pop()

		case OpMethod:
			name := vm.readString(frame)
			method := vm.pop()
			class := vm.peek(0).AsObj().(*ObjClass)
			class.Methods.Set(name, method)

		case OpBuildList:
			count := vm.readShort(frame)
			elements := make([]Value, count)
			copy(elements, vm.stack[vm.stackTop-count:vm.stackTop])
			vm.stackTop -= count
			vm.push(ObjVal(vm.NewList(elements)))

		case OpIndexSubscr:
			if !vm.indexSubscr() {
				return InterpretRuntimeError
			}

		case OpStoreSubscr:
			if !vm.storeSubscr() {
				return InterpretRuntimeError
			}

		default:
			vm.runtimeError("Unknown opcode %d.", instruction)
			return InterpretRuntimeError
		}
	}
}

func (vm *VM) numericBinary(op func(a, b float64) Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return true
}

func (vm *VM) add() bool {
	b := vm.peek(0)
	a := vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		bv := vm.pop().AsNumber()
		av := vm.pop().AsNumber()
		vm.push(NumberVal(av + bv))
	case a.IsObjKind(ObjKindString) && b.IsObjKind(ObjKindString):
		bv := vm.pop().AsObj().(*ObjString)
		av := vm.pop().AsObj().(*ObjString)
		vm.push(ObjVal(vm.TakeString(av.Chars + bv.Chars)))
	default:
		vm.runtimeError("Operands must be two numbers or two strings.")
		return false
	}
	return true
}

func (vm *VM) indexSubscr() bool {
	index := vm.pop()
	receiver := vm.pop()
	switch o := receiver.AsObj().(type) {
	case *ObjList:
		i, ok := listIndex(o.Elements, index)
		if !ok {
			vm.runtimeError("List index out of range.")
			return false
		}
		vm.push(o.Elements[i])
		return true
	case *ObjString:
		if !index.IsNumber() {
			vm.runtimeError("String index must be a number.")
			return false
		}
		idx := int(index.AsNumber())
		if idx < 0 {
			idx += len(o.Chars)
		}
		if idx < 0 || idx >= len(o.Chars) {
			vm.runtimeError("String index out of range.")
			return false
		}
		vm.push(ObjVal(vm.CopyString(string(o.Chars[idx]))))
		return true
	default:
		vm.runtimeError("Can only index into a list or string.")
		return false
	}
}

func (vm *VM) storeSubscr() bool {
	value := vm.pop()
	index := vm.pop()
	receiver := vm.pop()
	list, ok := receiver.AsObj().(*ObjList)
	if !receiver.IsObj() || !ok {
		vm.runtimeError("Can only assign into a list index.")
		return false
	}
	i, ok := listIndex(list.Elements, index)
	if !ok {
		vm.runtimeError("List index out of range.")
		return false
	}
	list.Elements[i] = value
	vm.push(value)
	return true
}

func listIndex(elements []Value, index Value) (int, bool) {
	if !index.IsNumber() {
		return 0, false
	}
	i := int(index.AsNumber())
	if i < 0 {
		i += len(elements)
	}
	if i < 0 || i >= len(elements) {
		return 0, false
	}
	return i, true
}
