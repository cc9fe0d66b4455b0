package runtime

const (
	gcHeapGrowFactor = 2
	gcMinNextGC      = 1 << 20 // 1 MiB, spec.md 4.6 default minimum
)

// gcState carries the mark phase's gray worklist (spec.md 4.6). It is
// created fresh by every collectGarbage cycle; nothing about it
// survives between cycles.
type gcState struct {
	vm        *VM
	grayStack []Obj
}

func (g *gcState) markValue(v Value) {
	if v.Kind == ValObj && v.obj != nil {
		g.markObject(v.obj)
	}
}

// markObject sets an object's mark bit and pushes it onto the gray
// worklist, unless it is already marked (spec.md 4.6). A nil interface
// is accepted; a nil concrete pointer (e.g. a nil *ObjString) boxed
// into Obj is not, so callers holding one check it before the call.
func (g *gcState) markObject(o Obj) {
	if o == nil {
		return
	}
	h := o.head()
	if h.marked {
		return
	}
	h.marked = true
	g.grayStack = append(g.grayStack, o)
}

// traceReferences blackens every gray object until the worklist is
// empty, following the outgoing-reference shape of spec.md 3.2 per
// kind.
func (g *gcState) traceReferences() {
	for len(g.grayStack) > 0 {
		n := len(g.grayStack) - 1
		obj := g.grayStack[n]
		g.grayStack = g.grayStack[:n]
		g.blacken(obj)
	}
}

func (g *gcState) blacken(o Obj) {
	switch v := o.(type) {
	case *ObjString:
		// no outgoing references
	case *ObjNativeFn:
		// no outgoing references
	case *ObjUpvalue:
		g.markValue(v.Get())
	case *ObjFunction:
		if v.Name != nil {
			g.markObject(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			g.markValue(c)
		}
	case *ObjClosure:
		g.markObject(v.Function)
		for _, uv := range v.Upvalues {
			if uv != nil {
				g.markObject(uv)
			}
		}
	case *ObjClass:
		g.markObject(v.Name)
		v.Methods.mark(g)
	case *ObjNativeClass:
		g.markObject(v.Name)
		v.Methods.mark(g)
	case *ObjInstance:
		g.markObject(v.Class)
		v.Fields.mark(g)
	case *ObjBoundMethod:
		g.markValue(v.Receiver)
		g.markObject(v.Method)
	case *ObjList:
		for _, elem := range v.Elements {
			g.markValue(elem)
		}
	}
}

// markRoots marks every GC root named in spec.md 4.6: the live value
// stack, every frame's closure, every open upvalue, globals, the
// active compiler function chain, and initString.
func (vm *VM) markRoots(g *gcState) {
	for i := 0; i < vm.stackTop; i++ {
		g.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		g.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		g.markObject(uv)
	}
	vm.globals.mark(g)
	for _, fn := range vm.compilerRoots {
		g.markObject(fn)
	}
	g.markObject(vm.initString)
}

// collectGarbage runs one full mark-sweep cycle: mark from roots,
// trace to fixpoint, drop dead strings from the intern set, then
// sweep the allocation list (spec.md 4.6).
func (vm *VM) collectGarbage() {
	g := &gcState{vm: vm}
	vm.markRoots(g)
	g.traceReferences()
	vm.strings.removeWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * gcHeapGrowFactor
	if vm.nextGC < gcMinNextGC {
		vm.nextGC = gcMinNextGC
	}
}

// sweep frees every unmarked object from the allocation list and
// clears the mark bit on survivors (spec.md 4.6).
func (vm *VM) sweep() {
	var prev Obj
	obj := vm.objects
	for obj != nil {
		h := obj.head()
		if h.marked {
			h.marked = false
			prev = obj
			obj = h.next
			continue
		}
		unreached := obj
		obj = h.next
		if prev != nil {
			prev.head().next = obj
		} else {
			vm.objects = obj
		}
		vm.freeObject(unreached)
	}
}

// freeObject accounts for the freed object's estimated size. Go's own
// allocator reclaims the memory once nothing references unreached
// anymore; unlinking it from vm.objects in sweep is what makes that
// true.
func (vm *VM) freeObject(o Obj) {
	vm.bytesAllocated -= approxSize(o)
	if vm.bytesAllocated < 0 {
		vm.bytesAllocated = 0
	}
}

// approxSize gives every object kind a stand-in byte cost so
// bytesAllocated/nextGC (spec.md 4.1, 4.6) have something meaningful
// to grow against; Go has no reallocate(ptr,oldSize,newSize) primitive
// to hook, so this is the closest analogue to the source's byte
// accounting.
func approxSize(o Obj) int64 {
	switch v := o.(type) {
	case *ObjString:
		return int64(24 + len(v.Chars))
	case *ObjFunction:
		return int64(64 + len(v.Chunk.Code) + len(v.Chunk.Constants)*16)
	case *ObjClosure:
		return int64(24 + len(v.Upvalues)*8)
	case *ObjUpvalue:
		return 32
	case *ObjClass:
		return 40
	case *ObjNativeClass:
		return 40
	case *ObjInstance:
		return 40
	case *ObjBoundMethod:
		return 32
	case *ObjNativeFn:
		return 32
	case *ObjList:
		return int64(24 + len(v.Elements)*16)
	default:
		return 16
	}
}
