package runtime

import "testing"

func TestCollectGarbageFreesUnreachableStrings(t *testing.T) {
	vm := newTestVM()
	vm.push(ObjVal(vm.CopyString("kept")))
	vm.CopyString("throwaway-1")
	vm.CopyString("throwaway-2")

	before := vm.bytesAllocated
	vm.collectGarbage()
	after := vm.bytesAllocated

	if after >= before {
		t.Fatalf("collectGarbage did not shrink bytesAllocated: before=%d after=%d", before, after)
	}
	if vm.stringsTableCountForTest() != 1 {
		t.Fatalf("expected 1 surviving interned string, got %d", vm.stringsTableCountForTest())
	}

	top := vm.stack[vm.stackTop-1]
	if !top.IsObjKind(ObjKindString) || top.AsObj().(*ObjString).Chars != "kept" {
		t.Fatalf("rooted string did not survive collection: %v", top)
	}
}

func (vm *VM) stringsTableCountForTest() int { return vm.strings.Count() }

func TestCollectGarbageMarksOpenUpvalues(t *testing.T) {
	vm := newTestVM()
	vm.push(NumberVal(1))
	uv := vm.captureUpvalue(0)
	vm.openUpvalues = uv

	vm.collectGarbage()

	// sweep clears the mark bit on every survivor (gc.go's sweep), so a
	// live object is never marked once collectGarbage returns. Survival
	// is checked by still being linked into vm.objects instead.
	if !vm.objectIsLive(uv) {
		t.Fatalf("open upvalue should have survived as a root")
	}
}

func (vm *VM) objectIsLive(target Obj) bool {
	for o := vm.objects; o != nil; o = o.head().next {
		if o == target {
			return true
		}
	}
	return false
}

func TestClosureUpvalueSliceToleratesNilDuringFill(t *testing.T) {
	vm := newTestVM()
	fn := vm.NewFunction(nil, 0)
	fn.UpvalueCount = 2
	closure := vm.NewClosure(fn)
	vm.push(ObjVal(closure))

	// Upvalues[0] and [1] are both nil here, as they are between
	// NewClosure and OP_CLOSURE finishing its fill loop. A collection
	// at this point must not panic on the nil slots.
	vm.collectGarbage()
}
