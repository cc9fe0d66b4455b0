package natives

import "ghost/runtime"

// RegisterList defines the List native class. Its methods are called
// statically — List.push(list, value) — since ObjNativeClass has no
// `this` binding; BUILD_LIST/INDEX_SUBSCR/STORE_SUBSCR already cover
// literal construction and indexing, so these round out mutation and
// introspection (SPEC_FULL.md 4.9).
func RegisterList(vm *runtime.VM) {
	vm.DefineNativeClass("List", map[string]runtime.NativeFnPtr{
		"push": listPush,
		"pop":  listPop,
		"len":  listLen,
		"get":  listGet,
		"set":  listSet,
	})
}

func asList(vm *runtime.VM, v runtime.Value, who string) (*runtime.ObjList, bool) {
	if !v.IsObjKind(runtime.ObjKindList) {
		vm.RuntimeError("%s expects a list as its first argument.", who)
		return nil, false
	}
	return v.AsObj().(*runtime.ObjList), true
}

func listPush(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 2 {
		return vm.RuntimeError("List.push expects 2 arguments.")
	}
	list, ok := asList(vm, args[0], "List.push")
	if !ok {
		return runtime.NilVal()
	}
	list.Elements = append(list.Elements, args[1])
	return runtime.NilVal()
}

func listPop(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 1 {
		return vm.RuntimeError("List.pop expects 1 argument.")
	}
	list, ok := asList(vm, args[0], "List.pop")
	if !ok {
		return runtime.NilVal()
	}
	if len(list.Elements) == 0 {
		return vm.RuntimeError("Can't pop from an empty list.")
	}
	last := list.Elements[len(list.Elements)-1]
	list.Elements = list.Elements[:len(list.Elements)-1]
	return last
}

func listLen(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 1 {
		return vm.RuntimeError("List.len expects 1 argument.")
	}
	list, ok := asList(vm, args[0], "List.len")
	if !ok {
		return runtime.NilVal()
	}
	return runtime.NumberVal(float64(len(list.Elements)))
}

func listGet(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 2 {
		return vm.RuntimeError("List.get expects 2 arguments.")
	}
	list, ok := asList(vm, args[0], "List.get")
	if !ok {
		return runtime.NilVal()
	}
	if !args[1].IsNumber() {
		return vm.RuntimeError("List.get index must be a number.")
	}
	i := int(args[1].AsNumber())
	if i < 0 || i >= len(list.Elements) {
		return vm.RuntimeError("List index out of range.")
	}
	return list.Elements[i]
}

func listSet(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 3 {
		return vm.RuntimeError("List.set expects 3 arguments.")
	}
	list, ok := asList(vm, args[0], "List.set")
	if !ok {
		return runtime.NilVal()
	}
	if !args[1].IsNumber() {
		return vm.RuntimeError("List.set index must be a number.")
	}
	i := int(args[1].AsNumber())
	if i < 0 || i >= len(list.Elements) {
		return vm.RuntimeError("List index out of range.")
	}
	list.Elements[i] = args[2]
	return args[2]
}
