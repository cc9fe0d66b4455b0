// Package natives implements Ghost's built-in native modules — Assert,
// IO, and List — behind the ObjNativeClass static-dispatch protocol
// (SPEC_FULL.md 4.9), grounded on original_source/src/modules/assert.c
// but with the exit(70)-from-native behavior spec.md 9 explicitly
// redesigns away: a failed assertion is an ordinary runtime error that
// unwinds back to the host, never a direct process exit.
package natives

import "ghost/runtime"

// RegisterAssert defines the Assert native class with isTrue, isFalse,
// and equals methods (original_source's assertIsTrue/assertIsFalse/
// assertEquals).
func RegisterAssert(vm *runtime.VM) {
	vm.DefineNativeClass("Assert", map[string]runtime.NativeFnPtr{
		"isTrue":  assertIsTrue,
		"isFalse": assertIsFalse,
		"equals":  assertEquals,
	})
}

// assertMessage reports the failure the way original_source's
// assert.c does: "Failed asserting that <custom message>" when the
// caller supplied one at msgIndex, or fallback otherwise.
func assertMessage(argc int, args []runtime.Value, msgIndex int, fallback string) string {
	if argc > msgIndex && args[msgIndex].IsObjKind(runtime.ObjKindString) {
		return "Failed asserting that " + args[msgIndex].String()
	}
	return fallback
}

func assertIsTrue(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc == 0 {
		return vm.RuntimeError("Assert.isTrue() expects at least one argument.")
	}
	if args[0].IsFalsey() {
		return vm.RuntimeError("%s", assertMessage(argc, args, 1, "Assert.isTrue() failed."))
	}
	return runtime.NilVal()
}

func assertIsFalse(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc == 0 {
		return vm.RuntimeError("Assert.isFalse() expects at least one argument.")
	}
	if !args[0].IsFalsey() {
		return vm.RuntimeError("%s", assertMessage(argc, args, 1, "Assert.isFalse() failed."))
	}
	return runtime.NilVal()
}

func assertEquals(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
	if argc < 2 {
		return vm.RuntimeError("Assert.equals() expects at least two arguments.")
	}
	if !args[0].Equal(args[1]) {
		return vm.RuntimeError("%s", assertMessage(argc, args, 2, "Assert.equals() failed."))
	}
	return runtime.NilVal()
}
