package natives

import (
	"fmt"
	"io"

	"ghost/runtime"
)

// RegisterIO defines the IO native class, routing both print/println
// and (via the writer the VM was constructed with) the PRINT opcode
// itself through one caller-supplied io.Writer instead of the
// teacher's hardwired stdout (SPEC_FULL.md 4.9).
func RegisterIO(vm *runtime.VM, out io.Writer) {
	vm.DefineNativeClass("IO", map[string]runtime.NativeFnPtr{
		"print": func(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
			for i := 0; i < argc; i++ {
				fmt.Fprint(out, args[i].String())
			}
			return runtime.NilVal()
		},
		"println": func(vm *runtime.VM, argc int, args []runtime.Value) runtime.Value {
			for i := 0; i < argc; i++ {
				fmt.Fprint(out, args[i].String())
			}
			fmt.Fprintln(out)
			return runtime.NilVal()
		},
	})
}
