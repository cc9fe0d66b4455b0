package natives

import (
	"io"

	"ghost/runtime"
)

// RegisterAll installs every native module into vm's globals. out is
// the sink for IO.print/println (and, independently, for the PRINT
// opcode itself — wired by the caller when constructing the VM).
func RegisterAll(vm *runtime.VM, out io.Writer) {
	RegisterAssert(vm)
	RegisterIO(vm, out)
	RegisterList(vm)
}
