package compiler_test

import (
	"strings"
	"testing"

	"ghost/compiler"
	"ghost/runtime"
)

func TestCompileValidProgram(t *testing.T) {
	vm := runtime.NewVM(nil)
	source := []byte(`
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				return "hello, " + this.name;
			}
		}
		var g = Greeter("world");
		print g.greet();
	`)

	fn, errs := compiler.Compile(vm, source)
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	if fn == nil {
		t.Fatalf("expected a compiled Function")
	}
	if fn.Arity != 0 || fn.Name != nil {
		t.Fatalf("top-level script Function should have arity 0 and a nil name")
	}
}

func TestCompileReportsLineAndRecoversAfterError(t *testing.T) {
	vm := runtime.NewVM(nil)
	source := []byte("var x = ;\nvar y = 1;\n")

	_, errs := compiler.Compile(vm, source)
	if len(errs) == 0 {
		t.Fatalf("expected a compile error for the missing expression")
	}
	if errs[0].Line != 1 {
		t.Fatalf("expected the error on line 1, got line %d", errs[0].Line)
	}
	if !strings.Contains(errs[0].Message, "Expect expression") {
		t.Fatalf("unexpected message: %q", errs[0].Message)
	}
}

func TestCompileMissingClosingBraceIsReported(t *testing.T) {
	vm := runtime.NewVM(nil)
	// Panic-mode recovery should stop at the statement boundary and not
	// cascade into a flood of unrelated errors for one missing brace.
	source := []byte("function f() { print 1;\n")

	_, errs := compiler.Compile(vm, source)
	if len(errs) == 0 {
		t.Fatalf("expected at least one compile error")
	}
}
