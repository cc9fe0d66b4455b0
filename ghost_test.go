package ghost

import (
	"bytes"
	"strings"
	"testing"

	"ghost/runtime"
)

func run(t *testing.T, source string) (string, runtime.InterpretResult, error) {
	t.Helper()
	var out bytes.Buffer
	m := NewMachine(Config{Stdout: &out})
	result, err := m.Interpret([]byte(source))
	return out.String(), result, err
}

func TestArithmeticAndPrint(t *testing.T) {
	out, result, err := run(t, `print 1 + 2 * 3;`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("got %q, want %q", out, "7")
	}
}

func TestStringConcatenation(t *testing.T) {
	out, result, err := run(t, `print "foo" + "bar";`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "foobar" {
		t.Fatalf("got %q, want %q", out, "foobar")
	}
}

func TestClosuresCaptureByReference(t *testing.T) {
	out, result, err := run(t, `
		function makeCounter() {
			var count = 0;
			function increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "1\n2\n3" {
		t.Fatalf("got %q, want %q", out, "1\\n2\\n3")
	}
}

func TestClassesInheritanceAndSuper(t *testing.T) {
	out, result, err := run(t, `
		class Animal {
			init(name) {
				this.name = name;
			}
			speak() {
				return this.name + " makes a sound";
			}
		}
		class Dog < Animal {
			speak() {
				return super.speak() + ", specifically a bark";
			}
		}
		var d = Dog("Rex");
		print d.speak();
	`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	want := "Rex makes a sound, specifically a bark"
	if strings.TrimSpace(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, result, err := run(t, `print undefinedThing;`)
	if result != runtime.InterpretRuntimeError {
		t.Fatalf("expected a runtime error, got %v", result)
	}
	if err == nil {
		t.Fatalf("expected a non-nil error")
	}
	if result.ExitCode() != 70 {
		t.Fatalf("expected exit code 70, got %d", result.ExitCode())
	}
}

func TestCompileErrorExitCode(t *testing.T) {
	_, result, err := run(t, `var x = ;`)
	if result != runtime.InterpretCompileError {
		t.Fatalf("expected a compile error, got %v", result)
	}
	if err == nil {
		t.Fatalf("expected a non-nil error")
	}
	if result.ExitCode() != 65 {
		t.Fatalf("expected exit code 65, got %d", result.ExitCode())
	}
}

func TestListLiteralAndSubscript(t *testing.T) {
	out, result, err := run(t, `
		var xs = [1, 2, 3];
		xs[1] = 20;
		print xs[0] + xs[1] + xs[2];
	`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "24" {
		t.Fatalf("got %q, want %q", out, "24")
	}
}

func TestListNativeModule(t *testing.T) {
	out, result, err := run(t, `
		var xs = [1, 2];
		List.push(xs, 3);
		print List.len(xs);
		print List.get(xs, 2);
	`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "3\n3" {
		t.Fatalf("got %q, want %q", out, "3\\n3")
	}
}

func TestAssertModulePassesAndFails(t *testing.T) {
	_, result, err := run(t, `Assert.equals(4, 2 + 2);`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("expected a passing assertion, got result=%v err=%v", result, err)
	}

	_, result, err = run(t, `Assert.equals(4, 5);`)
	if result != runtime.InterpretRuntimeError {
		t.Fatalf("expected a failing assertion to be a runtime error, got %v", result)
	}
	if err == nil || !strings.Contains(err.Error(), "Assert.equals() failed.") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, result, err = run(t, `Assert.equals(4, 5, "four should equal five");`)
	if result != runtime.InterpretRuntimeError {
		t.Fatalf("expected a failing assertion to be a runtime error, got %v", result)
	}
	if err == nil || !strings.Contains(err.Error(), "Failed asserting that four should equal five") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForLoopSumsRange(t *testing.T) {
	out, result, err := run(t, `
		var i = 0;
		var total = 0;
		for (i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		print total;
	`)
	if err != nil || result != runtime.InterpretOK {
		t.Fatalf("unexpected result=%v err=%v", result, err)
	}
	if strings.TrimSpace(out) != "10" {
		t.Fatalf("got %q, want %q", out, "10")
	}
}
