// Package ghost wires the compiler, runtime, and native modules
// together behind the three host entry points of spec.md 6.4. It is
// the one package allowed to import both compiler and runtime, which
// avoids the cycle a call from runtime into compiler would otherwise
// require (SPEC_FULL.md 9).
package ghost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"ghost/compiler"
	"ghost/natives"
	"ghost/runtime"
)

// Config controls the VM a Machine wraps: where PRINT and IO.print
// write, an optional instruction-trace sink, and stress-mode GC for
// testing (SPEC_FULL.md 4.7/6.4).
type Config struct {
	Stdout      io.Writer
	TraceWriter io.Writer
	StressGC    bool
}

// Machine owns one VM plus its globals; Interpret can be called on it
// repeatedly (e.g. from a REPL) so globals persist across calls.
type Machine struct {
	vm *runtime.VM
}

func NewMachine(cfg Config) *Machine {
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}
	vm := runtime.NewVM(out)
	vm.TraceWriter = cfg.TraceWriter
	vm.StressGC = cfg.StressGC
	natives.RegisterAll(vm, out)
	return &Machine{vm: vm}
}

// VM exposes the underlying runtime.VM for host tooling that needs
// direct access to it.
func (m *Machine) VM() *runtime.VM { return m.vm }

// Interpret compiles and runs source against the Machine's persistent
// VM state, matching spec.md 6.4's signature.
func (m *Machine) Interpret(source []byte) (runtime.InterpretResult, error) {
	function, errs := compiler.Compile(m.vm, source)
	if len(errs) > 0 {
		return runtime.InterpretCompileError, errs[0]
	}
	result, rerr := m.vm.Run(function)
	if rerr != nil {
		return result, rerr
	}
	return result, nil
}

// Compile exposes the compile step on its own so a host (cmd/ghost's
// -debug flag) can disassemble the Function before running it.
func (m *Machine) Compile(source []byte) (*runtime.ObjFunction, []*runtime.CompileError) {
	return compiler.Compile(m.vm, source)
}

// Run executes an already-compiled Function.
func (m *Machine) Run(function *runtime.ObjFunction) (runtime.InterpretResult, *runtime.RuntimeError) {
	return m.vm.Run(function)
}

// Interpret is the package-level convenience form of spec.md 6.4: a
// fresh Machine per call. Diagnostics are returned as the error value;
// nothing is printed to stderr.
func Interpret(source []byte) (runtime.InterpretResult, error) {
	m := NewMachine(Config{})
	return m.Interpret(source)
}

// RunFile loads path, interprets it, prints any diagnostic to stderr,
// and returns the process exit code (0/65/70 — spec.md 4.5/6.4), or
// 74 when the file cannot be read.
func RunFile(path string) int {
	return RunFileWith(Config{}, path)
}

func RunFileWith(cfg Config, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ghost: could not read file %q: %v\n", path, err)
		return 74
	}
	m := NewMachine(cfg)
	result, rerr := m.Interpret(source)
	reportError(rerr)
	return result.ExitCode()
}

// Repl runs an interactive read-eval-print loop over in, writing
// output to out, until EOF. Returns 0 unless a read error occurs.
func Repl(in io.Reader, out io.Writer) int {
	m := NewMachine(Config{Stdout: out})
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		_, rerr := m.Interpret([]byte(line))
		reportError(rerr)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "ghost: %v\n", err)
		return 1
	}
	return 0
}

func reportError(err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *runtime.RuntimeError:
		fmt.Fprintln(os.Stderr, e.Message)
		for _, frame := range e.Trace {
			fmt.Fprintln(os.Stderr, frame)
		}
	default:
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
