package runtime

import "fmt"

// InterpretResult is the status spec.md 6.4 defines for Interpret.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// ExitCode maps a result to the host process exit code convention of
// spec.md 4.5/6.4 (0 ok, 65 compile error, 70 runtime error).
func (r InterpretResult) ExitCode() int {
	switch r {
	case InterpretOK:
		return 0
	case InterpretCompileError:
		return 65
	case InterpretRuntimeError:
		return 70
	default:
		return 1
	}
}

// CompileError wraps a source-level compile diagnostic so an embedding
// host can errors.As instead of string-matching (SPEC_FULL.md 4.7).
type CompileError struct {
	Message string
	Line    int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// RuntimeError wraps a VM-raised failure together with the call-stack
// trace the VM prints per spec.md 4.5's error-reporting contract.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	return e.Message
}
