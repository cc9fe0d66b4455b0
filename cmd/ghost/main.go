// Command ghost is the Ghost language's host CLI: run a script file,
// drop into a REPL, or dump a compiled chunk for inspection
// (SPEC_FULL.md 6.4). Diagnostics are colorized the way a modern Go
// CLI does it — fatih/color gated by go-isatty, routed through
// go-colorable so ANSI codes survive on Windows consoles — reviving a
// dependency triple the teacher's own go.mod declared but never
// wired.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"ghost"
	"ghost/runtime"
)

func main() {
	debug := flag.Bool("debug", false, "disassemble each compiled function before running")
	trace := flag.Bool("trace", false, "print each executed instruction and the value stack")
	dumpPath := flag.String("dump", "", "write the compiled top-level chunk to FILE as msgpack")
	flag.Parse()

	stderr := colorable.NewColorableStderr()
	color.NoColor = !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
	errColor := color.New(color.FgRed, color.Bold)

	cfg := ghost.Config{Stdout: colorable.NewColorableStdout()}
	if *trace {
		cfg.TraceWriter = stderr
	}

	args := flag.Args()
	switch {
	case len(args) == 0:
		os.Exit(ghost.Repl(os.Stdin, cfg.Stdout))
	case len(args) == 1:
		os.Exit(runFile(cfg, args[0], *debug, *dumpPath, stderr, errColor))
	default:
		fmt.Fprintln(stderr, "usage: ghost [-debug] [-trace] [-dump FILE] [script]")
		os.Exit(64)
	}
}

func runFile(cfg ghost.Config, path string, debug bool, dumpPath string, stderr io.Writer, errColor *color.Color) int {
	source, err := os.ReadFile(path)
	if err != nil {
		errColor.Fprintf(stderr, "ghost: could not read file %q: %v\n", path, err)
		return 74
	}

	m := ghost.NewMachine(cfg)
	function, compileErrs := m.Compile(source)
	if len(compileErrs) > 0 {
		for _, e := range compileErrs {
			errColor.Fprintln(stderr, e.Error())
		}
		return runtime.InterpretCompileError.ExitCode()
	}

	if debug {
		pending := []*runtime.ObjFunction{function}
		for len(pending) > 0 {
			fn := pending[0]
			pending = pending[1:]
			name := "script"
			if fn.Name != nil {
				name = fn.Name.Chars
			}
			fmt.Fprint(stderr, runtime.DisassembleChunk(&fn.Chunk, name))
			for _, c := range fn.Chunk.Constants {
				if nested, ok := c.AsObj().(*runtime.ObjFunction); ok {
					pending = append(pending, nested)
				}
			}
		}
	}
	if dumpPath != "" {
		if err := writeDump(dumpPath, &function.Chunk); err != nil {
			errColor.Fprintf(stderr, "ghost: could not write dump: %v\n", err)
		}
	}

	result, rerr := m.Run(function)
	if rerr != nil {
		errColor.Fprintln(stderr, rerr.Message)
		for _, frame := range rerr.Trace {
			fmt.Fprintln(stderr, frame)
		}
	}
	return result.ExitCode()
}
