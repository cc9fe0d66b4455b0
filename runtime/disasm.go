package runtime

import (
	"fmt"
	"strings"
)

// DisassembleChunk renders every instruction in chunk in the style of
// the teacher's decompile.go: an offset-prefixed listing, one
// instruction per line. Used by cmd/ghost's -debug flag.
func DisassembleChunk(chunk *Chunk, name string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		var line string
		line, offset = DisassembleInstruction(chunk, offset)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// DisassembleInstruction decodes the instruction at offset, returning
// its text form and the offset of the next instruction.
func DisassembleInstruction(chunk *Chunk, offset int) (string, int) {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%04d ", offset)

	line := chunk.LineAt(offset)
	if offset > 0 && line == chunk.LineAt(offset-1) {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(b, "%4d ", line)
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal,
		OpGetProperty, OpSetProperty, OpGetSuper, OpClass, OpMethod:
		return constantInstruction(b, op, chunk, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(b, op, chunk, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(b, op, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(b, op, chunk, offset, 1)
	case OpLoop:
		return jumpInstruction(b, op, chunk, offset, -1)
	case OpBuildList:
		return countInstruction(b, op, chunk, offset)
	case OpClosure:
		return closureInstruction(b, chunk, offset)
	default:
		fmt.Fprintf(b, "%s", op)
		return b.String(), offset + 1
	}
}

func constantInstruction(b *strings.Builder, op OpCode, chunk *Chunk, offset int) (string, int) {
	constant := chunk.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d '%s'", op, constant, chunk.Constants[constant])
	return b.String(), offset + 2
}

func byteInstruction(b *strings.Builder, op OpCode, chunk *Chunk, offset int) (string, int) {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d", op, slot)
	return b.String(), offset + 2
}

func invokeInstruction(b *strings.Builder, op OpCode, chunk *Chunk, offset int) (string, int) {
	constant := chunk.Code[offset+1]
	argc := chunk.Code[offset+2]
	fmt.Fprintf(b, "%-16s (%d args) %4d '%s'", op, argc, constant, chunk.Constants[constant])
	return b.String(), offset + 3
}

func jumpInstruction(b *strings.Builder, op OpCode, chunk *Chunk, offset int, sign int) (string, int) {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(b, "%-16s %4d -> %d", op, offset, offset+3+sign*jump)
	return b.String(), offset + 3
}

func countInstruction(b *strings.Builder, op OpCode, chunk *Chunk, offset int) (string, int) {
	count := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(b, "%-16s %4d", op, count)
	return b.String(), offset + 3
}

func closureInstruction(b *strings.Builder, chunk *Chunk, offset int) (string, int) {
	offset++
	constant := chunk.Code[offset]
	offset++
	fmt.Fprintf(b, "%-16s %4d '%s'", OpClosure, constant, chunk.Constants[constant])

	fn := chunk.Constants[constant].AsObj().(*ObjFunction)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(b, "\n%04d      |                     %s %d", offset-2, kind, index)
	}
	return b.String(), offset
}
