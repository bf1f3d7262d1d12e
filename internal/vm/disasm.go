package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable rendering of chunk's bytecode,
// recursively disassembling any nested function constants reached via
// OpClosure.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("== %s ==\n", name))
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])

	switch op {
	case OpConstant:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpNil, OpTrue, OpFalse:
		return simpleInstruction(sb, op.String(), offset)

	case OpPop:
		return byteInstruction(sb, op.String(), chunk, offset)

	case OpGetGlobal, OpSetGlobal, OpDefineGlobal:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue:
		return byteInstruction(sb, op.String(), chunk, offset)

	case OpCloseUpvalue:
		return simpleInstruction(sb, op.String(), offset)

	case OpGetProperty, OpSetProperty, OpGetSuper:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg, OpNot,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return simpleInstruction(sb, op.String(), offset)

	case OpJump, OpJumpIfFalse, OpJumpPopIfFalse, OpJumpIfError:
		return jumpInstruction(sb, op.String(), 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(sb, op.String(), -1, chunk, offset)

	case OpReturn, OpHalt:
		return simpleInstruction(sb, op.String(), offset)

	case OpCall:
		argc := chunk.Code[offset+1]
		kwargc := chunk.Code[offset+2]
		sb.WriteString(fmt.Sprintf("%-16s args=%d kwargs=%d\n", "CALL", argc, kwargc))
		return offset + 3

	case OpInvoke, OpSuperInvoke:
		idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		argc := chunk.Code[offset+3]
		name := "(invalid)"
		if idx < len(chunk.Constants) {
			name = chunk.Constants[idx].Inspect()
		}
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s' (args: %d)\n", op.String(), idx, name, argc))
		return offset + 4

	case OpClass:
		return constantInstruction(sb, op.String(), chunk, offset)
	case OpInherit:
		return simpleInstruction(sb, op.String(), offset)
	case OpMethod:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpClosure:
		return closureInstruction(sb, op.String(), chunk, offset)

	case OpArray, OpObject, OpFString:
		idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", op.String(), idx))
		return offset + 3

	case OpIndex, OpSetIndex:
		return simpleInstruction(sb, op.String(), offset)

	case OpPrint:
		return simpleInstruction(sb, op.String(), offset)

	case OpImport:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpPromptCall:
		return simpleInstruction(sb, op.String(), offset)

	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(name + "\n")
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	if idx < len(chunk.Constants) {
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, chunk.Constants[idx].Inspect()))
	} else {
		sb.WriteString(fmt.Sprintf("%-16s %4d (invalid)\n", name, idx))
	}
	return offset + 3
}

func byteInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, slot))
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, name string, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	sb.WriteString(fmt.Sprintf("%-16s %4d -> %d\n", name, jump, target))
	return offset + 3
}

func closureInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	offset += 3

	if idx >= len(chunk.Constants) {
		sb.WriteString(fmt.Sprintf("%-16s %4d (invalid)\n", name, idx))
		return offset
	}

	v := chunk.Constants[idx]
	if v.Type != VClosure {
		sb.WriteString(fmt.Sprintf("%-16s %4d (not a function)\n", name, idx))
		return offset
	}
	fn := v.AsClosure().Function

	sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, fn.Name))

	funcDisasm := Disassemble(fn.Chunk, fn.Name)
	indented := strings.ReplaceAll(funcDisasm, "\n", "\n    | ")
	sb.WriteString("    | " + indented + "\n")

	for i := 0; i < len(fn.UpvalueDescs); i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		localStr := "upvalue"
		if isLocal == 1 {
			localStr = "local"
		}
		sb.WriteString(fmt.Sprintf("%04d    |                     %s %d\n", offset-2, localStr, index))
	}

	return offset
}
