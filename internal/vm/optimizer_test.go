package vm

import "testing"

// buildChunk is a small helper for constructing a raw chunk without going
// through the compiler, so these tests exercise the optimizer's byte-level
// rewriting in isolation.
func buildChunk(code []byte) *Chunk {
	c := NewChunk()
	c.Code = code
	c.Lines = make([]int, len(code))
	return c
}

func TestCombinePopsMerges(t *testing.T) {
	// OpPop 1; OpPop 2; OpReturn
	c := buildChunk([]byte{byte(OpPop), 1, byte(OpPop), 2, byte(OpReturn)})
	Optimize(c)

	if len(c.Code) != 3 {
		t.Fatalf("expected merged chunk of 3 bytes, got %d: %v", len(c.Code), c.Code)
	}
	if Opcode(c.Code[0]) != OpPop || c.Code[1] != 3 {
		t.Fatalf("expected a single OpPop 3, got %v", c.Code)
	}
}

func TestCombinePopsStopsAtOverflow(t *testing.T) {
	// Two OpPop instructions that would overflow the single-byte count operand.
	c := buildChunk([]byte{byte(OpPop), 200, byte(OpPop), 100, byte(OpReturn)})
	Optimize(c)

	if len(c.Code) != 5 {
		t.Fatalf("expected no merge (overflow), got %d bytes: %v", len(c.Code), c.Code)
	}
}

func TestDeadCodeEliminationRemovesUnreachableRun(t *testing.T) {
	// OpJump targets OpReturn directly; the OpPop/OpNil between them are
	// unreachable and untargeted, so both should be eliminated.
	code := []byte{
		byte(OpJump), 0, 3,
		byte(OpPop), 1,
		byte(OpNil),
		byte(OpReturn),
	}
	c := buildChunk(code)
	Optimize(c)

	for i := 0; i < len(c.Code); {
		if Opcode(c.Code[i]) == OpPop {
			t.Fatalf("dead OpPop should have been eliminated, chunk: %v", c.Code)
		}
		i += instrLen(c, i)
	}
}

func TestDeadCodeEliminationPreservesJumpTarget(t *testing.T) {
	// A forward jump over an unreachable OpPop: the dead OpPop may be
	// removed, but the jump must still land on the OpNil afterwards.
	code := []byte{
		byte(OpJump), 0, 2, // jump to offset 5 (the OpNil)
		byte(OpPop), 1, // dead: the jump skips it
		byte(OpNil), // offset 5 is a jump target and must survive
		byte(OpReturn),
	}
	c := buildChunk(code)
	before := append([]byte(nil), c.Code...)
	Optimize(c)

	// The jump's target byte offset must still point at an OpNil after any
	// rewrite, whether or not a rewrite happened.
	target := jumpTarget(c, 0)
	if target < 0 || target >= len(c.Code) || Opcode(c.Code[target]) != OpNil {
		t.Fatalf("jump target corrupted: before=%v after=%v target=%d", before, c.Code, target)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	code := []byte{
		byte(OpPop), 1, byte(OpPop), 1, byte(OpPop), 1,
		byte(OpJump), 0, 3,
		byte(OpPop), 1,
		byte(OpNil),
		byte(OpReturn),
	}
	c := buildChunk(code)
	Optimize(c)
	first := append([]byte(nil), c.Code...)
	Optimize(c)
	if string(first) != string(c.Code) {
		t.Fatalf("second Optimize pass changed an already-fixed-point chunk: %v -> %v", first, c.Code)
	}
}
