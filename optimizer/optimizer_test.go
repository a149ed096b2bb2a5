/*
 * pcode - Peephole optimizer tests
 *
 * Copyright 2026, pcode contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package optimizer

import (
	"testing"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

func mustIns(t *testing.T, op opcode.Op, arg1 int, arg2 int32) opcode.Instruction {
	t.Helper()
	ins, err := opcode.New(op, arg1, arg2)
	if err != nil {
		t.Fatalf("New(%v): %v", op, err)
	}
	return ins
}

func programOf(t *testing.T, stream []opcode.Instruction) *poff.Container {
	t.Helper()
	c := poff.New()
	c.ReplaceProgram(encodeStream(stream))
	return c
}

func decodeProgram(t *testing.T, c *poff.Container) []opcode.Instruction {
	t.Helper()
	stream, err := decodeStream(c.Program())
	if err != nil {
		t.Fatalf("decodeStream: %v", err)
	}
	return stream
}

func TestLocalPeepholeConstantFold(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.PUSH, 0, 3),
		mustIns(t, opcode.PUSH, 0, 4),
		mustIns(t, opcode.ADD, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	changes, err := LocalPeephole(c)
	if err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	if changes == 0 {
		t.Fatal("expected at least one rewrite")
	}
	stream := decodeProgram(t, c)
	if len(stream) != 2 {
		t.Fatalf("len(stream) = %d, want 2 (const push + END)", len(stream))
	}
	if stream[0].Op != opcode.PUSHB || stream[0].Arg1 != 7 {
		t.Errorf("folded constant = %+v, want PUSHB 7", stream[0])
	}
}

func TestLocalPeepholeAddZeroDrops(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.PUSH, 0, 0),
		mustIns(t, opcode.ADD, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	stream := decodeProgram(t, c)
	if len(stream) != 1 || stream[0].Op != opcode.END {
		t.Errorf("stream = %+v, want just END", stream)
	}
}

func TestLocalPeepholeIncDecCancel(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.INC, 0, 0),
		mustIns(t, opcode.DEC, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	stream := decodeProgram(t, c)
	if len(stream) != 1 || stream[0].Op != opcode.END {
		t.Errorf("stream = %+v, want just END", stream)
	}
}

// TestLocalPeepholeNegBothOrderings guards the §4.4 misc rule in both
// directions: NEG;ADD -> SUB and NEG;SUB -> ADD. A regression here would
// indicate the two cases got each other's rewrite.
func TestLocalPeepholeNegBothOrderings(t *testing.T) {
	addCase := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.NEG, 0, 0),
		mustIns(t, opcode.ADD, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(addCase); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	stream := decodeProgram(t, addCase)
	if len(stream) != 2 || stream[0].Op != opcode.SUB {
		t.Errorf("NEG;ADD -> %+v, want [SUB END]", stream)
	}

	subCase := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.NEG, 0, 0),
		mustIns(t, opcode.SUB, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(subCase); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	stream = decodeProgram(t, subCase)
	if len(stream) != 2 || stream[0].Op != opcode.ADD {
		t.Errorf("NEG;SUB -> %+v, want [ADD END]", stream)
	}
}

func TestLocalPeepholeMulPowerOfTwo(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.LD, 0, 10),
		mustIns(t, opcode.PUSH, 0, 8),
		mustIns(t, opcode.MUL, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	stream := decodeProgram(t, c)
	if len(stream) != 4 {
		t.Fatalf("stream = %+v, want 4 instructions (LD, push-shift, SLL, END)", stream)
	}
	if stream[0].Op != opcode.LD {
		t.Errorf("stream[0] = %+v, want LD", stream[0])
	}
	if stream[2].Op != opcode.SLL {
		t.Errorf("stream[2] = %+v, want SLL", stream[2])
	}
	if stream[1].Arg1 != 3 {
		t.Errorf("shift amount = %d, want 3 (8 = 2^3)", stream[1].Arg1)
	}
}

func TestLocalPeepholeRelocationTracksShift(t *testing.T) {
	c := poff.New()
	var program []byte
	program = append(program, mustEncode(t, mustIns(t, opcode.INC, 0, 0))...)
	program = append(program, mustEncode(t, mustIns(t, opcode.DEC, 0, 0))...)
	jmpOffset := uint32(len(program))
	program = append(program, mustEncode(t, mustIns(t, opcode.JMP, 0, 0))...)
	program = append(program, mustEncode(t, mustIns(t, opcode.END, 0, 0))...)
	c.ReplaceProgram(program)
	c.AddRelocation(poff.Relocation{Type: poff.RelocProgram, SectionOffset: jmpOffset})

	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}

	relocs := c.Relocations()
	if len(relocs) != 1 {
		t.Fatalf("len(Relocations) = %d, want 1", len(relocs))
	}
	// INC;DEC cancelled, so JMP shifted from offset 2 to offset 0.
	if relocs[0].SectionOffset != 0 {
		t.Errorf("relocation offset = %d, want 0", relocs[0].SectionOffset)
	}
}

func mustEncode(t *testing.T, ins opcode.Instruction) []byte {
	t.Helper()
	data, err := opcode.Encode(ins)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

// longConstIns returns the three-instruction triple a 32-bit constant v
// compiles to: push-hi, push-lo, LONGOP8(DPUSH).
func longConstIns(t *testing.T, v uint32) []opcode.Instruction {
	t.Helper()
	return []opcode.Instruction{
		mustIns(t, opcode.PUSH, 0, int32(int16(uint16(v>>16)))),
		mustIns(t, opcode.PUSH, 0, int32(int16(uint16(v)))),
		mustIns(t, opcode.LONGOP8, int(opcode.DPUSH), 0),
	}
}

func TestLocalPeepholeLongConstantFold(t *testing.T) {
	var stream []opcode.Instruction
	stream = append(stream, longConstIns(t, 70000)...)
	stream = append(stream, longConstIns(t, 5)...)
	stream = append(stream, mustIns(t, opcode.LONGOP8, int(opcode.DADD), 0))
	stream = append(stream, mustIns(t, opcode.END, 0, 0))
	c := programOf(t, stream)

	changes, err := LocalPeephole(c)
	if err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	if changes == 0 {
		t.Fatal("expected at least one rewrite")
	}
	out := decodeProgram(t, c)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4 (folded triple + END): %+v", len(out), out)
	}
	hi, lo, ok := longTripleBits(out[0], out[1], out[2])
	if !ok {
		t.Fatalf("out[0:3] = %+v, not a longconst triple", out[0:3])
	}
	got := uint32(hi)<<16 | uint32(lo)
	if got != 70005 {
		t.Errorf("folded long constant = %d, want 70005", got)
	}
	if out[3].Op != opcode.END {
		t.Errorf("out[3] = %+v, want END", out[3])
	}
}

func TestLocalPeepholeLongCompareFoldsToBool(t *testing.T) {
	var stream []opcode.Instruction
	stream = append(stream, longConstIns(t, 10)...)
	stream = append(stream, longConstIns(t, 3)...)
	stream = append(stream, mustIns(t, opcode.LONGOP8, int(opcode.DGT), 0))
	stream = append(stream, mustIns(t, opcode.END, 0, 0))
	c := programOf(t, stream)

	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	out := decodeProgram(t, c)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (bool push + END): %+v", len(out), out)
	}
	if out[0].Op != opcode.PUSHB || out[0].Arg1 != 0xFF {
		t.Errorf("out[0] = %+v, want PUSHB 0xFF (true)", out[0])
	}
}

func TestLocalPeepholeLongAddZeroDrops(t *testing.T) {
	var stream []opcode.Instruction
	stream = append(stream, mustIns(t, opcode.LD, 0, 0))
	stream = append(stream, longConstIns(t, 0)...)
	stream = append(stream, mustIns(t, opcode.LONGOP8, int(opcode.DADD), 0))
	stream = append(stream, mustIns(t, opcode.END, 0, 0))
	c := programOf(t, stream)

	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	out := decodeProgram(t, c)
	if len(out) != 2 {
		t.Fatalf("out = %+v, want [LD END]", out)
	}
	if out[0].Op != opcode.LD || out[1].Op != opcode.END {
		t.Errorf("out = %+v, want [LD END]", out)
	}
}

func TestLocalPeepholeCnvdFoldsConstant(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.PUSH, 0, -1),
		mustIns(t, opcode.LONGOP8, int(opcode.CNVD), 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	out := decodeProgram(t, c)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4 (longconst triple + END): %+v", len(out), out)
	}
	hi, lo, ok := longTripleBits(out[0], out[1], out[2])
	if !ok {
		t.Fatalf("out[0:3] = %+v, not a longconst triple", out[0:3])
	}
	got := uint32(hi)<<16 | uint32(lo)
	if got != 0xFFFFFFFF {
		t.Errorf("CNVD(-1) folded to %#x, want 0xffffffff", got)
	}
}

func TestLocalPeepholeUcnvdFoldsConstant(t *testing.T) {
	c := programOf(t, []opcode.Instruction{
		mustIns(t, opcode.PUSH, 0, -1),
		mustIns(t, opcode.LONGOP8, int(opcode.UCNVD), 0),
		mustIns(t, opcode.END, 0, 0),
	})
	if _, err := LocalPeephole(c); err != nil {
		t.Fatalf("LocalPeephole: %v", err)
	}
	out := decodeProgram(t, c)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4 (longconst triple + END): %+v", len(out), out)
	}
	hi, lo, ok := longTripleBits(out[0], out[1], out[2])
	if !ok {
		t.Fatalf("out[0:3] = %+v, not a longconst triple", out[0:3])
	}
	got := uint32(hi)<<16 | uint32(lo)
	if got != 0x0000FFFF {
		t.Errorf("UCNVD(0xffff) folded to %#x, want 0x0000ffff", got)
	}
}

// longTripleBits extracts the (hi, lo) halves from a decoded longconst
// triple, verifying the shape (two constant pushes, DPUSH marker).
func longTripleBits(a, b, c opcode.Instruction) (hi, lo uint16, ok bool) {
	ha, hok := decodedConstBits(a)
	la, lok := decodedConstBits(b)
	if !hok || !lok {
		return 0, 0, false
	}
	if c.Op != opcode.LONGOP8 || c.Arg1 != uint8(opcode.DPUSH) {
		return 0, 0, false
	}
	return ha, la, true
}

// decodedConstBits reads the 16-bit constant out of a decoded PUSH-family
// instruction, mirroring rules.go's constBits for pre-decode nodes.
func decodedConstBits(ins opcode.Instruction) (uint16, bool) {
	switch ins.Op {
	case opcode.PUSH:
		return ins.Arg2, true
	case opcode.PUSHB:
		return uint16(int16(int8(ins.Arg1))), true
	case opcode.UPUSHB:
		return uint16(ins.Arg1), true
	default:
		return 0, false
	}
}

func TestFinalizeResolvesLabelsAndStripsPseudoOps(t *testing.T) {
	c := poff.New()
	stream := []opcode.Instruction{
		mustIns(t, opcode.LINE, 0, 1),
		mustIns(t, opcode.JMP, 0, 1), // target: label id 1
		mustIns(t, opcode.NOP, 0, 0),
		mustIns(t, opcode.LABEL, 0, 1),
		mustIns(t, opcode.RET, 0, 0),
		mustIns(t, opcode.END, 0, 0),
	}
	c.ReplaceProgram(encodeStream(stream))

	if err := Finalize(c, 0, 0); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	out, err := decodeStream(c.Program())
	if err != nil {
		t.Fatalf("decodeStream: %v", err)
	}
	// LINE, NOP and LABEL are gone; JMP, RET, END remain.
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0].Op != opcode.JMP || out[0].Arg2 != 3 {
		t.Errorf("JMP = %+v, want target offset 3 (RET's offset, after the 3-byte JMP)", out[0])
	}
	if out[1].Op != opcode.RET || out[2].Op != opcode.END {
		t.Errorf("out = %+v, want [JMP RET END]", out)
	}

	lines := c.LineTable()
	if len(lines) != 1 {
		t.Fatalf("len(LineTable) = %d, want 1", len(lines))
	}
}
