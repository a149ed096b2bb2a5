/*
 * pcode - Pascal front end: code generator tests
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

package compiler

import (
	"testing"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/opcode"
)

// decodeAll decodes every instruction in data, stopping at and including
// the first END.
func decodeAll(t *testing.T, data []byte) []opcode.Instruction {
	t.Helper()
	var out []opcode.Instruction
	off := 0
	for off < len(data) {
		ins, n, err := opcode.Decode(data, off)
		if err != nil {
			t.Fatalf("Decode at %d: %v", off, err)
		}
		out = append(out, ins)
		off += n
		if ins.Op == opcode.END {
			break
		}
	}
	return out
}

func TestCompileAssignAndWriteln(t *testing.T) {
	prog, err := Parse(`program Sum;
var
  x, y: integer;
begin
  x := 3;
  y := 4;
  writeln(x + y)
end.`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ins := decodeAll(t, container.Program())
	want := []struct {
		op   opcode.Op
		arg1 uint8
		arg2 uint16
	}{
		// PUSH/PUSHB/UPUSHB are re-narrowed by opcode.New itself, which
		// always folds a fmtArg1 constant into Arg1 and zeros Arg2 (see
		// Narrow); small literals like these end up as PUSHB with the
		// value in Arg1, not the requested PUSH with it in Arg2.
		{opcode.INCS, 0, 2},
		{opcode.PUSHB, 3, 0},
		{opcode.ST, 0, 0},
		{opcode.PUSHB, 4, 0},
		{opcode.ST, 0, 2},
		{opcode.PUSHB, stdoutHandle, 0},
		{opcode.LD, 0, 0},
		{opcode.LD, 0, 2},
		{opcode.ADD, 0, 0},
		{opcode.SYSIO, uint8(interp.SysWriteInt), 0},
		{opcode.PUSHB, stdoutHandle, 0},
		{opcode.SYSIO, uint8(interp.SysWriteLn), 0},
		{opcode.END, 0, 0},
	}
	if len(ins) != len(want) {
		t.Fatalf("got %d instructions, want %d: %+v", len(ins), len(want), ins)
	}
	for i, w := range want {
		if ins[i].Op != w.op || ins[i].Arg1 != w.arg1 || ins[i].Arg2 != w.arg2 {
			t.Errorf("ins[%d] = %+v, want {%v %d %d}", i, ins[i], w.op, w.arg1, w.arg2)
		}
	}

	if len(container.Relocations()) != 0 {
		t.Fatalf("Relocations = %v, want none (no jumps)", container.Relocations())
	}
}

func TestCompileIfElseRelocationsInOrder(t *testing.T) {
	prog, err := Parse(`program P;
var x: integer;
begin
  if x > 0 then
    x := 1
  else
    x := 2
end.`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	relocs := container.Relocations()
	if len(relocs) != 2 {
		t.Fatalf("got %d relocations, want 2 (JEQUZ + JMP)", len(relocs))
	}
	if relocs[0].SectionOffset >= relocs[1].SectionOffset {
		t.Fatalf("relocations not in ascending order: %+v", relocs)
	}

	data := container.Program()
	ins, n, err := opcode.Decode(data, int(relocs[0].SectionOffset))
	if err != nil {
		t.Fatalf("Decode JEQUZ: %v", err)
	}
	if ins.Op != opcode.JEQUZ {
		t.Fatalf("relocs[0] targets %v, want JEQUZ", ins.Op)
	}
	_ = n
	ins, _, err = opcode.Decode(data, int(relocs[1].SectionOffset))
	if err != nil {
		t.Fatalf("Decode JMP: %v", err)
	}
	if ins.Op != opcode.JMP {
		t.Fatalf("relocs[1] targets %v, want JMP", ins.Op)
	}

	// The JMP closing the then-branch must land beyond the then-branch's
	// first instruction, which follows the 3-byte JEQUZ.
	thenStart := int(relocs[0].SectionOffset) + 3
	if int(ins.Arg2) <= thenStart {
		t.Fatalf("JMP target %d does not skip past the then branch (starts at %d)", ins.Arg2, thenStart)
	}
}

func TestCompileWhileLoopBacksBranch(t *testing.T) {
	prog, err := Parse(`program P;
var x: integer;
begin
  while x < 10 do
    x := x + 1
end.`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	relocs := container.Relocations()
	if len(relocs) != 2 {
		t.Fatalf("got %d relocations, want 2 (exit JEQUZ + back JMP)", len(relocs))
	}
	data := container.Program()

	backIns, _, err := opcode.Decode(data, int(relocs[1].SectionOffset))
	if err != nil {
		t.Fatalf("Decode back jump: %v", err)
	}
	if backIns.Op != opcode.JMP {
		t.Fatalf("relocs[1] targets %v, want JMP", backIns.Op)
	}
	if int(backIns.Arg2) >= int(relocs[1].SectionOffset) {
		t.Fatalf("back jump target %d does not precede the jump itself at %d", backIns.Arg2, relocs[1].SectionOffset)
	}

	exitIns, _, err := opcode.Decode(data, int(relocs[0].SectionOffset))
	if err != nil {
		t.Fatalf("Decode exit jump: %v", err)
	}
	if exitIns.Op != opcode.JEQUZ {
		t.Fatalf("relocs[0] targets %v, want JEQUZ", exitIns.Op)
	}
	if int(exitIns.Arg2) <= int(relocs[1].SectionOffset) {
		t.Fatalf("loop exit target %d should land after the back jump at %d", exitIns.Arg2, relocs[1].SectionOffset)
	}
}

func TestCompileBoolLiteralsMatchBoolWordConvention(t *testing.T) {
	prog, err := Parse("program P;\nvar x: boolean;\nbegin\n  x := true\nend.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ins := decodeAll(t, container.Program())
	// INCS, PUSHB true, ST, END. true narrows to PUSHB with the all-ones
	// pattern folded into Arg1 as a signed byte (-1); pushImmB sign-extends
	// it back to 0xFFFF at run time (see machine.go's pushImmB).
	if len(ins) != 4 || ins[1].Op != opcode.PUSHB {
		t.Fatalf("unexpected instruction stream: %+v", ins)
	}
	if ins[1].Arg1 != 0xFF {
		t.Fatalf("true literal encoded as Arg1=%#x, want 0xFF (-1 as int8)", ins[1].Arg1)
	}
}

func TestCompileDuplicateIdentifierFails(t *testing.T) {
	prog, err := Parse("program P;\nvar x, x: integer;\nbegin\nend.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected a duplicate-identifier error")
	}
}

func TestCompileUndefinedIdentifierFails(t *testing.T) {
	prog, err := Parse("program P;\nbegin\n  x := 1\nend.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected an undefined-identifier error")
	}
}
