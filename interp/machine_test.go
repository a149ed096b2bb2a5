/*
 * pcode - Interpreter smoke tests
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

package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

func asm(t *testing.T, ins ...opcode.Instruction) []byte {
	t.Helper()
	var out []byte
	for _, in := range ins {
		b, err := opcode.Encode(in)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", in, err)
		}
		out = append(out, b...)
	}
	return out
}

func mkIns(t *testing.T, op opcode.Op, arg1 int, arg2 int32) opcode.Instruction {
	t.Helper()
	ins, err := opcode.New(op, arg1, arg2)
	if err != nil {
		t.Fatalf("New(%v, %d, %d): %v", op, arg1, arg2, err)
	}
	return ins
}

// TestWritelnSum runs PROGRAM t; BEGIN WRITELN(3 + 4); END. reduced to
// its compiled shape: push stdout's handle and two literals, add, hand
// the result to SYSIO WriteInt/WriteLn, then exit cleanly.
func TestWritelnSum(t *testing.T) {
	prog := poff.New()
	prog.ReplaceProgram(asm(t,
		mkIns(t, opcode.PUSH, 0, 1), // stdout handle
		mkIns(t, opcode.PUSH, 0, 3),
		mkIns(t, opcode.PUSH, 0, 4),
		mkIns(t, opcode.ADD, 0, 0),
		mkIns(t, opcode.SYSIO, int(SysWriteInt), 0),
		mkIns(t, opcode.PUSH, 0, 1),
		mkIns(t, opcode.SYSIO, int(SysWriteLn), 0),
		mkIns(t, opcode.PUSH, 0, 0),
		mkIns(t, opcode.OSOP, int(OsExit), 0),
		mkIns(t, opcode.END, 0, 0),
	))

	var out bytes.Buffer
	m := NewMachine(DefaultMemConfig, prog, nil)
	m.Stdout = &out
	m.stdFiles()

	if err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimRight(out.String(), "\n"); got != "7" {
		t.Errorf("output = %q, want \"7\"", out.String())
	}
	if m.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", m.ExitCode())
	}
}

// TestPcalRetFrameDiscipline calls a parameterless leaf procedure and
// checks that PCAL's three pushed link words are fully unwound by RET:
// sp and bp return to exactly where they stood before the call, and
// execution resumes at the instruction right after PCAL.
func TestPcalRetFrameDiscipline(t *testing.T) {
	const procOffset = 7 // PUSHB(2) + PCAL(4) + END(1) = 7

	program := asm(t,
		mkIns(t, opcode.PUSHB, 0, 5), // a value below the frame, left untouched
		mkIns(t, opcode.PCAL, 0, procOffset),
		mkIns(t, opcode.END, 0, 0), // the call's return address
		mkIns(t, opcode.RET, 0, 0), // procOffset: the callee
	)
	if len(program) <= procOffset {
		t.Fatalf("program too short: len=%d, procOffset=%d", len(program), procOffset)
	}

	prog := poff.New()
	prog.ReplaceProgram(program)

	m := NewMachine(DefaultMemConfig, prog, nil)
	m.stdFiles()

	if err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.bp != m.stackBase {
		t.Errorf("bp = %d, want stackBase %d", m.bp, m.stackBase)
	}
	if want := m.stackBase + 2; m.sp != want {
		t.Errorf("sp = %d, want %d (only the PUSHB 5 survives the call)", m.sp, want)
	}
}

func TestHeapAllocDispose(t *testing.T) {
	prog := poff.New()
	prog.ReplaceProgram(asm(t, mkIns(t, opcode.END, 0, 0)))
	m := NewMachine(MemConfig{Globals: 64, Stack: 64, StrStack: 64, Heap: 256}, prog, nil)

	off1, err := m.heap.alloc(32)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	off2, err := m.heap.alloc(32)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if off1 == off2 {
		t.Fatal("two live allocations share an offset")
	}
	m.heap.dispose(off1, 32)
	m.heap.dispose(off2, 32)
	off3, err := m.heap.alloc(256)
	if err != nil {
		t.Fatalf("alloc after coalesce: %v", err)
	}
	if off3 != 0 {
		t.Errorf("offset after full coalesce = %d, want 0", off3)
	}
}
