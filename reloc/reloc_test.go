/*
 * pcode - Relocation engine tests
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

package reloc

import (
	"testing"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

func encodeOrFatal(t *testing.T, op opcode.Op, arg1 int, arg2 int32) []byte {
	t.Helper()
	ins, err := opcode.New(op, arg1, arg2)
	if err != nil {
		t.Fatalf("New(%v): %v", op, err)
	}
	data, err := opcode.Encode(ins)
	if err != nil {
		t.Fatalf("Encode(%v): %v", op, err)
	}
	return data
}

func TestApplyFinal(t *testing.T) {
	c := poff.New()
	var program []byte
	program = append(program, encodeOrFatal(t, opcode.ADD, 0, 0)...)
	jmpOff := len(program)
	program = append(program, encodeOrFatal(t, opcode.JMP, 0, 10)...)
	lacOff := len(program)
	program = append(program, encodeOrFatal(t, opcode.LAC, 0, 4)...)
	program = append(program, encodeOrFatal(t, opcode.END, 0, 0)...)
	c.ReplaceProgram(program)

	if err := ApplyFinal(c, 0x1000, 0x2000); err != nil {
		t.Fatalf("ApplyFinal: %v", err)
	}

	ins, _, err := opcode.Decode(c.Program(), jmpOff)
	if err != nil {
		t.Fatalf("Decode JMP: %v", err)
	}
	if ins.Arg2 != 0x1000+10 {
		t.Errorf("JMP arg2 = %#x, want %#x", ins.Arg2, 0x1000+10)
	}

	ins, _, err = opcode.Decode(c.Program(), lacOff)
	if err != nil {
		t.Fatalf("Decode LAC: %v", err)
	}
	if ins.Arg2 != 0x2000+4 {
		t.Errorf("LAC arg2 = %#x, want %#x", ins.Arg2, 0x2000+4)
	}
}

func TestTrackerKeepAndDrop(t *testing.T) {
	previous := []poff.Relocation{
		{Type: poff.RelocProgram, SectionOffset: 1},
		{Type: poff.RelocRoData, SectionOffset: 4},
	}
	tr := NewTracker(previous)

	// Opcode at input offset 0 survives untouched, no relocation owed.
	if _, found, err := tr.Take(0); err != nil || found {
		t.Fatalf("Take(0) = found=%v, err=%v, want false, nil", found, err)
	}

	// Opcode at input offset 1 owns a relocation and survives, narrowed
	// down so its output offset shifts to 0.
	r, found, err := tr.Take(1)
	if err != nil || !found {
		t.Fatalf("Take(1) = found=%v, err=%v, want true, nil", found, err)
	}
	tr.Keep(r, 0)

	// Opcode at input offset 4 owns a relocation but is deleted by the
	// pass: the caller simply never calls Keep for it.
	if _, found, err := tr.Take(4); err != nil || !found {
		t.Fatalf("Take(4) = found=%v, err=%v, want true, nil", found, err)
	}

	if err := tr.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	current := tr.Current()
	if len(current) != 1 {
		t.Fatalf("len(Current()) = %d, want 1", len(current))
	}
	if current[0].SectionOffset != 0 || current[0].Type != poff.RelocProgram {
		t.Errorf("Current()[0] = %+v, want offset 0 type RelocProgram", current[0])
	}
}

func TestTrackerExtraRelocations(t *testing.T) {
	previous := []poff.Relocation{{SectionOffset: 5}}
	tr := NewTracker(previous)
	// Stream ends before offset 5 is ever reached.
	if err := tr.Finish(); err != ErrExtraRelocations {
		t.Errorf("Finish() = %v, want %v", err, ErrExtraRelocations)
	}
}

func TestTrackerOutOfOrder(t *testing.T) {
	previous := []poff.Relocation{
		{SectionOffset: 5},
		{SectionOffset: 2},
	}
	tr := NewTracker(previous)
	if _, found, err := tr.Take(5); err != nil || !found {
		t.Fatalf("Take(5) = found=%v, err=%v, want true, nil", found, err)
	}
	if _, _, err := tr.Take(2); err != ErrBadRelocationOrder {
		t.Errorf("Take(2) = %v, want %v", err, ErrBadRelocationOrder)
	}
}

func TestTrackerNextPass(t *testing.T) {
	previous := []poff.Relocation{{SectionOffset: 0}}
	tr := NewTracker(previous)
	r, _, _ := tr.Take(0)
	tr.Keep(r, 0)

	next := tr.NextPass()
	if _, found, err := next.Take(0); err != nil || !found {
		t.Fatalf("next.Take(0) = found=%v, err=%v, want true, nil", found, err)
	}
}
