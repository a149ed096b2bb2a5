/*
 * pcode - Relocation engine
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

// Package reloc implements the two relocation responsibilities of §4.3:
// final base-address application over a finished program stream, and
// tracking a relocation table's previous/current offsets across a single
// optimizer pass while opcodes are deleted and narrowed.
package reloc

import (
	"errors"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

var (
	ErrBadRelocationOrder = errors.New("reloc: previous relocations out of order")
	ErrExtraRelocations   = errors.New("reloc: extra relocations remaining after END")
)

// ApplyFinal walks prog's program stream once and adds progBase to every
// branch/PCAL target and roBase to every LAC pointer, per §4.3
// responsibility 1. Instruction arg2 fields are expected to already carry
// a same-object offset (branches: a resolved label offset; LAC: a
// resolved read-only-data offset) — this step only adds the base that
// places those offsets in the final image.
func ApplyFinal(prog *poff.Container, progBase, roBase uint32) error {
	data := prog.Program()
	out := make([]byte, 0, len(data))

	offset := 0
	for offset < len(data) {
		ins, n, err := opcode.Decode(data, offset)
		if err != nil {
			return err
		}
		if ins.Op == opcode.END {
			break
		}

		if opcode.RequiresRelocation(ins.Op) {
			var base uint32
			if ins.Op == opcode.LAC {
				base = roBase
			} else {
				base = progBase
			}
			ins.Arg2 = uint16(uint32(ins.Arg2) + base)
		}

		encoded, err := opcode.Encode(ins)
		if err != nil {
			return err
		}
		out = append(out, encoded...)
		offset += n
	}

	prog.ReplaceProgram(out)
	return nil
}

// Tracker carries a pass's previous relocation table (what was true on
// input) and accumulates the current table (what will be true on
// output), per §4.3 responsibility 2.
type Tracker struct {
	previous   []poff.Relocation
	idx        int
	current    []poff.Relocation
	lastOffset int64
}

// NewTracker starts tracking against previous, the relocation table that
// described the stream before this pass began.
func NewTracker(previous []poff.Relocation) *Tracker {
	return &Tracker{previous: previous, lastOffset: -1}
}

// Take returns the relocation pending at inputOffset, if the next
// unconsumed previous relocation matches it exactly, and removes it from
// the previous queue. Previous relocations must be delivered in strictly
// ascending input-offset order (§4.3 invariant); a caller presenting
// offsets out of order gets ErrBadRelocationOrder.
func (t *Tracker) Take(inputOffset uint32) (poff.Relocation, bool, error) {
	if t.idx >= len(t.previous) {
		return poff.Relocation{}, false, nil
	}
	next := t.previous[t.idx]
	if int64(next.SectionOffset) < t.lastOffset {
		return poff.Relocation{}, false, ErrBadRelocationOrder
	}
	if next.SectionOffset != inputOffset {
		return poff.Relocation{}, false, nil
	}
	t.idx++
	t.lastOffset = int64(next.SectionOffset)
	return next, true, nil
}

// Keep re-emits a relocation taken from the previous table at its new
// output-stream offset into the current table. The caller invokes this
// only when the opcode that owned the relocation survived the pass
// (possibly narrowed); if the opcode was dropped, the relocation is
// dropped with it by simply not calling Keep.
func (t *Tracker) Keep(reloc poff.Relocation, outputOffset uint32) {
	reloc.SectionOffset = outputOffset
	t.current = append(t.current, reloc)
}

// Finish verifies every previous relocation was matched to some opcode in
// the stream (§4.3 failure handling: "extra relocations").
func (t *Tracker) Finish() error {
	if t.idx < len(t.previous) {
		return ErrExtraRelocations
	}
	return nil
}

// Current returns the relocation table accumulated so far.
func (t *Tracker) Current() []poff.Relocation { return t.current }

// NextPass returns a new Tracker seeded from this pass's current table,
// for the optimizer's driver to hand to the following pass ("current"
// becomes the new "previous").
func (t *Tracker) NextPass() *Tracker {
	return NewTracker(t.current)
}
