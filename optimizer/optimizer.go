/*
 * pcode - Peephole optimizer: pass driver
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
	"errors"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
	"github.com/pmachine/pcode/reloc"
)

// ErrMalformed signals a program stream that could not be decoded or
// whose labels/relocations do not resolve.
var ErrMalformed = errors.New("optimizer: malformed instruction stream")

func decodeStream(data []byte) ([]opcode.Instruction, error) {
	var out []opcode.Instruction
	offset := 0
	for {
		ins, n, err := opcode.Decode(data, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
		if ins.Op == opcode.END {
			break
		}
		offset += n
	}
	return out, nil
}

func encodeStream(stream []opcode.Instruction) []byte {
	var out []byte
	for _, ins := range stream {
		enc, err := opcode.Encode(ins)
		if err != nil {
			continue
		}
		out = append(out, enc...)
	}
	return out
}

// buildTaggedList decodes data and associates each instruction with any
// previous relocation whose section offset matches its position, using a
// reloc.Tracker so the pass can re-emit relocations at their shifted
// output offsets once rewriting is done.
func buildTaggedList(data []byte, previous []poff.Relocation) (*list, *reloc.Tracker, error) {
	stream, err := decodeStream(data)
	if err != nil {
		return nil, nil, err
	}
	tracker := reloc.NewTracker(previous)
	l := &list{}
	offset := 0
	for _, ins := range stream {
		n := &node{ins: ins}
		if r, found, err := tracker.Take(uint32(offset)); err != nil {
			return nil, nil, err
		} else if found {
			tag := r
			n.relocTag = &tag
		}
		l.append(n)
		size, ok := opcode.Format(ins.Op)
		if !ok {
			return nil, nil, ErrMalformed
		}
		offset += size
	}
	return l, tracker, nil
}

// collectRelocations walks l computing each surviving node's output byte
// offset and rebuilds the relocation table from the nodes still tagged,
// finishing tracker to enforce §4.3's "extra relocations" invariant.
func collectRelocations(l *list, tracker *reloc.Tracker) ([]poff.Relocation, error) {
	var out []poff.Relocation
	offset := uint32(0)
	for n := l.head; n != nil; n = n.next {
		if n.relocTag != nil {
			tag := *n.relocTag
			tag.SectionOffset = offset
			out = append(out, tag)
		}
		size, ok := opcode.Format(n.ins.Op)
		if !ok {
			return nil, ErrMalformed
		}
		offset += uint32(size)
	}
	if err := tracker.Finish(); err != nil {
		return nil, err
	}
	return out, nil
}

// StringStackPass is Pass 0: front-end temporary-string cleanup. It is a
// deliberate no-op extension point for this toolchain revision — the
// front end does not yet emit the wasteful string-stack churn this pass
// would clean up, so there is nothing for it to do; Pass 1 and Pass 2
// still run unconditionally after it.
func StringStackPass(prog *poff.Container) (int, error) {
	return 0, nil
}

// LocalPeephole is Pass 1 (§4.4 item 2): applies the rule families to a
// fixed point, re-synchronizing the relocation table against the
// rewritten stream as it goes.
func LocalPeephole(prog *poff.Container) (int, error) {
	l, tracker, err := buildTaggedList(prog.Program(), prog.Relocations())
	if err != nil {
		return 0, err
	}

	total := 0
	for {
		changed := runToFixedPoint(l)
		total += changed
		if changed == 0 {
			break
		}
	}

	relocs, err := collectRelocations(l, tracker)
	if err != nil {
		return 0, err
	}
	prog.ReplaceProgram(encodeStream(l.toSlice()))
	prog.ReplaceRelocations(relocs)
	return total, nil
}

func runToFixedPoint(l *list) int {
	changed := 0
	cur := l.head
	for cur != nil {
		if cur.pseudo() {
			cur = cur.next
			continue
		}
		win := buildWindow(cur)
		if fireRules(l, win) {
			changed++
			if cur.prev != nil {
				cur = cur.prev
			} else {
				cur = l.head
			}
			continue
		}
		cur = cur.next
	}
	return changed
}

func fireRules(l *list, win []*node) bool {
	for i := range win {
		for _, r := range ruleSet {
			if r(l, win, i) {
				return true
			}
		}
	}
	return false
}

// Finalize is Pass 2 (§4.4 item 3): resolves LABEL pseudo-ops into
// concrete program offsets, strips pseudo-ops, emits line-number entries
// keyed by output offset, and applies the final PC/read-only-data base
// addresses via the relocation engine.
func Finalize(prog *poff.Container, progBase, roBase uint32) error {
	l, tracker, err := buildTaggedList(prog.Program(), prog.Relocations())
	if err != nil {
		return err
	}

	labelOffsets := make(map[uint16]uint32)
	type linePos struct {
		line   uint32
		offset uint32
	}
	var lines []linePos

	offset := uint32(0)
	for n := l.head; n != nil; n = n.next {
		switch n.ins.Op {
		case opcode.LABEL:
			labelOffsets[n.ins.Arg2] = offset
		case opcode.LINE:
			lines = append(lines, linePos{line: uint32(n.ins.Arg2), offset: offset})
		case opcode.NOP:
		default:
			size, ok := opcode.Format(n.ins.Op)
			if !ok {
				return ErrMalformed
			}
			offset += uint32(size)
		}
	}

	var finalStream []opcode.Instruction
	var relocs []poff.Relocation
	outOffset := uint32(0)
	for n := l.head; n != nil; n = n.next {
		switch n.ins.Op {
		case opcode.LABEL, opcode.LINE, opcode.NOP:
			continue
		}
		ins := n.ins
		if opcode.RequiresRelocation(ins.Op) && ins.Op != opcode.LAC {
			target, ok := labelOffsets[ins.Arg2]
			if !ok {
				return ErrMalformed
			}
			ins.Arg2 = uint16(target)
		}
		if n.relocTag != nil {
			tag := *n.relocTag
			tag.SectionOffset = outOffset
			relocs = append(relocs, tag)
		}
		finalStream = append(finalStream, ins)
		size, _ := opcode.Format(ins.Op)
		outOffset += uint32(size)
	}
	if err := tracker.Finish(); err != nil {
		return err
	}

	prog.ReplaceProgram(encodeStream(finalStream))
	prog.ReplaceRelocations(relocs)

	var lineEntries []poff.LineEntry
	for _, lp := range lines {
		lineEntries = append(lineEntries, poff.LineEntry{Line: lp.line, ProgramOffset: lp.offset})
	}
	prog.ReplaceLines(lineEntries)

	return reloc.ApplyFinal(prog, progBase, roBase)
}

// Run executes the full three-pass pipeline in place and returns the
// number of rewrites Pass 1 made.
func Run(prog *poff.Container, progBase, roBase uint32) (int, error) {
	if _, err := StringStackPass(prog); err != nil {
		return 0, err
	}
	changes, err := LocalPeephole(prog)
	if err != nil {
		return 0, err
	}
	if err := Finalize(prog, progBase, roBase); err != nil {
		return 0, err
	}
	return changes, nil
}
