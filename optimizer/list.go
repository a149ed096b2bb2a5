/*
 * pcode - Peephole optimizer: instruction list and sliding window
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

// Package optimizer implements the multi-pass local optimizer (§4.4): a
// sliding-window peephole pass driven to a fixed point over a doubly
// linked instruction list, followed by a finalize pass that resolves
// labels, applies relocations and strips pseudo-ops.
package optimizer

import (
	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

// windowSize is the optimizer's fixed sliding-window width (§4.4).
const windowSize = 16

// node is one instruction slot in the optimizer's working list. LABEL,
// LINE and NOP occupy a node but are excluded from the "pointer list" the
// window is built from.
type node struct {
	ins      opcode.Instruction
	prev     *node
	next     *node
	relocTag *poff.Relocation // non-nil if a previous-pass relocation owned this instruction
}

func (n *node) pseudo() bool {
	switch n.ins.Op {
	case opcode.LABEL, opcode.LINE, opcode.NOP:
		return true
	default:
		return false
	}
}

// isBoundary reports whether op is one of the control-flow opcodes that
// truncates the pointer list (§4.4): unconditional transfers end the
// window after themselves; conditional branches close the window
// including themselves.
func isBoundary(op opcode.Op) bool {
	switch op {
	case opcode.RET, opcode.END, opcode.JMP, opcode.PCAL,
		opcode.JEQUZ, opcode.JNEQZ, opcode.JLTZ, opcode.JGTEZ, opcode.JGTZ, opcode.JLTEZ:
		return true
	default:
		return false
	}
}

// list is a doubly linked instruction stream the optimizer mutates in
// place; nodes are spliced out on deletion and replaced on rewrite.
type list struct {
	head, tail *node
}

func newList(stream []opcode.Instruction) *list {
	l := &list{}
	for _, ins := range stream {
		l.append(&node{ins: ins})
	}
	return l
}

func (l *list) append(n *node) {
	if l.tail == nil {
		l.head, l.tail = n, n
		return
	}
	n.prev = l.tail
	l.tail.next = n
	l.tail = n
}

// remove splices n out of the list.
func (l *list) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
}

// insertBefore splices a new node carrying ins immediately before at.
func (l *list) insertBefore(at *node, ins opcode.Instruction) *node {
	n := &node{ins: ins, prev: at.prev, next: at}
	if at.prev != nil {
		at.prev.next = n
	} else {
		l.head = n
	}
	at.prev = n
	return n
}

// toSlice flattens the list back into an instruction stream, in order.
func (l *list) toSlice() []opcode.Instruction {
	var out []opcode.Instruction
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.ins)
	}
	return out
}

// buildWindow collects up to windowSize pointer-list nodes starting at
// start (which must itself be a non-pseudo node), stopping early at a
// control-flow boundary or at a LABEL (§4.4: LABEL is never a window
// member, but its presence still ends the scan since control may join
// there from elsewhere).
func buildWindow(start *node) []*node {
	win := make([]*node, 0, windowSize)
	n := start
	for n != nil && len(win) < windowSize {
		if n.pseudo() {
			if n.ins.Op == opcode.LABEL {
				break
			}
			n = n.next
			continue
		}
		win = append(win, n)
		if isBoundary(n.ins.Op) {
			break
		}
		n = n.next
	}
	return win
}
