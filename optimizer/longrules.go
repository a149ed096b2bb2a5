/*
 * pcode - Peephole optimizer: 32-bit (long) rule family
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

import "github.com/pmachine/pcode/opcode"

// A compile-time-known 32-bit value appears in the stream as three nodes:
// two adjacent 16-bit pushes (high half, then low half - the same order
// push32 lays one down at runtime) followed by a LONGOP8/LONGOP24 DPUSH
// marker. DPUSH itself has no runtime effect (interp's longop.go dispatch
// is a no-op for it); the marker exists so the optimizer can recognize the
// triple as one logical 32-bit push instead of two independent 16-bit ones.

// longSubOp reports the D-family sub-opcode ins carries, for either
// encoding LONGOP8 (arg1) or LONGOP24 (high byte of arg2) uses.
func longSubOp(ins opcode.Instruction) (uint8, bool) {
	switch ins.Op {
	case opcode.LONGOP8:
		return ins.Arg1, true
	case opcode.LONGOP24:
		return uint8(ins.Arg2 >> 8), true
	default:
		return 0, false
	}
}

// longOpIns builds a LONGOP8 carrying sub as its sub-opcode; folding
// always emits the 8-bit encoding since none of these sub-opcodes need
// LONGOP24's spare low byte.
func longOpIns(sub uint8) opcode.Instruction {
	ins, err := opcode.New(opcode.LONGOP8, int(sub), 0)
	if err != nil {
		panic("optimizer: long sub-opcode does not fit LONGOP8's arg1")
	}
	return ins
}

// longConstAt reports the 32-bit constant starting at window index i, if
// the three nodes there form a push/push/DPUSH triple.
func longConstAt(win []*node, i int) (uint32, bool) {
	if i+2 >= len(win) {
		return 0, false
	}
	hi, ok := constBits(win[i])
	if !ok {
		return 0, false
	}
	lo, ok := constBits(win[i+1])
	if !ok {
		return 0, false
	}
	sub, ok := longSubOp(win[i+2].ins)
	if !ok || sub != opcode.DPUSH {
		return 0, false
	}
	return uint32(hi)<<16 | uint32(lo), true
}

// rewriteLongConst turns the three nodes at win[i:i+3] into a fresh const
// triple carrying v; the caller must have just confirmed them via
// longConstAt (or know them to be three free slots).
func rewriteLongConst(win []*node, i int, v uint32) {
	win[i].ins = pushConst(uint16(v >> 16))
	win[i+1].ins = pushConst(uint16(v))
	win[i+2].ins = longOpIns(opcode.DPUSH)
}

func evalLongUnary(sub uint8, v uint32) (uint32, bool) {
	sv := int32(v)
	switch sub {
	case opcode.DNEG:
		return uint32(-sv), true
	case opcode.DABS:
		if sv < 0 {
			return uint32(-sv), true
		}
		return v, true
	case opcode.DINC:
		return uint32(sv + 1), true
	case opcode.DDEC:
		return uint32(sv - 1), true
	case opcode.DNOT:
		return ^v, true
	default:
		return 0, false
	}
}

func evalLongZeroCompare(sub uint8, v uint32) (bool, bool) {
	sv := int32(v)
	switch sub {
	case opcode.DEQUZ:
		return sv == 0, true
	case opcode.DNEQZ:
		return sv != 0, true
	case opcode.DLTZ:
		return sv < 0, true
	case opcode.DGTEZ:
		return sv >= 0, true
	case opcode.DGTZ:
		return sv > 0, true
	case opcode.DLTEZ:
		return sv <= 0, true
	default:
		return false, false
	}
}

// evalLongBinaryArith mirrors evalBinaryConst at 32-bit width (rules.go),
// matching interp/longop.go's longBin/longUBin semantics exactly.
func evalLongBinaryArith(sub uint8, a, b uint32) (uint32, bool) {
	sa, sb := int32(a), int32(b)
	switch sub {
	case opcode.DADD:
		return uint32(sa + sb), true
	case opcode.DSUB:
		return uint32(sa - sb), true
	case opcode.DMUL:
		return uint32(sa * sb), true
	case opcode.DUMUL:
		return a * b, true
	case opcode.DDIV:
		if sb == 0 {
			return 0, false
		}
		return uint32(sa / sb), true
	case opcode.DUDIV:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case opcode.DMOD:
		if sb == 0 {
			return 0, false
		}
		return uint32(sa % sb), true
	case opcode.DUMOD:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case opcode.DAND:
		return a & b, true
	case opcode.DOR:
		return a | b, true
	case opcode.DSLL:
		return a << (b & 0x1F), true
	case opcode.DSRL:
		return a >> (b & 0x1F), true
	case opcode.DSRA:
		return uint32(sa >> (b & 0x1F)), true
	default:
		return 0, false
	}
}

func evalLongBinaryCompare(sub uint8, a, b uint32) (bool, bool) {
	sa, sb := int32(a), int32(b)
	switch sub {
	case opcode.DEQU:
		return sa == sb, true
	case opcode.DNEQ:
		return sa != sb, true
	case opcode.DLT:
		return sa < sb, true
	case opcode.DGTE:
		return sa >= sb, true
	case opcode.DGT:
		return sa > sb, true
	case opcode.DLTE:
		return sa <= sb, true
	case opcode.DUEQU:
		return a == b, true
	case opcode.DUNEQ:
		return a != b, true
	case opcode.DULT:
		return a < b, true
	case opcode.DUGTE:
		return a >= b, true
	case opcode.DUGT:
		return a > b, true
	case opcode.DULTE:
		return a <= b, true
	default:
		return false, false
	}
}

// ruleLongConstFold evaluates `longconst a; longconst b; LONGOP(binop)` at
// compile time: arithmetic/bitwise sub-opcodes fold to one longconst,
// comparison sub-opcodes fold to a 16-bit boolean push (§4.4, §4.1
// boolWord convention).
func ruleLongConstFold(l *list, win []*node, i int) bool {
	a, ok := longConstAt(win, i)
	if !ok {
		return false
	}
	b, ok := longConstAt(win, i+3)
	if !ok {
		return false
	}
	if i+6 >= len(win) {
		return false
	}
	sub, ok := longSubOp(win[i+6].ins)
	if !ok {
		return false
	}
	if result, aok := evalLongBinaryArith(sub, a, b); aok {
		rewriteLongConst(win, i, result)
		l.remove(win[i+3])
		l.remove(win[i+4])
		l.remove(win[i+5])
		l.remove(win[i+6])
		return true
	}
	if result, cok := evalLongBinaryCompare(sub, a, b); cok {
		win[i].ins = pushConst(boolBits(result))
		l.remove(win[i+1])
		l.remove(win[i+2])
		l.remove(win[i+3])
		l.remove(win[i+4])
		l.remove(win[i+5])
		l.remove(win[i+6])
		return true
	}
	return false
}

// ruleLongUnaryFold evaluates `longconst v; LONGOP(unop)` at compile time:
// DNEG/DABS/DINC/DDEC/DNOT fold to one longconst, the D*Z zero-compares
// fold to a 16-bit boolean push.
func ruleLongUnaryFold(l *list, win []*node, i int) bool {
	v, ok := longConstAt(win, i)
	if !ok {
		return false
	}
	if i+3 >= len(win) {
		return false
	}
	sub, ok := longSubOp(win[i+3].ins)
	if !ok {
		return false
	}
	if result, uok := evalLongUnary(sub, v); uok {
		rewriteLongConst(win, i, result)
		l.remove(win[i+3])
		return true
	}
	if result, zok := evalLongZeroCompare(sub, v); zok {
		win[i].ins = pushConst(boolBits(result))
		l.remove(win[i+1])
		l.remove(win[i+2])
		l.remove(win[i+3])
		return true
	}
	return false
}

// ruleLongIdentity drops a longconst identity operand the same way
// ruleBinaryIdentity does at 16 bits: the longconst here is always the
// second (top-of-stack) operand per push32's ordering, so only the
// right-identity cases apply (0 for add/sub, 1 for mul/div, all-ones for
// and, 0 for or/shifts).
func ruleLongIdentity(l *list, win []*node, i int) bool {
	v, ok := longConstAt(win, i)
	if !ok {
		return false
	}
	if i+3 >= len(win) {
		return false
	}
	sub, ok := longSubOp(win[i+3].ins)
	if !ok {
		return false
	}
	drop := false
	switch sub {
	case opcode.DADD, opcode.DSUB, opcode.DOR, opcode.DSLL, opcode.DSRL, opcode.DSRA:
		drop = v == 0
	case opcode.DMUL, opcode.DUMUL, opcode.DDIV, opcode.DUDIV:
		drop = v == 1
	case opcode.DAND:
		drop = v == 0xFFFFFFFF
	}
	if !drop {
		return false
	}
	l.remove(win[i])
	l.remove(win[i+1])
	l.remove(win[i+2])
	l.remove(win[i+3])
	return true
}

// ruleCnvdFold evaluates `push const16; LONGOP(CNVD|UCNVD)` at compile
// time, splitting the now-known 32-bit result directly into a longconst
// triple instead of leaving the sign/zero-extend for run time.
func ruleCnvdFold(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok {
		return false
	}
	sub, ok := longSubOp(win[i+1].ins)
	if !ok {
		return false
	}
	var v uint32
	switch sub {
	case opcode.CNVD:
		v = uint32(int32(int16(bits)))
	case opcode.UCNVD:
		v = uint32(bits)
	default:
		return false
	}
	if win[i+1].next == nil {
		return false
	}
	win[i].ins = pushConst(uint16(v >> 16))
	win[i+1].ins = pushConst(uint16(v))
	l.insertBefore(win[i+1].next, longOpIns(opcode.DPUSH))
	return true
}

// ruleLongFold is the entry point for the long (32-bit) rule family
// (§4.4): the same constant-folding and identity rewrites as the 16-bit
// rules, applied to the push/push/DPUSH triples that carry a 32-bit
// operand, plus CNVD/UCNVD's compile-time split into such a triple.
func ruleLongFold(l *list, win []*node, i int) bool {
	if ruleLongConstFold(l, win, i) {
		return true
	}
	if ruleLongUnaryFold(l, win, i) {
		return true
	}
	if ruleLongIdentity(l, win, i) {
		return true
	}
	if ruleCnvdFold(l, win, i) {
		return true
	}
	return false
}
