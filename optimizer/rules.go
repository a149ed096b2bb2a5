/*
 * pcode - Peephole optimizer: rule families
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

// constBits returns the 16-bit pattern a push opcode carries, and whether
// n is a push at all.
func constBits(n *node) (uint16, bool) {
	switch n.ins.Op {
	case opcode.PUSHB:
		return uint16(int16(int8(n.ins.Arg1))), true
	case opcode.UPUSHB:
		return uint16(n.ins.Arg1), true
	case opcode.PUSH:
		return n.ins.Arg2, true
	default:
		return 0, false
	}
}

func pushConst(bits uint16) opcode.Instruction {
	ins, err := opcode.New(opcode.PUSH, 0, int32(int16(bits)))
	if err != nil {
		panic("optimizer: narrowing a 16-bit constant cannot overflow")
	}
	return ins
}

func boolBits(v bool) uint16 {
	if v {
		return 0xFFFF // true = -1, per §4.4's boolean convention
	}
	return 0
}

func isPureLoad(op opcode.Op) bool {
	switch op {
	case opcode.LD, opcode.LDB, opcode.ULDB, opcode.LDS, opcode.LDSB, opcode.ULDSB,
		opcode.LDX, opcode.LDXB, opcode.ULDXB, opcode.LDSX, opcode.LDSXB, opcode.ULDSXB:
		return true
	default:
		return false
	}
}

var transitiveOps = map[opcode.Op]bool{
	opcode.ADD: true, opcode.MUL: true, opcode.UMUL: true,
	opcode.OR: true, opcode.AND: true, opcode.EQU: true, opcode.NEQ: true,
}

var zeroCompareVariant = map[opcode.Op]opcode.Op{
	opcode.EQU: opcode.EQUZ, opcode.NEQ: opcode.NEQZ, opcode.LT: opcode.LTZ,
	opcode.GTE: opcode.GTEZ, opcode.GT: opcode.GTZ, opcode.LTE: opcode.LTEZ,
}

var condBranchVariant = map[opcode.Op]bool{
	opcode.JEQUZ: true, opcode.JNEQZ: true, opcode.JLTZ: true,
	opcode.JGTEZ: true, opcode.JGTZ: true, opcode.JLTEZ: true,
}

// rule attempts a match at window position i, mutating the list and
// returning true on a single rewrite.
type rule func(l *list, win []*node, i int) bool

// ruleSet lists the rule families in the order they are tried: unary,
// binary (const fold, identity, transitive swap, address-offset fold),
// load/store, stack ordering, misc, and last the long rules (delegated
// to the long table).
var ruleSet = []rule{
	ruleUnaryFold,
	ruleUnaryZeroCompare,
	ruleUnaryCondBranch,
	ruleIncDecCancel,
	ruleStackDeltaMerge,
	ruleBinaryConstFold,
	ruleBinaryIdentity,
	ruleSwapConstAboveLoad,
	ruleAddressOffsetFold,
	ruleDuplicateLoad,
	ruleStoreThenLoad,
	ruleXchgLoads,
	ruleIndsCancelsLoad,
	ruleNegBeforeAddSub,
	ruleLongFold,
}

func evalUnary(op opcode.Op, bits uint16) uint16 {
	v := int16(bits)
	switch op {
	case opcode.NEG:
		return uint16(-v)
	case opcode.ABS:
		if v < 0 {
			return uint16(-v)
		}
		return bits
	case opcode.INC:
		return bits + 1
	case opcode.DEC:
		return bits - 1
	case opcode.NOT:
		return ^bits
	default:
		return bits
	}
}

// ruleUnaryFold folds `push const; NEG|ABS|INC|DEC|NOT` into one push.
func ruleUnaryFold(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok {
		return false
	}
	switch win[i+1].ins.Op {
	case opcode.NEG, opcode.ABS, opcode.INC, opcode.DEC, opcode.NOT:
		result := evalUnary(win[i+1].ins.Op, bits)
		l.remove(win[i])
		win[i+1].ins = pushConst(result)
		return true
	}
	return false
}

func evalZeroCompare(op opcode.Op, bits uint16) bool {
	v := int16(bits)
	switch op {
	case opcode.EQUZ:
		return v == 0
	case opcode.NEQZ:
		return v != 0
	case opcode.LTZ:
		return v < 0
	case opcode.GTEZ:
		return v >= 0
	case opcode.GTZ:
		return v > 0
	case opcode.LTEZ:
		return v <= 0
	default:
		return false
	}
}

// ruleUnaryZeroCompare folds `push const; EQUZ|NEQZ|...` into a boolean push.
func ruleUnaryZeroCompare(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok {
		return false
	}
	switch win[i+1].ins.Op {
	case opcode.EQUZ, opcode.NEQZ, opcode.LTZ, opcode.GTEZ, opcode.GTZ, opcode.LTEZ:
		l.remove(win[i])
		win[i+1].ins = pushConst(boolBits(evalZeroCompare(win[i+1].ins.Op, bits)))
		return true
	}
	return false
}

// ruleUnaryCondBranch folds `push const; J{cond}Z target` into an
// unconditional JMP when the condition holds at compile time, or deletes
// the pair entirely when it does not.
func ruleUnaryCondBranch(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok || !condBranchVariant[win[i+1].ins.Op] {
		return false
	}
	zeroOp := map[opcode.Op]opcode.Op{
		opcode.JEQUZ: opcode.EQUZ, opcode.JNEQZ: opcode.NEQZ, opcode.JLTZ: opcode.LTZ,
		opcode.JGTEZ: opcode.GTEZ, opcode.JGTZ: opcode.GTZ, opcode.JLTEZ: opcode.LTEZ,
	}[win[i+1].ins.Op]
	taken := evalZeroCompare(zeroOp, bits)
	if taken {
		jmp, err := opcode.New(opcode.JMP, 0, int32(win[i+1].ins.Arg2))
		if err != nil {
			return false
		}
		l.remove(win[i])
		win[i+1].ins = jmp
	} else {
		l.remove(win[i+1])
		l.remove(win[i])
	}
	return true
}

// ruleIncDecCancel removes an adjacent INC/DEC, DEC/INC pair.
func ruleIncDecCancel(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	a, b := win[i].ins.Op, win[i+1].ins.Op
	if (a == opcode.INC && b == opcode.DEC) || (a == opcode.DEC && b == opcode.INC) {
		l.remove(win[i])
		l.remove(win[i+1])
		return true
	}
	return false
}

// ruleStackDeltaMerge merges two adjacent INDS (or two adjacent INCS) by
// summing their deltas.
func ruleStackDeltaMerge(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	a, b := win[i], win[i+1]
	if a.ins.Op != b.ins.Op || (a.ins.Op != opcode.INDS && a.ins.Op != opcode.INCS) {
		return false
	}
	sum := int32(a.ins.Arg2Signed()) + int32(b.ins.Arg2Signed())
	ins, err := opcode.New(a.ins.Op, 0, sum)
	if err != nil {
		return false
	}
	l.remove(a)
	b.ins = ins
	return true
}

func evalBinaryConst(op opcode.Op, a, b uint16) (uint16, bool) {
	sa, sb := int16(a), int16(b)
	switch op {
	case opcode.ADD:
		return a + b, true
	case opcode.SUB:
		return a - b, true
	case opcode.MUL, opcode.UMUL:
		return a * b, true
	case opcode.DIV:
		if sb == 0 {
			return 0, false
		}
		return uint16(sa / sb), true
	case opcode.UDIV:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case opcode.MOD:
		if sb == 0 {
			return 0, false
		}
		return uint16(sa % sb), true
	case opcode.UMOD:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case opcode.AND:
		return a & b, true
	case opcode.OR:
		return a | b, true
	case opcode.XOR:
		return a ^ b, true
	case opcode.SLL:
		return a << (b & 0xF), true
	case opcode.SRL:
		return a >> (b & 0xF), true
	case opcode.SRA:
		return uint16(sa >> (b & 0xF)), true
	case opcode.EQU:
		return boolBits(sa == sb), true
	case opcode.NEQ:
		return boolBits(sa != sb), true
	case opcode.LT:
		return boolBits(sa < sb), true
	case opcode.GTE:
		return boolBits(sa >= sb), true
	case opcode.GT:
		return boolBits(sa > sb), true
	case opcode.LTE:
		return boolBits(sa <= sb), true
	case opcode.UEQU:
		return boolBits(a == b), true
	case opcode.UNEQ:
		return boolBits(a != b), true
	case opcode.ULT:
		return boolBits(a < b), true
	case opcode.UGTE:
		return boolBits(a >= b), true
	case opcode.UGT:
		return boolBits(a > b), true
	case opcode.ULTE:
		return boolBits(a <= b), true
	default:
		return 0, false
	}
}

// ruleBinaryConstFold evaluates `push c1; push c2; OP` at compile time.
func ruleBinaryConstFold(l *list, win []*node, i int) bool {
	if i+2 >= len(win) {
		return false
	}
	a, ok1 := constBits(win[i])
	b, ok2 := constBits(win[i+1])
	if !ok1 || !ok2 {
		return false
	}
	result, ok := evalBinaryConst(win[i+2].ins.Op, a, b)
	if !ok {
		return false
	}
	l.remove(win[i])
	l.remove(win[i+1])
	win[i+2].ins = pushConst(result)
	return true
}

func powerOfTwo(v uint16) (int, bool) {
	if v < 2 || v > 16384 {
		return 0, false
	}
	for k := 1; k <= 14; k++ {
		if v == uint16(1)<<uint(k) {
			return k, true
		}
	}
	return 0, false
}

// ruleBinaryIdentity applies the constant-identity rewrite table: `push
// const; OP` where const is an identity or near-identity operand of OP.
func ruleBinaryIdentity(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok {
		return false
	}
	v := int16(bits)
	op := win[i+1].ins.Op

	switch op {
	case opcode.ADD, opcode.SUB:
		switch {
		case v == 0:
			l.remove(win[i])
			l.remove(win[i+1])
			return true
		case op == opcode.ADD && v == 1, op == opcode.SUB && v == -1:
			l.remove(win[i])
			win[i+1].ins = opcode.Instruction{Op: opcode.INC}
			return true
		case op == opcode.ADD && v == -1, op == opcode.SUB && v == 1:
			l.remove(win[i])
			win[i+1].ins = opcode.Instruction{Op: opcode.DEC}
			return true
		}
	case opcode.MUL, opcode.UMUL, opcode.DIV, opcode.UDIV:
		if v == 1 {
			l.remove(win[i])
			l.remove(win[i+1])
			return true
		}
		if k, ok := powerOfTwo(bits); ok {
			switch op {
			case opcode.MUL, opcode.UMUL:
				win[i].ins = pushConst(uint16(k))
				win[i+1].ins = opcode.Instruction{Op: opcode.SLL}
			case opcode.DIV:
				win[i].ins = pushConst(uint16(k))
				win[i+1].ins = opcode.Instruction{Op: opcode.SRA}
			case opcode.UDIV:
				win[i].ins = pushConst(uint16(k))
				win[i+1].ins = opcode.Instruction{Op: opcode.SRL}
			}
			return true
		}
	case opcode.AND:
		if bits == 0xFFFF {
			l.remove(win[i])
			l.remove(win[i+1])
			return true
		}
	case opcode.OR, opcode.SLL, opcode.SRL, opcode.SRA:
		if bits == 0 {
			l.remove(win[i])
			l.remove(win[i+1])
			return true
		}
	case opcode.EQU, opcode.NEQ, opcode.LT, opcode.GTE, opcode.GT, opcode.LTE:
		zv := zeroCompareVariant[op]
		switch v {
		case 0:
			l.remove(win[i])
			win[i+1].ins = opcode.Instruction{Op: zv}
			return true
		case 1:
			win[i].ins = opcode.Instruction{Op: opcode.DEC}
			win[i+1].ins = opcode.Instruction{Op: zv}
			return true
		case -1:
			win[i].ins = opcode.Instruction{Op: opcode.INC}
			win[i+1].ins = opcode.Instruction{Op: zv}
			return true
		}
	}
	return false
}

// ruleSwapConstAboveLoad reorders `push const; load; OP` to `load; push
// const; OP` when OP is transitive, so the identity rule above can then
// match the constant directly against the operator.
func ruleSwapConstAboveLoad(l *list, win []*node, i int) bool {
	if i+2 >= len(win) {
		return false
	}
	_, isConst := constBits(win[i])
	if !isConst || !isPureLoad(win[i+1].ins.Op) || !transitiveOps[win[i+2].ins.Op] {
		return false
	}
	win[i].ins, win[i+1].ins = win[i+1].ins, win[i].ins
	return true
}

func isAddressLoad(op opcode.Op) bool {
	switch op {
	case opcode.LA, opcode.LAS, opcode.LAX, opcode.LASX:
		return true
	default:
		return false
	}
}

// ruleAddressOffsetFold folds a constant adjacent to a base/nesting
// address-load into the load's own offset, for ADD/SUB. LAC is excluded:
// it carries its own read-only-data relocation and must not absorb a
// second offset here (§4.4).
func ruleAddressOffsetFold(l *list, win []*node, i int) bool {
	if i+2 >= len(win) {
		return false
	}
	bits, ok := constBits(win[i])
	if !ok || !isAddressLoad(win[i+1].ins.Op) {
		return false
	}
	op := win[i+2].ins.Op
	if op != opcode.ADD && op != opcode.SUB {
		return false
	}
	delta := int32(int16(bits))
	if op == opcode.SUB {
		delta = -delta
	}
	newOffset := int32(win[i+1].ins.Arg2Signed()) + delta
	ins, err := opcode.New(win[i+1].ins.Op, int(win[i+1].ins.Arg1), newOffset)
	if err != nil {
		return false
	}
	l.remove(win[i])
	l.remove(win[i+2])
	win[i+1].ins = ins
	return true
}

func loadKey(ins opcode.Instruction) (opcode.Op, uint8, uint16) {
	return ins.Op, ins.Arg1, ins.Arg2
}

// ruleDuplicateLoad folds two identical non-indexed loads into one load
// plus DUP.
func ruleDuplicateLoad(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	a, b := win[i].ins, win[i+1].ins
	switch a.Op {
	case opcode.LD, opcode.LDB, opcode.ULDB, opcode.LDS, opcode.LDSB, opcode.ULDSB:
	default:
		return false
	}
	aOp, aArg1, aArg2 := loadKey(a)
	bOp, bArg1, bArg2 := loadKey(b)
	if aOp != bOp || aArg1 != bArg1 || aArg2 != bArg2 {
		return false
	}
	l.remove(win[i+1])
	l.insertBefore(win[i].next, opcode.Instruction{Op: opcode.DUP})
	return true
}

func storeLoadPair(store opcode.Op) (opcode.Op, bool) {
	switch store {
	case opcode.ST:
		return opcode.LD, true
	case opcode.STS:
		return opcode.LDS, true
	default:
		return 0, false
	}
}

// ruleStoreThenLoad folds `store x; load x` (same address, matching
// size/signedness, word-width only) into `DUP; store x`.
func ruleStoreThenLoad(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	store, load := win[i].ins, win[i+1].ins
	wantLoad, ok := storeLoadPair(store.Op)
	if !ok || load.Op != wantLoad {
		return false
	}
	if store.Arg1 != load.Arg1 || store.Arg2 != load.Arg2 {
		return false
	}
	l.remove(win[i+1])
	l.insertBefore(win[i], opcode.Instruction{Op: opcode.DUP})
	return true
}

// ruleXchgLoads removes an XCHG between two pure loads by emitting them
// in swapped order instead.
func ruleXchgLoads(l *list, win []*node, i int) bool {
	if i+2 >= len(win) {
		return false
	}
	if !isPureLoad(win[i].ins.Op) || !isPureLoad(win[i+1].ins.Op) || win[i+2].ins.Op != opcode.XCHG {
		return false
	}
	win[i].ins, win[i+1].ins = win[i+1].ins, win[i].ins
	l.remove(win[i+2])
	return true
}

func loadWidth(op opcode.Op) (int, bool) {
	switch op {
	case opcode.LD, opcode.LDS, opcode.LDX, opcode.LDSX:
		return 1, true
	case opcode.LDB, opcode.ULDB, opcode.LDSB, opcode.ULDSB, opcode.LDXB, opcode.ULDXB, opcode.LDSXB, opcode.ULDSXB:
		return 1, true
	default:
		return 0, false
	}
}

// ruleIndsCancelsLoad cancels a load immediately discarded by INDS: the
// load has no observable effect (no side effects to preserve) once its
// result is thrown away, so both opcodes vanish; a larger INDS simply
// loses the one word's worth it no longer needs to discard.
func ruleIndsCancelsLoad(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	width, ok := loadWidth(win[i].ins.Op)
	if !ok || win[i+1].ins.Op != opcode.INDS {
		return false
	}
	n := int(win[i+1].ins.Arg2Signed())
	if n < width {
		return false
	}
	l.remove(win[i])
	if n == width {
		l.remove(win[i+1])
	} else {
		ins, err := opcode.New(opcode.INDS, 0, int32(n-width))
		if err != nil {
			return false
		}
		win[i+1].ins = ins
	}
	return true
}

// ruleNegBeforeAddSub rewrites `NEG; ADD` to `SUB` and `NEG; SUB` to
// `ADD` (§4.4 misc rule).
func ruleNegBeforeAddSub(l *list, win []*node, i int) bool {
	if i+1 >= len(win) {
		return false
	}
	if win[i].ins.Op != opcode.NEG {
		return false
	}
	switch win[i+1].ins.Op {
	case opcode.ADD:
		l.remove(win[i])
		win[i+1].ins = opcode.Instruction{Op: opcode.SUB}
		return true
	case opcode.SUB:
		l.remove(win[i])
		win[i+1].ins = opcode.Instruction{Op: opcode.ADD}
		return true
	}
	return false
}
