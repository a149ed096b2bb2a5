/*
 * pcode - P-machine interpreter
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

// Package interp implements the P-machine (§3.3, §4.5): a fetch-execute
// dispatch loop over a contiguous byte-addressable memory holding global
// data, a base-register-framed Pascal stack, a string stack and a heap,
// plus the SYSIO/LIB/SETOP/FLOAT/OSOP service-call dispatch tables.
package interp

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

// MemConfig sizes the four memory regions, matching prun's -a/-s/-t/-n
// flags.
type MemConfig struct {
	Globals   uint32
	Stack     uint32
	StrStack  uint32
	Heap      uint32
}

// DefaultMemConfig matches the teacher-style small defaults a CLI falls
// back to when a size flag is not given.
var DefaultMemConfig = MemConfig{Globals: 4096, Stack: 16384, StrStack: 8192, Heap: 65536}

// Machine is one P-machine: program, read-only data, and the four memory
// regions (§3.3). The store invariant is globals < stack_base ≤ sp < csp
// ≤ hpb ≤ hsp (§5).
type Machine struct {
	mem []byte

	stackBase uint32
	csp0      uint32 // string-stack region base
	hpb       uint32 // heap base
	hsp       uint32 // heap top (hpb + heap size)

	pc  uint32
	sp  uint32
	bp  uint32
	csp uint32

	prog   []byte
	rodata []byte
	heap   *heap

	files  map[int]*fileHandle
	nextFD int

	Stdout io.Writer
	Stdin  io.Reader

	exitCode int
	exited   bool

	log *slog.Logger
}

// NewMachine allocates a machine's memory regions per cfg and loads
// prog's program text and read-only data.
func NewMachine(cfg MemConfig, prog *poff.Container, log *slog.Logger) *Machine {
	stackBase := cfg.Globals
	csp0 := stackBase + cfg.Stack
	hpb := csp0 + cfg.StrStack
	hsp := hpb + cfg.Heap

	m := &Machine{
		mem:       make([]byte, hsp),
		stackBase: stackBase,
		csp0:      csp0,
		hpb:       hpb,
		hsp:       hsp,
		sp:        stackBase,
		bp:        stackBase,
		csp:       csp0,
		prog:      prog.Program(),
		rodata:    prog.RoData(),
		heap:      newHeap(cfg.Heap),
		files:     make(map[int]*fileHandle),
		Stdout:    os.Stdout,
		Stdin:     os.Stdin,
		log:       log,
	}
	m.stdFiles()
	return m
}

// ExitCode returns the code EXIT/OSOP exit set, or 0 if the program ran
// to its final END without calling it.
func (m *Machine) ExitCode() int { return m.exitCode }

func (m *Machine) read16(addr uint32) uint16 {
	return uint16(m.mem[addr])<<8 | uint16(m.mem[addr+1])
}

func (m *Machine) write16(addr uint32, v uint16) {
	m.mem[addr] = byte(v >> 8)
	m.mem[addr+1] = byte(v)
}

func (m *Machine) read8(addr uint32) uint8 { return m.mem[addr] }

func (m *Machine) write8(addr uint32, v uint8) { m.mem[addr] = v }

func (m *Machine) push16(v uint16) error {
	if m.sp+2 > m.csp0 {
		return ErrStackOverflow
	}
	m.write16(m.sp, v)
	m.sp += 2
	return nil
}

func (m *Machine) pop16() (uint16, error) {
	if m.sp < m.stackBase+2 {
		return 0, ErrStackUnderflow
	}
	m.sp -= 2
	return m.read16(m.sp), nil
}

func (m *Machine) peek16(depth uint32) (uint16, error) {
	addr := m.sp - 2 - depth*2
	if addr < m.stackBase {
		return 0, ErrStackUnderflow
	}
	return m.read16(addr), nil
}

// frameAt walks the static chain level steps up from bp and returns the
// resulting frame's base register (§3.3: LAS/LDS/STS use arg1 as the
// nesting-level delta).
func (m *Machine) frameAt(bp uint32, level int) uint32 {
	for i := 0; i < level; i++ {
		bp = uint32(m.read16(bp - 4))
	}
	return bp
}

// Run executes from entry until EXIT, OSOP exit, RET at the outermost
// frame, or a runtime error.
func (m *Machine) Run(entry uint32) error {
	m.pc = entry
	for !m.exited {
		done, err := m.Step()
		if done || err != nil {
			return err
		}
	}
	return nil
}

// Step decodes and executes one instruction at the current pc. It
// reports done=true once the program reaches its final END or an
// OSOP/outermost-RET exit, matching Run's own stopping conditions; a
// debug console single-steps by calling this directly instead of Run.
func (m *Machine) Step() (done bool, err error) {
	ins, n, err := opcode.Decode(m.prog, int(m.pc))
	if err != nil {
		return true, fmt.Errorf("interp: decode at pc=%d: %w", m.pc, err)
	}
	if ins.Op == opcode.END {
		return true, nil
	}
	m.pc += uint32(n)
	if err := m.step(ins); err != nil {
		return true, fmt.Errorf("interp: pc=%d op=%s: %w", m.pc, opcode.Name(ins.Op), err)
	}
	return m.exited, nil
}

// PC, SP and BP expose the current register file for a debug console's
// "regs" command; the interpreter never needs them internally beyond the
// unexported fields.
func (m *Machine) PC() uint32 { return m.pc }
func (m *Machine) SP() uint32 { return m.sp }
func (m *Machine) BP() uint32 { return m.bp }

func (m *Machine) step(ins opcode.Instruction) error {
	fn, ok := dispatch[ins.Op]
	if !ok {
		return ErrBadOpcode
	}
	return fn(m, ins)
}

type opFunc func(*Machine, opcode.Instruction) error

var dispatch map[opcode.Op]opFunc

func init() {
	dispatch = map[opcode.Op]opFunc{
		opcode.NOP:  func(m *Machine, ins opcode.Instruction) error { return nil },
		opcode.LINE: func(m *Machine, ins opcode.Instruction) error { return nil },

		opcode.ADD:  binOp(func(a, b int16) int16 { return a + b }),
		opcode.SUB:  binOp(func(a, b int16) int16 { return a - b }),
		opcode.MUL:  binOp(func(a, b int16) int16 { return a * b }),
		opcode.UMUL: ubinOp(func(a, b uint16) uint16 { return a * b }),
		opcode.DIV:  binOpErr(func(a, b int16) (int16, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a / b, nil
		}),
		opcode.UDIV: ubinOpErr(func(a, b uint16) (uint16, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a / b, nil
		}),
		opcode.MOD: binOpErr(func(a, b int16) (int16, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a % b, nil
		}),
		opcode.UMOD: ubinOpErr(func(a, b uint16) (uint16, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a % b, nil
		}),
		opcode.NEG: unOp(func(v int16) int16 { return -v }),
		opcode.ABS: unOp(func(v int16) int16 {
			if v < 0 {
				return -v
			}
			return v
		}),
		opcode.INC: unOp(func(v int16) int16 { return v + 1 }),
		opcode.DEC: unOp(func(v int16) int16 { return v - 1 }),
		opcode.NOT: uunOp(func(v uint16) uint16 { return ^v }),
		opcode.AND: ubinOp(func(a, b uint16) uint16 { return a & b }),
		opcode.OR:  ubinOp(func(a, b uint16) uint16 { return a | b }),
		opcode.XOR: ubinOp(func(a, b uint16) uint16 { return a ^ b }),
		opcode.SLL: ubinOp(func(a, b uint16) uint16 { return a << (b & 0xF) }),
		opcode.SRL: ubinOp(func(a, b uint16) uint16 { return a >> (b & 0xF) }),
		opcode.SRA: func(m *Machine, ins opcode.Instruction) error {
			b, err := m.pop16()
			if err != nil {
				return err
			}
			a, err := m.pop16()
			if err != nil {
				return err
			}
			return m.push16(uint16(int16(a) >> (b & 0xF)))
		},

		opcode.EQUZ:  zcmp(func(v int16) bool { return v == 0 }),
		opcode.NEQZ:  zcmp(func(v int16) bool { return v != 0 }),
		opcode.LTZ:   zcmp(func(v int16) bool { return v < 0 }),
		opcode.GTEZ:  zcmp(func(v int16) bool { return v >= 0 }),
		opcode.GTZ:   zcmp(func(v int16) bool { return v > 0 }),
		opcode.LTEZ:  zcmp(func(v int16) bool { return v <= 0 }),
		opcode.EQU:   cmp(func(a, b int16) bool { return a == b }),
		opcode.NEQ:   cmp(func(a, b int16) bool { return a != b }),
		opcode.LT:    cmp(func(a, b int16) bool { return a < b }),
		opcode.GTE:   cmp(func(a, b int16) bool { return a >= b }),
		opcode.GT:    cmp(func(a, b int16) bool { return a > b }),
		opcode.LTE:   cmp(func(a, b int16) bool { return a <= b }),
		opcode.UEQU:  ucmp(func(a, b uint16) bool { return a == b }),
		opcode.UNEQ:  ucmp(func(a, b uint16) bool { return a != b }),
		opcode.ULT:   ucmp(func(a, b uint16) bool { return a < b }),
		opcode.UGTE:  ucmp(func(a, b uint16) bool { return a >= b }),
		opcode.UGT:   ucmp(func(a, b uint16) bool { return a > b }),
		opcode.ULTE:  ucmp(func(a, b uint16) bool { return a <= b }),

		opcode.PUSH:   pushImm,
		opcode.PUSHB:  pushImmB,
		opcode.UPUSHB: pushImmUB,
		opcode.DUP:    opDup,
		opcode.XCHG:   opXchg,
		opcode.POPS:   func(m *Machine, ins opcode.Instruction) error { _, err := m.pop16(); return err },
		opcode.PUSHS:  func(m *Machine, ins opcode.Instruction) error { return m.push16(0) },
		opcode.INDS:   opInds,
		opcode.INCS:   opIncs,

		opcode.LD:  loadDirect, opcode.LDB: loadDirect, opcode.ULDB: loadDirect,
		opcode.LDS: loadStatic, opcode.LDSB: loadStatic, opcode.ULDSB: loadStatic,
		opcode.ST:  storeDirect, opcode.STB: storeDirect,
		opcode.STS: storeStatic, opcode.STSB: storeStatic,
		opcode.LA:  opLA, opcode.LAS: opLAS, opcode.LAC: opLAC,

		opcode.JMP:   func(m *Machine, ins opcode.Instruction) error { m.pc = uint32(ins.Arg2); return nil },
		opcode.JEQUZ: jumpIf(func(v int16) bool { return v == 0 }),
		opcode.JNEQZ: jumpIf(func(v int16) bool { return v != 0 }),
		opcode.JLTZ:  jumpIf(func(v int16) bool { return v < 0 }),
		opcode.JGTEZ: jumpIf(func(v int16) bool { return v >= 0 }),
		opcode.JGTZ:  jumpIf(func(v int16) bool { return v > 0 }),
		opcode.JLTEZ: jumpIf(func(v int16) bool { return v <= 0 }),

		opcode.PCAL: opPcal,
		opcode.RET:  opRet,

		opcode.LONGOP8:  opLongOp8,
		opcode.LONGOP24: opLongOp24,

		opcode.SYSIO: opSysio,
		opcode.LIB:   opLib,
		opcode.SETOP: opSetop,
		opcode.FLOAT: opFloat,
		opcode.OSOP:  opOsop,
	}
}

func binOp(f func(a, b int16) int16) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(uint16(f(int16(a), int16(b))))
	}
}

func binOpErr(f func(a, b int16) (int16, error)) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		r, err := f(int16(a), int16(b))
		if err != nil {
			return err
		}
		return m.push16(uint16(r))
	}
}

func ubinOp(f func(a, b uint16) uint16) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(f(a, b))
	}
}

func ubinOpErr(f func(a, b uint16) (uint16, error)) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		r, err := f(a, b)
		if err != nil {
			return err
		}
		return m.push16(r)
	}
}

func unOp(f func(v int16) int16) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		v, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(uint16(f(int16(v))))
	}
}

func uunOp(f func(v uint16) uint16) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		v, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(f(v))
	}
}

func boolWord(b bool) uint16 {
	if b {
		return 0xFFFF
	}
	return 0
}

func zcmp(f func(v int16) bool) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		v, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(int16(v))))
	}
}

func cmp(f func(a, b int16) bool) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(int16(a), int16(b))))
	}
}

func ucmp(f func(a, b uint16) bool) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(a, b)))
	}
}

func jumpIf(f func(v int16) bool) opFunc {
	return func(m *Machine, ins opcode.Instruction) error {
		v, err := m.pop16()
		if err != nil {
			return err
		}
		if f(int16(v)) {
			m.pc = uint32(ins.Arg2)
		}
		return nil
	}
}

func pushImm(m *Machine, ins opcode.Instruction) error   { return m.push16(ins.Arg2) }
func pushImmB(m *Machine, ins opcode.Instruction) error  { return m.push16(uint16(int16(int8(ins.Arg1)))) }
func pushImmUB(m *Machine, ins opcode.Instruction) error { return m.push16(uint16(ins.Arg1)) }

func opDup(m *Machine, ins opcode.Instruction) error {
	v, err := m.peek16(0)
	if err != nil {
		return err
	}
	return m.push16(v)
}

func opXchg(m *Machine, ins opcode.Instruction) error {
	b, err := m.pop16()
	if err != nil {
		return err
	}
	a, err := m.pop16()
	if err != nil {
		return err
	}
	if err := m.push16(b); err != nil {
		return err
	}
	return m.push16(a)
}

func opInds(m *Machine, ins opcode.Instruction) error {
	n := int32(ins.Arg2Signed()) * 2
	newSp := int64(m.sp) - int64(n)
	if newSp < int64(m.stackBase) {
		return ErrStackUnderflow
	}
	m.sp = uint32(newSp)
	return nil
}

func opIncs(m *Machine, ins opcode.Instruction) error {
	n := int32(ins.Arg2Signed()) * 2
	newSp := int64(m.sp) + int64(n)
	if newSp < int64(m.stackBase) || newSp > int64(m.csp0) {
		return ErrStackOverflow
	}
	m.sp = uint32(newSp)
	return nil
}

func loadDirect(m *Machine, ins opcode.Instruction) error {
	addr := m.bp + uint32(ins.Arg2)
	switch ins.Op {
	case opcode.LDB:
		return m.push16(uint16(int16(int8(m.read8(addr)))))
	case opcode.ULDB:
		return m.push16(uint16(m.read8(addr)))
	default:
		return m.push16(m.read16(addr))
	}
}

func loadStatic(m *Machine, ins opcode.Instruction) error {
	base := m.frameAt(m.bp, int(ins.Arg1))
	addr := base + uint32(ins.Arg2)
	switch ins.Op {
	case opcode.LDSB:
		return m.push16(uint16(int16(int8(m.read8(addr)))))
	case opcode.ULDSB:
		return m.push16(uint16(m.read8(addr)))
	default:
		return m.push16(m.read16(addr))
	}
}

func storeDirect(m *Machine, ins opcode.Instruction) error {
	v, err := m.pop16()
	if err != nil {
		return err
	}
	addr := m.bp + uint32(ins.Arg2)
	if ins.Op == opcode.STB {
		m.write8(addr, uint8(v))
	} else {
		m.write16(addr, v)
	}
	return nil
}

func storeStatic(m *Machine, ins opcode.Instruction) error {
	v, err := m.pop16()
	if err != nil {
		return err
	}
	base := m.frameAt(m.bp, int(ins.Arg1))
	addr := base + uint32(ins.Arg2)
	if ins.Op == opcode.STSB {
		m.write8(addr, uint8(v))
	} else {
		m.write16(addr, v)
	}
	return nil
}

func opLA(m *Machine, ins opcode.Instruction) error {
	return m.push16(uint16(m.bp + uint32(ins.Arg2)))
}

func opLAS(m *Machine, ins opcode.Instruction) error {
	base := m.frameAt(m.bp, int(ins.Arg1))
	return m.push16(uint16(base + uint32(ins.Arg2)))
}

func opLAC(m *Machine, ins opcode.Instruction) error {
	// ins.Arg2 already carries the final read-only-data address after
	// reloc.ApplyFinal added the section's base.
	return m.push16(ins.Arg2)
}

func opPcal(m *Machine, ins opcode.Instruction) error {
	level := int(ins.Arg1)
	staticLink := m.frameAt(m.bp, level)
	if err := m.push16(uint16(staticLink)); err != nil {
		return err
	}
	if err := m.push16(uint16(m.bp)); err != nil {
		return err
	}
	m.bp = m.sp
	if err := m.push16(uint16(m.pc)); err != nil {
		return err
	}
	m.pc = uint32(ins.Arg2)
	return nil
}

func opRet(m *Machine, ins opcode.Instruction) error {
	if m.bp < m.stackBase+4 {
		// outermost frame: nothing left to return to.
		m.exited = true
		return nil
	}
	retAddr := m.read16(m.bp)
	savedBp := m.read16(m.bp - 2)
	m.sp = m.bp - 4
	m.bp = uint32(savedBp)
	m.pc = uint32(retAddr)
	return nil
}
