/*
 * pcode - Interpreter: 32-bit (LONGOP) dispatch
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

import "github.com/pmachine/pcode/opcode"

// 32-bit values live on the data stack as two 16-bit words, high half
// pushed first so the low half ends up on top - the mirror of how
// push32 below lays one back down.
func (m *Machine) pop32() (uint32, error) {
	lo, err := m.pop16()
	if err != nil {
		return 0, err
	}
	hi, err := m.pop16()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (m *Machine) push32(v uint32) error {
	if err := m.push16(uint16(v >> 16)); err != nil {
		return err
	}
	return m.push16(uint16(v))
}

type longFunc func(*Machine) error

var longDispatch map[uint8]longFunc

func init() {
	longDispatch = map[uint8]longFunc{
		opcode.DADD:  longBin(func(a, b int32) int32 { return a + b }),
		opcode.DSUB:  longBin(func(a, b int32) int32 { return a - b }),
		opcode.DMUL:  longBin(func(a, b int32) int32 { return a * b }),
		opcode.DUMUL: longUBin(func(a, b uint32) uint32 { return a * b }),
		opcode.DDIV: longBinErr(func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a / b, nil
		}),
		opcode.DUDIV: longUBinErr(func(a, b uint32) (uint32, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a / b, nil
		}),
		opcode.DMOD: longBinErr(func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a % b, nil
		}),
		opcode.DUMOD: longUBinErr(func(a, b uint32) (uint32, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a % b, nil
		}),
		opcode.DNEG: longUn(func(v int32) int32 { return -v }),
		opcode.DABS: longUn(func(v int32) int32 {
			if v < 0 {
				return -v
			}
			return v
		}),
		opcode.DINC: longUn(func(v int32) int32 { return v + 1 }),
		opcode.DDEC: longUn(func(v int32) int32 { return v - 1 }),
		opcode.DNOT: longUUn(func(v uint32) uint32 { return ^v }),
		opcode.DAND: longUBin(func(a, b uint32) uint32 { return a & b }),
		opcode.DOR:  longUBin(func(a, b uint32) uint32 { return a | b }),
		opcode.DSLL: longUBin(func(a, b uint32) uint32 { return a << (b & 0x1F) }),
		opcode.DSRL: longUBin(func(a, b uint32) uint32 { return a >> (b & 0x1F) }),
		opcode.DSRA: longUBin(func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1F)) }),

		opcode.DEQUZ: longZcmp(func(v int32) bool { return v == 0 }),
		opcode.DNEQZ: longZcmp(func(v int32) bool { return v != 0 }),
		opcode.DLTZ:  longZcmp(func(v int32) bool { return v < 0 }),
		opcode.DGTEZ: longZcmp(func(v int32) bool { return v >= 0 }),
		opcode.DGTZ:  longZcmp(func(v int32) bool { return v > 0 }),
		opcode.DLTEZ: longZcmp(func(v int32) bool { return v <= 0 }),
		opcode.DEQU:  longCmp(func(a, b int32) bool { return a == b }),
		opcode.DNEQ:  longCmp(func(a, b int32) bool { return a != b }),
		opcode.DLT:   longCmp(func(a, b int32) bool { return a < b }),
		opcode.DGTE:  longCmp(func(a, b int32) bool { return a >= b }),
		opcode.DGT:   longCmp(func(a, b int32) bool { return a > b }),
		opcode.DLTE:  longCmp(func(a, b int32) bool { return a <= b }),
		opcode.DUEQU: longUCmp(func(a, b uint32) bool { return a == b }),
		opcode.DUNEQ: longUCmp(func(a, b uint32) bool { return a != b }),
		opcode.DULT:  longUCmp(func(a, b uint32) bool { return a < b }),
		opcode.DUGTE: longUCmp(func(a, b uint32) bool { return a >= b }),
		opcode.DUGT:  longUCmp(func(a, b uint32) bool { return a > b }),
		opcode.DULTE: longUCmp(func(a, b uint32) bool { return a <= b }),

		opcode.CNVD: func(m *Machine) error {
			v, err := m.pop16()
			if err != nil {
				return err
			}
			return m.push32(uint32(int32(int16(v))))
		},
		opcode.UCNVD: func(m *Machine) error {
			v, err := m.pop16()
			if err != nil {
				return err
			}
			return m.push32(uint32(v))
		},
		// DPUSH's two 16-bit halves arrive as ordinary PUSH instructions
		// ahead of it; the sub-opcode itself has nothing left to do.
		opcode.DPUSH: func(m *Machine) error { return nil },
		opcode.DDUP: func(m *Machine) error {
			v, err := m.pop32()
			if err != nil {
				return err
			}
			if err := m.push32(v); err != nil {
				return err
			}
			return m.push32(v)
		},
		opcode.DXCHG: func(m *Machine) error {
			b, err := m.pop32()
			if err != nil {
				return err
			}
			a, err := m.pop32()
			if err != nil {
				return err
			}
			if err := m.push32(b); err != nil {
				return err
			}
			return m.push32(a)
		},
	}
}

func longBin(f func(a, b int32) int32) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push32(uint32(f(int32(a), int32(b))))
	}
}

func longBinErr(f func(a, b int32) (int32, error)) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		r, err := f(int32(a), int32(b))
		if err != nil {
			return err
		}
		return m.push32(uint32(r))
	}
}

func longUBin(f func(a, b uint32) uint32) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push32(f(a, b))
	}
}

func longUBinErr(f func(a, b uint32) (uint32, error)) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		r, err := f(a, b)
		if err != nil {
			return err
		}
		return m.push32(r)
	}
}

func longUn(f func(v int32) int32) longFunc {
	return func(m *Machine) error {
		v, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push32(uint32(f(int32(v))))
	}
}

func longUUn(f func(v uint32) uint32) longFunc {
	return func(m *Machine) error {
		v, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push32(f(v))
	}
}

func longZcmp(f func(v int32) bool) longFunc {
	return func(m *Machine) error {
		v, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(int32(v))))
	}
}

func longCmp(f func(a, b int32) bool) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(int32(a), int32(b))))
	}
}

func longUCmp(f func(a, b uint32) bool) longFunc {
	return func(m *Machine) error {
		b, err := m.pop32()
		if err != nil {
			return err
		}
		a, err := m.pop32()
		if err != nil {
			return err
		}
		return m.push16(boolWord(f(a, b)))
	}
}

func opLongOp8(m *Machine, ins opcode.Instruction) error {
	fn, ok := longDispatch[ins.Arg1]
	if !ok {
		return ErrNotImplemented
	}
	return fn(m)
}

// LONGOP24 packs its sub-opcode in the high byte of arg2; the low byte
// is reserved for a future immediate operand and is unused today (no
// sub-opcode currently needs one).
func opLongOp24(m *Machine, ins opcode.Instruction) error {
	sub := uint8(ins.Arg2 >> 8)
	fn, ok := longDispatch[sub]
	if !ok {
		return ErrNotImplemented
	}
	return fn(m)
}
