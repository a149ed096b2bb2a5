/*
 * pcode - Interpreter: SETOP (set operations) dispatch
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

// Sets are represented as a fixed 32-byte (256-bit) bitmap in memory;
// arg2 of the instruction is unused and the two set operands (plus, for
// set/singleton tests, an ordinal) are taken from the data stack as
// addresses (§6.3 SETOP does not encode set size, so this interpreter
// fixes one - a real implementation would thread it through from the
// compiler's type descriptor).
const setWords = 16

func (m *Machine) setWord(addr uint32, i int) uint16 {
	return m.read16(addr + uint32(i*2))
}

func (m *Machine) setCombine(dst, a, b uint32, f func(x, y uint16) uint16) {
	for i := 0; i < setWords; i++ {
		m.write16(dst+uint32(i*2), f(m.setWord(a, i), m.setWord(b, i)))
	}
}

func opSetop(m *Machine, ins opcode.Instruction) error {
	switch SetOp(ins.Arg1) {
	case SetIntersection:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		m.setCombine(uint32(dst), uint32(a), uint32(b), func(x, y uint16) uint16 { return x & y })
		return m.push16(dst)

	case SetUnion:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		m.setCombine(uint32(dst), uint32(a), uint32(b), func(x, y uint16) uint16 { return x | y })
		return m.push16(dst)

	case SetDifference:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		m.setCombine(uint32(dst), uint32(a), uint32(b), func(x, y uint16) uint16 { return x &^ y })
		return m.push16(dst)

	case SetSymDifference:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		m.setCombine(uint32(dst), uint32(a), uint32(b), func(x, y uint16) uint16 { return x ^ y })
		return m.push16(dst)

	case SetEquality, SetInequality:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		eq := true
		for i := 0; i < setWords; i++ {
			if m.setWord(uint32(a), i) != m.setWord(uint32(b), i) {
				eq = false
				break
			}
		}
		if SetOp(ins.Arg1) == SetInequality {
			eq = !eq
		}
		return m.push16(boolWord(eq))

	case SetMember:
		ord, err := m.pop16()
		if err != nil {
			return err
		}
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		word := uint32(addr) + uint32(ord/16)*2
		bit := ord % 16
		return m.push16(boolWord(m.read16(word)&(1<<bit) != 0))

	case SetInclude, SetExclude:
		ord, err := m.pop16()
		if err != nil {
			return err
		}
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		word := uint32(addr) + uint32(ord/16)*2
		bit := ord % 16
		v := m.read16(word)
		if SetOp(ins.Arg1) == SetInclude {
			v |= 1 << bit
		} else {
			v &^= 1 << bit
		}
		m.write16(word, v)
		return nil

	case SetCardinality:
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		count := 0
		for i := 0; i < setWords; i++ {
			w := m.setWord(uint32(addr), i)
			for w != 0 {
				count += int(w & 1)
				w >>= 1
			}
		}
		return m.push16(uint16(count))

	default:
		return ErrNotImplemented
	}
}
