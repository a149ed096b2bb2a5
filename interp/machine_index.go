/*
 * pcode - Interpreter: indexed and multi-word load/store
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

// Indexed loads/stores carry an array index on top of the data stack;
// elements are word-sized (§3.1's LDX/LDSX family does not itself carry
// an element width, so the compiler is expected to scale the index
// before a byte-element access - this interpreter follows the simplest
// reading and always strides by one word).
const elemStride = 2

func indexedAddr(base uint32, offset int32, index uint16) uint32 {
	return uint32(int64(base) + int64(offset) + int64(int16(index))*elemStride)
}

func loadIndexed(m *Machine, ins opcode.Instruction) error {
	idx, err := m.pop16()
	if err != nil {
		return err
	}
	addr := indexedAddr(m.bp, int32(int16(ins.Arg2)), idx)
	switch ins.Op {
	case opcode.LDXB:
		return m.push16(uint16(int16(int8(m.read8(addr)))))
	case opcode.ULDXB:
		return m.push16(uint16(m.read8(addr)))
	default:
		return m.push16(m.read16(addr))
	}
}

func loadStaticIndexed(m *Machine, ins opcode.Instruction) error {
	idx, err := m.pop16()
	if err != nil {
		return err
	}
	base := m.frameAt(m.bp, int(ins.Arg1))
	addr := indexedAddr(base, int32(int16(ins.Arg2)), idx)
	switch ins.Op {
	case opcode.LDSXB:
		return m.push16(uint16(int16(int8(m.read8(addr)))))
	case opcode.ULDSXB:
		return m.push16(uint16(m.read8(addr)))
	default:
		return m.push16(m.read16(addr))
	}
}

func storeStaticIndexed(m *Machine, ins opcode.Instruction) error {
	idx, err := m.pop16()
	if err != nil {
		return err
	}
	v, err := m.pop16()
	if err != nil {
		return err
	}
	base := m.frameAt(m.bp, int(ins.Arg1))
	addr := indexedAddr(base, int32(int16(ins.Arg2)), idx)
	if ins.Op == opcode.STSXB {
		m.write8(addr, uint8(v))
	} else {
		m.write16(addr, v)
	}
	return nil
}

func opLAX(m *Machine, ins opcode.Instruction) error {
	idx, err := m.pop16()
	if err != nil {
		return err
	}
	return m.push16(uint16(indexedAddr(m.bp, int32(int16(ins.Arg2)), idx)))
}

func opLASX(m *Machine, ins opcode.Instruction) error {
	idx, err := m.pop16()
	if err != nil {
		return err
	}
	base := m.frameAt(m.bp, int(ins.Arg1))
	return m.push16(uint16(indexedAddr(base, int32(int16(ins.Arg2)), idx)))
}

// Multi-word block transfer. LDM/STM/LDSM/STSM carry only a word count
// (arg1): the format has no room for a base offset, so the address is
// whatever LA/LAS most recently left on top of the stack. LDSM/STSM are
// therefore runtime-identical to LDM/STM - the nesting level was already
// resolved by the preceding LAS.
func loadMulti(m *Machine, ins opcode.Instruction) error {
	addr, err := m.pop16()
	if err != nil {
		return err
	}
	count := int(ins.Arg1)
	for i := 0; i < count; i++ {
		if err := m.push16(m.read16(uint32(addr) + uint32(i*2))); err != nil {
			return err
		}
	}
	return nil
}

func storeMulti(m *Machine, ins opcode.Instruction) error {
	addr, err := m.pop16()
	if err != nil {
		return err
	}
	count := int(ins.Arg1)
	for i := count - 1; i >= 0; i-- {
		v, err := m.pop16()
		if err != nil {
			return err
		}
		m.write16(uint32(addr)+uint32(i*2), v)
	}
	return nil
}

func init() {
	dispatch[opcode.LDX] = loadIndexed
	dispatch[opcode.LDXB] = loadIndexed
	dispatch[opcode.ULDXB] = loadIndexed
	dispatch[opcode.LDSX] = loadStaticIndexed
	dispatch[opcode.LDSXB] = loadStaticIndexed
	dispatch[opcode.ULDSXB] = loadStaticIndexed
	dispatch[opcode.STSX] = storeStaticIndexed
	dispatch[opcode.STSXB] = storeStaticIndexed
	dispatch[opcode.LAX] = opLAX
	dispatch[opcode.LASX] = opLASX
	dispatch[opcode.LDM] = loadMulti
	dispatch[opcode.LDSM] = loadMulti
	dispatch[opcode.STM] = storeMulti
	dispatch[opcode.STSM] = storeMulti
}
