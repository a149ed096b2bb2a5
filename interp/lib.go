/*
 * pcode - Interpreter: LIB (string library) dispatch
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

// writeString lays out a (size, pointer) string descriptor at addr,
// copying s into the string-stack region starting at m.csp and bumping
// it (§3.3's csp discipline).
func (m *Machine) writeString(addr uint32, s string) error {
	if m.csp+uint32(len(s)) > m.hpb {
		return ErrStringStackFull
	}
	ptr := m.csp
	for i := 0; i < len(s); i++ {
		m.write8(ptr+uint32(i), s[i])
	}
	m.csp += uint32(len(s))
	m.write16(addr, uint16(len(s)))
	m.write16(addr+2, uint16(ptr))
	return nil
}

func opLib(m *Machine, ins opcode.Instruction) error {
	switch LibOp(ins.Arg1) {
	case LibStrLen:
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		return m.push16(m.read16(uint32(addr)))

	case LibStrCpy:
		src, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		return m.writeString(uint32(dst), m.readString(uint32(src)))

	case LibStrCat:
		src, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		return m.writeString(uint32(dst), m.readString(uint32(dst))+m.readString(uint32(src)))

	case LibStrCmp:
		b, err := m.pop16()
		if err != nil {
			return err
		}
		a, err := m.pop16()
		if err != nil {
			return err
		}
		sa, sb := m.readString(uint32(a)), m.readString(uint32(b))
		var r int16
		switch {
		case sa < sb:
			r = -1
		case sa > sb:
			r = 1
		}
		return m.push16(uint16(r))

	case LibCharAt:
		idx, err := m.pop16()
		if err != nil {
			return err
		}
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		s := m.readString(uint32(addr))
		if int(idx) >= len(s) {
			return ErrBadAddress
		}
		return m.push16(uint16(s[idx]))

	case LibCopySubstr:
		n, err := m.pop16()
		if err != nil {
			return err
		}
		start, err := m.pop16()
		if err != nil {
			return err
		}
		src, err := m.pop16()
		if err != nil {
			return err
		}
		dst, err := m.pop16()
		if err != nil {
			return err
		}
		s := m.readString(uint32(src))
		if int(start)+int(n) > len(s) || start < 1 {
			return ErrBadAddress
		}
		return m.writeString(uint32(dst), s[start-1:start-1+n])

	case LibFindSubstr:
		needle, err := m.pop16()
		if err != nil {
			return err
		}
		haystack, err := m.pop16()
		if err != nil {
			return err
		}
		h, n := m.readString(uint32(haystack)), m.readString(uint32(needle))
		for i := 0; i+len(n) <= len(h); i++ {
			if h[i:i+len(n)] == n {
				return m.push16(uint16(i + 1))
			}
		}
		return m.push16(0)

	case LibFillChar:
		n, err := m.pop16()
		if err != nil {
			return err
		}
		ch, err := m.pop16()
		if err != nil {
			return err
		}
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		for i := uint16(0); i < n; i++ {
			m.write8(uint32(addr)+uint32(i), byte(ch))
		}
		return nil

	default:
		return ErrNotImplemented
	}
}
