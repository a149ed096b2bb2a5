/*
 * pcode - Interpreter: OSOP dispatch
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

import (
	"os"

	"github.com/pmachine/pcode/opcode"
)

func opOsop(m *Machine, ins opcode.Instruction) error {
	switch OsOp(ins.Arg1) {
	case OsExit:
		code, err := m.pop16()
		if err != nil {
			return err
		}
		m.exitCode = int(int16(code))
		m.exited = true
		return nil

	case OsNew:
		size, err := m.pop16()
		if err != nil {
			return err
		}
		ptrAddr, err := m.pop16()
		if err != nil {
			return err
		}
		offset, err := m.heap.alloc(uint32(size))
		if err != nil {
			return err
		}
		m.write16(uint32(ptrAddr), uint16(m.hpb+offset))
		return nil

	case OsDispose:
		size, err := m.pop16()
		if err != nil {
			return err
		}
		ptr, err := m.pop16()
		if err != nil {
			return err
		}
		if uint32(ptr) < m.hpb {
			return ErrBadAddress
		}
		m.heap.dispose(uint32(ptr)-m.hpb, uint32(size))
		return nil

	case OsGetenv:
		nameAddr, err := m.pop16()
		if err != nil {
			return err
		}
		resultAddr, err := m.pop16()
		if err != nil {
			return err
		}
		name := m.readString(uint32(nameAddr))
		return m.writeString(uint32(resultAddr), os.Getenv(name))

	default:
		return ErrNotImplemented
	}
}
