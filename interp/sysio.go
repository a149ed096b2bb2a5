/*
 * pcode - Interpreter: SYSIO dispatch
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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pmachine/pcode/opcode"
)

// fileHandle wraps either a real OS file (opened by AssignFile/Reset/
// Rewrite) or one of the two pre-registered standard streams.
type fileHandle struct {
	f   *os.File
	w   io.Writer
	r   *bufio.Reader
	eof bool
}

func (fh *fileHandle) writer() io.Writer {
	if fh.w != nil {
		return fh.w
	}
	return fh.f
}

func (m *Machine) stdFiles() {
	m.files[0] = &fileHandle{r: bufio.NewReader(m.Stdin)}
	m.files[1] = &fileHandle{w: m.Stdout}
	m.nextFD = 2
}

func (m *Machine) file(id uint16) (*fileHandle, error) {
	fh, ok := m.files[int(id)]
	if !ok {
		return nil, ErrBadFileHandle
	}
	return fh, nil
}

// readString reads the two-cell (size, buffer pointer) Pascal string
// descriptor at addr (§3.3).
func (m *Machine) readString(addr uint32) string {
	size := m.read16(addr)
	ptr := m.read16(addr + 2)
	buf := make([]byte, size)
	for i := uint16(0); i < size; i++ {
		buf[i] = m.read8(uint32(ptr) + uint32(i))
	}
	return string(buf)
}

func opSysio(m *Machine, ins opcode.Instruction) error {
	switch SysOp(ins.Arg1) {
	case SysWriteLn:
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(fh.writer())
		return err

	case SysWriteInt:
		v, err := m.pop16()
		if err != nil {
			return err
		}
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(fh.writer(), int16(v))
		return err

	case SysWriteWord:
		v, err := m.pop16()
		if err != nil {
			return err
		}
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(fh.writer(), v)
		return err

	case SysWriteChr:
		v, err := m.pop16()
		if err != nil {
			return err
		}
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(fh.writer(), "%c", byte(v))
		return err

	case SysWriteStr:
		addr, err := m.pop16()
		if err != nil {
			return err
		}
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(fh.writer(), m.readString(uint32(addr)))
		return err

	case SysReadLn:
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		if fh.r == nil {
			return ErrBadFileHandle
		}
		_, err = fh.r.ReadString('\n')
		if err == io.EOF {
			fh.eof = true
			return nil
		}
		return err

	case SysReadInt:
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		if fh.r == nil {
			return ErrBadFileHandle
		}
		var v int16
		_, err = fmt.Fscan(fh.r, &v)
		if err == io.EOF {
			fh.eof = true
			return m.push16(0)
		}
		if err != nil {
			return err
		}
		return m.push16(uint16(v))

	case SysEOF:
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		if fh.r != nil {
			if _, err := fh.r.Peek(1); err == io.EOF {
				fh.eof = true
			}
		}
		return m.push16(boolWord(fh.eof))

	case SysAssignFile, SysReset, SysResetR, SysRewrite, SysRewriteR, SysAppend:
		return sysOpenClose(m, ins)

	case SysCloseFile:
		id, err := m.pop16()
		if err != nil {
			return err
		}
		fh, err := m.file(id)
		if err != nil {
			return err
		}
		if fh.f != nil {
			fh.f.Close()
		}
		delete(m.files, int(id))
		return nil

	default:
		return ErrNotImplemented
	}
}

// sysOpenClose implements AssignFile/Reset/Rewrite/Append by popping a
// path-string descriptor and allocating the next file handle.
func sysOpenClose(m *Machine, ins opcode.Instruction) error {
	addr, err := m.pop16()
	if err != nil {
		return err
	}
	path := m.readString(uint32(addr))

	var f *os.File
	switch SysOp(ins.Arg1) {
	case SysReset, SysResetR:
		f, err = os.Open(path)
	case SysRewrite, SysRewriteR:
		f, err = os.Create(path)
	case SysAppend:
		f, err = os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	case SysAssignFile:
		// Assignment alone does not open the underlying file.
		id := m.nextFD
		m.nextFD++
		m.files[id] = &fileHandle{}
		return m.push16(uint16(id))
	}
	if err != nil {
		return err
	}
	id := m.nextFD
	m.nextFD++
	fh := &fileHandle{f: f}
	if SysOp(ins.Arg1) == SysReset || SysOp(ins.Arg1) == SysResetR {
		fh.r = bufio.NewReader(f)
	}
	m.files[id] = fh
	return m.push16(uint16(id))
}
