/*
 * pcode - Interpreter: sentinel errors
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

import "errors"

var (
	ErrStackOverflow   = errors.New("interp: data stack overflow")
	ErrStackUnderflow  = errors.New("interp: data stack underflow")
	ErrStringStackFull = errors.New("interp: string stack overflow")
	ErrHeapExhausted   = errors.New("interp: heap exhausted")
	ErrDivideByZero    = errors.New("interp: divide by zero")
	ErrBadAddress      = errors.New("interp: address out of range")
	ErrBadOpcode       = errors.New("interp: opcode has no dispatch entry")
	ErrNotImplemented  = errors.New("interp: sub-opcode not implemented")
	ErrBadFileHandle   = errors.New("interp: bad file handle")
)
