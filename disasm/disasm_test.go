/*
 * pcode - Disassembler tests
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

package disasm

import (
	"strings"
	"testing"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

func enc(t *testing.T, op opcode.Op, arg1 int, arg2 int32) []byte {
	t.Helper()
	ins, err := opcode.New(op, arg1, arg2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := opcode.Encode(ins)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return b
}

func TestFormatSysio(t *testing.T) {
	ins, err := opcode.New(opcode.SYSIO, int(interp.SysWriteLn), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := Format(ins)
	if !strings.Contains(got, "writeln") {
		t.Errorf("Format(SYSIO writeln) = %q, want it to mention \"writeln\"", got)
	}
}

func TestListingCodeSection(t *testing.T) {
	prog := poff.New()
	var program []byte
	program = append(program, enc(t, opcode.PUSHB, 0, 3)...)
	program = append(program, enc(t, opcode.PUSHB, 0, 4)...)
	program = append(program, enc(t, opcode.ADD, 0, 0)...)
	program = append(program, enc(t, opcode.END, 0, 0)...)
	prog.ReplaceProgram(program)
	prog.SetEntry(0)

	out := Listing(prog, Sections{Code: true})
	for _, want := range []string{"PUSHB", "PUSHB", "ADD"} {
		if !strings.Contains(out, want) {
			t.Errorf("Listing output missing %q:\n%s", want, out)
		}
	}
}

func TestListingHeaderAndHex(t *testing.T) {
	prog := poff.New()
	prog.SetFileType(poff.TypeProgram)
	prog.SetEntry(0)
	prog.ReplaceProgram(enc(t, opcode.END, 0, 0))

	out := Listing(prog, Sections{Header: true, Code: true, HexBytes: true})
	if !strings.Contains(out, "type=1") {
		t.Errorf("missing header line:\n%s", out)
	}
}

func TestListingSymbolsAndStrings(t *testing.T) {
	prog := poff.New()
	nameOff := prog.AddString("main")
	prog.AddSymbol(poff.Symbol{NameOffset: nameOff, Value: 0})
	prog.ReplaceProgram(enc(t, opcode.END, 0, 0))

	out := Listing(prog, Sections{Symbols: true, Strings: true})
	if !strings.Contains(out, "main") {
		t.Errorf("expected symbol name \"main\" in listing:\n%s", out)
	}
}
