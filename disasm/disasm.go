/*
 * pcode - Disassembler/lister
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

// Package disasm renders a POFF container's sections as human-readable
// text for plist (§6.4). It only reads a container; it never mutates one.
package disasm

import (
	"fmt"
	"strings"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
	"github.com/pmachine/pcode/util/hex"
)

// Sections selects which parts of a container Listing renders, mirroring
// plist's -ahlSsrdH flags one for one.
type Sections struct {
	Header   bool // -h
	Code     bool // code listing is rendered only when set; plist always sets it
	Lines    bool // -l: interleave source line numbers into the code listing
	Symbols  bool // -S
	Strings  bool // -s
	Relocs   bool // -r
	Debug    bool // -d
	HexBytes bool // -H: show the raw encoded bytes beside each instruction
}

// All returns the section set plist's -a selects.
func All() Sections {
	return Sections{Header: true, Code: true, Lines: true, Symbols: true,
		Strings: true, Relocs: true, Debug: true, HexBytes: true}
}

// Listing renders the sections of prog that sec selects.
func Listing(prog *poff.Container, sec Sections) string {
	var b strings.Builder

	if sec.Header {
		writeHeader(&b, prog)
	}
	if sec.Code {
		writeCode(&b, prog, sec.Lines, sec.HexBytes)
	}
	if sec.Symbols {
		writeSymbols(&b, prog)
	}
	if sec.Strings {
		writeStrings(&b, prog)
	}
	if sec.Relocs {
		writeRelocs(&b, prog)
	}
	if sec.Debug {
		writeDebug(&b, prog)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, prog *poff.Container) {
	fmt.Fprintf(b, "type=%d arch=%d entry=%06d progsize=%d rodatasize=%d\n\n",
		prog.FileType(), prog.Arch(), prog.Entry(), len(prog.Program()), len(prog.RoData()))
}

// writeCode walks the program section instruction by instruction. LABEL
// and LINE pseudo-ops are stripped by the time a container reaches the
// lister (optimizer.Finalize resolves and removes them, §4.3), so line
// numbers come from the line table keyed by program offset instead of an
// inline pseudo-op.
func writeCode(b *strings.Builder, prog *poff.Container, withLines, withHex bool) {
	data := prog.Program()
	var lines map[uint32]poff.LineEntry
	if withLines {
		lines = prog.LineTable()
	}

	var off uint32
	for int(off) < len(data) {
		ins, n, err := opcode.Decode(data, int(off))
		if err != nil {
			fmt.Fprintf(b, "%06d: <decode error: %v>\n", off, err)
			return
		}

		if withLines {
			if le, ok := lines[off]; ok {
				fmt.Fprintf(b, "; line %d\n", le.Line)
			}
		}

		fmt.Fprintf(b, "%06d:", off)
		if withHex {
			var sb strings.Builder
			hex.FormatBytes(&sb, true, data[off:off+uint32(n)])
			fmt.Fprintf(b, " %-12s", sb.String())
		}
		fmt.Fprintf(b, " %s\n", Format(ins))

		off += uint32(n)
	}
}

// Format renders one decoded instruction as a mnemonic plus its operands,
// substituting a symbolic sub-opcode name for the five service-call
// dispatch families (§6.3) instead of a raw byte.
func Format(ins opcode.Instruction) string {
	name := opcode.Name(ins.Op)

	switch ins.Op {
	case opcode.SYSIO:
		return fmt.Sprintf("%-8s %s", name, interp.SysOpName(ins.Arg1))
	case opcode.LIB:
		return fmt.Sprintf("%-8s %s", name, interp.LibOpName(ins.Arg1))
	case opcode.SETOP:
		return fmt.Sprintf("%-8s %s", name, interp.SetOpName(ins.Arg1))
	case opcode.FLOAT:
		return fmt.Sprintf("%-8s %s", name, interp.FloatOpName(ins.Arg1))
	case opcode.OSOP:
		return fmt.Sprintf("%-8s %s", name, interp.OsOpName(ins.Arg1))
	}

	n, _ := opcode.Format(ins.Op)
	switch n {
	case 1:
		return name
	case 2:
		return fmt.Sprintf("%-8s %d", name, int8(ins.Arg1))
	case 3:
		return fmt.Sprintf("%-8s %d", name, ins.Arg2Signed())
	case 4:
		return fmt.Sprintf("%-8s %d, %d", name, int8(ins.Arg1), ins.Arg2Signed())
	}
	return name
}

func writeSymbols(b *strings.Builder, prog *poff.Container) {
	fmt.Fprintf(b, "\nsymbols:\n")
	for _, sym := range prog.Symbols() {
		s, err := prog.StringAt(sym.NameOffset)
		if err != nil {
			s = "?"
		}
		fmt.Fprintf(b, "  %-24s %06d\n", s, sym.Value)
	}
}

// writeStrings lists the names the symbol and debug-function tables
// intern. The container exposes no independent string-table cursor; every
// string table entry is reachable only by an offset recorded elsewhere
// (§4.2), so that is how the lister enumerates them too.
func writeStrings(b *strings.Builder, prog *poff.Container) {
	fmt.Fprintf(b, "\nstrings:\n")
	seen := make(map[int32]bool)
	print := func(off int32) {
		if off < 0 || seen[off] {
			return
		}
		seen[off] = true
		if s, err := prog.StringAt(off); err == nil {
			fmt.Fprintf(b, "  %06d: %q\n", off, s)
		}
	}
	for _, sym := range prog.Symbols() {
		print(sym.NameOffset)
	}
	for _, fn := range prog.DebugFuncs() {
		print(fn.NameOffset)
	}
}

func writeRelocs(b *strings.Builder, prog *poff.Container) {
	fmt.Fprintf(b, "\nrelocations:\n")
	for i, r := range prog.Relocations() {
		kind := "prog"
		if r.Type == poff.RelocRoData {
			kind = "rodata"
		}
		fmt.Fprintf(b, "  [%d] %s offset=%06d symbol=%d\n", i, kind, r.SectionOffset, r.SymbolIndex)
	}
}

func writeDebug(b *strings.Builder, prog *poff.Container) {
	fmt.Fprintf(b, "\ndebug functions:\n")
	for _, fn := range prog.DebugFuncs() {
		s, err := prog.StringAt(fn.NameOffset)
		if err != nil {
			s = "?"
		}
		fmt.Fprintf(b, "  %-24s entry=%06d level=%d\n", s, fn.EntryOffset, fn.Level)
	}
}
