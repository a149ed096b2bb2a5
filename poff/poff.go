/*
 * pcode - POFF object file container
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

// Package poff implements the section-based P-code object container
// (§3.2, §4.2, §6.1): a file header, program text, read-only data, symbol
// table, string table, relocation table, line-number table and
// debug-function table. The on-disk form is always big-endian; in-memory
// fields use host order.
package poff

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// FileType identifies the kind of image a container holds.
type FileType uint16

const (
	TypeProgram FileType = 1 + iota
	TypeUnit
	TypeExecutable
)

// Architecture tags. Only one target exists today; the field exists so a
// loader can reject a POFF file built for a different P-machine revision.
const ArchP16 uint16 = 1

const (
	magic          uint32 = 0x504F4646 // "POFF"
	version        uint16 = 1
	noIndex        int32  = -1
	sectionHdrSize int    = 12 // type(2) + entrySize(2) + totalSize(4) + fileOffset(4)
)

// Section type tags, in the order the spec lists them.
const (
	secProgram uint16 = 1 + iota
	secRoData
	secSymbol
	secString
	secReloc
	secLine
	secDebugFunc
	secCount // number of section slots; keep last
)

// Symbol is one entry of the symbol table.
type Symbol struct {
	NameOffset int32
	Value      uint32
}

// RelocType distinguishes program-section-relative from read-only-data-
// relative fixups (§3.2).
type RelocType uint8

const (
	RelocProgram RelocType = 1 + iota
	RelocRoData
)

// Relocation is one pending fixup (§3.2, §4.3).
type Relocation struct {
	Type          RelocType
	SymbolIndex   int32
	SectionOffset uint32
}

// LineEntry maps a program offset to a source position (§6.1).
type LineEntry struct {
	Line           uint32
	FileNameOffset int32
	ProgramOffset  uint32
}

// DebugFunc records one procedure's debug metadata.
type DebugFunc struct {
	NameOffset  int32
	EntryOffset uint32
	Level       uint8
}

var (
	ErrBadMagic     = errors.New("poff: bad magic number")
	ErrTruncated    = errors.New("poff: truncated section")
	ErrUnknownSect  = errors.New("poff: unknown section type")
	errEndOfTable   = errors.New("poff: end of table")
)

// Container is a POFF object: the in-memory form used by the front end,
// the optimizer, the lister and the interpreter alike.
type Container struct {
	fileType  FileType
	arch      uint16
	entry     uint32
	nameIndex int32

	program []byte
	rodata  []byte
	strtab  []byte // null-terminated entries concatenated by AddString
	symbols []Symbol
	relocs  []Relocation
	lines   []LineEntry
	debug   []DebugFunc

	// Read-path cursors (§4.2 "cursor semantics").
	progCursor int
	symCursor  int
	relCursor  int
	lineCursor int
}

// New returns an empty, writable container.
func New() *Container {
	return &Container{nameIndex: noIndex}
}

// NewTemp returns an empty scratch container for use during an optimizer
// pass; its sections are later swapped into the main container.
func NewTemp() *Container {
	return New()
}

// --- write path ---------------------------------------------------------

func (c *Container) SetFileType(t FileType) { c.fileType = t }
func (c *Container) SetArch(arch uint16)    { c.arch = arch }
func (c *Container) SetEntry(offset uint32) { c.entry = offset }

// SetFileName interns name and records it as the container's file-name
// string.
func (c *Container) SetFileName(name string) {
	c.nameIndex = c.AddString(name)
}

func (c *Container) FileType() FileType { return c.fileType }
func (c *Container) Arch() uint16       { return c.arch }
func (c *Container) Entry() uint32      { return c.entry }

// AppendByte appends one byte of program text and returns its offset.
func (c *Container) AppendByte(b byte) uint32 {
	offset := uint32(len(c.program))
	c.program = append(c.program, b)
	return offset
}

// AppendProgram appends a run of program bytes and returns the offset of
// the first byte.
func (c *Container) AppendProgram(data []byte) uint32 {
	offset := uint32(len(c.program))
	c.program = append(c.program, data...)
	return offset
}

// AddRoData appends initialized read-only data (constants, interned
// string buffers) and returns its offset within the read-only section.
func (c *Container) AddRoData(data []byte) uint32 {
	offset := uint32(len(c.rodata))
	c.rodata = append(c.rodata, data...)
	return offset
}

// AddString interns name into the string table and returns the byte
// offset of its first character. String-table offsets are stable under
// section rewrites (§3.2 invariant a): later sections may be replaced
// wholesale, but strtab is append-only for the container's lifetime.
func (c *Container) AddString(name string) int32 {
	offset := int32(len(c.strtab))
	c.strtab = append(c.strtab, name...)
	c.strtab = append(c.strtab, 0)
	return offset
}

// StringAt returns the null-terminated string starting at offset.
func (c *Container) StringAt(offset int32) (string, error) {
	if offset < 0 || int(offset) >= len(c.strtab) {
		return "", fmt.Errorf("poff: string offset %d out of range", offset)
	}
	end := int(offset)
	for end < len(c.strtab) && c.strtab[end] != 0 {
		end++
	}
	return string(c.strtab[offset:end]), nil
}

// AddSymbol appends a symbol-table entry and returns its monotonic index.
func (c *Container) AddSymbol(sym Symbol) int {
	c.symbols = append(c.symbols, sym)
	return len(c.symbols) - 1
}

// AddLine appends a line-number entry and returns its index.
func (c *Container) AddLine(entry LineEntry) int {
	c.lines = append(c.lines, entry)
	return len(c.lines) - 1
}

// AddRelocation appends a relocation entry and returns its index.
// Compiler output must keep SectionOffset strictly increasing (§3.2
// invariant b); this is a producer contract, not enforced here.
func (c *Container) AddRelocation(r Relocation) int {
	c.relocs = append(c.relocs, r)
	return len(c.relocs) - 1
}

// AddDebugFunc appends a debug-function record and returns its index.
func (c *Container) AddDebugFunc(fn DebugFunc) int {
	c.debug = append(c.debug, fn)
	return len(c.debug) - 1
}

// --- read path -----------------------------------------------------------

// Tell returns the current program-section read cursor.
func (c *Container) Tell() int { return c.progCursor }

// Seek repositions the program-section read cursor.
func (c *Container) Seek(offset int) error {
	if offset < 0 || offset > len(c.program) {
		return fmt.Errorf("poff: seek offset %d out of range", offset)
	}
	c.progCursor = offset
	return nil
}

// NextByte returns the byte at the program cursor and advances it, or
// false once the cursor reaches the end of the program section.
func (c *Container) NextByte() (byte, bool) {
	if c.progCursor >= len(c.program) {
		return 0, false
	}
	b := c.program[c.progCursor]
	c.progCursor++
	return b, true
}

// Program returns the whole program section as raw bytes.
func (c *Container) Program() []byte { return c.program }

// RoData returns the whole read-only data section as raw bytes.
func (c *Container) RoData() []byte { return c.rodata }

// NextSymbol returns the next symbol-table entry in iteration order, or
// ok=false (the table's end-of-table sentinel) once exhausted.
func (c *Container) NextSymbol() (Symbol, int, bool) {
	if c.symCursor >= len(c.symbols) {
		return Symbol{}, -1, false
	}
	idx := c.symCursor
	sym := c.symbols[idx]
	c.symCursor++
	return sym, idx, true
}

// ResetSymbolCursor rewinds symbol iteration to the start.
func (c *Container) ResetSymbolCursor() { c.symCursor = 0 }

// NextRelocation returns the next relocation entry in section order.
func (c *Container) NextRelocation() (Relocation, int, bool) {
	if c.relCursor >= len(c.relocs) {
		return Relocation{}, -1, false
	}
	idx := c.relCursor
	r := c.relocs[idx]
	c.relCursor++
	return r, idx, true
}

// ResetRelocationCursor rewinds relocation iteration to the start.
func (c *Container) ResetRelocationCursor() { c.relCursor = 0 }

// Relocations returns the full relocation table, in section order.
func (c *Container) Relocations() []Relocation { return c.relocs }

// Symbols returns the full symbol table.
func (c *Container) Symbols() []Symbol { return c.symbols }

// DebugFuncs returns the full debug-function table.
func (c *Container) DebugFuncs() []DebugFunc { return c.debug }

// LineTable reads the entire line-number table into an index keyed by
// program offset, as §4.2's read path requires.
func (c *Container) LineTable() map[uint32]LineEntry {
	table := make(map[uint32]LineEntry, len(c.lines))
	for _, entry := range c.lines {
		table[entry.ProgramOffset] = entry
	}
	return table
}

// --- rewrite path ----------------------------------------------------------

// ReplaceProgram atomically swaps in a new program section, as the
// optimizer does at the end of each pass.
func (c *Container) ReplaceProgram(program []byte) { c.program = program }

// ReplaceRelocations atomically swaps in a new relocation table.
func (c *Container) ReplaceRelocations(relocs []Relocation) {
	c.relocs = relocs
	c.relCursor = 0
}

// ReplaceSymbols atomically swaps in a new symbol table.
func (c *Container) ReplaceSymbols(symbols []Symbol) {
	c.symbols = symbols
	c.symCursor = 0
}

// ReplaceLines atomically swaps in a new line-number table.
func (c *Container) ReplaceLines(lines []LineEntry) { c.lines = lines }

// SwapProgram exchanges this container's program section with temp's and
// resets both read cursors, matching the optimizer's previous/current
// swap at the end of a pass (§4.3).
func (c *Container) SwapProgram(temp *Container) {
	c.program, temp.program = temp.program, c.program
	c.progCursor, temp.progCursor = 0, 0
}

// SwapRelocations exchanges relocation tables with temp.
func (c *Container) SwapRelocations(temp *Container) {
	c.relocs, temp.relocs = temp.relocs, c.relocs
	c.relCursor, temp.relCursor = 0, 0
}

var errOpen = errors.New("poff: unable to open file")

// WriteFile serializes the container to path in the on-disk POFF format.
func (c *Container) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errOpen, path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := c.encode(w); err != nil {
		return err
	}
	return w.Flush()
}

// LoadFile reads and decodes a POFF file from path.
func LoadFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errOpen, path, err)
	}
	return Decode(data)
}
