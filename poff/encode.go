/*
 * pcode - POFF on-disk encoding
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

package poff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

type sectionDesc struct {
	kind       uint16
	entrySize  uint16
	totalSize  uint32
	fileOffset uint32
}

// symbolRec/relocRec/lineRec/debugRec are the fixed-width on-disk mirrors
// of Symbol/Relocation/LineEntry/DebugFunc: every field is a plain integer
// so encoding/binary can marshal the whole slice in one call. This is the
// one conversion boundary between POFF's big-endian disk layout and the
// host-native in-memory structs (§9 design note).
type symbolRec struct {
	NameOffset int32
	Value      uint32
}

type relocRec struct {
	Type          uint8
	_             [3]uint8
	SymbolIndex   int32
	SectionOffset uint32
}

type lineRec struct {
	Line           uint32
	FileNameOffset int32
	ProgramOffset  uint32
}

type debugRec struct {
	NameOffset  int32
	EntryOffset uint32
	Level       uint8
	_           [3]uint8
}

func (c *Container) encode(w io.Writer) error {
	var symBuf, relBuf, lineBuf, debugBuf bytes.Buffer

	for _, s := range c.symbols {
		if err := binary.Write(&symBuf, binary.BigEndian, symbolRec{s.NameOffset, s.Value}); err != nil {
			return err
		}
	}
	for _, r := range c.relocs {
		rec := relocRec{Type: uint8(r.Type), SymbolIndex: r.SymbolIndex, SectionOffset: r.SectionOffset}
		if err := binary.Write(&relBuf, binary.BigEndian, rec); err != nil {
			return err
		}
	}
	for _, l := range c.lines {
		rec := lineRec{l.Line, l.FileNameOffset, l.ProgramOffset}
		if err := binary.Write(&lineBuf, binary.BigEndian, rec); err != nil {
			return err
		}
	}
	for _, d := range c.debug {
		rec := debugRec{NameOffset: d.NameOffset, EntryOffset: d.EntryOffset, Level: d.Level}
		if err := binary.Write(&debugBuf, binary.BigEndian, rec); err != nil {
			return err
		}
	}

	sections := [secCount]sectionDesc{
		secProgram:   {kind: secProgram, entrySize: 1, totalSize: uint32(len(c.program))},
		secRoData:    {kind: secRoData, entrySize: 1, totalSize: uint32(len(c.rodata))},
		secSymbol:    {kind: secSymbol, entrySize: 8, totalSize: uint32(symBuf.Len())},
		secString:    {kind: secString, entrySize: 1, totalSize: uint32(len(c.strtab))},
		secReloc:     {kind: secReloc, entrySize: 12, totalSize: uint32(relBuf.Len())},
		secLine:      {kind: secLine, entrySize: 12, totalSize: uint32(lineBuf.Len())},
		secDebugFunc: {kind: secDebugFunc, entrySize: 12, totalSize: uint32(debugBuf.Len())},
	}

	headerSize := uint32(4+2+2+2+4+4+2) + uint32(len(sections)-1)*uint32(sectionHdrSize)
	offset := headerSize
	payloads := [secCount][]byte{
		secProgram:   c.program,
		secRoData:    c.rodata,
		secSymbol:    symBuf.Bytes(),
		secString:    c.strtab,
		secReloc:     relBuf.Bytes(),
		secLine:      lineBuf.Bytes(),
		secDebugFunc: debugBuf.Bytes(),
	}
	for i := uint16(1); i < secCount; i++ {
		sections[i].fileOffset = offset
		offset += sections[i].totalSize
	}

	if err := binary.Write(w, binary.BigEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(c.fileType)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, c.arch); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, c.entry); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, c.nameIndex); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(secCount-1)); err != nil {
		return err
	}
	for i := uint16(1); i < secCount; i++ {
		s := sections[i]
		if err := binary.Write(w, binary.BigEndian, s.kind); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, s.entrySize); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, s.totalSize); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, s.fileOffset); err != nil {
			return err
		}
	}
	for i := uint16(1); i < secCount; i++ {
		if _, err := w.Write(payloads[i]); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses a POFF image already read into memory.
func Decode(data []byte) (*Container, error) {
	r := bytes.NewReader(data)

	var gotMagic uint32
	if err := binary.Read(r, binary.BigEndian, &gotMagic); err != nil || gotMagic != magic {
		return nil, ErrBadMagic
	}

	var gotVersion, fileType, sectionCount uint16
	var arch uint16
	var entry uint32
	var nameIndex int32
	if err := binary.Read(r, binary.BigEndian, &gotVersion); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &fileType); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &arch); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &entry); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.BigEndian, &sectionCount); err != nil {
		return nil, ErrTruncated
	}

	descs := make([]sectionDesc, sectionCount)
	for i := range descs {
		var d sectionDesc
		if err := binary.Read(r, binary.BigEndian, &d.kind); err != nil {
			return nil, ErrTruncated
		}
		if err := binary.Read(r, binary.BigEndian, &d.entrySize); err != nil {
			return nil, ErrTruncated
		}
		if err := binary.Read(r, binary.BigEndian, &d.totalSize); err != nil {
			return nil, ErrTruncated
		}
		if err := binary.Read(r, binary.BigEndian, &d.fileOffset); err != nil {
			return nil, ErrTruncated
		}
		descs[i] = d
	}

	c := &Container{fileType: FileType(fileType), arch: arch, entry: entry, nameIndex: nameIndex}

	for _, d := range descs {
		if int(d.fileOffset)+int(d.totalSize) > len(data) {
			return nil, ErrTruncated
		}
		section := data[d.fileOffset : d.fileOffset+d.totalSize]
		switch d.kind {
		case secProgram:
			c.program = append([]byte(nil), section...)
		case secRoData:
			c.rodata = append([]byte(nil), section...)
		case secString:
			c.strtab = append([]byte(nil), section...)
		case secSymbol:
			c.symbols = decodeSymbols(section)
		case secReloc:
			c.relocs = decodeRelocs(section)
		case secLine:
			c.lines = decodeLines(section)
		case secDebugFunc:
			c.debug = decodeDebug(section)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownSect, d.kind)
		}
	}
	return c, nil
}

func decodeSymbols(section []byte) []Symbol {
	r := bytes.NewReader(section)
	var out []Symbol
	for r.Len() > 0 {
		var rec symbolRec
		if binary.Read(r, binary.BigEndian, &rec) != nil {
			break
		}
		out = append(out, Symbol{NameOffset: rec.NameOffset, Value: rec.Value})
	}
	return out
}

func decodeRelocs(section []byte) []Relocation {
	r := bytes.NewReader(section)
	var out []Relocation
	for r.Len() > 0 {
		var rec relocRec
		if binary.Read(r, binary.BigEndian, &rec) != nil {
			break
		}
		out = append(out, Relocation{Type: RelocType(rec.Type), SymbolIndex: rec.SymbolIndex, SectionOffset: rec.SectionOffset})
	}
	return out
}

func decodeLines(section []byte) []LineEntry {
	r := bytes.NewReader(section)
	var out []LineEntry
	for r.Len() > 0 {
		var rec lineRec
		if binary.Read(r, binary.BigEndian, &rec) != nil {
			break
		}
		out = append(out, LineEntry{Line: rec.Line, FileNameOffset: rec.FileNameOffset, ProgramOffset: rec.ProgramOffset})
	}
	return out
}

func decodeDebug(section []byte) []DebugFunc {
	r := bytes.NewReader(section)
	var out []DebugFunc
	for r.Len() > 0 {
		var rec debugRec
		if binary.Read(r, binary.BigEndian, &rec) != nil {
			break
		}
		out = append(out, DebugFunc{NameOffset: rec.NameOffset, EntryOffset: rec.EntryOffset, Level: rec.Level})
	}
	return out
}
