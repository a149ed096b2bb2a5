/*
 * pcode - POFF container tests
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
	"path/filepath"
	"testing"
)

func buildSample() *Container {
	c := New()
	c.SetFileType(TypeProgram)
	c.SetArch(ArchP16)
	c.SetFileName("t.pas")
	nameOff := c.AddString("main")
	c.AppendProgram([]byte{0x01, 0x02, 0x03})
	c.AddRoData([]byte{0xaa, 0xbb})
	c.AddSymbol(Symbol{NameOffset: nameOff, Value: 0})
	c.AddLine(LineEntry{Line: 1, FileNameOffset: 0, ProgramOffset: 0})
	c.AddRelocation(Relocation{Type: RelocProgram, SymbolIndex: 0, SectionOffset: 1})
	c.SetEntry(0)
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := buildSample()

	var buf bytes.Buffer
	if err := c.encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.FileType() != TypeProgram {
		t.Errorf("FileType = %v, want %v", decoded.FileType(), TypeProgram)
	}
	if !bytes.Equal(decoded.Program(), c.Program()) {
		t.Errorf("Program = %v, want %v", decoded.Program(), c.Program())
	}
	if !bytes.Equal(decoded.RoData(), c.RoData()) {
		t.Errorf("RoData = %v, want %v", decoded.RoData(), c.RoData())
	}
	if len(decoded.Symbols()) != 1 {
		t.Fatalf("len(Symbols) = %d, want 1", len(decoded.Symbols()))
	}
	name, err := decoded.StringAt(decoded.Symbols()[0].NameOffset)
	if err != nil || name != "main" {
		t.Errorf("symbol name = %q, %v, want \"main\"", name, err)
	}
	if len(decoded.Relocations()) != 1 {
		t.Fatalf("len(Relocations) = %d, want 1", len(decoded.Relocations()))
	}
}

func TestWriteLoadFile(t *testing.T) {
	c := buildSample()
	path := filepath.Join(t.TempDir(), "sample.o")
	if err := c.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(loaded.Program(), c.Program()) {
		t.Errorf("Program mismatch after file round trip")
	}
}

func TestCursorSemantics(t *testing.T) {
	c := buildSample()
	if c.Tell() != 0 {
		t.Fatalf("Tell() = %d, want 0", c.Tell())
	}
	b, ok := c.NextByte()
	if !ok || b != 0x01 {
		t.Fatalf("NextByte() = %v, %v, want 0x01, true", b, ok)
	}
	if c.Tell() != 1 {
		t.Errorf("Tell() = %d, want 1", c.Tell())
	}
	if err := c.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, ok := c.NextByte(); !ok {
			t.Fatalf("NextByte() ran out early at i=%d", i)
		}
	}
	if _, ok := c.NextByte(); ok {
		t.Error("NextByte() should return false at end of program section")
	}
}

func TestDecodeBadMagic(t *testing.T) {
	if _, err := Decode([]byte{0, 0, 0, 0}); err != ErrBadMagic {
		t.Errorf("Decode with bad magic = %v, want %v", err, ErrBadMagic)
	}
}

func TestSwapProgram(t *testing.T) {
	main := New()
	main.AppendProgram([]byte{1, 2, 3})
	temp := NewTemp()
	temp.AppendProgram([]byte{9})

	main.SwapProgram(temp)
	if !bytes.Equal(main.Program(), []byte{9}) {
		t.Errorf("main.Program() = %v, want [9]", main.Program())
	}
	if !bytes.Equal(temp.Program(), []byte{1, 2, 3}) {
		t.Errorf("temp.Program() = %v, want [1 2 3]", temp.Program())
	}
}
