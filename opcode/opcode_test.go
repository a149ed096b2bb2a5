/*
 * pcode - Instruction encoder/decoder tests
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

package opcode

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		arg1 int
		arg2 int32
		want int // expected encoded length
	}{
		{"ADD", ADD, 0, 0, 1},
		{"LONGOP8", LONGOP8, 5, 0, 2},
		{"JMP", JMP, 0, 1000, 3},
		{"LDS", LDS, 1, 12, 4},
		{"PUSHB small", PUSH, 0, 5, 2}, // narrows to PUSHB
		{"UPUSHB mid", PUSH, 0, 200, 2},
		{"PUSH wide", PUSH, 0, 40000, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ins, err := New(test.op, test.arg1, test.arg2)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			encoded, err := Encode(ins)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(encoded) != test.want {
				t.Errorf("Encode length = %d, want %d", len(encoded), test.want)
			}

			decoded, n, err := Decode(encoded, 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if n != len(encoded) {
				t.Errorf("Decode consumed %d bytes, want %d", n, len(encoded))
			}
			if decoded != ins {
				t.Errorf("Decode round trip = %+v, want %+v", decoded, ins)
			}
		})
	}
}

func TestNarrowIsCanonical(t *testing.T) {
	tests := []struct {
		value int32
		want  Op
	}{
		{-128, PUSHB},
		{127, PUSHB},
		{128, UPUSHB},
		{255, UPUSHB},
		{256, PUSH},
		{-129, PUSH},
	}
	for _, test := range tests {
		if got := Narrow(test.value); got != test.want {
			t.Errorf("Narrow(%d) = %v, want %v", test.value, Name(got), Name(test.want))
		}
	}
}

func TestEncodeOverflow(t *testing.T) {
	if _, err := New(LDS, 1, 70000); err == nil {
		t.Error("expected overflow error for arg2 out of range")
	}
	if _, err := New(LDS, 500, 0); err == nil {
		t.Error("expected overflow error for arg1 out of range")
	}
}

func TestDecodeEndOfStream(t *testing.T) {
	ins, n, err := Decode(nil, 0)
	if err != nil {
		t.Fatalf("Decode at end of stream: %v", err)
	}
	if n != 0 || ins.Op != END {
		t.Errorf("Decode at end of stream = %+v, %d, want END, 0", ins, n)
	}
}

func TestDecodeInvalidOpcode(t *testing.T) {
	// Find a byte value with no registered physical opcode.
	var unassigned = -1
	for b := 0; b < 256; b++ {
		if physTable[b] == opInvalid {
			unassigned = b
			break
		}
	}
	if unassigned == -1 {
		t.Fatal("no unassigned opcode byte found; table is full")
	}
	if _, _, err := Decode([]byte{byte(unassigned)}, 0); err == nil {
		t.Error("expected error decoding unassigned opcode byte")
	}
}

func TestRequiresRelocation(t *testing.T) {
	for _, op := range []Op{LAC, JMP, PCAL, JEQUZ} {
		if !RequiresRelocation(op) {
			t.Errorf("%s should require relocation", Name(op))
		}
	}
	for _, op := range []Op{ADD, DUP, NOP} {
		if RequiresRelocation(op) {
			t.Errorf("%s should not require relocation", Name(op))
		}
	}
}
