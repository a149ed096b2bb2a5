/*
 * pcode - Instruction encoder/decoder
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

// Package opcode implements the logical P-code instruction set: the
// variable-length byte encoding of §3.1, the physical opcode table used to
// decode an arbitrary byte, and the narrowing rule that keeps PUSH-family
// constants in their smallest encoding.
package opcode

import "errors"

// Op is a logical P-code opcode. Several logical opcodes (the PUSH family)
// share the same run-time meaning but encode to a different byte length;
// the optimizer and encoder pick among them via Narrow.
type Op uint16

// argFormat selects which of arg1/arg2 a logical opcode carries on the wire.
// The top two bits of the encoded byte are exactly this value.
type argFormat uint8

const (
	fmtNone argFormat = 0 // 1 byte: op only
	fmtArg1 argFormat = 1 // 2 bytes: op, arg1
	fmtArg2 argFormat = 2 // 3 bytes: op, arg2 (big-endian)
	fmtBoth argFormat = 3 // 4 bytes: op, arg1, arg2 (big-endian)
)

// Logical opcodes, grouped as in spec §3.1/§4.1-§4.4.
const (
	opInvalid Op = iota

	// Pseudo-ops. No run-time effect; stripped at finalize.
	LABEL // arg2 = label id, resolved to a program offset at finalize
	LINE  // arg2 = source line number
	NOP
	END // synthetic: returned by Decode at end of stream

	// 16-bit arithmetic.
	ADD
	SUB
	MUL
	UMUL
	DIV
	UDIV
	MOD
	UMOD
	NEG
	ABS
	INC
	DEC
	NOT
	AND
	OR
	XOR
	SLL
	SRL
	SRA

	// 16-bit comparison against zero (unary fold target; boolean result).
	EQUZ
	NEQZ
	LTZ
	GTEZ
	GTZ
	LTEZ

	// 16-bit binary comparison (signed).
	EQU
	NEQ
	LT
	GTE
	GT
	LTE

	// 16-bit binary comparison (unsigned).
	UEQU
	UNEQ
	ULT
	UGTE
	UGT
	ULTE

	// Data stack.
	PUSH   // push 16-bit constant, arg2 carries value
	PUSHB  // push 16-bit constant, signed 8-bit arg1
	UPUSHB // push 16-bit constant, unsigned 8-bit arg1
	DUP
	XCHG
	POPS
	PUSHS
	INDS // arg2: signed stack-pointer delta (discard)
	INCS // arg2: signed stack-pointer delta (allocate)

	// Load/store: immediate base offset, static-nesting offset, indexed.
	LD     // base-offset load, word
	LDB    // base-offset load, signed byte
	ULDB   // base-offset load, unsigned byte
	LDS    // static-nesting load, word, arg1=level, arg2=offset
	LDSB   // static-nesting load, signed byte
	ULDSB  // static-nesting load, unsigned byte
	LDX    // indexed base-offset load, word
	LDXB   // indexed base-offset load, signed byte
	ULDXB  // indexed base-offset load, unsigned byte
	LDSX   // indexed static-nesting load, word
	LDSXB  // indexed static-nesting load, signed byte
	ULDSXB // indexed static-nesting load, unsigned byte
	LDM    // multi-word base-offset load, arg1=word count
	LDSM   // multi-word static-nesting load

	ST    // base-offset store, word
	STB   // base-offset store, byte
	STS   // static-nesting store, word
	STSB  // static-nesting store, byte
	STSX  // indexed static-nesting store, word
	STSXB // indexed static-nesting store, byte
	STM   // multi-word base-offset store
	STSM  // multi-word static-nesting store

	// Address-load.
	LA    // base-offset address load
	LAS   // static-nesting address load
	LAC   // read-only-data address load (requires relocation)
	LAX   // indexed base-offset address load
	LASX  // indexed static-nesting address load

	// Branches.
	JMP
	JEQUZ
	JNEQZ
	JLTZ
	JGTEZ
	JGTZ
	JLTEZ

	// Procedure call/return.
	PCAL // arg1=static level, arg2=label
	RET

	// Escape to 32-bit operations.
	LONGOP8  // 8-bit sub-opcode rides in arg1
	LONGOP24 // sub-opcode plus operand rides in arg2

	// Service-call dispatch families. Sub-opcode rides in arg1 or arg2.
	SYSIO
	LIB
	SETOP
	FLOAT
	OSOP

	opMax
)

// Long (32-bit) operations, reached only through LONGOP8/LONGOP24. These
// never appear as a top-level encoded opcode; LONGOP8.arg1/LONGOP24.arg2
// carries one of these as a sub-code. They are declared here so the
// optimizer's long-rule tables and the interpreter's dispatch share one
// vocabulary.
const (
	subInvalid = iota

	DADD
	DSUB
	DMUL
	DDIV
	DMOD
	DUMUL
	DUDIV
	DUMOD
	DNEG
	DABS
	DINC
	DDEC
	DNOT
	DAND
	DOR
	DSLL
	DSRL
	DSRA

	DEQUZ
	DNEQZ
	DLTZ
	DGTEZ
	DGTZ
	DLTEZ

	DEQU
	DNEQ
	DLT
	DGTE
	DGT
	DLTE

	DUEQU
	DUNEQ
	DULT
	DUGTE
	DUGT
	DULTE

	CNVD  // sign-extend top 16-bit push to 32 bits
	UCNVD // zero-extend top 16-bit push to 32 bits

	DPUSH // push a 32-bit constant (two 16-bit pushes worth)
	DDUP
	DXCHG
)

var errOverflow = errors.New("opcode: argument overflow")
var errUnknownOp = errors.New("opcode: unknown logical opcode")

type opInfo struct {
	name   string
	base   uint8 // 6-bit instruction number, unique within its format
	format argFormat
}

// opTable is the authoritative mapping from logical opcode to its encoded
// shape. base values are assigned densely per format family so that the
// combination (format, base) is unique and fits the 256-entry physical
// table (format in the top two bits, base in the bottom six).
var opTable map[Op]opInfo

// physTable maps an encoded byte (0-255) to the logical opcode it decodes
// to. Unassigned entries decode as invalid, matching §3.1's invariant (a).
var physTable [256]Op

func register(base *uint8, format argFormat, names ...Op) {
	for _, op := range names {
		b := *base
		*base++
		info := opInfo{name: opNameFallback(op), base: b, format: format}
		opTable[op] = info
		physTable[byte(format)<<6|b] = op
	}
}

func init() {
	opTable = make(map[Op]opInfo, opMax)

	var b0, b1, b2, b3 uint8

	register(&b0, fmtNone,
		NOP, END,
		ADD, SUB, MUL, UMUL, DIV, UDIV, MOD, UMOD,
		NEG, ABS, INC, DEC, NOT, AND, OR, XOR, SLL, SRL, SRA,
		EQUZ, NEQZ, LTZ, GTEZ, GTZ, LTEZ,
		EQU, NEQ, LT, GTE, GT, LTE,
		UEQU, UNEQ, ULT, UGTE, UGT, ULTE,
		DUP, XCHG, POPS, PUSHS,
		RET,
	)

	register(&b1, fmtArg1,
		PUSHB, UPUSHB,
		LDM, STM, LDSM, STSM,
		LONGOP8,
	)

	register(&b2, fmtArg2,
		PUSH, INDS, INCS,
		JMP, JEQUZ, JNEQZ, JLTZ, JGTEZ, JGTZ, JLTEZ,
		LAC,
		LONGOP24,
		LINE, LABEL,
	)

	register(&b3, fmtBoth,
		LD, LDB, ULDB, LDS, LDSB, ULDSB,
		LDX, LDXB, ULDXB, LDSX, LDSXB, ULDSXB,
		ST, STB, STS, STSB, STSX, STSXB,
		LA, LAS, LAX, LASX,
		PCAL,
		SYSIO, LIB, SETOP, FLOAT, OSOP,
	)

	if b0 > 64 || b1 > 64 || b2 > 64 || b3 > 64 {
		panic("opcode: too many opcodes for one encoded format")
	}
}

// opNameFallback returns a printable name for the disassembler and error
// messages. Kept in the same package as the table because both are
// generated from the same identifier list.
func opNameFallback(op Op) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "???"
}

// Name returns the mnemonic for a logical opcode, or "???" if unknown.
func Name(op Op) string {
	return opNameFallback(op)
}

// Instruction is one decoded (or to-be-encoded) P-code instruction.
type Instruction struct {
	Op   Op
	Arg1 uint8
	Arg2 uint16 // raw 16-bit bit pattern; interpret signed/unsigned per opcode
}

// Arg2Signed returns Arg2 reinterpreted as a signed 16-bit value.
func (i Instruction) Arg2Signed() int16 {
	return int16(i.Arg2)
}

// New builds an Instruction, narrowing PUSH family opcodes and validating
// argument ranges against the opcode's declared format (§4.1 overflow
// rule).
func New(op Op, arg1 int, arg2 int32) (Instruction, error) {
	info, ok := opTable[op]
	if !ok {
		return Instruction{}, errUnknownOp
	}

	if op == PUSH || op == PUSHB || op == UPUSHB {
		op = Narrow(arg2)
		info = opTable[op]
		// Narrowing folds the pushed constant into arg1 for the 2-byte
		// encodings; the caller always supplies the value via arg2.
		if info.format == fmtArg1 {
			arg1 = int(arg2)
		}
	}

	var ins Instruction
	ins.Op = op

	switch info.format {
	case fmtArg1:
		if arg1 < -128 || arg1 > 255 {
			return Instruction{}, errOverflow
		}
		ins.Arg1 = uint8(arg1)
	case fmtArg2:
		if arg2 < -32768 || arg2 > 65535 {
			return Instruction{}, errOverflow
		}
		ins.Arg2 = uint16(arg2)
	case fmtBoth:
		if arg1 < -128 || arg1 > 255 {
			return Instruction{}, errOverflow
		}
		if arg2 < -32768 || arg2 > 65535 {
			return Instruction{}, errOverflow
		}
		ins.Arg1 = uint8(arg1)
		ins.Arg2 = uint16(arg2)
	}

	return ins, nil
}

// Narrow picks the smallest PUSH-family opcode that can carry value without
// changing stack shape or semantics (§4.1 tie-break).
func Narrow(value int32) Op {
	switch {
	case value >= -128 && value <= 127:
		return PUSHB
	case value >= 0 && value <= 255:
		return UPUSHB
	default:
		return PUSH
	}
}

// Format reports how many bytes op occupies on the wire: 1, 2, 3, or 4.
func Format(op Op) (int, bool) {
	info, ok := opTable[op]
	if !ok {
		return 0, false
	}
	switch info.format {
	case fmtNone:
		return 1, true
	case fmtArg1:
		return 2, true
	case fmtArg2:
		return 3, true
	case fmtBoth:
		return 4, true
	}
	return 0, false
}

// RequiresRelocation reports whether op's arg2 is a program-counter label
// or a read-only-data pointer that the relocation engine must fix up
// (§3.1 invariant d).
func RequiresRelocation(op Op) bool {
	switch op {
	case LAC, JMP, JEQUZ, JNEQZ, JLTZ, JGTEZ, JGTZ, JLTEZ, PCAL:
		return true
	default:
		return false
	}
}

// Encode writes ins as 1-4 bytes, returning the emitted slice.
func Encode(ins Instruction) ([]byte, error) {
	info, ok := opTable[ins.Op]
	if !ok {
		return nil, errUnknownOp
	}

	byte0 := byte(info.format)<<6 | info.base

	switch info.format {
	case fmtNone:
		return []byte{byte0}, nil
	case fmtArg1:
		return []byte{byte0, ins.Arg1}, nil
	case fmtArg2:
		return []byte{byte0, byte(ins.Arg2 >> 8), byte(ins.Arg2)}, nil
	case fmtBoth:
		return []byte{byte0, ins.Arg1, byte(ins.Arg2 >> 8), byte(ins.Arg2)}, nil
	}
	return nil, errUnknownOp
}

// Decode reads one instruction starting at data[offset] and returns it
// along with the number of bytes consumed. Decode returns the synthetic
// END opcode, consuming zero bytes, once offset reaches len(data).
func Decode(data []byte, offset int) (Instruction, int, error) {
	if offset >= len(data) {
		return Instruction{Op: END}, 0, nil
	}

	b0 := data[offset]
	format := argFormat(b0 >> 6)

	op := physTable[b0]
	if op == opInvalid {
		return Instruction{}, 0, errUnknownOp
	}

	switch format {
	case fmtNone:
		return Instruction{Op: op}, 1, nil
	case fmtArg1:
		if offset+1 >= len(data) {
			return Instruction{}, 0, errOverflow
		}
		return Instruction{Op: op, Arg1: data[offset+1]}, 2, nil
	case fmtArg2:
		if offset+2 >= len(data) {
			return Instruction{}, 0, errOverflow
		}
		arg2 := uint16(data[offset+1])<<8 | uint16(data[offset+2])
		return Instruction{Op: op, Arg2: arg2}, 3, nil
	case fmtBoth:
		if offset+3 >= len(data) {
			return Instruction{}, 0, errOverflow
		}
		arg1 := data[offset+1]
		arg2 := uint16(data[offset+2])<<8 | uint16(data[offset+3])
		return Instruction{Op: op, Arg1: arg1, Arg2: arg2}, 4, nil
	}
	return Instruction{}, 0, errUnknownOp
}
