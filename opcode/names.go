/*
 * pcode - Opcode mnemonics
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

// opNames mirrors the teacher's disassembler opMap: one mnemonic per
// logical opcode, used both by errors and by package disasm.
var opNames = map[Op]string{
	LABEL: "LABEL", LINE: "LINE", NOP: "NOP", END: "END",

	ADD: "ADD", SUB: "SUB", MUL: "MUL", UMUL: "UMUL",
	DIV: "DIV", UDIV: "UDIV", MOD: "MOD", UMOD: "UMOD",
	NEG: "NEG", ABS: "ABS", INC: "INC", DEC: "DEC", NOT: "NOT",
	AND: "AND", OR: "OR", XOR: "XOR", SLL: "SLL", SRL: "SRL", SRA: "SRA",

	EQUZ: "EQUZ", NEQZ: "NEQZ", LTZ: "LTZ", GTEZ: "GTEZ", GTZ: "GTZ", LTEZ: "LTEZ",

	EQU: "EQU", NEQ: "NEQ", LT: "LT", GTE: "GTE", GT: "GT", LTE: "LTE",

	UEQU: "UEQU", UNEQ: "UNEQ", ULT: "ULT", UGTE: "UGTE", UGT: "UGT", ULTE: "ULTE",

	PUSH: "PUSH", PUSHB: "PUSHB", UPUSHB: "UPUSHB",
	DUP: "DUP", XCHG: "XCHG", POPS: "POPS", PUSHS: "PUSHS",
	INDS: "INDS", INCS: "INCS",

	LD: "LD", LDB: "LDB", ULDB: "ULDB",
	LDS: "LDS", LDSB: "LDSB", ULDSB: "ULDSB",
	LDX: "LDX", LDXB: "LDXB", ULDXB: "ULDXB",
	LDSX: "LDSX", LDSXB: "LDSXB", ULDSXB: "ULDSXB",
	LDM: "LDM", LDSM: "LDSM",

	ST: "ST", STB: "STB",
	STS: "STS", STSB: "STSB",
	STSX: "STSX", STSXB: "STSXB",
	STM: "STM", STSM: "STSM",

	LA: "LA", LAS: "LAS", LAC: "LAC", LAX: "LAX", LASX: "LASX",

	JMP: "JMP", JEQUZ: "JEQUZ", JNEQZ: "JNEQZ", JLTZ: "JLTZ",
	JGTEZ: "JGTEZ", JGTZ: "JGTZ", JLTEZ: "JLTEZ",

	PCAL: "PCAL", RET: "RET",

	LONGOP8: "LONGOP8", LONGOP24: "LONGOP24",

	SYSIO: "SYSIO", LIB: "LIB", SETOP: "SETOP", FLOAT: "FLOAT", OSOP: "OSOP",
}

// longNames mirrors opNames for the 32-bit sub-operations carried in
// LONGOP8.Arg1 / LONGOP24.Arg2.
var longNames = map[int]string{
	DADD: "DADD", DSUB: "DSUB", DMUL: "DMUL", DDIV: "DDIV", DMOD: "DMOD",
	DUMUL: "DUMUL", DUDIV: "DUDIV", DUMOD: "DUMOD",
	DNEG: "DNEG", DABS: "DABS", DINC: "DINC", DDEC: "DDEC", DNOT: "DNOT",
	DAND: "DAND", DOR: "DOR", DSLL: "DSLL", DSRL: "DSRL", DSRA: "DSRA",

	DEQUZ: "DEQUZ", DNEQZ: "DNEQZ", DLTZ: "DLTZ", DGTEZ: "DGTEZ", DGTZ: "DGTZ", DLTEZ: "DLTEZ",
	DEQU: "DEQU", DNEQ: "DNEQ", DLT: "DLT", DGTE: "DGTE", DGT: "DGT", DLTE: "DLTE",
	DUEQU: "DUEQU", DUNEQ: "DUNEQ", DULT: "DULT", DUGTE: "DUGTE", DUGT: "DUGT", DULTE: "DULTE",

	CNVD: "CNVD", UCNVD: "UCNVD",
	DPUSH: "DPUSH", DDUP: "DDUP", DXCHG: "DXCHG",
}

// LongName returns the mnemonic for a 32-bit sub-operation code.
func LongName(sub int) string {
	if name, ok := longNames[sub]; ok {
		return name
	}
	return "???"
}
