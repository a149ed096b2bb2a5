/*
 * pcode - Interpreter: runtime sub-opcode namespaces
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

// Sub-opcode namespaces (§6.3). Each rides in the arg1 or arg2 of a
// SYSIO/LIB/SETOP/FLOAT/OSOP instruction and selects one entry of the
// corresponding dispatch table.

type SysOp uint8

const (
	SysAllocFile SysOp = iota
	SysFreeFile
	SysEOF
	SysEOLN
	SysFilePos
	SysFileSize
	SysSeek
	SysSeekEOF
	SysSeekEOLN
	SysAssignFile
	SysReset
	SysResetR
	SysRewrite
	SysRewriteR
	SysAppend
	SysCloseFile
	SysReadLn
	SysReadPg
	SysReadBin
	SysReadInt
	SysReadChr
	SysReadStr
	SysReadSsr
	SysReadRl
	SysWriteLn
	SysWritePg
	SysWriteBin
	SysWriteInt
	SysWriteWord
	SysWriteLong
	SysWriteULong
	SysWriteChr
	SysWriteStr
	SysWriteSsr
	SysWriteRl
	SysChdir
	SysMkdir
	SysRmdir
	SysGetdir
	SysOpendir
	SysReaddir
	SysFileinfo
	SysRewinddir
	SysClosedir
)

var sysOpNames = map[SysOp]string{
	SysAllocFile: "alloc-file", SysFreeFile: "free-file", SysEOF: "eof", SysEOLN: "eoln",
	SysFilePos: "filepos", SysFileSize: "filesize", SysSeek: "seek", SysSeekEOF: "seekeof",
	SysSeekEOLN: "seekeoln", SysAssignFile: "assignfile", SysReset: "reset", SysResetR: "resetr",
	SysRewrite: "rewrite", SysRewriteR: "rewriter", SysAppend: "append", SysCloseFile: "closefile",
	SysReadLn: "readln", SysReadPg: "readpg", SysReadBin: "readbin", SysReadInt: "readint",
	SysReadChr: "readchr", SysReadStr: "readstr", SysReadSsr: "readssr", SysReadRl: "readrl",
	SysWriteLn: "writeln", SysWritePg: "writepg", SysWriteBin: "writebin", SysWriteInt: "writeint",
	SysWriteWord: "writeword", SysWriteLong: "writelong", SysWriteULong: "writeulong",
	SysWriteChr: "writechr", SysWriteStr: "writestr", SysWriteSsr: "writessr", SysWriteRl: "writerl",
	SysChdir: "chdir", SysMkdir: "mkdir", SysRmdir: "rmdir", SysGetdir: "getdir",
	SysOpendir: "opendir", SysReaddir: "readdir", SysFileinfo: "fileinfo",
	SysRewinddir: "rewinddir", SysClosedir: "closedir",
}

func (s SysOp) String() string {
	if name, ok := sysOpNames[s]; ok {
		return name
	}
	return "sysop?"
}

type LibOp uint8

const (
	LibStrCpy LibOp = iota
	LibSStrCpy
	LibConvert
	LibStrInit
	LibSStrInit
	LibStrTmp
	LibStrDup
	LibSStrDup
	LibMkStkC
	LibStrCat
	LibStrCmp
	LibCopySubstr
	LibFindSubstr
	LibVal
	LibCharAt
	LibStrLen
	LibInsertStr
	LibDelSubstr
	LibFillChar
)

var libOpNames = map[LibOp]string{
	LibStrCpy: "strcpy", LibSStrCpy: "sstrcpy", LibConvert: "convert", LibStrInit: "strinit",
	LibSStrInit: "sstrinit", LibStrTmp: "strtmp", LibStrDup: "strdup", LibSStrDup: "sstrdup",
	LibMkStkC: "mkstkc", LibStrCat: "strcat", LibStrCmp: "strcmp", LibCopySubstr: "copysubstr",
	LibFindSubstr: "findsubstr", LibVal: "val", LibCharAt: "charat", LibStrLen: "strlen",
	LibInsertStr: "insertstr", LibDelSubstr: "delsubstr", LibFillChar: "fillchar",
}

func (l LibOp) String() string {
	if name, ok := libOpNames[l]; ok {
		return name
	}
	return "libop?"
}

type SetOp uint8

const (
	SetIntersection SetOp = iota
	SetUnion
	SetDifference
	SetSymDifference
	SetEquality
	SetInequality
	SetContains
	SetMember
	SetInclude
	SetExclude
	SetCardinality
	SetSingleton
	SetSubrange
)

var setOpNames = map[SetOp]string{
	SetIntersection: "intersection", SetUnion: "union", SetDifference: "difference",
	SetSymDifference: "symmetric-difference", SetEquality: "equality", SetInequality: "inequality",
	SetContains: "contains", SetMember: "member", SetInclude: "include", SetExclude: "exclude",
	SetCardinality: "cardinality", SetSingleton: "singleton", SetSubrange: "subrange",
}

func (s SetOp) String() string {
	if name, ok := setOpNames[s]; ok {
		return name
	}
	return "setop?"
}

type FloatOp uint8

const (
	FloatFloat FloatOp = iota
	FloatTrunc
	FloatRound
	FloatAdd
	FloatSub
	FloatMul
	FloatDiv
	FloatMod
	FloatEqu
	FloatNeq
	FloatLt
	FloatGte
	FloatGt
	FloatLte
	FloatNeg
	FloatAbs
	FloatSqr
	FloatSqrt
	FloatSin
	FloatCos
	FloatAtan
	FloatLn
	FloatExp
)

var floatOpNames = map[FloatOp]string{
	FloatFloat: "float", FloatTrunc: "trunc", FloatRound: "round", FloatAdd: "add",
	FloatSub: "sub", FloatMul: "mul", FloatDiv: "div", FloatMod: "mod", FloatEqu: "equ",
	FloatNeq: "neq", FloatLt: "lt", FloatGte: "gte", FloatGt: "gt", FloatLte: "lte",
	FloatNeg: "neg", FloatAbs: "abs", FloatSqr: "sqr", FloatSqrt: "sqrt", FloatSin: "sin",
	FloatCos: "cos", FloatAtan: "atan", FloatLn: "ln", FloatExp: "exp",
}

func (f FloatOp) String() string {
	if name, ok := floatOpNames[f]; ok {
		return name
	}
	return "floatop?"
}

type OsOp uint8

const (
	OsExit OsOp = iota
	OsNew
	OsDispose
	OsGetenv
	OsSpawn
)

var osOpNames = map[OsOp]string{
	OsExit: "exit", OsNew: "new", OsDispose: "dispose", OsGetenv: "getenv", OsSpawn: "spawn",
}

func (o OsOp) String() string {
	if name, ok := osOpNames[o]; ok {
		return name
	}
	return "osop?"
}

// SysOpName, LibOpName, SetOpName, FloatOpName and OsOpName let the
// lister print a symbolic name for a raw sub-opcode byte even if it is
// out of range, matching the opcode package's Name fallback convention.
func SysOpName(v uint8) string   { return SysOp(v).String() }
func LibOpName(v uint8) string   { return LibOp(v).String() }
func SetOpName(v uint8) string   { return SetOp(v).String() }
func FloatOpName(v uint8) string { return FloatOp(v).String() }
func OsOpName(v uint8) string    { return OsOp(v).String() }
