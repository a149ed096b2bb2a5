/*
 * pcode - Pascal front end: code generator
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

package compiler

import (
	"fmt"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/opcode"
	"github.com/pmachine/pcode/poff"
)

// stdoutHandle is SYSIO's pre-registered file id 1 (§3.3 "standard
// streams"), the only output stream this front end's WRITE/WRITELN ever
// targets.
const stdoutHandle = 1

// varSym records one global variable's word offset and type. This front
// end keeps everything in the main program's own frame (the outermost,
// level-0 activation record that begins at bp on entry) instead of the
// interpreter's separate pre-stackBase globals region: the classic
// P-machine treats level 0 as "the globals", addressed by ordinary
// LD/ST/LA, and nothing in this subset needs a second addressing mode to
// reach a distinct globals segment.
type varSym struct {
	offset int32
	typ    string
}

type compiler struct {
	prog *poff.Container
	vars map[string]varSym
	next int32 // next free word offset in the main frame
	buf  []byte
}

// Compile lowers prog's AST into a fresh POFF container holding
// unoptimized (.o1-stage) P-code: no peephole rewriting has run, and
// relocations are recorded in ascending section-offset order exactly as
// popt's Pass 1/2 expect to find them (§4.3).
func Compile(prog *Program) (*poff.Container, error) {
	c := &compiler{prog: poff.New(), vars: make(map[string]varSym)}
	c.prog.SetFileType(poff.TypeProgram)
	c.prog.SetFileName(prog.Name)
	c.prog.SetArch(poff.ArchP16)
	c.prog.SetEntry(0)

	for _, decl := range prog.Vars {
		for _, name := range decl.Names {
			if _, dup := c.vars[name]; dup {
				return nil, &ParseError{Line: decl.Line, Msg: "duplicate identifier: " + name}
			}
			c.vars[name] = varSym{offset: c.next, typ: decl.Type}
			c.next++
		}
	}

	// Reserve frame space for the globals before any load/store touches
	// them; INCS's operand is a word count (§4.1 INDS/INCS).
	if c.next > 0 {
		if err := c.emit(opcode.INCS, 0, c.next); err != nil {
			return nil, err
		}
	}

	for _, s := range prog.Body {
		if err := c.compileStmt(s); err != nil {
			return nil, err
		}
	}

	if err := c.emitNoArg(opcode.END); err != nil {
		return nil, err
	}

	c.prog.ReplaceProgram(c.buf)
	return c.prog, nil
}

// emit encodes one instruction and appends it to the program buffer; it
// returns only an encoding error. Relocation-bearing opcodes (JMP family,
// PCAL, LAC) are not routed through this path directly; see emitJump and
// emitBackpatched, which also record the container's relocation entry.
func (c *compiler) emit(op opcode.Op, arg1 int, arg2 int32) error {
	ins, err := opcode.New(op, arg1, arg2)
	if err != nil {
		return err
	}
	enc, err := opcode.Encode(ins)
	if err != nil {
		return err
	}
	c.buf = append(c.buf, enc...)
	return nil
}

func (c *compiler) emitNoArg(op opcode.Op) error { return c.emit(op, 0, 0) }

// emitJump appends a jump-family instruction with a placeholder target,
// records the matching relocation entry (§4.3's producer contract: one
// entry per RequiresRelocation opcode, in ascending offset order), and
// returns the instruction's start offset so the caller can backpatch its
// target once it is known.
func (c *compiler) emitJump(op opcode.Op) (int, error) {
	offset := len(c.buf)
	if err := c.emit(op, 0, 0); err != nil {
		return 0, err
	}
	c.prog.AddRelocation(poff.Relocation{Type: poff.RelocProgram, SectionOffset: uint32(offset)})
	return offset, nil
}

// patchJump overwrites a previously emitted jump's target with target
// (callers pass here() for the current end of the buffer). JMP and the
// conditional jumps are always fmtArg2 (opcode byte + 2-byte big-endian
// arg2), so the patch never changes the instruction's length.
func (c *compiler) patchJump(offset int, target int32) {
	c.buf[offset+1] = byte(target >> 8)
	c.buf[offset+2] = byte(target)
}

func (c *compiler) here() int32 { return int32(len(c.buf)) }

func (c *compiler) compileStmt(s Stmt) error {
	switch st := s.(type) {
	case *EmptyStmt:
		return nil

	case *CompoundStmt:
		for _, inner := range st.Stmts {
			if err := c.compileStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *AssignStmt:
		sym, ok := c.vars[st.Name]
		if !ok {
			return &ParseError{Line: st.Line, Msg: "undefined identifier: " + st.Name}
		}
		if err := c.compileExpr(st.Expr); err != nil {
			return err
		}
		return c.emit(opcode.ST, 0, sym.offset*2)

	case *IfStmt:
		if err := c.compileExpr(st.Cond); err != nil {
			return err
		}
		falseJump, err := c.emitJump(opcode.JEQUZ)
		if err != nil {
			return err
		}
		if err := c.compileStmt(st.Then); err != nil {
			return err
		}
		if st.Else == nil {
			c.patchJump(falseJump, c.here())
			return nil
		}
		endJump, err := c.emitJump(opcode.JMP)
		if err != nil {
			return err
		}
		c.patchJump(falseJump, c.here())
		if err := c.compileStmt(st.Else); err != nil {
			return err
		}
		c.patchJump(endJump, c.here())
		return nil

	case *WhileStmt:
		top := c.here()
		if err := c.compileExpr(st.Cond); err != nil {
			return err
		}
		exitJump, err := c.emitJump(opcode.JEQUZ)
		if err != nil {
			return err
		}
		if err := c.compileStmt(st.Body); err != nil {
			return err
		}
		backJump, err := c.emitJump(opcode.JMP)
		if err != nil {
			return err
		}
		c.patchJump(backJump, top)
		c.patchJump(exitJump, c.here())
		return nil

	case *WriteStmt:
		for _, arg := range st.Args {
			if err := c.emit(opcode.PUSHB, 0, stdoutHandle); err != nil {
				return err
			}
			if err := c.compileExpr(arg); err != nil {
				return err
			}
			if err := c.emit(opcode.SYSIO, int(interp.SysWriteInt), 0); err != nil {
				return err
			}
		}
		if st.Newline {
			if err := c.emit(opcode.PUSHB, 0, stdoutHandle); err != nil {
				return err
			}
			if err := c.emit(opcode.SYSIO, int(interp.SysWriteLn), 0); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("compiler: unhandled statement %T", s)
	}
}

func (c *compiler) compileExpr(e Expr) error {
	switch ex := e.(type) {
	case *IntLit:
		return c.emit(opcode.PUSH, 0, ex.Val)

	case *BoolLit:
		// Booleans share the comparison opcodes' all-ones/all-zero
		// convention (§4.1 boolWord) so AND/OR/NOT and a literal agree
		// bit for bit.
		v := int32(0)
		if ex.Val {
			v = -1
		}
		return c.emit(opcode.PUSH, 0, v)

	case *IdentExpr:
		sym, ok := c.vars[ex.Name]
		if !ok {
			return &ParseError{Line: ex.Line, Msg: "undefined identifier: " + ex.Name}
		}
		return c.emit(opcode.LD, 0, sym.offset*2)

	case *UnaryExpr:
		if err := c.compileExpr(ex.X); err != nil {
			return err
		}
		switch ex.Op {
		case "-":
			return c.emitNoArg(opcode.NEG)
		case "not":
			return c.emitNoArg(opcode.NOT)
		}
		return fmt.Errorf("compiler: unhandled unary operator %q", ex.Op)

	case *BinExpr:
		if err := c.compileExpr(ex.L); err != nil {
			return err
		}
		if err := c.compileExpr(ex.R); err != nil {
			return err
		}
		switch ex.Op {
		case "+":
			return c.emitNoArg(opcode.ADD)
		case "-":
			return c.emitNoArg(opcode.SUB)
		case "*":
			return c.emitNoArg(opcode.MUL)
		case "div":
			return c.emitNoArg(opcode.DIV)
		case "mod":
			return c.emitNoArg(opcode.MOD)
		case "and":
			return c.emitNoArg(opcode.AND)
		case "or":
			return c.emitNoArg(opcode.OR)
		case "=":
			return c.emitNoArg(opcode.EQU)
		case "<>":
			return c.emitNoArg(opcode.NEQ)
		case "<":
			return c.emitNoArg(opcode.LT)
		case "<=":
			return c.emitNoArg(opcode.LTE)
		case ">":
			return c.emitNoArg(opcode.GT)
		case ">=":
			return c.emitNoArg(opcode.GTE)
		}
		return fmt.Errorf("compiler: unhandled binary operator %q", ex.Op)

	default:
		return fmt.Errorf("compiler: unhandled expression %T", e)
	}
}
