/*
 * pcode - Pascal front end: abstract syntax tree
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

// Program is the root of a parsed Pascal source file.
type Program struct {
	Name string
	Vars []VarDecl
	Body []Stmt
}

// VarDecl declares a run of identifiers sharing one type.
type VarDecl struct {
	Names []string
	Type  string // "integer", "boolean" or "char"
	Line  int
}

// Stmt is any executable statement.
type Stmt interface{ stmtNode() }

type AssignStmt struct {
	Name string
	Expr Expr
	Line int
}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else branch
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

type CompoundStmt struct {
	Stmts []Stmt
}

type WriteStmt struct {
	Newline bool
	Args    []Expr
}

type EmptyStmt struct{}

func (AssignStmt) stmtNode()   {}
func (IfStmt) stmtNode()       {}
func (WhileStmt) stmtNode()    {}
func (CompoundStmt) stmtNode() {}
func (WriteStmt) stmtNode()    {}
func (EmptyStmt) stmtNode()    {}

// Expr is any expression.
type Expr interface{ exprNode() }

type BinExpr struct {
	Op   string
	L, R Expr
	Line int
}

type UnaryExpr struct {
	Op string
	X  Expr
}

type IdentExpr struct {
	Name string
	Line int
}

type IntLit struct{ Val int32 }

type BoolLit struct{ Val bool }

func (BinExpr) exprNode()   {}
func (UnaryExpr) exprNode() {}
func (IdentExpr) exprNode() {}
func (IntLit) exprNode()    {}
func (BoolLit) exprNode()   {}
