/*
 * pcode - Pascal front end: parser tests
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

import "testing"

func TestParseVarsAndAssignments(t *testing.T) {
	src := `program Sum;
var
  x, y: integer;
begin
  x := 3;
  y := 4;
  writeln(x + y)
end.`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prog.Name != "sum" {
		t.Fatalf("Name = %q, want sum", prog.Name)
	}
	if len(prog.Vars) != 1 || len(prog.Vars[0].Names) != 2 {
		t.Fatalf("Vars = %+v, want one decl with two names", prog.Vars)
	}
	if prog.Vars[0].Type != "integer" {
		t.Fatalf("Type = %q, want integer", prog.Vars[0].Type)
	}
	if len(prog.Body) != 3 {
		t.Fatalf("Body has %d statements, want 3", len(prog.Body))
	}

	asn, ok := prog.Body[0].(*AssignStmt)
	if !ok || asn.Name != "x" {
		t.Fatalf("Body[0] = %#v, want AssignStmt to x", prog.Body[0])
	}
	ws, ok := prog.Body[2].(*WriteStmt)
	if !ok || !ws.Newline || len(ws.Args) != 1 {
		t.Fatalf("Body[2] = %#v, want a one-arg WRITELN", prog.Body[2])
	}
	bin, ok := ws.Args[0].(*BinExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("write argument = %#v, want x + y", ws.Args[0])
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	src := `program P;
var x: integer;
begin
  if x > 0 then
    x := x - 1
  else
    x := 0;
  while x < 10 do
    x := x + 1
end.`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("Body has %d statements, want 2", len(prog.Body))
	}
	ifs, ok := prog.Body[0].(*IfStmt)
	if !ok || ifs.Else == nil {
		t.Fatalf("Body[0] = %#v, want an if/else", prog.Body[0])
	}
	whl, ok := prog.Body[1].(*WhileStmt)
	if !ok {
		t.Fatalf("Body[1] = %#v, want a while", prog.Body[1])
	}
	cond, ok := whl.Cond.(*BinExpr)
	if !ok || cond.Op != "<" {
		t.Fatalf("while condition = %#v, want x < 10", whl.Cond)
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3), not (1 + 2) * 3.
	prog, err := Parse("program P;\nbegin\n  writeln(1 + 2 * 3)\nend.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ws := prog.Body[0].(*WriteStmt)
	top := ws.Args[0].(*BinExpr)
	if top.Op != "+" {
		t.Fatalf("top operator = %q, want +", top.Op)
	}
	rhs, ok := top.R.(*BinExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("right operand = %#v, want 2 * 3", top.R)
	}
}

func TestParseMissingExpressionSyntaxError(t *testing.T) {
	_, err := Parse("program P;\nbegin\n  x := \nend.")
	if err == nil {
		t.Fatal("expected a parse error for a missing expression")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
}
