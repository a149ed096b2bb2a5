/*
 * pcode - Pascal front end: recursive-descent parser
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

import "fmt"

// ParseError is a semantic or syntax error the front end refuses to
// compile past (§7 "Semantic" taxonomy: expected-token, undefined
// identifier, type mismatch never reach the core).
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Msg) }

type parser struct {
	lex  *lexer
	tok  token
	prev token
}

// Parse lexes and parses src, returning the AST or the first error
// encountered.
func Parse(src string) (*Program, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *parser) advance() error {
	p.prev = p.tok
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.kind == tokKeyword && p.tok.text == kw
}

func (p *parser) atSymbol(sym string) bool {
	return p.tok.kind == tokSymbol && p.tok.text == sym
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return &ParseError{Line: p.tok.line, Msg: fmt.Sprintf("expected %q, got %q", kw, p.tok.text)}
	}
	return p.advance()
}

func (p *parser) expectSymbol(sym string) error {
	if !p.atSymbol(sym) {
		return &ParseError{Line: p.tok.line, Msg: fmt.Sprintf("expected %q, got %q", sym, p.tok.text)}
	}
	return p.advance()
}

func (p *parser) expectIdent() (string, error) {
	if p.tok.kind != tokIdent {
		return "", &ParseError{Line: p.tok.line, Msg: fmt.Sprintf("expected identifier, got %q", p.tok.text)}
	}
	name := p.tok.text
	return name, p.advance()
}

func (p *parser) parseProgram() (*Program, error) {
	if err := p.expectKeyword("program"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	prog := &Program{Name: name}

	if p.atKeyword("var") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.kind == tokIdent {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			prog.Vars = append(prog.Vars, decl)
		}
	}

	body, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	prog.Body = body.Stmts

	if err := p.expectSymbol("."); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *parser) parseVarDecl() (VarDecl, error) {
	line := p.tok.line
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return VarDecl{}, err
		}
		names = append(names, name)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return VarDecl{}, err
			}
			continue
		}
		break
	}
	if err := p.expectSymbol(":"); err != nil {
		return VarDecl{}, err
	}
	if p.tok.kind != tokKeyword || (p.tok.text != "integer" && p.tok.text != "boolean" && p.tok.text != "char") {
		return VarDecl{}, &ParseError{Line: p.tok.line, Msg: "expected a type name"}
	}
	typ := p.tok.text
	if err := p.advance(); err != nil {
		return VarDecl{}, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return VarDecl{}, err
	}
	return VarDecl{Names: names, Type: typ, Line: line}, nil
}

func (p *parser) parseCompound() (*CompoundStmt, error) {
	if err := p.expectKeyword("begin"); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.atSymbol(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return &CompoundStmt{Stmts: stmts}, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	switch {
	case p.atKeyword("begin"):
		return p.parseCompound()

	case p.atKeyword("if"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		thenStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		var elseStmt Stmt
		if p.atKeyword("else") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			elseStmt, err = p.parseStmt()
			if err != nil {
				return nil, err
			}
		}
		return &IfStmt{Cond: cond, Then: thenStmt, Else: elseStmt}, nil

	case p.atKeyword("while"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("do"); err != nil {
			return nil, err
		}
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case p.atKeyword("writeln"), p.atKeyword("write"):
		newline := p.tok.text == "writeln"
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []Expr
		if p.atSymbol("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			for !p.atSymbol(")") {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, e)
				if p.atSymbol(",") {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
		}
		return &WriteStmt{Newline: newline, Args: args}, nil

	case p.tok.kind == tokIdent:
		line := p.tok.line
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(":="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: name, Expr: e, Line: line}, nil

	default:
		return &EmptyStmt{}, nil
	}
}

// parseExpr handles relational operators, the lowest-precedence level.
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("=") || p.atSymbol("<>") || p.atSymbol("<") ||
		p.atSymbol("<=") || p.atSymbol(">") || p.atSymbol(">=") {
		op := p.tok.text
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

// parseSimple handles +, - and or (additive precedence).
func (p *parser) parseSimple() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("+") || p.atSymbol("-") || p.atKeyword("or") {
		op := p.tok.text
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

// parseTerm handles *, div, mod and and (multiplicative precedence).
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.atSymbol("*") || p.atKeyword("div") || p.atKeyword("mod") || p.atKeyword("and") {
		op := p.tok.text
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	switch {
	case p.atSymbol("-"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "-", X: x}, nil

	case p.atKeyword("not"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "not", X: x}, nil

	case p.atSymbol("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return e, nil

	case p.tok.kind == tokInt:
		v := p.tok.val
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IntLit{Val: v}, nil

	case p.atKeyword("true"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Val: true}, nil

	case p.atKeyword("false"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Val: false}, nil

	case p.tok.kind == tokIdent:
		line := p.tok.line
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &IdentExpr{Name: name, Line: line}, nil
	}

	return nil, &ParseError{Line: p.tok.line, Msg: fmt.Sprintf("unexpected token %q", p.tok.text)}
}
