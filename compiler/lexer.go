/*
 * pcode - Pascal front end: lexer
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

// Package compiler is the Pascal front end the core specification treats
// as an external collaborator (§1): a lexer, a recursive-descent parser
// and a single-pass code generator that emits logical P-codes into a
// POFF container. It implements a deliberately small Pascal subset —
// one global scope, no nested procedures — sufficient to drive the core
// pipeline end to end; see DESIGN.md for the scope decision.
package compiler

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokSymbol // punctuation and operators, identified by their literal text
	tokKeyword
)

type token struct {
	kind tokenKind
	text string
	val  int32 // valid when kind == tokInt
	line int
}

var keywords = map[string]bool{
	"program": true, "var": true, "begin": true, "end": true,
	"if": true, "then": true, "else": true, "while": true, "do": true,
	"writeln": true, "write": true, "div": true, "mod": true,
	"not": true, "and": true, "or": true, "true": true, "false": true,
	"integer": true, "boolean": true, "char": true,
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.peekByte()
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool  { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlnum(b byte) bool  { return isAlpha(b) || isDigit(b) }

func (l *lexer) skipTrivia() {
	for {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '{':
			for l.peekByte() != '}' && l.peekByte() != 0 {
				l.advance()
			}
			l.advance()
		default:
			if l.peekByte() == '(' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*' {
				l.advance()
				l.advance()
				for !(l.peekByte() == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == ')') && l.peekByte() != 0 {
					l.advance()
				}
				l.advance()
				l.advance()
				continue
			}
			return
		}
	}
}

// next returns the next token, or a tokEOF token once the source is
// exhausted.
func (l *lexer) next() (token, error) {
	l.skipTrivia()
	line := l.line
	b := l.peekByte()

	if b == 0 {
		return token{kind: tokEOF, line: line}, nil
	}

	if isDigit(b) {
		start := l.pos
		for isDigit(l.peekByte()) {
			l.advance()
		}
		text := l.src[start:l.pos]
		var v int32
		for i := 0; i < len(text); i++ {
			v = v*10 + int32(text[i]-'0')
		}
		return token{kind: tokInt, text: text, val: v, line: line}, nil
	}

	if isAlpha(b) {
		start := l.pos
		for isAlnum(l.peekByte()) {
			l.advance()
		}
		text := l.src[start:l.pos]
		lower := strings.ToLower(text)
		if keywords[lower] {
			return token{kind: tokKeyword, text: lower, line: line}, nil
		}
		return token{kind: tokIdent, text: lower, line: line}, nil
	}

	switch b {
	case ':':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token{kind: tokSymbol, text: ":=", line: line}, nil
		}
		return token{kind: tokSymbol, text: ":", line: line}, nil
	case '<':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token{kind: tokSymbol, text: "<=", line: line}, nil
		}
		if l.peekByte() == '>' {
			l.advance()
			return token{kind: tokSymbol, text: "<>", line: line}, nil
		}
		return token{kind: tokSymbol, text: "<", line: line}, nil
	case '>':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token{kind: tokSymbol, text: ">=", line: line}, nil
		}
		return token{kind: tokSymbol, text: ">", line: line}, nil
	case ';', '.', ',', '(', ')', '+', '-', '*', '=':
		l.advance()
		return token{kind: tokSymbol, text: string(b), line: line}, nil
	case '/':
		l.advance()
		return token{kind: tokSymbol, text: "/", line: line}, nil
	}

	return token{}, fmt.Errorf("line %d: unexpected character %q", line, b)
}
