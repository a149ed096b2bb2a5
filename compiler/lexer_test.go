/*
 * pcode - Pascal front end: lexer tests
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

func TestLexerTokenStream(t *testing.T) {
	src := "program P; { a comment }\nvar x: integer;\nbegin\n  x := 3 <= 4\nend."
	l := newLexer(src)

	want := []struct {
		kind tokenKind
		text string
	}{
		{tokKeyword, "program"},
		{tokIdent, "p"},
		{tokSymbol, ";"},
		{tokKeyword, "var"},
		{tokIdent, "x"},
		{tokSymbol, ":"},
		{tokKeyword, "integer"},
		{tokSymbol, ";"},
		{tokKeyword, "begin"},
		{tokIdent, "x"},
		{tokSymbol, ":="},
		{tokInt, "3"},
		{tokSymbol, "<="},
		{tokInt, "4"},
		{tokKeyword, "end"},
		{tokSymbol, "."},
		{tokEOF, ""},
	}

	for i, w := range want {
		tok, err := l.next()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if tok.kind != w.kind || tok.text != w.text {
			t.Fatalf("token %d: got {%v %q}, want {%v %q}", i, tok.kind, tok.text, w.kind, w.text)
		}
	}
}

func TestLexerIdentifiersFoldToLowercase(t *testing.T) {
	l := newLexer("WriteLn")
	tok, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.kind != tokKeyword || tok.text != "writeln" {
		t.Fatalf("got %+v, want writeln keyword", tok)
	}
}

func TestLexerParenStarComment(t *testing.T) {
	l := newLexer("(* skip this *) true")
	tok, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.kind != tokKeyword || tok.text != "true" {
		t.Fatalf("got %+v, want true keyword after comment", tok)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := newLexer("@")
	if _, err := l.next(); err == nil {
		t.Fatal("expected an error for an unrecognized character")
	}
}
