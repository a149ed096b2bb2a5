/*
 * pcode - plist: POFF lister/disassembler
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

// Command plist renders a .o/.o1 container's sections as text (§6.4).
// Flag letters pick sections one for one: -a all, -h header, -l line
// numbers, -S symbols, -s strings, -r relocations, -d debug functions,
// -H raw instruction bytes.
package main

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pmachine/pcode/disasm"
	"github.com/pmachine/pcode/poff"
)

func main() {
	optAll := getopt.BoolLong("all", 'a', "Dump every section")
	optHeader := getopt.BoolLong("header", 'h', "Dump the file header")
	optLines := getopt.BoolLong("lines", 'l', "Interleave source line numbers")
	optSymbols := getopt.BoolLong("symbols", 'S', "Dump the symbol table")
	optStrings := getopt.BoolLong("strings", 's', "Dump the string table")
	optRelocs := getopt.BoolLong("relocs", 'r', "Dump the relocation table")
	optDebug := getopt.BoolLong("debug", 'd', "Dump the debug-function table")
	optHex := getopt.BoolLong("hex", 'H', "Show raw encoded bytes beside each instruction")
	optHelp := getopt.BoolLong("help", '?', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}
	name := args[0]

	sec := disasm.Sections{
		Header: *optHeader, Lines: *optLines, Symbols: *optSymbols,
		Strings: *optStrings, Relocs: *optRelocs, Debug: *optDebug, HexBytes: *optHex,
	}
	if *optAll {
		sec = disasm.All()
	}
	sec.Code = true

	if err := run(name, sec); err != nil {
		fmt.Fprintln(os.Stderr, "plist:", err)
		os.Exit(1)
	}
}

func run(name string, sec disasm.Sections) error {
	path := name + ".o"
	prog, err := poff.LoadFile(path)
	if err != nil {
		path = name + ".o1"
		prog, err = poff.LoadFile(path)
		if err != nil {
			return err
		}
	}

	fmt.Print(disasm.Listing(prog, sec))
	return nil
}
