/*
 * pcode - pas: Pascal compiler front end
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

// Command pas compiles one Pascal source file to unoptimized P-code
// (§6.4). It writes <source>.o1 and <source>.lst on success, and
// <source>.err only when compilation fails.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pmachine/pcode/compiler"
	"github.com/pmachine/pcode/disasm"
	logger "github.com/pmachine/pcode/util/logger"
)

// maxIncludePaths bounds -I per §6.4's "up to a fixed maximum"; this
// front end has no include/unit-import mechanism yet; -I is accepted
// and recorded but never searched. See DESIGN.md.
const maxIncludePaths = 16

func main() {
	optInclude := getopt.ListLong("include", 'I', "Include/unit search path (accepted, not yet searched)")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}
	source := args[0]

	if len(*optInclude) > maxIncludePaths {
		fmt.Fprintf(os.Stderr, "pas: too many -I paths (max %d)\n", maxIncludePaths)
		os.Exit(1)
	}

	var logDest *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pas:", err)
			os.Exit(1)
		}
		logDest = f
	}
	log := slog.New(logger.NewHandler(logDest, nil, nil))
	slog.SetDefault(log)

	base := strings.TrimSuffix(source, ".pas")
	if err := run(source, base); err != nil {
		if werr := os.WriteFile(base+".err", []byte(err.Error()+"\n"), 0644); werr != nil {
			fmt.Fprintln(os.Stderr, "pas:", werr)
		}
		log.Error(err.Error())
		fmt.Fprintln(os.Stderr, "pas:", err)
		os.Exit(1)
	}
	// A prior run may have left a stale .err behind; a clean compile
	// means there is nothing left to report.
	os.Remove(base + ".err")
}

func run(source, base string) error {
	src, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	prog, err := compiler.Parse(string(src))
	if err != nil {
		return err
	}

	container, err := compiler.Compile(prog)
	if err != nil {
		return err
	}

	if err := container.WriteFile(base + ".o1"); err != nil {
		return err
	}

	listing := disasm.Listing(container, disasm.All())
	return os.WriteFile(base+".lst", []byte(listing), 0644)
}
