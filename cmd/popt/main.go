/*
 * pcode - popt: P-code peephole optimizer
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

// Command popt runs the three-pass peephole optimizer over a compiler's
// .o1 output and writes the finalized .o (§6.4).
package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pmachine/pcode/optimizer"
	"github.com/pmachine/pcode/poff"
	logger "github.com/pmachine/pcode/util/logger"
)

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTrace := getopt.BoolLong("trace", 't', "Trace optimizer rewrites")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}
	name := args[0]

	var logDest *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "popt:", err)
			os.Exit(1)
		}
		logDest = f
	}
	programLevel := new(slog.LevelVar)
	if *optTrace {
		programLevel.Set(slog.LevelDebug)
	}
	log := slog.New(logger.NewHandler(logDest, &slog.HandlerOptions{Level: programLevel}, optTrace))
	slog.SetDefault(log)

	if err := run(name); err != nil {
		log.Error(err.Error())
		fmt.Fprintln(os.Stderr, "popt:", err)
		os.Exit(1)
	}
}

func run(name string) error {
	prog, err := poff.LoadFile(name + ".o1")
	if err != nil {
		return err
	}

	changes, err := optimizer.Run(prog, 0, 0)
	if err != nil {
		return err
	}
	slog.Debug("optimizer pass complete", "rewrites", changes)

	return prog.WriteFile(name + ".o")
}
