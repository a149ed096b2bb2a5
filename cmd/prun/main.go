/*
 * pcode - prun: P-machine interpreter
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

// Command prun loads a finalized .o image and executes it on the
// P-machine (§6.4). Its exit code is the Pascal program's own exitCode,
// or 1 if the image cannot be loaded.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/poff"
	logger "github.com/pmachine/pcode/util/logger"
)

func main() {
	optAlloc := getopt.IntLong("alloc", 'a', int(interp.DefaultMemConfig.Globals), "Global data size, bytes")
	optStack := getopt.IntLong("stack", 's', int(interp.DefaultMemConfig.Stack), "Stack size, bytes")
	optStrStack := getopt.IntLong("strstack", 't', int(interp.DefaultMemConfig.StrStack), "String stack size, bytes")
	optHeap := getopt.IntLong("heap", 'n', int(interp.DefaultMemConfig.Heap), "Heap size, bytes")
	optDebug := getopt.BoolLong("debug", 'd', "Drop into the interactive debug console before running")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
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
			fmt.Fprintln(os.Stderr, "prun:", err)
			os.Exit(1)
		}
		logDest = f
	}
	programLevel := new(slog.LevelVar)
	if *optDebug {
		programLevel.Set(slog.LevelDebug)
	}
	log := slog.New(logger.NewHandler(logDest, &slog.HandlerOptions{Level: programLevel}, optDebug))
	slog.SetDefault(log)

	cfg := interp.MemConfig{
		Globals:  uint32(*optAlloc),
		Stack:    uint32(*optStack),
		StrStack: uint32(*optStrStack),
		Heap:     uint32(*optHeap),
	}

	prog, err := poff.LoadFile(name + ".o")
	if err != nil {
		log.Error(err.Error())
		fmt.Fprintln(os.Stderr, "prun:", err)
		os.Exit(1)
	}

	m := interp.NewMachine(cfg, prog, log)

	// SIGINT or SIGTERM prints "interrupted" and exits with status 1,
	// matching the teacher's own signal-driven shutdown pattern.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\ninterrupted")
		os.Exit(1)
	}()

	if *optDebug {
		if err := runConsole(m); err != nil {
			log.Error(err.Error())
			fmt.Fprintln(os.Stderr, "prun:", err)
			os.Exit(1)
		}
		os.Exit(m.ExitCode())
	}

	if err := m.Run(prog.Entry()); err != nil {
		log.Error(err.Error())
		fmt.Fprintln(os.Stderr, "prun:", err)
		os.Exit(1)
	}
	os.Exit(m.ExitCode())
}
