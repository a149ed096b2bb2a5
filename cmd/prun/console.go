/*
 * pcode - prun: interactive debug console
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

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/pmachine/pcode/interp"
	"github.com/pmachine/pcode/util/debug"
)

// dbgCmd is one console command, matched by unique prefix the way the
// teacher's command table does (name, minimum abbreviation, handler).
type dbgCmd struct {
	name    string
	min     int
	process func(m *interp.Machine, arg string) (quit bool, err error)
}

var dbgCmds = []dbgCmd{
	{name: "step", min: 1, process: dbgStep},
	{name: "continue", min: 1, process: dbgContinue},
	{name: "regs", min: 1, process: dbgRegs},
	{name: "trace", min: 2, process: dbgTrace},
	{name: "quit", min: 1, process: dbgQuit},
}

func matchCmd(word string) *dbgCmd {
	var found *dbgCmd
	for i := range dbgCmds {
		c := &dbgCmds[i]
		if len(word) >= c.min && strings.HasPrefix(c.name, word) {
			if found != nil {
				return nil // ambiguous
			}
			found = c
		}
	}
	return found
}

// traceMask gates debug.Tracef's module mask; 0 means the console's own
// "trace" command has not turned step tracing on yet (§7 debug facility).
var traceMask int

const traceStep = 1

func dbgStep(m *interp.Machine, arg string) (bool, error) {
	debug.Tracef("prun", traceMask, traceStep, "step at pc=%06d", m.PC())
	done, err := m.Step()
	if err != nil {
		return false, err
	}
	fmt.Printf("pc=%06d sp=%06d bp=%06d\n", m.PC(), m.SP(), m.BP())
	if done {
		fmt.Printf("program exited, code=%d\n", m.ExitCode())
	}
	return false, nil
}

func dbgContinue(m *interp.Machine, arg string) (bool, error) {
	for {
		debug.Tracef("prun", traceMask, traceStep, "step at pc=%06d", m.PC())
		done, err := m.Step()
		if err != nil {
			return false, err
		}
		if done {
			fmt.Printf("program exited, code=%d\n", m.ExitCode())
			return true, nil
		}
	}
}

func dbgRegs(m *interp.Machine, arg string) (bool, error) {
	fmt.Printf("pc=%06d sp=%06d bp=%06d\n", m.PC(), m.SP(), m.BP())
	return false, nil
}

func dbgTrace(m *interp.Machine, arg string) (bool, error) {
	if strings.TrimSpace(arg) == "off" {
		traceMask = 0
	} else {
		traceMask = traceStep
	}
	fmt.Println("trace:", traceMask == traceStep)
	return false, nil
}

func dbgQuit(m *interp.Machine, arg string) (bool, error) {
	return true, nil
}

// runConsole drives a liner-backed prompt loop over m, the way the
// teacher's command/reader.ConsoleReader drives its own core, until the
// program exits or the user quits.
func runConsole(m *interp.Machine) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("prun debug console: step, continue, regs, trace [on|off], quit")
	for {
		input, err := line.Prompt("prun> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}
		cmd := matchCmd(fields[0])
		if cmd == nil {
			fmt.Println("unknown command:", fields[0])
			continue
		}
		arg := ""
		if len(fields) > 1 {
			arg = strings.Join(fields[1:], " ")
		}
		quit, err := cmd.process(m, arg)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if quit {
			return nil
		}
	}
}
