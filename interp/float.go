/*
 * pcode - Interpreter: FLOAT dispatch
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

package interp

import (
	"math"

	"github.com/pmachine/pcode/opcode"
)

// Floats are carried as the two 16-bit halves of an IEEE-754 single
// (§6.3 FLOAT), the same stack shape LONGOP's 32-bit integers use.

func (m *Machine) popFloat() (float32, error) {
	bits, err := m.pop32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (m *Machine) pushFloat(f float32) error {
	return m.push32(math.Float32bits(f))
}

func opFloat(m *Machine, ins opcode.Instruction) error {
	switch FloatOp(ins.Arg1) {
	case FloatFloat:
		v, err := m.pop16()
		if err != nil {
			return err
		}
		return m.pushFloat(float32(int16(v)))

	case FloatTrunc:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.push16(uint16(int16(math.Trunc(float64(f)))))

	case FloatRound:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.push16(uint16(int16(math.Round(float64(f)))))

	case FloatAdd:
		return floatBin(m, func(a, b float32) float32 { return a + b })
	case FloatSub:
		return floatBin(m, func(a, b float32) float32 { return a - b })
	case FloatMul:
		return floatBin(m, func(a, b float32) float32 { return a * b })
	case FloatDiv:
		b, err := m.popFloat()
		if err != nil {
			return err
		}
		a, err := m.popFloat()
		if err != nil {
			return err
		}
		if b == 0 {
			return ErrDivideByZero
		}
		return m.pushFloat(a / b)

	case FloatNeg:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.pushFloat(-f)

	case FloatAbs:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.pushFloat(float32(math.Abs(float64(f))))

	case FloatSqr:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.pushFloat(f * f)

	case FloatSqrt:
		f, err := m.popFloat()
		if err != nil {
			return err
		}
		return m.pushFloat(float32(math.Sqrt(float64(f))))

	case FloatSin:
		return floatUn(m, func(v float64) float64 { return math.Sin(v) })
	case FloatCos:
		return floatUn(m, func(v float64) float64 { return math.Cos(v) })
	case FloatAtan:
		return floatUn(m, func(v float64) float64 { return math.Atan(v) })
	case FloatLn:
		return floatUn(m, func(v float64) float64 { return math.Log(v) })
	case FloatExp:
		return floatUn(m, func(v float64) float64 { return math.Exp(v) })

	case FloatEqu:
		return floatCmp(m, func(a, b float32) bool { return a == b })
	case FloatNeq:
		return floatCmp(m, func(a, b float32) bool { return a != b })
	case FloatLt:
		return floatCmp(m, func(a, b float32) bool { return a < b })
	case FloatGte:
		return floatCmp(m, func(a, b float32) bool { return a >= b })
	case FloatGt:
		return floatCmp(m, func(a, b float32) bool { return a > b })
	case FloatLte:
		return floatCmp(m, func(a, b float32) bool { return a <= b })

	default:
		return ErrNotImplemented
	}
}

func floatBin(m *Machine, f func(a, b float32) float32) error {
	b, err := m.popFloat()
	if err != nil {
		return err
	}
	a, err := m.popFloat()
	if err != nil {
		return err
	}
	return m.pushFloat(f(a, b))
}

func floatUn(m *Machine, f func(v float64) float64) error {
	v, err := m.popFloat()
	if err != nil {
		return err
	}
	return m.pushFloat(float32(f(float64(v))))
}

func floatCmp(m *Machine, f func(a, b float32) bool) error {
	b, err := m.popFloat()
	if err != nil {
		return err
	}
	a, err := m.popFloat()
	if err != nil {
		return err
	}
	return m.push16(boolWord(f(a, b)))
}
