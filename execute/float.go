/*
 * ND100 - Floating-point executor (FAD/FSB/FMU/FDV).
 *
 * Copyright 2024, Richard Cornwell
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

package execute

import (
	"math"

	"nd100/decode"
	"nd100/page"
	"nd100/register"
)

// floatBias centers the 16-bit biased exponent, this project's own choice
// (spec.md §4.5 fixes the field widths but not the bias).
const floatBias = 1 << 15

// ndFloat is the in-memory/accumulator representation of spec.md §4.5's
// ND float: a 16-bit biased exponent and a 32-bit fraction carrying its
// own sign in the MSB.
type ndFloat struct {
	exp  uint16
	frac int32
}

// toFloat64 converts for arithmetic; frac is treated as a signed fixed-
// point value in [-1, 1).
func (f ndFloat) toFloat64() float64 {
	if f.frac == 0 {
		return 0
	}
	mant := float64(f.frac) / float64(int64(1)<<31)
	return mant * math.Pow(2, float64(int(f.exp)-floatBias))
}

// fromFloat64 normalizes v into the ndFloat representation, rounding the
// fraction to the nearest representable 32-bit value. overflow is true on
// exponent overflow (the caller sets STS.O) — underflow silently yields
// the zero value (the caller sets STS.Z).
func fromFloat64(v float64) (result ndFloat, overflow bool) {
	if v == 0 || math.IsNaN(v) {
		return ndFloat{}, false
	}

	sign := v < 0
	av := math.Abs(v)

	exp := floatBias
	for av >= 1 {
		av /= 2
		exp++
	}
	for av < 0.5 {
		av *= 2
		exp--
	}

	frac := int64(math.RoundToEven(av * float64(int64(1)<<31)))
	if frac >= int64(1)<<31 {
		frac = int64(1)<<31 - 1
	}
	if sign {
		frac = -frac
	}

	if exp < 0 {
		return ndFloat{}, false
	}
	if exp > 0xffff {
		return ndFloat{exp: 0xffff, frac: int32(frac)}, true
	}
	return ndFloat{exp: uint16(exp), frac: int32(frac)}, false
}

// readFloatOperand fetches the 3-word ND float at addr: word0 is the
// exponent, words 1-2 are the fraction (MSB first), following the
// project's big-endian double-word convention (execute/cpu.go's
// readDouble).
func (c *CPU) readFloatOperand(addr uint16) (ndFloat, page.Fault) {
	exp, fault := c.readData(addr, false)
	if fault != page.FaultNone {
		return ndFloat{}, fault
	}
	frac, fault := c.readDouble(addr+1, false)
	if fault != page.FaultNone {
		return ndFloat{}, fault
	}
	return ndFloat{exp: exp, frac: int32(frac)}, page.FaultNone
}

// accumulator reads the floating-point accumulator: FExp paired with the
// active level's A:D registers as the 32-bit fraction.
func (c *CPU) accumulator(level int) ndFloat {
	hi := uint32(c.Regs.Get(level, register.A))
	lo := uint32(c.Regs.Get(level, register.D))
	return ndFloat{exp: c.FExp, frac: int32(hi<<16 | lo)}
}

// setAccumulator writes the result back into FExp/A/D and updates Z (zero
// result / underflow) and sticky O (exponent overflow), per spec.md
// §4.5's "underflow/overflow setting Z and O respectively".
func (c *CPU) setAccumulator(level int, f ndFloat, overflow bool) {
	c.FExp = f.exp
	c.Regs.Set(level, register.A, uint16(uint32(f.frac)>>16))
	c.Regs.Set(level, register.D, uint16(uint32(f.frac)))

	sts := c.Regs.STS(level)
	sts.Z = f.frac == 0
	sts.O = sts.O || overflow
	c.Regs.SetSTS(level, sts)
}

// floatOperandAddr resolves the memory operand's address. FamExtE has no
// spare bits for the usual B/X/I/disp fields (the inner 11 bits are fully
// spent on the group selector and Reg1/Reg2/Arg), so — like MOVB/MOVBF in
// execute/ext_b.go — Reg2 names a register whose value is used directly
// as the operand's virtual address.
func (c *CPU) floatOperandAddr(level int, ins decode.Instruction) uint16 {
	return c.Regs.Get(level, ins.Reg2)
}

func (c *CPU) execFloatOp(level int, ins decode.Instruction, op func(a, b float64) float64) {
	addr := c.floatOperandAddr(level, ins)
	operand, fault := c.readFloatOperand(addr)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	acc := c.accumulator(level)
	result := op(acc.toFloat64(), operand.toFloat64())
	packed, overflow := fromFloat64(result)
	c.setAccumulator(level, packed, overflow)
}

func (c *CPU) execExtE(ins decode.Instruction) {
	level := c.Regs.Active()
	switch ins.Sub {
	case decode.SubFad:
		c.execFloatOp(level, ins, func(a, b float64) float64 { return a + b })
	case decode.SubFsb:
		c.execFloatOp(level, ins, func(a, b float64) float64 { return a - b })
	case decode.SubFmu:
		c.execFloatOp(level, ins, func(a, b float64) float64 { return a * b })
	case decode.SubFdv:
		c.execFloatDiv(level, ins)
	}
}

// execFloatDiv implements FDV, including spec.md §7's "division by zero
// sets Z and O" rule — a distinct path from execFloatOp since a zero
// divisor is an error condition, not merely a zero result.
func (c *CPU) execFloatDiv(level int, ins decode.Instruction) {
	addr := c.floatOperandAddr(level, ins)
	operand, fault := c.readFloatOperand(addr)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	acc := c.accumulator(level)
	if operand.toFloat64() == 0 {
		c.setAccumulator(level, ndFloat{}, true)
		return
	}

	result := acc.toFloat64() / operand.toFloat64()
	packed, overflow := fromFloat64(result)
	c.setAccumulator(level, packed, overflow)
}
