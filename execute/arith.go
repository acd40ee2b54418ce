/*
 * ND100 - Arithmetic/logical operations and the STS carry/overflow rules.
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
	"nd100/page"
	"nd100/register"
)

type aluOp int

const (
	opAdd aluOp = iota
	opSub
	opAnd
	opOra
)

// adjustSTS implements spec.md §3's uniform STS update rule: given the
// operand A before the op, the EFFECTIVE second operand actually added to
// it (the raw memory word for ADD, its two's-complement negation for SUB),
// and the 32-bit-wide result of the op (so bit 16 carries the true
// carry-out), set C from bit 16, set Q on signed 16-bit overflow, and OR Q
// into the sticky O bit.
func adjustSTS(aBefore, effectiveOperand uint16, result32 uint32) register.STSBits {
	c := result32&0x10000 != 0
	result16 := uint16(result32)

	aSign := aBefore&0x8000 != 0
	opSign := effectiveOperand&0x8000 != 0
	rSign := result16&0x8000 != 0

	// Signed overflow: both operands share a sign and the result's sign
	// differs from theirs.
	q := aSign == opSign && rSign != aSign

	return register.STSBits{C: c, Q: q}
}

func (c *CPU) arith(level int, addr uint16, op aluOp) {
	mem, fault := c.readData(addr, false)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	a := c.Regs.Get(level, register.A)
	var result32 uint32
	var result16 uint16
	effectiveOperand := mem
	logical := false

	switch op {
	case opAdd:
		result32 = uint32(a) + uint32(mem)
		result16 = uint16(result32)
	case opSub:
		effectiveOperand = ^mem + 1 // two's complement negation: the value actually added to A
		result32 = uint32(a) + uint32(effectiveOperand)
		result16 = uint16(result32)
	case opAnd:
		result16 = a & mem
		logical = true
	case opOra:
		result16 = a | mem
		logical = true
	}

	c.Regs.Set(level, register.A, result16)

	sts := c.Regs.STS(level)
	if !logical {
		bits := adjustSTS(a, effectiveOperand, result32)
		sts.C = bits.C
		sts.Q = bits.Q
		sts.O = sts.O || bits.Q
	}
	c.Regs.SetSTS(level, sts)
}

// minIncrement implements MIN: increment the addressed word and set the
// Z flag behavior used by the skip-on-zero chain (spec.md §4.5).
func (c *CPU) minIncrement(level int, addr uint16) {
	v, fault := c.readData(addr, false)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}
	v++
	if f := c.writeData(addr, v, 2, false); f != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(f))
		return
	}
	sts := c.Regs.STS(level)
	sts.Z = v == 0
	c.Regs.SetSTS(level, sts)
}
