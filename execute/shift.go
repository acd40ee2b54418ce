/*
 * ND100 - Shift family (SH).
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
	"nd100/register"
)

// ShiftType selects the ND100 shift semantics (spec.md §4.5).
type ShiftType int

const (
	ShiftArithmetic ShiftType = iota // sign-extending
	ShiftLogical                     // zero-fill
	ShiftRotate                      // circular within the 16-bit word; M records the last bit out but is not rotated in
)

// shiftCount sign-extends the 5-bit field of a shift instruction: left is
// positive, right is negative.
func shiftCount(arg int) int {
	v := arg & 0x1f
	if v&0x10 != 0 {
		return v - 32
	}
	return v
}

// ShiftWord performs one ND100-style shift of a 16-bit value by count bits
// (positive = left, negative = right) under typ, returning the result and
// whether the M-link bit was set by the last bit shifted out. It is
// exported because it doubles as the stand-alone implementation exercised
// by spec.md §8's round-trip property tests.
func ShiftWord(v uint16, count int, typ ShiftType) (result uint16, mLink bool) {
	if count == 0 {
		return v, false
	}

	if count > 0 {
		for i := 0; i < count; i++ {
			bitOut := v&0x8000 != 0
			switch typ {
			case ShiftRotate:
				v = (v << 1) | boolBit(bitOut)
			default:
				v <<= 1
			}
			mLink = bitOut
		}
		return v, mLink
	}

	n := -count
	for i := 0; i < n; i++ {
		bitOut := v&1 != 0
		switch typ {
		case ShiftArithmetic:
			sign := v & 0x8000
			v = (v >> 1) | sign
		case ShiftRotate:
			v = (v >> 1) | (boolBit(bitOut) << 15)
		default: // logical
			v >>= 1
		}
		mLink = bitOut
	}
	return v, mLink
}

func boolBit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// shiftDouble shifts a 32-bit AD pair, used by the double-register shift
// variants.
func shiftDouble(v uint32, count int, typ ShiftType) (result uint32, mLink bool) {
	if count == 0 {
		return v, false
	}
	if count > 0 {
		for i := 0; i < count; i++ {
			bitOut := v&0x80000000 != 0
			if typ == ShiftRotate {
				v = (v << 1) | boolBit32(bitOut)
			} else {
				v <<= 1
			}
			mLink = bitOut
		}
		return v, mLink
	}
	n := -count
	for i := 0; i < n; i++ {
		bitOut := v&1 != 0
		switch typ {
		case ShiftArithmetic:
			sign := v & 0x80000000
			v = (v >> 1) | sign
		case ShiftRotate:
			v = (v >> 1) | (boolBit32(bitOut) << 31)
		default:
			v >>= 1
		}
		mLink = bitOut
	}
	return v, mLink
}

func boolBit32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) execShift(reg1 int, arg int) {
	level := c.Regs.Active()
	double := reg1&0x4 != 0
	typ := ShiftType(reg1 & 0x3)
	if typ > ShiftRotate {
		typ = ShiftRotate
	}
	count := shiftCount(arg)

	sts := c.Regs.STS(level)
	var mLink bool
	if double {
		a := c.Regs.Get(level, register.A)
		d := c.Regs.Get(level, register.D)
		v := uint32(a)<<16 | uint32(d)
		var result uint32
		result, mLink = shiftDouble(v, count, typ)
		c.Regs.Set(level, register.A, uint16(result>>16))
		c.Regs.Set(level, register.D, uint16(result))
	} else {
		a := c.Regs.Get(level, register.A)
		var result uint16
		result, mLink = ShiftWord(a, count, typ)
		c.Regs.Set(level, register.A, result)
	}
	sts.M = mLink
	c.Regs.SetSTS(level, sts)
}
