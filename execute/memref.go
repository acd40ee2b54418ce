/*
 * ND100 - Memory-reference family: loads, stores, arithmetic, compare-jump.
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
	"nd100/decode"
	"nd100/memory"
	"nd100/page"
	"nd100/register"
)

// statxUsesAPT reports whether fam is one of the STATX-family stores that
// consult the alternate page table (spec.md §4.2/§4.4). The double/float
// stores are chosen here as that family — see DESIGN.md.
func statxUsesAPT(fam decode.Family) bool {
	return fam == decode.FamSTD || fam == decode.FamSTF
}

// ea resolves the effective address for a memory-reference instruction,
// reading through paging for the indirect first-level fetch. fault is
// non-nil-equivalent (page.FaultNone on success).
func (c *CPU) ea(p uint16, ins decode.Instruction, scale int) (addr uint16, fault page.Fault) {
	b := c.Regs.Get(c.Regs.Active(), register.B)
	x := c.Regs.Get(c.Regs.Active(), register.X)

	var indirectFault page.Fault
	result := decode.Effective(ins, p, b, x, scale, func(vaddr uint16) uint16 {
		v, f := c.readData(vaddr, false)
		if f != page.FaultNone {
			indirectFault = f
		}
		return v
	})
	if indirectFault != page.FaultNone {
		return 0, indirectFault
	}
	return result.Addr, page.FaultNone
}

func (c *CPU) execMemRef(level int, p uint16, ins decode.Instruction) {
	level = c.Regs.Active() // may differ from the pre-fetch level if it changed mid-step (it never does, kept for clarity)

	scale := 1
	if ins.Family == decode.FamLBYT || ins.Family == decode.FamSBYT {
		scale = 2
	}

	addr, fault := c.ea(p, ins, scale)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	switch ins.Family {
	case decode.FamLDA:
		c.load(level, register.A, addr)
	case decode.FamLDT:
		c.load(level, register.T, addr)
	case decode.FamLDX:
		c.load(level, register.X, addr)
	case decode.FamLDD:
		c.loadDouble(level, addr, false)
	case decode.FamLDF:
		c.loadDouble(level, addr, false)

	case decode.FamSTA:
		c.store(level, register.A, addr)
	case decode.FamSTT:
		c.store(level, register.T, addr)
	case decode.FamSTX:
		c.store(level, register.X, addr)
	case decode.FamSTZ:
		if f := c.writeData(addr, 0, memory.SelectWord, false); f != page.FaultNone {
			c.raiseInternal(pageFaultSubcode(f))
		}
	case decode.FamSTD:
		c.storeDouble(level, addr, true)
	case decode.FamSTF:
		c.storeDouble(level, addr, true)

	case decode.FamADD:
		c.arith(level, addr, opAdd)
	case decode.FamSUB:
		c.arith(level, addr, opSub)
	case decode.FamAND:
		c.arith(level, addr, opAnd)
	case decode.FamORA:
		c.arith(level, addr, opOra)
	case decode.FamMIN:
		c.minIncrement(level, addr)

	case decode.FamLBYT:
		c.loadByte(level, addr, ins)
	case decode.FamSBYT:
		c.storeByte(level, addr, ins)

	case decode.FamJAP:
		c.compareJump(level, addr, jumpIfAPos)
	case decode.FamJAN:
		c.compareJump(level, addr, jumpIfANeg)
	case decode.FamJAZ:
		c.compareJump(level, addr, jumpIfAZero)
	case decode.FamJAF:
		c.compareJump(level, addr, jumpIfANonZero)
	case decode.FamJPC:
		c.compareJump(level, addr, jumpIfCarry)
	case decode.FamJNC:
		c.compareJump(level, addr, jumpIfNoCarry)
	case decode.FamJXZ:
		c.compareJump(level, addr, jumpIfXZero)
	case decode.FamJXN:
		c.compareJump(level, addr, jumpIfXNonZero)
	case decode.FamJPL:
		c.compareJump(level, addr, jumpAlways)
	}
}

func (c *CPU) load(level int, reg int, addr uint16) {
	v, fault := c.readData(addr, false)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}
	c.Regs.Set(level, reg, v)
}

func (c *CPU) store(level int, reg int, addr uint16) {
	v := c.Regs.Get(level, reg)
	if f := c.writeData(addr, v, memory.SelectWord, false); f != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(f))
	}
}

// loadDouble loads the D/F register pair (occupying two consecutive
// memory words, MSB first) from addr. ND100 has no architectural D:F
// register name distinct from D/L in this project's register layout, so
// LDD/LDF both target the D:L register pair — see DESIGN.md.
func (c *CPU) loadDouble(level int, addr uint16, useAPT bool) {
	v, fault := c.readDouble(addr, useAPT)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}
	c.Regs.Set(level, register.D, uint16(v>>16))
	c.Regs.Set(level, register.L, uint16(v))
}

func (c *CPU) storeDouble(level int, addr uint16, useAPT bool) {
	v := uint32(c.Regs.Get(level, register.D))<<16 | uint32(c.Regs.Get(level, register.L))
	if f := c.writeDouble(addr, v, useAPT); f != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(f))
	}
}

func (c *CPU) loadByte(level int, byteAddr16 uint16, ins decode.Instruction) {
	// LBYT's effective address is already scaled by 2 (byte units); the
	// physical byte address must still go through paging on its word.
	wordVirt := byteAddr16 >> 1
	v, fault := c.readData(wordVirt, false)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}
	var b uint16
	if byteAddr16&1 == 0 {
		b = v >> 8
	} else {
		b = v & 0xff
	}
	c.Regs.Set(level, register.A, b)
}

func (c *CPU) storeByte(level int, byteAddr16 uint16, ins decode.Instruction) {
	wordVirt := byteAddr16 >> 1
	sel := memory.SelectLow
	if byteAddr16&1 == 0 {
		sel = memory.SelectHigh
	}
	a := c.Regs.Get(level, register.A)
	if f := c.writeData(wordVirt, a, sel, false); f != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(f))
	}
}

type jumpCond int

const (
	jumpAlways jumpCond = iota
	jumpIfAPos
	jumpIfANeg
	jumpIfAZero
	jumpIfANonZero
	jumpIfCarry
	jumpIfNoCarry
	jumpIfXZero
	jumpIfXNonZero
)

// compareJump tests A, X or carry and, on success, sets P <- EA
// (spec.md §4.5).
func (c *CPU) compareJump(level int, addr uint16, cond jumpCond) {
	a := int16(c.Regs.Get(level, register.A))
	x := c.Regs.Get(level, register.X)
	sts := c.Regs.STS(level)

	take := false
	switch cond {
	case jumpAlways:
		take = true
	case jumpIfAPos:
		take = a >= 0
	case jumpIfANeg:
		take = a < 0
	case jumpIfAZero:
		take = a == 0
	case jumpIfANonZero:
		take = a != 0
	case jumpIfCarry:
		take = sts.C
	case jumpIfNoCarry:
		take = !sts.C
	case jumpIfXZero:
		take = x == 0
	case jumpIfXNonZero:
		take = x != 0
	}

	if take {
		c.Regs.SetP(addr)
	}
}
