/*
 * ND100 - Extended family B: byte operations and IOX/IOXT dispatch.
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

// readByteVirt/writeByteVirt address memory in byte units (the same
// convention LBYT/SBYT use: virtual byte address = word address * 2 +
// {0,1}), going through paging on the underlying word.
func (c *CPU) readByteVirt(byteAddr uint16) (uint16, page.Fault) {
	wordVirt := byteAddr >> 1
	v, fault := c.readData(wordVirt, false)
	if fault != page.FaultNone {
		return 0, fault
	}
	if byteAddr&1 == 0 {
		return v >> 8, page.FaultNone
	}
	return v & 0xff, page.FaultNone
}

func (c *CPU) writeByteVirt(byteAddr uint16, b uint16) page.Fault {
	wordVirt := byteAddr >> 1
	sel := memory.SelectLow
	if byteAddr&1 == 0 {
		sel = memory.SelectHigh
	}
	return c.writeData(wordVirt, b, sel, false)
}

// execMovb implements MOVB: copy one byte from the address in register
// Reg1 to the address in register Reg2 (spec.md §4.5's byte-operations
// family; the register-indirect pointer convention is this project's own).
func (c *CPU) execMovb(ins decode.Instruction) {
	level := c.Regs.Active()
	src := c.Regs.Get(level, ins.Reg1)
	dst := c.Regs.Get(level, ins.Reg2)

	b, fault := c.readByteVirt(src)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}
	if fault := c.writeByteVirt(dst, b); fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
	}
}

// execMovbf implements MOVBF: like MOVB, but Arg counts a run of bytes to
// copy (a small block move), advancing both pointer registers.
func (c *CPU) execMovbf(ins decode.Instruction) {
	level := c.Regs.Active()
	src := c.Regs.Get(level, ins.Reg1)
	dst := c.Regs.Get(level, ins.Reg2)
	count := ins.Arg

	for i := 0; i < count; i++ {
		b, fault := c.readByteVirt(src)
		if fault != page.FaultNone {
			c.raiseInternal(pageFaultSubcode(fault))
			return
		}
		if fault := c.writeByteVirt(dst, b); fault != page.FaultNone {
			c.raiseInternal(pageFaultSubcode(fault))
			return
		}
		src++
		dst++
	}
	c.Regs.Set(level, ins.Reg1, src)
	c.Regs.Set(level, ins.Reg2, dst)
}

// execBfill implements BFILL: fill Arg bytes starting at the address in
// Reg1 with the low byte of Reg2.
func (c *CPU) execBfill(ins decode.Instruction) {
	level := c.Regs.Active()
	dst := c.Regs.Get(level, ins.Reg1)
	fill := uint16(c.Regs.Get(level, ins.Reg2) & 0xff)
	count := ins.Arg

	for i := 0; i < count; i++ {
		if fault := c.writeByteVirt(dst, fill); fault != page.FaultNone {
			c.raiseInternal(pageFaultSubcode(fault))
			return
		}
		dst++
	}
	c.Regs.Set(level, ins.Reg1, dst)
}

// ioAddr resolves the device address for IOX (an immediate carried in the
// low byte of the instruction) or IOXT (taken from the T register),
// per spec.md §4.6. The even/odd convention below (even = read into A,
// odd = write from A) is this project's own — the distilled spec fixes
// per-device register addresses (§4.8) but not this read/write encoding.
func (c *CPU) ioAddr(ins decode.Instruction) uint16 {
	level := c.Regs.Active()
	if ins.Sub == decode.SubIOXT {
		return c.Regs.Get(level, register.T)
	}
	return ins.Addr
}

func (c *CPU) execIOX(ins decode.Instruction) {
	level := c.Regs.Active()
	addr := c.ioAddr(ins)

	if addr&1 == 0 {
		c.Regs.Set(level, register.A, c.IO.Read(addr))
	} else {
		c.IO.Write(addr, c.Regs.Get(level, register.A))
	}
}

// execExtB dispatches the FamExtB sub-groups: byte operations and IOX/IOXT.
func (c *CPU) execExtB(ins decode.Instruction) {
	switch ins.Sub {
	case decode.SubMovb:
		c.execMovb(ins)
	case decode.SubMovbf:
		c.execMovbf(ins)
	case decode.SubBfill:
		c.execBfill(ins)
	case decode.SubIOX, decode.SubIOXT:
		c.execIOX(ins)
	}
}
