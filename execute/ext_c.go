/*
 * ND100 - Extended family C: MON and EXR.
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
	"nd100/interrupt"
	"nd100/page"
)

// execMon implements MON n (spec.md §4.6): if monitor-call emulation is
// wired (c.Monitor != nil) and it reports the call number handled, step
// on; otherwise raise the internal interrupt used for an unhandled MON.
func (c *CPU) execMon(ins decode.Instruction) {
	n := int(ins.Addr)
	if c.Monitor != nil && c.Monitor(n) {
		return
	}
	c.raiseInternal(interrupt.IICMONUnhandled)
}

// execExr implements EXR (spec.md §4.5): fetch the word addressed by
// register Reg1, decode and execute it once with P left untouched. Nested
// EXR (an EXR'd instruction that is itself EXR) is rejected as an illegal
// instruction rather than recursing.
func (c *CPU) execExr(ins decode.Instruction) {
	if c.exrActive {
		c.raiseInternal(interrupt.IICIllegalInstruction)
		return
	}

	level := c.Regs.Active()
	addr := c.Regs.Get(level, ins.Reg1)
	word, fault := c.readData(addr, false)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	target := decode.Decode(word)
	if target.Sub == decode.SubExr && target.Family == decode.FamExtC {
		c.raiseInternal(interrupt.IICIllegalInstruction)
		return
	}

	c.exrActive = true
	c.execOnce(level, word)
	c.exrActive = false
}

// execExtC dispatches the FamExtC sub-groups: MON and EXR.
func (c *CPU) execExtC(ins decode.Instruction) {
	switch ins.Sub {
	case decode.SubMon:
		c.execMon(ins)
	case decode.SubExr:
		c.execExr(ins)
	}
}
