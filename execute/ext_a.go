/*
 * ND100 - Extended family A: register ops, shift, skip, bops.
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

import "nd100/decode"

// Register-op sub-codes, packed into Instruction.Arg for SubRegOp/SubNewRegOp.
// regop operates register-to-register (Reg1 <- f(Reg1, Reg2)); newregop adds
// a load-immediate-style variant where Arg2 (the low two bits) carries a
// small constant instead of a second register index. Neither family is named in more detail anywhere in
// spec.md, so the operation set below is this project's own, chosen to cover
// the obvious move/exchange/test/clear idioms a register-transfer family
// exists for — see DESIGN.md.
const (
	regopCopy = iota // Reg1 <- Reg2
	regopExch        // Reg1 <-> Reg2
	regopClear
	regopTest // sets STS.Z from Reg1 without altering it
)

const (
	newregopLoadImm = iota // Reg1 <- zero-extended Arg2 small constant
	newregopAddImm
	newregopAndImm
	newregopComplement
)

func (c *CPU) execRegOp(ins decode.Instruction) {
	level := c.Regs.Active()
	switch ins.Arg & 0x3 {
	case regopCopy:
		c.Regs.Set(level, ins.Reg1, c.Regs.Get(level, ins.Reg2))
	case regopExch:
		a, b := c.Regs.Get(level, ins.Reg1), c.Regs.Get(level, ins.Reg2)
		c.Regs.Set(level, ins.Reg1, b)
		c.Regs.Set(level, ins.Reg2, a)
	case regopClear:
		c.Regs.Set(level, ins.Reg1, 0)
	case regopTest:
		v := c.Regs.Get(level, ins.Reg1)
		sts := c.Regs.STS(level)
		sts.Z = v == 0
		c.Regs.SetSTS(level, sts)
	}
}

func (c *CPU) execNewRegOp(ins decode.Instruction) {
	level := c.Regs.Active()
	imm := uint16(ins.Arg2)
	switch (ins.Arg >> 2) & 0x3 {
	case newregopLoadImm:
		c.Regs.Set(level, ins.Reg1, imm)
	case newregopAddImm:
		c.Regs.Set(level, ins.Reg1, c.Regs.Get(level, ins.Reg1)+imm)
	case newregopAndImm:
		c.Regs.Set(level, ins.Reg1, c.Regs.Get(level, ins.Reg1)&imm)
	case newregopComplement:
		c.Regs.Set(level, ins.Reg1, ^c.Regs.Get(level, ins.Reg1))
	}
}

// execExtA dispatches the four FamExtA sub-groups: register ops, shift,
// skip and bit operations (spec.md §4.5).
func (c *CPU) execExtA(ins decode.Instruction) {
	switch ins.Sub {
	case decode.SubRegOp:
		c.execRegOp(ins)
	case decode.SubNewRegOp:
		c.execNewRegOp(ins)
	case decode.SubShift:
		c.execShift(ins.Reg1, ins.Arg)
	case decode.SubSkip:
		c.execSkip(ins.Reg1, ins.Reg2, ins.Arg)
	case decode.SubBops:
		c.execBops(ins.Reg1, ins.Reg2, ins.Arg)
	}
}
