/*
 * ND100 - Extended family D: privileged register-transfer and control
 * operations (SETPT/CLEPT/TRA/TRR/MCL/MST/WAIT/IDENT).
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
	"nd100/register"
)

// globalReg names the indices TRA/TRR use to address the "global control
// registers" of spec.md §3 that live on CPU rather than in RegisterFile or
// InterruptController. The assignment is this project's own — spec.md §3
// names the registers but does not fix a TRA/TRR index encoding — and is
// recorded in DESIGN.md.
const (
	gregIIE = iota
	gregIID
	gregCSR
	gregCCL
	gregLCIL
	gregUCIL
	gregALD
	gregPES
	gregPGC
	gregPEA
	gregPFB
	gregPANC
	gregPANS
	gregOPR
	gregLMP
	gregECCR
	gregPGS
	gregPID // InterruptController-owned, exposed through the same index space
	gregPIE
	gregCount
)

func (c *CPU) globalGet(idx int) uint16 {
	switch idx {
	case gregIIE:
		return c.IIE
	case gregIID:
		return c.IID
	case gregCSR:
		return c.CSR
	case gregCCL:
		return c.CCL
	case gregLCIL:
		return c.LCIL
	case gregUCIL:
		return c.UCIL
	case gregALD:
		return c.ALD
	case gregPES:
		return c.PES
	case gregPGC:
		return c.PGC
	case gregPEA:
		return c.PEA
	case gregPFB:
		return c.PFB
	case gregPANC:
		return c.PANC
	case gregPANS:
		return c.PANS
	case gregOPR:
		return c.OPR
	case gregLMP:
		return c.LMP
	case gregECCR:
		return c.ECCR
	case gregPGS:
		return uint16(c.PGS)
	case gregPID:
		return c.IC.PID()
	case gregPIE:
		return c.IC.PIE()
	}
	return 0
}

func (c *CPU) globalSet(idx int, v uint16) {
	switch idx {
	case gregIIE:
		c.IIE = v
	case gregIID:
		c.IID = v
	case gregCSR:
		c.CSR = v
	case gregCCL:
		c.CCL = v
	case gregLCIL:
		c.LCIL = v
	case gregUCIL:
		c.UCIL = v
	case gregALD:
		c.ALD = v
	case gregPES:
		c.PES = v
	case gregPGC:
		c.PGC = v
	case gregPEA:
		c.PEA = v
	case gregPFB:
		c.PFB = v
	case gregPANC:
		c.PANC = v
	case gregPANS:
		c.PANS = v
	case gregOPR:
		c.OPR = v
	case gregLMP:
		c.LMP = v
	case gregECCR:
		c.ECCR = v
	case gregPGS:
		c.PGS = int(v) % 4
	case gregPID:
		c.IC.SetPID(v)
	case gregPIE:
		c.IC.SetPIE(v)
	}
}

// execTra implements TRA: A <- globalReg(index). index is carried in Arg,
// masked to the defined register range.
func (c *CPU) execTra(ins decode.Instruction) {
	level := c.Regs.Active()
	idx := ins.Arg % gregCount
	c.Regs.Set(level, register.A, c.globalGet(idx))
}

// execTrr implements TRR: globalReg(index) <- A.
func (c *CPU) execTrr(ins decode.Instruction) {
	level := c.Regs.Active()
	idx := ins.Arg % gregCount
	c.globalSet(idx, c.Regs.Get(level, register.A))
}

// execSetpt implements SETPT (spec.md §4.6): load page-table entry
// Addr (masked to 0..63) of set Reg1&0x3 from the X register. X supplies
// the low 16 bits of the packed PTE (physical page, valid, writable,
// ring); accessed/dirty/index start clear, as they would for a freshly
// loaded entry — see DESIGN.md.
func (c *CPU) execSetpt(ins decode.Instruction) {
	level := c.Regs.Active()
	set := ins.Reg1 & 0x3
	pteIndex := uint8(ins.Addr & 0x3f)
	value := uint32(c.Regs.Get(level, register.X))
	c.PT.SetPT(set, pteIndex, value)
}

func (c *CPU) execClept(ins decode.Instruction) {
	set := ins.Reg1 & 0x3
	pteIndex := uint8(ins.Addr & 0x3f)
	c.PT.ClearPT(set, pteIndex)
}

// execMst implements a status/mask register operation: bit 0 of Arg
// selects direction (0 = Reg2 -> IIE, 1 = IIE -> Reg2). spec.md names the
// "status and mask register" operations without fixing an encoding; this
// is this project's own choice, recorded in DESIGN.md.
func (c *CPU) execMst(ins decode.Instruction) {
	level := c.Regs.Active()
	if ins.Arg&1 == 0 {
		c.IIE = c.Regs.Get(level, ins.Reg2)
	} else {
		c.Regs.Set(level, ins.Reg2, c.IIE)
	}
}

func (c *CPU) execWait() {
	c.IC.WaitForInterrupt(c.WaitCancel)
}

// execIdent implements IDENT (spec.md §4.7): pop the first queued
// identification code for the level named by Reg1 into A; if the chain is
// empty, A <- 0 and an internal interrupt with IICNoIdent is raised.
func (c *CPU) execIdent(ins decode.Instruction) {
	level := c.Regs.Active()
	identLevel := ins.Reg1 & 0xf

	code, ok := c.IC.PopIdent(identLevel)
	if !ok {
		c.Regs.Set(level, register.A, 0)
		c.raiseInternal(interrupt.IICNoIdent)
		return
	}
	c.Regs.Set(level, register.A, code)
}

// execExtD dispatches the FamExtD sub-groups: the privileged
// register-transfer and control operations. Every operation in this
// family is privileged (spec.md §4.6): only level 0, the supervisor
// level in this project's privilege model, may execute them.
func (c *CPU) execExtD(ins decode.Instruction) {
	if c.Regs.Active() != 0 {
		c.raiseInternal(interrupt.IICPrivileged)
		return
	}

	switch ins.Sub {
	case decode.SubSetpt:
		c.execSetpt(ins)
	case decode.SubClept:
		c.execClept(ins)
	case decode.SubTra:
		c.execTra(ins)
	case decode.SubTrr:
		c.execTrr(ins)
	case decode.SubMcl:
		c.MCL()
	case decode.SubMst:
		c.execMst(ins)
	case decode.SubWait:
		c.execWait()
	case decode.SubIdent:
		c.execIdent(ins)
	}
}
