/*
 * ND100 - CPU: fetch/decode/execute core.
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

// Package execute implements the ND100 per-opcode handlers: effective
// address resolution, loads/stores, arithmetic, floating point, shifts,
// skips, compare-and-jump, bit operations, byte operations, privileged
// register-transfer operations and IOX/IOXT dispatch.
//
// CPU plays the role spec.md §9's Design Notes assign to "Machine": it
// owns Memory, PageTable, RegisterFile, InterruptController and
// IODispatch, and is the sole writer of CPU-private state. Device worker
// goroutines (package device/*) are the sole writers of their own device
// state and reach the CPU only through IODispatch and InterruptController,
// both already internally mutex-guarded.
package execute

import (
	"nd100/decode"
	"nd100/interrupt"
	"nd100/iodispatch"
	"nd100/memory"
	"nd100/page"
	"nd100/register"
)

// CPU holds every piece of process-wide state the executor touches:
// the subsystems named in spec.md §2, plus the "Global control registers"
// of spec.md §3 that belong to none of RegisterFile/InterruptController.
type CPU struct {
	Mem *memory.Store
	PT  *page.Table
	Regs *register.File
	IC  *interrupt.Controller
	IO  *iodispatch.Dispatch

	// Global control registers, process-wide (spec.md §3).
	IR   uint16
	PGS  int // current-page-set select, 0..3
	IIE  uint16
	IID  uint16
	CSR  uint16
	CCL  uint16
	LCIL uint16
	UCIL uint16
	ALD  uint16
	PES  uint16
	PGC  uint16
	PEA  uint16
	PFB  uint16
	PANC uint16
	PANS uint16
	OPR  uint16
	LMP  uint16
	ECCR uint16

	// FExp is the biased exponent half of the floating-point accumulator
	// (spec.md §4.5's 48-bit ND float: 16-bit exponent + 32-bit fraction).
	// The 32-bit fraction half is the active level's A:D register pair —
	// this project's own choice of accumulator, since spec.md never names
	// which registers FAD/FSB/FMU/FDV operate on.
	FExp uint16

	InstrCount uint64

	exrActive bool
	Stopped   bool // STOP state, set by MCL until a LOAD (Resume)

	// Monitor, if non-nil, implements MON n when monitor emulation is
	// enabled (spec.md §4.6/§6); it returns false if n is unhandled, in
	// which case the caller raises internal interrupt 14 (MON).
	Monitor func(n int) bool

	// WaitCancel, if set by package machine, lets WAIT be interrupted by
	// shutdown even with PID&PIE staying empty (spec.md §5).
	WaitCancel <-chan struct{}
}

// New returns a CPU wired to freshly created subsystems.
func New() *CPU {
	c := &CPU{
		Mem:  memory.New(),
		PT:   page.New(),
		Regs: register.New(),
		IC:   interrupt.New(),
		IO:   iodispatch.New(),
	}
	c.IO.RaiseIOXError = func() { c.raiseInternal(interrupt.IICIOXError) }
	c.IO.IOXErrorEnabled = func() bool { return c.IIE&0x80 != 0 }
	return c
}

// raiseInternal raises internal interrupt level 14 with the given
// sub-code, per spec.md §7.
func (c *CPU) raiseInternal(subcode uint16) {
	c.IC.Raise(14, subcode)
}

// MCL performs master clear (spec.md §3/§4.6): zero all register banks,
// set STS.O=1 and N100=1 on level 0, set CSR bit 2 (cache unavailable),
// clear the IDENT chain, and enter STOP state.
func (c *CPU) MCL() {
	c.Regs.Clear()
	c.PT.Clear()
	c.IC.Clear()
	c.Regs.SetActive(0)
	c.Regs.SetSTS(0, register.STSBits{O: true, N100: true})
	c.CSR |= 1 << 2
	c.IIE = 0
	c.IID = 0
	c.PGS = 0
	c.InstrCount = 0
	c.Stopped = true
}

// Resume leaves STOP state (the host-side equivalent of pressing LOAD).
func (c *CPU) Resume() {
	c.Stopped = false
}

// translateFetch resolves a virtual instruction-fetch address.
func (c *CPU) translateFetch(virt uint16) (phys uint16, fault page.Fault) {
	phys, _, fault = c.PT.Translate(c.PGS, false, false, virt)
	return
}

// readData resolves and reads a virtual data address, honoring useAPT for
// the handful of STATX-family store instructions that consult the
// alternate page table (spec.md §4.2/§4.4).
func (c *CPU) readData(virt uint16, useAPT bool) (value uint16, fault page.Fault) {
	phys, _, fault := c.PT.Translate(c.PGS, useAPT, false, virt)
	if fault != page.FaultNone {
		return 0, fault
	}
	return c.Mem.ReadWord(phys), page.FaultNone
}

func (c *CPU) writeData(virt uint16, value uint16, sel memory.Byte, useAPT bool) page.Fault {
	phys, _, fault := c.PT.Translate(c.PGS, useAPT, true, virt)
	if fault != page.FaultNone {
		return fault
	}
	c.Mem.WriteWord(phys, value, sel)
	return page.FaultNone
}

func (c *CPU) readDouble(virt uint16, useAPT bool) (value uint32, fault page.Fault) {
	hi, fault := c.readData(virt, useAPT)
	if fault != page.FaultNone {
		return 0, fault
	}
	lo, fault := c.readData(virt+1, useAPT)
	if fault != page.FaultNone {
		return 0, fault
	}
	return uint32(hi)<<16 | uint32(lo), page.FaultNone
}

func (c *CPU) writeDouble(virt uint16, value uint32, useAPT bool) page.Fault {
	if fault := c.writeData(virt, uint16(value>>16), memory.SelectWord, useAPT); fault != page.FaultNone {
		return fault
	}
	return c.writeData(virt+1, uint16(value), memory.SelectWord, useAPT)
}

// pageFaultSubcode maps a page.Fault to the IIC sub-code recorded when
// raising internal interrupt level 14.
func pageFaultSubcode(f page.Fault) uint16 {
	if f == page.FaultProtect {
		return interrupt.IICProtectViolation
	}
	return interrupt.IICPageFault
}

// Step fetches, decodes and executes exactly one instruction at the
// active level's P, per spec.md §2's CPU loop. It does not perform the
// inter-instruction interrupt check; callers (package machine) call
// CheckAndSwitch after every Step, per spec.md §3's invariant that a
// level check occurs before every fetch.
func (c *CPU) Step() {
	if c.Stopped {
		return
	}

	level := c.Regs.Active()
	p := c.Regs.P()

	phys, fault := c.translateFetch(p)
	if fault != page.FaultNone {
		c.raiseInternal(pageFaultSubcode(fault))
		return
	}

	word := c.Mem.ReadWord(phys)
	c.IR = word
	c.InstrCount++

	ins := decode.Decode(word)

	// Default advance is P+1; skip/jump/EXR handlers override Regs' P
	// directly when they need a different target. Effective addresses for
	// this instruction are always computed relative to the pre-increment
	// P value p, per spec.md §4.4.
	c.Regs.SetP(p + 1)

	if ins.Family.IsMemRef() {
		c.execMemRef(level, p, ins)
		return
	}

	switch ins.Family {
	case decode.FamExtA:
		c.execExtA(ins)
	case decode.FamExtB:
		c.execExtB(ins)
	case decode.FamExtC:
		c.execExtC(ins)
	case decode.FamExtD:
		c.execExtD(ins)
	case decode.FamExtE:
		c.execExtE(ins)
	}
}

// execOnce runs a single already-decoded instruction without touching P,
// used by EXR (spec.md §4.5: "execute the instruction at address given by
// a register argument, once, with P unchanged").
func (c *CPU) execOnce(level int, word uint16) {
	ins := decode.Decode(word)
	if ins.Family.IsMemRef() {
		c.execMemRef(level, c.Regs.P(), ins)
		return
	}
	switch ins.Family {
	case decode.FamExtA:
		c.execExtA(ins)
	case decode.FamExtB:
		c.execExtB(ins)
	case decode.FamExtC:
		c.execExtC(ins)
	case decode.FamExtD:
		c.execExtD(ins)
	case decode.FamExtE:
		c.execExtE(ins)
	}
}

// CheckAndSwitch wraps InterruptController.CheckAndSwitch, keeping
// RegisterFile's active-level mirror in step with ACTL (spec.md §4.7).
func (c *CPU) CheckAndSwitch() bool {
	return c.IC.CheckAndSwitch(func(newLevel int) {
		c.Regs.SetActive(newLevel)
	})
}
