package execute

import (
	"testing"

	"nd100/decode"
	"nd100/interrupt"
	"nd100/register"
)

func TestMonDelegatesToMonitorHook(t *testing.T) {
	c := newTestCPU()
	var called int
	c.Monitor = func(n int) bool {
		called = n
		return true
	}

	c.execMon(decode.Instruction{Addr: 5})
	if called != 5 {
		t.Fatalf("Monitor called with %d, want 5", called)
	}
	if c.IC.PID()&(1<<14) != 0 {
		t.Fatalf("internal interrupt raised despite a handled MON")
	}
}

func TestMonWithoutHandlerRaisesInternal(t *testing.T) {
	c := newTestCPU()
	c.execMon(decode.Instruction{Addr: 9})
	if c.IC.IIC(14) != interrupt.IICMONUnhandled {
		t.Fatalf("IIC(14) = %d, want IICMONUnhandled", c.IC.IIC(14))
	}
}

func TestExrRunsTargetOnceWithPUnchanged(t *testing.T) {
	c := newTestCPU()
	// Target instruction: LDA with disp 3, placed at address 20.
	target := uint16(decode.FamLDA)<<11 | 3
	c.Mem.WriteWord(20, target, 2)
	c.Mem.WriteWord(3, 0o555, 2) // EA for the target's P-relative disp=3, P=0 -> addr 3

	c.Regs.Set(0, register.T, 20)
	c.Regs.SetP(0)

	c.execExr(decode.Instruction{Reg1: register.T})

	if c.Regs.Get(0, register.A) != 0o555 {
		t.Fatalf("A = %#o after EXR'd LDA, want 0555", c.Regs.Get(0, register.A))
	}
	if c.Regs.P() != 0 {
		t.Fatalf("P = %d after EXR, want unchanged 0", c.Regs.P())
	}
}

func TestExrRejectsNestedExr(t *testing.T) {
	c := newTestCPU()
	nested := uint16(decode.FamExtC)<<11 | uint16(4)<<8 // group 4 -> SubExr
	c.Mem.WriteWord(20, nested, 2)
	c.Regs.Set(0, register.T, 20)

	c.execExr(decode.Instruction{Reg1: register.T})

	if c.IC.IIC(14) != interrupt.IICIllegalInstruction {
		t.Fatalf("IIC(14) = %d, want IICIllegalInstruction for nested EXR", c.IC.IIC(14))
	}
}
