package execute

import (
	"testing"

	"nd100/register"
)

func TestBopsSetbAndSkpbOnStatusBit(t *testing.T) {
	c := newTestCPU()

	c.execBops(bopsSetb, 0, int(BitZ))
	if !c.Regs.STS(0).Z {
		t.Fatalf("STS.Z not set by SETB")
	}

	c.Regs.SetP(10)
	c.execBops(bopsSkpbSet, 0, int(BitZ))
	if c.Regs.P() != 11 {
		t.Fatalf("P = %d, want 11 (SKPB-if-set taken)", c.Regs.P())
	}

	c.execBops(bopsClrb, 0, int(BitZ))
	if c.Regs.STS(0).Z {
		t.Fatalf("STS.Z still set after CLRB")
	}
}

func TestBopsPILMapsOntoPIE(t *testing.T) {
	c := newTestCPU()
	c.execBops(bopsSetb, 0, int(BitPIL0))
	if c.IC.PIE()&1 == 0 {
		t.Fatalf("PIE bit 0 not set by SETB PIL0")
	}
}

func TestBopsRegisterBitVariant(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.T, 0)

	c.execBops(bopsSetbReg, register.T, 3)
	if c.Regs.Get(0, register.T) != 1<<3 {
		t.Fatalf("T = %#x, want bit 3 set", c.Regs.Get(0, register.T))
	}

	c.Regs.SetP(10)
	c.execBops(bopsSkpbRegSet, register.T, 3)
	if c.Regs.P() != 11 {
		t.Fatalf("P = %d, want 11 (register SKPB-if-set taken)", c.Regs.P())
	}
}
