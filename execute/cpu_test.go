package execute

import (
	"testing"

	"nd100/page"
	"nd100/register"
)

// identityMap maps every page of set pgs straight through (physical page
// N == virtual page N), writable, so tests can exercise loads/stores
// without separately constructing page-fault scenarios.
func identityMap(pt *page.Table, pgs int) {
	for i := uint8(0); i < page.Entries; i++ {
		pt.SetPT(pgs, i, page.PTE{PhysPage: uint16(i), Valid: true, Writable: true}.Pack())
	}
}

func newTestCPU() *CPU {
	c := New()
	c.MCL()
	c.Resume()
	identityMap(c.PT, 0)
	return c
}

func TestMCLClearsRegistersAndSetsStickyBits(t *testing.T) {
	c := New()
	c.Regs.Set(0, register.A, 0o123)
	c.IC.Raise(5, 0)
	c.MCL()

	for l := 0; l < register.Levels; l++ {
		for r := 0; r < register.NumRegs; r++ {
			if r == register.STS {
				continue
			}
			if v := c.Regs.Get(l, r); v != 0 {
				t.Fatalf("reg[%d][%d] = %#o, want 0", l, r, v)
			}
		}
	}
	sts := c.Regs.STS(0)
	if !sts.O || !sts.N100 {
		t.Fatalf("STS[0] = %+v, want O=true N100=true", sts)
	}
	if c.CSR&(1<<2) == 0 {
		t.Fatalf("CSR bit 2 not set after MCL")
	}
	if c.IC.PID() != 0 {
		t.Fatalf("PID = %#x after MCL, want 0", c.IC.PID())
	}
	if !c.Stopped {
		t.Fatalf("CPU not in STOP state after MCL")
	}
}

func TestStepFetchesDecodesAndAdvancesP(t *testing.T) {
	c := newTestCPU()
	// LDA A <- mem[EA]; P-relative with disp=2 and pre-increment P=0 gives
	// EA=2.
	c.Mem.WriteWord(2, 0o4321, 2)
	word := uint16(0) /* FamLDA */ <<11 | 2
	c.Mem.WriteWord(0, word, 2)
	c.Regs.SetP(0)

	c.Step()

	if c.Regs.Get(0, register.A) != 0o4321 {
		t.Fatalf("A = %#o, want 04321", c.Regs.Get(0, register.A))
	}
	if c.Regs.P() != 1 {
		t.Fatalf("P = %d, want 1", c.Regs.P())
	}
	if c.InstrCount != 1 {
		t.Fatalf("InstrCount = %d, want 1", c.InstrCount)
	}
}

func TestStepPageFaultRaisesInternalInterrupt(t *testing.T) {
	c := New()
	c.MCL()
	c.Resume()
	// No identity map: level 0's first fetch at P=0 faults.
	c.Step()

	if c.IC.PID()&(1<<14) == 0 {
		t.Fatalf("PID bit 14 not set after page fault on fetch")
	}
	if c.IC.IIC(14) == 0 {
		t.Fatalf("IIC(14) not recorded")
	}
}
