package execute

import (
	"testing"

	"nd100/register"
)

// TestAddOverflowScenario matches spec.md §8 scenario 1 exactly: A=0o77777,
// T=1, ADD A,T -> A=0o100000, STS.Q=1, STS.O=1, STS.C=0.
func TestAddOverflowScenario(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.A, 0o77777)
	c.Regs.Set(0, register.T, 1)
	c.Mem.WriteWord(0, 1, 2) // arith() reads operand from mem[EA]; put T's value there too

	c.arith(0, 0, opAdd)

	got := c.Regs.Get(0, register.A)
	if got != 0o100000 {
		t.Fatalf("A = %#o, want 0100000", got)
	}
	sts := c.Regs.STS(0)
	if !sts.Q || !sts.O || sts.C {
		t.Fatalf("STS = %+v, want Q=true O=true C=false", sts)
	}
}

func TestSubComputesTwosComplementCarry(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.A, 5)
	c.Mem.WriteWord(0, 3, 2)

	c.arith(0, 0, opSub)

	if got := c.Regs.Get(0, register.A); got != 2 {
		t.Fatalf("A = %d, want 2", got)
	}
	if !c.Regs.STS(0).C {
		t.Fatalf("STS.C = false, want true (5-3 doesn't borrow)")
	}
}

// TestSubOverflowScenario: A=0x8000 (-32768), mem[EA]=1, SUB A,mem. Real
// two's-complement subtraction overflows (-32768-1 wraps to +32767), so
// STS.Q (and the sticky STS.O) must be set.
func TestSubOverflowScenario(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.A, 0x8000)
	c.Mem.WriteWord(0, 1, 2)

	c.arith(0, 0, opSub)

	got := c.Regs.Get(0, register.A)
	if got != 0x7fff {
		t.Fatalf("A = %#x, want 0x7fff", got)
	}
	sts := c.Regs.STS(0)
	if !sts.Q || !sts.O {
		t.Fatalf("STS = %+v, want Q=true O=true", sts)
	}
}

func TestAndOraAreLogicalAndDoNotTouchOverflow(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.A, 0xf0f0)
	c.Mem.WriteWord(0, 0x0ff0, 2)

	c.arith(0, 0, opAnd)
	if got := c.Regs.Get(0, register.A); got != 0x00f0 {
		t.Fatalf("AND result = %#x, want 0x00f0", got)
	}
	if c.Regs.STS(0).Q {
		t.Fatalf("STS.Q set by a logical op")
	}
}

func TestMinIncrementSetsZOnWraparound(t *testing.T) {
	c := newTestCPU()
	c.Mem.WriteWord(0, 0xffff, 2)

	c.minIncrement(0, 0)

	if got := c.Mem.ReadWord(0); got != 0 {
		t.Fatalf("mem[0] = %#x, want 0", got)
	}
	if !c.Regs.STS(0).Z {
		t.Fatalf("STS.Z not set after MIN wraps to zero")
	}
}
