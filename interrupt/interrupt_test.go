package interrupt

import "testing"

func TestLevelIsRunnableOnlyWithBothBits(t *testing.T) {
	c := New()
	c.SetPIE(1 << 5)
	c.Raise(5, 0)
	switched := c.CheckAndSwitch(nil)
	if !switched || c.ACTL() != 5 {
		t.Fatalf("ACTL = %d switched=%v, want 5/true", c.ACTL(), switched)
	}
}

func TestLevelZeroFallback(t *testing.T) {
	c := New()
	// Nothing pending/enabled: level 0 stays the runnable fallback.
	c.CheckAndSwitch(nil)
	if c.ACTL() != 0 {
		t.Fatalf("ACTL = %d, want 0", c.ACTL())
	}
}

func TestHighestLevelWins(t *testing.T) {
	c := New()
	c.SetPIE(0xffff)
	c.Raise(3, 0)
	c.Raise(9, 0)
	c.CheckAndSwitch(nil)
	if c.ACTL() != 9 {
		t.Fatalf("ACTL = %d, want 9", c.ACTL())
	}
}

func TestPVLRecordsOutgoingLevel(t *testing.T) {
	c := New()
	c.SetPIE(0xffff)
	c.Raise(4, 0)
	c.CheckAndSwitch(nil)
	c.Raise(11, 0)
	c.CheckAndSwitch(nil)
	if c.PVL() != 4 {
		t.Fatalf("PVL = %d, want 4", c.PVL())
	}
	if c.ACTL() != 11 {
		t.Fatalf("ACTL = %d, want 11", c.ACTL())
	}
}

func TestIdentFIFOOrder(t *testing.T) {
	c := New()
	c.EnqueueIdent(11, 0o21, 0)
	c.EnqueueIdent(11, 0o23, 0)

	id1, ok1 := c.PopIdent(11)
	id2, ok2 := c.PopIdent(11)
	_, ok3 := c.PopIdent(11)

	if !ok1 || id1 != 0o21 {
		t.Fatalf("first pop = %o,%v want 021,true", id1, ok1)
	}
	if !ok2 || id2 != 0o23 {
		t.Fatalf("second pop = %o,%v want 023,true", id2, ok2)
	}
	if ok3 {
		t.Fatalf("third pop ok = true, want false (chain drained)")
	}
}

func TestClearEmptiesIdentChainAndPID(t *testing.T) {
	c := New()
	c.SetPIE(0xffff)
	c.Raise(2, 0)
	c.EnqueueIdent(2, 5, 0)
	c.Clear()
	if c.PID() != 0 {
		t.Fatalf("PID = %#x after Clear, want 0", c.PID())
	}
	if _, ok := c.PopIdent(2); ok {
		t.Fatalf("PopIdent after Clear found an entry, want chain empty")
	}
}
