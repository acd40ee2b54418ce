package page

import "testing"

func TestTranslateValid(t *testing.T) {
	pt := New()
	pt.SetPT(0, 3, PTE{PhysPage: 7, Valid: true, Writable: true}.Pack())

	virt := uint16(3<<10) | 0x042
	phys, set, fault := pt.Translate(0, false, false, virt)
	if fault != FaultNone {
		t.Fatalf("fault = %v, want FaultNone", fault)
	}
	if set != 0 {
		t.Fatalf("set = %d, want 0", set)
	}
	want := uint16(7*Words) | 0x042
	if phys != want {
		t.Fatalf("phys = %#x, want %#x", phys, want)
	}
}

func TestTranslateInvalidFault(t *testing.T) {
	pt := New()
	_, _, fault := pt.Translate(0, false, false, 3<<10)
	if fault != FaultPageInvalid {
		t.Fatalf("fault = %v, want FaultPageInvalid", fault)
	}
}

func TestTranslateProtectFault(t *testing.T) {
	pt := New()
	pt.SetPT(0, 1, PTE{PhysPage: 1, Valid: true, Writable: false}.Pack())
	_, _, fault := pt.Translate(0, false, true, 1<<10)
	if fault != FaultProtect {
		t.Fatalf("fault = %v, want FaultProtect", fault)
	}
}

func TestAPTSelectsAlternateSet(t *testing.T) {
	pt := New()
	pt.SetPT(1, 0, PTE{PhysPage: 9, Valid: true}.Pack())
	_, set, fault := pt.Translate(0, true, false, 0)
	if fault != FaultNone || set != 1 {
		t.Fatalf("set = %d fault = %v, want set 1 fault none", set, fault)
	}
}

func TestClearPTInvalidates(t *testing.T) {
	pt := New()
	pt.SetPT(0, 2, PTE{PhysPage: 4, Valid: true}.Pack())
	pt.ClearPT(0, 2)
	_, _, fault := pt.Translate(0, false, false, 2<<10)
	if fault != FaultPageInvalid {
		t.Fatalf("fault = %v, want FaultPageInvalid after ClearPT", fault)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	p := PTE{PhysPage: 0x3aa, Valid: true, Writable: true, Ring: 2, Accessed: true, Dirty: true, Index: 5}
	got := Unpack(p.Pack())
	if got != p {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
}
