package register

import "testing"

func TestGetSet(t *testing.T) {
	f := New()
	f.Set(3, A, 0x1234)
	if got := f.Get(3, A); got != 0x1234 {
		t.Fatalf("Get(3,A) = %#x, want 0x1234", got)
	}
	if got := f.Get(4, A); got != 0 {
		t.Fatalf("Get(4,A) = %#x, want 0 (banks are independent)", got)
	}
}

func TestCurrentLevelInvariant(t *testing.T) {
	f := New()
	f.SetActive(5)
	if got := f.STS(5).Level; got != 5 {
		t.Fatalf("STS(5).Level = %d, want 5", got)
	}
	f.SetActive(9)
	if got := f.STS(9).Level; got != 9 {
		t.Fatalf("STS(9).Level = %d, want 9", got)
	}
	// Writing STS on the active level must not clobber the level field.
	f.SetSTS(9, STSBits{C: true})
	if got := f.STS(9); !got.C || got.Level != 9 {
		t.Fatalf("STS(9) = %+v, want C=true Level=9", got)
	}
}

func TestPAdvance(t *testing.T) {
	f := New()
	f.SetActive(0)
	f.SetP(0o1000)
	if got := f.P(); got != 0o1000 {
		t.Fatalf("P() = %#o, want 01000", got)
	}
}

func TestSTSPackUnpackRoundTrip(t *testing.T) {
	bits := STSBits{C: true, Q: true, O: true, M: true, K: true, Z: true, N100: true, Level: 11}
	got := UnpackSTS(bits.Pack())
	if got != bits {
		t.Fatalf("round trip = %+v, want %+v", got, bits)
	}
}

func TestClearZeroesBanks(t *testing.T) {
	f := New()
	f.Set(2, X, 0xffff)
	f.SetPCR(2, 0xffff)
	f.Clear()
	if got := f.Get(2, X); got != 0 {
		t.Fatalf("Get(2,X) after Clear = %#x, want 0", got)
	}
	if got := f.PCR(2); got != 0 {
		t.Fatalf("PCR(2) after Clear = %#x, want 0", got)
	}
}
