package snapshot

import (
	"bytes"
	"testing"

	"nd100/execute"
	"nd100/page"
	"nd100/register"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	src := execute.New()
	src.MCL()
	src.Resume()

	src.IC.SetACTL(3)
	src.Regs.SetActive(3)
	src.Regs.Set(3, register.A, 0o12345)
	src.Regs.Set(3, register.T, 0xBEEF)
	src.Regs.SetPCR(3, 0o77)
	src.CCL = 0o123
	src.CSR = 0o4
	src.FExp = 0x4001
	src.InstrCount = 42
	src.Mem.WriteWord(0, 0o1234, 2)
	src.Mem.WriteWord(600, 0xFACE, 2)
	src.PT.SetPT(1, 5, page.PTE{PhysPage: 9, Valid: true, Writable: true}.Pack())
	src.IC.SetPID(0x8000)
	src.IC.SetPIE(0xFFFF)
	src.IC.EnqueueIdent(11, 0o21, 0)
	src.IC.EnqueueIdent(11, 0o23, 0)

	var buf bytes.Buffer
	if err := Save(&buf, src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := execute.New()
	if err := Load(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if dst.Regs.Get(3, register.A) != 0o12345 {
		t.Fatalf("A = %#o, want 012345", dst.Regs.Get(3, register.A))
	}
	if dst.Regs.Get(3, register.T) != 0xBEEF {
		t.Fatalf("T = %#x, want 0xbeef", dst.Regs.Get(3, register.T))
	}
	if dst.Regs.PCR(3) != 0o77 {
		t.Fatalf("PCR(3) = %#o, want 077", dst.Regs.PCR(3))
	}
	if dst.Regs.Active() != 3 {
		t.Fatalf("Active() = %d, want 3", dst.Regs.Active())
	}
	if dst.CCL != 0o123 {
		t.Fatalf("CCL = %#o, want 0123", dst.CCL)
	}
	if dst.CSR != 0o4 {
		t.Fatalf("CSR = %#o, want 04", dst.CSR)
	}
	if dst.FExp != 0x4001 {
		t.Fatalf("FExp = %#x, want 0x4001", dst.FExp)
	}
	if dst.InstrCount != 42 {
		t.Fatalf("InstrCount = %d, want 42", dst.InstrCount)
	}
	if dst.Mem.ReadWord(0) != 0o1234 {
		t.Fatalf("mem[0] = %#o, want 01234", dst.Mem.ReadWord(0))
	}
	if dst.Mem.ReadWord(600) != 0xFACE {
		t.Fatalf("mem[600] = %#x, want 0xface", dst.Mem.ReadWord(600))
	}
	pte := dst.PT.Get(1, 5)
	if !pte.Valid || pte.PhysPage != 9 || !pte.Writable {
		t.Fatalf("PTE = %+v, want Valid PhysPage=9 Writable", pte)
	}
	if dst.IC.PID() != 0x8000 {
		t.Fatalf("PID = %#x, want 0x8000", dst.IC.PID())
	}
	if dst.IC.PIE() != 0xFFFF {
		t.Fatalf("PIE = %#x, want 0xffff", dst.IC.PIE())
	}

	id, ok := dst.IC.PopIdent(11)
	if !ok || id != 0o21 {
		t.Fatalf("first ident = %#o,%v, want 021,true", id, ok)
	}
	id, ok = dst.IC.PopIdent(11)
	if !ok || id != 0o23 {
		t.Fatalf("second ident = %#o,%v, want 023,true", id, ok)
	}
}

func TestSaveSkipsZeroMemoryBlocks(t *testing.T) {
	src := execute.New()
	var buf bytes.Buffer
	if err := Save(&buf, src); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("MEM-")) {
		t.Fatalf("Save emitted a MEM- record for all-zero memory")
	}
}
