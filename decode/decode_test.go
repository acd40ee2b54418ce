package decode

import "testing"

func TestDecodeMemRefFields(t *testing.T) {
	// FamADD (11) with I=1 X=0 B=1 disp=-2 (0xfe)
	word := uint16(FamADD)<<11 | 1<<10 | 0<<9 | 1<<8 | 0xfe
	ins := Decode(word)
	if ins.Family != FamADD {
		t.Fatalf("Family = %v, want FamADD", ins.Family)
	}
	if !ins.Indirect || ins.XBit || !ins.BBit {
		t.Fatalf("flags = I:%v X:%v B:%v, want I:true X:false B:true", ins.Indirect, ins.XBit, ins.BBit)
	}
	if ins.Disp != -2 {
		t.Fatalf("Disp = %d, want -2", ins.Disp)
	}
}

func TestEffectivePRelative(t *testing.T) {
	ins := Instruction{Disp: 5}
	ea := Effective(ins, 0o1000, 0, 0, 1, nil)
	if ea.Addr != 0o1005 {
		t.Fatalf("EA = %#o, want 01005", ea.Addr)
	}
}

func TestEffectiveNegativeWraps(t *testing.T) {
	ins := Instruction{Disp: -1}
	ea := Effective(ins, 0, 0, 0, 1, nil)
	if ea.Addr != 0xffff {
		t.Fatalf("EA = %#x, want 0xffff", ea.Addr)
	}
}

func TestEffectiveBIndexed(t *testing.T) {
	ins := Instruction{BBit: true, XBit: true, Disp: 2}
	ea := Effective(ins, 0, 100, 10, 1, nil)
	if ea.Addr != 112 {
		t.Fatalf("EA = %d, want 112 (B+X+disp)", ea.Addr)
	}
}

func TestEffectiveIndirectAddsXPostIndirect(t *testing.T) {
	ins := Instruction{Indirect: true, XBit: true, Disp: 0}
	mem := map[uint16]uint16{0: 0o2000}
	ea := Effective(ins, 0, 0, 5, 1, func(addr uint16) uint16 { return mem[addr] })
	if ea.Addr != 0o2005 {
		t.Fatalf("EA = %#o, want 02005", ea.Addr)
	}
}

func TestEffectiveByteScale(t *testing.T) {
	ins := Instruction{Disp: 3}
	ea := Effective(ins, 0, 0, 0, 2, nil)
	if ea.Addr != 6 {
		t.Fatalf("EA = %d, want 6 (disp*2)", ea.Addr)
	}
}

func TestDecodeExtendedFamily(t *testing.T) {
	// FamExtD, group 6 (WAIT)
	word := uint16(FamExtD)<<11 | 6<<8
	ins := Decode(word)
	if ins.Sub != SubWait {
		t.Fatalf("Sub = %v, want SubWait", ins.Sub)
	}
}
