package memory

import "testing"

func TestWordReadWrite(t *testing.T) {
	m := New()
	m.WriteWord(10, 0x1234, SelectWord)
	if got := m.ReadWord(10); got != 0x1234 {
		t.Fatalf("ReadWord() = %#x, want 0x1234", got)
	}
}

func TestByteSelect(t *testing.T) {
	m := New()
	m.WriteWord(5, 0xffff, SelectWord)
	m.WriteWord(5, 0x00ab, SelectHigh)
	if got := m.ReadWord(5); got != 0xabff {
		t.Fatalf("after SelectHigh ReadWord() = %#x, want 0xabff", got)
	}
	m.WriteWord(5, 0xffff, SelectWord)
	m.WriteWord(5, 0x00cd, SelectLow)
	if got := m.ReadWord(5); got != 0xffcd {
		t.Fatalf("after SelectLow ReadWord() = %#x, want 0xffcd", got)
	}
}

func TestByteView(t *testing.T) {
	m := New()
	m.WriteWord(0, 0xabcd, SelectWord)
	if got := m.ReadByte(0); got != 0xab {
		t.Fatalf("ReadByte(0) = %#x, want 0xab", got)
	}
	if got := m.ReadByte(1); got != 0xcd {
		t.Fatalf("ReadByte(1) = %#x, want 0xcd", got)
	}
	m.WriteByte(2, 0x11) // word 1, high byte
	m.WriteByte(3, 0x22) // word 1, low byte
	if got := m.ReadWord(1); got != 0x1122 {
		t.Fatalf("ReadWord(1) = %#x, want 0x1122", got)
	}
}

func TestDoubleWord(t *testing.T) {
	m := New()
	m.WriteDouble(100, 0x12345678)
	if got := m.ReadDouble(100); got != 0x12345678 {
		t.Fatalf("ReadDouble() = %#x, want 0x12345678", got)
	}
	if got := m.ReadWord(100); got != 0x1234 {
		t.Fatalf("MSB word = %#x, want 0x1234", got)
	}
	if got := m.ReadWord(101); got != 0x5678 {
		t.Fatalf("LSB word = %#x, want 0x5678", got)
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.WriteWord(0, 0xffff, SelectWord)
	m.Clear()
	if got := m.ReadWord(0); got != 0 {
		t.Fatalf("ReadWord(0) after Clear = %#x, want 0", got)
	}
}
