package boot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"nd100/memory"
)

// TestBPUNScenario matches spec.md §8 scenario 5: header "123!", then
// bytes 00 00 00 02 00 05 00 07 00 0C 00 00 encodes load@0, count=2,
// data {5, 7}, checksum=0x000C. After load: mem[0]=5, mem[1]=7.
func TestBPUNScenario(t *testing.T) {
	raw := append([]byte("123!"), 0x00, 0x00, 0x00, 0x02, 0x00, 0x05, 0x00, 0x07, 0x00, 0x0C, 0x00, 0x00)

	img, err := ReadBPUN(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadBPUN: %v", err)
	}
	if img.LoadAddr != 0 {
		t.Fatalf("LoadAddr = %d, want 0", img.LoadAddr)
	}
	if len(img.Payload) != 2 || img.Payload[0] != 5 || img.Payload[1] != 7 {
		t.Fatalf("Payload = %v, want [5 7]", img.Payload)
	}
	if img.Checksum != 0x000C {
		t.Fatalf("Checksum = %#x, want 0xc", img.Checksum)
	}

	mem := memory.New()
	for i, w := range img.Payload {
		mem.WriteWord(img.LoadAddr+uint16(i), w, memory.SelectWord)
	}
	if mem.ReadWord(0) != 5 || mem.ReadWord(1) != 7 {
		t.Fatalf("mem[0:2] = %d,%d, want 5,7", mem.ReadWord(0), mem.ReadWord(1))
	}
}

func TestReadBPUNRejectsBadChecksum(t *testing.T) {
	raw := append([]byte("X!"), 0x00, 0x00, 0x00, 0x01, 0x00, 0x05, 0xFF, 0xFF, 0x00, 0x00)
	if _, err := ReadBPUN(bytes.NewReader(raw)); err != ErrChecksum {
		t.Fatalf("err = %v, want ErrChecksum", err)
	}
}

// TestBPUNFileRoundTrip matches spec.md §8's round-trip invariant: for
// every BPUN file whose payload sum matches its checksum, loading then
// reading word-count words from load-address yields the original
// payload.
func TestBPUNFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.bpun")
	payload := []uint16{0o123, 0o456, 0x7fff, 0}

	if err := WriteBPUNFile(path, "TEST!", 0o1000, payload, 0o17); err != nil {
		t.Fatalf("WriteBPUNFile: %v", err)
	}

	mem := memory.New()
	action, err := LoadBPUNFile(path, mem)
	if err != nil {
		t.Fatalf("LoadBPUNFile: %v", err)
	}
	if action != 0o17 {
		t.Fatalf("action code = %#o, want 017", action)
	}
	for i, want := range payload {
		if got := mem.ReadWord(0o1000 + uint16(i)); got != want {
			t.Fatalf("mem[%#o] = %#o, want %#o", 0o1000+i, got, want)
		}
	}
}

func TestBPFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.bp")

	src := memory.New()
	src.WriteWord(0, 0o123456, memory.SelectWord)
	src.WriteWord(5, 0xBEEF, memory.SelectWord)
	src.WriteWord(memory.Words-1, 0x0001, memory.SelectWord)

	if err := WriteBPFile(path, src); err != nil {
		t.Fatalf("WriteBPFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != int64(memory.Words)*2 {
		t.Fatalf("BP file size = %d, want %d", info.Size(), memory.Words*2)
	}

	dst := memory.New()
	if err := LoadBPFile(path, dst); err != nil {
		t.Fatalf("LoadBPFile: %v", err)
	}
	for addr := 0; addr < memory.Words; addr++ {
		if dst.ReadWord(uint16(addr)) != src.ReadWord(uint16(addr)) {
			t.Fatalf("mem[%d] mismatch after BP round trip", addr)
		}
	}
}
