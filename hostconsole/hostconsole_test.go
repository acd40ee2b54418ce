package hostconsole

import (
	"os"
	"path/filepath"
	"testing"

	"nd100/execute"
)

func TestContainsCtrlY(t *testing.T) {
	if containsCtrlY("hello") {
		t.Fatalf("containsCtrlY(\"hello\") = true, want false")
	}
	if !containsCtrlY("he\x19llo") {
		t.Fatalf("containsCtrlY with embedded Ctrl-Y = false, want true")
	}
}

func TestSaveSnapshotWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpustate.bin")

	cpu := execute.New()
	cpu.MCL()
	cpu.CCL = 0o42

	w := &Watcher{cpu: cpu, snapshotPath: path}
	w.saveSnapshot()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file not created: %v", err)
	}
}

func TestLoadIfPresentReturnsFalseWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cpu := execute.New()

	loaded, err := LoadIfPresent(cpu, filepath.Join(dir, "missing.bin"))
	if err != nil {
		t.Fatalf("LoadIfPresent: %v", err)
	}
	if loaded {
		t.Fatalf("loaded = true, want false for missing file")
	}
}

func TestLoadIfPresentRestoresSavedState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpustate.bin")

	src := execute.New()
	src.MCL()
	src.CCL = 0o55
	w := &Watcher{cpu: src, snapshotPath: path}
	w.saveSnapshot()

	dst := execute.New()
	loaded, err := LoadIfPresent(dst, path)
	if err != nil {
		t.Fatalf("LoadIfPresent: %v", err)
	}
	if !loaded {
		t.Fatalf("loaded = false, want true")
	}
	if dst.CCL != 0o55 {
		t.Fatalf("CCL = %#o after restore, want 055", dst.CCL)
	}
}
