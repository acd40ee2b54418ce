package configparser

import (
	"strings"
	"testing"
)

func TestParseBasicKeyValuePairs(t *testing.T) {
	const text = `
# this is a comment, ignored
cputype = nd100ce
boot=bpun
start = 0o1000
debug = 1
trace=0x3
disasm 0
panel=1
`
	cfg, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CPUType != "nd100ce" {
		t.Fatalf("CPUType = %q, want nd100ce", cfg.CPUType)
	}
	if cfg.Boot != "bpun" {
		t.Fatalf("Boot = %q, want bpun", cfg.Boot)
	}
	if cfg.Start != 0o1000 {
		t.Fatalf("Start = %#o, want 01000", cfg.Start)
	}
	if !cfg.Debug {
		t.Fatalf("Debug = false, want true")
	}
	if cfg.Trace != 3 {
		t.Fatalf("Trace = %d, want 3", cfg.Trace)
	}
	if cfg.Disasm {
		t.Fatalf("Disasm = true, want false")
	}
	if !cfg.Panel {
		t.Fatalf("Panel = false, want true")
	}
}

func TestParseFloppyOptionsAndQuotedScript(t *testing.T) {
	const text = `
floppy_image = /var/nd100/floppy.nd100.00.img
floppy_image_access = ro
script_console = "\t3 hello"
`
	cfg, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.FloppyImage != "/var/nd100/floppy.nd100.00.img" {
		t.Fatalf("FloppyImage = %q", cfg.FloppyImage)
	}
	if cfg.FloppyImageAccess != "ro" {
		t.Fatalf("FloppyImageAccess = %q, want ro", cfg.FloppyImageAccess)
	}
	if cfg.ScriptConsole != `\t3 hello` {
		t.Fatalf("ScriptConsole = %q", cfg.ScriptConsole)
	}
}

func TestParseRejectsUnknownKey(t *testing.T) {
	if _, err := Parse(strings.NewReader("bogus = 1\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestParseRejectsUnknownCPUType(t *testing.T) {
	if _, err := Parse(strings.NewReader("cputype = pdp11\n")); err == nil {
		t.Fatalf("expected error for unknown cputype")
	}
}

func TestParseRejectsUnknownBootSource(t *testing.T) {
	if _, err := Parse(strings.NewReader("boot = tape\n")); err == nil {
		t.Fatalf("expected error for unknown boot source")
	}
}

func TestParseIgnoresBlankLinesAndFullLineComments(t *testing.T) {
	const text = "\n   \n# nothing here\ncputype=nd110\n"
	cfg, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CPUType != "nd110" {
		t.Fatalf("CPUType = %q, want nd110", cfg.CPUType)
	}
}

func TestParseAllowsTrailingComment(t *testing.T) {
	cfg, err := Parse(strings.NewReader("panel = 1 # enable front panel\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Panel {
		t.Fatalf("Panel = false, want true")
	}
}
