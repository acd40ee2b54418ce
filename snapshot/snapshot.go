/*
 * ND100 - CPU state snapshot persistence (cpustate.bin).
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package snapshot saves and restores a CPU's complete state as the
// line-oriented, plain-text cpustate.bin format described in spec.md §6:
// one key=value record per line, with hex word encodings for registers
// (octal is not used) and a hex block encoding for non-zero memory pages.
package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nd100/execute"
	"nd100/interrupt"
	"nd100/page"
	"nd100/register"
	"nd100/util/hex"
)

// blockWords is the size, in words, of one MEM-<offset> record — 512
// bytes, per spec.md §6.
const blockWords = 256

var regNames = [register.NumRegs]string{
	register.STS: "STS",
	register.D:   "D",
	register.P:   "P",
	register.B:   "B",
	register.L:   "L",
	register.A:   "A",
	register.T:   "T",
	register.X:   "X",
}

// Save writes c's complete state to w in the cpustate.bin format.
func Save(w io.Writer, c *execute.CPU) error {
	bw := bufio.NewWriter(w)

	writeLine(bw, "INSTR_COUNT", strconv.FormatUint(c.InstrCount, 16))
	writeLine(bw, "STOPPED", boolDigit(c.Stopped))

	for _, kv := range globalRegisters(c) {
		writeLine(bw, kv.key, fmt.Sprintf("%x", kv.value))
	}

	writeLine(bw, "ACTL", strconv.Itoa(c.IC.ACTL()))
	writeLine(bw, "PVL", strconv.Itoa(c.IC.PVL()))
	writeLine(bw, "PID", fmt.Sprintf("%x", c.IC.PID()))
	writeLine(bw, "PIE", fmt.Sprintf("%x", c.IC.PIE()))

	for level := 0; level < register.Levels; level++ {
		for idx, name := range regNames {
			writeLine(bw, fmt.Sprintf("REG%02d.%s", level, name), fmt.Sprintf("%x", c.Regs.Get(level, idx)))
		}
		writeLine(bw, fmt.Sprintf("REG%02d.PCR", level), fmt.Sprintf("%x", c.Regs.PCR(level)))
		writeLine(bw, fmt.Sprintf("IIC%02d", level), fmt.Sprintf("%x", c.IC.IIC(level)))
	}

	for set := 0; set < page.Sets; set++ {
		for idx := 0; idx < page.Entries; idx++ {
			pte := c.PT.Get(set, uint8(idx))
			if pte == (page.PTE{}) {
				continue
			}
			n := set*page.Entries + idx
			writeLine(bw, fmt.Sprintf("PT%03d", n), fmt.Sprintf("%x", pte.Pack()))
		}
	}

	for i, e := range c.IC.IdentEntries() {
		writeLine(bw, fmt.Sprintf("IDL%03d", i), strconv.Itoa(e.Level))
		writeLine(bw, fmt.Sprintf("IDC%03d", i), fmt.Sprintf("%x", e.IdentCode))
		writeLine(bw, fmt.Sprintf("IDI%03d", i), fmt.Sprintf("%x", e.CallerID))
	}

	for block := 0; block < (1<<16)/blockWords; block++ {
		if blockIsZero(c, block) {
			continue
		}
		writeLine(bw, fmt.Sprintf("MEM-%08x", block*blockWords), hexBlock(c, block))
	}

	return bw.Flush()
}

type kv struct {
	key   string
	value uint16
}

// globalRegisters lists the "control-register mnemonics" of spec.md §3
// (the CPU fields that belong to none of RegisterFile/InterruptController).
func globalRegisters(c *execute.CPU) []kv {
	return []kv{
		{"IR", c.IR},
		{"PGS", uint16(c.PGS)},
		{"IIE", c.IIE},
		{"IID", c.IID},
		{"CSR", c.CSR},
		{"CCL", c.CCL},
		{"LCIL", c.LCIL},
		{"UCIL", c.UCIL},
		{"ALD", c.ALD},
		{"PES", c.PES},
		{"PGC", c.PGC},
		{"PEA", c.PEA},
		{"PFB", c.PFB},
		{"PANC", c.PANC},
		{"PANS", c.PANS},
		{"OPR", c.OPR},
		{"LMP", c.LMP},
		{"ECCR", c.ECCR},
		{"FEXP", c.FExp},
	}
}

func blockIsZero(c *execute.CPU, block int) bool {
	base := uint16(block * blockWords)
	for i := 0; i < blockWords; i++ {
		if c.Mem.ReadWord(base+uint16(i)) != 0 {
			return false
		}
	}
	return true
}

func hexBlock(c *execute.CPU, block int) string {
	base := uint32(block*blockWords) * 2
	data := make([]byte, blockWords*2)
	for i := range data {
		data[i] = c.Mem.ReadByte(base + uint32(i))
	}
	var sb strings.Builder
	hex.FormatBytes(&sb, false, data)
	return sb.String()
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func writeLine(w *bufio.Writer, key, value string) {
	fmt.Fprintf(w, "%s=%s\n", key, value)
}

// Load restores c's complete state from a cpustate.bin-format reader. c
// should be freshly constructed (or MCL'd); Load overwrites every field
// the format names and leaves the rest untouched.
func Load(r io.Reader, c *execute.CPU) error {
	globalSetters := globalRegisterSetters(c)
	var pendingIdent = map[int]interrupt.IdentEntry{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("snapshot: malformed line %q", line)
		}

		switch {
		case key == "INSTR_COUNT":
			v, err := strconv.ParseUint(value, 16, 64)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.InstrCount = v
		case key == "STOPPED":
			c.Stopped = value == "1"
		case key == "ACTL":
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.IC.SetACTL(v)
			c.Regs.SetActive(v)
		case key == "PVL":
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.IC.SetPVL(v)
		case key == "PID":
			v, err := parseHexWord(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.IC.SetPID(v)
		case key == "PIE":
			v, err := parseHexWord(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.IC.SetPIE(v)
		case globalSetters[key] != nil:
			v, err := parseHexWord(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			globalSetters[key](v)
		case strings.HasPrefix(key, "REG") && strings.Contains(key, "."):
			if err := loadRegister(c, key, value); err != nil {
				return err
			}
		case strings.HasPrefix(key, "IIC"):
			level, err := strconv.Atoi(key[3:])
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			v, err := parseHexWord(value)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.IC.SetIIC(level, v)
		case strings.HasPrefix(key, "PT"):
			n, err := strconv.Atoi(key[2:])
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			v, err := strconv.ParseUint(value, 16, 32)
			if err != nil {
				return fmt.Errorf("snapshot: %s: %w", key, err)
			}
			c.PT.SetPT(n/page.Entries, uint8(n%page.Entries), uint32(v))
		case strings.HasPrefix(key, "IDL"):
			i, v, err := parseIdentField(key[3:], value, 10)
			if err != nil {
				return err
			}
			e := pendingIdent[i]
			e.Level = int(v)
			pendingIdent[i] = e
		case strings.HasPrefix(key, "IDC"):
			i, v, err := parseIdentField(key[3:], value, 16)
			if err != nil {
				return err
			}
			e := pendingIdent[i]
			e.IdentCode = uint16(v)
			pendingIdent[i] = e
		case strings.HasPrefix(key, "IDI"):
			i, v, err := parseIdentField(key[3:], value, 16)
			if err != nil {
				return err
			}
			e := pendingIdent[i]
			e.CallerID = uint16(v)
			pendingIdent[i] = e
		case strings.HasPrefix(key, "MEM-"):
			if err := loadMemBlock(c, key, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("snapshot: unrecognized key %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if len(pendingIdent) > 0 {
		entries := make([]interrupt.IdentEntry, len(pendingIdent))
		for i := range entries {
			entries[i] = pendingIdent[i]
		}
		c.IC.RestoreIdent(entries)
	}
	return nil
}

func globalRegisterSetters(c *execute.CPU) map[string]func(uint16) {
	return map[string]func(uint16){
		"IR":   func(v uint16) { c.IR = v },
		"PGS":  func(v uint16) { c.PGS = int(v) },
		"IIE":  func(v uint16) { c.IIE = v },
		"IID":  func(v uint16) { c.IID = v },
		"CSR":  func(v uint16) { c.CSR = v },
		"CCL":  func(v uint16) { c.CCL = v },
		"LCIL": func(v uint16) { c.LCIL = v },
		"UCIL": func(v uint16) { c.UCIL = v },
		"ALD":  func(v uint16) { c.ALD = v },
		"PES":  func(v uint16) { c.PES = v },
		"PGC":  func(v uint16) { c.PGC = v },
		"PEA":  func(v uint16) { c.PEA = v },
		"PFB":  func(v uint16) { c.PFB = v },
		"PANC": func(v uint16) { c.PANC = v },
		"PANS": func(v uint16) { c.PANS = v },
		"OPR":  func(v uint16) { c.OPR = v },
		"LMP":  func(v uint16) { c.LMP = v },
		"ECCR": func(v uint16) { c.ECCR = v },
		"FEXP": func(v uint16) { c.FExp = v },
	}
}

func loadRegister(c *execute.CPU, key, value string) error {
	rest := key[3:] // "LL.NAME"
	levelStr, name, ok := strings.Cut(rest, ".")
	if !ok {
		return fmt.Errorf("snapshot: malformed register key %q", key)
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", key, err)
	}
	v, err := parseHexWord(value)
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", key, err)
	}
	if name == "PCR" {
		c.Regs.SetPCR(level, v)
		return nil
	}
	for idx, n := range regNames {
		if n == name {
			c.Regs.Set(level, idx, v)
			return nil
		}
	}
	return fmt.Errorf("snapshot: unknown register name %q in key %q", name, key)
}

func parseIdentField(indexStr, value string, base int) (index int, v uint64, err error) {
	index, err = strconv.Atoi(indexStr)
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot: ident index %q: %w", indexStr, err)
	}
	v, err = strconv.ParseUint(value, base, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot: ident value %q: %w", value, err)
	}
	return index, v, nil
}

func loadMemBlock(c *execute.CPU, key, value string) error {
	offset, err := strconv.ParseUint(key[4:], 16, 32)
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", key, err)
	}
	if len(value) != blockWords*2*2 {
		return fmt.Errorf("snapshot: %s: expected %d hex chars, got %d", key, blockWords*2*2, len(value))
	}
	base := uint32(offset) * 2
	for i := 0; i < blockWords*2; i++ {
		b, err := strconv.ParseUint(value[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("snapshot: %s: byte %d: %w", key, i, err)
		}
		c.Mem.WriteByte(base+uint32(i), uint8(b))
	}
	return nil
}

func parseHexWord(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
