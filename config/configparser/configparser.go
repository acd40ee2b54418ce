/*
 * ND100 - Configuration file parser
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

// Package configparser reads the ND100 emulator's flat key/value
// configuration file (spec.md §6): one `key = value` (or `key value`)
// pair per line, '#' starts a comment to end of line, blank lines are
// ignored.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Recognized boot sources.
const (
	BootBP     = "bp"
	BootBPUN   = "bpun"
	BootFloppy = "floppy"
)

// Recognized CPU types.
var cpuTypes = map[string]bool{
	"nd100": true, "nd100ce": true, "nd100cx": true,
	"nd110": true, "nd110ce": true, "nd110cx": true,
}

var bootSources = map[string]bool{BootBP: true, BootBPUN: true, BootFloppy: true}

var floppyAccess = map[string]bool{"ro": true, "rw": true}

// Config holds every key spec.md §6 recognizes. Zero value is a valid
// "nothing configured" starting point (empty cputype, no boot source);
// Parse fills in no defaults.
type Config struct {
	CPUType           string
	Boot              string
	Start             uint16
	Debug             bool
	Trace             uint16
	Disasm            bool
	Panel             bool
	Daemonize         bool
	EmulateMon        bool
	FloppyImage       string
	FloppyImageAccess string
	ScriptConsole     string
}

// LoadFile reads and parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a configuration stream line by line.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	reader := bufio.NewReader(r)
	lineNumber := 0
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		line := &configLine{line: raw}
		if err := line.apply(cfg, lineNumber); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// configLine is a cursor over one line of the config file, in the same
// scan-by-position style as the teacher's optionLine cursor.
type configLine struct {
	line string
	pos  int
}

func (l *configLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *configLine) isEOL() bool {
	return l.pos >= len(l.line) || l.line[l.pos] == '#' || l.line[l.pos] == '\n' || l.line[l.pos] == '\r'
}

// apply parses one line and, if it carries a key=value pair, validates
// and stores it into cfg.
func (l *configLine) apply(cfg *Config, lineNumber int) error {
	l.skipSpace()
	if l.isEOL() {
		return nil
	}

	key := l.takeToken()
	l.skipSpace()
	if !l.isEOL() && l.line[l.pos] == '=' {
		l.pos++
		l.skipSpace()
	}
	value := l.takeValue()

	return setKey(cfg, strings.ToLower(key), value, lineNumber)
}

// takeToken collects a run of letters/digits/underscores (a key name).
func (l *configLine) takeToken() string {
	start := l.pos
	for l.pos < len(l.line) {
		c := rune(l.line[l.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			l.pos++
			continue
		}
		break
	}
	return l.line[start:l.pos]
}

// takeValue collects the rest of the line up to a comment or EOL,
// trimming surrounding whitespace and one layer of double quotes
// (needed for script_console, which carries literal whitespace).
func (l *configLine) takeValue() string {
	start := l.pos
	for l.pos < len(l.line) && l.line[l.pos] != '#' && l.line[l.pos] != '\n' && l.line[l.pos] != '\r' {
		l.pos++
	}
	v := strings.TrimSpace(l.line[start:l.pos])
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return v
}

func setKey(cfg *Config, key, value string, lineNumber int) error {
	switch key {
	case "":
		return nil
	case "cputype":
		if !cpuTypes[strings.ToLower(value)] {
			return fmt.Errorf("configparser: line %d: unknown cputype %q", lineNumber, value)
		}
		cfg.CPUType = strings.ToLower(value)
	case "boot":
		if !bootSources[strings.ToLower(value)] {
			return fmt.Errorf("configparser: line %d: unknown boot source %q", lineNumber, value)
		}
		cfg.Boot = strings.ToLower(value)
	case "start":
		octal := strings.TrimPrefix(strings.TrimPrefix(value, "0o"), "0O")
		v, err := strconv.ParseUint(octal, 8, 16)
		if err != nil {
			return fmt.Errorf("configparser: line %d: start: %w", lineNumber, err)
		}
		cfg.Start = uint16(v)
	case "debug":
		v, err := parseBool(value, lineNumber, key)
		if err != nil {
			return err
		}
		cfg.Debug = v
	case "trace":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("configparser: line %d: trace: %w", lineNumber, err)
		}
		cfg.Trace = uint16(v)
	case "disasm":
		v, err := parseBool(value, lineNumber, key)
		if err != nil {
			return err
		}
		cfg.Disasm = v
	case "panel":
		v, err := parseBool(value, lineNumber, key)
		if err != nil {
			return err
		}
		cfg.Panel = v
	case "daemonize":
		v, err := parseBool(value, lineNumber, key)
		if err != nil {
			return err
		}
		cfg.Daemonize = v
	case "emulatemon":
		v, err := parseBool(value, lineNumber, key)
		if err != nil {
			return err
		}
		cfg.EmulateMon = v
	case "floppy_image":
		cfg.FloppyImage = value
	case "floppy_image_access":
		if !floppyAccess[strings.ToLower(value)] {
			return fmt.Errorf("configparser: line %d: unknown floppy_image_access %q", lineNumber, value)
		}
		cfg.FloppyImageAccess = strings.ToLower(value)
	case "script_console":
		cfg.ScriptConsole = value
	default:
		return fmt.Errorf("configparser: line %d: unrecognized key %q", lineNumber, key)
	}
	return nil
}

func parseBool(value string, lineNumber int, key string) (bool, error) {
	v, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		return false, fmt.Errorf("configparser: line %d: %s: %w", lineNumber, key, err)
	}
	return v != 0, nil
}
