/*
 * ND100 - Host stdin watcher: Ctrl-Y snapshot hotkey.
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

// Package hostconsole watches the host process's own stdin (distinct
// from the telnet-attached guest console in package device/console) for
// the Ctrl-Y hotkey and triggers a CPU state snapshot, per spec.md §6:
// "Ctrl-Y on stdin triggers a CPU state snapshot to cpustate.bin".
package hostconsole

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"

	"nd100/execute"
	"nd100/snapshot"
)

// ctrlY is the ASCII control code for Ctrl-Y (EM, 0x19).
const ctrlY = 0x19

// Watcher drives liner's line-buffered stdin reader the way the
// teacher's command/reader.ConsoleReader does, but has no command
// grammar of its own: every completed line is scanned for an embedded
// Ctrl-Y byte (liner reports most control keys as literal bytes in the
// returned line rather than as a dedicated keybinding callback) and, if
// found, a snapshot is saved. Anything else typed at the host prompt is
// silently discarded — this is an operator hotkey channel, not a shell.
type Watcher struct {
	cpu          *execute.CPU
	snapshotPath string
	line         *liner.State
}

// New returns a Watcher that snapshots cpu to snapshotPath on Ctrl-Y.
func New(cpu *execute.CPU, snapshotPath string) *Watcher {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &Watcher{cpu: cpu, snapshotPath: snapshotPath, line: l}
}

// Run blocks, reading from stdin until EOF or a Ctrl-C abort. Intended
// to run in its own goroutine for the lifetime of the machine.
func (w *Watcher) Run() {
	defer w.line.Close()
	for {
		text, err := w.line.Prompt("")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return
			}
			slog.Error("hostconsole: reading stdin: " + err.Error())
			return
		}
		if containsCtrlY(text) {
			w.saveSnapshot()
		}
	}
}

func containsCtrlY(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ctrlY {
			return true
		}
	}
	return false
}

func (w *Watcher) saveSnapshot() {
	f, err := os.Create(w.snapshotPath)
	if err != nil {
		slog.Error("hostconsole: creating snapshot file: " + err.Error())
		return
	}
	defer f.Close()

	if err := snapshot.Save(f, w.cpu); err != nil {
		slog.Error("hostconsole: saving snapshot: " + err.Error())
		return
	}
	slog.Info("hostconsole: CPU state snapshot written to " + w.snapshotPath)
}

// LoadIfPresent restores cpu from snapshotPath if that file exists,
// implementing spec.md §6's "a snapshot is loadable if that file exists
// at startup". Returns false (with no error) if no snapshot file exists.
func LoadIfPresent(cpu *execute.CPU, snapshotPath string) (loaded bool, err error) {
	f, err := os.Open(snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := snapshot.Load(f, cpu); err != nil {
		return false, err
	}
	return true, nil
}
