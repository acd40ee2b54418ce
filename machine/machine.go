/*
 * ND100 - Machine: owns the CPU and its device workers, runs the loop.
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

// Package machine is spec.md §9's "Machine" redesign target: a value that
// owns Memory/PageTable/RegisterFile/InterruptController/IODispatch (all
// reached through the embedded *execute.CPU) plus the device workers
// (console, rtc, floppy, hdd), and runs the CPU loop. It replaces the
// package-level globals the original source used, per spec.md §9's
// explicit redesign flag.
package machine

import (
	"log/slog"
	"sync"
	"time"

	"nd100/device/console"
	"nd100/device/floppy"
	"nd100/device/hdd"
	"nd100/device/rtc"
	"nd100/execute"
	"nd100/floppyimage"
	"nd100/hddimage"
	"nd100/memory"
)

// IOX address ranges, per spec.md §4.8.
const (
	consoleBase  = console.Base
	consoleCount = 8
	rtcBase      = rtc.Base
	rtcCount     = 4
	floppyBase   = floppy.Base
	floppyCount  = 8
	hddBase      = hdd.Base
	hddCount     = 8
)

// Side-channel host-time words (octal 0125..0132), spec.md §6.
const (
	timeWordFirst uint16 = 0125
	timeWordCount        = 6
)

// Machine is the top-level value the CLI (package main) constructs, runs
// and tears down; it owns everything the CPU loop touches.
type Machine struct {
	CPU *execute.CPU

	Console *console.Device
	RTC     *rtc.Device
	Floppy  *floppy.Device
	HDD     *hdd.Device

	wg   sync.WaitGroup
	done chan struct{}

	running bool
}

// New constructs a Machine with every device wired into the CPU's
// IODispatch table and every device's Raise hook wired into the shared
// InterruptController — the single synchronization point spec.md §5
// names as the "interrupt mutex".
func New() *Machine {
	cpu := execute.New()

	m := &Machine{
		CPU:     cpu,
		Console: console.New(),
		RTC:     rtc.New(),
		Floppy:  floppy.New(nil),
		HDD:     hdd.New(cpu.Mem, nil),
	}

	m.Console.Raise = m.raise
	m.RTC.Raise = m.raise
	m.Floppy.Raise = m.raise
	m.HDD.Raise = m.raise

	cpu.IO.Register(consoleBase, consoleCount, m.Console)
	cpu.IO.Register(rtcBase, rtcCount, m.RTC)
	cpu.IO.Register(floppyBase, floppyCount, m.Floppy)
	cpu.IO.Register(hddBase, hddCount, m.HDD)

	return m
}

// raise posts a device interrupt: it enqueues the IDENT entry and then
// sets the PID bit, each under the controller's mutex, so the CPU never
// sees the PID bit before its IDENT entry is queued, matching spec.md
// §5's rule that device workers are the sole producers of PID bits and
// IDENT-chain entries for their levels.
func (m *Machine) raise(level int, identCode uint16) {
	m.CPU.IC.EnqueueIdent(level, identCode, 0)
	m.CPU.IC.Raise(level, identCode)
}

// AttachFloppy mounts a floppy image for IOX access, read-only or
// read-write per spec.md §6's floppy_image_access option.
func (m *Machine) AttachFloppy(path string, readOnly bool) error {
	img, err := floppyimage.Open(path, readOnly)
	if err != nil {
		return err
	}
	m.Floppy = floppy.New(img)
	m.Floppy.Raise = m.raise
	m.CPU.IO.Register(floppyBase, floppyCount, m.Floppy)
	return nil
}

// AttachHDD mounts the hard-disk image backing DMA transfers.
func (m *Machine) AttachHDD(path string, readOnly bool) error {
	img, err := hddimage.Open(path, readOnly)
	if err != nil {
		return err
	}
	m.HDD = hdd.New(m.CPU.Mem, img)
	m.HDD.Raise = m.raise
	m.CPU.IO.Register(hddBase, hddCount, m.HDD)
	return nil
}

// Start launches the device worker goroutines and the CPU loop, per
// spec.md §5's "single CPU thread and one worker thread per asynchronous
// device". Stop must be called once to shut everything down.
func (m *Machine) Start() {
	m.done = make(chan struct{})
	m.CPU.WaitCancel = m.done
	m.RTC.Start()

	m.wg.Add(1)
	m.running = true
	go m.run()
}

// Stop requests cooperative shutdown (spec.md §5: "a global run-mode
// variable is set to SHUTDOWN; all threads poll it at every blocking
// boundary and exit") and waits for the CPU loop and device workers to
// exit.
func (m *Machine) Stop() {
	close(m.done)
	m.wg.Wait()
	m.RTC.Stop()
}

// Resume takes the CPU out of STOP state (host LOAD button).
func (m *Machine) Resume() {
	m.CPU.Resume()
	m.running = true
}

// Halt puts the CPU loop into an idle spin without tearing down workers.
func (m *Machine) Halt() {
	m.running = false
}

// run is the CPU thread: fetch/decode/execute one instruction, then
// check_and_switch, per spec.md §5's ordering guarantee that "the CPU
// thread must perform check_and_switch() between every pair of
// instructions". It polls done at the top of every iteration, the
// blocking boundary spec.md §5 requires for cooperative shutdown.
func (m *Machine) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			slog.Info("machine: CPU thread shutting down")
			return
		default:
		}

		if !m.running || m.CPU.Stopped {
			time.Sleep(time.Millisecond)
			continue
		}

		m.CPU.Step()
		m.CPU.CheckAndSwitch()
	}
}

// UpdateHostTime writes the current host time into words [0125..0132]
// (octal), spec.md §6's memory-mapped side channel: seconds, minutes,
// hours, day, month (1-indexed), year (4-digit).
func (m *Machine) UpdateHostTime(now time.Time) {
	words := [timeWordCount]uint16{
		uint16(now.Second()),
		uint16(now.Minute()),
		uint16(now.Hour()),
		uint16(now.Day()),
		uint16(now.Month()),
		uint16(now.Year()),
	}
	for i, w := range words {
		m.CPU.Mem.WriteWord(timeWordFirst+uint16(i), w, memory.SelectWord)
	}
}
