/*
 * ND100 - Hard disk controller (DMA transfer to/from MemoryStore).
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

// Package hdd implements the ND100 hard-disk controller (spec.md §4.8):
// unlike the floppy controller (transferred word-by-word through IOX),
// the HDD moves a whole sector directly to/from MemoryStore, the DMA
// style spec.md's "memory-address loaded in two halves" language
// describes.
package hdd

import (
	"nd100/hddimage"
	"nd100/memory"
)

// Base is the first IOX address of the HDD's 8-address range (octal 1540).
const Base uint16 = 01540

// Register offsets relative to Base. spec.md §4.8 says the word count
// and memory address are each "loaded in two halves": since this
// project's MemoryStore tops out at 2^16 words (spec.md §3), a single
// 16-bit register carries each value without needing two halves — a
// simplification from the two-half wire protocol, recorded here and in
// DESIGN.md.
const (
	regRSR1    = 0 // read: status 1 (busy/complete/error)
	regWCMD    = 1 // write: opcode (bits 0-3) + CWR alias bit (bit 15)
	regRSR2    = 2 // read: status 2 (timeout/hardware/address-mismatch/compare/dma/abnormal/unit)
	regWWC     = 3 // write: word count for the transfer
	regUnused4 = 4
	regWADDR   = 5 // write: starting memory word address
	regUnused6 = 6
	regWCHS    = 7 // write: track(bits 8-15)/surface(bits 5-7)/sector(bits 0-4)
)

// Opcodes (spec.md §4.8's partial list; "etc." left unimplemented here).
const (
	OpReadTransfer  = 0
	OpWriteTransfer = 1
	OpInitiateSeek  = 4
	OpReturnToZero  = 7
)

const (
	sr1Busy     = 1 << 0
	sr1Complete = 1 << 1
	sr1Error    = 1 << 2
)

const (
	sr2Timeout         = 1 << 0
	sr2Hardware        = 1 << 1
	sr2AddressMismatch = 1 << 2
	sr2Compare         = 1 << 3
	sr2DMA             = 1 << 4
	sr2Abnormal        = 1 << 5
	sr2Unit            = 1 << 6
)

// Device is the HDD controller.
type Device struct {
	img *hddimage.Image
	mem *memory.Store

	wordCount  int
	memAddr    uint16
	track      int
	surface    int
	sector     int
	cwrAlias   bool

	sr1, sr2 uint16
	irqEn    bool

	// Raise posts interrupt level 11, ident 017, wired by package machine.
	Raise func(level int, identCode uint16)
}

// New returns an HDD controller transferring against mem, backed by img
// (nil models an empty/offline drive).
func New(mem *memory.Store, img *hddimage.Image) *Device {
	return &Device{mem: mem, img: img}
}

func (d *Device) IOXRead(addr uint16) uint16 {
	switch addr - Base {
	case regRSR1:
		return d.sr1
	case regRSR2:
		return d.sr2
	default:
		return 0
	}
}

func (d *Device) IOXWrite(addr uint16, value uint16) {
	switch addr - Base {
	case regWCMD:
		d.cwrAlias = value&(1<<15) != 0
		d.irqEn = value&(1<<14) != 0
		d.runCommand(int(value & 0xf))
	case regWWC:
		d.wordCount = int(value)
	case regWADDR:
		d.memAddr = value
	case regWCHS:
		d.track = int((value >> 8) & 0xff)
		d.surface = int((value >> 5) & 0x7)
		d.sector = int(value & 0x1f)
	}
}

// runCommand executes opcode synchronously: the DMA transfer is bounded
// by wordCount (at most one sector, per spec.md §6's 1024-byte/512-word
// HDD sector) and so completes promptly enough not to need its own
// worker goroutine in this implementation.
func (d *Device) runCommand(opcode int) {
	d.sr1 = sr1Busy
	d.sr2 = 0

	if d.img == nil {
		d.sr1 = sr1Error
		d.sr2 = sr2Hardware
		d.postComplete()
		return
	}

	count := d.wordCount
	if count > hddimage.SectorWords {
		count = hddimage.SectorWords
	}

	var err error
	switch opcode {
	case OpReadTransfer:
		buf := make([]uint16, hddimage.SectorWords)
		err = d.img.ReadSector(d.track, d.surface, d.sector, buf)
		if err == nil {
			for i := 0; i < count; i++ {
				d.mem.WriteWord(d.memAddr+uint16(i), buf[i], memory.SelectWord)
			}
		}
	case OpWriteTransfer:
		buf := make([]uint16, hddimage.SectorWords)
		for i := 0; i < count; i++ {
			buf[i] = d.mem.ReadWord(d.memAddr + uint16(i))
		}
		err = d.img.WriteSector(d.track, d.surface, d.sector, buf)
	case OpInitiateSeek:
		// track/surface/sector already loaded via WCHS; nothing further
		// to simulate.
	case OpReturnToZero:
		d.track, d.surface, d.sector = 0, 0, 0
	}

	if err != nil {
		d.sr1 = sr1Error
		d.sr2 = sr2DMA
	} else {
		d.sr1 = sr1Complete
	}
	d.postComplete()
}

func (d *Device) postComplete() {
	d.sr1 &^= sr1Busy
	if d.irqEn && d.Raise != nil {
		d.Raise(11, 017)
	}
}
