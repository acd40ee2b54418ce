/*
 * ND100 - Page table: four shadow page-map sets of 64 entries each.
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

// Package page implements the ND100 four-way page table: four shadow page
// sets of 64 entries, selected by the PGS control register, translating a
// 16-bit virtual word address into a physical one.
package page

// Sets is the number of shadow page-map sets.
const Sets = 4

// Entries is the number of PTEs per set; Words is the page size in words.
const (
	Entries = 64
	Words   = 1024
)

// PTE is one page-table entry. The on-the-wire packing (Pack/Unpack) is a
// 32-bit value: bits 0-9 physical page number, bit 10 valid, bit 11
// writable, bits 12-13 ring/protection, bit 14 accessed, bit 15 dirty,
// bits 16-23 the 8-bit Index field, stored as given. The remaining bits
// are reserved. (Exact ND100 PTE encoding is undocumented in the distilled
// spec; this layout is a deliberate, internally consistent choice — see
// DESIGN.md.)
type PTE struct {
	PhysPage uint16 // physical page number (1K-word pages)
	Valid    bool
	Writable bool
	Ring     uint8 // protection/ring level, 0 = most privileged
	Accessed bool
	Dirty    bool
	Index    uint8 // page-table index field
}

// Pack encodes the PTE into the 32-bit wire form used by SETPT and by
// snapshot PT### records.
func (p PTE) Pack() uint32 {
	v := uint32(p.PhysPage & 0x3ff)
	if p.Valid {
		v |= 1 << 10
	}
	if p.Writable {
		v |= 1 << 11
	}
	v |= uint32(p.Ring&0x3) << 12
	if p.Accessed {
		v |= 1 << 14
	}
	if p.Dirty {
		v |= 1 << 15
	}
	v |= uint32(p.Index) << 16
	return v
}

// Unpack decodes a 32-bit wire value (as written by SETPT, or read back
// from a snapshot) into a PTE.
func Unpack(v uint32) PTE {
	return PTE{
		PhysPage: uint16(v & 0x3ff),
		Valid:    v&(1<<10) != 0,
		Writable: v&(1<<11) != 0,
		Ring:     uint8((v >> 12) & 0x3),
		Accessed: v&(1<<14) != 0,
		Dirty:    v&(1<<15) != 0,
		Index:    uint8(v >> 16),
	}
}

// Fault records why a translation failed, for the executor to report as
// an IIC sub-code on internal-interrupt level 14.
type Fault int

const (
	FaultNone Fault = iota
	FaultPageInvalid
	FaultProtect
)

// Table holds the four shadow page-map sets.
type Table struct {
	sets [Sets][Entries]PTE
}

// New returns an empty (all-invalid) page table.
func New() *Table {
	return &Table{}
}

// Clear invalidates every PTE in every set.
func (t *Table) Clear() {
	for s := range t.sets {
		for i := range t.sets[s] {
			t.sets[s][i] = PTE{}
		}
	}
}

func split(virt uint16) (index uint16, offset uint16) {
	return virt >> 10, virt & (Words - 1)
}

// SetPT writes PTE value at pteIndex (0..Entries-1) in the given set.
// Callable only from the privileged SETPT executor handler.
func (t *Table) SetPT(set int, pteIndex uint8, value uint32) {
	t.sets[set%Sets][pteIndex%Entries] = Unpack(value)
}

// ClearPT invalidates the PTE at pteIndex in the given set. Callable only
// from the privileged CLEPT executor handler.
func (t *Table) ClearPT(set int, pteIndex uint8) {
	t.sets[set%Sets][pteIndex%Entries] = PTE{}
}

// Get returns the raw PTE at pteIndex in the given set, e.g. for snapshot
// serialization.
func (t *Table) Get(set int, pteIndex uint8) PTE {
	return t.sets[set%Sets][pteIndex%Entries]
}

// Translate maps a 16-bit virtual word address through the page set
// selected by pgs. useAPT chooses between the normal set (pgs) and the
// alternate set (pgs^1) used by the STATX family of store instructions
// when useAPT is true. forWrite requests the writable permission check.
//
// Returns the physical word address, the set actually consulted, and a
// Fault (FaultNone on success).
func (t *Table) Translate(pgs int, useAPT bool, forWrite bool, virt uint16) (phys uint16, set int, fault Fault) {
	set = pgs % Sets
	if useAPT {
		set = (pgs ^ 1) % Sets
	}

	index, offset := split(virt)
	pte := t.sets[set][index]

	if !pte.Valid {
		return 0, set, FaultPageInvalid
	}
	if forWrite && !pte.Writable {
		return 0, set, FaultProtect
	}

	t.sets[set][index].Accessed = true
	if forWrite {
		t.sets[set][index].Dirty = true
	}

	phys = pte.PhysPage*Words + offset
	return phys, set, FaultNone
}
