/*
 * ND100 - Instruction decoder and effective-address computation.
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

// Package decode implements opcode extraction and effective-address
// computation for the ND100 instruction set.
//
// spec.md §9's Design Notes explicitly license replacing the historical
// 64K-entry function-pointer table with "a two-level decoder (top-5-bit
// primary dispatch to a family, then family-specific inner decode)". This
// package is that two-level decoder: the top 5 bits of the instruction
// word select a Family; memory-reference families carry their own 3-bit
// sub-opcode, X/I/B bits and 8-bit displacement in the low 11 bits, while
// the four families reserved for "extended" instructions (register ops,
// shifts, skips, BOPS, byte ops, IO, MON, privileged, EXR) sub-decode
// their own low 11 bits independently. The exact bit assignment is this
// project's own — the distilled spec does not fix one — but is fixed and
// documented here so every instruction decodes deterministically.
package decode

// Family identifies the outer 5-bit dispatch group of an instruction.
type Family uint8

const (
	FamLDA Family = iota
	FamLDT
	FamLDX
	FamLDD
	FamLDF
	FamSTA
	FamSTT
	FamSTX
	FamSTZ
	FamSTD
	FamSTF
	FamADD
	FamSUB
	FamMIN
	FamAND
	FamORA
	FamLBYT
	FamSBYT
	FamJAP
	FamJAN
	FamJAZ
	FamJAF
	FamJPC
	FamJNC
	FamJXZ
	FamJXN
	FamJPL
	famMemRefCount // 27 memory-reference families, values 0..26

	FamExtE Family = 27 // floating point (FAD/FSB/FMU/FDV) — the one spare top-level code
	FamExtA Family = 28 // register ops / shift / skip / bops
	FamExtB Family = 29 // byte ops (MOVB/MOVBF/BFILL) / IOX / IOXT
	FamExtC Family = 30 // MON / EXR
	FamExtD Family = 31 // privileged (SETPT/CLEPT/TRA/TRR/MCL/MST/WAIT/IDENT)
)

// IsMemRef reports whether fam is one of the 27 memory-reference families
// (i.e. carries a B/X/I/displacement effective address).
func (f Family) IsMemRef() bool {
	return f < famMemRefCount
}

// Sub identifies the inner operation within an extended family.
type Sub uint8

const (
	// FamExtA sub-groups, selected by bits 10-8 of the instruction.
	SubRegOp Sub = iota
	SubNewRegOp
	SubShift
	SubSkip
	SubBops

	// FamExtB sub-groups.
	SubMovb
	SubMovbf
	SubBfill
	SubIOX
	SubIOXT

	// FamExtC sub-groups.
	SubMon
	SubExr

	// FamExtD sub-groups.
	SubSetpt
	SubClept
	SubTra
	SubTrr
	SubMcl
	SubMst
	SubWait
	SubIdent

	// FamExtE sub-groups, selected by bits 10-8 like the other extended
	// families.
	SubFad
	SubFsb
	SubFmu
	SubFdv
)

// Instruction is the fully decoded form of one 16-bit instruction word.
type Instruction struct {
	Raw    uint16
	Family Family
	Sub    Sub

	// Memory-reference fields.
	Indirect bool
	XBit     bool
	BBit     bool
	Disp     int8 // sign-extended 8-bit displacement

	// Extended-instruction fields (meaning depends on Sub).
	Reg1 int    // primary register index (0..7) or mask
	Reg2 int    // secondary register index
	Arg  int    // generic small immediate/sub-opcode/condition/bit-index field
	Arg2 int    // secondary generic field (e.g. shift count, byte select)
	Addr uint16 // IOX immediate address / MON number / EXR register value carrier
}

// Decode extracts the Family/Sub and raw bit fields from a 16-bit
// instruction word. It performs no memory access; EA resolution is a
// separate step (see Effective).
func Decode(word uint16) Instruction {
	fam := Family(word >> 11)
	ins := Instruction{Raw: word, Family: fam}

	if fam.IsMemRef() {
		ins.Indirect = word&(1<<10) != 0
		ins.XBit = word&(1<<9) != 0
		ins.BBit = word&(1<<8) != 0
		ins.Disp = int8(word & 0xff)
		return ins
	}

	group := (word >> 8) & 0x7 // bits 10-8
	low := word & 0xff         // bits 7-0

	switch fam {
	case FamExtA:
		switch group {
		case 0:
			ins.Sub = SubRegOp
		case 1:
			ins.Sub = SubNewRegOp
		case 2:
			ins.Sub = SubShift
		case 3:
			ins.Sub = SubSkip
		default:
			ins.Sub = SubBops
		}
	case FamExtB:
		switch group {
		case 0:
			ins.Sub = SubMovb
		case 1:
			ins.Sub = SubMovbf
		case 2:
			ins.Sub = SubBfill
		case 3:
			ins.Sub = SubIOX
		default:
			ins.Sub = SubIOXT
		}
	case FamExtC:
		if group == 0 {
			ins.Sub = SubMon
		} else {
			ins.Sub = SubExr
		}
	case FamExtD:
		switch group {
		case 0:
			ins.Sub = SubSetpt
		case 1:
			ins.Sub = SubClept
		case 2:
			ins.Sub = SubTra
		case 3:
			ins.Sub = SubTrr
		case 4:
			ins.Sub = SubMcl
		case 5:
			ins.Sub = SubMst
		case 6:
			ins.Sub = SubWait
		default:
			ins.Sub = SubIdent
		}
	case FamExtE:
		switch group {
		case 0:
			ins.Sub = SubFad
		case 1:
			ins.Sub = SubFsb
		case 2:
			ins.Sub = SubFmu
		default:
			ins.Sub = SubFdv
		}
	}

	ins.Reg1 = int((low >> 5) & 0x7)
	ins.Reg2 = int((low >> 2) & 0x7)
	ins.Arg = int(low & 0x1f)
	ins.Arg2 = int(low & 0x3)
	ins.Addr = low
	return ins
}

// EA is a resolved effective address.
type EA struct {
	Addr   uint16
	UseAPT bool // set for the STATX family of stores needing the alternate page table
}

// Effective computes the virtual effective address for a memory-reference
// instruction, per spec.md §4.4:
//   - base displacement is an 8-bit signed value, scaled by scale (1 for
//     word ops, 2 for LBYT/SBYT byte ops)
//   - B/X bits select P-relative, B-relative, X-indexed, or B+X addressing
//   - the indirect bit, when set, reads the word at the first-level EA
//     (computed from P or B plus displacement, without X) and, when the X
//     bit is also set, adds X to that word (post-indirect indexing)
//
// readWord is used only when ins.Indirect is set, to fetch the first-level
// indirect word; it must already account for paging.
func Effective(ins Instruction, p, b, x uint16, scale int, readWord func(addr uint16) uint16) EA {
	disp := int32(ins.Disp) * int32(scale)

	// With the indirect bit set, X is applied after the indirection only.
	preX := ins.XBit && !ins.Indirect

	var base uint16
	switch {
	case !ins.BBit && !preX:
		base = p // P-relative
	case ins.BBit && !preX:
		base = b // B-relative
	case !ins.BBit && preX:
		base = x // X-indexed
	default:
		base = b + x // B+X
	}

	addr := uint16(int32(base) + disp)

	if !ins.Indirect {
		return EA{Addr: addr}
	}

	first := readWord(addr)
	final := first
	if ins.XBit {
		final += x
	}
	return EA{Addr: final}
}
