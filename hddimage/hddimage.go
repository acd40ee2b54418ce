/*
 * ND100 - Hard disk image file backing store.
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

// Package hddimage reads and writes the ND100 hard-disk image file
// `hdd.img` (spec.md §6): geometry 823 cylinders x 5 surfaces x 18
// sectors x 1024 bytes, logical byte offset = ((track*5+surface)*18+
// sector)*1024. spec.md §9 notes a second "75MB" geometry variant is
// selected by source #define rather than config and its exact numbers
// are an open question; only the documented 823/5/18/1024 geometry is
// implemented here.
package hddimage

import (
	"fmt"
	"os"
)

const (
	Cylinders     = 823
	Surfaces      = 5
	SectorsPerTrk = 18
	SectorBytes   = 1024
	SectorWords   = SectorBytes / 2
)

// Image is a file-backed HDD image.
type Image struct {
	f        *os.File
	readOnly bool
}

// Name is the conventional HDD image file name.
const Name = "hdd.img"

// Open opens path for sector I/O.
func Open(path string, readOnly bool) (*Image, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("hddimage: open %s: %w", path, err)
	}
	return &Image{f: f, readOnly: readOnly}, nil
}

func (img *Image) Close() error {
	return img.f.Close()
}

// Offset computes the logical byte offset for (track, surface, sector),
// per spec.md §6's formula.
func Offset(track, surface, sector int) int64 {
	return int64(((track*Surfaces+surface)*SectorsPerTrk+sector) * SectorBytes)
}

func (img *Image) ReadSector(track, surface, sector int, buf []uint16) error {
	if len(buf) != SectorWords {
		return fmt.Errorf("hddimage: buffer must be %d words", SectorWords)
	}
	raw := make([]byte, SectorBytes)
	if _, err := img.f.ReadAt(raw, Offset(track, surface, sector)); err != nil {
		return fmt.Errorf("hddimage: read %d/%d/%d: %w", track, surface, sector, err)
	}
	for i := range buf {
		buf[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return nil
}

func (img *Image) WriteSector(track, surface, sector int, buf []uint16) error {
	if len(buf) != SectorWords {
		return fmt.Errorf("hddimage: buffer must be %d words", SectorWords)
	}
	if img.readOnly {
		return fmt.Errorf("hddimage: image is read-only")
	}
	raw := make([]byte, SectorBytes)
	for i, w := range buf {
		raw[2*i] = byte(w >> 8)
		raw[2*i+1] = byte(w)
	}
	if _, err := img.f.WriteAt(raw, Offset(track, surface, sector)); err != nil {
		return fmt.Errorf("hddimage: write %d/%d/%d: %w", track, surface, sector, err)
	}
	return nil
}
