/*
 * ND100 - Floppy disk image file backing store.
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

// Package floppyimage reads and writes ND100 floppy image files
// (spec.md §6): file `floppy.nd100.NN.img`, a linear run of 512-byte
// sectors holding big-endian words, sector index = (cyl+side)*8+sector.
package floppyimage

import (
	"fmt"
	"os"
)

const (
	// SectorBytes is the on-disk size of one sector.
	SectorBytes = 512
	// SectorWords is SectorBytes in 16-bit words.
	SectorWords = SectorBytes / 2
	// SectorsPerTrack matches spec.md §6's (cyl+side)*8 index formula.
	SectorsPerTrack = 8
)

// Image is a file-backed floppy image, read-only or read-write
// depending on how it was opened.
type Image struct {
	f        *os.File
	readOnly bool
}

// Name returns the conventional image file name for disk index n
// (0..9), per spec.md §6.
func Name(n int) string {
	return fmt.Sprintf("floppy.nd100.%02d.img", n)
}

// Open opens path for sector I/O. readOnly must match the config's
// floppy_image_access setting.
func Open(path string, readOnly bool) (*Image, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("floppyimage: open %s: %w", path, err)
	}
	return &Image{f: f, readOnly: readOnly}, nil
}

// Close releases the underlying file.
func (img *Image) Close() error {
	return img.f.Close()
}

// SectorIndex computes the linear sector index for (cyl, side, sector),
// per spec.md §6: index = (cyl+side)*8 + sector.
func SectorIndex(cyl, side, sector int) int {
	return (cyl+side)*SectorsPerTrack + sector
}

// ReadSector fills buf (must be SectorWords long) with the big-endian
// words of sector index.
func (img *Image) ReadSector(index int, buf []uint16) error {
	if len(buf) != SectorWords {
		return fmt.Errorf("floppyimage: buffer must be %d words", SectorWords)
	}
	raw := make([]byte, SectorBytes)
	if _, err := img.f.ReadAt(raw, int64(index)*SectorBytes); err != nil {
		return fmt.Errorf("floppyimage: read sector %d: %w", index, err)
	}
	for i := range buf {
		buf[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return nil
}

// WriteSector writes buf (must be SectorWords long) as big-endian bytes
// to sector index.
func (img *Image) WriteSector(index int, buf []uint16) error {
	if len(buf) != SectorWords {
		return fmt.Errorf("floppyimage: buffer must be %d words", SectorWords)
	}
	if img.readOnly {
		return fmt.Errorf("floppyimage: image is read-only")
	}
	raw := make([]byte, SectorBytes)
	for i, w := range buf {
		raw[2*i] = byte(w >> 8)
		raw[2*i+1] = byte(w)
	}
	if _, err := img.f.WriteAt(raw, int64(index)*SectorBytes); err != nil {
		return fmt.Errorf("floppyimage: write sector %d: %w", index, err)
	}
	return nil
}
