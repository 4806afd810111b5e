/*
 * dcd_write.go, part of protarea
 *
 * Copyright 2020 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package dcd

import (
	"bufio"
	"compress/gzip"
	"compress/lzw"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	v3 "github.com/rmera/protarea/v3"
)

const charmmVersion int32 = 24

// DCDWObj is a DCD trajectory opened for writing. Every frame carries a unit cell.
type DCDWObj struct {
	w        *bufio.Writer
	closers  []io.Closer
	file     *os.File //non-nil only if the frame count can be patched at the end.
	natoms   int32
	nset     int32
	writable bool
	filename string
	endian   binary.ByteOrder
	buffer   []float32
}

// NewWriter creates the file name and prepares it to write a DCD trajectory of natoms atoms.
// If name ends in .gz or .lzw the trajectory is compressed, and the frame count in its
// header stays at zero.
func NewWriter(name string, natoms int) (*DCDWObj, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	var dest io.Writer = f
	D := &DCDWObj{filename: name, closers: []io.Closer{f}}
	switch compression(name) {
	case "gz":
		gz := gzip.NewWriter(f)
		dest = gz
		D.closers = append([]io.Closer{gz}, D.closers...)
	case "lzw":
		lz := lzw.NewWriter(f, lzwOrder, lzwLitwidth)
		dest = lz
		D.closers = append([]io.Closer{lz}, D.closers...)
	default:
		D.file = f
	}
	if err := D.init(dest, natoms, binary.LittleEndian); err != nil {
		for _, c := range D.closers {
			c.Close()
		}
		return nil, errDecorate(err, "NewWriter")
	}
	return D, nil
}

// NewStreamWriter prepares w to receive a little-endian DCD trajectory of natoms atoms.
// The frame count in the header is left as zero. Closing the DCDWObj doesn't close w.
func NewStreamWriter(w io.Writer, natoms int) (*DCDWObj, error) {
	D := new(DCDWObj)
	if err := D.init(w, natoms, binary.LittleEndian); err != nil {
		return nil, errDecorate(err, "NewStreamWriter")
	}
	return D, nil
}

func (D *DCDWObj) init(w io.Writer, natoms int, endian binary.ByteOrder) error {
	if natoms <= 0 {
		return Error{fmt.Sprintf("Invalid number of atoms: %d", natoms), D.filename, []string{"init"}, true}
	}
	D.w = bufio.NewWriter(w)
	D.natoms = int32(natoms)
	D.endian = endian
	D.buffer = make([]float32, natoms)
	h := header{End: 84}
	copy(h.Magic[:], "CORD")
	h.Icntrl[1] = 1 //first step
	h.Icntrl[2] = 1 //steps between frames
	h.Icntrl[9] = deltaBits(1)
	h.Icntrl[10] = 1
	h.Icntrl[19] = charmmVersion
	title := make([]byte, 2*mAXTITLE)
	copy(title, "REMARKS written by protarea")
	copy(title[mAXTITLE:], "REMARKS unit cell in every frame")
	recs := []any{
		int32(84), h,
		int32(4 + 2*mAXTITLE), int32(2), title, int32(4 + 2*mAXTITLE),
		int32(4), D.natoms, int32(4),
	}
	for _, r := range recs {
		if err := binary.Write(D.w, D.endian, r); err != nil {
			return Error{err.Error(), D.filename, []string{"init"}, true}
		}
	}
	D.writable = true
	return nil
}

// WNext writes coords as the next frame. If box is given, the diagonal of box[0] is
// written as an orthorhombic unit cell; otherwise the cell is zero.
func (D *DCDWObj) WNext(coords *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if coords.NVecs() != int(D.natoms) {
		return Error{fmt.Sprintf("%d coordinates expected, got %d", D.natoms, coords.NVecs()), D.filename, []string{"WNext"}, true}
	}
	var cell [6]float64
	if len(box) > 0 && len(box[0]) >= 9 {
		//CHARMM order: A, gamma, B, beta, alpha, C
		cell = [6]float64{box[0][0], 90, box[0][4], 90, 90, box[0][8]}
	}
	if err := D.writeBlock(cell); err != nil {
		return err
	}
	for j := 0; j < 3; j++ {
		for i := range D.buffer {
			D.buffer[i] = float32(coords.At(i, j))
		}
		if err := D.writeBlock(D.buffer); err != nil {
			return err
		}
	}
	D.nset++
	return nil
}

// writeBlock writes data as a Fortran record, with its size before and after it.
func (D *DCDWObj) writeBlock(data any) error {
	size := int32(binary.Size(data))
	for _, v := range []any{size, data, size} {
		if err := binary.Write(D.w, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"writeBlock", "WNext"}, true}
		}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// Close flushes the trajectory and, when writing to an uncompressed file, sets the
// frame count in the header. The object can't be used afterwards.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	err := D.w.Flush()
	if err == nil && D.file != nil {
		err = D.updateFrames()
	}
	for _, c := range D.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

// updateFrames writes the number of frames into the header, after the first record
// mark and the magic number.
func (D *DCDWObj) updateFrames() error {
	b := make([]byte, 4)
	D.endian.PutUint32(b, uint32(D.nset))
	_, err := D.file.WriteAt(b, 8)
	return err
}
