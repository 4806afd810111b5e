/*
 * dcd.go, part of protarea
 *
 * Copyright 2012 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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

// Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories, with the unit cell
// of each frame if present. Files ending in .gz or .lzw are compressed.
package dcd

import (
	"bufio"
	"compress/gzip"
	"compress/lzw"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	v3 "github.com/rmera/protarea/v3"
)

const (
	mAXTITLE    int32 = 80
	lzwOrder          = lzw.MSB
	lzwLitwidth int   = 8
)

// The first record of a DCD file. Icntrl holds, among others, the number of frames (0),
// the number of fixed atoms (8), the time step (9), the unit cell flag (10), the 4th
// dimension flag (11) and the CHARMM version (19). X-PLOR files have a zero version.
type header struct {
	Magic  [4]byte
	Icntrl [20]int32
	End    int32
}

// DCDObj is a CHARMM/NAMD binary trajectory opened for reading.
type DCDObj struct {
	r        io.Reader
	closers  []io.Closer
	natoms   int32
	nset     int32
	readable bool
	filename string
	unitcell bool //each frame starts with the unit cell
	fourdim  bool
	endian   binary.ByteOrder
	fields   [3][]float32
	cell     [6]float64
	frame    int
}

// compression returns the compression implied by the extension of name: "gz", "lzw" or "".
func compression(name string) string {
	l := strings.ToLower(name)
	switch {
	case strings.HasSuffix(l, ".gz"):
		return "gz"
	case strings.HasSuffix(l, ".lzw"):
		return "lzw"
	}
	return ""
}

// New opens the DCD file filename for reading.
// It supports big and little endianness, CHARMM, NAMD and X-PLOR files, but no
// fixed atoms.
func New(filename string) (*DCDObj, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"New"}, true}
	}
	var src io.Reader = bufio.NewReader(f)
	closers := []io.Closer{f}
	switch compression(filename) {
	case "gz":
		gz, err := gzip.NewReader(src)
		if err != nil {
			f.Close()
			return nil, Error{err.Error(), filename, []string{"gzip.NewReader", "New"}, true}
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	case "lzw":
		lz := lzw.NewReader(src, lzwOrder, lzwLitwidth)
		src = lz
		closers = append([]io.Closer{lz}, closers...)
	}
	D, err := newReader(src, filename)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, errDecorate(err, "New")
	}
	D.closers = closers
	return D, nil
}

// NewReader reads an uncompressed DCD trajectory from r. Closing the DCDObj doesn't close r.
func NewReader(r io.Reader) (*DCDObj, error) {
	D, err := newReader(bufio.NewReader(r), "")
	return D, errDecorate(err, "NewReader")
}

func newReader(r io.Reader, name string) (*DCDObj, error) {
	D := &DCDObj{r: r, filename: name}
	if err := D.initRead(); err != nil {
		return nil, err
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *DCDObj) initRead() error {
	wrap := func(err error) error {
		return Error{fmt.Sprintf("%s: %s", WrongFormat, err.Error()), D.filename, []string{"initRead"}, true}
	}
	//The first record has 84 bytes, which tells us the endianness.
	var first [4]byte
	if _, err := io.ReadFull(D.r, first[:]); err != nil {
		return wrap(err)
	}
	switch {
	case binary.LittleEndian.Uint32(first[:]) == 84:
		D.endian = binary.LittleEndian
	case binary.BigEndian.Uint32(first[:]) == 84:
		D.endian = binary.BigEndian
	default:
		return Error{WrongFormat + ": not a DCD file", D.filename, []string{"initRead"}, true}
	}
	var h header
	if err := binary.Read(D.r, D.endian, &h); err != nil {
		return wrap(err)
	}
	if string(h.Magic[:]) != "CORD" || h.End != 84 {
		return Error{WrongFormat + ": wrong magic number", D.filename, []string{"initRead"}, true}
	}
	D.nset = h.Icntrl[0]
	if h.Icntrl[8] != 0 {
		return Error{"Fixed atoms not supported", D.filename, []string{"initRead"}, true}
	}
	//X-plor sets the version to zero, and has none of these flags.
	if h.Icntrl[19] != 0 {
		D.unitcell = h.Icntrl[10] != 0
		D.fourdim = h.Icntrl[11] != 0
	}
	//the title record
	var size, ntitle int32
	if err := binary.Read(D.r, D.endian, &size); err != nil {
		return wrap(err)
	}
	if err := binary.Read(D.r, D.endian, &ntitle); err != nil {
		return wrap(err)
	}
	if ntitle < 0 || size != 4+ntitle*mAXTITLE {
		return Error{WrongFormat + ": bad title record", D.filename, []string{"initRead"}, true}
	}
	if _, err := io.CopyN(io.Discard, D.r, int64(ntitle*mAXTITLE)); err != nil {
		return wrap(err)
	}
	var natoms [4]int32 //end of the title record, then 4, natoms, 4
	if err := binary.Read(D.r, D.endian, &natoms); err != nil {
		return wrap(err)
	}
	if natoms[0] != size || natoms[1] != 4 || natoms[3] != 4 || natoms[2] <= 0 {
		return Error{WrongFormat + ": bad atom number record", D.filename, []string{"initRead"}, true}
	}
	D.natoms = natoms[2]
	return nil
}

// Readable returns true if the object is ready to be read from.
// It doesn't guarantee that there is something to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames declared in the header. Some programs leave it as zero.
func (D *DCDObj) Frames() int {
	return int(D.nset)
}

// Next reads the next frame into keep, unless keep is nil, in which case the
// frame is read and discarded. If the frame has a unit cell and box is given, the
// box lengths are put in the diagonal of box[0] (angles are not used).
// At the end of the trajectory, it returns an error that satisfies the LastFrameError
// interface, and closes the object.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIniRead, D.filename, []string{"Next"}, true}
	}
	if keep != nil && keep.NVecs() != int(D.natoms) {
		return Error{fmt.Sprintf("%d coordinates expected, matrix has %d", D.natoms, keep.NVecs()), D.filename, []string{"Next"}, true}
	}
	var blocksize int32
	if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
		if errors.Is(err, io.EOF) {
			D.Close()
			return newlastFrameError(D.filename, "Next")
		}
		return D.frameError(err)
	}
	if D.unitcell {
		if blocksize != 48 {
			return D.frameError(fmt.Errorf("unit cell block of %d bytes", blocksize))
		}
		if err := D.readBlock(48, &D.cell); err != nil {
			return D.frameError(err)
		}
		blocksize = 0
	}
	for i := range D.fields {
		if blocksize == 0 {
			if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
				return D.frameError(err)
			}
		}
		if blocksize != 4*D.natoms {
			return D.frameError(fmt.Errorf("coordinate block of %d bytes for %d atoms", blocksize, D.natoms))
		}
		if err := D.readBlock(blocksize, D.fields[i]); err != nil {
			return D.frameError(err)
		}
		blocksize = 0
	}
	if D.fourdim {
		if err := binary.Read(D.r, D.endian, &blocksize); err != nil {
			return D.frameError(err)
		}
		if err := D.readBlock(blocksize, nil); err != nil {
			return D.frameError(err)
		}
	}
	D.frame++
	if keep != nil {
		for i := 0; i < int(D.natoms); i++ {
			keep.SetVec(i, [3]float64{float64(D.fields[0][i]), float64(D.fields[1][i]), float64(D.fields[2][i])})
		}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		clear(box[0])
		if D.unitcell {
			//CHARMM order: A, gamma, B, beta, alpha, C
			box[0][0], box[0][4], box[0][8] = D.cell[0], D.cell[2], D.cell[5]
		}
	}
	return nil
}

// readBlock reads the contents of a record of blocksize bytes into data, and the
// size mark that closes the record. If data is nil, the contents are discarded.
func (D *DCDObj) readBlock(blocksize int32, data any) error {
	if blocksize < 0 {
		return fmt.Errorf("negative block size")
	}
	if data == nil {
		if _, err := io.CopyN(io.Discard, D.r, int64(blocksize)); err != nil {
			return err
		}
	} else if err := binary.Read(D.r, D.endian, data); err != nil {
		return err
	}
	var check int32
	if err := binary.Read(D.r, D.endian, &check); err != nil {
		return err
	}
	if check != blocksize {
		return fmt.Errorf("%s: block of %d bytes closed as %d", SecurityCheckFailed, blocksize, check)
	}
	return nil
}

func (D *DCDObj) frameError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return Error{fmt.Sprintf("%s %d: %s", ReadError, D.frame, err.Error()), D.filename, []string{"Next"}, true}
}

// Close closes the object, and marks it as unreadable
func (D *DCDObj) Close() {
	if !D.readable {
		return
	}
	for _, c := range D.closers {
		c.Close()
	}
	D.readable = false
}

// Errors

// errDecorate adds caller to the decoration of the error, if it is a dcd Error.
// nil errors are returned as such.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = append(e.deco, caller)
		return e
	}
	return err
}

// Error is the general structure for DCD trajectory errors. It fulfills the TrajError interface.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return "dcd" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead       = "Traj object uninitialized to read"
	TrajUnIniWrite      = "Traj object uninitialized to write"
	ReadError           = "Error reading frame"
	UnableToOpen        = "Unable to open file"
	SecurityCheckFailed = "Failed Security Check"
	WrongFormat         = "Wrong format in the DCD file or frame"
)

// lastFrameError marks the normal end of the trajectory.
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "dcd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}

// float32 bits of the time step, as stored in the header.
func deltaBits(delta float32) int32 {
	return int32(math.Float32bits(delta))
}
