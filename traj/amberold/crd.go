/*
 * crd.go, part of protarea
 *
 * Copyright 2018 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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

// Package amberold reads ASCII Amber trajectories (mdcrd): a title line, and then,
// for each frame, the coordinates in lines of up to 10 fields of 8 characters,
// optionally followed by a line with the box lengths.
package amberold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/protarea/v3"
)

const (
	fieldWidth    = 8
	fieldsPerLine = 10
)

// CrdObj is an ASCII Amber trajectory opened for reading.
type CrdObj struct {
	natoms   int
	readable bool
	filename string
	title    string
	file     io.Closer
	crd      *bufio.Reader
	hasBox   bool
	values   []float64
	line     int
	frame    int
}

// New opens the Amber trajectory filename, which contains natoms atoms per frame.
// Whether the frames carry a box is determined from the first frame.
func New(filename string, natoms int) (*CrdObj, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"New"}, true}
	}
	C, err := newReader(f, filename, natoms)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	C.file = f
	return C, nil
}

// NewReader reads an Amber trajectory with natoms atoms per frame from r.
func NewReader(r io.Reader, natoms int) (*CrdObj, error) {
	C, err := newReader(r, "", natoms)
	if err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	return C, nil
}

func newReader(r io.Reader, name string, natoms int) (*CrdObj, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("Invalid number of atoms: %d", natoms), name, []string{"newReader"}, true}
	}
	//the buffer holds the first frame and the line after it, with room for trailing blanks.
	lines := (3*natoms + fieldsPerLine - 1) / fieldsPerLine
	size := 2 * (lines + 2) * (fieldsPerLine*fieldWidth + 2)
	C := &CrdObj{natoms: natoms, filename: name, crd: bufio.NewReaderSize(r, size), values: make([]float64, 3*natoms)}
	title, err := C.readLine()
	if err != nil {
		return nil, Error{WrongFormat + ": no title line", name, []string{"newReader"}, true}
	}
	C.title = strings.TrimSpace(title)
	C.hasBox = C.detectBox()
	C.readable = true
	return C, nil
}

// detectBox looks at the line after the first frame. The frames carry a box if
// that line has 3 fields and a frame can't start with such a line.
func (C *CrdObj) detectBox() bool {
	if C.natoms == 1 {
		return false
	}
	lines := (3*C.natoms + fieldsPerLine - 1) / fieldsPerLine
	b, _ := C.crd.Peek(C.crd.Size()) //less than Size at the end of the file.
	all := strings.SplitAfter(string(b), "\n")
	if len(all) <= lines || !strings.HasSuffix(all[lines], "\n") {
		return false
	}
	return len(splitFields(all[lines])) == 3
}

// splitFields splits an 8-character-wide line into its trimmed fields.
func splitFields(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	var ret []string
	for i := 0; i < len(line); i += fieldWidth {
		f := strings.TrimSpace(line[i:min(i+fieldWidth, len(line))])
		if f != "" {
			ret = append(ret, f)
		}
	}
	return ret
}

func (C *CrdObj) readLine() (string, error) {
	l, err := C.crd.ReadString('\n')
	if err != nil && (l == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	C.line++
	return l, nil
}

// readValues reads lines until dst is filled.
func (C *CrdObj) readValues(dst []float64) error {
	read := 0
	for read < len(dst) {
		l, err := C.readLine()
		if err != nil {
			return err
		}
		fields := splitFields(l)
		if len(fields) == 0 {
			return fmt.Errorf("empty line %d", C.line)
		}
		if read+len(fields) > len(dst) {
			return fmt.Errorf("line %d has %d fields, %d expected", C.line, len(fields), len(dst)-read)
		}
		for _, f := range fields {
			dst[read], err = strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", C.line, err)
			}
			read++
		}
	}
	return nil
}

// Readable returns true if the object is ready to be read from.
// It doesn't guarantee that there is something to read.
func (C *CrdObj) Readable() bool {
	return C.readable
}

// Len returns the number of atoms per frame.
func (C *CrdObj) Len() int {
	return C.natoms
}

// Title returns the title line of the trajectory.
func (C *CrdObj) Title() string {
	return C.title
}

// HasBox returns true if the frames carry the box lengths.
func (C *CrdObj) HasBox() bool {
	return C.hasBox
}

// Next reads the next frame into keep, or discards it if keep is nil. If the trajectory
// has boxes and box is given, the lengths are set in the diagonal of box[0].
// At the end of the trajectory, it returns an error that satisfies the LastFrameError
// interface, and closes the object.
func (C *CrdObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !C.readable {
		return Error{TrajUnIni, C.filename, []string{"Next"}, true}
	}
	if keep != nil && keep.NVecs() != C.natoms {
		return Error{fmt.Sprintf("%d coordinates expected, matrix has %d", C.natoms, keep.NVecs()), C.filename, []string{"Next"}, true}
	}
	if _, err := C.crd.Peek(1); errors.Is(err, io.EOF) {
		C.Close()
		return newlastFrameError(C.filename, "Next")
	}
	if err := C.readValues(C.values); err != nil {
		return C.frameError(err)
	}
	var cell [3]float64
	if C.hasBox {
		if err := C.readValues(cell[:]); err != nil {
			return C.frameError(err)
		}
	}
	C.frame++
	if keep != nil {
		for i := 0; i < C.natoms; i++ {
			keep.SetVec(i, [3]float64{C.values[3*i], C.values[3*i+1], C.values[3*i+2]})
		}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		clear(box[0])
		box[0][0], box[0][4], box[0][8] = cell[0], cell[1], cell[2]
	}
	return nil
}

func (C *CrdObj) frameError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return Error{fmt.Sprintf("%s %d: %s", ReadError, C.frame, err.Error()), C.filename, []string{"Next"}, true}
}

// Close closes the object, and marks it as unreadable.
func (C *CrdObj) Close() {
	if !C.readable {
		return
	}
	if C.file != nil {
		C.file.Close()
	}
	C.readable = false
}

// Errors

// errDecorate adds caller to the decoration of the error, if it is an amberold Error.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = append(e.deco, caller)
		return e
	}
	return err
}

// Error is the general structure for Crd trajectory errors. It fulfills the TrajError interface.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("Old Amber trajectory file %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Format() string { return "Old Amber" }

func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni    = "Traj object uninitialized to read"
	ReadError    = "Error reading frame"
	UnableToOpen = "Unable to open file"
	WrongFormat  = "Wrong format in the trajectory file or frame"
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

func (E *lastFrameError) Format() string { return "Old Amber" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
