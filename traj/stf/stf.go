/*
 * stf.go, part of protarea.
 *
 *
 * Copyright 2026 The protarea authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/protarea/v3"
)

const (
	lzwLitwidth int = 8
	//DefaultPrec is the number of decimal places kept for the coordinates if the header doesn't say.
	DefaultPrec int = 2
)

// Compression method for the stream. The file-based functions pick it from the last
// letter of the file extension: l for LZW, z for gzip, r for raw DEFLATE and
// anything else for zstd.
type Compression byte

const (
	Zstd Compression = iota
	Gzip
	Flate
	LZW
)

// CompressionFor returns the Compression that corresponds to the file name.
func CompressionFor(name string) Compression {
	if name == "" {
		return Zstd
	}
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return LZW
	case 'z':
		return Gzip
	case 'r':
		return Flate
	}
	return Zstd
}

// Write!

// StfW writes an stf trajectory.
type StfW struct {
	f         io.Closer //the underlying file, if we opened it.
	h         io.WriteCloser
	b         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	mult      float64
}

// NewWriter creates the file name and returns a writer for a trajectory with natoms atoms
// per frame. The header, if not nil, is written at the beginning of the file. The key
// "prec" in the header sets the number of decimal places kept. A compression level
// (for gzip and flate) can be given.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S, err := newWriter(f, name, CompressionFor(name), natoms, header, compressionLevel...)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	S.f = f
	return S, nil
}

// NewStreamWriter returns a writer that puts the trajectory in w, compressed with comp.
// Closing the writer does not close w.
func NewStreamWriter(w io.Writer, comp Compression, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	S, err := newWriter(w, "", comp, natoms, header, compressionLevel...)
	return S, errDecorate(err, "NewStreamWriter")
}

func newWriter(w io.Writer, name string, comp Compression, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("Invalid number of atoms: %d", natoms), name, []string{"newWriter"}, true}
	}
	level := flate.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := &StfW{natoms: natoms, filename: name, prec: DefaultPrec}
	var err error
	switch comp {
	case LZW:
		S.h = lzw.NewWriter(w, lzw.MSB, lzwLitwidth)
	case Gzip:
		S.h, err = gzip.NewWriterLevel(w, level)
	case Flate:
		S.h, err = flate.NewWriter(w, level)
	default:
		S.h, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	if err != nil {
		return nil, Error{"Can't create the compressor: " + err.Error(), name, []string{"newWriter"}, true}
	}
	S.b = bufio.NewWriter(S.h)
	if p, ok := header["prec"]; ok {
		S.prec, err = parsePrec(p)
		if err != nil {
			return nil, Error{err.Error(), name, []string{"newWriter"}, true}
		}
	}
	S.mult = math.Pow10(S.prec)
	//the precision is always in the header, the rest in a stable order.
	fmt.Fprintf(S.b, "prec=%d\n", S.prec)
	keys := make([]string, 0, len(header))
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.ContainsAny(k+header[k], "=\n") || strings.HasPrefix(k, "*") {
			return nil, Error{fmt.Sprintf("Invalid header entry %q=%q", k, header[k]), name, []string{"newWriter"}, true}
		}
		fmt.Fprintf(S.b, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.b, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes the coordinates coord as the next frame and, if given, the 9 elements
// of the box vectors.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var buf []byte
	for i := 0; i < S.natoms; i++ {
		buf = buf[:0]
		for j := 0; j < 3; j++ {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, int64(math.RoundToEven(coord.At(i, j)*S.mult)), 10)
		}
		buf = append(buf, '\n')
		if _, err := S.b.Write(buf); err != nil {
			return Error{err.Error(), S.filename, []string{"WNext"}, true}
		}
	}
	buf = append(buf[:0], '*')
	if len(box) > 0 && len(box[0]) >= 9 {
		for _, v := range box[0][:9] {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, v, 'f', 4, 64)
		}
	}
	buf = append(buf, '\n')
	if _, err := S.b.Write(buf); err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the writer. It can not be used after this call.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.b.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if S.f != nil {
		if err2 := S.f.Close(); err == nil {
			err = err2
		}
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Read!

// StfR reads an stf trajectory.
type StfR struct {
	f        io.Closer //the underlying file, if we opened it.
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mult     float64
	readable bool
	frame    int
}

// zstd.Decoder.Close returns nothing, so it doesn't fulfill io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// New opens an stf trajectory for reading, and returns a pointer
// to the handle, a map with the metadata from the header, and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	S, m, err := newReader(f, name, CompressionFor(name))
	if err != nil {
		f.Close()
		return nil, nil, errDecorate(err, "New")
	}
	S.f = f
	return S, m, nil
}

// NewStreamReader reads a trajectory compressed with comp from r. Closing the reader
// does not close r.
func NewStreamReader(r io.Reader, comp Compression) (*StfR, map[string]string, error) {
	S, m, err := newReader(r, "", comp)
	return S, m, errDecorate(err, "NewStreamReader")
}

func newReader(r io.Reader, name string, comp Compression) (*StfR, map[string]string, error) {
	S := &StfR{natoms: -1, filename: name, prec: DefaultPrec}
	br := bufio.NewReader(r)
	var err error
	switch comp {
	case LZW:
		S.dec = lzw.NewReader(br, lzw.MSB, lzwLitwidth)
	case Gzip:
		S.dec, err = gzip.NewReader(br)
	case Flate:
		S.dec = flate.NewReader(br)
	default:
		var z *zstd.Decoder
		z, err = zstd.NewReader(br)
		if err == nil {
			S.dec = zstdCloser{z}
		}
	}
	if err != nil {
		return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"newReader"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.dec.Close()
			return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"newReader"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.dec.Close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"newReader"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.dec.Close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), name, []string{"newReader"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.dec.Close()
			return nil, nil, Error{fmt.Sprintf("Malformed header line '%s'", str), name, []string{"newReader"}, true}
		}
		m[k] = v
	}
	if p, ok := m["prec"]; ok {
		prec, err := parsePrec(p)
		if err != nil {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", name)
		} else {
			S.prec = prec
		}
	}
	S.mult = math.Pow10(S.prec)
	S.readable = true
	return S, m, nil
}

func parsePrec(p string) (int, error) {
	prec, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || prec < 0 || prec > 9 {
		return 0, fmt.Errorf("invalid precision %q", p)
	}
	return prec, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

func (S *StfR) coordsDecode(str string, temp *[3]float64) error {
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line: %d fields in %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s): %w", i, v, err)
		}
		temp[i] = float64(f) / S.mult
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given and present in the file, the box vectors in box. If c is nil, the frame is
// read and checked, but discarded. At the end of the trajectory, it returns an error that
// satisfies the LastFrameError interface, and closes the reader.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("%d coordinates expected, matrix has %d", S.natoms, c.NVecs()), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		str, err := S.h.ReadString('\n')
		if err != nil {
			//EOF right at the start of a frame is the normal end of the trajectory.
			if errors.Is(err, io.EOF) && i == 0 && str == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{fmt.Sprintf("%s in frame %d, atom %d", ReadError, S.frame, i), S.filename, []string{"Next"}, true}
		}
		if err := S.coordsDecode(strings.TrimSuffix(str, "\n"), &temp); err != nil {
			return Error{fmt.Sprintf("%s in frame %d: %s", WrongFormat, S.frame, err.Error()), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		c.SetVec(i, temp)
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return Error{fmt.Sprintf("Wrong number of atoms in frame %d", S.frame), S.filename, []string{"Next"}, true}
	}
	S.frame++
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 { //The "*" and the 9 numbers
		clear(box[0])
		return nil
	}
	for j, v := range fields[1:10] {
		var errbox error
		box[0][j], errbox = strconv.ParseFloat(v, 64)
		//A bad box is set to zero and reported, but the coordinates are still good.
		if errbox != nil {
			log.Printf("Failed to read box in frame %d from %s", S.frame-1, S.filename)
			clear(box[0])
			break
		}
	}
	return nil
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.dec.Close()
	if S.f != nil {
		S.f.Close()
	}
	S.readable = false
}

// Errors

// errDecorate adds caller to the decoration of the error, if it is an stf Error
// or lastFrameError. nil errors are returned as such.
func errDecorate(err error, caller string) error {
	switch e := err.(type) {
	case Error:
		e.deco = append(e.deco, caller)
		return e
	case *lastFrameError:
		e.Decorate(caller)
		return e
	}
	return err
}

// Error is the general structure for stf trajectory errors. It fulfills the TrajError interface.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return "stf stream error: " + err.message
	}
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
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

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
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

func (E *lastFrameError) Format() string { return "stf" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
