/*
 * errors.go, part of protarea.
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

package protarea

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies the errors of the area calculation.
type ErrorKind int

const (
	//ConfigurationError: degenerate box, non-positive layer, zmax <= zmin...
	ConfigurationError ErrorKind = iota + 1
	//DataConsistencyError: a protein point got an unbounded Voronoi cell.
	DataConsistencyError
	//GeometryError: a degenerate cell polygon.
	GeometryError
	//StateError: the Aggregator was used out of order.
	StateError
)

func (K ErrorKind) String() string {
	switch K {
	case ConfigurationError:
		return "configuration error"
	case DataConsistencyError:
		return "data consistency error"
	case GeometryError:
		return "geometry error"
	case StateError:
		return "state error"
	}
	return "unknown error"
}

// Sentinels to be used with errors.Is. They match any *Error of the same kind.
var (
	ErrConfiguration   = &Error{kind: ConfigurationError, sentinel: true}
	ErrDataConsistency = &Error{kind: DataConsistencyError, sentinel: true}
	ErrGeometry        = &Error{kind: GeometryError, sentinel: true}
	ErrState           = &Error{kind: StateError, sentinel: true}
)

// Error is the error type of the package. Errors raised while computing a given
// cell of the area table carry the frame and slice indexes of that cell.
type Error struct {
	kind     ErrorKind
	message  string
	frame    int
	slice    int
	cause    error
	deco     []string
	critical bool
	sentinel bool
}

func newError(kind ErrorKind, message string, caller string) *Error {
	return &Error{
		kind:     kind,
		message:  message,
		frame:    -1,
		slice:    -1,
		deco:     []string{caller},
		critical: kind != GeometryError,
	}
}

func (E *Error) Error() string {
	if E.sentinel {
		return "protarea: " + E.kind.String()
	}
	var b strings.Builder
	b.WriteString("protarea: ")
	b.WriteString(E.kind.String())
	if E.frame >= 0 || E.slice >= 0 {
		fmt.Fprintf(&b, " (frame %d, slice %d)", E.frame, E.slice)
	}
	b.WriteString(": ")
	b.WriteString(E.message)
	if E.cause != nil {
		b.WriteString(": ")
		b.WriteString(E.cause.Error())
	}
	return b.String()
}

// Decorate adds the name of a calling function to the error, and returns the whole list.
// If passed an empty string, it just returns the current list.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Kind returns the kind of error.
func (E *Error) Kind() ErrorKind { return E.kind }

// Critical returns true if the error can not be ignored.
func (E *Error) Critical() bool { return E.critical }

// Cell returns the frame and slice where the error happened, or -1 for those not known.
func (E *Error) Cell() (frame, slice int) { return E.frame, E.slice }

// Unwrap returns the underlying error, if any.
func (E *Error) Unwrap() error { return E.cause }

// Is matches the sentinels of the same kind.
func (E *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.sentinel && t.kind == E.kind
}

// atCell sets the table cell where the error happened.
func (E *Error) atCell(frame, slice int) *Error {
	E.frame = frame
	E.slice = slice
	return E
}

func (E *Error) wrap(cause error) *Error {
	E.cause = cause
	return E
}

// errDecorate adds caller to the decoration of err if err, or something it wraps,
// is an *Error. The same err is returned.
func errDecorate(err error, caller string) error {
	var E *Error
	if errors.As(err, &E) {
		E.Decorate(caller)
	}
	return err
}
