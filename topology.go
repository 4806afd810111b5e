/*
 * topology.go, part of protarea.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/protarea/v3"
)

//A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

//Residue names used by force fields for protonation states, disulfides, caps and
//non-standard aminoacids, mapped to the standard residue they stand for.
var proteinVariants = map[string]string{
	"HID": "HIS", "HIE": "HIS", "HIP": "HIS", "HSD": "HIS", "HSE": "HIS", "HSP": "HIS",
	"HIS1": "HIS", "HIS2": "HIS", "HISA": "HIS", "HISB": "HIS", "HISD": "HIS", "HISE": "HIS", "HISH": "HIS",
	"CYX": "CYS", "CYM": "CYS", "CYS1": "CYS", "CYS2": "CYS",
	"ASH": "ASP", "ASPH": "ASP", "GLH": "GLU", "GLUH": "GLU", "LYN": "LYS", "LYSH": "LYS",
	"MSE": "MET",
	"ACE": "", "NME": "", "NH2": "", //caps
}

// IsProteinResidue returns true if name is the name of an aminoacidic residue,
// including common force field variants and AMBER terminal residues (NALA, CALA...).
func IsProteinResidue(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	if _, ok := three2OneLetter[name]; ok {
		return true
	}
	if _, ok := proteinVariants[name]; ok {
		return true
	}
	if len(name) == 4 && (name[0] == 'N' || name[0] == 'C') {
		rest := name[1:]
		if _, ok := three2OneLetter[rest]; ok {
			return true
		}
		if _, ok := proteinVariants[rest]; ok {
			return true
		}
	}
	return false
}

// Atom contains the information about an atom that doesn't change along a trajectory.
type Atom struct {
	Name    string
	ID      int
	Molname string //residue name
	Molid   int    //residue number
	Chain   string
	Het     bool //is hetatm in the pdb file?
}

// Topology contains the atoms of a system.
type Topology struct {
	Atoms []*Atom
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Atom returns the Atom corresponding to the index i. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	return T.Atoms[i]
}

// ProteinMask returns, for each atom, true if it belongs to an aminoacidic residue.
func (T *Topology) ProteinMask() []bool {
	ret := make([]bool, len(T.Atoms))
	for i, a := range T.Atoms {
		ret[i] = IsProteinResidue(a.Molname)
	}
	return ret
}

// PDBFileRead reads the PDB file name. See PDBRead.
func PDBFileRead(name string) (*Topology, *v3.Matrix, Box, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Box{}, err
	}
	defer f.Close()
	top, coords, box, err := PDBRead(f)
	if err != nil {
		return nil, nil, Box{}, fmt.Errorf("PDBFileRead %s: %w", name, err)
	}
	return top, coords, box, nil
}

// PDBRead reads the ATOM and HETATM records of the first model in a PDB stream,
// and the box extents from the CRYST1 record, if present (otherwise the box is zero).
func PDBRead(r io.Reader) (*Topology, *v3.Matrix, Box, error) {
	top := new(Topology)
	var box Box
	coords := make([]float64, 0, 3*1000)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024), 1024*1024)
	lineno := 0
	for s.Scan() {
		line := s.Text()
		lineno++
		switch {
		case strings.HasPrefix(line, "CRYST1"):
			b, err := readCryst1(line)
			if err != nil {
				return nil, nil, Box{}, fmt.Errorf("line %d: %w", lineno, err)
			}
			box = b
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			at, c, err := readPDBAtom(line)
			if err != nil {
				return nil, nil, Box{}, fmt.Errorf("line %d: %w", lineno, err)
			}
			top.Atoms = append(top.Atoms, at)
			coords = append(coords, c[:]...)
		case strings.HasPrefix(line, "ENDMDL"):
			//only the first model is read.
			return pdbDone(top, coords, box)
		}
	}
	if err := s.Err(); err != nil {
		return nil, nil, Box{}, err
	}
	return pdbDone(top, coords, box)
}

func pdbDone(top *Topology, coords []float64, box Box) (*Topology, *v3.Matrix, Box, error) {
	if len(top.Atoms) == 0 {
		return nil, nil, Box{}, fmt.Errorf("no atoms found")
	}
	mat, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, Box{}, err
	}
	return top, mat, box, nil
}

func readCryst1(line string) (Box, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return Box{}, fmt.Errorf("malformed CRYST1 record: %q", line)
	}
	var v [3]float64
	for i := range v {
		var err error
		v[i], err = strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return Box{}, fmt.Errorf("malformed CRYST1 record: %w", err)
		}
	}
	return Box{v[0], v[1], v[2]}, nil
}

//Parses a valid ATOM or HETATM line of a PDB file, returns an Atom
//object with the info except for the coordinates, which are returned separately.
func readPDBAtom(line string) (*Atom, [3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return nil, c, fmt.Errorf("ATOM/HETATM record too short (%d characters)", len(line))
	}
	at := new(Atom)
	at.Het = strings.HasPrefix(line, "HETATM")
	var err error
	//Serial numbers overflow in large systems, so they are read but not trusted.
	at.ID, _ = strconv.Atoi(strings.TrimSpace(line[6:11]))
	at.Name = strings.TrimSpace(line[12:16])
	//Some force fields (CHARMM) use the 21st column for 4-letter residue names.
	at.Molname = strings.TrimSpace(line[17:21])
	at.Chain = strings.TrimSpace(line[21:22])
	at.Molid, _ = strconv.Atoi(strings.TrimSpace(line[22:26]))
	for i, lim := range [][2]int{{30, 38}, {38, 46}, {46, 54}} {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[lim[0]:lim[1]]), 64)
		if err != nil {
			return nil, c, fmt.Errorf("can't read coordinate %d: %w", i, err)
		}
	}
	return at, c, nil
}
