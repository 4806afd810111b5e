/*
 * doc.go, part of protarea.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

/*
Package protarea computes the area covered by a protein in thin slices along the Z axis of
a molecular dynamics trajectory, as in the analysis of proteins embedded in membranes.

Each frame is cut into slices between consecutive Boundaries. The atoms strictly inside
a slice are projected onto the XY plane and, if periodic images are requested, copied into
the 8 cells around the simulation box. The area of the slice is the sum of the areas of
the 2D Voronoi cells (see package voro) of the protein atoms in the central cell.

	**Capabilities**

	Reads the topology, coordinates and box from PDB files, and trajectories in the stf format
	(package traj/stf).

	Tells protein from non-protein atoms by residue name, including the usual force field
	variants (HIE, CYX, NALA...).

	Computes all the slices of a frame concurrently, and reads the next frames of the
	trajectory while the previous ones are being computed (see Aggregator.Run).

	Collects the results in an AreaTable, with per-slice means and standard deviations,
	JSON and text output. Package areaplot plots them.

The command protarea (cmd/protarea) runs the whole analysis from the command line.
*/
package protarea
