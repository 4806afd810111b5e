/*
 * doc.go, part of protarea.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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
Package stf reads and writes the simple trajectory format, a compressed plain-text
trajectory format that is easy to produce from other programs.

Format:

The stream is compressed (zstd, unless the file extension says otherwise, see
CompressionFor) and contains only ASCII.

It starts with a header of key=value lines. The key "prec" gives the number of decimal
places kept for the coordinates. The header ends with a line with "**", one or more
spaces, and the number of atoms per frame.

Then, each frame has one line per atom with 3 integers: the x, y and z coordinates in
Angstrom, multiplied by 10^prec and rounded. Each frame ends with a line starting with
"*", optionally followed by the 9 components of the box vectors, in Angstrom.

The "**" sequence only appears at the end of the header.
*/
package stf
