/*
   GDDrive - GD-ROM drive service
   Copyright (c) 2026, Ian Micheal

   This file is part of GDDrive.

   GDDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   GDDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with GDDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package run

//
func NewTOC() *TOC {

	t := &TOC{}
	t.Runner = *NewRunner(
		"toc [-p|--port {port}]",
		"get the disc's table of contents",
		"\nUse the toc command to list the tracks of the mounted disc.",
		t.Run)

	t.AddBaseSettings()

	return t
}

//
type TOC struct {
	Runner
}

//
func (t *TOC) Run() error {
	t.ParseSettings()
	return t.apiCallPrint("GET", "/toc")
}
