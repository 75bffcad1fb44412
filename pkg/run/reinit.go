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

import (
	"fmt"
)

//
func NewInit() *Init {

	i := &Init{}
	i.Runner = *NewRunner(
		"init [-s|--sectorsize {size}] [-p|--port {port}]",
		"re-initialize the drive",
		`
Use the init command to re-initialize the drive, e.g. after swapping the
disc, optionally setting a sector size.`,
		i.Run)

	i.AddBaseSettings()
	i.AddSetting(&i.SectorSize, "sectorsize", "s", "", nil,
		"sector size to configure, e.g. 2048 or 2352", false)

	return i
}

//
type Init struct {
	//
	Runner
	//
	SectorSize int
}

//
func (i *Init) Run() error {

	i.ParseSettings()

	path := "/init"
	if i.SectorSize != 0 {
		path = fmt.Sprintf("%s?sectorsize=%d", path, i.SectorSize)
	}

	return i.apiCallPrint("PUT", path)
}

//
func NewMount() *Mount {

	m := &Mount{}
	m.Runner = *NewRunner(
		"mount [-p|--port {port}]",
		"mount the inserted disc",
		"\nUse the mount command to (re)mount the disc in the drive.",
		m.Run)

	m.AddBaseSettings()

	return m
}

//
type Mount struct {
	Runner
}

//
func (m *Mount) Run() error {
	m.ParseSettings()
	return m.apiCallPrint("PUT", "/mount")
}
