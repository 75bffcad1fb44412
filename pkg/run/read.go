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
	"io"
	"os"
)

//
func NewRead() *Read {

	r := &Read{}
	r.Runner = *NewRunner(
		`read -s|--sector {sector} [-c|--count {count}] [-o|--output {file}]
      [--pio] [-p|--port {port}]`,
		"read raw sectors from the disc",
		`
Use the read command to read raw sectors from the disc. Output goes to
stdout unless a file is given.`,
		r.Run)

	r.AddBaseSettings()
	r.AddSetting(&r.Sector, "sector", "s", "", nil,
		"start sector to read from", true)
	r.AddSetting(&r.Count, "count", "c", "", 1,
		"number of sectors to read", false)
	r.AddSetting(&r.Output, "output", "o", "", nil,
		"output file; stdout when omitted", false)
	r.AddSetting(&r.PIO, "pio", "", "", nil,
		"use the simple transfer mode instead of DMA", false)

	return r
}

//
type Read struct {
	//
	Runner
	//
	Sector int
	Count  int
	Output string
	PIO    bool
}

//
func (r *Read) Run() error {

	r.ParseSettings()

	mode := "dma"
	if r.PIO {
		mode = "pio"
	}

	resp, err := r.apiCall("GET", fmt.Sprintf(
		"/read?sector=%d&count=%d&mode=%s", r.Sector, r.Count, mode),
		false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	var out io.Writer = os.Stdout
	if r.Output != "" {
		f, err := os.Create(r.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	_, err = io.Copy(out, resp)
	return err
}
