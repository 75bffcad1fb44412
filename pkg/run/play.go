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
func NewPlay() *Play {

	p := &Play{}
	p.Runner = *NewRunner(
		`play -s|--start {track} [-e|--end {track}] [-r|--repeat {count}]
      [-p|--port {port}]`,
		"play audio tracks",
		`
Use the play command to start CDDA playback; a repeat count of 15 means
endless repetition.`,
		p.Run)

	p.AddBaseSettings()
	p.AddSetting(&p.Start, "start", "s", "", nil, "track to play from", true)
	p.AddSetting(&p.End, "end", "e", "", nil, "track to play to", false)
	p.AddSetting(&p.Repeat, "repeat", "r", "", nil, "repeat count", false)

	return p
}

//
type Play struct {
	//
	Runner
	//
	Start  int
	End    int
	Repeat int
}

//
func (p *Play) Run() error {

	p.ParseSettings()

	end := p.End
	if end == 0 {
		end = p.Start
	}

	return p.apiCallPrint("PUT", fmt.Sprintf(
		"/play?start=%d&end=%d&repeat=%d", p.Start, end, p.Repeat))
}

//
func NewPause() *Pause {
	p := &Pause{}
	p.Runner = *NewRunner("pause [-p|--port {port}]",
		"pause audio playback", "", p.Run)
	p.AddBaseSettings()
	return p
}

//
type Pause struct {
	Runner
}

//
func (p *Pause) Run() error {
	p.ParseSettings()
	return p.apiCallPrint("PUT", "/pause")
}

//
func NewResume() *Resume {
	r := &Resume{}
	r.Runner = *NewRunner("resume [-p|--port {port}]",
		"resume audio playback", "", r.Run)
	r.AddBaseSettings()
	return r
}

//
type Resume struct {
	Runner
}

//
func (r *Resume) Run() error {
	r.ParseSettings()
	return r.apiCallPrint("PUT", "/resume")
}

//
func NewStop() *Stop {
	s := &Stop{}
	s.Runner = *NewRunner("stop [-p|--port {port}]",
		"stop the disc", "", s.Run)
	s.AddBaseSettings()
	return s
}

//
type Stop struct {
	Runner
}

//
func (s *Stop) Run() error {
	s.ParseSettings()
	return s.apiCallPrint("PUT", "/stop")
}
