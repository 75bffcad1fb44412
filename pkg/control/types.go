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

package control

import (
	"fmt"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

//
type Status struct {
	Status   string `json:"status"`
	DiscType string `json:"discType"`
	Mounted  bool   `json:"mounted"`
	DataBase int    `json:"dataBase,omitempty"`
}

//
func (s *Status) String() string {
	mounted := "not mounted"
	if s.Mounted {
		mounted = fmt.Sprintf("mounted, data area at sector %d", s.DataBase)
	}
	return fmt.Sprintf("\ndrive: %s\ndisc:  %s, %s\n",
		s.Status, s.DiscType, mounted)
}

//
type TOCInfo struct {
	First   int         `json:"first"`
	Last    int         `json:"last"`
	Leadout uint32      `json:"leadout"`
	Tracks  []TrackInfo `json:"tracks"`
}

//
type TrackInfo struct {
	Number int    `json:"number"`
	Type   string `json:"type"`
	LBA    uint32 `json:"lba"`
}

//
func (t *TOCInfo) fill(toc *gdrom.TOC) {

	t.First = toc.FirstTrack()
	t.Last = toc.LastTrack()
	t.Leadout = toc.Leadout()

	if t.First < 1 || t.Last > gdrom.TOCTracks || t.First > t.Last {
		return
	}

	for ix := t.First; ix <= t.Last; ix++ {
		typ := "audio"
		if toc.Ctrl(ix) == gdrom.CtrlData {
			typ = "data"
		}
		t.Tracks = append(t.Tracks, TrackInfo{
			Number: ix,
			Type:   typ,
			LBA:    toc.LBA(ix),
		})
	}
}

//
func (t *TOCInfo) String() string {

	ret := fmt.Sprintf("\ntracks %d-%d, lead-out at %d\n",
		t.First, t.Last, t.Leadout)

	for _, tr := range t.Tracks {
		ret = fmt.Sprintf("%s%3d: %-5s @ %d\n", ret, tr.Number, tr.Type, tr.LBA)
	}
	return ret
}
