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

package sim

import (
	"encoding/binary"
	"fmt"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
const SectorSize = 2048

// sector numbering bias of the medium; sector numbers arriving at the
// firmware are absolute, i.e. LBA + 150
const LeadInBias = 150

//
const tocEntries = 99
const tocLength = (tocEntries + 3) * 4

const ctrlAudio = 0
const ctrlData = 4

// Track describes one track of a simulated disc. Start is the unbiased
// LBA of the first sector, Ctrl the control nibble as it appears in the
// TOC (4 for data tracks).
type Track struct {
	Number  int
	Session int
	Ctrl    int
	Start   int
	Sectors int
}

// Disc is the medium model backing the simulated firmware: a track list
// plus a sparse sector store keyed by unbiased LBA.
type Disc struct {
	//
	Type   int32
	Tracks []Track
	//
	data map[int][]byte
}

//
func NewDisc(typ int32, tracks ...Track) *Disc {
	return &Disc{
		Type:   typ,
		Tracks: tracks,
		data:   make(map[int][]byte),
	}
}

// SetSector places content at the given unbiased LBA. Content is padded
// or truncated to one full sector.
func (d *Disc) SetSector(lba int, content []byte) {
	sec := make([]byte, SectorSize)
	copy(sec, content)
	d.data[lba] = sec
}

// FillSector fills the sector at the given unbiased LBA with a byte value.
func (d *Disc) FillSector(lba int, value byte) {
	sec := make([]byte, SectorSize)
	for ix := range sec {
		sec[ix] = value
	}
	d.data[lba] = sec
}

//
func (d *Disc) sector(lba int) ([]byte, error) {
	if sec, ok := d.data[lba]; ok {
		return sec, nil
	}
	for _, t := range d.Tracks {
		if t.Start <= lba && lba < t.Start+t.Sectors {
			return make([]byte, SectorSize), nil
		}
	}
	return nil, fmt.Errorf("sector %d outside any track", lba)
}

/*
	toc renders the table of contents for the given session in the exact
	layout the drive produces: 99 four-byte entries with the control nibble
	in the top four bits and a 3-byte big endian LBA, followed by first &
	last track words (track number in bits 16-23) and the lead-out word.
*/
func (d *Disc) toc(session int) []byte {

	buf := make([]byte, tocLength)
	for ix := 0; ix < tocEntries; ix++ {
		binary.BigEndian.PutUint32(buf[ix*4:], 0xffffffff)
	}

	first, last, leadout := -1, -1, 0

	for _, t := range d.Tracks {
		if t.Session != session || t.Number < 1 || t.Number > tocEntries {
			continue
		}
		entry := uint32(t.Ctrl)<<28 | uint32(t.Start+LeadInBias)&0x00ffffff
		binary.BigEndian.PutUint32(buf[(t.Number-1)*4:], entry)
		if first == -1 || t.Number < first {
			first = t.Number
		}
		if t.Number > last {
			last = t.Number
		}
		if end := t.Start + t.Sectors + LeadInBias; end > leadout {
			leadout = end
		}
	}

	if first == -1 {
		return buf
	}

	binary.BigEndian.PutUint32(buf[tocEntries*4:], uint32(first)<<16)
	binary.BigEndian.PutUint32(buf[(tocEntries+1)*4:], uint32(last)<<16)
	binary.BigEndian.PutUint32(buf[(tocEntries+2)*4:],
		uint32(ctrlData)<<28|uint32(leadout)&0x00ffffff)

	return buf
}

//
func (d *Disc) hasSession(session int) bool {
	for _, t := range d.Tracks {
		if t.Session == session {
			return true
		}
	}
	return false
}

// SingleDataDisc builds a minimal CD-ROM XA disc with one audio and one
// data track, the layout of a standard selfboot CD-R.
func SingleDataDisc(dataStart, dataSectors int) *Disc {
	return NewDisc(firmware.DiscCDXA,
		Track{Number: 1, Session: 0, Ctrl: ctrlAudio, Start: 0,
			Sectors: dataStart},
		Track{Number: 2, Session: 0, Ctrl: ctrlData, Start: dataStart,
			Sectors: dataSectors},
	)
}

// GDDisc builds a high density disc: a session 0 audio area and the
// session 1 data area starting at the fixed LBA 45000 (absolute 45150).
func GDDisc(dataSectors int) *Disc {
	return NewDisc(firmware.DiscGDROM,
		Track{Number: 1, Session: 0, Ctrl: ctrlAudio, Start: 0,
			Sectors: 300},
		Track{Number: 3, Session: 1, Ctrl: ctrlData, Start: 45000,
			Sectors: dataSectors},
	)
}
