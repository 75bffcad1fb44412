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

package gdrom

import (
	"encoding/binary"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
const TOCTracks = 99
const TOCLength = (TOCTracks + 3) * 4

// the high density area of a GD-ROM always starts at this absolute
// sector; its location is never derived from the TOC
const GDDataTrackStart = 45150

// the high density area is the second session on the disc
const GDSession = 1

// control nibble marking a data track
const CtrlData = 4

/*
	TOC is a disc's table of contents, kept bit-exact as the drive
	produces it: 99 track entry words holding the control nibble in the
	top four bits and a 3-byte big endian absolute sector number, plus
	the first track, last track and lead-out words. Produced once per
	disc insertion and immutable until the next disc change.
*/
type TOC struct {
	entries [TOCTracks]uint32
	first   uint32
	last    uint32
	leadout uint32
}

// ParseTOC decodes the raw 408 byte TOC buffer.
func ParseTOC(buf []byte) (*TOC, error) {

	if len(buf) < TOCLength {
		return nil, fmt.Errorf("short TOC buffer: %d bytes", len(buf))
	}

	toc := &TOC{}
	for ix := 0; ix < TOCTracks; ix++ {
		toc.entries[ix] = binary.BigEndian.Uint32(buf[ix*4:])
	}
	toc.first = binary.BigEndian.Uint32(buf[TOCTracks*4:])
	toc.last = binary.BigEndian.Uint32(buf[(TOCTracks+1)*4:])
	toc.leadout = binary.BigEndian.Uint32(buf[(TOCTracks+2)*4:])

	return toc, nil
}

//
func (t *TOC) FirstTrack() int {
	return int(t.first>>16) & 0xff
}

//
func (t *TOC) LastTrack() int {
	return int(t.last>>16) & 0xff
}

// Ctrl returns the control nibble of the 1-based track number.
func (t *TOC) Ctrl(track int) int {
	return int(t.entries[track-1]>>28) & 0xf
}

// LBA returns the absolute sector number of the 1-based track number.
func (t *TOC) LBA(track int) uint32 {
	return t.entries[track-1] & 0x00ffffff
}

//
func (t *TOC) Leadout() uint32 {
	return t.leadout & 0x00ffffff
}

/*
	LocateDataTrack returns the absolute start sector of the data track.
	Track numbers are scanned from the last down to the first, looking
	for a control nibble of 4: on mixed mode discs the data track is
	conventionally the last one, so the backward scan finds it right
	away, while still being correct for any position. Returns false for
	a malformed TOC or when no data track exists.
*/
func (t *TOC) LocateDataTrack() (uint32, bool) {

	first, last := t.FirstTrack(), t.LastTrack()

	if first < 1 || last > TOCTracks || first > last {
		return 0, false
	}

	for ix := last; ix >= first; ix-- {
		if t.Ctrl(ix) == CtrlData {
			return t.LBA(ix), true
		}
	}

	return 0, false
}

// ReadTOC fetches the table of contents for the given session from the
// drive.
func (c *Controller) ReadTOC(session int) (*TOC, error) {

	buf := make([]byte, TOCLength)
	params := firmware.TOCParams{Session: session, Buffer: buf}

	if err := c.ch.Execute(firmware.CmdGetTOC2, &params); err != nil {
		return nil, err
	}

	toc, err := ParseTOC(buf)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"session": session,
		"first":   toc.FirstTrack(),
		"last":    toc.LastTrack(),
	}).Debug("TOC read")

	return toc, nil
}
