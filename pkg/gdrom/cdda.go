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
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

// repeat count for endless CDDA playback
const RepeatInfinite = 15

// PlayTracks starts CDDA playback from the start track through the end
// track. Repeat counts above 15 are clamped to 15, which means endless
// repetition.
func (c *Controller) PlayTracks(start, end, repeat int) error {
	return c.play(firmware.CmdPlay, start, end, repeat)
}

// PlaySectors starts CDDA playback for a sector range rather than whole
// tracks.
func (c *Controller) PlaySectors(start, end, repeat int) error {
	return c.play(firmware.CmdPlay2, start, end, repeat)
}

//
func (c *Controller) play(
	cmd firmware.CommandID, start, end, repeat int) error {

	if repeat > RepeatInfinite {
		repeat = RepeatInfinite
	}

	params := firmware.PlayParams{Start: start, End: end, Repeat: repeat}
	return c.ch.Execute(cmd, &params)
}

// Pause pauses CDDA playback.
func (c *Controller) Pause() error {
	return c.ch.Execute(firmware.CmdPause, nil)
}

// Resume resumes paused CDDA playback.
func (c *Controller) Resume() error {
	return c.ch.Execute(firmware.CmdRelease, nil)
}

// SpinDown stops the disc.
func (c *Controller) SpinDown() error {
	return c.ch.Execute(firmware.CmdStop, nil)
}

// GetSubcode reads a piece of the subcode of the last sector read into
// buf; which selects the subcode portion. Reading the subcode of every
// sector requires reading one sector at a time.
func (c *Controller) GetSubcode(which int, buf []byte) error {
	params := firmware.SubcodeParams{Which: which, Buffer: buf}
	return c.ch.Execute(firmware.CmdGetSubcode, &params)
}
