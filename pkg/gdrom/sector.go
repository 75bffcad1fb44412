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
	"fmt"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
const SectorSize = 2048

// sector numbers handed to the firmware are offset by the standard
// 150 sector lead-in
const LeadInBias = 150

// transfer mode for ReadSectors
type ReadMode int

const (
	// simple transfer; no other goroutine runs during the window
	ModePIO ReadMode = iota
	// bulk transfer; blocks the caller but lets other goroutines run
	// while the drive moves the data
	ModeDMA
)

/*
	ReadSectors reads count sectors starting at the given sector number
	directly into buf, which must hold count full sectors. There is no
	retry at this level, firmware errors surface to the caller verbatim.
*/
func (c *Controller) ReadSectors(
	buf []byte, sector, count int, mode ReadMode) error {

	if count < 1 {
		return fmt.Errorf("illegal sector count: %d", count)
	}
	if len(buf) < count*SectorSize {
		return fmt.Errorf(
			"buffer too small: %d bytes for %d sectors", len(buf), count)
	}

	params := firmware.ReadParams{
		Start:  sector + LeadInBias,
		Count:  count,
		Buffer: buf,
	}

	switch mode {

	case ModeDMA:
		return c.ch.Execute(firmware.CmdDMARead, &params)

	case ModePIO:
		return c.ch.Execute(firmware.CmdPIORead, &params)

	default:
		return fmt.Errorf("unknown read mode: %d", mode)
	}
}
