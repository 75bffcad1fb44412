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

package gdfs

import (
	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

//
const cacheBlocks = 16

//
type cacheEntry struct {
	sector int
	valid  bool
	data   [gdrom.SectorSize]byte
}

/*
	blockCache is a fixed pool of sector buffers shared by all open
	files. Eviction is plain round robin; an entry only survives until
	up to cacheBlocks unrelated sectors have been fetched, so callers
	must never hold on to a returned block across another fetch. The
	cache is always accessed under the read path mutex.
*/
type blockCache struct {
	drive   *gdrom.Controller
	entries [cacheBlocks]cacheEntry
	next    int
}

//
func newBlockCache(drive *gdrom.Controller) *blockCache {
	return &blockCache{drive: drive}
}

// get returns the cached copy of the given absolute sector, fetching it
// from the drive into the next pool slot on a miss. The returned slice
// is only valid until the next get.
func (c *blockCache) get(sector int) ([]byte, error) {

	for ix := range c.entries {
		if c.entries[ix].valid && c.entries[ix].sector == sector {
			return c.entries[ix].data[:], nil
		}
	}

	e := &c.entries[c.next]
	e.valid = false // never observable half filled

	if err := c.drive.ReadSectors(
		e.data[:], sector, 1, gdrom.ModePIO); err != nil {
		log.WithField("sector", sector).Debugf("cache fetch failed: %v", err)
		return nil, err
	}

	e.sector = sector
	e.valid = true
	c.next = (c.next + 1) % cacheBlocks

	return e.data[:], nil
}

//
func (c *blockCache) invalidate() {
	for ix := range c.entries {
		c.entries[ix].valid = false
	}
}
