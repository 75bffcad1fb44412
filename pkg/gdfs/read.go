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
	"fmt"
	"unsafe"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

// DMA transfers need the destination aligned to 32 bytes
const dmaAlignment = 32

/*
	Read fills buf from the file's current position and advances the
	cursor, returning the number of bytes read; the count is clamped to
	what is left of the file.

	When the destination is 32 byte aligned and both the request size
	and the cursor sit on sector boundaries, the whole request is served
	by a single bulk transfer straight into buf, bypassing the block
	cache. Any other request walks the overlapped sectors through the
	cache, copying the relevant byte ranges.

	On any lower layer failure the call fails as a whole: no partial
	count is returned and the cursor stays where it was.
*/
func (fs *FS) Read(h Handle, buf []byte) (int, error) {

	// one read call at a time, across all open files
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.lookup(h)
	if err != nil {
		return 0, err
	}
	if f.broken {
		return 0, gdrom.ErrDiscChanged
	}

	count := len(buf)
	if count > f.length-f.offset {
		count = f.length - f.offset
	}
	if count <= 0 {
		return 0, nil
	}

	if fs.bulkEligible(buf, count, f.offset) {
		if err := fs.readBulk(f, buf[:count]); err != nil {
			return 0, err
		}
		return count, nil
	}

	if err := fs.readCached(f, buf[:count]); err != nil {
		return 0, err
	}
	return count, nil
}

//
func (fs *FS) bulkEligible(buf []byte, count, offset int) bool {
	return len(buf) > 0 &&
		uintptr(unsafe.Pointer(&buf[0]))%dmaAlignment == 0 &&
		count%gdrom.SectorSize == 0 &&
		offset%gdrom.SectorSize == 0
}

// readBulk serves the request with one cache bypassing DMA transfer
func (fs *FS) readBulk(f *file, buf []byte) error {

	sector := f.extent + f.offset/gdrom.SectorSize
	count := len(buf) / gdrom.SectorSize

	if err := fs.drive.ReadSectors(
		buf, sector, count, gdrom.ModeDMA); err != nil {
		return readError(err)
	}

	f.offset += len(buf)
	return nil
}

// readCached assembles the request sector by sector through the block
// cache, slicing partial first and last sectors as needed
func (fs *FS) readCached(f *file, buf []byte) error {

	offset := f.offset
	copied := 0

	for copied < len(buf) {

		sector := f.extent + offset/gdrom.SectorSize
		within := offset % gdrom.SectorSize

		n := gdrom.SectorSize - within
		if left := len(buf) - copied; n > left {
			n = left
		}

		block, err := fs.cache.get(sector)
		if err != nil {
			// partial progress is discarded, the cursor does not move
			return readError(err)
		}

		copy(buf[copied:copied+n], block[within:within+n])
		copied += n
		offset += n
	}

	f.offset = offset
	return nil
}

// readError folds a lower layer failure into ErrRead while keeping disc
// events recognizable for upstream invalidation
func readError(err error) error {
	if gdrom.IsDiscEvent(err) {
		return err
	}
	return fmt.Errorf("%w: %w", gdrom.ErrRead, err)
}
