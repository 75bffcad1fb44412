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

/*
	Package gdfs is the thin filesystem read path on top of the drive
	layer: a fixed capacity table of open file cursors, a small block
	cache, and a per call choice between a cached byte granular read and
	a cache bypassing bulk transfer straight into the caller's buffer.

	Path and directory resolution is not this package's business; files
	are opened by their extent, i.e. the absolute start sector of their
	data, as resolved by whatever reads the disc's directory structures.
*/
package gdfs

import (
	"errors"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

// fixed maximum of concurrently open files
const MaxOpenFiles = 8

//
var ErrBadHandle = errors.New("invalid file handle")
var ErrTooManyFiles = errors.New("too many open files")

// Handle identifies an open file: table index in the low 16 bits, a
// generation count in the high bits so a stale handle kept across a
// close cannot reach the slot's next tenant.
type Handle uint32

//
func mkHandle(ix int, gen uint32) Handle {
	return Handle(gen<<16 | uint32(ix)&0xffff)
}

//
func (h Handle) index() int {
	return int(h & 0xffff)
}

//
func (h Handle) generation() uint32 {
	return uint32(h) >> 16
}

// one open file; the extent never changes after open, only the cursor
// moves
type file struct {
	used   bool
	gen    uint32
	extent int
	length int
	offset int
	broken bool
}

/*
	FS is the filesystem read path. All open files share one mutex that
	serializes entire read calls against each other, so one caller's
	multi sector read can never interleave with another's at the byte
	level. The block cache beneath is only ever touched with that mutex
	held.
*/
type FS struct {
	//
	mu    sync.Mutex
	drive *gdrom.Controller
	//
	files [MaxOpenFiles]file
	cache *blockCache
}

//
func New(drive *gdrom.Controller) *FS {
	return &FS{
		drive: drive,
		cache: newBlockCache(drive),
	}
}

// OpenExtent opens the file whose data starts at the given absolute
// sector and spans length bytes.
func (fs *FS) OpenExtent(extent, length int) (Handle, error) {

	if extent < 0 || length < 0 {
		return 0, fmt.Errorf("illegal extent %d / length %d", extent, length)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for ix := range fs.files {
		if !fs.files[ix].used {
			f := &fs.files[ix]
			f.used = true
			f.gen++
			f.extent = extent
			f.length = length
			f.offset = 0
			f.broken = false

			log.WithFields(log.Fields{
				"extent": extent,
				"length": length,
			}).Debug("file opened")

			return mkHandle(ix, f.gen), nil
		}
	}

	return 0, ErrTooManyFiles
}

//
func (fs *FS) Close(h Handle) error {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.lookup(h)
	if err != nil {
		return err
	}

	f.used = false
	return nil
}

// Seek moves the cursor like io.Seeker does; the resulting offset is
// clamped to the file's bounds.
func (fs *FS) Seek(h Handle, offset int64, whence int) (int64, error) {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.lookup(h)
	if err != nil {
		return 0, err
	}
	if f.broken {
		return 0, gdrom.ErrDiscChanged
	}

	pos := int64(f.offset)

	switch whence {

	case io.SeekStart:
		pos = offset

	case io.SeekCurrent:
		pos += offset

	case io.SeekEnd:
		pos = int64(f.length) + offset

	default:
		return 0, fmt.Errorf("illegal whence: %d", whence)
	}

	if pos < 0 {
		pos = 0
	}
	if pos > int64(f.length) {
		pos = int64(f.length)
	}

	f.offset = int(pos)
	return pos, nil
}

// Tell reports the current cursor position.
func (fs *FS) Tell(h Handle) (int64, error) {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.lookup(h)
	if err != nil {
		return 0, err
	}
	return int64(f.offset), nil
}

// Length reports the file's length in bytes.
func (fs *FS) Length(h Handle) (int64, error) {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := fs.lookup(h)
	if err != nil {
		return 0, err
	}
	return int64(f.length), nil
}

// InvalidateAll marks every open file broken and drops the block cache.
// Called when a disc change or eject has been detected; broken files
// fail all further operations with ErrDiscChanged until closed.
func (fs *FS) InvalidateAll() {

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for ix := range fs.files {
		if fs.files[ix].used {
			fs.files[ix].broken = true
		}
	}
	fs.cache.invalidate()

	log.Debug("open files invalidated")
}

// lookup resolves a handle; fs.mu must be held
func (fs *FS) lookup(h Handle) (*file, error) {

	ix := h.index()
	if ix < 0 || ix >= MaxOpenFiles {
		return nil, ErrBadHandle
	}

	f := &fs.files[ix]
	if !f.used || f.gen != h.generation() {
		return nil, ErrBadHandle
	}

	return f, nil
}
