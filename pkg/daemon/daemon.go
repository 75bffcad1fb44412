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

package daemon

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdfs"
	"github.com/ianmicheal/gddrive/pkg/gdrom"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
const watchInterval = time.Second

// disc event kinds sent to watchers
const (
	EventMounted = "mounted"
	EventChanged = "changed"
	EventEjected = "ejected"
)

//
type Event struct {
	Kind     string `json:"kind"`
	DiscType string `json:"discType"`
}

/*
	Subsystem owns the whole drive stack: the firmware queue, the command
	channel with its mutex, the drive controller, the filesystem read
	path, and the mount state (latched disc type, TOC, data area start).
	It is constructed once, mounted when a disc is present, and
	re-synchronized whenever a disc change is detected, either by the
	periodic watcher or by a failing operation.
*/
type Subsystem struct {
	//
	fw    firmware.Queue
	drive *gdrom.Controller
	fs    *gdfs.FS
	//
	mu       sync.Mutex
	mounted  bool
	discType int32
	toc      *gdrom.TOC
	dataBase int
	//
	listeners []chan Event
	stop      chan bool
	stopped   sync.WaitGroup
}

//
func New(fw firmware.Queue) *Subsystem {

	drive := gdrom.NewController(gdrom.NewChannel(fw))

	return &Subsystem{
		fw:    fw,
		drive: drive,
		fs:    gdfs.New(drive),
		stop:  make(chan bool),
	}
}

// Drive exposes the drive controller for direct drive operations.
func (s *Subsystem) Drive() *gdrom.Controller {
	return s.drive
}

// Startup resets the firmware and performs the initial initialization
// and mount. A missing disc is not an error at this point.
func (s *Subsystem) Startup() error {

	if err := s.drive.Startup(); err != nil {
		if gdrom.IsDiscEvent(err) {
			log.Info("no disc present")
			return nil
		}
		return err
	}

	if err := s.Mount(); err != nil && !gdrom.IsDiscEvent(err) {
		return err
	}
	return nil
}

/*
	Mount re-initializes the drive and locates the readable data area:
	the disc type is latched once, and for the high density disc family
	the data track location is the fixed absolute sector 45150 with the
	TOC read from the second session; everything else gets session 0 and
	a backward TOC scan for the data track.
*/
func (s *Subsystem) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mount()
}

// mount does the work of Mount; s.mu is held
func (s *Subsystem) mount() error {

	s.mounted = false

	if err := s.drive.Reinit(
		gdrom.Default, gdrom.Default, gdrom.Default); err != nil {
		return err
	}

	_, discType, err := s.drive.Status()
	if err != nil {
		return err
	}
	s.discType = discType

	session := 0
	if discType == firmware.DiscGDROM {
		session = gdrom.GDSession
	}

	toc, err := s.drive.ReadTOC(session)
	if err != nil {
		return err
	}
	s.toc = toc

	// the override comes first: a high density disc's data area is at a
	// known place, regardless of what the TOC says
	if discType == firmware.DiscGDROM {
		s.dataBase = gdrom.GDDataTrackStart - gdrom.LeadInBias
	} else {
		lba, ok := toc.LocateDataTrack()
		if !ok {
			return fmt.Errorf("no data track on disc")
		}
		s.dataBase = int(lba) - gdrom.LeadInBias
	}

	s.mounted = true

	log.WithFields(log.Fields{
		"discType": DiscTypeName(discType),
		"dataBase": s.dataBase,
	}).Info("disc mounted")

	return nil
}

// Mounted reports whether a disc is currently mounted, along with its
// latched type.
func (s *Subsystem) Mounted() (bool, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted, s.discType
}

// TOC returns the cached table of contents of the mounted disc.
func (s *Subsystem) TOC() (*gdrom.TOC, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, fmt.Errorf("no disc mounted")
	}
	return s.toc, nil
}

// DataBase returns the start sector of the mounted disc's data area.
func (s *Subsystem) DataBase() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return 0, fmt.Errorf("no disc mounted")
	}
	return s.dataBase, nil
}

// Open opens a file by its extent relative to the data area start.
func (s *Subsystem) Open(extent, length int) (gdfs.Handle, error) {

	base, err := s.DataBase()
	if err != nil {
		return 0, err
	}
	return s.fs.OpenExtent(base+extent, length)
}

// Read reads from an open file; a detected disc event invalidates all
// open files before the error is passed on.
func (s *Subsystem) Read(h gdfs.Handle, buf []byte) (int, error) {

	n, err := s.fs.Read(h, buf)
	if err != nil && gdrom.IsDiscEvent(err) {
		s.discEvent(err)
	}
	return n, err
}

//
func (s *Subsystem) Close(h gdfs.Handle) error {
	return s.fs.Close(h)
}

//
func (s *Subsystem) Seek(
	h gdfs.Handle, offset int64, whence int) (int64, error) {
	return s.fs.Seek(h, offset, whence)
}

// discEvent drops all mount derived state after a disc change or eject
func (s *Subsystem) discEvent(err error) {

	log.Infof("disc event: %v", err)
	s.fs.InvalidateAll()

	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()

	kind := EventChanged
	if err == gdrom.ErrNoDisc {
		kind = EventEjected
	}
	s.notify(Event{Kind: kind})
}

// Subscribe returns a channel carrying future disc events. Callers
// must Unsubscribe when done.
func (s *Subsystem) Subscribe() chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, 4)
	s.listeners = append(s.listeners, ch)
	return ch
}

//
func (s *Subsystem) Unsubscribe(ch chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ix, l := range s.listeners {
		if l == ch {
			s.listeners = append(s.listeners[:ix], s.listeners[ix+1:]...)
			return
		}
	}
}

//
func (s *Subsystem) notify(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listeners {
		select {
		case l <- e:
		default: // stale listener, drop rather than block
		}
	}
}

/*
	Watch starts the periodic drive poll. It uses the non-blocking status
	query, so a poll never stalls behind a long transfer; a contended
	poll is simply skipped. An open lid or missing disc unmounts and
	invalidates, a newly arrived disc triggers a mount.
*/
func (s *Subsystem) Watch(interval time.Duration) {

	if interval <= 0 {
		interval = watchInterval
	}

	s.stopped.Add(1)

	go func() {
		defer s.stopped.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.poll()
			}
		}
	}()
}

//
func (s *Subsystem) poll() {

	mech, discType, err := s.drive.StatusNoWait()
	if err != nil {
		if err != gdrom.ErrBusy {
			log.Debugf("status poll failed: %v", err)
		}
		return
	}

	mounted, latched := s.Mounted()

	switch {

	case mech == firmware.StatusOpen || mech == firmware.StatusNoDisc:
		if mounted {
			s.discEvent(gdrom.ErrNoDisc)
		}

	case !mounted:
		if err := s.Mount(); err != nil {
			log.Debugf("mount failed: %v", err)
		} else {
			_, mountedType := s.Mounted()
			s.notify(Event{
				Kind:     EventMounted,
				DiscType: DiscTypeName(mountedType),
			})
		}

	case discType != latched:
		s.discEvent(gdrom.ErrDiscChanged)
	}
}

// Stop ends the watcher.
func (s *Subsystem) Stop() {
	close(s.stop)
	s.stopped.Wait()
	log.Info("drive subsystem stopped")
}

//
func DiscTypeName(t int32) string {

	switch t {

	case firmware.DiscCDDA:
		return "CDDA"

	case firmware.DiscCDROM:
		return "CD-ROM"

	case firmware.DiscCDXA:
		return "CD-ROM XA"

	case firmware.DiscCDI:
		return "CD-I"

	case firmware.DiscGDROM:
		return "GD-ROM"

	default:
		return "<none>"
	}
}

//
func StatusName(s int32) string {

	switch s {

	case firmware.StatusBusy:
		return "busy"

	case firmware.StatusPaused:
		return "paused"

	case firmware.StatusStandby:
		return "standby"

	case firmware.StatusPlaying:
		return "playing"

	case firmware.StatusSeeking:
		return "seeking"

	case firmware.StatusScanning:
		return "scanning"

	case firmware.StatusOpen:
		return "lid open"

	case firmware.StatusNoDisc:
		return "no disc"

	case firmware.StatusRetry:
		return "retry"

	case firmware.StatusError:
		return "error"

	default:
		return "<unknown>"
	}
}
