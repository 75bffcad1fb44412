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
	"errors"
	"testing"
	"time"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/sim"
)

//
func newTestSubsystem(t *testing.T, disc *sim.Disc) (*Subsystem, *sim.Firmware) {

	t.Helper()

	fw := sim.New(disc)
	s := New(fw)
	s.Drive().RetryInterval = time.Millisecond
	s.Drive().RetryBudget = 20 * time.Millisecond

	if err := s.Startup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	return s, fw
}

//
func expectEvent(t *testing.T, events chan Event, kind string) {
	t.Helper()
	select {
	case e := <-events:
		if e.Kind != kind {
			t.Errorf("event: want %s, got %s", kind, e.Kind)
		}
	default:
		t.Errorf("no %s event received", kind)
	}
}

//
func TestMountDataBase(t *testing.T) {

	gdHighDensity := gdrom.GDDataTrackStart - gdrom.LeadInBias

	testCases := []struct {
		name     string
		disc     *sim.Disc
		wantBase int
	}{
		{
			name:     "data track from the TOC",
			disc:     sim.SingleDataDisc(300, 100),
			wantBase: 300,
		},
		{
			name:     "high density disc",
			disc:     sim.GDDisc(500),
			wantBase: gdHighDensity,
		},
		{
			// the high density area location is fixed; whatever the TOC
			// claims must not matter
			name: "high density disc with an odd TOC",
			disc: sim.NewDisc(firmware.DiscGDROM,
				sim.Track{Number: 3, Session: 1, Ctrl: 4,
					Start: 50000, Sectors: 100}),
			wantBase: gdHighDensity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			s, _ := newTestSubsystem(t, tc.disc)

			mounted, _ := s.Mounted()
			if !mounted {
				t.Fatal("disc not mounted")
			}

			base, err := s.DataBase()
			if err != nil {
				t.Fatalf("no data base: %v", err)
			}
			if base != tc.wantBase {
				t.Errorf("data base: want %d, got %d", tc.wantBase, base)
			}
		})
	}
}

//
func TestMountNeedsDataTrack(t *testing.T) {

	disc := sim.NewDisc(firmware.DiscCDDA,
		sim.Track{Number: 1, Ctrl: 0, Start: 0, Sectors: 1000})

	fw := sim.New(disc)
	s := New(fw)
	s.Drive().RetryInterval = time.Millisecond
	s.Drive().RetryBudget = 20 * time.Millisecond

	if err := s.Startup(); err == nil {
		t.Error("audio only disc mounted")
	}
	if mounted, _ := s.Mounted(); mounted {
		t.Error("subsystem claims to be mounted")
	}
}

//
func TestReadRelativeToDataBase(t *testing.T) {

	disc := sim.SingleDataDisc(300, 50)
	disc.FillSector(300, 0x11)

	s, _ := newTestSubsystem(t, disc)

	h, err := s.Open(0, 4096)
	if err != nil {
		t.Fatalf("cannot open file: %v", err)
	}

	buf := make([]byte, 100)
	n, err := s.Read(h, buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 100 || buf[0] != 0x11 || buf[99] != 0x11 {
		t.Error("content wrong")
	}

	if err := s.Close(h); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

// a disc change surfacing through a read drops the mount and breaks all
// open files
func TestDiscChangeInvalidates(t *testing.T) {

	s, fw := newTestSubsystem(t, sim.SingleDataDisc(300, 50))

	events := s.Subscribe()
	defer s.Unsubscribe(events)

	h, err := s.Open(0, 4096)
	if err != nil {
		t.Fatalf("cannot open file: %v", err)
	}

	fw.SwapDisc(sim.SingleDataDisc(300, 50))

	buf := make([]byte, 100)
	if _, err := s.Read(h, buf); !errors.Is(err, gdrom.ErrDiscChanged) {
		t.Fatalf("want %v, got %v", gdrom.ErrDiscChanged, err)
	}

	expectEvent(t, events, EventChanged)

	if mounted, _ := s.Mounted(); mounted {
		t.Error("still mounted after disc change")
	}

	// the handle is broken for good, even without touching the drive
	if _, err := s.Read(h, buf); !errors.Is(err, gdrom.ErrDiscChanged) {
		t.Errorf("broken handle: want %v, got %v", gdrom.ErrDiscChanged, err)
	}
}

// the poll cycle notices an inserted disc and a later eject
func TestPollMountAndEject(t *testing.T) {

	fw := sim.New(nil)
	s := New(fw)
	s.Drive().RetryInterval = time.Millisecond
	s.Drive().RetryBudget = 20 * time.Millisecond

	if err := s.Startup(); err != nil {
		t.Fatalf("startup without disc failed: %v", err)
	}

	events := s.Subscribe()
	defer s.Unsubscribe(events)

	s.poll() // empty drive, nothing to do
	if mounted, _ := s.Mounted(); mounted {
		t.Fatal("mounted an empty drive")
	}

	fw.SwapDisc(sim.SingleDataDisc(300, 50))
	s.poll()

	expectEvent(t, events, EventMounted)
	if mounted, _ := s.Mounted(); !mounted {
		t.Fatal("inserted disc not mounted")
	}
	if base, _ := s.DataBase(); base != 300 {
		t.Errorf("data base: want 300, got %d", base)
	}

	fw.Eject()
	s.poll()

	expectEvent(t, events, EventEjected)
	if mounted, _ := s.Mounted(); mounted {
		t.Error("still mounted after eject")
	}
}

//
func TestWatchStops(t *testing.T) {

	s, _ := newTestSubsystem(t, sim.SingleDataDisc(300, 50))

	s.Watch(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	s.Stop()
}
