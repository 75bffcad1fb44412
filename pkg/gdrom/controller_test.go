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
	"errors"
	"testing"
	"time"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/sim"
)

// shrink the retry pacing so the timeout paths run in milliseconds
func fastRetries(c *Controller) {
	c.RetryInterval = time.Millisecond
	c.RetryBudget = 20 * time.Millisecond
}

//
func TestReinitRetriesUntilSuccess(t *testing.T) {

	c, fw := newTestDrive(testDisc())
	fastRetries(c)

	fw.FailNext(3)

	if err := c.Reinit(Default, Default, Default); err != nil {
		t.Fatalf("reinit failed: %v", err)
	}

	if got := fw.Submitted(firmware.CmdInit); got != 4 {
		t.Errorf("init attempts: want 4, got %d", got)
	}
}

//
func TestReinitTimesOut(t *testing.T) {

	c, fw := newTestDrive(testDisc())
	fastRetries(c)

	fw.FailNext(1 << 20)

	err := c.Reinit(Default, Default, Default)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("want %v, got %v", ErrTimeout, err)
	}

	attempts := int(c.RetryBudget / c.RetryInterval)
	if got := fw.Submitted(firmware.CmdInit); got != attempts {
		t.Errorf("init attempts: want %d, got %d", attempts, got)
	}
	if got := fw.Aborts(); got != 1 {
		t.Errorf("aborts: want 1, got %d", got)
	}
}

// a missing disc ends the retry loop right away
func TestReinitStopsOnMissingDisc(t *testing.T) {

	c, fw := newTestDrive(nil)
	fastRetries(c)

	err := c.Reinit(Default, Default, Default)
	if !errors.Is(err, ErrNoDisc) {
		t.Fatalf("want %v, got %v", ErrNoDisc, err)
	}

	if got := fw.Submitted(firmware.CmdInit); got != 1 {
		t.Errorf("init attempts: want 1, got %d", got)
	}
	if got := fw.Aborts(); got != 0 {
		t.Errorf("aborts: want 0, got %d", got)
	}
}

//
func TestStatus(t *testing.T) {

	c, _ := newTestDrive(testDisc())

	mech, disc, err := c.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if mech != firmware.StatusPaused {
		t.Errorf("mech status: want %d, got %d", firmware.StatusPaused, mech)
	}
	if disc != firmware.DiscCDXA {
		t.Errorf("disc type: want %#x, got %#x", firmware.DiscCDXA, disc)
	}

	c, _ = newTestDrive(nil)

	mech, disc, err = c.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if mech != firmware.StatusNoDisc {
		t.Errorf("mech status: want %d, got %d", firmware.StatusNoDisc, mech)
	}
	if disc != firmware.DiscNone {
		t.Errorf("disc type: want %d, got %d", firmware.DiscNone, disc)
	}
}

// StatusNoWait must fail fast while another command holds the drive
func TestStatusNoWaitWhenBusy(t *testing.T) {

	c, _ := newTestDrive(testDisc())

	c.ch.lock()
	if _, _, err := c.StatusNoWait(); !errors.Is(err, ErrBusy) {
		t.Errorf("want %v, got %v", ErrBusy, err)
	}
	c.ch.unlock()

	if _, _, err := c.StatusNoWait(); err != nil {
		t.Errorf("uncontended status failed: %v", err)
	}
}

//
func TestChangeDataTypeDefaults(t *testing.T) {

	testCases := []struct {
		name       string
		disc       *sim.Disc
		sectorPart int32
		cdxa       int32
		sectorSize int32
		want       firmware.DataTypeParams
	}{
		{
			name: "raw sector size defaults",
			disc: testDisc(),
			sectorPart: Default, cdxa: Default, sectorSize: 2352,
			want: firmware.DataTypeParams{
				SectorPart: ReadWholeSector, CDXA: 0, SectorSize: 2352,
			},
		},
		{
			name: "all defaults on an XA disc",
			disc: testDisc(),
			sectorPart: Default, cdxa: Default, sectorSize: Default,
			want: firmware.DataTypeParams{
				SectorPart: ReadDataArea, CDXA: 2048, SectorSize: 2048,
			},
		},
		{
			name: "all defaults on a plain data disc",
			disc: sim.NewDisc(firmware.DiscCDROM,
				sim.Track{Number: 1, Ctrl: CtrlData, Start: 0, Sectors: 100}),
			sectorPart: Default, cdxa: Default, sectorSize: Default,
			want: firmware.DataTypeParams{
				SectorPart: ReadDataArea, CDXA: 1024, SectorSize: 2048,
			},
		},
		{
			name: "explicit values pass through",
			disc: testDisc(),
			sectorPart: ReadWholeSector, cdxa: 512, sectorSize: 2340,
			want: firmware.DataTypeParams{
				SectorPart: ReadWholeSector, CDXA: 512, SectorSize: 2340,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			c, fw := newTestDrive(tc.disc)

			if err := c.ChangeDataType(
				tc.sectorPart, tc.cdxa, tc.sectorSize); err != nil {
				t.Fatalf("change data type failed: %v", err)
			}

			got := fw.DataType()
			if got.SectorPart != tc.want.SectorPart {
				t.Errorf("sector part: want %#x, got %#x",
					tc.want.SectorPart, got.SectorPart)
			}
			if got.CDXA != tc.want.CDXA {
				t.Errorf("cdxa: want %d, got %d", tc.want.CDXA, got.CDXA)
			}
			if got.SectorSize != tc.want.SectorSize {
				t.Errorf("sector size: want %d, got %d",
					tc.want.SectorSize, got.SectorSize)
			}
		})
	}
}

//
func TestStartup(t *testing.T) {

	c, fw := newTestDrive(testDisc())
	fastRetries(c)

	if err := c.Startup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}

	if fw.Submitted(firmware.CmdInit) < 1 {
		t.Error("no init command submitted")
	}
	if got := fw.DataType().SectorSize; got != 2048 {
		t.Errorf("sector size: want 2048, got %d", got)
	}
}
