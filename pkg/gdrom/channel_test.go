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
	"sync"
	"testing"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/sim"
)

//
func newTestDrive(disc *sim.Disc) (*Controller, *sim.Firmware) {
	fw := sim.New(disc)
	return NewController(NewChannel(fw)), fw
}

//
func testDisc() *sim.Disc {
	return sim.NewDisc(firmware.DiscCDXA,
		sim.Track{Number: 1, Ctrl: CtrlData, Start: 0, Sectors: 100})
}

//
func TestExecuteErrorMapping(t *testing.T) {

	readParams := func() *firmware.ReadParams {
		return &firmware.ReadParams{
			Start:  LeadInBias,
			Count:  1,
			Buffer: make([]byte, SectorSize),
		}
	}

	testCases := []struct {
		name    string
		disc    *sim.Disc
		prepare func(fw *sim.Firmware)
		cmd     firmware.CommandID
		params  func() interface{}
		want    error
	}{
		{
			name:   "completed command",
			disc:   testDisc(),
			cmd:    firmware.CmdPIORead,
			params: func() interface{} { return readParams() },
			want:   nil,
		},
		{
			name:    "aborted command",
			disc:    testDisc(),
			prepare: func(fw *sim.Firmware) { fw.FailNext(1) },
			cmd:     firmware.CmdPIORead,
			params:  func() interface{} { return readParams() },
			want:    ErrAborted,
		},
		{
			name:   "no disc in drive",
			disc:   nil,
			cmd:    firmware.CmdPIORead,
			params: func() interface{} { return readParams() },
			want:   ErrNoDisc,
		},
		{
			name: "disc changed",
			disc: testDisc(),
			prepare: func(fw *sim.Firmware) {
				fw.SwapDisc(testDisc())
			},
			cmd:    firmware.CmdPIORead,
			params: func() interface{} { return readParams() },
			want:   ErrDiscChanged,
		},
		{
			name: "system error",
			disc: testDisc(),
			cmd:  firmware.CmdPIORead,
			params: func() interface{} {
				p := readParams()
				p.Start = 100000 // outside any track
				return p
			},
			want: ErrSystem,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			fw := sim.New(tc.disc)
			if tc.prepare != nil {
				tc.prepare(fw)
			}

			err := NewChannel(fw).Execute(tc.cmd, tc.params())
			if !errors.Is(err, tc.want) {
				t.Errorf("want %v, got %v", tc.want, err)
			}
		})
	}
}

// concurrent commands must never overlap inside the firmware, no matter
// how many goroutines issue them
func TestExecuteSerialized(t *testing.T) {

	c, fw := newTestDrive(testDisc())
	fw.SetLatency(3)

	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			buf := make([]byte, SectorSize)
			for ix := 0; ix < 25; ix++ {
				if err := c.ReadSectors(
					buf, (g+ix)%100, 1, ModePIO); err != nil {
					t.Errorf("read failed: %v", err)
					return
				}
			}
		}(g)
	}

	wg.Wait()

	if max := fw.MaxProcessing(); max != 1 {
		t.Errorf("commands overlapped: %d in flight at once", max)
	}
}
