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
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

// sector part selectors for the change-data-type call
const (
	ReadWholeSector = 0x1000
	ReadDataArea    = 0x2000
)

// pass Default for sector part, CD-XA mode or sector size to let the
// drive fall back to its defaults
const Default = -1

const reinitInterval = 20 * time.Millisecond
const reinitBudget = 10 * time.Second

/*
	Controller implements the drive level operations on top of the
	command channel: status queries, re-initialization with a bounded
	retry budget, sector format configuration, and CDDA playback.

	Retry policy lives here and nowhere else; the channel itself never
	retries a command.
*/
type Controller struct {
	//
	ch *Channel
	// retry pacing for Reinit; fixed drive characteristics, adjustable
	// for tests
	RetryInterval time.Duration
	RetryBudget   time.Duration
}

//
func NewController(ch *Channel) *Controller {
	return &Controller{
		ch:            ch,
		RetryInterval: reinitInterval,
		RetryBudget:   reinitBudget,
	}
}

// Status reports the mechanical drive status and the disc type. It
// blocks while a command is executing on the channel.
func (c *Controller) Status() (int32, int32, error) {
	c.ch.lock()
	defer c.ch.unlock()
	return c.driveStatus()
}

// StatusNoWait is Status for callers that must not block, such as a
// periodic poll; when the drive mutex is contended it fails fast with
// ErrBusy instead of waiting.
func (c *Controller) StatusNoWait() (int32, int32, error) {
	if !c.ch.tryLock() {
		return -1, -1, ErrBusy
	}
	defer c.ch.unlock()
	return c.driveStatus()
}

// driveStatus queries the drive with the channel mutex held
func (c *Controller) driveStatus() (int32, int32, error) {

	c.ch.fw.SelectDevice(firmware.DeviceMaster)

	mech, disc, err := c.ch.fw.DriveStatus()
	if err != nil {
		return -1, -1, ErrSystem
	}
	return mech, disc, nil
}

/*
	Reinit re-initializes the drive, e.g. after a disc change. The drive
	may be busy for a while after an eject or swap, so the INIT command
	is retried every 20ms for up to 10 seconds. A no-disc or system error
	ends the attempts immediately; when the budget runs out, the pending
	INIT is aborted and ErrTimeout returned. On success the requested
	sector format is applied, see ChangeDataType for the parameters.

	The channel mutex is held for the whole sequence, so no other command
	can interleave with an ongoing re-initialization.
*/
func (c *Controller) Reinit(sectorPart, cdxa, sectorSize int32) error {

	c.ch.lock()
	defer c.ch.unlock()

	c.ch.fw.SelectDevice(firmware.DeviceMaster)

	attempts := int(c.RetryBudget / c.RetryInterval)
	var err error

	for ix := 0; ix < attempts; ix++ {

		if err = c.ch.execute(firmware.CmdInit, nil); err == nil {
			log.WithField("attempts", ix+1).Debug("drive initialized")
			break
		}

		if IsFatal(err) {
			return err
		}

		// still busy, give it a moment
		time.Sleep(c.RetryInterval)
	}

	if err != nil {
		// give up on the pending init before reporting failure
		c.ch.fw.Abort(firmware.CmdInit)
		log.Warn("drive init timed out")
		return ErrTimeout
	}

	return c.changeDataType(sectorPart, cdxa, sectorSize)
}

// SetSectorSize reconfigures just the sector size, the one setting that
// typically changes between discs.
func (c *Controller) SetSectorSize(size int32) error {
	return c.Reinit(Default, Default, size)
}

// ChangeDataType applies a sector format configuration as a single
// command, without any retry. See changeDataType for the parameter
// default rules.
func (c *Controller) ChangeDataType(sectorPart, cdxa, sectorSize int32) error {
	c.ch.lock()
	defer c.ch.unlock()
	return c.changeDataType(sectorPart, cdxa, sectorSize)
}

/*
	changeDataType configures the sector format with the channel mutex
	held. A value of Default (-1) resolves as follows: with a raw 2352
	byte sector size, CD-XA mode defaults to 0 and sector part to the
	whole sector; otherwise the CD-XA mode is chosen by asking the drive
	what it thinks the disc is (CD-XA ⇒ mode 2, else mode 1), the sector
	part defaults to the data area, and the size to 2048.
*/
func (c *Controller) changeDataType(sectorPart, cdxa, sectorSize int32) error {

	c.ch.fw.SelectDevice(firmware.DeviceMaster)

	if sectorSize == 2352 {
		if cdxa == Default {
			cdxa = 0
		}
		if sectorPart == Default {
			sectorPart = ReadWholeSector
		}
	} else {
		if cdxa == Default {
			_, disc, err := c.ch.fw.DriveStatus()
			if err != nil {
				return ErrSystem
			}
			if disc == firmware.DiscCDXA {
				cdxa = 2048
			} else {
				cdxa = 1024
			}
		}
		if sectorPart == Default {
			sectorPart = ReadDataArea
		}
		if sectorSize == Default {
			sectorSize = 2048
		}
	}

	params := firmware.DataTypeParams{
		SectorPart: sectorPart,
		CDXA:       cdxa,
		SectorSize: sectorSize,
	}

	if err := c.ch.fw.ChangeDataType(&params); err != nil {
		return ErrSystem
	}

	log.WithFields(log.Fields{
		"sectorPart": sectorPart,
		"cdxa":       cdxa,
		"sectorSize": sectorSize,
	}).Debug("data type changed")

	return nil
}

// Startup resets the firmware queue state and performs the initial
// drive initialization. Call once before anything else.
func (c *Controller) Startup() error {

	c.ch.lock()
	c.ch.fw.SelectDevice(firmware.DeviceMaster)
	c.ch.fw.InitSystem()
	c.ch.unlock()

	return c.Reinit(Default, Default, Default)
}
