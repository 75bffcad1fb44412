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
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

/*
	Channel serializes access to the firmware command queue. Exactly one
	command is in flight at any time, system wide: Execute holds the drive
	mutex from submission until the terminal status has been polled, and
	it keeps holding it across the cooperative yields inside the poll
	loop, so no other goroutine can slip a competing command in mid poll.

	The poll loop has no bound; it ends only on a terminal status. Callers
	that need a timeout have to wrap Execute, the way Reinit does.
*/
type Channel struct {
	mu sync.Mutex
	fw firmware.Queue
}

//
func NewChannel(fw firmware.Queue) *Channel {
	return &Channel{fw: fw}
}

// Execute runs a single firmware command to completion and maps its
// terminal status to the drive error taxonomy.
func (c *Channel) Execute(cmd firmware.CommandID, params interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execute(cmd, params)
}

// execute runs cmd with the channel mutex already held, for operations
// that span several commands under one acquisition
func (c *Channel) execute(cmd firmware.CommandID, params interface{}) error {

	// the drive shares its bus with an optional second ATA device
	c.fw.SelectDevice(firmware.DeviceMaster)

	req, err := c.fw.Submit(cmd, params)
	if err != nil {
		log.WithField("command", cmd).Errorf("submit failed: %v", err)
		return ErrSystem
	}

	var aux firmware.AuxStatus
	var status firmware.Status

	for {
		c.fw.Service()
		if status = c.fw.GetStatus(req, &aux); status != firmware.Processing {
			break
		}
		runtime.Gosched()
	}

	switch status {

	case firmware.Completed:
		return nil

	case firmware.Aborted:
		return ErrAborted

	case firmware.NoActiveRequest:
		return ErrNoActiveCommand

	default:
		switch aux[0] {

		case firmware.AuxNoDisc:
			return ErrNoDisc

		case firmware.AuxDiscChanged:
			return ErrDiscChanged

		default:
			log.WithFields(log.Fields{
				"command": cmd,
				"aux":     aux[0],
			}).Debug("command failed")
			return ErrSystem
		}
	}
}

//
func (c *Channel) lock() {
	c.mu.Lock()
}

//
func (c *Channel) tryLock() bool {
	return c.mu.TryLock()
}

//
func (c *Channel) unlock() {
	c.mu.Unlock()
}
