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
)

// the error taxonomy of the drive layer; commands either complete, or
// end in exactly one of these
var (
	ErrAborted         = errors.New("command aborted")
	ErrNoActiveCommand = errors.New("no such active command")
	ErrNoDisc          = errors.New("no disc in drive")
	ErrDiscChanged     = errors.New("disc has been changed")
	ErrSystem          = errors.New("system error")
	ErrTimeout         = errors.New("drive timed out")
	ErrRead            = errors.New("read error")
	ErrBusy            = errors.New("drive is busy")
)

// IsFatal tells whether err rules out further retries of the failed
// operation; retrying cannot help when there is no usable medium.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoDisc) || errors.Is(err, ErrSystem)
}

// IsDiscEvent tells whether err indicates a medium change or removal,
// i.e. whether upstream state (open files, cached TOC) must be dropped.
func IsDiscEvent(err error) bool {
	return errors.Is(err, ErrNoDisc) || errors.Is(err, ErrDiscChanged)
}
