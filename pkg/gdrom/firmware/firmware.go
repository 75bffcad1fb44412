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

package firmware

// command ids understood by the GD-ROM firmware command queue; the values
// are the ones the real syscall interface uses
type CommandID int

const (
	CmdPIORead    CommandID = 16
	CmdDMARead    CommandID = 17
	CmdGetTOC     CommandID = 18
	CmdGetTOC2    CommandID = 19
	CmdPlay       CommandID = 20
	CmdPlay2      CommandID = 21
	CmdPause      CommandID = 22
	CmdRelease    CommandID = 23
	CmdInit       CommandID = 24
	CmdSeek       CommandID = 27
	CmdStop       CommandID = 33
	CmdGetSubcode CommandID = 34
)

//
func (c CommandID) String() string {

	switch c {

	case CmdPIORead:
		return "PIOREAD"

	case CmdDMARead:
		return "DMAREAD"

	case CmdGetTOC:
		return "GETTOC"

	case CmdGetTOC2:
		return "GETTOC2"

	case CmdPlay:
		return "PLAY"

	case CmdPlay2:
		return "PLAY2"

	case CmdPause:
		return "PAUSE"

	case CmdRelease:
		return "RELEASE"

	case CmdInit:
		return "INIT"

	case CmdSeek:
		return "SEEK"

	case CmdStop:
		return "STOP"

	case CmdGetSubcode:
		return "GETSCD"

	default:
		return "<unknown>"
	}
}

// request status as reported by GetStatus
type Status int

const (
	NoActiveRequest Status = iota // firmware no longer tracks the request
	Processing                    // still running, keep servicing & polling
	Completed
	Aborted
	Failed // terminal failure, detail in the aux block
)

// aux block filled in by GetStatus on failure; the first word carries the
// failure detail
type AuxStatus [4]int32

const (
	AuxNoDisc      = 2
	AuxDiscChanged = 6
)

// device selector for the G1 bus; the drive is always the master device,
// a second ATA device may sit on the same bus
type Device int

const (
	DeviceMaster Device = iota
	DeviceSlave
)

// mechanical status codes reported by DriveStatus
const (
	StatusBusy = iota
	StatusPaused
	StatusStandby
	StatusPlaying
	StatusSeeking
	StatusScanning
	StatusOpen
	StatusNoDisc
	StatusRetry
	StatusError
)

// disc types reported by DriveStatus
const (
	DiscCDDA   = 0x00
	DiscCDROM  = 0x10
	DiscCDXA   = 0x20
	DiscCDI    = 0x30
	DiscGDROM  = 0x80
	DiscNone   = -1
)

// ReadParams is the parameter block for PIOREAD/DMAREAD. Start is the
// absolute, bias-adjusted sector number. The transfer goes directly into
// Buffer, which must hold Count full sectors.
type ReadParams struct {
	Start  int
	Count  int
	Buffer []byte
	_      int // reserved word in the wire block, always zero
}

// TOCParams is the parameter block for GETTOC2. Buffer receives the raw
// 408-byte TOC as produced by the drive.
type TOCParams struct {
	Session int
	Buffer  []byte
}

// PlayParams is the parameter block for PLAY/PLAY2. Units are tracks for
// PLAY and sectors for PLAY2. Repeat is 0-15, 15 meaning infinite.
type PlayParams struct {
	Start  int
	End    int
	Repeat int
}

// DataTypeParams is the parameter block for the change-data-type call.
type DataTypeParams struct {
	Get        bool
	SectorPart int32
	CDXA       int32
	SectorSize int32
}

// SubcodeParams is the parameter block for GETSCD.
type SubcodeParams struct {
	Which  int
	Buffer []byte
}

/*
	Queue is the asynchronous command queue exposed by the GD-ROM firmware.
	Submit enqueues a command and returns a request handle; the queue only
	makes progress when Service is invoked, and GetStatus polls a request
	until it reaches a terminal status. This mirrors the syscall interface
	of the real drive, so a blocking driver must drive Service/GetStatus in
	a loop itself.

	Implementations: the sim package provides a full in-memory simulation,
	serialfw bridges to a stub on real hardware.
*/
type Queue interface {

	// Submit enqueues cmd with the given parameter block and returns a
	// request handle, or an error if the queue cannot accept the command.
	Submit(cmd CommandID, params interface{}) (int, error)

	// Service lets pending requests make progress. Must be called
	// repeatedly while polling.
	Service()

	// GetStatus reports the state of the given request. On Failed, aux is
	// filled in with the failure detail.
	GetStatus(req int, aux *AuxStatus) Status

	// Abort aborts the in-flight request for the given command.
	Abort(cmd CommandID)

	// DriveStatus reports the mechanical drive status and the disc type.
	DriveStatus() (int32, int32, error)

	// SelectDevice selects the active device on the bus.
	SelectDevice(dev Device)

	// InitSystem resets the firmware command queue state.
	InitSystem()

	// ChangeDataType applies a sector format configuration. This call is
	// synchronous in the firmware, unlike the queued commands.
	ChangeDataType(params *DataTypeParams) error
}
