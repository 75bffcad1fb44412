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

package sim

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
type request struct {
	cmd      firmware.CommandID
	params   interface{}
	remain   int // Service calls left before the request executes
	status   firmware.Status
	aux      int32
	aborted  bool
}

/*
	Firmware is an in-memory simulation of the GD-ROM firmware command
	queue. Requests submitted via Submit sit in a request table and only
	make progress when Service is called, just like the real queue; each
	request takes a configurable number of Service calls before it
	executes against the disc model.

	Fault injection: swap or remove the disc with SwapDisc/Eject, force
	the next n submissions to abort with FailNext, or keep them in the
	processing state with StallNext.
*/
type Firmware struct {
	//
	mu   sync.Mutex
	disc *Disc
	//
	requests map[int]*request
	nextReq  int
	//
	discChanged bool
	device      firmware.Device
	//
	latency   int
	failNext  int
	stallNext int
	//
	processing    int
	maxProcessing int
	aborts        int
	submitted     map[firmware.CommandID]int
	lastPlay      firmware.PlayParams
	//
	dataType firmware.DataTypeParams
}

//
func New(disc *Disc) *Firmware {
	return &Firmware{
		disc:      disc,
		requests:  make(map[int]*request),
		nextReq:   1,
		latency:   1,
		submitted: make(map[firmware.CommandID]int),
	}
}

// SetLatency sets how many Service calls a request needs to execute.
func (f *Firmware) SetLatency(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < 1 {
		n = 1
	}
	f.latency = n
}

// FailNext makes the next n submitted requests terminate as aborted.
func (f *Firmware) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// StallNext makes the next n submitted requests report processing until
// they are aborted.
func (f *Firmware) StallNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stallNext = n
}

// SwapDisc replaces the medium. Every queued command fails with a disc
// change indication until an INIT command is executed.
func (f *Firmware) SwapDisc(d *Disc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disc = d
	f.discChanged = true
	log.Debug("sim: disc swapped")
}

// Eject removes the medium.
func (f *Firmware) Eject() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disc = nil
	log.Debug("sim: disc ejected")
}

// MaxProcessing reports the highest number of requests ever observed in
// the processing state at the same time.
func (f *Firmware) MaxProcessing() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxProcessing
}

// Submitted reports how many requests have been submitted for the
// given command.
func (f *Firmware) Submitted(cmd firmware.CommandID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted[cmd]
}

// LastPlay reports the parameter block of the last playback command.
func (f *Firmware) LastPlay() firmware.PlayParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPlay
}

// Aborts reports how many Abort calls the firmware has received.
func (f *Firmware) Aborts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aborts
}

// DataType reports the last applied data type configuration.
func (f *Firmware) DataType() firmware.DataTypeParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dataType
}

//
func (f *Firmware) Submit(
	cmd firmware.CommandID, params interface{}) (int, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	req := &request{
		cmd:    cmd,
		params: params,
		remain: f.latency,
		status: firmware.Processing,
	}

	if f.stallNext > 0 {
		f.stallNext--
		req.remain = -1 // executes only when aborted
	} else if f.failNext > 0 {
		f.failNext--
		req.aborted = true
	}

	id := f.nextReq
	f.nextReq++
	f.requests[id] = req
	f.submitted[cmd]++

	f.processing++
	if f.processing > f.maxProcessing {
		f.maxProcessing = f.processing
	}

	log.WithFields(log.Fields{
		"request": id,
		"command": cmd,
	}).Trace("sim: submitted")

	return id, nil
}

//
func (f *Firmware) Service() {

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, req := range f.requests {
		if req.status != firmware.Processing {
			continue
		}
		if req.aborted {
			f.finish(req, firmware.Aborted, 0)
			continue
		}
		if req.remain < 0 { // stalled
			continue
		}
		if req.remain--; req.remain <= 0 {
			f.execute(req)
		}
	}
}

//
func (f *Firmware) GetStatus(
	req int, aux *firmware.AuxStatus) firmware.Status {

	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.requests[req]
	if !ok {
		return firmware.NoActiveRequest
	}

	if r.status != firmware.Processing {
		if r.status == firmware.Failed && aux != nil {
			aux[0] = r.aux
		}
		delete(f.requests, req) // polled terminal, firmware forgets it
	}

	return r.status
}

//
func (f *Firmware) Abort(cmd firmware.CommandID) {

	f.mu.Lock()
	defer f.mu.Unlock()

	f.aborts++

	for id, req := range f.requests {
		if req.cmd == cmd && req.status == firmware.Processing {
			f.finish(req, firmware.Aborted, 0)
			log.WithField("request", id).Debug("sim: aborted")
		}
	}
}

//
func (f *Firmware) DriveStatus() (int32, int32, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.disc == nil {
		return firmware.StatusNoDisc, firmware.DiscNone, nil
	}
	return firmware.StatusPaused, f.disc.Type, nil
}

//
func (f *Firmware) SelectDevice(dev firmware.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.device = dev
}

//
func (f *Firmware) InitSystem() {

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, req := range f.requests {
		if req.status == firmware.Processing {
			f.finish(req, firmware.Aborted, 0)
		}
	}
	f.requests = make(map[int]*request)
	log.Debug("sim: system init")
}

//
func (f *Firmware) ChangeDataType(params *firmware.DataTypeParams) error {

	f.mu.Lock()
	defer f.mu.Unlock()

	if params.Get {
		*params = f.dataType
		params.Get = true
		return nil
	}
	f.dataType = *params
	return nil
}

// execute runs a due request against the disc model; f.mu is held
func (f *Firmware) execute(req *request) {

	if f.disc == nil && req.cmd != firmware.CmdInit {
		f.finish(req, firmware.Failed, firmware.AuxNoDisc)
		return
	}

	if f.discChanged && req.cmd != firmware.CmdInit {
		f.finish(req, firmware.Failed, firmware.AuxDiscChanged)
		return
	}

	switch req.cmd {

	case firmware.CmdInit:
		if f.disc == nil {
			f.finish(req, firmware.Failed, firmware.AuxNoDisc)
			return
		}
		f.discChanged = false
		f.finish(req, firmware.Completed, 0)

	case firmware.CmdPIORead, firmware.CmdDMARead:
		f.read(req)

	case firmware.CmdGetTOC2:
		f.readTOC(req)

	case firmware.CmdPlay, firmware.CmdPlay2:
		if p, ok := req.params.(*firmware.PlayParams); ok {
			f.lastPlay = *p
		}
		f.finish(req, firmware.Completed, 0)

	case firmware.CmdPause, firmware.CmdRelease, firmware.CmdStop,
		firmware.CmdSeek:
		f.finish(req, firmware.Completed, 0)

	case firmware.CmdGetSubcode:
		p, ok := req.params.(*firmware.SubcodeParams)
		if !ok || p.Buffer == nil {
			f.finish(req, firmware.Failed, 1)
			return
		}
		for ix := range p.Buffer {
			p.Buffer[ix] = 0
		}
		f.finish(req, firmware.Completed, 0)

	default:
		f.finish(req, firmware.Failed, 1)
	}
}

//
func (f *Firmware) read(req *request) {

	p, ok := req.params.(*firmware.ReadParams)
	if !ok || p.Buffer == nil || len(p.Buffer) < p.Count*SectorSize {
		f.finish(req, firmware.Failed, 1)
		return
	}

	for ix := 0; ix < p.Count; ix++ {
		sec, err := f.disc.sector(p.Start + ix - LeadInBias)
		if err != nil {
			log.WithField("sector", p.Start+ix).Debugf("sim: %v", err)
			f.finish(req, firmware.Failed, 1)
			return
		}
		copy(p.Buffer[ix*SectorSize:], sec)
	}

	f.finish(req, firmware.Completed, 0)
}

//
func (f *Firmware) readTOC(req *request) {

	p, ok := req.params.(*firmware.TOCParams)
	if !ok || len(p.Buffer) < tocLength {
		f.finish(req, firmware.Failed, 1)
		return
	}
	if p.Session != 0 && !f.disc.hasSession(p.Session) {
		f.finish(req, firmware.Failed, 1)
		return
	}

	copy(p.Buffer, f.disc.toc(p.Session))
	f.finish(req, firmware.Completed, 0)
}

// finish moves a request to a terminal state; f.mu is held
func (f *Firmware) finish(req *request, status firmware.Status, aux int32) {
	if req.status == firmware.Processing {
		f.processing--
	}
	req.status = status
	req.aux = aux
}

//
func (f *Firmware) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("sim firmware, %d pending requests", len(f.requests))
}
