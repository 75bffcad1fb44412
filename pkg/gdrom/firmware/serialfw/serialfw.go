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
	Package serialfw forwards the firmware queue protocol over a serial
	link to a small stub running on the console, the way a coder's cable
	talks to a debug stub. One frame per call, single letter opcodes,
	little endian fields; sector payloads come back when a completed
	read request is polled.
*/
package serialfw

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

//
const (
	opHello      = 'h'
	opSubmit     = 'c'
	opService    = 's'
	opStatus     = 'q'
	opAbort      = 'a'
	opDriveStat  = 'd'
	opSelect     = 'v'
	opInitSystem = 'i'
	opDataType   = 't'
)

//
var helloHost = []byte("hlog")
var helloStub = []byte("hlos")

/*
	Firmware implements firmware.Queue over a serial link. All calls are
	serialized on the link; any link error is remembered and reported as
	a failed request, since the caller side of the queue interface has
	no error channel on Service and GetStatus.
*/
type Firmware struct {
	//
	mu   sync.Mutex
	port io.ReadWriteCloser
	//
	pending map[int]interface{} // request handle -> param block
	broken  bool
}

//
func Open(device string) (*Firmware, error) {

	port, err := serial.Open(serial.OpenOptions{
		PortName:        device,
		BaudRate:        1562500,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open port %s: %v", device, err)
	}

	f := &Firmware{
		port:    port,
		pending: make(map[int]interface{}),
	}

	if err = f.hello(); err != nil {
		port.Close()
		return nil, err
	}

	log.Infof("connected to drive stub on %s", device)
	return f, nil
}

//
func (f *Firmware) Close() error {
	return f.port.Close()
}

// hello syncs with the stub at the start of a session
func (f *Firmware) hello() error {

	if err := f.send(append([]byte{opHello}, helloHost...)); err != nil {
		return err
	}

	reply := make([]byte, len(helloStub))
	if err := f.receive(reply); err != nil {
		return err
	}
	for ix := range reply {
		if reply[ix] != helloStub[ix] {
			return fmt.Errorf("unexpected stub hello: %v", reply)
		}
	}
	return nil
}

//
func (f *Firmware) Submit(
	cmd firmware.CommandID, params interface{}) (int, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	frame, err := marshalCommand(cmd, params)
	if err != nil {
		return -1, err
	}

	if err = f.send(frame); err != nil {
		return -1, f.fail(err)
	}

	var handle int32
	if err = f.receiveInt32(&handle); err != nil {
		return -1, f.fail(err)
	}

	f.pending[int(handle)] = params
	return int(handle), nil
}

//
func (f *Firmware) Service() {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return
	}
	if err := f.send([]byte{opService}); err != nil {
		f.fail(err)
	}
}

//
func (f *Firmware) GetStatus(
	req int, aux *firmware.AuxStatus) firmware.Status {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		if aux != nil {
			aux[0] = 1
		}
		return firmware.Failed
	}

	frame := make([]byte, 5)
	frame[0] = opStatus
	binary.LittleEndian.PutUint32(frame[1:], uint32(req))

	if err := f.send(frame); err != nil {
		return f.failStatus(err, aux)
	}

	var status int32
	if err := f.receiveInt32(&status); err != nil {
		return f.failStatus(err, aux)
	}

	var auxWire [4]int32
	for ix := range auxWire {
		if err := f.receiveInt32(&auxWire[ix]); err != nil {
			return f.failStatus(err, aux)
		}
	}
	if aux != nil {
		copy(aux[:], auxWire[:])
	}

	st := firmware.Status(status)
	if st == firmware.Processing {
		return st
	}

	// terminal; completed reads carry their payload behind the status
	if st == firmware.Completed {
		if err := f.receivePayload(req); err != nil {
			return f.failStatus(err, aux)
		}
	}
	delete(f.pending, req)

	return st
}

// receivePayload pulls back the data of a completed request that has a
// host side destination buffer
func (f *Firmware) receivePayload(req int) error {

	var buf []byte

	switch p := f.pending[req].(type) {
	case *firmware.ReadParams:
		buf = p.Buffer[:p.Count*2048]
	case *firmware.TOCParams:
		buf = p.Buffer
	case *firmware.SubcodeParams:
		buf = p.Buffer
	default:
		return nil
	}

	var n int32
	if err := f.receiveInt32(&n); err != nil {
		return err
	}
	if int(n) > len(buf) {
		return fmt.Errorf("stub payload too large: %d > %d", n, len(buf))
	}
	return f.receive(buf[:n])
}

//
func (f *Firmware) Abort(cmd firmware.CommandID) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return
	}

	frame := make([]byte, 5)
	frame[0] = opAbort
	binary.LittleEndian.PutUint32(frame[1:], uint32(cmd))

	if err := f.send(frame); err != nil {
		f.fail(err)
	}
}

//
func (f *Firmware) DriveStatus() (int32, int32, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return -1, -1, fmt.Errorf("serial link is down")
	}

	if err := f.send([]byte{opDriveStat}); err != nil {
		return -1, -1, f.fail(err)
	}

	var mech, disc int32
	if err := f.receiveInt32(&mech); err != nil {
		return -1, -1, f.fail(err)
	}
	if err := f.receiveInt32(&disc); err != nil {
		return -1, -1, f.fail(err)
	}

	return mech, disc, nil
}

//
func (f *Firmware) SelectDevice(dev firmware.Device) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return
	}
	if err := f.send([]byte{opSelect, byte(dev)}); err != nil {
		f.fail(err)
	}
}

//
func (f *Firmware) InitSystem() {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return
	}
	if err := f.send([]byte{opInitSystem}); err != nil {
		f.fail(err)
	}
}

//
func (f *Firmware) ChangeDataType(params *firmware.DataTypeParams) error {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return fmt.Errorf("serial link is down")
	}

	get := int32(0)
	if params.Get {
		get = 1
	}

	frame := make([]byte, 17)
	frame[0] = opDataType
	binary.LittleEndian.PutUint32(frame[1:], uint32(get))
	binary.LittleEndian.PutUint32(frame[5:], uint32(params.SectorPart))
	binary.LittleEndian.PutUint32(frame[9:], uint32(params.CDXA))
	binary.LittleEndian.PutUint32(frame[13:], uint32(params.SectorSize))

	if err := f.send(frame); err != nil {
		return f.fail(err)
	}

	var rv int32
	if err := f.receiveInt32(&rv); err != nil {
		return f.fail(err)
	}
	if rv < 0 {
		return fmt.Errorf("change data type failed: %d", rv)
	}

	if params.Get {
		var vals [4]int32
		for ix := range vals {
			if err := f.receiveInt32(&vals[ix]); err != nil {
				return f.fail(err)
			}
		}
		params.SectorPart = vals[1]
		params.CDXA = vals[2]
		params.SectorSize = vals[3]
	}

	return nil
}

// marshalCommand renders the submit frame for a command and its
// parameter block
func marshalCommand(cmd firmware.CommandID, params interface{}) (
	[]byte, error) {

	frame := []byte{opSubmit}
	frame = binary.LittleEndian.AppendUint32(frame, uint32(cmd))

	switch p := params.(type) {

	case nil:

	case *firmware.ReadParams:
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Start))
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Count))

	case *firmware.TOCParams:
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Session))

	case *firmware.PlayParams:
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Start))
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.End))
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Repeat))

	case *firmware.SubcodeParams:
		frame = binary.LittleEndian.AppendUint32(frame, uint32(p.Which))
		frame = binary.LittleEndian.AppendUint32(frame, uint32(len(p.Buffer)))

	default:
		return nil, fmt.Errorf("cannot marshal params for %v", cmd)
	}

	return frame, nil
}

//
func (f *Firmware) send(data []byte) error {
	_, err := f.port.Write(data)
	return err
}

//
func (f *Firmware) receive(data []byte) error {
	_, err := io.ReadFull(f.port, data)
	return err
}

//
func (f *Firmware) receiveInt32(v *int32) error {
	var buf [4]byte
	if err := f.receive(buf[:]); err != nil {
		return err
	}
	*v = int32(binary.LittleEndian.Uint32(buf[:]))
	return nil
}

// fail marks the link broken; once that happened, every further call
// fails fast until the firmware is reopened
func (f *Firmware) fail(err error) error {
	if !f.broken {
		log.Errorf("serial link failed: %v", err)
		f.broken = true
	}
	return err
}

//
func (f *Firmware) failStatus(
	err error, aux *firmware.AuxStatus) firmware.Status {
	f.fail(err)
	if aux != nil {
		aux[0] = 1
	}
	return firmware.Failed
}
