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

package run

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/control"
	"github.com/ianmicheal/gddrive/pkg/daemon"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/serialfw"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/sim"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve [-d|--device {device}] [--disc {layout}] [-a|--address {address}]`,
		"daemon & API server command",
		`
Use the serve command for running the drive daemon and API server. With a
device, the daemon talks to a drive stub on real hardware over the given
serial port; without one, it runs against a simulated drive, optionally
loaded with the disc described by a layout file.`,
		s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Device, "device", "d", "GDDRIVE_DEVICE", nil,
		"serial port device of the drive stub", false)
	s.AddSetting(&s.Disc, "disc", "", "GDDRIVE_DISC", nil,
		"disc layout file for the simulated drive", false)
	s.AddSetting(&s.Address, "address", "a", "GDDRIVE_ADDRESS", nil,
		"listen address for the API server", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device  string
	Disc    string
	Address string
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	var fw firmware.Queue

	if s.Device != "" {
		sfw, err := serialfw.Open(s.Device)
		if err != nil {
			return err
		}
		defer sfw.Close()
		fw = sfw

	} else {
		var disc *sim.Disc
		if s.Disc != "" {
			var err error
			if disc, err = sim.LoadLayout(s.Disc); err != nil {
				return err
			}
		}
		log.Info("no device given, running simulated drive")
		fw = sim.New(disc)
	}

	d := daemon.New(fw)
	if err := d.Startup(); err != nil {
		return fmt.Errorf("drive startup failed: %v", err)
	}
	d.Watch(0)

	api := control.NewAPIServer(s.Address, d)
	done := make(chan error, 1)

	go func() {
		done <- api.Serve()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {

	case sig := <-sigs:
		log.WithField("signal", sig).Info("signal received, shutting down")
		if err := api.Stop(); err != nil {
			log.Errorf("error stopping API server: %v", err)
		}
		d.Stop()
		<-done
		log.Info("GDDrive stopped")
		return nil

	case err := <-done:
		d.Stop()
		if err != nil {
			return fmt.Errorf("API server closed with error: %v", err)
		}
		return nil
	}
}
