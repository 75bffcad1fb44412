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

package control

import (
	"fmt"
	"net/http"
	"strconv"
)

// play starts CDDA playback; query parameters: start, end, repeat,
// mode (tracks|sectors, default tracks)
func (a *api) play(w http.ResponseWriter, req *http.Request) {

	q := req.URL.Query()

	start, err := strconv.Atoi(q.Get("start"))
	if err != nil {
		handleError(fmt.Errorf("illegal start: %s", q.Get("start")),
			http.StatusBadRequest, w)
		return
	}

	end := start
	if e := q.Get("end"); e != "" {
		if end, err = strconv.Atoi(e); err != nil {
			handleError(fmt.Errorf("illegal end: %s", e),
				http.StatusBadRequest, w)
			return
		}
	}

	repeat := 0
	if r := q.Get("repeat"); r != "" {
		if repeat, err = strconv.Atoi(r); err != nil || repeat < 0 {
			handleError(fmt.Errorf("illegal repeat count: %s", r),
				http.StatusBadRequest, w)
			return
		}
	}

	switch q.Get("mode") {

	case "", "tracks":
		err = a.daemon.Drive().PlayTracks(start, end, repeat)

	case "sectors":
		err = a.daemon.Drive().PlaySectors(start, end, repeat)

	default:
		handleError(fmt.Errorf("unknown mode: %s", q.Get("mode")),
			http.StatusBadRequest, w)
		return
	}

	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("playing\n"), http.StatusOK, w)
}

//
func (a *api) pause(w http.ResponseWriter, req *http.Request) {
	if handleError(a.daemon.Drive().Pause(),
		http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("paused\n"), http.StatusOK, w)
}

//
func (a *api) resume(w http.ResponseWriter, req *http.Request) {
	if handleError(a.daemon.Drive().Resume(),
		http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("resumed\n"), http.StatusOK, w)
}

//
func (a *api) stopPlayback(w http.ResponseWriter, req *http.Request) {
	if handleError(a.daemon.Drive().SpinDown(),
		http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("stopped\n"), http.StatusOK, w)
}
