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
	"net/http"
	"time"
)

//
const watchTimeout = 30 * time.Second

// watch long-polls the next disc event; times out with 204 when
// nothing happens
func (a *api) watch(w http.ResponseWriter, req *http.Request) {

	events := a.daemon.Subscribe()
	defer a.daemon.Unsubscribe(events)

	select {

	case e := <-events:
		sendJSONReply(e, http.StatusOK, w)

	case <-time.After(watchTimeout):
		w.WriteHeader(http.StatusNoContent)

	case <-req.Context().Done():
	}
}
