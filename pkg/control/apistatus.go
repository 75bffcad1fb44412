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

	"github.com/ianmicheal/gddrive/pkg/daemon"
)

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	mech, discType, err := a.daemon.Drive().Status()
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}

	stat := &Status{
		Status:   daemon.StatusName(mech),
		DiscType: daemon.DiscTypeName(discType),
	}

	if mounted, _ := a.daemon.Mounted(); mounted {
		stat.Mounted = true
		if base, err := a.daemon.DataBase(); err == nil {
			stat.DataBase = base
		}
	}

	if wantsJSON(req) {
		sendJSONReply(stat, http.StatusOK, w)
	} else {
		sendReply([]byte(stat.String()), http.StatusOK, w)
	}
}
